package engine

import (
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chazu/stereo/pkg/scene"
)

func TestEvaluateBlankSource(t *testing.T) {
	for _, src := range []string{"", "   \n\t  \n  ", "; only a comment\n;; and another\n"} {
		r, evalErrs, err := NewEngine().Evaluate(src)
		if err != nil || len(evalErrs) > 0 {
			t.Fatalf("Evaluate(%q) = %v, %v", src, evalErrs, err)
		}
		if r == nil || r.Len() != 0 {
			t.Errorf("Evaluate(%q) scene = %v, want empty", src, r)
		}
	}
}

func TestEvaluatePlainLisp(t *testing.T) {
	// Arithmetic and definitions run, but only builtins create entities.
	r := evaluate(t, "(def x 10)\n(def y (* x 2))\n(+ x y)")
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestEvaluateBuildsPrism(t *testing.T) {
	r := evaluate(t, `(prism "s" 5 1 3)`)

	// 10 points, 2 caps, 5 sides, the solid.
	if r.Len() != 18 {
		t.Fatalf("Len = %d, want 18", r.Len())
	}
	for _, name := range []string{"s", "face_upper_s", "face_lower_s", "face_middle_s_1", "pnt_upr_s_5", "pnt_lwr_s_1"} {
		if !r.Has(name) {
			t.Errorf("missing %s", name)
		}
	}
	if p := r.Get("pnt_upr_s_1"); p.Z != 3 {
		t.Errorf("upper point z = %v, want 3", p.Z)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()
	var first *scene.Registry
	for i := 0; i < 5; i++ {
		r, evalErrs, err := eng.Evaluate(`(prism "s" 5 1 3) (polygon "p" 4 2)`)
		if err != nil || len(evalErrs) > 0 {
			t.Fatalf("iteration %d: %v, %v", i, evalErrs, err)
		}
		if first == nil {
			first = r
			continue
		}
		if r == first {
			t.Fatalf("iteration %d reused the registry", i)
		}
		if !reflect.DeepEqual(r.Names(), first.Names()) {
			t.Errorf("iteration %d names = %v, want %v", i, r.Names(), first.Names())
		}
		if !reflect.DeepEqual(r.Document().Entities, first.Document().Entities) {
			t.Errorf("iteration %d produced a different document", i)
		}
	}
}

func TestEvaluateStartsFromEmptyScene(t *testing.T) {
	// The same names are free again on every evaluation.
	eng := NewEngine()
	for i := 0; i < 2; i++ {
		r, evalErrs, err := eng.Evaluate(`(point "A" 0 0 0)`)
		if err != nil || len(evalErrs) > 0 {
			t.Fatalf("run %d: %v, %v", i, evalErrs, err)
		}
		if r.Len() != 1 {
			t.Errorf("run %d: Len = %d, want 1", i, r.Len())
		}
	}
}

func TestEvaluateFailures(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unmatched paren", `(point "A" 0 0 0`},
		{"undefined symbol", `(point "A" 0 0 height)`},
		{"unknown reference", `(face "t" "A" "B" "C")`},
		{"failure after valid forms", "(point \"A\" 0 0 0)\n(point \"B\" 1 0 0)\n(segment \"AB\" \"A\" \"Q\")"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, evalErrs, err := NewEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if r != nil {
				t.Errorf("scene = %v, want nil", r)
			}
			if len(evalErrs) == 0 || evalErrs[0].Message == "" {
				t.Fatalf("eval errors = %v, want a message", evalErrs)
			}
		})
	}
}

func TestEvaluateErrorLine(t *testing.T) {
	source := "(point \"A\" 0 0 0)\n(point \"B\" 1 0 0)\n(segment \"AB\" \"A\""
	_, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil || len(evalErrs) == 0 {
		t.Fatalf("Evaluate = %v, %v", evalErrs, err)
	}
	// Line info depends on how zygomys reports the failure; when present it
	// must point into the source.
	if l := evalErrs[0].Line; l < 0 || l > 3 {
		t.Errorf("line = %d, want 0 or within the three source lines", l)
	}
}

func TestEvalErrorString(t *testing.T) {
	tests := []struct {
		err  EvalError
		want string
	}{
		{EvalError{Line: 5, Message: "plane normal is zero"}, "line 5: plane normal is zero"},
		{EvalError{Message: "evaluation timed out"}, "evaluation timed out"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestEngineOptions(t *testing.T) {
	tests := []struct {
		opts []Option
		want time.Duration
	}{
		{nil, EvalTimeout},
		{[]Option{WithTimeout(time.Second)}, time.Second},
		{[]Option{WithTimeout(0)}, EvalTimeout},
		{[]Option{WithTimeout(-time.Second)}, EvalTimeout},
	}
	for _, tt := range tests {
		if got := NewEngine(tt.opts...).Timeout(); got != tt.want {
			t.Errorf("Timeout = %s, want %s", got, tt.want)
		}
	}
}

func TestWaitWithTimeout(t *testing.T) {
	built := scene.New()
	tests := []struct {
		name    string
		send    *evalResult
		gen     uint64
		current uint64
		wantErr string
	}{
		{"result of current run", &evalResult{scene: built}, 3, 3, ""},
		{"superseded run", &evalResult{scene: built}, 2, 3, "superseded"},
		{"no result in time", nil, 1, 1, "timed out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mu sync.Mutex
			current := tt.current
			ch := make(chan evalResult, 1)
			if tt.send != nil {
				ch <- *tt.send
			}

			r, _, err := waitWithTimeout(ch, tt.gen, &mu, &current, 20*time.Millisecond)
			if tt.wantErr == "" {
				if err != nil || r != built {
					t.Fatalf("got %v, %v; want the sent scene", r, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want %q", err, tt.wantErr)
			}
			if r != nil {
				t.Errorf("scene = %v, want nil", r)
			}
		})
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"error on line 12: missing paren", 12, "missing paren"},
		{"line 3: add segment: entity not found", 3, "add segment: entity not found"},
		{"add point: name already exists", 0, "add point: name already exists"},
	}
	for _, tt := range tests {
		errs := parseZygomysError(errString(tt.msg))
		if len(errs) != 1 {
			t.Fatalf("%q: got %d errors", tt.msg, len(errs))
		}
		if errs[0].Line != tt.wantLine || errs[0].Message != tt.wantMsg {
			t.Errorf("%q: got line %d %q, want line %d %q", tt.msg, errs[0].Line, errs[0].Message, tt.wantLine, tt.wantMsg)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }
