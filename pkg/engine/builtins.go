package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/stereo/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: plane-by-points -> plane_by_points
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value is treated as a flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toInt64 extracts an integer from a Sexp. Floats are accepted when they
// hold an integral value.
func toInt64(s zygo.Sexp) (int64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return v.Val, nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) && !math.IsInf(v.Val, 0) {
			return int64(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toNames extracts a list of entity names from a list or array of strings.
func toNames(s zygo.Sexp) ([]string, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	return stringsOf(items)
}

func stringsOf(items []zygo.Sexp) ([]string, error) {
	names := make([]string, 0, len(items))
	for i, it := range items {
		str, err := toString(it)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		names = append(names, str)
	}
	return names, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtinName is the zygomys symbol a command keyword is installed under.
// It matches what preprocessSource makes of the kebab-case keyword.
func builtinName(keyword string) string {
	return strings.ReplaceAll(keyword, "-", "_")
}

// registerBuiltins installs every scene creation command, plus the
// translation builtins, into a zygomys environment. The builtins operate on
// the provided registry, populating it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, r *scene.Registry) {
	for _, cmd := range scene.Commands() {
		env.AddFunction(builtinName(cmd.Keyword), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			v, err := commandValues(cmd, parseArgs(args))
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", cmd.Keyword, err)
			}
			if err := cmd.Invoke(r, v); err != nil {
				return zygo.SexpNull, err
			}
			return &zygo.SexpStr{S: resultName(v)}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (translate "s" 1 0 0) or (translate "s" :dx 1 :dy 0 :dz 0)
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		target, err := stringArg(pa, "name", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		var d [3]float64
		for i, f := range []string{"dx", "dy", "dz"} {
			s, ok := pa.kw[f]
			if !ok && i+1 < len(pa.positional) {
				s, ok = pa.positional[i+1], true
			}
			if !ok {
				continue
			}
			if d[i], err = toFloat64(s); err != nil {
				return zygo.SexpNull, fmt.Errorf("translate: %s: %w", f, err)
			}
		}
		if err := r.Translate(target, d[0], d[1], d[2]); err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpStr{S: target}, nil
	})

	// -----------------------------------------------------------------------
	// (apply-translation "s")
	// -----------------------------------------------------------------------
	env.AddFunction("apply_translation", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		target, err := stringArg(parseArgs(args), "name", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("apply-translation: %w", err)
		}
		if err := r.ApplyTranslation(target); err != nil {
			return zygo.SexpNull, err
		}
		return &zygo.SexpStr{S: target}, nil
	})
}

// stringArg reads a string from keyword field or from positional slot i.
func stringArg(pa kwArgs, field string, i int) (string, error) {
	s, ok := pa.kw[field]
	if !ok {
		if i >= len(pa.positional) {
			return "", fmt.Errorf("missing %s", field)
		}
		s = pa.positional[i]
	}
	return toString(s)
}

// commandValues maps script arguments onto a command's parameters.
// Positional arguments fill parameters in order; keyword arguments fill them
// by field name. A names parameter in last position also accepts the
// remaining positional strings in place of a list.
func commandValues(cmd *scene.Command, pa kwArgs) (scene.Values, error) {
	v := make(scene.Values, len(cmd.Params))
	pos := 0
	for i, p := range cmd.Params {
		s, ok := pa.kw[p.Field]
		if !ok {
			if pos >= len(pa.positional) {
				// Invoke reports the missing field.
				continue
			}
			if p.Type == scene.ParamNames && i == len(cmd.Params)-1 {
				rest := pa.positional[pos:]
				pos = len(pa.positional)
				if len(rest) != 1 || isString(rest[0]) {
					names, err := stringsOf(rest)
					if err != nil {
						return nil, fmt.Errorf("%s: %w", p.Field, err)
					}
					v[p.Field] = names
					continue
				}
				s = rest[0]
			} else {
				s = pa.positional[pos]
				pos++
			}
		}
		val, err := convert(p.Type, s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.Field, err)
		}
		v[p.Field] = val
	}
	if pos < len(pa.positional) {
		return nil, fmt.Errorf("%w: %d unexpected arguments", scene.ErrInvalidArgument, len(pa.positional)-pos)
	}
	return v, nil
}

func convert(t scene.ParamType, s zygo.Sexp) (any, error) {
	switch t {
	case scene.ParamFloat:
		return toFloat64(s)
	case scene.ParamInt:
		return toInt64(s)
	case scene.ParamString:
		return toString(s)
	case scene.ParamNames:
		return toNames(s)
	}
	return nil, fmt.Errorf("unsupported parameter type %s", t)
}

func isString(s zygo.Sexp) bool {
	_, ok := s.(*zygo.SexpStr)
	return ok
}

// resultName is what a creation builtin evaluates to: the new entity's name,
// or the plane name for contour commands.
func resultName(v scene.Values) string {
	if n, ok := v["name"].(string); ok {
		return n
	}
	if n, ok := v["plane"].(string); ok {
		return n
	}
	return ""
}
