package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chazu/stereo/pkg/config"
	"github.com/chazu/stereo/pkg/render"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	return NewApp(&config.Config{
		ScenePath:   filepath.Join(t.TempDir(), "scene.scene"),
		EvalTimeout: 5 * time.Second,
	})
}

func batchNamed(batches []render.Batch, name string) *render.Batch {
	for i := range batches {
		if batches[i].Name == name {
			return &batches[i]
		}
	}
	return nil
}

// TestE2EPrismExample exercises the full pipeline: script source → engine →
// scene → draw batches. This is the same path that the Wails Evaluate
// binding takes, but without the Wails runtime.
func TestE2EPrismExample(t *testing.T) {
	app := newTestApp(t)

	source, err := os.ReadFile("examples/prism.stereo")
	if err != nil {
		t.Fatalf("failed to read prism.stereo: %v", err)
	}

	result := app.Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	// ground: 3 points, plane, 6 contour points, 6 segments, contour;
	// column: 10 points, 7 faces, solid; top plane; sun.
	if len(result.Batches) != 37 {
		t.Fatalf("expected 37 batches, got %d", len(result.Batches))
	}

	column := batchNamed(result.Batches, "column")
	if column == nil || column.Mesh == nil {
		t.Fatal("missing column mesh")
	}
	// Two pentagon fans of 3 triangles and 5 quads of 2.
	if got := column.Mesh.TriangleCount(); got != 16 {
		t.Errorf("column triangles = %d, want 16", got)
	}

	sun := batchNamed(result.Batches, "sun")
	if sun == nil || sun.Light == nil {
		t.Fatal("missing sun light")
	}

	top := batchNamed(result.Batches, "top")
	if top == nil || top.Mesh == nil || top.Mesh.IsEmpty() {
		t.Fatal("missing top plane fill")
	}
	if z := top.Mesh.Vertices[2]; z != 3.5 {
		t.Errorf("top plane z = %v, want 3.5", z)
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Batches) != 0 {
		t.Errorf("expected 0 batches for empty source, got %d", len(result.Batches))
	}
}

// TestE2ESyntaxErrorKeepsScene ensures eval errors are reported, not fatal
// errors, and the previous scene survives them.
func TestE2ESyntaxErrorKeepsScene(t *testing.T) {
	app := newTestApp(t)
	if res := app.Evaluate(`(polygon "p" 4 1)`); len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}

	result := app.Evaluate(`(point "test"`)
	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Batches) != 0 {
		t.Errorf("expected 0 batches on error, got %d", len(result.Batches))
	}
	if got := len(app.Batches()); got != 5 {
		t.Errorf("scene has %d batches after failed evaluation, want 5", got)
	}
}

func TestCreateFromFrontendValues(t *testing.T) {
	app := newTestApp(t)

	// Values arrive as decoded JSON: numbers are float64, arrays []any.
	steps := []struct {
		keyword string
		values  map[string]any
	}{
		{"point", map[string]any{"name": "A", "x": 1.0, "y": 0.0, "z": 0.0}},
		{"point", map[string]any{"name": "B", "x": 0.0, "y": 1.0, "z": 0.0}},
		{"point", map[string]any{"name": "C", "x": 0.0, "y": 0.0, "z": 1.0}},
		{"face", map[string]any{"name": "t", "points": []any{"A", "B", "C"}}},
		{"light", map[string]any{"name": "L", "handle": 2.0, "x": 0.0, "y": 0.0, "z": 5.0}},
		{"prism", map[string]any{"name": "s", "n": 3.0, "radius": 1.0, "height": 2.0}},
	}
	for _, s := range steps {
		if err := app.Create(s.keyword, s.values); err != nil {
			t.Fatalf("Create(%s): %v", s.keyword, err)
		}
	}

	if err := app.Create("face", map[string]any{"name": "bad", "points": []any{"A", 1.0, "C"}}); err == nil {
		t.Error("expected error for non-string point name")
	}
	if err := app.Create("teleport", map[string]any{}); err == nil {
		t.Error("expected error for unknown command")
	}

	var roots []string
	for _, n := range app.Tree() {
		roots = append(roots, n.Name)
	}
	want := []string{"t", "L", "s"}
	if len(roots) != len(want) {
		t.Fatalf("roots = %v, want %v", roots, want)
	}
	for i := range want {
		if roots[i] != want[i] {
			t.Errorf("roots = %v, want %v", roots, want)
			break
		}
	}
}

func TestEditParams(t *testing.T) {
	app := newTestApp(t)
	if res := app.Evaluate(`(light "L" 0 0 0 5) (point "A" 0 0 0)`); len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}

	specs, err := app.EditableParams("L")
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 4 || specs[3].Field != "handle" {
		t.Errorf("light params = %+v", specs)
	}

	if err := app.SetParams("L", map[string]any{"handle": 3.0, "z": 7.0}); err != nil {
		t.Fatal(err)
	}
	sun := batchNamed(app.Batches(), "L")
	if sun == nil || sun.Light == nil || sun.Light.Handle != 3 || sun.Light.Position[2] != 7 {
		t.Errorf("light = %+v", sun)
	}

	if err := app.SetParams("A", map[string]any{"x": "far"}); err == nil {
		t.Error("expected type error")
	}
	if err := app.SetParams("A", map[string]any{"handle": 1.0}); err == nil {
		t.Error("expected unknown parameter error for a point handle")
	}
}

func TestTranslateBinding(t *testing.T) {
	app := newTestApp(t)
	if res := app.Evaluate(`(point "A" 0 0 0) (point "B" 1 0 0) (segment "AB" "A" "B")`); len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if err := app.Translate("AB", 0, 0, 2); err != nil {
		t.Fatal(err)
	}
	if err := app.ApplyTranslation("AB"); err != nil {
		t.Fatal(err)
	}
	ab := batchNamed(app.Batches(), "AB")
	if ab == nil || len(ab.Lines) != 6 || ab.Lines[2] != 2 || ab.Lines[5] != 2 {
		t.Errorf("AB = %+v", ab)
	}
	if err := app.Translate("nope", 1, 1, 1); err == nil {
		t.Error("expected error for missing entity")
	}
}

func TestSaveLoadAndExport(t *testing.T) {
	app := newTestApp(t)
	if res := app.Evaluate(`(prism "s" 4 1 1)`); len(res.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}

	// Empty path uses the configured scene path.
	if err := app.Save(""); err != nil {
		t.Fatal(err)
	}
	sqlitePath := filepath.Join(t.TempDir(), "scene.sqlite")
	if err := app.Save(sqlitePath); err != nil {
		t.Fatal(err)
	}

	app.Evaluate("")
	if n := len(app.Batches()); n != 0 {
		t.Fatalf("scene not cleared: %d batches", n)
	}

	if err := app.Load(""); err != nil {
		t.Fatal(err)
	}
	if n := len(app.Batches()); n != 15 {
		t.Errorf("after JSON load: %d batches, want 15", n)
	}
	if err := app.Load(sqlitePath); err != nil {
		t.Fatal(err)
	}
	if n := len(app.Batches()); n != 15 {
		t.Errorf("after SQLite load: %d batches, want 15", n)
	}

	stl := filepath.Join(t.TempDir(), "scene.stl")
	if err := app.ExportSTL(stl); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(stl); err != nil || info.Size() == 0 {
		t.Errorf("STL not written: %v", err)
	}

	if err := app.Save(filepath.Join(t.TempDir(), "scene.pkl")); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
