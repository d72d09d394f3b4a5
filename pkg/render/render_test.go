package render

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/stereo/pkg/scene"
)

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func byName(batches []Batch) map[string]Batch {
	out := make(map[string]Batch, len(batches))
	for _, b := range batches {
		out[b.Name] = b
	}
	return out
}

func TestBuild(t *testing.T) {
	r := scene.New()
	must(t, r.AddPoint("A", 0, 0, 0))
	must(t, r.AddPoint("B", 1, 0, 0))
	must(t, r.AddPoint("C", 0, 1, 0))
	must(t, r.AddLight("sun", 4, 0, 0, 10))
	must(t, r.AddSegment("AB", "A", "B"))
	must(t, r.AddFigure2("t", []string{"A", "B", "C"}))
	must(t, r.AddPrismN("box", 4, 1, 1))

	batches := Build(r)
	if len(batches) != r.Len() {
		t.Fatalf("batches = %d, want one per entity (%d)", len(batches), r.Len())
	}
	got := byName(batches)

	if p := got["A"]; len(p.Points) != 3 || p.Color != PointColor {
		t.Errorf("point batch = %+v", p)
	}
	if l := got["sun"].Light; l == nil || l.Handle != 4 || l.Position != [4]float32{0, 0, 10, 0} {
		t.Errorf("light = %+v", l)
	}
	if s := got["AB"]; len(s.Lines) != 6 || s.Lines[3] != 1 || s.Color != SegmentColor {
		t.Errorf("segment batch = %+v", s)
	}

	face := got["t"]
	if face.Mesh.TriangleCount() != 1 {
		t.Fatalf("face triangles = %d, want 1", face.Mesh.TriangleCount())
	}
	// cross(C-A, B-A) = cross((0,1,0), (1,0,0)) = (0,0,-1)
	if n := face.Mesh.Normals[:3]; n[0] != 0 || n[1] != 0 || n[2] != -1 {
		t.Errorf("face normal = %v, want (0,0,-1)", n)
	}
	if len(face.Loops) != 1 || len(face.Loops[0]) != 9 || face.LoopColor != EdgeColor {
		t.Errorf("face edges = %+v", face.Loops)
	}

	// 2 caps of 2 triangles each plus 4 quads of 2 triangles each
	solid := got["box"]
	if n := solid.Mesh.TriangleCount(); n != 12 {
		t.Errorf("solid triangles = %d, want 12", n)
	}
	if len(solid.Loops) != 6 {
		t.Errorf("solid loops = %d, want 6", len(solid.Loops))
	}
	for i, idx := range solid.Mesh.Indices {
		if int(idx) >= solid.Mesh.VertexCount() {
			t.Fatalf("index %d = %d out of range", i, idx)
		}
	}
}

func TestBuildPlane(t *testing.T) {
	r := scene.New()
	must(t, r.AddPoint("A", 0, 0, 2))
	must(t, r.AddPoint("B", 1, 0, 2))
	must(t, r.AddPoint("C", 0, 1, 2))
	must(t, r.AddPlaneByPoints("pl", "A", "B", "C"))

	pl := byName(Build(r))["pl"]
	if pl.Color != PlaneColor || pl.Mesh.TriangleCount() != 2 {
		t.Fatalf("plane batch = %+v", pl)
	}
	for i := 2; i < len(pl.Mesh.Vertices); i += 3 {
		if z := pl.Mesh.Vertices[i]; z != 2 {
			t.Errorf("quad vertex z = %v, want 2", z)
		}
	}
	if x := pl.Mesh.Vertices[0]; x != PlaneHalfSize {
		t.Errorf("first corner x = %v, want %v", x, PlaneHalfSize)
	}

	must(t, r.AddContourNToPlane("pl", 5, 1))
	pl = byName(Build(r))["pl"]
	if n := pl.Mesh.TriangleCount(); n != 3 {
		t.Errorf("contour fill triangles = %d, want 3", n)
	}
	if len(pl.Loops) != 1 || len(pl.Loops[0]) != 15 {
		t.Errorf("contour loop = %v", pl.Loops)
	}
}

func TestBuildVerticalPlaneHasNoFill(t *testing.T) {
	r := scene.New()
	must(t, r.AddPoint("A", 0, 0, 0))
	must(t, r.AddPoint("B", 1, 0, 0))
	must(t, r.AddPoint("C", 0, 0, 1))
	must(t, r.AddPlaneByPoints("wall", "A", "B", "C"))

	if m := byName(Build(r))["wall"].Mesh; !m.IsEmpty() {
		t.Errorf("vertical plane mesh = %+v, want empty", m)
	}
}

func TestExportSTL(t *testing.T) {
	r := scene.New()
	must(t, r.AddPrismN("box", 4, 1, 1))
	if n := len(Triangles(r)); n != 12 {
		t.Fatalf("triangles = %d, want 12", n)
	}

	path := filepath.Join(t.TempDir(), "box.stl")
	must(t, ExportSTL(r, path))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 84 {
		t.Fatalf("STL file is %d bytes", len(data))
	}
	if n := binary.LittleEndian.Uint32(data[80:84]); n != 12 {
		t.Errorf("STL triangle count = %d, want 12", n)
	}
}

func TestExportSTLErrors(t *testing.T) {
	dir := t.TempDir()
	empty := scene.New()
	if err := ExportSTL(empty, filepath.Join(dir, "e.stl")); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("empty scene error = %v", err)
	}

	r := scene.New()
	must(t, r.AddFigure2N("p", 3, 1))
	if err := ExportSTL(r, filepath.Join(dir, "p.obj")); !errors.Is(err, scene.ErrInvalidFormat) {
		t.Errorf("bad extension error = %v", err)
	}
}
