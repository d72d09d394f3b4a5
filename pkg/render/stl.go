package render

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/stereo/pkg/geom"
	"github.com/chazu/stereo/pkg/scene"
	sdfrender "github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ErrNothingToExport is returned by ExportSTL for a scene without faces.
var ErrNothingToExport = errors.New("scene has no faces to export")

// Triangles fans every face of the scene into triangles, in insertion
// order. Faces shared by several solids appear once.
func Triangles(r *scene.Registry) []*sdf.Triangle3 {
	var tris []*sdf.Triangle3
	for _, e := range r.Entities() {
		d, ok := e.Data.(*scene.Figure2Data)
		if !ok {
			continue
		}
		pts := positions(r, d.Points)
		for i := 2; i < len(pts); i++ {
			tris = append(tris, &sdf.Triangle3{vec(pts[0]), vec(pts[i-1]), vec(pts[i])})
		}
	}
	return tris
}

// ExportSTL writes all faces of the scene to an STL file at path.
func ExportSTL(r *scene.Registry, path string) error {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".stl" {
		return fmt.Errorf("export %s: %w: extension must be .stl", path, scene.ErrInvalidFormat)
	}
	tris := Triangles(r)
	if len(tris) == 0 {
		return ErrNothingToExport
	}
	if err := sdfrender.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

func vec(p geom.Vec3) v3.Vec {
	return v3.Vec{X: p[0], Y: p[1], Z: p[2]}
}
