// Package render turns a scene into draw batches for the viewport and
// exports faces as STL. It decides what to draw, never how: batches are
// plain vertex arrays the frontend uploads as it likes.
package render

import (
	"github.com/chazu/stereo/pkg/geom"
	"github.com/chazu/stereo/pkg/scene"
)

// Color is RGBA in [0, 1].
type Color [4]float32

// Palette.
var (
	PlaneColor   = Color{0.2, 0.7, 0.3, 1}
	FaceColor    = Color{0.2, 0.2, 0.9, 1}
	SegmentColor = Color{0, 0.9, 0.6, 1}
	EdgeColor    = Color{0, 0, 0, 1}
	PointColor   = Color{1, 0, 0, 1}
)

// PlaneHalfSize is the half extent of the quad drawn for a plane without
// contours.
const PlaneHalfSize = 1000

// Batch is the draw geometry of one entity. Only the parts its kind
// needs are set.
type Batch struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Color Color  `json:"color"`

	Points []float32   `json:"points,omitempty"` // xyz per point
	Lines  []float32   `json:"lines,omitempty"`  // xyz xyz per line
	Loops  [][]float32 `json:"loops,omitempty"`  // closed polylines

	LoopColor Color  `json:"loopColor"`
	Mesh      *Mesh  `json:"mesh,omitempty"`
	Light     *Light `json:"light,omitempty"`
}

// Light places a renderer light. Position has w = 0, a directional
// light shining from the light point towards the origin.
type Light struct {
	Handle   int        `json:"handle"`
	Position [4]float32 `json:"position"`
}

// Build returns one batch per entity in insertion order. Planes are
// refreshed first, which may reproject their contours.
func Build(r *scene.Registry) []Batch {
	var batches []Batch
	for _, e := range r.Entities() {
		b := Batch{Name: e.Name, Kind: e.Kind.String()}
		switch d := e.Data.(type) {
		case *scene.PointData:
			b.Color = PointColor
			b.Points = vec32(e.Position())
		case *scene.LightData:
			b.Color = PointColor
			b.Points = vec32(e.Position())
			b.Light = &Light{
				Handle:   d.Handle,
				Position: [4]float32{float32(e.X), float32(e.Y), float32(e.Z), 0},
			}
		case *scene.SegmentData:
			b.Color = SegmentColor
			b.Lines = append(vec32(pos(r, d.A)), vec32(pos(r, d.B))...)
		case *scene.ContourData:
			b.LoopColor = SegmentColor
			b.Loops = [][]float32{loop(contourPoints(r, d))}
		case *scene.Figure2Data:
			b.Color = FaceColor
			b.LoopColor = EdgeColor
			b.Mesh = faceMesh(positions(r, d.Points))
			b.Loops = [][]float32{loop(positions(r, d.Points))}
		case *scene.Figure3Data:
			b.Color = FaceColor
			b.LoopColor = EdgeColor
			b.Mesh = &Mesh{}
			for _, f := range d.Faces {
				fd := r.Get(f).Data.(*scene.Figure2Data)
				pts := positions(r, fd.Points)
				b.Mesh.merge(faceMesh(pts))
				b.Loops = append(b.Loops, loop(pts))
			}
		default:
			if e.Kind.IsPlane() {
				planeBatch(r, e.Name, &b)
			}
		}
		batches = append(batches, b)
	}
	return batches
}

func planeBatch(r *scene.Registry, name string, b *Batch) {
	_, base, err := r.Plane(name)
	if err != nil {
		return
	}
	b.Color = PlaneColor
	b.LoopColor = SegmentColor
	if len(base.Contours) > 0 {
		c := r.Get(base.Contours[0])
		pts := contourPoints(r, c.Data.(*scene.ContourData))
		b.Mesh = fan(pts, func(_, _, _ geom.Vec3) geom.Vec3 { return base.Normal })
		b.Loops = [][]float32{loop(pts)}
		return
	}
	if base.Normal.Z() == 0 {
		return
	}
	anchor := pos(r, base.Anchor)
	const s = PlaneHalfSize
	corners := make([]geom.Vec3, 0, 4)
	for _, xy := range [][2]float64{{s, s}, {s, -s}, {-s, -s}, {-s, s}} {
		z := geom.PlaneZ(anchor, base.Normal, xy[0], xy[1])
		corners = append(corners, geom.Vec3{xy[0], xy[1], z})
	}
	b.Mesh = fan(corners, func(_, _, _ geom.Vec3) geom.Vec3 { return base.Normal })
}

// faceMesh fans the polygon from its first vertex with per-triangle
// normals cross(p[i]-p0, p[i-1]-p0).
func faceMesh(pts []geom.Vec3) *Mesh {
	return fan(pts, geom.FanNormal)
}

func fan(pts []geom.Vec3, normal func(p0, prev, cur geom.Vec3) geom.Vec3) *Mesh {
	m := &Mesh{}
	for i := 2; i < len(pts); i++ {
		m.addTriangle(pts[0], pts[i-1], pts[i], normal(pts[0], pts[i-1], pts[i]))
	}
	return m
}

// contourPoints returns the start point of every contour segment.
func contourPoints(r *scene.Registry, c *scene.ContourData) []geom.Vec3 {
	pts := make([]geom.Vec3, 0, len(c.Segments))
	for _, s := range c.Segments {
		pts = append(pts, pos(r, r.Get(s).Data.(*scene.SegmentData).A))
	}
	return pts
}

func positions(r *scene.Registry, names []string) []geom.Vec3 {
	pts := make([]geom.Vec3, len(names))
	for i, n := range names {
		pts[i] = pos(r, n)
	}
	return pts
}

func pos(r *scene.Registry, name string) geom.Vec3 {
	p, _ := r.Position(name)
	return p
}

func loop(pts []geom.Vec3) []float32 {
	out := make([]float32, 0, len(pts)*3)
	for _, p := range pts {
		out = append(out, vec32(p)...)
	}
	return out
}
