package render

import "github.com/chazu/stereo/pkg/geom"

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Vertices) == 0
}

// addTriangle appends a flat-shaded triangle. Vertices are not shared
// between triangles so each keeps its own normal.
func (m *Mesh) addTriangle(a, b, c, normal geom.Vec3) {
	base := uint32(m.VertexCount())
	for _, v := range []geom.Vec3{a, b, c} {
		m.Vertices = append(m.Vertices, vec32(v)...)
		m.Normals = append(m.Normals, vec32(normal)...)
	}
	m.Indices = append(m.Indices, base, base+1, base+2)
}

// merge adds all of o's triangles to m.
func (m *Mesh) merge(o *Mesh) {
	if o.IsEmpty() {
		return
	}
	base := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, o.Vertices...)
	m.Normals = append(m.Normals, o.Normals...)
	for _, i := range o.Indices {
		m.Indices = append(m.Indices, base+i)
	}
}

func vec32(v geom.Vec3) []float32 {
	return []float32{float32(v[0]), float32(v[1]), float32(v[2])}
}
