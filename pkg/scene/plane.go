package scene

import (
	"fmt"

	"github.com/chazu/stereo/pkg/geom"
)

// Plane returns the named plane with its normal and contour projection
// brought up to date.
//
// The cache is recomputed only when the scene geometry changed since the
// last refresh, so calling Plane once per frame is cheap on a still scene.
func (r *Registry) Plane(name string) (*Entity, *PlaneBase, error) {
	e, err := r.lookupKind(name, "plane", isPlane)
	if err != nil {
		return nil, nil, err
	}
	r.refresh(e)
	base, _ := PlaneOf(e)
	return e, base, nil
}

// PlaneZ evaluates the named plane at (x, y). It fails with
// ErrDegenerate for vertical planes, whose normal has no z component.
func (r *Registry) PlaneZ(name string, x, y float64) (float64, error) {
	_, base, err := r.Plane(name)
	if err != nil {
		return 0, err
	}
	if base.Normal.Z() == 0 {
		return 0, fmt.Errorf("%w: plane %q is vertical", ErrDegenerate, name)
	}
	return geom.PlaneZ(r.pos(base.Anchor), base.Normal, x, y), nil
}

// refresh recomputes the normal of plane e and reprojects its contours if
// the geometry revision moved since the last refresh. Non-planes are
// ignored.
func (r *Registry) refresh(e *Entity) {
	base, ok := PlaneOf(e)
	if !ok || base.refreshed == r.revision {
		return
	}
	base.Normal = r.normal(e)
	moved := r.projectContours(base)
	if moved {
		// Projected points may feed other planes.
		r.revision++
	}
	base.refreshed = r.revision
	r.refreshes++
}

// normal applies the variant's normal formula to current positions.
func (r *Registry) normal(e *Entity) geom.Vec3 {
	switch d := e.Data.(type) {
	case *PlaneByPointsData:
		return geom.PlaneNormal(r.pos(d.Anchor), r.pos(d.B), r.pos(d.C))
	case *PlaneByPointSegmentData:
		seg := r.entities[d.Segment]
		if seg == nil {
			return d.Normal
		}
		sd := seg.Data.(*SegmentData)
		return geom.PlaneNormal(r.pos(d.Anchor), r.pos(sd.A), r.pos(sd.B))
	case *PlaneByPlaneData:
		base := r.entities[d.Base]
		if base == nil {
			return d.Normal
		}
		r.refresh(base)
		bp, _ := PlaneOf(base)
		return bp.Normal
	}
	return geom.Vec3{}
}

// projectContours moves every contour point onto the plane by solving the
// plane equation for z. Vertical planes are left alone since z is not a
// function of (x, y) there. It reports whether any point moved.
func (r *Registry) projectContours(base *PlaneBase) bool {
	if base.Normal.Z() == 0 {
		return false
	}
	moved := false
	anchor := r.pos(base.Anchor)
	for _, cname := range base.Contours {
		c := r.entities[cname]
		if c == nil {
			continue
		}
		cd := c.Data.(*ContourData)
		for _, sname := range cd.Segments {
			s := r.entities[sname]
			if s == nil {
				continue
			}
			sd := s.Data.(*SegmentData)
			for _, pname := range []string{sd.A, sd.B} {
				p := r.entities[pname]
				if p == nil {
					continue
				}
				z := geom.PlaneZ(anchor, base.Normal, p.X, p.Y)
				if z != p.Z {
					p.Z = z
					moved = true
				}
			}
		}
	}
	return moved
}
