package scene

import (
	"fmt"

	"github.com/chazu/stereo/pkg/geom"
)

// Translate adds (dx, dy, dz) to the entity's offset. For points and
// lights this moves them; for other kinds the offset stays pending until
// ApplyTranslation.
func (r *Registry) Translate(name string, dx, dy, dz float64) error {
	e, err := r.Lookup(name)
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}
	e.X += dx
	e.Y += dy
	e.Z += dz
	r.changed()
	return nil
}

// ApplyTranslation distributes the pending offset of a composite entity to
// every point it is built on and resets the offset to zero. A point shared
// by several parts of the entity moves once. Points and lights hold their
// position in the offset fields, so for them this is a no-op.
//
// The offset is not pushed down into intermediate entities: applying it on
// a Figure3 moves the distinct points of all its faces and leaves the
// faces' own offsets at zero.
func (r *Registry) ApplyTranslation(name string) error {
	e, err := r.Lookup(name)
	if err != nil {
		return fmt.Errorf("apply translation: %w", err)
	}
	if e.Kind.IsPositional() {
		return nil
	}
	r.applyTranslation(e)
	r.changed()
	return nil
}

func (r *Registry) applyTranslation(e *Entity) {
	delta := e.Position()
	if !geom.IsZero(delta) {
		for _, p := range r.pointsOf(e) {
			p.setPosition(p.Position().Add(delta))
		}
	}
	e.X, e.Y, e.Z = 0, 0, 0
}

// pointsOf returns the distinct points e is built on, in first-seen order.
func (r *Registry) pointsOf(e *Entity) []*Entity {
	var out []*Entity
	seen := make(map[string]bool)
	var walk func(name string)
	walk = func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		x := r.entities[name]
		if x == nil {
			return
		}
		if x.Kind.IsPositional() {
			out = append(out, x)
			return
		}
		for _, dep := range dependencies(x) {
			walk(dep)
		}
	}
	walk(e.Name)
	return out
}

// dependencies lists the entities e's geometry is derived from. A plane
// built on another plane depends only on its own anchor; the base plane
// supplies orientation, not position.
func dependencies(e *Entity) []string {
	switch d := e.Data.(type) {
	case *SegmentData:
		return []string{d.A, d.B}
	case *ContourData:
		return d.Segments
	case *Figure2Data:
		return d.Points
	case *Figure3Data:
		return d.Faces
	case *PlaneByPointsData:
		return append([]string{d.Anchor, d.B, d.C}, d.Contours...)
	case *PlaneByPointSegmentData:
		return append([]string{d.Anchor, d.Segment}, d.Contours...)
	case *PlaneByPlaneData:
		return append([]string{d.Anchor}, d.Contours...)
	}
	return nil
}
