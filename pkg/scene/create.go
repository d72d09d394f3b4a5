package scene

import (
	"fmt"

	"github.com/chazu/stereo/pkg/geom"
)

func positional(k Kind) bool { return k.IsPositional() }
func isSegment(k Kind) bool  { return k == KindSegment }
func isFigure2(k Kind) bool  { return k == KindFigure2 }
func isPlane(k Kind) bool    { return k.IsPlane() }

// requireKinds checks that every name is of an accepted kind. Names have
// already been validated as present.
func (r *Registry) requireKinds(what string, accept func(Kind) bool, names ...string) error {
	for _, name := range names {
		if _, err := r.lookupKind(name, what, accept); err != nil {
			return err
		}
	}
	return nil
}

// AddPoint registers a free point at (x, y, z).
func (r *Registry) AddPoint(name string, x, y, z float64) error {
	if err := r.checkNoErrors(name); err != nil {
		return fmt.Errorf("add point: %w", err)
	}
	r.register(&Entity{Name: name, Kind: KindPoint, X: x, Y: y, Z: z, Data: &PointData{}})
	r.changed()
	return nil
}

// AddLight registers a light point. handle is the renderer's light
// identifier.
func (r *Registry) AddLight(name string, handle int, x, y, z float64) error {
	if err := r.checkNoErrors(name); err != nil {
		return fmt.Errorf("add light: %w", err)
	}
	r.register(&Entity{Name: name, Kind: KindLight, X: x, Y: y, Z: z, Data: &LightData{Handle: handle}})
	r.changed()
	return nil
}

// AddSegment registers a segment between two existing points.
func (r *Registry) AddSegment(name, a, b string) error {
	if err := r.checkNoErrors(name, a, b); err != nil {
		return fmt.Errorf("add segment: %w", err)
	}
	if err := r.requireKinds("point", positional, a, b); err != nil {
		return fmt.Errorf("add segment: %w", err)
	}
	r.register(&Entity{
		Name:     name,
		Kind:     KindSegment,
		Children: []string{a, b},
		Data:     &SegmentData{A: a, B: b},
	})
	r.changed()
	return nil
}

// AddFigure2 registers a face over existing points, in winding order.
func (r *Registry) AddFigure2(name string, points []string) error {
	if err := r.checkNoErrors(name, points...); err != nil {
		return fmt.Errorf("add figure2: %w", err)
	}
	if len(points) < 3 {
		return fmt.Errorf("add figure2: %w: a face needs at least 3 points, got %d", ErrInvalidArgument, len(points))
	}
	if err := r.requireKinds("point", positional, points...); err != nil {
		return fmt.Errorf("add figure2: %w", err)
	}
	r.register(&Entity{
		Name:     name,
		Kind:     KindFigure2,
		Children: clone(points),
		Data:     &Figure2Data{Points: clone(points)},
	})
	r.changed()
	return nil
}

// AddPlaneByPoints registers a plane through three points, anchored at
// the first. Collinear points fail with ErrDegenerate.
func (r *Registry) AddPlaneByPoints(name, p1, p2, p3 string) error {
	if err := r.checkNoErrors(name, p1, p2, p3); err != nil {
		return fmt.Errorf("add plane by points: %w", err)
	}
	if err := r.requireKinds("point", positional, p1, p2, p3); err != nil {
		return fmt.Errorf("add plane by points: %w", err)
	}
	if geom.IsCollinear(r.pos(p1), r.pos(p2), r.pos(p3)) {
		return fmt.Errorf("add plane by points: %w: %q, %q, %q", ErrDegenerate, p1, p2, p3)
	}
	e := &Entity{
		Name:     name,
		Kind:     KindPlaneByPoints,
		Children: []string{p1, p2, p3},
		Data:     &PlaneByPointsData{PlaneBase: PlaneBase{Anchor: p1}, B: p2, C: p3},
	}
	r.register(e)
	r.revision++
	r.refresh(e)
	r.announce()
	return nil
}

// AddPlaneByPointAndSegment registers a plane through a point and both
// endpoints of a segment. The point must not be collinear with the segment.
func (r *Registry) AddPlaneByPointAndSegment(name, point, segment string) error {
	if err := r.checkNoErrors(name, point, segment); err != nil {
		return fmt.Errorf("add plane by point and segment: %w", err)
	}
	if err := r.requireKinds("point", positional, point); err != nil {
		return fmt.Errorf("add plane by point and segment: %w", err)
	}
	seg, err := r.lookupKind(segment, "segment", isSegment)
	if err != nil {
		return fmt.Errorf("add plane by point and segment: %w", err)
	}
	sd := seg.Data.(*SegmentData)
	if geom.IsCollinear(r.pos(point), r.pos(sd.A), r.pos(sd.B)) {
		return fmt.Errorf("add plane by point and segment: %w: %q and %q", ErrDegenerate, point, segment)
	}
	e := &Entity{
		Name:     name,
		Kind:     KindPlaneByPointSegment,
		Children: []string{point, segment},
		Data:     &PlaneByPointSegmentData{PlaneBase: PlaneBase{Anchor: point}, Segment: segment},
	}
	r.register(e)
	r.revision++
	r.refresh(e)
	r.announce()
	return nil
}

// AddPlaneByPlane registers a plane through point, parallel to an existing
// plane.
func (r *Registry) AddPlaneByPlane(name, point, plane string) error {
	if err := r.checkNoErrors(name, point, plane); err != nil {
		return fmt.Errorf("add plane by plane: %w", err)
	}
	if err := r.requireKinds("point", positional, point); err != nil {
		return fmt.Errorf("add plane by plane: %w", err)
	}
	if err := r.requireKinds("plane", isPlane, plane); err != nil {
		return fmt.Errorf("add plane by plane: %w", err)
	}
	e := &Entity{
		Name:     name,
		Kind:     KindPlaneByPlane,
		Children: []string{point, plane},
		Data:     &PlaneByPlaneData{PlaneBase: PlaneBase{Anchor: point}, Base: plane},
	}
	r.register(e)
	r.revision++
	r.refresh(e)
	r.announce()
	return nil
}

// ContourName returns the name the index-th contour of a plane is
// registered under.
func ContourName(plane string, index int) string {
	return fmt.Sprintf("contour_%s_%d", plane, index)
}

// AddContourToPlane binds segments into a contour on a plane and projects
// the contour's points onto it. The contour is registered as
// contour_{plane}_{index}; its name is returned.
func (r *Registry) AddContourToPlane(plane string, segments []string) (string, error) {
	if err := r.checkRequired(append([]string{plane}, segments...)...); err != nil {
		return "", fmt.Errorf("add contour: %w", err)
	}
	pe, err := r.lookupKind(plane, "plane", isPlane)
	if err != nil {
		return "", fmt.Errorf("add contour: %w", err)
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("add contour: %w: no segments", ErrInvalidArgument)
	}
	if err := r.requireKinds("segment", isSegment, segments...); err != nil {
		return "", fmt.Errorf("add contour: %w", err)
	}
	base, _ := PlaneOf(pe)
	name := ContourName(plane, len(base.Contours))
	if err := r.checkNoErrors(name); err != nil {
		return "", fmt.Errorf("add contour: %w", err)
	}

	if r.tx != nil {
		r.tx.remember(pe, base)
	}
	r.register(&Entity{
		Name:     name,
		Kind:     KindContour,
		Children: clone(segments),
		Data:     &ContourData{Plane: plane, Segments: clone(segments)},
	})
	base.Contours = append(base.Contours, name)
	pe.Children = append(pe.Children, name)
	r.revision++
	r.refresh(pe)
	r.announce()
	return name, nil
}

// AddFigure3 registers a solid over existing faces.
func (r *Registry) AddFigure3(name string, faces []string) error {
	if err := r.checkNoErrors(name, faces...); err != nil {
		return fmt.Errorf("add figure3: %w", err)
	}
	if len(faces) == 0 {
		return fmt.Errorf("add figure3: %w: no faces", ErrInvalidArgument)
	}
	if err := r.requireKinds("figure2", isFigure2, faces...); err != nil {
		return fmt.Errorf("add figure3: %w", err)
	}
	r.register(&Entity{
		Name:     name,
		Kind:     KindFigure3,
		Children: clone(faces),
		Data:     &Figure3Data{Faces: clone(faces)},
	})
	r.changed()
	return nil
}

func clone(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
