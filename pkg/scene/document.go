package scene

import (
	"errors"
	"fmt"
)

// Document format identifiers.
const (
	DocumentFormat  = "stereo-scene"
	DocumentVersion = 1
)

// Document is the persisted form of a scene: one record per entity, in
// insertion order, with references stored as names.
type Document struct {
	Format   string   `json:"format"`
	Version  int      `json:"version"`
	ID       string   `json:"id"`
	Entities []Record `json:"entities"`
	Undo     []Action `json:"undo,omitempty"`
	Redo     []Action `json:"redo,omitempty"`
}

// Record is one entity. Only the fields of its kind are set.
type Record struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Z        float64  `json:"z"`
	Children []string `json:"children,omitempty"`

	// light
	Handle int `json:"handle,omitempty"`

	// segment uses A and B, plane-by-points uses B and C
	A string `json:"a,omitempty"`
	B string `json:"b,omitempty"`
	C string `json:"c,omitempty"`

	// planes
	Anchor   string      `json:"anchor,omitempty"`
	Normal   *[3]float64 `json:"normal,omitempty"`
	Contours []string    `json:"contours,omitempty"`
	Segment  string      `json:"segment,omitempty"`
	Base     string      `json:"base,omitempty"`

	// contour, figure2, figure3
	Plane    string   `json:"plane,omitempty"`
	Segments []string `json:"segments,omitempty"`
	Points   []string `json:"points,omitempty"`
	Faces    []string `json:"faces,omitempty"`
}

// Document exports the scene.
func (r *Registry) Document() *Document {
	doc := &Document{
		Format:   DocumentFormat,
		Version:  DocumentVersion,
		ID:       r.id,
		Entities: make([]Record, 0, len(r.order)),
	}
	doc.Undo, doc.Redo = r.History()
	for _, name := range r.order {
		doc.Entities = append(doc.Entities, record(r.entities[name]))
	}
	return doc
}

func record(e *Entity) Record {
	rec := Record{
		Name:     e.Name,
		Kind:     e.Kind.String(),
		X:        e.X,
		Y:        e.Y,
		Z:        e.Z,
		Children: clone(e.Children),
	}
	if base, ok := PlaneOf(e); ok {
		n := [3]float64(base.Normal)
		rec.Anchor = base.Anchor
		rec.Normal = &n
		rec.Contours = clone(base.Contours)
	}
	switch d := e.Data.(type) {
	case *LightData:
		rec.Handle = d.Handle
	case *SegmentData:
		rec.A, rec.B = d.A, d.B
	case *ContourData:
		rec.Plane = d.Plane
		rec.Segments = clone(d.Segments)
	case *Figure2Data:
		rec.Points = clone(d.Points)
	case *Figure3Data:
		rec.Faces = clone(d.Faces)
	case *PlaneByPointsData:
		rec.B, rec.C = d.B, d.C
	case *PlaneByPointSegmentData:
		rec.Segment = d.Segment
	case *PlaneByPlaneData:
		rec.Base = d.Base
	}
	return rec
}

// FromDocument rebuilds a registry from doc. All records are instantiated
// first and references are checked afterwards, so records may appear in
// any order. Shared references come back shared, since every reference
// resolves through the same arena entry. On error no registry is returned.
func FromDocument(doc *Document) (*Registry, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidFormat)
	}
	if doc.Format != DocumentFormat {
		return nil, fmt.Errorf("%w: format %q", ErrInvalidFormat, doc.Format)
	}
	if doc.Version != DocumentVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidFormat, doc.Version)
	}

	r := New()
	if doc.ID != "" {
		r.id = doc.ID
	}
	r.undo = append([]Action(nil), doc.Undo...)
	r.redo = append([]Action(nil), doc.Redo...)

	var errs []error
	for i, rec := range doc.Entities {
		e, err := entityFromRecord(rec)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if _, ok := r.entities[e.Name]; ok {
			errs = append(errs, fmt.Errorf("record %d: %w: %q", i, ErrNameExists, e.Name))
			continue
		}
		r.register(e)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := JoinErrors(Validate(r)); err != nil {
		return nil, err
	}
	return r, nil
}

func entityFromRecord(rec Record) (*Entity, error) {
	if rec.Name == "" {
		return nil, ErrEmptyField
	}
	kind, err := ParseKind(rec.Kind)
	if err != nil {
		return nil, err
	}
	e := &Entity{
		Name:     rec.Name,
		Kind:     kind,
		X:        rec.X,
		Y:        rec.Y,
		Z:        rec.Z,
		Children: clone(rec.Children),
	}
	base := PlaneBase{Anchor: rec.Anchor, Contours: clone(rec.Contours)}
	if rec.Normal != nil {
		base.Normal = *rec.Normal
	}
	switch kind {
	case KindPoint:
		e.Data = &PointData{}
	case KindLight:
		e.Data = &LightData{Handle: rec.Handle}
	case KindSegment:
		e.Data = &SegmentData{A: rec.A, B: rec.B}
	case KindContour:
		e.Data = &ContourData{Plane: rec.Plane, Segments: clone(rec.Segments)}
	case KindFigure2:
		e.Data = &Figure2Data{Points: clone(rec.Points)}
	case KindFigure3:
		e.Data = &Figure3Data{Faces: clone(rec.Faces)}
	case KindPlaneByPoints:
		e.Data = &PlaneByPointsData{PlaneBase: base, B: rec.B, C: rec.C}
	case KindPlaneByPointSegment:
		e.Data = &PlaneByPointSegmentData{PlaneBase: base, Segment: rec.Segment}
	case KindPlaneByPlane:
		e.Data = &PlaneByPlaneData{PlaneBase: base, Base: rec.Base}
	}
	return e, nil
}
