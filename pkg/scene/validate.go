package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/chazu/stereo/pkg/geom"
)

// Severity tells whether a validation finding makes a scene unusable.
type Severity int

const (
	SeverityError   Severity = iota // scene must not be used
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Name     string   // entity with the problem, empty for scene-level findings
	Message  string   // human-readable description
	Severity Severity // error or warning
	Err      error    // sentinel the finding corresponds to, if any
}

func (e ValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] entity %q: %s", e.Severity, e.Name, e.Message)
}

func (e ValidationError) Unwrap() error { return e.Err }

// Validate checks the structural invariants of a scene: keys agree with
// entity names, every reference resolves to an entity of the right kind,
// and the dependency graph is acyclic. Planes whose normal has become zero
// and contours whose segments do not chain into a closed loop are reported
// as warnings: edits after construction may legally produce both.
// A result without error findings means the scene is valid. Validate never
// mutates r.
func Validate(r *Registry) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateNames(r)...)
	errs = append(errs, validateReferences(r)...)
	if hasErrors(errs) {
		// Later checks follow references and assume they resolve.
		return errs
	}
	errs = append(errs, validateAcyclic(r)...)
	if hasErrors(errs) {
		return errs
	}
	errs = append(errs, validateNormals(r)...)
	errs = append(errs, validateContours(r)...)
	return errs
}

func hasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// JoinErrors joins the error-severity findings into one error, or returns
// nil if there are none.
func JoinErrors(findings []ValidationError) error {
	var errs []error
	for _, f := range findings {
		if f.Severity == SeverityError {
			errs = append(errs, f)
		}
	}
	return errors.Join(errs...)
}

func validateNames(r *Registry) []ValidationError {
	var errs []ValidationError
	listed := make(map[string]bool, len(r.order))
	for _, name := range r.order {
		if listed[name] {
			errs = append(errs, ValidationError{
				Name: name, Message: "listed twice", Severity: SeverityError, Err: ErrNameExists,
			})
			continue
		}
		listed[name] = true
		if _, ok := r.entities[name]; !ok {
			errs = append(errs, ValidationError{
				Name: name, Message: "listed but not registered", Severity: SeverityError, Err: ErrEntityNotFound,
			})
		}
	}
	for _, key := range sortedKeys(r.entities) {
		e := r.entities[key]
		switch {
		case e == nil:
			errs = append(errs, ValidationError{
				Name: key, Message: "nil entity", Severity: SeverityError, Err: ErrInvalidFormat,
			})
			continue
		case key == "" || e.Name == "":
			errs = append(errs, ValidationError{
				Name: key, Message: "empty name", Severity: SeverityError, Err: ErrEmptyField,
			})
		case e.Name != key:
			errs = append(errs, ValidationError{
				Name:     key,
				Message:  fmt.Sprintf("registered under %q but named %q", key, e.Name),
				Severity: SeverityError,
				Err:      ErrInvalidFormat,
			})
		}
		if !listed[key] {
			errs = append(errs, ValidationError{
				Name: key, Message: "registered but missing from the display order", Severity: SeverityError, Err: ErrInvalidFormat,
			})
		}
		if !dataMatchesKind(e) {
			errs = append(errs, ValidationError{
				Name:     key,
				Message:  fmt.Sprintf("kind %s carries %T", e.Kind, e.Data),
				Severity: SeverityError,
				Err:      ErrInvalidFormat,
			})
		}
	}
	return errs
}

func sortedKeys(m map[string]*Entity) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dataMatchesKind(e *Entity) bool {
	switch e.Data.(type) {
	case *PointData:
		return e.Kind == KindPoint
	case *LightData:
		return e.Kind == KindLight
	case *SegmentData:
		return e.Kind == KindSegment
	case *ContourData:
		return e.Kind == KindContour
	case *Figure2Data:
		return e.Kind == KindFigure2
	case *Figure3Data:
		return e.Kind == KindFigure3
	case *PlaneByPointsData:
		return e.Kind == KindPlaneByPoints
	case *PlaneByPointSegmentData:
		return e.Kind == KindPlaneByPointSegment
	case *PlaneByPlaneData:
		return e.Kind == KindPlaneByPlane
	}
	return false
}

// ref is one typed reference from an entity to another.
type ref struct {
	field  string
	target string
	what   string
	accept func(Kind) bool
}

func isContour(k Kind) bool { return k == KindContour }

func refsOf(e *Entity) []ref {
	var refs []ref
	add := func(field, what string, accept func(Kind) bool, targets ...string) {
		for _, t := range targets {
			refs = append(refs, ref{field: field, target: t, what: what, accept: accept})
		}
	}
	switch d := e.Data.(type) {
	case *SegmentData:
		add("a", "point", positional, d.A)
		add("b", "point", positional, d.B)
	case *ContourData:
		add("plane", "plane", isPlane, d.Plane)
		add("segments", "segment", isSegment, d.Segments...)
	case *Figure2Data:
		add("points", "point", positional, d.Points...)
	case *Figure3Data:
		add("faces", "figure2", isFigure2, d.Faces...)
	case *PlaneByPointsData:
		add("anchor", "point", positional, d.Anchor)
		add("b", "point", positional, d.B)
		add("c", "point", positional, d.C)
		add("contours", "contour", isContour, d.Contours...)
	case *PlaneByPointSegmentData:
		add("anchor", "point", positional, d.Anchor)
		add("segment", "segment", isSegment, d.Segment)
		add("contours", "contour", isContour, d.Contours...)
	case *PlaneByPlaneData:
		add("anchor", "point", positional, d.Anchor)
		add("base", "plane", isPlane, d.Base)
		add("contours", "contour", isContour, d.Contours...)
	}
	return refs
}

// validateReferences checks that every child and every data reference
// names a registered entity, and that data references point at the kind
// the variant needs.
func validateReferences(r *Registry) []ValidationError {
	var errs []ValidationError
	for _, key := range sortedKeys(r.entities) {
		e := r.entities[key]
		if e == nil {
			continue
		}
		for _, c := range e.Children {
			if _, ok := r.entities[c]; !ok {
				errs = append(errs, ValidationError{
					Name:     key,
					Message:  fmt.Sprintf("child %q does not exist", c),
					Severity: SeverityError,
					Err:      ErrEntityNotFound,
				})
			}
		}
		for _, rf := range refsOf(e) {
			t, ok := r.entities[rf.target]
			switch {
			case !ok || t == nil:
				errs = append(errs, ValidationError{
					Name:     key,
					Message:  fmt.Sprintf("%s reference %q does not exist", rf.field, rf.target),
					Severity: SeverityError,
					Err:      ErrEntityNotFound,
				})
			case !rf.accept(t.Kind):
				errs = append(errs, ValidationError{
					Name:     key,
					Message:  fmt.Sprintf("%s reference %q is a %s, want %s", rf.field, rf.target, t.Kind, rf.what),
					Severity: SeverityError,
					Err:      ErrWrongKind,
				})
			}
		}
	}
	return errs
}

// validateAcyclic runs a three-colour DFS over child and dependency
// edges. A gray entity met again is on the current path, so it closes a
// cycle.
func validateAcyclic(r *Registry) []ValidationError {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int)
	var errs []ValidationError

	var visit func(name string) bool
	visit = func(name string) bool {
		switch color[name] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				Name:     name,
				Message:  "cycle detected",
				Severity: SeverityError,
				Err:      ErrInvalidFormat,
			})
			return true
		}
		color[name] = gray
		e := r.entities[name]
		edges := append(clone(e.Children), dependencies(e)...)
		if d, ok := e.Data.(*PlaneByPlaneData); ok {
			edges = append(edges, d.Base)
		}
		for _, next := range edges {
			if visit(next) {
				return true
			}
		}
		color[name] = black
		return false
	}

	for _, name := range r.order {
		if color[name] == white && visit(name) {
			break
		}
	}
	return errs
}

// validateNormals recomputes every plane normal from current positions
// without touching the cache. Collinear generators are only rejected when
// a plane is created, so a zero normal here is a warning.
func validateNormals(r *Registry) []ValidationError {
	var errs []ValidationError
	for _, name := range r.order {
		e := r.entities[name]
		if !e.Kind.IsPlane() {
			continue
		}
		if geom.IsZero(r.pureNormal(e)) {
			errs = append(errs, ValidationError{
				Name:     name,
				Message:  "plane normal is zero",
				Severity: SeverityWarning,
				Err:      ErrDegenerate,
			})
		}
	}
	return errs
}

func (r *Registry) pureNormal(e *Entity) geom.Vec3 {
	for {
		switch d := e.Data.(type) {
		case *PlaneByPointsData:
			return geom.PlaneNormal(r.pos(d.Anchor), r.pos(d.B), r.pos(d.C))
		case *PlaneByPointSegmentData:
			sd := r.entities[d.Segment].Data.(*SegmentData)
			return geom.PlaneNormal(r.pos(d.Anchor), r.pos(sd.A), r.pos(sd.B))
		case *PlaneByPlaneData:
			e = r.entities[d.Base]
		default:
			return geom.Vec3{}
		}
	}
}

// validateContours warns about contours whose segments do not chain end
// to start into a closed loop.
func validateContours(r *Registry) []ValidationError {
	var errs []ValidationError
	for _, name := range r.order {
		e := r.entities[name]
		cd, ok := e.Data.(*ContourData)
		if !ok {
			continue
		}
		n := len(cd.Segments)
		for i, sname := range cd.Segments {
			cur := r.entities[sname].Data.(*SegmentData)
			next := r.entities[cd.Segments[(i+1)%n]].Data.(*SegmentData)
			if cur.B != next.A {
				errs = append(errs, ValidationError{
					Name:     name,
					Message:  fmt.Sprintf("segment %q does not end where %q starts", sname, cd.Segments[(i+1)%n]),
					Severity: SeverityWarning,
				})
				break
			}
		}
	}
	return errs
}
