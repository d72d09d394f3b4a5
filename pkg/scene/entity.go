package scene

import (
	"fmt"

	"github.com/chazu/stereo/pkg/geom"
)

// Kind enumerates the entity variants.
type Kind int

const (
	KindPoint               Kind = iota // free point
	KindLight                           // point carrying a renderer light
	KindSegment                         // two shared points
	KindContour                         // closed run of segments on a plane
	KindFigure2                         // planar face over shared points
	KindPlaneByPoints                   // plane through three points
	KindPlaneByPointSegment             // plane through a point and a segment
	KindPlaneByPlane                    // plane parallel to another plane
	KindFigure3                         // solid bounded by faces
)

var kindNames = map[Kind]string{
	KindPoint:               "point",
	KindLight:               "light",
	KindSegment:             "segment",
	KindContour:             "contour",
	KindFigure2:             "figure2",
	KindPlaneByPoints:       "plane-by-points",
	KindPlaneByPointSegment: "plane-by-point-segment",
	KindPlaneByPlane:        "plane-by-plane",
	KindFigure3:             "figure3",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown entity kind %q", ErrInvalidFormat, s)
}

// IsPlane reports whether k is one of the plane variants.
func (k Kind) IsPlane() bool {
	return k == KindPlaneByPoints || k == KindPlaneByPointSegment || k == KindPlaneByPlane
}

// IsPositional reports whether entities of kind k have their own world
// position (points and lights).
func (k Kind) IsPositional() bool {
	return k == KindPoint || k == KindLight
}

// Entity is a named member of the scene.
//
// For points and lights X, Y, Z is the world position. For every other kind
// it is the pending translation that ApplyTranslation distributes to the
// entity's points before resetting it to zero.
type Entity struct {
	Name     string
	Kind     Kind
	X, Y, Z  float64
	Children []string // display hierarchy only; children may have several parents
	Data     EntityData
}

// Position returns (X, Y, Z) as a vector.
func (e *Entity) Position() geom.Vec3 {
	return geom.Vec3{e.X, e.Y, e.Z}
}

func (e *Entity) setPosition(v geom.Vec3) {
	e.X, e.Y, e.Z = v[0], v[1], v[2]
}

// EntityData is the kind-specific payload of an entity.
type EntityData interface {
	entityData() // restricts implementations to this package
}

// PointData is the payload of a free point.
type PointData struct{}

func (*PointData) entityData() {}

// LightData is the payload of a light point. Handle is the renderer's
// identifier for the light and is opaque to the scene.
type LightData struct {
	Handle int
}

func (*LightData) entityData() {}

// SegmentData joins two points.
type SegmentData struct {
	A, B string
}

func (*SegmentData) entityData() {}

// ContourData is a closed polyline of segments attached to a plane. Each
// segment is expected to end where the next one starts; this is not
// enforced.
type ContourData struct {
	Plane    string
	Segments []string
}

func (*ContourData) entityData() {}

// Figure2Data is a planar face. Vertex order defines the winding.
type Figure2Data struct {
	Points []string
}

func (*Figure2Data) entityData() {}

// Figure3Data is a solid made of faces.
type Figure3Data struct {
	Faces []string
}

func (*Figure3Data) entityData() {}

// PlaneBase is the state shared by every plane variant.
type PlaneBase struct {
	Anchor   string    // point the plane passes through
	Normal   geom.Vec3 // cached; see Registry.Plane
	Contours []string  // contour entities drawn on the plane

	refreshed uint64 // registry revision the cache was computed at
}

func (p *PlaneBase) plane() *PlaneBase { return p }

// PlaneByPointsData is a plane through Anchor, B and C with normal
// cross(Anchor-B, C-B).
type PlaneByPointsData struct {
	PlaneBase
	B, C string
}

func (*PlaneByPointsData) entityData() {}

// PlaneByPointSegmentData is a plane through Anchor and both endpoints of
// Segment, computed as a three-point plane with the endpoints as B and C.
type PlaneByPointSegmentData struct {
	PlaneBase
	Segment string
}

func (*PlaneByPointSegmentData) entityData() {}

// PlaneByPlaneData is a plane through Anchor parallel to Base.
type PlaneByPlaneData struct {
	PlaneBase
	Base string
}

func (*PlaneByPlaneData) entityData() {}

type planeData interface {
	EntityData
	plane() *PlaneBase
}

// PlaneOf returns the shared plane state of e, or false if e is not a plane.
func PlaneOf(e *Entity) (*PlaneBase, bool) {
	if e == nil {
		return nil, false
	}
	pd, ok := e.Data.(planeData)
	if !ok {
		return nil, false
	}
	return pd.plane(), true
}
