// Package geom is the stateless geometry kernel: vector helpers,
// collinearity and plane-equation evaluation. It knows nothing about
// scene entities.
package geom

import "github.com/go-gl/mathgl/mgl64"

// Vec3 is a 3D vector or position.
type Vec3 = mgl64.Vec3

// CollinearEpsilon is the cross-product magnitude below which two
// directions are treated as parallel.
const CollinearEpsilon = 1e-7

// IsCollinear reports whether the points fail to span a plane. The first
// point is the origin and the direction to the second point is compared
// against every later point. Fewer than three points cannot determine a
// plane and are reported as collinear.
func IsCollinear(points ...Vec3) bool {
	if len(points) < 3 {
		return true
	}
	origin := points[0]
	direction := points[1].Sub(origin)
	for _, p := range points[2:] {
		if direction.Cross(p.Sub(origin)).Len() < CollinearEpsilon {
			return true
		}
	}
	return false
}

// PlaneNormal returns cross(a-b, c-b), the normal of the plane through
// a, b and c with a as anchor.
func PlaneNormal(a, b, c Vec3) Vec3 {
	return a.Sub(b).Cross(c.Sub(b))
}

// PlaneZ solves the plane through anchor with the given normal for z at
// (x, y).
//
// The normal's z component must be non-zero; callers check this before
// calling. A zero component yields ±Inf or NaN.
func PlaneZ(anchor, normal Vec3, x, y float64) float64 {
	return ((anchor.X()-x)*normal.X() + (anchor.Y()-y)*normal.Y() + anchor.Z()*normal.Z()) / normal.Z()
}

// IsZero reports whether every component of v is exactly zero.
func IsZero(v Vec3) bool {
	return v[0] == 0 && v[1] == 0 && v[2] == 0
}

// FanNormal returns the normal of the fan triangle (p0, prev, cur):
// cross(cur-p0, prev-p0).
func FanNormal(p0, prev, cur Vec3) Vec3 {
	return cur.Sub(p0).Cross(prev.Sub(p0))
}
