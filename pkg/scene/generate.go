package scene

import (
	"fmt"
	"math"
)

// ring returns n positions evenly spaced on a circle of the given radius
// in the XY plane, starting on the +Y axis and going clockwise.
func ring(n int, radius float64) [][2]float64 {
	out := make([][2]float64, n)
	for i := range out {
		a := 2 * math.Pi / float64(n) * float64(i)
		out[i] = [2]float64{math.Sin(a) * radius, math.Cos(a) * radius}
	}
	return out
}

// MaxRingSides bounds the side count of generated polygons, contours and
// prisms.
const MaxRingSides = 4096

func checkRing(n int, radius float64) error {
	if n < 3 {
		return fmt.Errorf("%w: n must be at least 3, got %d", ErrInvalidArgument, n)
	}
	if n > MaxRingSides {
		return fmt.Errorf("%w: n must be at most %d, got %d", ErrInvalidArgument, MaxRingSides, n)
	}
	if !(radius > 0) {
		return fmt.Errorf("%w: radius must be positive, got %g", ErrInvalidArgument, radius)
	}
	return nil
}

// AddFigure2N builds a regular n-gon face of the given circumradius in the
// XY plane. Its points are named figure2_point_{name}_1 to _n.
func (r *Registry) AddFigure2N(name string, n int, radius float64) error {
	if err := checkRing(n, radius); err != nil {
		return fmt.Errorf("add polygon: %w", err)
	}
	if name == "" {
		return fmt.Errorf("add polygon: %w", ErrEmptyField)
	}
	return r.atomically(func() error {
		points := make([]string, n)
		for i, p := range ring(n, radius) {
			points[i] = fmt.Sprintf("figure2_point_%s_%d", name, i+1)
			if err := r.AddPoint(points[i], p[0], p[1], 0); err != nil {
				return fmt.Errorf("add polygon: %w", err)
			}
		}
		if err := r.AddFigure2(name, points); err != nil {
			return fmt.Errorf("add polygon: %w", err)
		}
		return nil
	})
}

// AddContourNToPlane builds a closed ring of n segments and attaches it to
// the plane as a new contour. The ring is laid out in XY and then
// projected onto the plane.
func (r *Registry) AddContourNToPlane(plane string, n int, radius float64) error {
	if err := r.checkRequired(plane); err != nil {
		return fmt.Errorf("add contour: %w", err)
	}
	if err := checkRing(n, radius); err != nil {
		return fmt.Errorf("add contour: %w", err)
	}
	if _, err := r.lookupKind(plane, "plane", isPlane); err != nil {
		return fmt.Errorf("add contour: %w", err)
	}
	return r.atomically(func() error {
		points := make([]string, n)
		for i, p := range ring(n, radius) {
			points[i] = fmt.Sprintf("contour_point_%s_%d", plane, i+1)
			if err := r.AddPoint(points[i], p[0], p[1], 0); err != nil {
				return fmt.Errorf("add contour: %w", err)
			}
		}
		segments := make([]string, n)
		for i := 1; i <= n; i++ {
			segments[i-1] = fmt.Sprintf("segment_%s_%d", plane, i)
			if err := r.AddSegment(segments[i-1], points[i-1], points[i%n]); err != nil {
				return fmt.Errorf("add contour: %w", err)
			}
		}
		_, err := r.AddContourToPlane(plane, segments)
		return err
	})
}

// AddPrismN builds a right prism over a regular n-gon: an upper and a
// lower face, n quadrilateral sides and the solid holding all of them.
func (r *Registry) AddPrismN(name string, n int, radius, height float64) error {
	if err := checkRing(n, radius); err != nil {
		return fmt.Errorf("add prism: %w", err)
	}
	if name == "" {
		return fmt.Errorf("add prism: %w", ErrEmptyField)
	}
	return r.atomically(func() error {
		upper := make([]string, n)
		lower := make([]string, n)
		for i, p := range ring(n, radius) {
			upper[i] = fmt.Sprintf("pnt_upr_%s_%d", name, i+1)
			lower[i] = fmt.Sprintf("pnt_lwr_%s_%d", name, i+1)
			if err := r.AddPoint(upper[i], p[0], p[1], height); err != nil {
				return fmt.Errorf("add prism: %w", err)
			}
			if err := r.AddPoint(lower[i], p[0], p[1], 0); err != nil {
				return fmt.Errorf("add prism: %w", err)
			}
		}

		faces := []string{"face_upper_" + name, "face_lower_" + name}
		if err := r.AddFigure2(faces[0], upper); err != nil {
			return fmt.Errorf("add prism: %w", err)
		}
		if err := r.AddFigure2(faces[1], lower); err != nil {
			return fmt.Errorf("add prism: %w", err)
		}
		for i := 1; i <= n; i++ {
			side := fmt.Sprintf("face_middle_%s_%d", name, i)
			quad := []string{upper[i-1], upper[i%n], lower[i%n], lower[i-1]}
			if err := r.AddFigure2(side, quad); err != nil {
				return fmt.Errorf("add prism: %w", err)
			}
			faces = append(faces, side)
		}
		if err := r.AddFigure3(name, faces); err != nil {
			return fmt.Errorf("add prism: %w", err)
		}
		return nil
	})
}
