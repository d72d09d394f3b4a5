package scene

import "testing"

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// triangle registers A(1,0,0), B(0,1,0) and C(0,0,1).
func triangle(t *testing.T) *Registry {
	t.Helper()
	r := New()
	must(t, r.AddPoint("A", 1, 0, 0))
	must(t, r.AddPoint("B", 0, 1, 0))
	must(t, r.AddPoint("C", 0, 0, 1))
	return r
}

// horizontalPlane registers plane "pl" through three points at height z.
func horizontalPlane(t *testing.T, z float64) *Registry {
	t.Helper()
	r := New()
	must(t, r.AddPoint("A", 0, 0, z))
	must(t, r.AddPoint("B", 1, 0, z))
	must(t, r.AddPoint("C", 0, 1, z))
	must(t, r.AddPlaneByPoints("pl", "A", "B", "C"))
	return r
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
