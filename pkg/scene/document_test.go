package scene

import (
	"errors"
	"reflect"
	"testing"
)

// richScene exercises every entity kind, shared points and a contour.
func richScene(t *testing.T) *Registry {
	t.Helper()
	r := horizontalPlane(t, 1)
	must(t, r.AddLight("sun", 7, 0, 0, 20))
	must(t, r.AddSegment("AB", "A", "B"))
	must(t, r.AddSegment("AC", "A", "C"))
	must(t, r.AddFigure2("t", []string{"A", "B", "C"}))
	must(t, r.AddPlaneByPointAndSegment("pps", "C", "AB"))
	must(t, r.AddPlaneByPlane("par", "sun", "pl"))
	must(t, r.AddContourNToPlane("pl", 5, 0.5))
	must(t, r.AddPrismN("box", 4, 1, 2))
	must(t, r.Translate("t", 0.25, 0, 0))
	r.undo = []Action{{Op: "point", Names: []string{"A"}}}
	return r
}

func TestDocumentRoundTrip(t *testing.T) {
	r := richScene(t)
	doc := r.Document()
	if doc.Format != DocumentFormat || doc.Version != DocumentVersion || doc.ID != r.ID() {
		t.Errorf("header = %q %d %q", doc.Format, doc.Version, doc.ID)
	}
	if len(doc.Entities) != r.Len() {
		t.Fatalf("records = %d, want %d", len(doc.Entities), r.Len())
	}

	loaded, err := FromDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded.Document(), doc) {
		t.Error("document changed across a round trip")
	}
	if !sameNames(loaded.Names(), r.Names()) {
		t.Errorf("names = %v, want %v", loaded.Names(), r.Names())
	}
	if loaded.Get("t").X != 0.25 {
		t.Errorf("pending offset lost: %v", loaded.Get("t").X)
	}
	undo, _ := loaded.History()
	if len(undo) != 1 || undo[0].Op != "point" {
		t.Errorf("undo = %+v", undo)
	}
}

func TestDocumentPreservesAliasing(t *testing.T) {
	loaded, err := FromDocument(richScene(t).Document())
	if err != nil {
		t.Fatal(err)
	}
	ab := loaded.Get("AB").Data.(*SegmentData)
	ac := loaded.Get("AC").Data.(*SegmentData)
	if loaded.Get(ab.A) != loaded.Get(ac.A) {
		t.Fatal("segments no longer share their start point")
	}

	must(t, loaded.SetOffset("A", Offset{3, 3, 3}))
	face := loaded.Get("t").Data.(*Figure2Data)
	if p := loaded.Get(face.Points[0]); p.X != 3 {
		t.Errorf("face vertex did not follow the shared point: %+v", p)
	}
}

func TestDocumentAcceptsAnyRecordOrder(t *testing.T) {
	doc := richScene(t).Document()
	recs := doc.Entities
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	if _, err := FromDocument(doc); err != nil {
		t.Fatalf("reversed records: %v", err)
	}
}

func TestFromDocumentErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc *Document)
		want   error
	}{
		{"format", func(d *Document) { d.Format = "pickle" }, ErrInvalidFormat},
		{"version", func(d *Document) { d.Version = 99 }, ErrInvalidFormat},
		{"kind", func(d *Document) { d.Entities[0].Kind = "blob" }, ErrInvalidFormat},
		{"empty name", func(d *Document) { d.Entities[0].Name = "" }, ErrEmptyField},
		{"duplicate", func(d *Document) { d.Entities = append(d.Entities, d.Entities[0]) }, ErrNameExists},
		{"dangling", func(d *Document) {
			for i := range d.Entities {
				if d.Entities[i].Name == "AB" {
					d.Entities[i].B = "ghost"
				}
			}
		}, ErrEntityNotFound},
		{"wrong kind", func(d *Document) {
			for i := range d.Entities {
				if d.Entities[i].Name == "t" {
					d.Entities[i].Points[0] = "AB"
				}
			}
		}, ErrWrongKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := richScene(t).Document()
			tt.mutate(doc)
			r, err := FromDocument(doc)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if r != nil {
				t.Error("registry returned alongside an error")
			}
		})
	}
}
