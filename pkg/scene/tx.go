package scene

// txn journals the changes made while a generator runs so they can be
// undone if a later step fails.
type txn struct {
	added []string
	dirty bool

	// contour and child lists of planes as they were before the first
	// contour was added to them in this transaction
	planes map[string]planeState
}

type planeState struct {
	contours []string
	children []string
}

func (t *txn) remember(pe *Entity, base *PlaneBase) {
	if t.planes == nil {
		t.planes = make(map[string]planeState)
	}
	if _, ok := t.planes[pe.Name]; ok {
		return
	}
	t.planes[pe.Name] = planeState{contours: clone(base.Contours), children: clone(pe.Children)}
}

// atomically runs fn as one transaction. If fn fails, every entity it
// registered is removed and touched planes get their contour lists back.
// Subscribers hear about a successful transaction once, at the end.
func (r *Registry) atomically(fn func() error) error {
	if r.tx != nil {
		return fn()
	}
	t := &txn{}
	r.tx = t
	err := fn()
	r.tx = nil
	if err != nil {
		r.rollback(t)
		return err
	}
	if t.dirty {
		r.notify()
	}
	return nil
}

func (r *Registry) rollback(t *txn) {
	if len(t.added) == 0 {
		return
	}
	gone := make(map[string]bool, len(t.added))
	for _, name := range t.added {
		gone[name] = true
		delete(r.entities, name)
	}
	kept := r.order[:0]
	for _, name := range r.order {
		if !gone[name] {
			kept = append(kept, name)
		}
	}
	r.order = kept
	for name, st := range t.planes {
		pe := r.entities[name]
		if pe == nil {
			continue
		}
		base, _ := PlaneOf(pe)
		base.Contours = st.contours
		pe.Children = st.children
	}
	// Planes recompute against the restored contour lists.
	r.revision++
}
