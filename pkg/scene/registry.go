package scene

import (
	"fmt"

	"github.com/chazu/stereo/pkg/geom"
	"github.com/google/uuid"
)

// Registry owns every entity of a scene, keyed by unique name.
//
// A Registry is not safe for concurrent use. Mutation and rendering are
// expected to happen on one goroutine, one after the other.
type Registry struct {
	id       string
	entities map[string]*Entity
	order    []string // insertion order, for display

	observers    []observer
	nextObserver int

	// revision increases on every geometric change. Planes compare it with
	// the revision of their last refresh to decide whether to recompute.
	revision  uint64
	refreshes uint64

	tx *txn

	undo []Action
	redo []Action
}

type observer struct {
	id int
	fn func()
}

// New returns an empty registry with a fresh scene identifier.
func New() *Registry {
	return &Registry{
		id:       uuid.NewString(),
		entities: make(map[string]*Entity),
	}
}

// ID identifies the scene document. It survives save and load.
func (r *Registry) ID() string {
	return r.id
}

// Len returns the number of entities.
func (r *Registry) Len() int {
	return len(r.entities)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.entities[name]
	return ok
}

// Get returns the entity registered under name, or nil.
func (r *Registry) Get(name string) *Entity {
	return r.entities[name]
}

// Lookup returns the entity registered under name.
func (r *Registry) Lookup(name string) (*Entity, error) {
	e, ok := r.entities[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEntityNotFound, name)
	}
	return e, nil
}

// Names returns entity names in insertion order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Entities returns all entities in insertion order.
func (r *Registry) Entities() []*Entity {
	out := make([]*Entity, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entities[name])
	}
	return out
}

// Children returns the child entities of the named entity.
func (r *Registry) Children(name string) []*Entity {
	e := r.entities[name]
	if e == nil {
		return nil
	}
	children := make([]*Entity, 0, len(e.Children))
	for _, c := range e.Children {
		if ce := r.entities[c]; ce != nil {
			children = append(children, ce)
		}
	}
	return children
}

// Roots returns, in insertion order, the entities that are nobody's child.
// These are the top level of the display tree.
func (r *Registry) Roots() []string {
	isChild := make(map[string]bool)
	for _, e := range r.entities {
		for _, c := range e.Children {
			isChild[c] = true
		}
	}
	var roots []string
	for _, name := range r.order {
		if !isChild[name] {
			roots = append(roots, name)
		}
	}
	return roots
}

// Position returns the world position of a point or light.
func (r *Registry) Position(name string) (geom.Vec3, error) {
	e, err := r.lookupKind(name, "point", func(k Kind) bool { return k.IsPositional() })
	if err != nil {
		return geom.Vec3{}, err
	}
	return e.Position(), nil
}

// Revision returns the current geometry revision.
func (r *Registry) Revision() uint64 {
	return r.revision
}

// PlaneRefreshes returns how many times a plane normal has been
// recomputed.
func (r *Registry) PlaneRefreshes() uint64 {
	return r.refreshes
}

// Subscribe registers fn to be called after every successful mutation.
// The returned function removes the subscription.
func (r *Registry) Subscribe(fn func()) (cancel func()) {
	r.nextObserver++
	id := r.nextObserver
	r.observers = append(r.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range r.observers {
			if o.id == id {
				r.observers = append(r.observers[:i], r.observers[i+1:]...)
				return
			}
		}
	}
}

// changed bumps the revision and notifies subscribers, or defers the
// notification to the end of the running transaction.
func (r *Registry) changed() {
	r.revision++
	r.announce()
}

func (r *Registry) announce() {
	if r.tx != nil {
		r.tx.dirty = true
		return
	}
	r.notify()
}

func (r *Registry) notify() {
	for _, o := range append([]observer(nil), r.observers...) {
		o.fn()
	}
}

// checkNoErrors validates the names a creation call depends on. Every
// required name must be non-empty and registered, and newName must be
// non-empty and free.
func (r *Registry) checkNoErrors(newName string, required ...string) error {
	if err := r.checkRequired(required...); err != nil {
		return err
	}
	if newName == "" {
		return ErrEmptyField
	}
	if _, ok := r.entities[newName]; ok {
		return fmt.Errorf("%w: %q", ErrNameExists, newName)
	}
	return nil
}

func (r *Registry) checkRequired(required ...string) error {
	for _, name := range required {
		if name == "" {
			return ErrEmptyField
		}
		if _, ok := r.entities[name]; !ok {
			return fmt.Errorf("%w: %q", ErrEntityNotFound, name)
		}
	}
	return nil
}

// lookupKind fetches name and checks its kind with accept. what names the
// expected kind in the error.
func (r *Registry) lookupKind(name, what string, accept func(Kind) bool) (*Entity, error) {
	e, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	if !accept(e.Kind) {
		return nil, fmt.Errorf("%w: %q is a %s, want %s", ErrWrongKind, name, e.Kind, what)
	}
	return e, nil
}

// register adds e to the arena. Callers validate first.
func (r *Registry) register(e *Entity) {
	r.entities[e.Name] = e
	r.order = append(r.order, e.Name)
	if r.tx != nil {
		r.tx.added = append(r.tx.added, e.Name)
	}
}

// pos returns the position of a registered point or light. Callers have
// already validated name.
func (r *Registry) pos(name string) geom.Vec3 {
	if e := r.entities[name]; e != nil {
		return e.Position()
	}
	return geom.Vec3{}
}

// Replace swaps the whole entity graph of r for that of other and notifies
// subscribers. Subscribers of r are kept; other must not be used afterwards.
func (r *Registry) Replace(other *Registry) {
	r.id = other.id
	r.entities = other.entities
	r.order = other.order
	r.undo = other.undo
	r.redo = other.redo
	r.tx = nil
	// Plane caches in other were computed against other's revisions.
	if other.revision > r.revision {
		r.revision = other.revision
	}
	r.changed()
}
