package scene

// Action is one entry of the undo or redo stack. Op is the keyword of the
// creation command or "set"; Names lists the entities it touched.
//
// The stacks are kept with the scene and survive save and load, but no
// operation pushes to them yet.
type Action struct {
	Op    string   `json:"op"`
	Names []string `json:"names"`
}

// History returns copies of the undo and redo stacks.
func (r *Registry) History() (undo, redo []Action) {
	return append([]Action(nil), r.undo...), append([]Action(nil), r.redo...)
}
