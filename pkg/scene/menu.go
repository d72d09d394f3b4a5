package scene

import "fmt"

// Command is a leaf of the creation menu: the parameters an "add entity"
// form collects and the registry call they feed.
type Command struct {
	Keyword string                            `json:"keyword"` // script name, e.g. "plane-by-points"
	Params  []ParamSpec                       `json:"params"`
	Run     func(r *Registry, v Values) error `json:"-"`
}

// MenuItem is either a Command or a labelled submenu.
type MenuItem struct {
	Label   string     `json:"label"`
	Command *Command   `json:"command,omitempty"`
	Submenu []MenuItem `json:"submenu,omitempty"`
}

// Invoke checks v against the command's parameters and runs it.
func (c *Command) Invoke(r *Registry, v Values) error {
	for _, p := range c.Params {
		val, ok := v[p.Field]
		if !ok {
			return fmt.Errorf("%s: %w: missing %s", c.Keyword, ErrInvalidArgument, p.Field)
		}
		if !matches(p.Type, val) {
			return fmt.Errorf("%s: %w: %s wants %s, got %T", c.Keyword, ErrTypeMismatch, p.Field, p.Type, val)
		}
		if p.Type == ParamNames && len(val.([]string)) < p.MinRepeats {
			return fmt.Errorf("%s: %w: %s needs at least %d names", c.Keyword, ErrInvalidArgument, p.Field, p.MinRepeats)
		}
	}
	return c.Run(r, v)
}

func str(f, label string) ParamSpec { return ParamSpec{Field: f, Label: label, Type: ParamString} }
func num(f, label string) ParamSpec { return ParamSpec{Field: f, Label: label, Type: ParamFloat} }
func integer(f, label string) ParamSpec {
	return ParamSpec{Field: f, Label: label, Type: ParamInt}
}
func nameList(f, label string, atLeast int) ParamSpec {
	return ParamSpec{Field: f, Label: label, Type: ParamNames, MinRepeats: atLeast, Expandable: true}
}

func argString(v Values, f string) string  { return v[f].(string) }
func argFloat(v Values, f string) float64  { return toFloat(v[f]) }
func argInt(v Values, f string) int        { return toInt(v[f]) }
func argNames(v Values, f string) []string { return v[f].([]string) }

// CreationMenu returns the "add entity" menu.
func CreationMenu() []MenuItem {
	return []MenuItem{
		{Label: "Point", Command: &Command{
			Keyword: "point",
			Params:  []ParamSpec{str("name", "Name"), num("x", "X"), num("y", "Y"), num("z", "Z")},
			Run: func(r *Registry, v Values) error {
				return r.AddPoint(argString(v, "name"), argFloat(v, "x"), argFloat(v, "y"), argFloat(v, "z"))
			},
		}},
		{Label: "Light", Command: &Command{
			Keyword: "light",
			Params:  []ParamSpec{str("name", "Name"), integer("handle", "Light handle"), num("x", "X"), num("y", "Y"), num("z", "Z")},
			Run: func(r *Registry, v Values) error {
				return r.AddLight(argString(v, "name"), argInt(v, "handle"), argFloat(v, "x"), argFloat(v, "y"), argFloat(v, "z"))
			},
		}},
		{Label: "Segment", Command: &Command{
			Keyword: "segment",
			Params:  []ParamSpec{str("name", "Name"), str("a", "Point A"), str("b", "Point B")},
			Run: func(r *Registry, v Values) error {
				return r.AddSegment(argString(v, "name"), argString(v, "a"), argString(v, "b"))
			},
		}},
		{Label: "Face", Command: &Command{
			Keyword: "face",
			Params:  []ParamSpec{str("name", "Name"), nameList("points", "Points", 3)},
			Run: func(r *Registry, v Values) error {
				return r.AddFigure2(argString(v, "name"), argNames(v, "points"))
			},
		}},
		{Label: "Plane", Submenu: []MenuItem{
			{Label: "Through three points", Command: &Command{
				Keyword: "plane-by-points",
				Params:  []ParamSpec{str("name", "Name"), str("p1", "Anchor point"), str("p2", "Second point"), str("p3", "Third point")},
				Run: func(r *Registry, v Values) error {
					return r.AddPlaneByPoints(argString(v, "name"), argString(v, "p1"), argString(v, "p2"), argString(v, "p3"))
				},
			}},
			{Label: "Through point and segment", Command: &Command{
				Keyword: "plane-by-point-segment",
				Params:  []ParamSpec{str("name", "Name"), str("point", "Point"), str("segment", "Segment")},
				Run: func(r *Registry, v Values) error {
					return r.AddPlaneByPointAndSegment(argString(v, "name"), argString(v, "point"), argString(v, "segment"))
				},
			}},
			{Label: "Parallel to plane", Command: &Command{
				Keyword: "plane-by-plane",
				Params:  []ParamSpec{str("name", "Name"), str("point", "Point"), str("plane", "Base plane")},
				Run: func(r *Registry, v Values) error {
					return r.AddPlaneByPlane(argString(v, "name"), argString(v, "point"), argString(v, "plane"))
				},
			}},
			{Label: "Contour", Command: &Command{
				Keyword: "contour",
				Params:  []ParamSpec{str("plane", "Plane"), nameList("segments", "Segments", 1)},
				Run: func(r *Registry, v Values) error {
					_, err := r.AddContourToPlane(argString(v, "plane"), argNames(v, "segments"))
					return err
				},
			}},
		}},
		{Label: "Solid", Command: &Command{
			Keyword: "solid",
			Params:  []ParamSpec{str("name", "Name"), nameList("faces", "Faces", 1)},
			Run: func(r *Registry, v Values) error {
				return r.AddFigure3(argString(v, "name"), argNames(v, "faces"))
			},
		}},
		{Label: "Generate", Submenu: []MenuItem{
			{Label: "Regular polygon", Command: &Command{
				Keyword: "polygon",
				Params:  []ParamSpec{str("name", "Name"), integer("n", "Sides"), num("radius", "Radius")},
				Run: func(r *Registry, v Values) error {
					return r.AddFigure2N(argString(v, "name"), argInt(v, "n"), argFloat(v, "radius"))
				},
			}},
			{Label: "Regular contour on plane", Command: &Command{
				Keyword: "contour-n",
				Params:  []ParamSpec{str("plane", "Plane"), integer("n", "Sides"), num("radius", "Radius")},
				Run: func(r *Registry, v Values) error {
					return r.AddContourNToPlane(argString(v, "plane"), argInt(v, "n"), argFloat(v, "radius"))
				},
			}},
			{Label: "Regular prism", Command: &Command{
				Keyword: "prism",
				Params:  []ParamSpec{str("name", "Name"), integer("n", "Sides"), num("radius", "Radius"), num("height", "Height")},
				Run: func(r *Registry, v Values) error {
					return r.AddPrismN(argString(v, "name"), argInt(v, "n"), argFloat(v, "radius"), argFloat(v, "height"))
				},
			}},
		}},
	}
}

// Commands returns every leaf command of the menu, depth first.
func Commands() []*Command {
	var out []*Command
	var walk func(items []MenuItem)
	walk = func(items []MenuItem) {
		for _, it := range items {
			if it.Command != nil {
				out = append(out, it.Command)
			}
			walk(it.Submenu)
		}
	}
	walk(CreationMenu())
	return out
}

// FindCommand returns the command with the given keyword, or nil.
func FindCommand(keyword string) *Command {
	for _, c := range Commands() {
		if c.Keyword == keyword {
			return c
		}
	}
	return nil
}
