package scene

import (
	"fmt"
	"math"
	"sort"
)

// ParamType is the value type an editable or creation parameter expects.
type ParamType int

const (
	ParamFloat  ParamType = iota // float64
	ParamInt                     // int
	ParamString                  // string, usually an entity name
	ParamNames                   // []string of entity names
)

func (t ParamType) String() string {
	switch t {
	case ParamFloat:
		return "float"
	case ParamInt:
		return "int"
	case ParamString:
		return "string"
	case ParamNames:
		return "names"
	default:
		return fmt.Sprintf("ParamType(%d)", int(t))
	}
}

// ParamSpec describes one input field. MinRepeats and Expandable only
// apply to ParamNames fields, which render as a variable-length list of
// inputs starting at MinRepeats entries.
type ParamSpec struct {
	Field      string    `json:"field"`
	Label      string    `json:"label"`
	Type       ParamType `json:"type"`
	MinRepeats int       `json:"min_repeats,omitempty"`
	Expandable bool      `json:"expandable,omitempty"`
}

// Values maps field names to supplied values.
type Values map[string]any

// Setter applies a set of edited values to one entity.
type Setter func(Values) error

// Offset is the typed form of the base x, y, z parameters.
type Offset struct {
	X, Y, Z float64
}

var offsetParams = []ParamSpec{
	{Field: "x", Label: "X", Type: ParamFloat},
	{Field: "y", Label: "Y", Type: ParamFloat},
	{Field: "z", Label: "Z", Type: ParamFloat},
}

// EditableParams describes the fields an editor may change on the named
// entity, together with the setter that applies them. Every entity exposes
// x, y and z; lights add their renderer handle.
func (r *Registry) EditableParams(name string) ([]ParamSpec, Setter, error) {
	e, err := r.Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	specs := append([]ParamSpec(nil), offsetParams...)
	if e.Kind == KindLight {
		specs = append(specs, ParamSpec{Field: "handle", Label: "Light handle", Type: ParamInt})
	}
	setter := func(v Values) error {
		return r.set(name, specs, v)
	}
	return specs, setter, nil
}

// SetOffset assigns x, y and z of the named entity and propagates the
// result: points move to the new position, composites move their points
// by the new offset.
func (r *Registry) SetOffset(name string, o Offset) error {
	return r.set(name, offsetParams, Values{"x": o.X, "y": o.Y, "z": o.Z})
}

// set checks every value against specs before assigning any of them, then
// propagates the new offset.
func (r *Registry) set(name string, specs []ParamSpec, v Values) error {
	e, err := r.Lookup(name)
	if err != nil {
		return fmt.Errorf("set: %w", err)
	}
	byField := make(map[string]ParamSpec, len(specs))
	for _, s := range specs {
		byField[s.Field] = s
	}
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, f := range fields {
		spec, ok := byField[f]
		if !ok {
			return fmt.Errorf("set %q: %w: %q", name, ErrUnknownParameter, f)
		}
		if !matches(spec.Type, v[f]) {
			return fmt.Errorf("set %q: %w: %s wants %s, got %T", name, ErrTypeMismatch, f, spec.Type, v[f])
		}
	}

	for _, f := range fields {
		switch f {
		case "x":
			e.X = v[f].(float64)
		case "y":
			e.Y = v[f].(float64)
		case "z":
			e.Z = v[f].(float64)
		case "handle":
			e.Data.(*LightData).Handle = toInt(v[f])
		}
	}
	if !e.Kind.IsPositional() {
		r.applyTranslation(e)
	}
	r.changed()
	return nil
}

// matches reports whether v is acceptable for t. Integral float64 values
// are accepted for int fields since JSON numbers decode as float64.
func matches(t ParamType, v any) bool {
	switch t {
	case ParamFloat:
		_, ok := v.(float64)
		return ok
	case ParamInt:
		switch n := v.(type) {
		case int, int64:
			return true
		case float64:
			return n == math.Trunc(n) && !math.IsInf(n, 0)
		}
		return false
	case ParamString:
		_, ok := v.(string)
		return ok
	case ParamNames:
		_, ok := v.([]string)
		return ok
	}
	return false
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
