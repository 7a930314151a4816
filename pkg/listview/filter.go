package listview

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-faster/errors"
)

var ErrUnknownFilter = errors.New("listview: unknown filter")

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterDef binds a named filter to a row accessor. Options are the allowed
// values; when empty they are derived from the data.
type FilterDef[T any] struct {
	Name     string
	Label    string
	Accessor func(T) any
	Options  []Option
}

// FilterState maps filter names to their current value. An empty value means
// no constraint.
type FilterState map[string]string

func (s FilterState) Clone() FilterState {
	out := make(FilterState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Control is the render model of one filter select.
type Control struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Value   string   `json:"value"`
	Options []Option `json:"options"`
}

// Panel holds the filter definitions of a table and their values.
type Panel[T any] struct {
	defs  []FilterDef[T]
	index map[string]int
	state FilterState
}

func NewPanel[T any](defs ...FilterDef[T]) (*Panel[T], error) {
	index := make(map[string]int, len(defs))
	for i, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("listview: filter %d has no name", i)
		}
		if d.Accessor == nil {
			return nil, fmt.Errorf("listview: filter %q has no accessor", d.Name)
		}
		if _, dup := index[d.Name]; dup {
			return nil, fmt.Errorf("listview: duplicate filter %q", d.Name)
		}
		index[d.Name] = i
	}
	return &Panel[T]{defs: defs, index: index, state: FilterState{}}, nil
}

// Set stores value for the named filter. Values are stringified so numbers
// and dates compare the same way cells render.
func (p *Panel[T]) Set(name string, value any) error {
	if _, ok := p.index[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, name)
	}
	v := strings.TrimSpace(Stringify(value))
	if v == "" {
		delete(p.state, name)
		return nil
	}
	p.state[name] = v
	return nil
}

func (p *Panel[T]) Value(name string) string {
	return p.state[name]
}

func (p *Panel[T]) State() FilterState {
	return p.state.Clone()
}

// Active is the number of filters with a value.
func (p *Panel[T]) Active() int {
	return len(p.state)
}

func (p *Panel[T]) ClearAll() {
	p.state = FilterState{}
}

// Apply evaluates every active filter against original and returns the rows
// passing all of them. original is never modified.
func (p *Panel[T]) Apply(original []T) []T {
	out := make([]T, 0, len(original))
	for _, row := range original {
		if p.matches(row) {
			out = append(out, row)
		}
	}
	return out
}

func (p *Panel[T]) matches(row T) bool {
	for name, want := range p.state {
		def := p.defs[p.index[name]]
		if Stringify(def.Accessor(row)) != want {
			return false
		}
	}
	return true
}

// Controls returns the filter selects in declaration order.
func (p *Panel[T]) Controls(dict Dictionary, original []T) []Control {
	dict = orDefault(dict)
	out := make([]Control, 0, len(p.defs))
	for _, d := range p.defs {
		opts := d.Options
		if len(opts) == 0 {
			opts = deriveOptions(d, original)
		}
		out = append(out, Control{
			Name:    d.Name,
			Label:   dict.T(d.Label),
			Value:   p.state[d.Name],
			Options: opts,
		})
	}
	return out
}

func deriveOptions[T any](d FilterDef[T], rows []T) []Option {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for _, row := range rows {
		v := Stringify(d.Accessor(row))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	slices.Sort(values)
	opts := make([]Option, len(values))
	for i, v := range values {
		opts[i] = Option{Value: v, Label: v}
	}
	return opts
}
