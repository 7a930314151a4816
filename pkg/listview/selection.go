package listview

import "slices"

type CheckState int

const (
	Unchecked CheckState = iota
	Indeterminate
	Checked
)

func (s CheckState) String() string {
	switch s {
	case Checked:
		return "checked"
	case Indeterminate:
		return "indeterminate"
	default:
		return "unchecked"
	}
}

func (s CheckState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Selection is a set of row ids.
type Selection struct {
	ids map[string]struct{}
}

func NewSelection(ids ...string) *Selection {
	s := &Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}
	return s
}

func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Set(id string, selected bool) {
	if selected {
		s.ids[id] = struct{}{}
		return
	}
	delete(s.ids, id)
}

func (s *Selection) Toggle(id string) {
	s.Set(id, !s.Has(id))
}

// ToggleAll selects every id in visible unless all of them are already
// selected, in which case it deselects them.
func (s *Selection) ToggleAll(visible []string) {
	selectAll := s.HeaderState(visible) != Checked
	for _, id := range visible {
		s.Set(id, selectAll)
	}
}

func (s *Selection) Clear() {
	clear(s.ids)
}

func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids sorted.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Retain drops every id not in present.
func (s *Selection) Retain(present []string) {
	keep := make(map[string]struct{}, len(present))
	for _, id := range present {
		keep[id] = struct{}{}
	}
	for id := range s.ids {
		if _, ok := keep[id]; !ok {
			delete(s.ids, id)
		}
	}
}

// HeaderState is the tri-state of the header checkbox over rows.
func (s *Selection) HeaderState(rows []string) CheckState {
	if len(rows) == 0 {
		return Unchecked
	}
	n := 0
	for _, id := range rows {
		if s.Has(id) {
			n++
		}
	}
	switch n {
	case 0:
		return Unchecked
	case len(rows):
		return Checked
	default:
		return Indeterminate
	}
}
