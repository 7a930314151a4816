package listview

import "strings"

type SortDirection int

const (
	Unsorted SortDirection = iota
	Ascending
	Descending
)

func (d SortDirection) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return ""
	}
}

// Next cycles unsorted -> asc -> desc -> unsorted.
func (d SortDirection) Next() SortDirection {
	switch d {
	case Unsorted:
		return Ascending
	case Ascending:
		return Descending
	default:
		return Unsorted
	}
}

func ParseSortDirection(s string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending
	case "desc", "descending":
		return Descending
	default:
		return Unsorted
	}
}

// SortState is the active sort column. At most one column is sorted at a time.
type SortState struct {
	ColumnID  string        `json:"column,omitempty"`
	Direction SortDirection `json:"-"`
}

func (s SortState) Active() bool {
	return s.ColumnID != "" && s.Direction != Unsorted
}

// Toggle advances the sort cycle for columnID. Switching to another column
// starts over at ascending.
func (s SortState) Toggle(columnID string) SortState {
	if s.ColumnID != columnID {
		return SortState{ColumnID: columnID, Direction: Ascending}
	}
	next := s.Direction.Next()
	if next == Unsorted {
		return SortState{}
	}
	return SortState{ColumnID: columnID, Direction: next}
}

// DirectionOf reports the direction shown on columnID's header.
func (s SortState) DirectionOf(columnID string) SortDirection {
	if s.ColumnID != columnID {
		return Unsorted
	}
	return s.Direction
}
