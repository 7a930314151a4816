package listview

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	ErrUnknownColumn = errors.New("listview: unknown column")
	ErrNotSortable   = errors.New("listview: column is not sortable")
)

// Column describes one table column.
//
// Header is a dictionary key (or a literal label; unknown keys render as-is).
// HeaderFunc, when set, overrides Header. Cell, when set, renders the cell
// text; otherwise the accessor value is stringified.
type Column[T any] struct {
	ID         string
	Header     string
	HeaderFunc func() string
	Accessor   func(T) any
	Cell       func(T) string
	Sortable   bool
	Filterable bool
}

func (c Column[T]) label(dict Dictionary) string {
	if c.HeaderFunc != nil {
		return c.HeaderFunc()
	}
	return dict.T(c.Header)
}

func (c Column[T]) value(row T) any {
	if c.Accessor == nil {
		return nil
	}
	return c.Accessor(row)
}

// Text is the rendered cell content for row.
func (c Column[T]) Text(row T) string {
	if c.Cell != nil {
		return c.Cell(row)
	}
	return Stringify(c.value(row))
}

func indexColumns[T any](cols []Column[T]) (map[string]int, error) {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if c.ID == "" {
			return nil, fmt.Errorf("listview: column %d has no id", i)
		}
		if _, dup := index[c.ID]; dup {
			return nil, fmt.Errorf("listview: duplicate column id %q", c.ID)
		}
		if c.Accessor == nil && c.Cell == nil {
			return nil, fmt.Errorf("listview: column %q needs an accessor or a cell renderer", c.ID)
		}
		index[c.ID] = i
	}
	return index, nil
}
