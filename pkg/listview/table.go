package listview

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/go-faster/errors"
)

// Config declares a table: its columns, named filters and row identity.
type Config[T any] struct {
	Columns []Column[T]
	Filters []FilterDef[T]
	// RowID identifies rows for selection. Required when Selectable is set.
	RowID      func(T) string
	PageSize   int
	Selectable bool
	// SortByRank orders rows by fuzzy rank while a search query is active and
	// no column sort is set.
	SortByRank bool
	Dictionary Dictionary
}

// State is the serializable table state, used to rebuild a table per request.
type State struct {
	Global   string
	Filters  FilterState
	Sort     SortState
	Page     Pagination
	Selected []string
}

type HeaderCell struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Sortable bool   `json:"sortable"`
	Sort     string `json:"sort,omitempty"`
}

type Cell struct {
	ColumnID string `json:"column"`
	Text     string `json:"text"`
}

type RowView struct {
	ID       string `json:"id,omitempty"`
	Cells    []Cell `json:"cells"`
	Selected bool   `json:"selected,omitempty"`
}

// View is everything needed to render one page of the table.
type View struct {
	Headers      []HeaderCell `json:"headers"`
	Rows         []RowView    `json:"rows"`
	Empty        bool         `json:"empty"`
	EmptyText    string       `json:"empty_text,omitempty"`
	ColSpan      int          `json:"colspan"`
	Selectable   bool         `json:"selectable"`
	HeaderCheck  CheckState   `json:"header_check"`
	Selected     []string     `json:"selected"`
	Footer       FooterInfo   `json:"footer"`
	FooterLabel  string       `json:"footer_label"`
	GlobalFilter string       `json:"q"`
	Filters      []Control    `json:"filters"`
	SortColumn   string       `json:"sort,omitempty"`
	SortDir      string       `json:"dir,omitempty"`
	TotalRows    int          `json:"total_rows"`
}

// Table is a stateful list over rows of T. It is safe for concurrent use.
type Table[T any] struct {
	mu        sync.Mutex
	cfg       Config[T]
	columns   map[string]int
	dict      Dictionary
	panel     *Panel[T]
	selection *Selection

	rows     []T
	global   string
	sort     SortState
	page     Pagination
	filtered []T
}

func NewTable[T any](cfg Config[T]) (*Table[T], error) {
	columns, err := indexColumns(cfg.Columns)
	if err != nil {
		return nil, err
	}
	if cfg.Selectable && cfg.RowID == nil {
		return nil, errors.New("listview: selectable table needs RowID")
	}
	panel, err := NewPanel(cfg.Filters...)
	if err != nil {
		return nil, err
	}
	t := &Table[T]{
		cfg:       cfg,
		columns:   columns,
		dict:      orDefault(cfg.Dictionary),
		panel:     panel,
		selection: NewSelection(),
		page:      Pagination{PageSize: cfg.PageSize}.normalized(),
	}
	t.recompute()
	return t, nil
}

// SetRows replaces the data wholesale. Selected ids no longer present are
// dropped.
func (t *Table[T]) SetRows(rows []T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = slices.Clone(rows)
	if t.cfg.RowID != nil {
		t.selection.Retain(t.ids(t.rows))
	}
	t.recompute()
}

func (t *Table[T]) Rows() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.rows)
}

// Find returns the row with the given id among all rows.
func (t *Table[T]) Find(id string) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero T
	if t.cfg.RowID == nil {
		return zero, false
	}
	for _, r := range t.rows {
		if t.cfg.RowID(r) == id {
			return r, true
		}
	}
	return zero, false
}

func (t *Table[T]) SetGlobalFilter(q string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.global = q
	t.recompute()
}

func (t *Table[T]) SetFilter(name string, value any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.panel.Set(name, value); err != nil {
		return err
	}
	t.recompute()
	return nil
}

func (t *Table[T]) ClearFilters() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.panel.ClearAll()
	t.recompute()
}

// ToggleSort advances the sort cycle of a sortable column.
func (t *Table[T]) ToggleSort(columnID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkSortable(columnID); err != nil {
		return err
	}
	t.sort = t.sort.Toggle(columnID)
	t.recompute()
	return nil
}

func (t *Table[T]) SetSort(s SortState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s.Active() {
		if err := t.checkSortable(s.ColumnID); err != nil {
			return err
		}
	} else {
		s = SortState{}
	}
	t.sort = s
	t.recompute()
	return nil
}

func (t *Table[T]) checkSortable(columnID string) error {
	i, ok := t.columns[columnID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}
	if !t.cfg.Columns[i].Sortable {
		return fmt.Errorf("%w: %q", ErrNotSortable, columnID)
	}
	return nil
}

func (t *Table[T]) SetPageIndex(index int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, err := t.page.GoTo(index, len(t.filtered))
	if err != nil {
		return err
	}
	t.page = p
	return nil
}

func (t *Table[T]) SetPageSize(size int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if size <= 0 {
		return ErrInvalidPageSize
	}
	t.page.PageSize = size
	t.page.PageIndex = ClampPageIndex(t.page.PageIndex, len(t.filtered), size)
	return nil
}

func (t *Table[T]) FirstPage() { t.movePage(func(p Pagination, _ int) Pagination { return p.First() }) }
func (t *Table[T]) PrevPage()  { t.movePage(func(p Pagination, _ int) Pagination { return p.Prev() }) }
func (t *Table[T]) NextPage()  { t.movePage(Pagination.Next) }
func (t *Table[T]) LastPage()  { t.movePage(Pagination.Last) }

func (t *Table[T]) movePage(fn func(Pagination, int) Pagination) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.page = fn(t.page, len(t.filtered))
}

func (t *Table[T]) ToggleRow(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selection.Toggle(id)
}

// ToggleAll toggles selection over every currently filtered row.
func (t *Table[T]) ToggleAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cfg.RowID == nil {
		return
	}
	t.selection.ToggleAll(t.ids(t.filtered))
}

func (t *Table[T]) ClearSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.selection.Clear()
}

// Filtered returns all rows passing the filters, in display order.
func (t *Table[T]) Filtered() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.filtered)
}

// Selected returns the selected rows in data order.
func (t *Table[T]) Selected() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]T, 0, t.selection.Len())
	if t.cfg.RowID == nil {
		return out
	}
	for _, r := range t.rows {
		if t.selection.Has(t.cfg.RowID(r)) {
			out = append(out, r)
		}
	}
	return out
}

func (t *Table[T]) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{
		Global:   t.global,
		Filters:  t.panel.State(),
		Sort:     t.sort,
		Page:     t.page,
		Selected: t.selection.IDs(),
	}
}

// Restore applies s. Unknown filters and columns are errors; an out of
// range page index is clamped.
func (t *Table[T]) Restore(s State) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.panel.ClearAll()
	for name, v := range s.Filters {
		if err := t.panel.Set(name, v); err != nil {
			return err
		}
	}
	if s.Sort.Active() {
		if err := t.checkSortable(s.Sort.ColumnID); err != nil {
			return err
		}
		t.sort = s.Sort
	} else {
		t.sort = SortState{}
	}
	t.global = s.Global
	t.selection = NewSelection(s.Selected...)
	if t.cfg.RowID != nil {
		t.selection.Retain(t.ids(t.rows))
	}
	if s.Page.PageSize > 0 {
		t.page.PageSize = s.Page.PageSize
	}
	t.page.PageIndex = s.Page.PageIndex
	t.recompute()
	return nil
}

// recompute rebuilds the filtered rows and clamps the page index. Callers
// hold t.mu.
func (t *Table[T]) recompute() {
	rows := t.panel.Apply(t.rows)

	if t.global != "" {
		ranked := make([]rankedRow[T], 0, len(rows))
		for _, r := range rows {
			if best, ok := t.matchRow(r); ok {
				ranked = append(ranked, rankedRow[T]{row: r, rank: best})
			}
		}
		if t.cfg.SortByRank && !t.sort.Active() {
			slices.SortStableFunc(ranked, func(a, b rankedRow[T]) int {
				return cmp.Compare(b.rank, a.rank)
			})
		}
		rows = rows[:0]
		for _, r := range ranked {
			rows = append(rows, r.row)
		}
	}

	if t.sort.Active() {
		col := t.cfg.Columns[t.columns[t.sort.ColumnID]]
		desc := t.sort.Direction == Descending
		slices.SortStableFunc(rows, func(a, b T) int {
			c := Compare(col.value(a), col.value(b))
			if desc {
				return -c
			}
			return c
		})
	}

	t.filtered = rows
	t.page.PageIndex = ClampPageIndex(t.page.PageIndex, len(rows), t.page.PageSize)
}

type rankedRow[T any] struct {
	row  T
	rank int
}

// matchRow passes when any filterable column matches the global query.
func (t *Table[T]) matchRow(row T) (int, bool) {
	best, passed := 0, false
	for _, c := range t.cfg.Columns {
		if !c.Filterable {
			continue
		}
		m := Match(Stringify(c.value(row)), t.global)
		if m.Passed && (!passed || m.Rank > best) {
			best, passed = m.Rank, true
		}
	}
	return best, passed
}

func (t *Table[T]) ids(rows []T) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = t.cfg.RowID(r)
	}
	return out
}

// View renders the current page.
func (t *Table[T]) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()

	v := View{
		Selectable:   t.cfg.Selectable,
		Selected:     t.selection.IDs(),
		GlobalFilter: t.global,
		Filters:      t.panel.Controls(t.dict, t.rows),
		TotalRows:    len(t.rows),
		ColSpan:      len(t.cfg.Columns),
	}
	if t.sort.Active() {
		v.SortColumn = t.sort.ColumnID
		v.SortDir = t.sort.Direction.String()
	}
	if t.cfg.Selectable {
		v.ColSpan++
		v.HeaderCheck = t.selection.HeaderState(t.ids(t.filtered))
	}
	if len(t.cfg.Columns) > 0 {
		v.Headers = make([]HeaderCell, len(t.cfg.Columns))
		for i, c := range t.cfg.Columns {
			v.Headers[i] = HeaderCell{
				ID:       c.ID,
				Label:    c.label(t.dict),
				Sortable: c.Sortable,
				Sort:     t.sort.DirectionOf(c.ID).String(),
			}
		}
	}

	v.Footer = Footer(t.page.PageIndex, t.page.PageSize, len(t.filtered))
	v.FooterLabel = v.Footer.Label(t.dict)

	if len(t.filtered) == 0 {
		v.Empty = true
		v.EmptyText = t.dict.T(KeyNoData)
		v.Rows = []RowView{}
		return v
	}

	lo, hi := t.page.Bounds(len(t.filtered))
	v.Rows = make([]RowView, 0, hi-lo)
	for _, r := range t.filtered[lo:hi] {
		rv := RowView{Cells: make([]Cell, len(t.cfg.Columns))}
		if t.cfg.RowID != nil {
			rv.ID = t.cfg.RowID(r)
			rv.Selected = t.selection.Has(rv.ID)
		}
		for i, c := range t.cfg.Columns {
			rv.Cells[i] = Cell{ColumnID: c.ID, Text: c.Text(r)}
		}
		v.Rows = append(v.Rows, rv)
	}
	return v
}

// Render builds a one-off table from cfg, loads rows and applies state.
func Render[T any](cfg Config[T], rows []T, s State) (View, []T, error) {
	t, err := NewTable(cfg)
	if err != nil {
		return View{}, nil, err
	}
	t.SetRows(rows)
	if err := t.Restore(s); err != nil {
		return View{}, nil, err
	}
	return t.View(), t.Filtered(), nil
}
