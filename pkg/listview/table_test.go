package listview

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTableValidatesColumns(t *testing.T) {
	cols := append(personColumns(), personColumns()[0])
	_, err := NewTable(Config[person]{Columns: cols})
	require.Error(t, err)

	_, err = NewTable(Config[person]{Columns: personColumns(), Selectable: true})
	require.Error(t, err, "selectable tables need row ids")
}

func TestTableEmptyView(t *testing.T) {
	table, err := NewTable(personConfig())
	require.NoError(t, err)
	table.SetRows(nil)

	v := table.View()
	require.True(t, v.Empty)
	require.Equal(t, "No data available", v.EmptyText)
	require.Equal(t, 5, v.ColSpan, "four columns plus the checkbox")
	require.Empty(t, v.Rows)
	require.Equal(t, "Showing 0 to 0 of 0", v.FooterLabel)
	require.Equal(t, Unchecked, v.HeaderCheck)
}

func TestTableNoMatchesRendersEmpty(t *testing.T) {
	table, err := NewTable(personConfig())
	require.NoError(t, err)
	table.SetRows(people())
	table.SetGlobalFilter("zzz")

	v := table.View()
	require.True(t, v.Empty)
	require.Zero(t, v.Footer.Total)
	require.Equal(t, 4, v.TotalRows)
}

func TestTableWithoutColumns(t *testing.T) {
	table, err := NewTable(Config[person]{})
	require.NoError(t, err)
	table.SetRows(people())

	v := table.View()
	require.Nil(t, v.Headers)
	require.Len(t, v.Rows, 4)
	require.Empty(t, v.Rows[0].Cells)
}

func TestTableSortCycle(t *testing.T) {
	table, err := NewTable(personConfig())
	require.NoError(t, err)
	table.SetRows(people())

	require.NoError(t, table.ToggleSort("age"))
	require.Equal(t, []string{"Alicia", "Alice", "Bob", "Dmitri"}, names(table.Filtered()))

	require.NoError(t, table.ToggleSort("age"))
	require.Equal(t, []string{"Dmitri", "Bob", "Alice", "Alicia"}, names(table.Filtered()))

	require.NoError(t, table.ToggleSort("age"))
	require.Equal(t, []string{"Bob", "Alicia", "Alice", "Dmitri"}, names(table.Filtered()))
	require.Empty(t, table.View().SortColumn)
}

func TestTableSortStableByDate(t *testing.T) {
	table, err := NewTable(personConfig())
	require.NoError(t, err)
	table.SetRows(people())

	require.NoError(t, table.ToggleSort("joined"))
	require.Equal(t, []string{"Alicia", "Alice", "Dmitri", "Bob"}, names(table.Filtered()))

	v := table.View()
	require.Equal(t, "joined", v.SortColumn)
	require.Equal(t, "asc", v.SortDir)
	require.Equal(t, "asc", v.Headers[2].Sort)
	require.Empty(t, v.Headers[0].Sort)
}

func TestTableSortErrors(t *testing.T) {
	cfg := personConfig()
	cfg.Columns[0].Sortable = false
	table, err := NewTable(cfg)
	require.NoError(t, err)

	require.ErrorIs(t, table.ToggleSort("name"), ErrNotSortable)
	require.ErrorIs(t, table.ToggleSort("salary"), ErrUnknownColumn)
}

func TestTableFiltersAndSearchCompose(t *testing.T) {
	table, err := NewTable(personConfig())
	require.NoError(t, err)
	table.SetRows(people())

	require.NoError(t, table.SetFilter("company", "Acme"))
	table.SetGlobalFilter("ali")
	require.Equal(t, []string{"Alice"}, names(table.Filtered()))

	require.NoError(t, table.SetFilter("company", "Globex"))
	require.Equal(t, []string{"Alicia"}, names(table.Filtered()))

	table.ClearFilters()
	require.Equal(t, []string{"Alicia", "Alice"}, names(table.Filtered()))
}

func TestTableSortByRank(t *testing.T) {
	cfg := personConfig()
	cfg.SortByRank = true
	table, err := NewTable(cfg)
	require.NoError(t, err)
	table.SetRows([]person{{ID: 1, Name: "Natalie"}, {ID: 2, Name: "Alice"}})

	table.SetGlobalFilter("ali")
	require.Equal(t, []string{"Alice", "Natalie"}, names(table.Filtered()))
}

func manyPeople(n int) []person {
	out := make([]person, n)
	for i := range out {
		out[i] = person{ID: i + 1, Name: fmt.Sprintf("Person %02d", i+1), Company: "Acme"}
	}
	out[n-1].Company = "Globex"
	return out
}

func TestTablePagination(t *testing.T) {
	table, err := NewTable(personConfig())
	require.NoError(t, err)
	table.SetRows(manyPeople(25))

	v := table.View()
	require.Len(t, v.Rows, 10)
	require.Equal(t, "Showing 1 to 10 of 25", v.FooterLabel)

	require.NoError(t, table.SetPageIndex(2))
	v = table.View()
	require.Len(t, v.Rows, 5)
	require.Equal(t, "21", v.Rows[0].ID)

	require.ErrorIs(t, table.SetPageIndex(3), ErrPageOutOfRange)
	require.ErrorIs(t, table.SetPageSize(0), ErrInvalidPageSize)

	table.FirstPage()
	table.NextPage()
	require.Equal(t, 1, table.State().Page.PageIndex)
	table.LastPage()
	require.Equal(t, 2, table.State().Page.PageIndex)
	table.PrevPage()
	require.Equal(t, 1, table.State().Page.PageIndex)
}

func TestTableClampsPageOnShrink(t *testing.T) {
	table, err := NewTable(personConfig())
	require.NoError(t, err)
	table.SetRows(manyPeople(25))
	require.NoError(t, table.SetPageIndex(2))

	require.NoError(t, table.SetFilter("company", "Globex"))
	require.Zero(t, table.State().Page.PageIndex)
	require.False(t, table.View().Empty)

	require.NoError(t, table.SetFilter("company", ""))
	require.NoError(t, table.SetPageIndex(2))
	table.SetRows(manyPeople(25)[:12])
	require.Equal(t, 1, table.State().Page.PageIndex)

	require.NoError(t, table.SetPageSize(20))
	require.Zero(t, table.State().Page.PageIndex)
}

func TestTableSelection(t *testing.T) {
	table, err := NewTable(personConfig())
	require.NoError(t, err)
	table.SetRows(people())

	table.ToggleRow("1")
	require.Equal(t, Indeterminate, table.View().HeaderCheck)

	table.ToggleAll()
	require.Equal(t, Checked, table.View().HeaderCheck)
	require.Len(t, table.Selected(), 4)

	require.NoError(t, table.SetFilter("company", "Acme"))
	table.ToggleAll()
	require.Equal(t, Unchecked, table.View().HeaderCheck)
	require.Equal(t, []string{"2", "4"}, table.State().Selected)

	table.ClearFilters()
	require.Equal(t, Indeterminate, table.View().HeaderCheck)
}

func TestTableSelectionPrunedOnReplace(t *testing.T) {
	table, err := NewTable(personConfig())
	require.NoError(t, err)
	table.SetRows(people())
	table.ToggleRow("1")
	table.ToggleRow("2")

	table.SetRows(people()[1:])
	require.Equal(t, []string{"2"}, table.State().Selected)
	require.True(t, table.View().Rows[0].Selected)
}

func TestTableFind(t *testing.T) {
	table, err := NewTable(personConfig())
	require.NoError(t, err)
	table.SetRows(people())

	row, ok := table.Find("3")
	require.True(t, ok)
	require.Equal(t, "Alice", row.Name)
	_, ok = table.Find("99")
	require.False(t, ok)
}

func TestRender(t *testing.T) {
	v, filtered, err := Render(personConfig(), manyPeople(25), State{
		Global:   "person",
		Filters:  FilterState{"company": "Acme"},
		Sort:     SortState{ColumnID: "name", Direction: Descending},
		Page:     Pagination{PageIndex: 99, PageSize: 5},
		Selected: []string{"24"},
	})
	require.NoError(t, err)
	require.Len(t, filtered, 24)
	require.Equal(t, 4, v.Footer.PageIndex, "out of range page is clamped")
	require.Equal(t, "Person 04", v.Rows[0].Cells[0].Text)
	require.Equal(t, "Person 24", filtered[0].Name)
	require.True(t, v.Selectable)
	require.Equal(t, Indeterminate, v.HeaderCheck)

	_, _, err = Render(personConfig(), nil, State{Filters: FilterState{"nope": "x"}})
	require.ErrorIs(t, err, ErrUnknownFilter)
}

func TestRenderDropsSelectedIDsNotInRows(t *testing.T) {
	v, _, err := Render(personConfig(), people(), State{Selected: []string{"2", "99"}})
	require.NoError(t, err)
	require.Equal(t, []string{"2"}, v.Selected)
	require.Equal(t, Indeterminate, v.HeaderCheck)
}

func TestCellRenderer(t *testing.T) {
	cfg := personConfig()
	cfg.Columns[3].Cell = func(p person) string { return strconv.Itoa(p.Age) + " y" }
	v, _, err := Render(cfg, people()[:1], State{})
	require.NoError(t, err)
	require.Equal(t, "41 y", v.Rows[0].Cells[3].Text)
	require.Equal(t, "2024-01-03", v.Rows[0].Cells[2].Text)
}
