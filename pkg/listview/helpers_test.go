package listview

import (
	"strconv"
	"time"
)

type person struct {
	ID      int
	Name    string
	Company string
	Joined  time.Time
	Age     int
}

func people() []person {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	return []person{
		{ID: 1, Name: "Bob", Company: "Acme", Joined: day(3), Age: 41},
		{ID: 2, Name: "Alicia", Company: "Globex", Joined: day(1), Age: 29},
		{ID: 3, Name: "Alice", Company: "Acme", Joined: day(2), Age: 35},
		{ID: 4, Name: "Dmitri", Company: "Globex", Joined: day(2), Age: 52},
	}
}

func personColumns() []Column[person] {
	return []Column[person]{
		{ID: "name", Header: "Name", Accessor: func(p person) any { return p.Name }, Sortable: true, Filterable: true},
		{ID: "company", Header: "Company", Accessor: func(p person) any { return p.Company }, Sortable: true, Filterable: true},
		{ID: "joined", Header: "Joined", Accessor: func(p person) any { return p.Joined }, Sortable: true},
		{ID: "age", Header: "Age", Accessor: func(p person) any { return p.Age }, Sortable: true},
	}
}

func personFilters() []FilterDef[person] {
	return []FilterDef[person]{
		{Name: "company", Label: "Company", Accessor: func(p person) any { return p.Company }},
		{Name: "joined", Label: "Joined", Accessor: func(p person) any { return p.Joined }},
	}
}

func personConfig() Config[person] {
	return Config[person]{
		Columns:    personColumns(),
		Filters:    personFilters(),
		RowID:      func(p person) string { return strconv.Itoa(p.ID) },
		Selectable: true,
	}
}

func names(rows []person) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}
