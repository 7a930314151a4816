package resources

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/iota-uz/hrdesk/pkg/composables"
	"github.com/iota-uz/hrdesk/pkg/listview"
)

const filterPrefix = "f."

// StateFromQuery reads table state from URL parameters:
// q, f.<name>, sort, dir, page (1-based), size and selected (comma separated).
func StateFromQuery(q url.Values, defaultSize, maxSize int) listview.State {
	s := listview.State{
		Global:  q.Get("q"),
		Filters: listview.FilterState{},
	}
	for name, values := range q {
		if !strings.HasPrefix(name, filterPrefix) || len(values) == 0 {
			continue
		}
		if values[0] != "" {
			s.Filters[strings.TrimPrefix(name, filterPrefix)] = values[0]
		}
	}
	if col := q.Get("sort"); col != "" {
		dir := listview.ParseSortDirection(q.Get("dir"))
		if dir == listview.Unsorted {
			dir = listview.Ascending
		}
		s.Sort = listview.SortState{ColumnID: col, Direction: dir}
	}

	p := composables.ParsePagination(q, defaultSize, maxSize)
	s.Page = listview.Pagination{PageIndex: p.Page - 1, PageSize: p.PageSize}

	if sel := q.Get("selected"); sel != "" {
		for _, id := range strings.Split(sel, ",") {
			if id = strings.TrimSpace(id); id != "" {
				s.Selected = append(s.Selected, id)
			}
		}
	}
	return s
}

// Query is the inverse of StateFromQuery.
func Query(s listview.State) url.Values {
	q := url.Values{}
	if s.Global != "" {
		q.Set("q", s.Global)
	}
	for name, v := range s.Filters {
		if v != "" {
			q.Set(filterPrefix+name, v)
		}
	}
	if s.Sort.Active() {
		q.Set("sort", s.Sort.ColumnID)
		q.Set("dir", s.Sort.Direction.String())
	}
	if s.Page.PageIndex > 0 {
		q.Set("page", strconv.Itoa(s.Page.PageIndex+1))
	}
	if s.Page.PageSize > 0 {
		q.Set("size", strconv.Itoa(s.Page.PageSize))
	}
	if len(s.Selected) > 0 {
		q.Set("selected", strings.Join(s.Selected, ","))
	}
	return q
}
