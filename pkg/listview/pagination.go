package listview

import "github.com/go-faster/errors"

const DefaultPageSize = 10

var (
	ErrPageOutOfRange  = errors.New("listview: page index out of range")
	ErrInvalidPageSize = errors.New("listview: page size must be positive")
)

type Pagination struct {
	PageIndex int `json:"page_index"`
	PageSize  int `json:"page_size"`
}

func (p Pagination) normalized() Pagination {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageIndex < 0 {
		p.PageIndex = 0
	}
	return p
}

// FooterInfo is the pagination footer for a filtered row count.
type FooterInfo struct {
	Start     int  `json:"start"`
	End       int  `json:"end"`
	Total     int  `json:"total"`
	PageCount int  `json:"page_count"`
	PageIndex int  `json:"page_index"`
	PageSize  int  `json:"page_size"`
	HasPrev   bool `json:"has_prev"`
	HasNext   bool `json:"has_next"`
}

// PageCount is ceil(count/size).
func PageCount(count, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if count <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// ClampPageIndex keeps index inside [0, max(pageCount-1, 0)].
func ClampPageIndex(index, count, size int) int {
	last := max(PageCount(count, size)-1, 0)
	return min(max(index, 0), last)
}

func Footer(pageIndex, pageSize, count int) FooterInfo {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := PageCount(count, pageSize)
	info := FooterInfo{
		Total:     count,
		PageCount: pages,
		PageIndex: pageIndex,
		PageSize:  pageSize,
		HasPrev:   pageIndex > 0,
		HasNext:   pageIndex < pages-1,
	}
	if count > 0 {
		info.Start = pageIndex*pageSize + 1
		info.End = min((pageIndex+1)*pageSize, count)
	}
	return info
}

// Label renders "Showing X to Y of Z".
func (f FooterInfo) Label(dict Dictionary) string {
	return orDefault(dict).T(KeyShowing, map[string]any{
		"Start": f.Start,
		"End":   f.End,
		"Total": f.Total,
	})
}

// GoTo validates index against count rows. Zero rows count as one empty page.
func (p Pagination) GoTo(index, count int) (Pagination, error) {
	p = p.normalized()
	pages := max(PageCount(count, p.PageSize), 1)
	if index < 0 || index >= pages {
		return p, ErrPageOutOfRange
	}
	p.PageIndex = index
	return p, nil
}

func (p Pagination) First() Pagination {
	p = p.normalized()
	p.PageIndex = 0
	return p
}

func (p Pagination) Prev() Pagination {
	p = p.normalized()
	if p.PageIndex > 0 {
		p.PageIndex--
	}
	return p
}

func (p Pagination) Next(count int) Pagination {
	p = p.normalized()
	if p.PageIndex < PageCount(count, p.PageSize)-1 {
		p.PageIndex++
	}
	return p
}

func (p Pagination) Last(count int) Pagination {
	p = p.normalized()
	p.PageIndex = max(PageCount(count, p.PageSize)-1, 0)
	return p
}

// Bounds returns the [lo, hi) slice bounds of the current page.
func (p Pagination) Bounds(count int) (int, int) {
	p = p.normalized()
	lo := min(p.PageIndex*p.PageSize, count)
	hi := min(lo+p.PageSize, count)
	return lo, hi
}
