package service

// Paging defaults and the page sizes offered by the UI.
const (
	DefaultPage    = 1
	DefaultPerPage = 25
	MaxPerPage     = 100
)

// PerPageOptions are the page sizes offered in the movie list controls.
var PerPageOptions = []int{10, 25, 50, 100}

// Paging selects one page of an ordered list. Pages are 1-based.
type Paging struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// NewPaging applies defaults to missing or out of range values.
func NewPaging(page, perPage int) Paging {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Paging{Page: page, PerPage: perPage}
}

// Offset returns the index of the first item on the page.
func (p Paging) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// LastPage returns the last page number for total items, never less than 1.
func (p Paging) LastPage(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + p.PerPage - 1) / p.PerPage
}

// Clamp moves Page onto the last page when it points past the end.
func (p Paging) Clamp(total int) Paging {
	if last := p.LastPage(total); p.Page > last {
		p.Page = last
	}
	return p
}

// PrevPage returns the previous page number, at least 1.
func (p Paging) PrevPage() int {
	return max(p.Page-1, 1)
}

// NextPage returns the next page number, at most the last page.
func (p Paging) NextPage(total int) int {
	return min(p.Page+1, p.LastPage(total))
}
