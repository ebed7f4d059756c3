package models

// PageSize is how many items a listing page holds.
const PageSize = 5

// Pager resolves a requested page number against a total item count.
// Numbers outside [1, NumPages] resolve to the last page; there is always at
// least one (possibly empty) page.
type Pager struct {
	Number   int
	NumPages int
	Total    int
	Size     int
}

func NewPager(number, total, size int) Pager {
	if size <= 0 {
		size = PageSize
	}
	numPages := (total + size - 1) / size
	if numPages < 1 {
		numPages = 1
	}
	if number < 1 || number > numPages {
		number = numPages
	}
	return Pager{Number: number, NumPages: numPages, Total: total, Size: size}
}

func (p Pager) Offset() int { return (p.Number - 1) * p.Size }
func (p Pager) Limit() int  { return p.Size }

// Page is one slice of an ordered listing.
type Page[T any] struct {
	Items       []T  `json:"items"`
	Number      int  `json:"number"`
	NumPages    int  `json:"numPages"`
	Total       int  `json:"total"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

func NewPage[T any](items []T, p Pager) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:       items,
		Number:      p.Number,
		NumPages:    p.NumPages,
		Total:       p.Total,
		HasNext:     p.Number < p.NumPages,
		HasPrevious: p.Number > 1,
	}
}

// Paginate cuts an already ordered, fully loaded slice into a page.
func Paginate[T any](items []T, number, size int) *Page[T] {
	p := NewPager(number, len(items), size)
	start := p.Offset()
	end := start + p.Limit()
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return NewPage(items[start:end], p)
}
