package directory

import "fmt"

// Page describes the visible slice of a filtered list
type Page struct {
	Number  int // 1-based current page
	Count   int // total pages, at least 1
	Start   int // inclusive index
	End     int // exclusive index
	HasPrev bool
	HasNext bool
}

// Paginate computes the half-open range [Start, End) shown for page.
// A page past the end yields an empty range.
func Paginate(total, pageSize, page int) Page {
	if pageSize <= 0 {
		pageSize = 1
	}
	if total < 0 {
		total = 0
	}

	pages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page{
		Number:  page,
		Count:   max(1, pages),
		Start:   start,
		End:     end,
		HasPrev: page != 1,
		HasNext: total > 0 && page < pages,
	}
}

// Len is the number of items on the page
func (p Page) Len() int {
	return p.End - p.Start
}

// InfoText renders the page indicator
func (p Page) InfoText() string {
	return fmt.Sprintf("Page %d of %d", p.Number, p.Count)
}
