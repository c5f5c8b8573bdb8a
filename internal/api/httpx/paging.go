package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

var ErrInvalidPage = errors.New("invalid page")

// PageObj mirrors what a paginated list page needs to draw its pager.
type PageObj struct {
	Number             int  `json:"number"`
	NumPages           int  `json:"num_pages"`
	Count              int  `json:"count"`
	HasPrevious        bool `json:"has_previous"`
	HasNext            bool `json:"has_next"`
	PreviousPageNumber *int `json:"previous_page_number,omitempty"`
	NextPageNumber     *int `json:"next_page_number,omitempty"`
}

// PageNumber reads ?page=; missing means 1, anything that is not a positive integer is invalid.
func PageNumber(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("page"))
	if raw == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, ErrInvalidPage
	}
	return n, nil
}

// Offset converts a 1-based page number to a row offset.
func Offset(page, size int) int { return (page - 1) * size }

// Paginate builds the pager for page out of total rows. A page beyond the last one is
// invalid, except page 1 of an empty list.
func Paginate(page, size, total int) (PageObj, error) {
	numPages := 1
	if total > 0 {
		numPages = (total + size - 1) / size
	}
	if page < 1 || page > numPages {
		return PageObj{}, ErrInvalidPage
	}
	p := PageObj{
		Number:      page,
		NumPages:    numPages,
		Count:       total,
		HasPrevious: page > 1,
		HasNext:     page < numPages,
	}
	if p.HasPrevious {
		prev := page - 1
		p.PreviousPageNumber = &prev
	}
	if p.HasNext {
		next := page + 1
		p.NextPageNumber = &next
	}
	return p, nil
}
