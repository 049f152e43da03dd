// Package pagination turns a requested page number and a record total
// into a bounded window over an ordered record set.
package pagination

import "strconv"

// DefaultPageSize is the number of records shown per screen.
const DefaultPageSize = 10

// Page describes one screen's worth of an ordered record set.
type Page struct {
	Number      int
	Size        int
	Offset      int
	Total       int64
	TotalPages  int
	HasNext     bool
	HasPrevious bool
}

// Resolve computes the page window for a raw page query parameter.
// A missing or non-numeric value resolves to page 1; any out-of-range
// number (including zero and negatives) clamps to the last page. An
// empty record set still has exactly one (empty) page. No error is
// ever returned.
func Resolve(raw string, total int64, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}

	number := 1
	if raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			number = 1
		} else if parsed < 1 || parsed > totalPages {
			number = totalPages
		} else {
			number = parsed
		}
	}

	return Page{
		Number:      number,
		Size:        size,
		Offset:      (number - 1) * size,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     number < totalPages,
		HasPrevious: number > 1,
	}
}

// NextNumber returns the following page number, or the current one when
// already on the last page.
func (p Page) NextNumber() int {
	if p.HasNext {
		return p.Number + 1
	}
	return p.Number
}

// PreviousNumber returns the preceding page number, or the current one
// when already on the first page.
func (p Page) PreviousNumber() int {
	if p.HasPrevious {
		return p.Number - 1
	}
	return p.Number
}
