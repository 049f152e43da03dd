package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		total      int64
		wantNumber int
		wantOffset int
		wantPages  int
		wantNext   bool
		wantPrev   bool
	}{
		{"missing param defaults to first page", "", 13, 1, 0, 2, true, false},
		{"explicit first page", "1", 13, 1, 0, 2, true, false},
		{"second page holds the remainder", "2", 13, 2, 10, 2, false, true},
		{"non-numeric defaults to first page", "abc", 13, 1, 0, 2, true, false},
		{"zero clamps to last page", "0", 13, 2, 10, 2, false, true},
		{"negative clamps to last page", "-3", 13, 2, 10, 2, false, true},
		{"past the end clamps to last page", "99", 13, 2, 10, 2, false, true},
		{"empty set still has one page", "5", 0, 1, 0, 1, false, false},
		{"exact multiple of page size", "2", 20, 2, 10, 2, false, true},
		{"single record", "1", 1, 1, 0, 1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := Resolve(tt.raw, tt.total, 10)

			assert.Equal(t, tt.wantNumber, page.Number)
			assert.Equal(t, tt.wantOffset, page.Offset)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.wantNext, page.HasNext)
			assert.Equal(t, tt.wantPrev, page.HasPrevious)
		})
	}
}

func TestResolveGuardsAgainstBadSize(t *testing.T) {
	page := Resolve("1", 25, 0)
	assert.Equal(t, DefaultPageSize, page.Size)
	assert.Equal(t, 3, page.TotalPages)
}

func TestNavigationNumbers(t *testing.T) {
	middle := Resolve("2", 30, 10)
	assert.Equal(t, 3, middle.NextNumber())
	assert.Equal(t, 1, middle.PreviousNumber())

	last := Resolve("3", 30, 10)
	assert.Equal(t, 3, last.NextNumber())

	first := Resolve("1", 30, 10)
	assert.Equal(t, 1, first.PreviousNumber())
}
