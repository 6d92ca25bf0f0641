package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMeta_BoundaryFlags(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		total      int64
		totalPages int
		hasNext    bool
		hasPrev    bool
	}{
		{"single page", 1, 10, 7, 1, false, false},
		{"first of many", 1, 10, 25, 3, true, false},
		{"middle page", 2, 10, 25, 3, true, true},
		{"last page", 3, 10, 25, 3, false, true},
		{"exact multiple", 2, 10, 20, 2, false, true},
		{"empty result", 1, 10, 0, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMeta(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.totalPages, m.TotalPages)
			assert.Equal(t, tt.hasNext, m.HasNextPage)
			assert.Equal(t, tt.hasPrev, m.HasPrevPage)
			assert.Equal(t, tt.total, m.TotalCount)
		})
	}
}

// Concatenating all pages covers the whole result set exactly once.
func TestNewMeta_PagesCoverTotal(t *testing.T) {
	const total, limit = 43, 10
	m := NewMeta(1, limit, total)

	covered := 0
	for page := 1; page <= m.TotalPages; page++ {
		remaining := total - (page-1)*limit
		if remaining > limit {
			covered += limit
		} else {
			covered += remaining
		}
	}
	assert.Equal(t, total, covered)
}
