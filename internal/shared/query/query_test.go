package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{"defaults", 0, 0, 1, 10},
		{"negative page", -3, 20, 1, 20},
		{"limit clamped to max", 1, 500, 1, 100},
		{"limit floor", 2, -1, 2, 10},
		{"passthrough", 4, 25, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NormalizePage(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
		})
	}
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, NormalizePage(1, 10).Offset())
	assert.Equal(t, 30, NormalizePage(4, 10).Offset())
}

func TestNormalizeSort(t *testing.T) {
	allowed := map[string]string{"name": "name", "created_at": "created_at"}

	s := NormalizeSort("name", "asc", "created_at", allowed)
	assert.Equal(t, Sort{By: "name", Order: "ASC"}, s)

	// unlisted fields silently fall back to the default
	s = NormalizeSort("password", "asc", "created_at", allowed)
	assert.Equal(t, "created_at", s.By)

	// order defaults to desc
	s = NormalizeSort("", "", "created_at", allowed)
	assert.Equal(t, "DESC", s.Order)
}

func TestBuild_WhereAndPagination(t *testing.T) {
	b := New().
		Where(ILike("name", "phys")).
		Where(Eq("is_active", true)).
		Sort(Sort{By: "name", Order: "ASC"}).
		Paginate(Page{Page: 3, Limit: 10})

	sql, args := b.Build("id, name", "departments")
	assert.Equal(t,
		"SELECT id, name FROM departments WHERE (name ILIKE $1) AND (is_active = $2) ORDER BY name ASC LIMIT $3 OFFSET $4",
		sql)
	assert.Equal(t, []any{"%phys%", true, 10, 20}, args)
}

func TestBuild_NoPredicatesNoWhere(t *testing.T) {
	sql, args := New().Build("id", "departments")
	assert.NotContains(t, sql, "WHERE")
	assert.Empty(t, args)
}

func TestBuildCount_SharesPredicatesSkipsPaging(t *testing.T) {
	b := New().
		Where(Eq("department_id", "d1")).
		Paginate(Page{Page: 5, Limit: 10})

	sql, args := b.BuildCount("publications")
	assert.Equal(t, "SELECT COUNT(*) FROM publications WHERE (department_id = $1)", sql)
	assert.Equal(t, []any{"d1"}, args)
}

func TestHalfOpenRange(t *testing.T) {
	p := HalfOpenRange("publication_date", "2020-01-01", "2021-01-01")
	assert.Equal(t, "publication_date >= ? AND publication_date < ?", p.SQL)
	assert.Equal(t, []any{"2020-01-01", "2021-01-01"}, p.Args)
}

func TestRank_OverridesSortOrder(t *testing.T) {
	b := New().
		Sort(Sort{By: "title", Order: "ASC"}).
		Rank("ts_rank(doc, plainto_tsquery(?))", "query text")

	sql, args := b.Build("id", "publications")
	assert.Contains(t, sql, "ts_rank(doc, plainto_tsquery($1)) AS rank")
	assert.Contains(t, sql, "ORDER BY rank DESC, title ASC")
	assert.Equal(t, []any{"query text"}, args)
}
