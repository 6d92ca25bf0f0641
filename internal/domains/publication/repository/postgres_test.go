package repository

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubrepo-backend/internal/domains/publication/model"
)

func intp(v int) *int { return &v }

func TestBuildSearch_YearIsHalfOpen(t *testing.T) {
	b := BuildSearch(model.SearchFilter{Year: intp(2023)})

	var found bool
	for _, p := range b.Predicates() {
		if !strings.Contains(p.SQL, "publication_date") {
			continue
		}
		found = true
		require.Len(t, p.Args, 2)
		assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), p.Args[0])
		// The upper bound is exclusive: a record dated 2024-01-01 is out.
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), p.Args[1])
		assert.Contains(t, p.SQL, ">=")
		assert.Contains(t, p.SQL, "<")
		assert.NotContains(t, p.SQL, "<=")
	}
	assert.True(t, found, "expected a publication_date predicate")
}

func TestBuildSearch_YearRangeBounds(t *testing.T) {
	b := BuildSearch(model.SearchFilter{YearFrom: intp(2020), YearTo: intp(2022)})

	for _, p := range b.Predicates() {
		if strings.Contains(p.SQL, "publication_date") {
			assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), p.Args[0])
			assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), p.Args[1])
		}
	}
}

func TestBuildSearch_TextQueryRankOverridesSort(t *testing.T) {
	b := BuildSearch(model.SearchFilter{Query: "neural networks", SortBy: "title", Order: "asc"})

	sql, args := b.Build(publicationColumns, "publications")
	assert.Contains(t, sql, "AS rank")
	assert.Contains(t, sql, "ORDER BY rank DESC, title ASC")
	assert.Contains(t, sql, "plainto_tsquery")
	// query text appears for both the match predicate and the rank expression
	count := 0
	for _, a := range args {
		if a == "neural networks" {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestBuildSearch_DefaultSortWithoutQuery(t *testing.T) {
	b := BuildSearch(model.SearchFilter{})

	sql, _ := b.Build(publicationColumns, "publications")
	assert.NotContains(t, sql, "rank")
	assert.Contains(t, sql, "ORDER BY publication_date DESC")
}

func TestBuildSearch_UnlistedSortFallsBack(t *testing.T) {
	b := BuildSearch(model.SearchFilter{SortBy: "password", Order: "asc"})

	sql, _ := b.Build(publicationColumns, "publications")
	assert.Contains(t, sql, "ORDER BY publication_date ASC")
}

func TestBuildSearch_FiltersCompose(t *testing.T) {
	b := BuildSearch(model.SearchFilter{
		Query:       "transformers",
		Author:      "nguyen",
		Year:        intp(2024),
		JournalType: "conference",
		Department:  "d1",
		Keyword:     "nlp",
	})

	// is_active + text + author + year + journal_type + department + keyword
	assert.Len(t, b.Predicates(), 7)

	var authorPred bool
	for _, p := range b.Predicates() {
		if strings.Contains(p.SQL, "EXISTS") {
			authorPred = true
			assert.Contains(t, p.SQL, "ILIKE")
			assert.Contains(t, p.Args, "%nguyen%")
		}
	}
	assert.True(t, authorPred, "expected an author EXISTS predicate")
}

func TestBuildSearch_PlaceholdersAreSequential(t *testing.T) {
	b := BuildSearch(model.SearchFilter{
		Author:      "tran",
		Year:        intp(2021),
		JournalType: "journal",
		Page:        2,
		Limit:       20,
	})

	sql, args := b.Build(publicationColumns, "publications")
	assert.NotContains(t, sql, "?")
	for i := 1; i <= len(args); i++ {
		assert.Contains(t, sql, "$"+strconv.Itoa(i))
	}
	// page 2 of 20 skips 20 rows
	assert.Equal(t, 20, args[len(args)-2])
	assert.Equal(t, 20, args[len(args)-1])
}
