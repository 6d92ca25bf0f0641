package query

import (
	"fmt"
	"strings"
)

// Package query turns a list of typed filter predicates plus a sort spec
// and a page spec into a pgx-ready SQL statement. The predicate list stays
// inspectable so the filtering logic can be tested without a live database.

// Predicate is one WHERE fragment. Placeholders are written as `?` and
// rewritten to $n positions at build time.
type Predicate struct {
	SQL  string
	Args []any
}

// ILike matches a case-insensitive substring against one column.
func ILike(column, fragment string) Predicate {
	return Predicate{SQL: column + " ILIKE ?", Args: []any{"%" + fragment + "%"}}
}

// Eq matches a column for equality.
func Eq(column string, value any) Predicate {
	return Predicate{SQL: column + " = ?", Args: []any{value}}
}

// HalfOpenRange matches column values in [start, end).
func HalfOpenRange(column string, start, end any) Predicate {
	return Predicate{SQL: column + " >= ? AND " + column + " < ?", Args: []any{start, end}}
}

// Exists wraps a correlated subquery.
func Exists(subquery string, args ...any) Predicate {
	return Predicate{SQL: "EXISTS (" + subquery + ")", Args: args}
}

// Raw is an escape hatch for operator predicates (array overlap etc.).
func Raw(sql string, args ...any) Predicate {
	return Predicate{SQL: sql, Args: args}
}

// Sort is a validated sort spec: By is a column name from the entity's
// allow-list, Order is ASC or DESC.
type Sort struct {
	By    string
	Order string
}

// NormalizeSort resolves a requested sort field against the allow-list
// (API name -> column). Unlisted values silently fall back to the default
// column; order defaults to desc.
func NormalizeSort(sortBy, order, defaultColumn string, allowed map[string]string) Sort {
	column, ok := allowed[sortBy]
	if !ok {
		column = defaultColumn
	}
	dir := "DESC"
	if strings.EqualFold(order, "asc") {
		dir = "ASC"
	}
	return Sort{By: column, Order: dir}
}

// Page is a normalized page spec.
type Page struct {
	Page  int
	Limit int
}

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// NormalizePage applies the shared pagination contract: page >= 1 default 1,
// limit 1..100 default 10.
func NormalizePage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// Builder accumulates predicates and produces the data and count queries.
type Builder struct {
	preds    []Predicate
	sort     Sort
	page     Page
	rankExpr string
	rankArgs []any
}

func New() *Builder {
	return &Builder{sort: Sort{By: "created_at", Order: "DESC"}}
}

func (b *Builder) Where(p Predicate) *Builder {
	b.preds = append(b.preds, p)
	return b
}

// WhereIf adds the predicate only when cond holds, keeping call sites flat.
func (b *Builder) WhereIf(cond bool, p Predicate) *Builder {
	if cond {
		b.preds = append(b.preds, p)
	}
	return b
}

func (b *Builder) Sort(s Sort) *Builder {
	b.sort = s
	return b
}

func (b *Builder) Paginate(p Page) *Builder {
	b.page = p
	return b
}

// Rank sets a relevance expression that is selected as `rank` and, when
// present, overrides the requested sort; the sort column stays as the
// tiebreaker.
func (b *Builder) Rank(expr string, args ...any) *Builder {
	b.rankExpr = expr
	b.rankArgs = args
	return b
}

// Predicates exposes the accumulated filter list for inspection in tests.
func (b *Builder) Predicates() []Predicate { return b.preds }

// Build assembles the data query. selectCols is the projection, from the
// FROM clause (may include joins).
func (b *Builder) Build(selectCols, from string) (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT ")
	sb.WriteString(selectCols)
	if b.rankExpr != "" {
		sb.WriteString(", ")
		sb.WriteString(b.rankExpr)
		sb.WriteString(" AS rank")
		args = append(args, b.rankArgs...)
	}
	sb.WriteString(" FROM ")
	sb.WriteString(from)

	args = b.writeWhere(&sb, args)

	sb.WriteString(" ORDER BY ")
	if b.rankExpr != "" {
		sb.WriteString("rank DESC, ")
	}
	sb.WriteString(b.sort.By)
	sb.WriteString(" ")
	sb.WriteString(b.sort.Order)

	if b.page.Limit > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, b.page.Limit, b.page.Offset())
	}

	return numberPlaceholders(sb.String()), args
}

// BuildCount assembles the matching COUNT(*) query over the same predicates.
func (b *Builder) BuildCount(from string) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT COUNT(*) FROM ")
	sb.WriteString(from)
	args := b.writeWhere(&sb, nil)
	return numberPlaceholders(sb.String()), args
}

func (b *Builder) writeWhere(sb *strings.Builder, args []any) []any {
	if len(b.preds) == 0 {
		return args
	}
	sb.WriteString(" WHERE ")
	for i, p := range b.preds {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString("(")
		sb.WriteString(p.SQL)
		sb.WriteString(")")
		args = append(args, p.Args...)
	}
	return args
}

// numberPlaceholders rewrites `?` placeholders to positional $1..$n.
func numberPlaceholders(sql string) string {
	var sb strings.Builder
	n := 0
	for _, r := range sql {
		if r == '?' {
			n++
			sb.WriteString(fmt.Sprintf("$%d", n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
