package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pubrepo-backend/internal/domains/publication/model"
	"pubrepo-backend/internal/shared/apperrors"
	"pubrepo-backend/internal/shared/query"
	"pubrepo-backend/pkg/database"
)

type RepositoryInterface interface {
	Create(ctx context.Context, p *model.Publication) (*model.Publication, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Publication, error)
	Search(ctx context.Context, filter model.SearchFilter) ([]model.Publication, int64, error)
	Related(ctx context.Context, id uuid.UUID, limit int) ([]model.Publication, error)
	// Delete removes the publication together with its assignment records
	// in one transaction; templates are untouched.
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	RecountCoAuthors(ctx context.Context, id uuid.UUID) (int, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const publicationColumns = "id, title, abstract, publication_date, isbn, journal_name, journal_type, impact_factor, file_url, department_id, co_author_count, keywords, is_active, created_at, updated_at"

var publicationSortFields = map[string]string{
	"title":            "title",
	"publication_date": "publication_date",
	"impact_factor":    "impact_factor",
	"co_author_count":  "co_author_count",
	"created_at":       "created_at",
}

// Weighted document over title (A), abstract (B) and keywords (C) for
// relevance ranking.
const searchVector = `setweight(to_tsvector('english', title), 'A') ||
	setweight(to_tsvector('english', abstract), 'B') ||
	setweight(to_tsvector('english', array_to_string(keywords, ' ')), 'C')`

func scanPublication(row pgx.Row) (*model.Publication, error) {
	var p model.Publication
	err := row.Scan(&p.ID, &p.Title, &p.Abstract, &p.PublicationDate, &p.ISBN,
		&p.JournalName, &p.JournalType, &p.ImpactFactor, &p.FileURL, &p.DepartmentID,
		&p.CoAuthorCount, &p.Keywords, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepository) Create(ctx context.Context, p *model.Publication) (*model.Publication, error) {
	sql := `
        INSERT INTO publications (title, abstract, publication_date, isbn, journal_name, journal_type, impact_factor, file_url, department_id, keywords)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING ` + publicationColumns

	created, err := scanPublication(r.pool.QueryRow(ctx, sql,
		p.Title, p.Abstract, p.PublicationDate, p.ISBN, p.JournalName,
		p.JournalType, p.ImpactFactor, p.FileURL, p.DepartmentID, p.Keywords))
	if err != nil {
		if apperrors.UniqueViolation(err, "publications_isbn_key") {
			return nil, model.ErrDuplicateISBN
		}
		if apperrors.ForeignKeyViolation(err) {
			return nil, model.ErrDeptAbsent
		}
		return nil, fmt.Errorf("failed to create publication: %w", err)
	}
	return created, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Publication, error) {
	sql := `SELECT ` + publicationColumns + ` FROM publications WHERE id = $1`

	p, err := scanPublication(r.pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get publication: %w", err)
	}
	return p, nil
}

// BuildSearch assembles the composable filter set. Exposed so the
// filtering logic is inspectable without a live database.
func BuildSearch(filter model.SearchFilter) *query.Builder {
	page := query.NormalizePage(filter.Page, filter.Limit)

	b := query.New().
		Where(query.Raw("is_active")).
		Sort(query.NormalizeSort(filter.SortBy, filter.Order, "publication_date", publicationSortFields)).
		Paginate(page)

	if filter.Query != "" {
		b.Where(query.Raw(searchVector+" @@ plainto_tsquery('english', ?)", filter.Query))
		b.Rank("ts_rank("+searchVector+", plainto_tsquery('english', ?))", filter.Query)
	}
	if filter.Author != "" {
		b.Where(query.Exists(`
            SELECT 1 FROM authors a
            WHERE a.publication_id = publications.id AND a.is_active
              AND (a.author_name ILIKE ? OR a.email ILIKE ?)`,
			"%"+filter.Author+"%", "%"+filter.Author+"%"))
	}
	if filter.Year != nil {
		b.Where(yearRange(*filter.Year, *filter.Year))
	} else if filter.YearFrom != nil || filter.YearTo != nil {
		from, to := 1, 9998
		if filter.YearFrom != nil {
			from = *filter.YearFrom
		}
		if filter.YearTo != nil {
			to = *filter.YearTo
		}
		b.Where(yearRange(from, to))
	}
	b.WhereIf(filter.JournalType != "", query.Eq("journal_type", filter.JournalType))
	b.WhereIf(filter.Department != "", query.Eq("department_id", filter.Department))
	b.WhereIf(filter.Keyword != "", query.Raw("? = ANY(keywords)", filter.Keyword))

	return b
}

// yearRange is the half-open interval [from-01-01, (to+1)-01-01).
func yearRange(from, to int) query.Predicate {
	start := time.Date(from, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	return query.HalfOpenRange("publication_date", start, end)
}

func (r *postgresRepository) Search(ctx context.Context, filter model.SearchFilter) ([]model.Publication, int64, error) {
	b := BuildSearch(filter)

	sql, args := b.Build(publicationColumns, "publications")
	publications, err := r.queryPublications(ctx, sql, args, filter.Query != "")
	if err != nil {
		return nil, 0, err
	}

	countSQL, countArgs := b.BuildCount("publications")
	var total int64
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count publications: %w", err)
	}
	return publications, total, nil
}

func (r *postgresRepository) Related(ctx context.Context, id uuid.UUID, limit int) ([]model.Publication, error) {
	if limit < 1 || limit > query.MaxLimit {
		limit = query.DefaultLimit
	}
	sql := `SELECT ` + publicationColumns + `
        FROM publications
        WHERE id <> $1 AND is_active
          AND keywords && (SELECT keywords FROM publications WHERE id = $1)
        ORDER BY publication_date DESC
        LIMIT $2`

	return r.queryPublications(ctx, sql, []any{id, limit}, false)
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM authors WHERE publication_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete publication assignments: %w", err)
		}
		cmdTag, err := tx.Exec(ctx, `DELETE FROM publications WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete publication: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return model.ErrNotFound
		}
		return nil
	})
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM publications WHERE is_active`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count publications: %w", err)
	}
	return total, nil
}

func (r *postgresRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM publications WHERE is_active`)
	if err != nil {
		return nil, fmt.Errorf("failed to list publication ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan publication id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecountCoAuthors overwrites co_author_count with the live assignment
// count and returns the new value. Used by the drift-repair worker.
func (r *postgresRepository) RecountCoAuthors(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
        UPDATE publications
        SET co_author_count = (
            SELECT COUNT(*) FROM authors
            WHERE publication_id = $1 AND is_active
        ),
        updated_at = NOW()
        WHERE id = $1
        RETURNING co_author_count`, id).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, model.ErrNotFound
		}
		return 0, fmt.Errorf("failed to recount co-authors: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) queryPublications(ctx context.Context, sql string, args []any, ranked bool) ([]model.Publication, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query publications: %w", err)
	}
	defer rows.Close()

	var publications []model.Publication
	for rows.Next() {
		var p model.Publication
		dest := []any{&p.ID, &p.Title, &p.Abstract, &p.PublicationDate, &p.ISBN,
			&p.JournalName, &p.JournalType, &p.ImpactFactor, &p.FileURL, &p.DepartmentID,
			&p.CoAuthorCount, &p.Keywords, &p.IsActive, &p.CreatedAt, &p.UpdatedAt}
		if ranked {
			var rank float32
			dest = append(dest, &rank)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan publication: %w", err)
		}
		publications = append(publications, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating publications: %w", err)
	}
	return publications, nil
}
