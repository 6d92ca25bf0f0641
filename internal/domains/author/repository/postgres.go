package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pubrepo-backend/internal/domains/author/model"
	"pubrepo-backend/internal/shared/apperrors"
	"pubrepo-backend/internal/shared/query"
	"pubrepo-backend/pkg/database"
)

type RepositoryInterface interface {
	CreateTemplate(ctx context.Context, a *model.Author) (*model.Author, error)
	GetTemplateByEmployeeID(ctx context.Context, employeeID string) (*model.Author, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error)

	// CreateAssignment inserts the assignment record and recomputes the
	// owning publication's co-author count in one transaction.
	CreateAssignment(ctx context.Context, a *model.Author) (*model.Author, error)
	// DeleteAssignment removes one assignment record and recomputes the
	// count; it never touches templates.
	DeleteAssignment(ctx context.Context, id uuid.UUID) error
	DeleteTemplate(ctx context.Context, employeeID string) error

	CountAssignmentsByEmployee(ctx context.Context, employeeID string) (int64, error)
	HasAssignment(ctx context.Context, publicationID uuid.UUID, employeeID string) (bool, error)
	OrderTaken(ctx context.Context, publicationID uuid.UUID, order int) (bool, error)

	GetCoAuthors(ctx context.Context, publicationID uuid.UUID, excluding *uuid.UUID) ([]model.Author, error)
	GetUnassigned(ctx context.Context, page query.Page) ([]model.Author, int64, error)
	GetAssignmentsByEmployee(ctx context.Context, employeeID string) ([]model.Author, error)
	Search(ctx context.Context, filter model.SearchFilter) ([]model.Author, int64, error)
	Count(ctx context.Context) (int64, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// Projection without the credential; search and listing results never carry
// the password column out of the repository.
const authorColumns = "id, employee_id, author_name, email, department_id, publication_id, author_order, is_active, created_at, updated_at"

// Full projection, used only where the credential must be copied.
const authorColumnsWithPassword = "id, employee_id, author_name, email, password, department_id, publication_id, author_order, is_active, created_at, updated_at"

var authorSortFields = map[string]string{
	"author_name": "author_name",
	"employee_id": "employee_id",
	"email":       "email",
	"created_at":  "created_at",
}

func scanAuthor(row pgx.Row) (*model.Author, error) {
	var a model.Author
	err := row.Scan(&a.ID, &a.EmployeeID, &a.AuthorName, &a.Email, &a.DepartmentID,
		&a.PublicationID, &a.AuthorOrder, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *postgresRepository) CreateTemplate(ctx context.Context, a *model.Author) (*model.Author, error) {
	sql := `
        INSERT INTO authors (employee_id, author_name, email, password, department_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + authorColumns

	created, err := scanAuthor(r.pool.QueryRow(ctx, sql,
		a.EmployeeID, a.AuthorName, a.Email, a.Password, a.DepartmentID))
	if err != nil {
		if apperrors.UniqueViolation(err, "authors_template_employee_uq") {
			return nil, model.ErrTemplateExists
		}
		if apperrors.ForeignKeyViolation(err) {
			return nil, model.ErrDepartmentAbsent
		}
		return nil, fmt.Errorf("failed to create author template: %w", err)
	}
	return created, nil
}

func (r *postgresRepository) GetTemplateByEmployeeID(ctx context.Context, employeeID string) (*model.Author, error) {
	sql := `SELECT ` + authorColumnsWithPassword + `
        FROM authors
        WHERE employee_id = $1 AND publication_id IS NULL AND is_active`

	var a model.Author
	err := r.pool.QueryRow(ctx, sql, employeeID).Scan(
		&a.ID, &a.EmployeeID, &a.AuthorName, &a.Email, &a.Password, &a.DepartmentID,
		&a.PublicationID, &a.AuthorOrder, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get author template: %w", err)
	}
	return &a, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	sql := `SELECT ` + authorColumns + ` FROM authors WHERE id = $1`

	a, err := scanAuthor(r.pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get author: %w", err)
	}
	return a, nil
}

// recountPublication recomputes co_author_count from the live assignment
// rows. Runs inside the same transaction as the write that changed them.
func recountPublication(ctx context.Context, tx pgx.Tx, publicationID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
        UPDATE publications
        SET co_author_count = (
            SELECT COUNT(*) FROM authors
            WHERE publication_id = $1 AND is_active
        ),
        updated_at = NOW()
        WHERE id = $1`, publicationID)
	if err != nil {
		return fmt.Errorf("failed to recompute co-author count: %w", err)
	}
	return nil
}

func (r *postgresRepository) CreateAssignment(ctx context.Context, a *model.Author) (*model.Author, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Author, error) {
		sql := `
            INSERT INTO authors (employee_id, author_name, email, password, department_id, publication_id, author_order)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            RETURNING ` + authorColumns

		created, err := scanAuthor(tx.QueryRow(ctx, sql,
			a.EmployeeID, a.AuthorName, a.Email, a.Password, a.DepartmentID,
			a.PublicationID, a.AuthorOrder))
		if err != nil {
			// The partial unique indexes are the authoritative guard; a
			// racing writer that slipped past the pre-checks lands here
			// and gets the same conflict the pre-check would have given.
			if apperrors.UniqueViolation(err, "authors_publication_employee_uq") {
				return nil, model.ErrAlreadyAssigned
			}
			if apperrors.UniqueViolation(err, "authors_publication_order_uq") {
				return nil, model.ErrOrderTaken(*a.AuthorOrder)
			}
			if apperrors.ForeignKeyViolation(err) {
				return nil, model.ErrDepartmentAbsent
			}
			return nil, fmt.Errorf("failed to create assignment: %w", err)
		}

		if err := recountPublication(ctx, tx, *a.PublicationID); err != nil {
			return nil, err
		}
		return created, nil
	})
}

func (r *postgresRepository) DeleteAssignment(ctx context.Context, id uuid.UUID) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		var publicationID uuid.UUID
		err := tx.QueryRow(ctx, `
            DELETE FROM authors
            WHERE id = $1 AND publication_id IS NOT NULL
            RETURNING publication_id`, id).Scan(&publicationID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.ErrRecordNotFound
			}
			return fmt.Errorf("failed to delete assignment: %w", err)
		}

		return recountPublication(ctx, tx, publicationID)
	})
}

func (r *postgresRepository) DeleteTemplate(ctx context.Context, employeeID string) error {
	cmdTag, err := r.pool.Exec(ctx, `
        DELETE FROM authors
        WHERE employee_id = $1 AND publication_id IS NULL AND is_active`, employeeID)
	if err != nil {
		return fmt.Errorf("failed to delete author template: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return model.ErrTemplateNotFound
	}
	return nil
}

func (r *postgresRepository) CountAssignmentsByEmployee(ctx context.Context, employeeID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM authors
        WHERE employee_id = $1 AND publication_id IS NOT NULL AND is_active`, employeeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assignments: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) HasAssignment(ctx context.Context, publicationID uuid.UUID, employeeID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
        SELECT EXISTS(
            SELECT 1 FROM authors
            WHERE publication_id = $1 AND employee_id = $2 AND is_active
        )`, publicationID, employeeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) OrderTaken(ctx context.Context, publicationID uuid.UUID, order int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
        SELECT EXISTS(
            SELECT 1 FROM authors
            WHERE publication_id = $1 AND author_order = $2 AND is_active
        )`, publicationID, order).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check author order: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) GetCoAuthors(ctx context.Context, publicationID uuid.UUID, excluding *uuid.UUID) ([]model.Author, error) {
	b := query.New().
		Where(query.Eq("publication_id", publicationID)).
		Where(query.Raw("is_active")).
		Sort(query.Sort{By: "author_order", Order: "ASC"})
	if excluding != nil {
		b.Where(query.Raw("id <> ?", *excluding))
	}

	sql, args := b.Build(authorColumns, "authors")
	return r.queryAuthors(ctx, sql, args)
}

func (r *postgresRepository) GetUnassigned(ctx context.Context, page query.Page) ([]model.Author, int64, error) {
	b := query.New().
		Where(query.Raw("publication_id IS NULL")).
		Where(query.Raw("is_active")).
		Sort(query.Sort{By: "created_at", Order: "DESC"}).
		Paginate(page)

	sql, args := b.Build(authorColumns, "authors")
	authors, err := r.queryAuthors(ctx, sql, args)
	if err != nil {
		return nil, 0, err
	}

	countSQL, countArgs := b.BuildCount("authors")
	var total int64
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count unassigned authors: %w", err)
	}
	return authors, total, nil
}

func (r *postgresRepository) GetAssignmentsByEmployee(ctx context.Context, employeeID string) ([]model.Author, error) {
	b := query.New().
		Where(query.Eq("employee_id", employeeID)).
		Where(query.Raw("publication_id IS NOT NULL")).
		Where(query.Raw("is_active")).
		Sort(query.Sort{By: "created_at", Order: "DESC"})

	sql, args := b.Build(authorColumns, "authors")
	return r.queryAuthors(ctx, sql, args)
}

func (r *postgresRepository) Search(ctx context.Context, filter model.SearchFilter) ([]model.Author, int64, error) {
	page := query.NormalizePage(filter.Page, filter.Limit)

	field := filter.Field
	if !field.IsValid() {
		field = model.SearchFieldName
	}

	b := query.New().
		WhereIf(filter.Fragment != "", query.ILike(field.Column(), filter.Fragment)).
		Where(query.Raw("is_active")).
		Sort(query.NormalizeSort(filter.SortBy, filter.Order, "created_at", authorSortFields)).
		Paginate(page)

	sql, args := b.Build(authorColumns, "authors")
	authors, err := r.queryAuthors(ctx, sql, args)
	if err != nil {
		return nil, 0, err
	}

	countSQL, countArgs := b.BuildCount("authors")
	var total int64
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count authors: %w", err)
	}
	return authors, total, nil
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM authors WHERE is_active`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count authors: %w", err)
	}
	return total, nil
}

func (r *postgresRepository) queryAuthors(ctx context.Context, sql string, args []any) ([]model.Author, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query authors: %w", err)
	}
	defer rows.Close()

	var authors []model.Author
	for rows.Next() {
		var a model.Author
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.AuthorName, &a.Email, &a.DepartmentID,
			&a.PublicationID, &a.AuthorOrder, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating authors: %w", err)
	}
	return authors, nil
}
