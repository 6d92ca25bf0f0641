package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pubrepo-backend/internal/domains/department/model"
	"pubrepo-backend/internal/shared/apperrors"
	"pubrepo-backend/internal/shared/query"
	"pubrepo-backend/pkg/cache"
)

type RepositoryInterface interface {
	Create(ctx context.Context, d *model.Department) (*model.Department, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Department, error)
	GetAll(ctx context.Context, filter model.ListFilter) ([]model.Department, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, c cache.Cache) RepositoryInterface {
	return &postgresRepository{pool: pool, cache: c}
}

const (
	departmentColumns = "id, name, code, university, is_active, created_at, updated_at"

	departmentCacheKeyPrefix = "department:"
	departmentListKeyPrefix  = "departments:list:"
	cacheTTL                 = 15 * time.Minute
)

// sort field allow-list: API name -> column
var departmentSortFields = map[string]string{
	"name":       "name",
	"university": "university",
	"created_at": "created_at",
}

func scanDepartment(row pgx.Row) (*model.Department, error) {
	var d model.Department
	err := row.Scan(&d.ID, &d.Name, &d.Code, &d.University, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *postgresRepository) Create(ctx context.Context, d *model.Department) (*model.Department, error) {
	sql := `
        INSERT INTO departments (name, code, university)
        VALUES ($1, $2, $3)
        RETURNING ` + departmentColumns

	created, err := scanDepartment(r.pool.QueryRow(ctx, sql, d.Name, d.Code, d.University))
	if err != nil {
		if apperrors.UniqueViolation(err, "departments_name_key") {
			return nil, model.ErrDuplicateName
		}
		if apperrors.UniqueViolation(err, "departments_code_key") {
			return nil, model.ErrDuplicateCode
		}
		return nil, fmt.Errorf("failed to create department: %w", err)
	}

	r.invalidateListCache(ctx)
	return created, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	cacheKey := departmentCacheKeyPrefix + id.String()

	var cached model.Department
	if found, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	sql := `SELECT ` + departmentColumns + ` FROM departments WHERE id = $1`

	d, err := scanDepartment(r.pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get department: %w", err)
	}

	r.cache.Set(ctx, cacheKey, d, cacheTTL)
	return d, nil
}

// cachedList is the envelope stored for paginated list results.
type cachedList struct {
	Items []model.Department `json:"items"`
	Total int64              `json:"total"`
}

func (r *postgresRepository) GetAll(ctx context.Context, filter model.ListFilter) ([]model.Department, int64, error) {
	page := query.NormalizePage(filter.Page, filter.Limit)
	cacheKey := fmt.Sprintf("%s%s:%s:%s:%d:%d",
		departmentListKeyPrefix, filter.Search, filter.SortBy, filter.Order, page.Page, page.Limit)

	var cached cachedList
	if found, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return cached.Items, cached.Total, nil
	}

	b := query.New().
		WhereIf(filter.Search != "", query.ILike("name", filter.Search)).
		Sort(query.NormalizeSort(filter.SortBy, filter.Order, "created_at", departmentSortFields)).
		Paginate(page)

	sql, args := b.Build(departmentColumns, "departments")
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	var departments []model.Department
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Code, &d.University, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating departments: %w", err)
	}

	countSQL, countArgs := b.BuildCount("departments")
	var total int64
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count departments: %w", err)
	}

	r.cache.Set(ctx, cacheKey, cachedList{Items: departments, Total: total}, cacheTTL)
	return departments, total, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		// FK RESTRICT from authors/publications keeps referenced
		// departments alive.
		if apperrors.ForeignKeyViolation(err) {
			return model.ErrStillReferenced
		}
		return fmt.Errorf("failed to delete department: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	r.cache.Delete(ctx, departmentCacheKeyPrefix+id.String())
	r.invalidateListCache(ctx)
	return nil
}

func (r *postgresRepository) invalidateListCache(ctx context.Context) {
	r.cache.DeletePattern(ctx, departmentListKeyPrefix+"*")
}

func (r *postgresRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM departments WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check department existence: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM departments`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count departments: %w", err)
	}
	return total, nil
}
