package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pubrepo-backend/internal/domains/admin/model"
	"pubrepo-backend/internal/shared/apperrors"
)

type RepositoryInterface interface {
	Create(ctx context.Context, a *model.Admin) (*model.Admin, error)
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Admin, error)
	// Deactivate soft-deletes the account; the record stays for audit.
	Deactivate(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const adminColumns = "id, employee_id, email, fullname, password_hash, role, is_active, created_at, updated_at"

func scanAdmin(row pgx.Row) (*model.Admin, error) {
	var a model.Admin
	err := row.Scan(&a.ID, &a.EmployeeID, &a.Email, &a.Fullname, &a.PasswordHash,
		&a.Role, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *postgresRepository) Create(ctx context.Context, a *model.Admin) (*model.Admin, error) {
	sql := `
        INSERT INTO admins (employee_id, email, fullname, password_hash, role)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + adminColumns

	created, err := scanAdmin(r.pool.QueryRow(ctx, sql,
		a.EmployeeID, a.Email, a.Fullname, a.PasswordHash, a.Role))
	if err != nil {
		if apperrors.UniqueViolation(err, "admins_email_key") {
			return nil, model.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	return created, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	sql := `SELECT ` + adminColumns + ` FROM admins WHERE email = $1`

	a, err := scanAdmin(r.pool.QueryRow(ctx, sql, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return a, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	sql := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`

	a, err := scanAdmin(r.pool.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return a, nil
}

func (r *postgresRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.pool.Exec(ctx, `
        UPDATE admins SET is_active = FALSE, updated_at = NOW()
        WHERE id = $1 AND is_active`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate admin: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admins WHERE is_active`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return total, nil
}
