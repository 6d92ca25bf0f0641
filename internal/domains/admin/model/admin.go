package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"pubrepo-backend/internal/shared/apperrors"
)

// Role is the fixed capability tier of an admin account.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super-admin"
	RoleModerator  Role = "moderator"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSuperAdmin, RoleModerator:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

type Admin struct {
	ID           uuid.UUID `json:"id" db:"id"`
	EmployeeID   string    `json:"employee_id" db:"employee_id"`
	Email        string    `json:"email" db:"email"`
	Fullname     string    `json:"fullname" db:"fullname"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type RegisterRequest struct {
	EmployeeID string `json:"employee_id"`
	Email      string `json:"email"`
	Fullname   string `json:"fullname"`
	Password   string `json:"password"`
	Role       string `json:"role"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
		),
		validation.Field(&r.Fullname,
			validation.Required.Error("fullname is required"),
			validation.Length(2, 200),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be at least 8 characters"),
		),
		validation.Field(&r.Role,
			validation.When(r.Role != "", validation.In(
				string(RoleAdmin), string(RoleSuperAdmin), string(RoleModerator),
			).Error("role must be one of admin, super-admin, moderator")),
		),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
		),
		validation.Field(&r.Password, validation.Required.Error("password is required")),
	)
}

// Counts is the aggregate entity tally exposed to dashboards.
type Counts struct {
	Departments  int64 `json:"departments"`
	Authors      int64 `json:"authors"`
	Publications int64 `json:"publications"`
	Admins       int64 `json:"admins"`
}

var (
	ErrNotFound       = apperrors.NotFound("admin not found")
	ErrDuplicateEmail = apperrors.Conflict("admin with this email already exists")
	ErrBadCredentials = apperrors.Auth("invalid email or password")
	ErrDeactivated    = apperrors.Forbidden("account is deactivated")
	ErrProtected      = apperrors.Forbidden("super-admin account cannot be deleted")
)
