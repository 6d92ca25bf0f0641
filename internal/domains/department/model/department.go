package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"pubrepo-backend/internal/shared/apperrors"
)

type Department struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Code       *string   `json:"code,omitempty" db:"code"`
	University string    `json:"university" db:"university"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type DepartmentRequest struct {
	Name       string  `json:"name"`
	Code       *string `json:"code,omitempty"`
	University string  `json:"university"`
}

func (r DepartmentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("department name is required"),
			validation.Length(2, 200),
		),
		validation.Field(&r.Code,
			validation.When(r.Code != nil, validation.Length(1, 20)),
		),
		validation.Field(&r.University,
			validation.Required.Error("university is required"),
			validation.Length(2, 200),
		),
	)
}

type ListFilter struct {
	Search string
	Page   int
	Limit  int
	SortBy string
	Order  string
}

// Sentinel errors
var (
	ErrNotFound        = apperrors.NotFound("department not found")
	ErrDuplicateName   = apperrors.Conflict("department name already exists")
	ErrDuplicateCode   = apperrors.Conflict("department code already exists")
	ErrStillReferenced = apperrors.Conflict("department is referenced by authors or publications")
)
