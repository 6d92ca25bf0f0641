package model

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"pubrepo-backend/internal/shared/apperrors"
)

// Author is both shapes of the authors collection:
//   - template record: PublicationID nil, a registered person not yet tied
//     to a specific publication;
//   - assignment record: PublicationID set, one ordered authorship slot.
//
// An assignment copies the identity fields from the template instead of
// referencing it. Password is a credential placeholder and never leaves
// the service.
type Author struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	EmployeeID    string     `json:"employee_id" db:"employee_id"`
	AuthorName    string     `json:"author_name" db:"author_name"`
	Email         string     `json:"email" db:"email"`
	Password      string     `json:"-" db:"password"`
	DepartmentID  uuid.UUID  `json:"department_id" db:"department_id"`
	PublicationID *uuid.UUID `json:"publication_id,omitempty" db:"publication_id"`
	AuthorOrder   *int       `json:"author_order,omitempty" db:"author_order"`
	IsActive      bool       `json:"is_active" db:"is_active"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// IsTemplate reports whether this is a reusable identity template.
func (a *Author) IsTemplate() bool { return a.PublicationID == nil }

// IsPrimary reports whether this assignment occupies ordinal slot 1.
func (a *Author) IsPrimary() bool { return a.AuthorOrder != nil && *a.AuthorOrder == 1 }

type RegisterRequest struct {
	EmployeeID   string `json:"employee_id"`
	AuthorName   string `json:"author_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	DepartmentID string `json:"department"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.EmployeeID,
			validation.Required.Error("employee_id is required"),
			validation.Length(1, 50),
		),
		validation.Field(&r.AuthorName,
			validation.Required.Error("author_name is required"),
			validation.Length(2, 200),
		),
		validation.Field(&r.Email,
			validation.When(r.Email != "", is.Email.Error("invalid email format")),
		),
		validation.Field(&r.Password, validation.Length(0, 128)),
		validation.Field(&r.DepartmentID,
			validation.Required.Error("department is required"),
			is.UUID.Error("department must be a valid id"),
		),
	)
}

// AssignOverrides lets an assignment deviate from the template's copied
// identity fields.
type AssignOverrides struct {
	AuthorName   *string `json:"author_name,omitempty"`
	Email        *string `json:"email,omitempty"`
	DepartmentID *string `json:"department,omitempty"`
}

type AssignRequest struct {
	EmployeeID    string           `json:"employee_id"`
	PublicationID string           `json:"publication_id"`
	AuthorOrder   int              `json:"author_order"`
	Overrides     *AssignOverrides `json:"overrides,omitempty"`
}

func (r AssignRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.EmployeeID, validation.Required.Error("employee_id is required")),
		validation.Field(&r.PublicationID,
			validation.Required.Error("publication_id is required"),
			is.UUID.Error("publication_id must be a valid id"),
		),
		validation.Field(&r.AuthorOrder,
			validation.Required.Error("author_order is required"),
			validation.Min(1).Error("author_order must be a positive integer"),
		),
	)
}

// SearchField is the restricted set of author search targets.
type SearchField string

const (
	SearchFieldName       SearchField = "name"
	SearchFieldEmail      SearchField = "email"
	SearchFieldEmployeeID SearchField = "employee_id"
)

func (f SearchField) IsValid() bool {
	switch f {
	case SearchFieldName, SearchFieldEmail, SearchFieldEmployeeID:
		return true
	}
	return false
}

// Column returns the underlying column for the search field.
func (f SearchField) Column() string {
	switch f {
	case SearchFieldEmail:
		return "email"
	case SearchFieldEmployeeID:
		return "employee_id"
	default:
		return "author_name"
	}
}

type SearchFilter struct {
	Fragment string
	Field    SearchField
	Page     int
	Limit    int
	SortBy   string
	Order    string
}

// Sentinel errors
var (
	ErrTemplateExists   = apperrors.Conflict("author already registered")
	ErrTemplateNotFound = apperrors.NotFound("author not registered")
	ErrRecordNotFound   = apperrors.NotFound("author record not found")
	ErrAlreadyAssigned  = apperrors.Conflict("author already assigned to this publication")
	ErrHasAssignments   = apperrors.Conflict("remove assignments first")
	ErrInvalidOrder     = apperrors.Validation("author_order must be a positive integer")
	ErrDepartmentAbsent = apperrors.Validation("department does not reference an existing department")
	ErrNotAnAssignment  = apperrors.Validation("record is a template, not an assignment")
)

// ErrOrderTaken names the occupied ordinal in the message.
func ErrOrderTaken(order int) *apperrors.Error {
	return apperrors.Conflict(fmt.Sprintf("author order %d already taken", order))
}
