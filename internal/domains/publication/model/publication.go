package model

import (
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"pubrepo-backend/internal/shared/apperrors"
)

// JournalType classifies the publication venue.
type JournalType string

const (
	JournalTypeJournal    JournalType = "journal"
	JournalTypeConference JournalType = "conference"
	JournalTypeWorkshop   JournalType = "workshop"
	JournalTypePreprint   JournalType = "preprint"
)

func (t JournalType) IsValid() bool {
	switch t {
	case JournalTypeJournal, JournalTypeConference, JournalTypeWorkshop, JournalTypePreprint:
		return true
	}
	return false
}

func (t JournalType) String() string {
	return string(t)
}

// Publication is the stored record. FileURL is set only after the blob
// upload succeeds; CoAuthorCount is derived from assignment records and
// never accepted from callers.
type Publication struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	Title           string           `json:"title" db:"title"`
	Abstract        string           `json:"abstract" db:"abstract"`
	PublicationDate time.Time        `json:"publication_date" db:"publication_date"`
	ISBN            string           `json:"isbn" db:"isbn"`
	JournalName     string           `json:"journal_name" db:"journal_name"`
	JournalType     JournalType      `json:"journal_type" db:"journal_type"`
	ImpactFactor    *decimal.Decimal `json:"impact_factor" db:"impact_factor"`
	FileURL         string           `json:"file_url" db:"file_url"`
	DepartmentID    uuid.UUID        `json:"department_id" db:"department_id"`
	CoAuthorCount   int              `json:"co_author_count" db:"co_author_count"`
	Keywords        pq.StringArray   `json:"keywords" db:"keywords"`
	IsActive        bool             `json:"is_active" db:"is_active"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`
}

// CreateRequest carries the multipart form fields; the file itself is
// handled separately by the handler.
type CreateRequest struct {
	Title        string
	Abstract     string
	Month        int
	Year         int
	ISBN         string
	JournalName  string
	JournalType  string
	ImpactFactor string
	DepartmentID string
	Keywords     string
}

var issnPattern = regexp.MustCompile(`^\d{4}-?\d{3}[\dxX]$`)

// validISSN checks the ISSN mod-11 checksum (X = 10 in the check digit).
func validISSN(value string) bool {
	if !issnPattern.MatchString(value) {
		return false
	}
	digits := strings.ReplaceAll(value, "-", "")
	sum := 0
	for i := 0; i < 7; i++ {
		sum += int(digits[i]-'0') * (8 - i)
	}
	check := digits[7]
	checkVal := 0
	if check == 'X' || check == 'x' {
		checkVal = 10
	} else {
		checkVal = int(check - '0')
	}
	return (sum+checkVal)%11 == 0
}

// serialNumber accepts either a valid ISBN or a valid ISSN.
func serialNumber(value any) error {
	s, _ := value.(string)
	if validISSN(s) {
		return nil
	}
	return is.ISBN.Validate(s)
}

func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.Length(2, 300),
		),
		validation.Field(&r.Abstract, validation.Length(0, 5000)),
		validation.Field(&r.Month,
			validation.Required.Error("month is required"),
			validation.Min(1).Error("month must be between 1 and 12"),
			validation.Max(12).Error("month must be between 1 and 12"),
		),
		validation.Field(&r.Year,
			validation.Required.Error("year is required"),
			validation.Min(1900).Error("year must be 1900 or later"),
			validation.Max(2100).Error("year must be 2100 or earlier"),
		),
		validation.Field(&r.ISBN,
			validation.Required.Error("isbn is required"),
			validation.By(serialNumber),
		),
		validation.Field(&r.JournalType,
			validation.Required.Error("journal_type is required"),
			validation.In(
				string(JournalTypeJournal), string(JournalTypeConference),
				string(JournalTypeWorkshop), string(JournalTypePreprint),
			).Error("journal_type must be one of journal, conference, workshop, preprint"),
		),
		validation.Field(&r.ImpactFactor,
			validation.When(r.ImpactFactor != "", is.Float.Error("impact_factor must be numeric")),
		),
		validation.Field(&r.DepartmentID,
			validation.Required.Error("department is required"),
			is.UUID.Error("department must be a valid id"),
		),
	)
}

// NormalizedKeywords splits the comma-separated keyword field, trims and
// lowercases each entry, and drops empties.
func (r CreateRequest) NormalizedKeywords() pq.StringArray {
	if r.Keywords == "" {
		return pq.StringArray{}
	}
	parts := strings.Split(r.Keywords, ",")
	out := make(pq.StringArray, 0, len(parts))
	for _, p := range parts {
		kw := strings.ToLower(strings.TrimSpace(p))
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// PublicationDate resolves the month+year form fields to the first of the
// month, UTC.
func (r CreateRequest) PublicationDate() time.Time {
	return time.Date(r.Year, time.Month(r.Month), 1, 0, 0, 0, 0, time.UTC)
}

// SearchFilter is the composable advanced-search input. Zero values mean
// "no filter"; Query engages relevance ranking, Author matches any
// assignment record of the publication.
type SearchFilter struct {
	Query       string
	Author      string
	Year        *int
	YearFrom    *int
	YearTo      *int
	JournalType string
	Department  string
	Keyword     string
	Page        int
	Limit       int
	SortBy      string
	Order       string
}

var (
	ErrNotFound      = apperrors.NotFound("publication not found")
	ErrDuplicateISBN = apperrors.Conflict("publication with this isbn already exists")
	ErrFileMissing   = apperrors.Validation("publication file is required")
	ErrDeptAbsent    = apperrors.Validation("department does not reference an existing department")
)
