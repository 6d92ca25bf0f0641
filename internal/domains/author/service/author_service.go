package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pubrepo-backend/internal/domains/author/model"
	"pubrepo-backend/internal/domains/author/repository"
	deptrepo "pubrepo-backend/internal/domains/department/repository"
	"pubrepo-backend/internal/shared/apperrors"
	"pubrepo-backend/internal/shared/query"
	"pubrepo-backend/internal/shared/utils"
)

type ServiceInterface interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.Author, error)
	AssignToPublication(ctx context.Context, req model.AssignRequest) (*model.Author, error)
	RemoveAssignment(ctx context.Context, id uuid.UUID) error
	DeleteUnassigned(ctx context.Context, employeeID string) error

	GetUnassigned(ctx context.Context, page query.Page) ([]model.Author, int64, error)
	PublicationsOfAuthor(ctx context.Context, employeeID string) ([]model.Author, error)
	CoAuthors(ctx context.Context, publicationID uuid.UUID, excluding *uuid.UUID) ([]model.Author, error)
	Search(ctx context.Context, filter model.SearchFilter) ([]model.Author, int64, error)
}

type authorService struct {
	repo     repository.RepositoryInterface
	deptRepo deptrepo.RepositoryInterface
}

func NewAuthorService(repo repository.RepositoryInterface, deptRepo deptrepo.RepositoryInterface) ServiceInterface {
	return &authorService{repo: repo, deptRepo: deptRepo}
}

// Register creates the reusable identity template for an employee. One
// active template per employee_id.
func (s *authorService) Register(ctx context.Context, req model.RegisterRequest) (*model.Author, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	departmentID, err := s.resolveDepartment(ctx, req.DepartmentID)
	if err != nil {
		return nil, err
	}

	author := &model.Author{
		EmployeeID:   req.EmployeeID,
		AuthorName:   req.AuthorName,
		Email:        req.Email,
		DepartmentID: departmentID,
	}
	if req.Password != "" {
		hashed, err := utils.HashPassword(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		author.Password = hashed
	}

	return s.repo.CreateTemplate(ctx, author)
}

// AssignToPublication duplicates the employee's template into a new row
// bound to the publication at the requested ordinal slot. The template row
// itself is never mutated, so the same employee can appear on any number
// of publications.
func (s *authorService) AssignToPublication(ctx context.Context, req model.AssignRequest) (*model.Author, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	publicationID, err := uuid.Parse(req.PublicationID)
	if err != nil {
		return nil, apperrors.Validation("publication_id must be a valid id")
	}

	template, err := s.repo.GetTemplateByEmployeeID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	// Advisory pre-checks for friendly errors under no contention; the
	// unique indexes settle races.
	taken, err := s.repo.HasAssignment(ctx, publicationID, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, model.ErrAlreadyAssigned
	}
	occupied, err := s.repo.OrderTaken(ctx, publicationID, req.AuthorOrder)
	if err != nil {
		return nil, err
	}
	if occupied {
		return nil, model.ErrOrderTaken(req.AuthorOrder)
	}

	order := req.AuthorOrder
	assignment := &model.Author{
		EmployeeID:    template.EmployeeID,
		AuthorName:    template.AuthorName,
		Email:         template.Email,
		Password:      template.Password,
		DepartmentID:  template.DepartmentID,
		PublicationID: &publicationID,
		AuthorOrder:   &order,
	}
	if req.Overrides != nil {
		if req.Overrides.AuthorName != nil {
			assignment.AuthorName = *req.Overrides.AuthorName
		}
		if req.Overrides.Email != nil {
			assignment.Email = *req.Overrides.Email
		}
		if req.Overrides.DepartmentID != nil {
			departmentID, err := s.resolveDepartment(ctx, *req.Overrides.DepartmentID)
			if err != nil {
				return nil, err
			}
			assignment.DepartmentID = departmentID
		}
	}

	return s.repo.CreateAssignment(ctx, assignment)
}

// RemoveAssignment deletes one publication-bound record. Vacated ordinal
// slots are left as gaps; remaining assignments keep their order.
func (s *authorService) RemoveAssignment(ctx context.Context, id uuid.UUID) error {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if record.IsTemplate() {
		return model.ErrNotAnAssignment
	}
	return s.repo.DeleteAssignment(ctx, id)
}

// DeleteUnassigned removes an employee's template, refusing while any of
// their assignments still exist.
func (s *authorService) DeleteUnassigned(ctx context.Context, employeeID string) error {
	if employeeID == "" {
		return apperrors.Validation("employee_id is required")
	}
	assignments, err := s.repo.CountAssignmentsByEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	if assignments > 0 {
		return model.ErrHasAssignments
	}
	return s.repo.DeleteTemplate(ctx, employeeID)
}

func (s *authorService) GetUnassigned(ctx context.Context, page query.Page) ([]model.Author, int64, error) {
	return s.repo.GetUnassigned(ctx, page)
}

func (s *authorService) PublicationsOfAuthor(ctx context.Context, employeeID string) ([]model.Author, error) {
	if employeeID == "" {
		return nil, apperrors.Validation("employee_id is required")
	}
	return s.repo.GetAssignmentsByEmployee(ctx, employeeID)
}

func (s *authorService) CoAuthors(ctx context.Context, publicationID uuid.UUID, excluding *uuid.UUID) ([]model.Author, error) {
	return s.repo.GetCoAuthors(ctx, publicationID, excluding)
}

func (s *authorService) Search(ctx context.Context, filter model.SearchFilter) ([]model.Author, int64, error) {
	if filter.Field != "" && !filter.Field.IsValid() {
		return nil, 0, apperrors.Validation("field must be one of name, email, employee_id")
	}
	return s.repo.Search(ctx, filter)
}

func (s *authorService) resolveDepartment(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.Validation("department must be a valid id")
	}
	exists, err := s.deptRepo.ExistsByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if !exists {
		return uuid.Nil, model.ErrDepartmentAbsent
	}
	return id, nil
}
