package service

import (
	"context"

	"github.com/google/uuid"

	"pubrepo-backend/internal/domains/department/model"
	"pubrepo-backend/internal/domains/department/repository"
	"pubrepo-backend/internal/shared/apperrors"
)

type ServiceInterface interface {
	Create(ctx context.Context, req model.DepartmentRequest) (*model.Department, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Department, error)
	List(ctx context.Context, filter model.ListFilter) ([]model.Department, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type departmentService struct {
	repo repository.RepositoryInterface
}

func NewDepartmentService(repo repository.RepositoryInterface) ServiceInterface {
	return &departmentService{repo: repo}
}

func (s *departmentService) Create(ctx context.Context, req model.DepartmentRequest) (*model.Department, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	return s.repo.Create(ctx, &model.Department{
		Name:       req.Name,
		Code:       req.Code,
		University: req.University,
	})
}

func (s *departmentService) GetByID(ctx context.Context, id uuid.UUID) (*model.Department, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *departmentService) List(ctx context.Context, filter model.ListFilter) ([]model.Department, int64, error) {
	return s.repo.GetAll(ctx, filter)
}

func (s *departmentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
