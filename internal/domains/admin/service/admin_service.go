package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pubrepo-backend/internal/domains/admin/model"
	"pubrepo-backend/internal/domains/admin/repository"
	authorrepo "pubrepo-backend/internal/domains/author/repository"
	deptrepo "pubrepo-backend/internal/domains/department/repository"
	pubrepo "pubrepo-backend/internal/domains/publication/repository"
	"pubrepo-backend/internal/infrastructure/session"
	"pubrepo-backend/internal/shared/apperrors"
	"pubrepo-backend/internal/shared/utils"
	"pubrepo-backend/pkg/jwt"
)

type ServiceInterface interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.Admin, error)
	// Login verifies credentials and returns the admin together with the
	// signed cookie token for the new session.
	Login(ctx context.Context, req model.LoginRequest) (*model.Admin, string, error)
	Logout(ctx context.Context, sessionID string) error
	Delete(ctx context.Context, id uuid.UUID) error
	Counts(ctx context.Context) (*model.Counts, error)
}

type adminService struct {
	repo       repository.RepositoryInterface
	deptRepo   deptrepo.RepositoryInterface
	authorRepo authorrepo.RepositoryInterface
	pubRepo    pubrepo.RepositoryInterface
	sessions   session.Store
	tokens     *jwt.Manager
	sessionTTL time.Duration
}

func NewAdminService(
	repo repository.RepositoryInterface,
	deptRepo deptrepo.RepositoryInterface,
	authorRepo authorrepo.RepositoryInterface,
	pubRepo pubrepo.RepositoryInterface,
	sessions session.Store,
	tokens *jwt.Manager,
	sessionTTL time.Duration,
) ServiceInterface {
	return &adminService{
		repo:       repo,
		deptRepo:   deptRepo,
		authorRepo: authorRepo,
		pubRepo:    pubRepo,
		sessions:   sessions,
		tokens:     tokens,
		sessionTTL: sessionTTL,
	}
}

func (s *adminService) Register(ctx context.Context, req model.RegisterRequest) (*model.Admin, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	role := model.Role(req.Role)
	if req.Role == "" {
		role = model.RoleAdmin
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.Create(ctx, &model.Admin{
		EmployeeID:   req.EmployeeID,
		Email:        req.Email,
		Fullname:     req.Fullname,
		PasswordHash: hash,
		Role:         role,
	})
}

func (s *adminService) Login(ctx context.Context, req model.LoginRequest) (*model.Admin, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", apperrors.Validation(err.Error())
	}

	admin, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Unknown email and wrong password are indistinguishable to the
		// caller.
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, "", model.ErrBadCredentials
		}
		return nil, "", err
	}
	if !utils.CheckPassword(req.Password, admin.PasswordHash) {
		return nil, "", model.ErrBadCredentials
	}
	if !admin.IsActive {
		return nil, "", model.ErrDeactivated
	}

	sess, err := s.sessions.Create(ctx, admin.ID, admin.Email, admin.Role.String())
	if err != nil {
		return nil, "", apperrors.Upstream("failed to create session", err)
	}

	token, err := s.tokens.GenerateSessionToken(sess.ID, s.sessionTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return admin, token, nil
}

func (s *adminService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.Auth("no active session")
	}
	return s.sessions.Destroy(ctx, sessionID)
}

// Delete deactivates an admin account. The super-admin tier is protected.
func (s *adminService) Delete(ctx context.Context, id uuid.UUID) error {
	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if admin.Role == model.RoleSuperAdmin {
		return model.ErrProtected
	}
	return s.repo.Deactivate(ctx, id)
}

func (s *adminService) Counts(ctx context.Context) (*model.Counts, error) {
	departments, err := s.deptRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	authors, err := s.authorRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	publications, err := s.pubRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	admins, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &model.Counts{
		Departments:  departments,
		Authors:      authors,
		Publications: publications,
		Admins:       admins,
	}, nil
}
