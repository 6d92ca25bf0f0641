package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	deptrepo "pubrepo-backend/internal/domains/department/repository"
	"pubrepo-backend/internal/domains/publication/model"
	"pubrepo-backend/internal/domains/publication/repository"
	"pubrepo-backend/internal/infrastructure/storage"
	"pubrepo-backend/internal/shared/apperrors"
	"pubrepo-backend/internal/shared/query"
	"pubrepo-backend/pkg/logger"
)

// UploadInput is the inbound file from the multipart request.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type ServiceInterface interface {
	Create(ctx context.Context, req model.CreateRequest, file *UploadInput) (*model.Publication, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Publication, error)
	Search(ctx context.Context, filter model.SearchFilter) ([]model.Publication, int64, error)
	Related(ctx context.Context, id uuid.UUID, limit int) ([]model.Publication, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Export(ctx context.Context, filter model.SearchFilter) ([]byte, error)
}

type publicationService struct {
	repo      repository.RepositoryInterface
	deptRepo  deptrepo.RepositoryInterface
	blobs     storage.BlobStore
	tmpDir    string
	maxSizeMB int64
}

func NewPublicationService(
	repo repository.RepositoryInterface,
	deptRepo deptrepo.RepositoryInterface,
	blobs storage.BlobStore,
	tmpDir string,
	maxSizeMB int64,
) ServiceInterface {
	return &publicationService{
		repo:      repo,
		deptRepo:  deptRepo,
		blobs:     blobs,
		tmpDir:    tmpDir,
		maxSizeMB: maxSizeMB,
	}
}

// Create is the one multi-step sequence in the system: stage the file
// locally, upload it, then insert the record. The record exists only if
// the upload returned a URL. On a post-upload failure the staged file is
// removed best-effort and the uploaded blob is left orphaned.
func (s *publicationService) Create(ctx context.Context, req model.CreateRequest, file *UploadInput) (*model.Publication, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if file == nil || file.Reader == nil {
		return nil, model.ErrFileMissing
	}
	if file.Size > s.maxSizeMB*1024*1024 {
		return nil, apperrors.Validation(fmt.Sprintf("file exceeds %d MB limit", s.maxSizeMB))
	}

	departmentID, err := uuid.Parse(req.DepartmentID)
	if err != nil {
		return nil, apperrors.Validation("department must be a valid id")
	}
	exists, err := s.deptRepo.ExistsByID(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrDeptAbsent
	}

	staged, err := s.stage(file)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(staged); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove staged upload file", map[string]interface{}{
				"path":  staged,
				"error": err.Error(),
			})
		}
	}()

	data, err := os.ReadFile(staged)
	if err != nil {
		return nil, apperrors.Internal("failed to read staged file", err)
	}

	key := "publications/" + uuid.NewString() + strings.ToLower(filepath.Ext(file.FileName))
	fileURL, err := s.blobs.Upload(ctx, key, data, file.ContentType)
	if err != nil {
		return nil, apperrors.Upstream("failed to store publication file", err)
	}

	p := &model.Publication{
		Title:           req.Title,
		Abstract:        req.Abstract,
		PublicationDate: req.PublicationDate(),
		ISBN:            strings.ReplaceAll(req.ISBN, " ", ""),
		JournalName:     req.JournalName,
		JournalType:     model.JournalType(req.JournalType),
		FileURL:         fileURL,
		DepartmentID:    departmentID,
		Keywords:        req.NormalizedKeywords(),
	}
	if req.ImpactFactor != "" {
		impact, err := decimal.NewFromString(req.ImpactFactor)
		if err != nil {
			return nil, apperrors.Validation("impact_factor must be numeric")
		}
		p.ImpactFactor = &impact
	}

	return s.repo.Create(ctx, p)
}

// stage copies the upload into the temp directory so failed requests never
// hold the request body open against the blob store.
func (s *publicationService) stage(file *UploadInput) (string, error) {
	tmp, err := os.CreateTemp(s.tmpDir, "upload-*"+strings.ToLower(filepath.Ext(file.FileName)))
	if err != nil {
		return "", apperrors.Internal("failed to stage upload", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file.Reader); err != nil {
		os.Remove(tmp.Name())
		return "", apperrors.Internal("failed to stage upload", err)
	}
	return tmp.Name(), nil
}

func (s *publicationService) GetByID(ctx context.Context, id uuid.UUID) (*model.Publication, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *publicationService) Search(ctx context.Context, filter model.SearchFilter) ([]model.Publication, int64, error) {
	if filter.JournalType != "" && !model.JournalType(filter.JournalType).IsValid() {
		return nil, 0, apperrors.Validation("journal_type must be one of journal, conference, workshop, preprint")
	}
	if filter.Department != "" {
		if _, err := uuid.Parse(filter.Department); err != nil {
			return nil, 0, apperrors.Validation("department must be a valid id")
		}
	}
	filter.Keyword = strings.ToLower(strings.TrimSpace(filter.Keyword))
	return s.repo.Search(ctx, filter)
}

func (s *publicationService) Related(ctx context.Context, id uuid.UUID, limit int) ([]model.Publication, error) {
	// 404 on an unknown anchor rather than an empty related list.
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Related(ctx, id, limit)
}

// Delete removes the record and its assignment rows. The stored blob is
// left orphaned; there is no compensating remote delete.
func (s *publicationService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

var exportHeaders = []string{
	"Title", "ISBN", "Journal", "Type", "Impact Factor",
	"Publication Date", "Co-Authors", "Keywords", "File URL",
}

// Export writes the current search result set to an XLSX workbook.
func (s *publicationService) Export(ctx context.Context, filter model.SearchFilter) ([]byte, error) {
	filter.Page = 1
	filter.Limit = query.MaxLimit

	publications, _, err := s.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Publications"
	f.SetSheetName("Sheet1", sheet)

	for col, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, p := range publications {
		impact := ""
		if p.ImpactFactor != nil {
			impact = p.ImpactFactor.String()
		}
		values := []interface{}{
			p.Title, p.ISBN, p.JournalName, p.JournalType.String(), impact,
			p.PublicationDate.Format("2006-01"), p.CoAuthorCount,
			strings.Join(p.Keywords, ", "), p.FileURL,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.Internal("failed to build export workbook", err)
	}
	return buf.Bytes(), nil
}
