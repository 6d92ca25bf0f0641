package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deptmodel "pubrepo-backend/internal/domains/department/model"
	"pubrepo-backend/internal/domains/publication/model"
	"pubrepo-backend/internal/shared/apperrors"
)

type fakePublicationRepo struct {
	byISBN  map[string]*model.Publication
	created []*model.Publication
}

func newFakePublicationRepo() *fakePublicationRepo {
	return &fakePublicationRepo{byISBN: make(map[string]*model.Publication)}
}

func (f *fakePublicationRepo) Create(_ context.Context, p *model.Publication) (*model.Publication, error) {
	if _, ok := f.byISBN[p.ISBN]; ok {
		return nil, model.ErrDuplicateISBN
	}
	stored := *p
	stored.ID = uuid.New()
	stored.IsActive = true
	f.byISBN[stored.ISBN] = &stored
	f.created = append(f.created, &stored)
	return &stored, nil
}

func (f *fakePublicationRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Publication, error) {
	for _, p := range f.byISBN {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakePublicationRepo) Search(_ context.Context, _ model.SearchFilter) ([]model.Publication, int64, error) {
	var out []model.Publication
	for _, p := range f.byISBN {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakePublicationRepo) Related(_ context.Context, _ uuid.UUID, _ int) ([]model.Publication, error) {
	return nil, nil
}

func (f *fakePublicationRepo) Delete(_ context.Context, id uuid.UUID) error {
	for isbn, p := range f.byISBN {
		if p.ID == id {
			delete(f.byISBN, isbn)
			return nil
		}
	}
	return model.ErrNotFound
}

func (f *fakePublicationRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.byISBN)), nil
}

func (f *fakePublicationRepo) ListIDs(_ context.Context) ([]uuid.UUID, error) { return nil, nil }

func (f *fakePublicationRepo) RecountCoAuthors(_ context.Context, _ uuid.UUID) (int, error) {
	return 0, nil
}

type fakeDeptRepo struct {
	existing map[uuid.UUID]bool
}

func (f *fakeDeptRepo) Create(_ context.Context, d *deptmodel.Department) (*deptmodel.Department, error) {
	return d, nil
}
func (f *fakeDeptRepo) GetByID(_ context.Context, _ uuid.UUID) (*deptmodel.Department, error) {
	return nil, deptmodel.ErrNotFound
}
func (f *fakeDeptRepo) GetAll(_ context.Context, _ deptmodel.ListFilter) ([]deptmodel.Department, int64, error) {
	return nil, 0, nil
}
func (f *fakeDeptRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }
func (f *fakeDeptRepo) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	return f.existing[id], nil
}
func (f *fakeDeptRepo) Count(_ context.Context) (int64, error) { return 0, nil }

type fakeBlobStore struct {
	fail    bool
	uploads []string
}

func (f *fakeBlobStore) Upload(_ context.Context, key string, _ []byte, _ string) (string, error) {
	if f.fail {
		return "", errors.New("connection refused")
	}
	f.uploads = append(f.uploads, key)
	return "http://blobs.local/pubrepo/" + key, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, _ string) error { return nil }

func setup(t *testing.T) (ServiceInterface, *fakePublicationRepo, *fakeBlobStore, uuid.UUID) {
	t.Helper()
	repo := newFakePublicationRepo()
	deptID := uuid.New()
	depts := &fakeDeptRepo{existing: map[uuid.UUID]bool{deptID: true}}
	blobs := &fakeBlobStore{}
	svc := NewPublicationService(repo, depts, blobs, t.TempDir(), 25)
	return svc, repo, blobs, deptID
}

func validRequest(deptID uuid.UUID) model.CreateRequest {
	return model.CreateRequest{
		Title:        "Deep Learning for Vietnamese NLP",
		Abstract:     "A study of transformer models.",
		Month:        6,
		Year:         2023,
		ISBN:         "9780134190440",
		JournalName:  "Journal of AI Research",
		JournalType:  "journal",
		ImpactFactor: "3.251",
		DepartmentID: deptID.String(),
		Keywords:     "NLP, Deep Learning , transformers",
	}
}

func pdfUpload() *UploadInput {
	return &UploadInput{
		FileName:    "paper.pdf",
		ContentType: "application/pdf",
		Size:        1024,
		Reader:      strings.NewReader("%PDF-1.7 content"),
	}
}

func TestCreate_RecordOnlyAfterUpload(t *testing.T) {
	svc, repo, blobs, deptID := setup(t)

	created, err := svc.Create(context.Background(), validRequest(deptID), pdfUpload())
	require.NoError(t, err)

	require.Len(t, blobs.uploads, 1)
	assert.True(t, strings.HasPrefix(blobs.uploads[0], "publications/"))
	assert.True(t, strings.HasSuffix(blobs.uploads[0], ".pdf"))
	assert.Equal(t, "http://blobs.local/pubrepo/"+blobs.uploads[0], created.FileURL)
	assert.Len(t, repo.created, 1)
}

func TestCreate_UploadFailureIsUpstream(t *testing.T) {
	svc, repo, blobs, deptID := setup(t)
	blobs.fail = true

	_, err := svc.Create(context.Background(), validRequest(deptID), pdfUpload())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUpstream, apperrors.KindOf(err))
	assert.Empty(t, repo.created, "no record without a stored file")
}

func TestCreate_MissingFile(t *testing.T) {
	svc, _, blobs, deptID := setup(t)

	_, err := svc.Create(context.Background(), validRequest(deptID), nil)
	assert.ErrorIs(t, err, model.ErrFileMissing)
	assert.Empty(t, blobs.uploads)
}

func TestCreate_NormalizesMetadata(t *testing.T) {
	svc, _, _, deptID := setup(t)

	created, err := svc.Create(context.Background(), validRequest(deptID), pdfUpload())
	require.NoError(t, err)

	assert.Equal(t, []string{"nlp", "deep learning", "transformers"}, []string(created.Keywords))
	assert.Equal(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), created.PublicationDate)
	require.NotNil(t, created.ImpactFactor)
	assert.Equal(t, "3.251", created.ImpactFactor.String())
}

func TestCreate_DuplicateISBN(t *testing.T) {
	svc, _, _, deptID := setup(t)

	_, err := svc.Create(context.Background(), validRequest(deptID), pdfUpload())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validRequest(deptID), pdfUpload())
	assert.ErrorIs(t, err, model.ErrDuplicateISBN)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestCreate_RejectsBadSerialNumber(t *testing.T) {
	svc, _, blobs, deptID := setup(t)

	req := validRequest(deptID)
	req.ISBN = "not-a-number"
	_, err := svc.Create(context.Background(), req, pdfUpload())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Empty(t, blobs.uploads, "validation failures never reach the blob store")
}

func TestCreate_AcceptsISSN(t *testing.T) {
	svc, _, _, deptID := setup(t)

	req := validRequest(deptID)
	req.ISBN = "2049-3630"
	_, err := svc.Create(context.Background(), req, pdfUpload())
	require.NoError(t, err)
}

func TestCreate_UnknownDepartment(t *testing.T) {
	svc, _, _, _ := setup(t)

	req := validRequest(uuid.New())
	_, err := svc.Create(context.Background(), req, pdfUpload())
	assert.ErrorIs(t, err, model.ErrDeptAbsent)
}

func TestSearch_RejectsBadJournalType(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, _, err := svc.Search(context.Background(), model.SearchFilter{JournalType: "magazine"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestExport_ProducesWorkbook(t *testing.T) {
	svc, _, _, deptID := setup(t)

	_, err := svc.Create(context.Background(), validRequest(deptID), pdfUpload())
	require.NoError(t, err)

	data, err := svc.Export(context.Background(), model.SearchFilter{})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// xlsx files are zip archives
	assert.Equal(t, "PK", string(data[:2]))
}
