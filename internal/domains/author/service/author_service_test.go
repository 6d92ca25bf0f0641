package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubrepo-backend/internal/domains/author/model"
	deptmodel "pubrepo-backend/internal/domains/department/model"
	"pubrepo-backend/internal/shared/apperrors"
	"pubrepo-backend/internal/shared/query"
)

// fakeAuthorRepo keeps templates and assignments in memory and enforces
// the same uniqueness rules the database indexes do.
type fakeAuthorRepo struct {
	records map[uuid.UUID]*model.Author
	counts  map[uuid.UUID]int
}

func newFakeAuthorRepo() *fakeAuthorRepo {
	return &fakeAuthorRepo{
		records: make(map[uuid.UUID]*model.Author),
		counts:  make(map[uuid.UUID]int),
	}
}

func (f *fakeAuthorRepo) CreateTemplate(_ context.Context, a *model.Author) (*model.Author, error) {
	for _, r := range f.records {
		if r.IsTemplate() && r.EmployeeID == a.EmployeeID {
			return nil, model.ErrTemplateExists
		}
	}
	stored := *a
	stored.ID = uuid.New()
	stored.IsActive = true
	f.records[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeAuthorRepo) GetTemplateByEmployeeID(_ context.Context, employeeID string) (*model.Author, error) {
	for _, r := range f.records {
		if r.IsTemplate() && r.EmployeeID == employeeID {
			return r, nil
		}
	}
	return nil, model.ErrTemplateNotFound
}

func (f *fakeAuthorRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Author, error) {
	if r, ok := f.records[id]; ok {
		return r, nil
	}
	return nil, model.ErrRecordNotFound
}

func (f *fakeAuthorRepo) CreateAssignment(_ context.Context, a *model.Author) (*model.Author, error) {
	for _, r := range f.records {
		if r.PublicationID == nil || *r.PublicationID != *a.PublicationID {
			continue
		}
		if r.EmployeeID == a.EmployeeID {
			return nil, model.ErrAlreadyAssigned
		}
		if *r.AuthorOrder == *a.AuthorOrder {
			return nil, model.ErrOrderTaken(*a.AuthorOrder)
		}
	}
	stored := *a
	stored.ID = uuid.New()
	stored.IsActive = true
	f.records[stored.ID] = &stored
	f.counts[*a.PublicationID]++
	return &stored, nil
}

func (f *fakeAuthorRepo) DeleteAssignment(_ context.Context, id uuid.UUID) error {
	r, ok := f.records[id]
	if !ok || r.PublicationID == nil {
		return model.ErrRecordNotFound
	}
	f.counts[*r.PublicationID]--
	delete(f.records, id)
	return nil
}

func (f *fakeAuthorRepo) DeleteTemplate(_ context.Context, employeeID string) error {
	for id, r := range f.records {
		if r.IsTemplate() && r.EmployeeID == employeeID {
			delete(f.records, id)
			return nil
		}
	}
	return model.ErrTemplateNotFound
}

func (f *fakeAuthorRepo) CountAssignmentsByEmployee(_ context.Context, employeeID string) (int64, error) {
	var n int64
	for _, r := range f.records {
		if !r.IsTemplate() && r.EmployeeID == employeeID {
			n++
		}
	}
	return n, nil
}

func (f *fakeAuthorRepo) HasAssignment(_ context.Context, publicationID uuid.UUID, employeeID string) (bool, error) {
	for _, r := range f.records {
		if r.PublicationID != nil && *r.PublicationID == publicationID && r.EmployeeID == employeeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAuthorRepo) OrderTaken(_ context.Context, publicationID uuid.UUID, order int) (bool, error) {
	for _, r := range f.records {
		if r.PublicationID != nil && *r.PublicationID == publicationID && *r.AuthorOrder == order {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAuthorRepo) GetCoAuthors(_ context.Context, publicationID uuid.UUID, excluding *uuid.UUID) ([]model.Author, error) {
	var out []model.Author
	for _, r := range f.records {
		if r.PublicationID == nil || *r.PublicationID != publicationID {
			continue
		}
		if excluding != nil && r.ID == *excluding {
			continue
		}
		out = append(out, *r)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if *out[j].AuthorOrder < *out[i].AuthorOrder {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeAuthorRepo) GetUnassigned(_ context.Context, page query.Page) ([]model.Author, int64, error) {
	var out []model.Author
	for _, r := range f.records {
		if r.IsTemplate() {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeAuthorRepo) GetAssignmentsByEmployee(_ context.Context, employeeID string) ([]model.Author, error) {
	var out []model.Author
	for _, r := range f.records {
		if !r.IsTemplate() && r.EmployeeID == employeeID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeAuthorRepo) Search(_ context.Context, filter model.SearchFilter) ([]model.Author, int64, error) {
	var out []model.Author
	for _, r := range f.records {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAuthorRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.records)), nil
}

type fakeDeptRepo struct {
	existing map[uuid.UUID]bool
}

func (f *fakeDeptRepo) Create(_ context.Context, d *deptmodel.Department) (*deptmodel.Department, error) {
	return d, nil
}
func (f *fakeDeptRepo) GetByID(_ context.Context, id uuid.UUID) (*deptmodel.Department, error) {
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

func setup(t *testing.T) (ServiceInterface, *fakeAuthorRepo, uuid.UUID) {
	t.Helper()
	repo := newFakeAuthorRepo()
	deptID := uuid.New()
	depts := &fakeDeptRepo{existing: map[uuid.UUID]bool{deptID: true}}
	return NewAuthorService(repo, depts), repo, deptID
}

func registerTemplate(t *testing.T, svc ServiceInterface, employeeID string, deptID uuid.UUID) *model.Author {
	t.Helper()
	a, err := svc.Register(context.Background(), model.RegisterRequest{
		EmployeeID:   employeeID,
		AuthorName:   "Nguyen Van A",
		Email:        "a@univ.edu",
		DepartmentID: deptID.String(),
	})
	require.NoError(t, err)
	return a
}

func TestRegister_UnknownDepartment(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		EmployeeID:   "EMP001",
		AuthorName:   "Nguyen Van A",
		DepartmentID: uuid.NewString(),
	})
	assert.ErrorIs(t, err, model.ErrDepartmentAbsent)
}

func TestRegister_Duplicate(t *testing.T) {
	svc, _, deptID := setup(t)
	registerTemplate(t, svc, "EMP001", deptID)

	_, err := svc.Register(context.Background(), model.RegisterRequest{
		EmployeeID:   "EMP001",
		AuthorName:   "Nguyen Van A",
		DepartmentID: deptID.String(),
	})
	assert.ErrorIs(t, err, model.ErrTemplateExists)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestAssign_CopiesTemplateFields(t *testing.T) {
	svc, repo, deptID := setup(t)
	template := registerTemplate(t, svc, "EMP001", deptID)
	pubID := uuid.New()

	got, err := svc.AssignToPublication(context.Background(), model.AssignRequest{
		EmployeeID:    "EMP001",
		PublicationID: pubID.String(),
		AuthorOrder:   1,
	})
	require.NoError(t, err)

	assert.NotEqual(t, template.ID, got.ID)
	assert.Equal(t, template.AuthorName, got.AuthorName)
	assert.Equal(t, template.Email, got.Email)
	assert.Equal(t, template.DepartmentID, got.DepartmentID)
	require.NotNil(t, got.PublicationID)
	assert.Equal(t, pubID, *got.PublicationID)
	assert.True(t, got.IsPrimary())

	// The template row is untouched.
	kept, err := repo.GetTemplateByEmployeeID(context.Background(), "EMP001")
	require.NoError(t, err)
	assert.Nil(t, kept.PublicationID)
}

func TestAssign_Overrides(t *testing.T) {
	svc, _, deptID := setup(t)
	registerTemplate(t, svc, "EMP001", deptID)

	name := "N. V. A."
	got, err := svc.AssignToPublication(context.Background(), model.AssignRequest{
		EmployeeID:    "EMP001",
		PublicationID: uuid.NewString(),
		AuthorOrder:   2,
		Overrides:     &model.AssignOverrides{AuthorName: &name},
	})
	require.NoError(t, err)
	assert.Equal(t, "N. V. A.", got.AuthorName)
	assert.Equal(t, "a@univ.edu", got.Email)
}

func TestAssign_DuplicateEmployeeOnPublication(t *testing.T) {
	svc, repo, deptID := setup(t)
	registerTemplate(t, svc, "EMP001", deptID)
	pubID := uuid.New()

	_, err := svc.AssignToPublication(context.Background(), model.AssignRequest{
		EmployeeID: "EMP001", PublicationID: pubID.String(), AuthorOrder: 1,
	})
	require.NoError(t, err)

	_, err = svc.AssignToPublication(context.Background(), model.AssignRequest{
		EmployeeID: "EMP001", PublicationID: pubID.String(), AuthorOrder: 2,
	})
	assert.ErrorIs(t, err, model.ErrAlreadyAssigned)
	assert.Equal(t, 1, repo.counts[pubID])
}

func TestAssign_OrderTaken(t *testing.T) {
	svc, repo, deptID := setup(t)
	registerTemplate(t, svc, "EMP001", deptID)
	registerTemplate(t, svc, "EMP002", deptID)
	pubID := uuid.New()

	_, err := svc.AssignToPublication(context.Background(), model.AssignRequest{
		EmployeeID: "EMP001", PublicationID: pubID.String(), AuthorOrder: 1,
	})
	require.NoError(t, err)

	_, err = svc.AssignToPublication(context.Background(), model.AssignRequest{
		EmployeeID: "EMP002", PublicationID: pubID.String(), AuthorOrder: 1,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "author order 1")
	assert.Equal(t, 1, repo.counts[pubID])
}

func TestAssign_NoTemplate(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.AssignToPublication(context.Background(), model.AssignRequest{
		EmployeeID: "EMP404", PublicationID: uuid.NewString(), AuthorOrder: 1,
	})
	assert.ErrorIs(t, err, model.ErrTemplateNotFound)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestRemoveAssignment_LeavesOrdinalGap(t *testing.T) {
	svc, _, deptID := setup(t)
	registerTemplate(t, svc, "EMP001", deptID)
	registerTemplate(t, svc, "EMP002", deptID)
	registerTemplate(t, svc, "EMP003", deptID)
	pubID := uuid.New()

	var ids []uuid.UUID
	for i, emp := range []string{"EMP001", "EMP002", "EMP003"} {
		a, err := svc.AssignToPublication(context.Background(), model.AssignRequest{
			EmployeeID: emp, PublicationID: pubID.String(), AuthorOrder: i + 1,
		})
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}

	require.NoError(t, svc.RemoveAssignment(context.Background(), ids[1]))

	remaining, err := svc.CoAuthors(context.Background(), pubID, nil)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, 1, *remaining[0].AuthorOrder)
	assert.Equal(t, 3, *remaining[1].AuthorOrder)
}

func TestRemoveAssignment_RejectsTemplate(t *testing.T) {
	svc, _, deptID := setup(t)
	template := registerTemplate(t, svc, "EMP001", deptID)

	err := svc.RemoveAssignment(context.Background(), template.ID)
	assert.ErrorIs(t, err, model.ErrNotAnAssignment)
}

func TestDeleteUnassigned_GuardedByAssignments(t *testing.T) {
	svc, _, deptID := setup(t)
	registerTemplate(t, svc, "EMP001", deptID)

	a, err := svc.AssignToPublication(context.Background(), model.AssignRequest{
		EmployeeID: "EMP001", PublicationID: uuid.NewString(), AuthorOrder: 1,
	})
	require.NoError(t, err)

	err = svc.DeleteUnassigned(context.Background(), "EMP001")
	assert.ErrorIs(t, err, model.ErrHasAssignments)

	require.NoError(t, svc.RemoveAssignment(context.Background(), a.ID))
	require.NoError(t, svc.DeleteUnassigned(context.Background(), "EMP001"))

	_, err = svc.PublicationsOfAuthor(context.Background(), "EMP001")
	require.NoError(t, err)
}

func TestSearch_RejectsUnknownField(t *testing.T) {
	svc, _, _ := setup(t)

	_, _, err := svc.Search(context.Background(), model.SearchFilter{Field: "password"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCoAuthors_OrderedByOrdinal(t *testing.T) {
	svc, _, deptID := setup(t)
	registerTemplate(t, svc, "EMP001", deptID)
	registerTemplate(t, svc, "EMP002", deptID)
	pubID := uuid.New()

	_, err := svc.AssignToPublication(context.Background(), model.AssignRequest{
		EmployeeID: "EMP002", PublicationID: pubID.String(), AuthorOrder: 5,
	})
	require.NoError(t, err)
	first, err := svc.AssignToPublication(context.Background(), model.AssignRequest{
		EmployeeID: "EMP001", PublicationID: pubID.String(), AuthorOrder: 2,
	})
	require.NoError(t, err)

	all, err := svc.CoAuthors(context.Background(), pubID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "EMP001", all[0].EmployeeID)

	others, err := svc.CoAuthors(context.Background(), pubID, &first.ID)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "EMP002", others[0].EmployeeID)
}
