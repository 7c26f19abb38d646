package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaschool/admin-api/internal/models"
	appErrors "github.com/linguaschool/admin-api/pkg/errors"
)

type mockBlockRepo struct {
	blocks        map[string]*models.UnavailabilityBlock
	created       *models.UnavailabilityBlock
	deletedByID   []string
	deletedByDate int
}

func (m *mockBlockRepo) List(ctx context.Context, teacherID string) ([]models.UnavailabilityBlock, error) {
	out := []models.UnavailabilityBlock{}
	for _, b := range m.blocks {
		if teacherID == "" || b.TeacherID == teacherID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockBlockRepo) FindByID(ctx context.Context, id string) (*models.UnavailabilityBlock, error) {
	b, ok := m.blocks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *b
	return &copied, nil
}

func (m *mockBlockRepo) Create(ctx context.Context, block *models.UnavailabilityBlock) error {
	block.ID = "u-new"
	m.created = block
	if m.blocks == nil {
		m.blocks = map[string]*models.UnavailabilityBlock{}
	}
	m.blocks[block.ID] = block
	return nil
}

func (m *mockBlockRepo) Delete(ctx context.Context, id string) error {
	m.deletedByID = append(m.deletedByID, id)
	delete(m.blocks, id)
	return nil
}

func (m *mockBlockRepo) DeleteByTeacherAndDate(ctx context.Context, teacherID string, date time.Time) (int, error) {
	removed := 0
	for id, b := range m.blocks {
		if b.TeacherID == teacherID && b.Date.Equal(date) {
			delete(m.blocks, id)
			removed++
		}
	}
	m.deletedByDate += removed
	return removed, nil
}

func newUnavailabilityService(repo *mockBlockRepo, inv *mockInvalidator) *UnavailabilityService {
	teachers := &mockTeacherFinder{known: map[string]bool{"t1": true}}
	var reconcile snapshotInvalidator
	if inv != nil {
		reconcile = inv
	}
	return NewUnavailabilityService(repo, teachers, reconcile, nil, nil)
}

func TestUnavailabilityCreateMarksWholeDay(t *testing.T) {
	repo := &mockBlockRepo{}
	inv := &mockInvalidator{}
	svc := newUnavailabilityService(repo, inv)

	reason := "  medical leave "
	block, err := svc.Create(context.Background(), CreateUnavailabilityRequest{
		TeacherID: "t1",
		Date:      "2025-06-10",
		Reason:    &reason,
	})

	require.NoError(t, err)
	assert.True(t, block.Unavailable)
	require.NotNil(t, block.Reason)
	assert.Equal(t, "medical leave", *block.Reason)
	assert.Equal(t, 1, inv.calls)
}

func TestUnavailabilityCreateUnknownTeacher(t *testing.T) {
	svc := newUnavailabilityService(&mockBlockRepo{}, nil)

	_, err := svc.Create(context.Background(), CreateUnavailabilityRequest{TeacherID: "ghost", Date: "2025-06-10"})

	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestUnavailabilityDeleteByTeacherAndDate(t *testing.T) {
	date := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	repo := &mockBlockRepo{blocks: map[string]*models.UnavailabilityBlock{
		"u1": {ID: "u1", TeacherID: "t1", Date: date, Unavailable: true},
	}}
	inv := &mockInvalidator{}
	svc := newUnavailabilityService(repo, inv)

	require.NoError(t, svc.DeleteByTeacherAndDate(context.Background(), "t1", "2025-06-10"))
	assert.Equal(t, 1, repo.deletedByDate)
	assert.Equal(t, 1, inv.calls)
}

func TestUnavailabilityDeleteByTeacherAndDateMissing(t *testing.T) {
	svc := newUnavailabilityService(&mockBlockRepo{blocks: map[string]*models.UnavailabilityBlock{}}, nil)

	err := svc.DeleteByTeacherAndDate(context.Background(), "t1", "2025-06-10")

	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestUnavailabilityDeleteByID(t *testing.T) {
	date := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	repo := &mockBlockRepo{blocks: map[string]*models.UnavailabilityBlock{
		"u1": {ID: "u1", TeacherID: "t1", Date: date, Unavailable: true},
	}}
	svc := newUnavailabilityService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), "u1"))
	assert.Equal(t, []string{"u1"}, repo.deletedByID)
}
