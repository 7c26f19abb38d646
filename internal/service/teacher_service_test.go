package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaschool/admin-api/internal/models"
	appErrors "github.com/linguaschool/admin-api/pkg/errors"
)

type mockTeacherRepo struct {
	teachers    map[string]*models.Teacher
	dniTaken    bool
	created     *models.Teacher
	createdLang []string
	deleted     []string
}

func (m *mockTeacherRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	out := make([]models.Teacher, 0, len(m.teachers))
	for _, t := range m.teachers {
		out = append(out, *t)
	}
	return out, len(out), nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	t, ok := m.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *t
	return &copied, nil
}

func (m *mockTeacherRepo) ExistsByDNI(ctx context.Context, dni, excludeID string) (bool, error) {
	return m.dniTaken, nil
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher, languageIDs []string) error {
	teacher.ID = "t-new"
	m.created = teacher
	m.createdLang = languageIDs
	if m.teachers == nil {
		m.teachers = map[string]*models.Teacher{}
	}
	m.teachers[teacher.ID] = teacher
	return nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher, languageIDs []string) error {
	m.teachers[teacher.ID] = teacher
	return nil
}

func (m *mockTeacherRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.teachers, id)
	return nil
}

type mockClassCounter struct {
	count int
}

func (m *mockClassCounter) CountByTeacher(ctx context.Context, teacherID string) (int, error) {
	return m.count, nil
}

type mockInvalidator struct {
	calls int
}

func (m *mockInvalidator) InvalidateAll(ctx context.Context) error {
	m.calls++
	return nil
}

func TestTeacherServiceDeleteRefusedWhileReferenced(t *testing.T) {
	repo := &mockTeacherRepo{teachers: map[string]*models.Teacher{
		"t1": {ID: "t1", FirstName: "Ana", LastName: "Ruiz"},
	}}
	svc := NewTeacherService(repo, &mockClassCounter{count: 3}, nil, nil, nil)

	err := svc.Delete(context.Background(), "t1")

	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrReferenced.Code, appErr.Code)
	assert.Empty(t, repo.deleted, "teacher must remain untouched")
}

func TestTeacherServiceDeleteUnreferenced(t *testing.T) {
	repo := &mockTeacherRepo{teachers: map[string]*models.Teacher{
		"t1": {ID: "t1", FirstName: "Ana", LastName: "Ruiz"},
	}}
	inv := &mockInvalidator{}
	svc := NewTeacherService(repo, &mockClassCounter{count: 0}, inv, nil, nil)

	err := svc.Delete(context.Background(), "t1")

	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, repo.deleted)
	assert.Equal(t, 1, inv.calls)
}

func TestTeacherServiceDeleteNotFound(t *testing.T) {
	svc := NewTeacherService(&mockTeacherRepo{}, &mockClassCounter{}, nil, nil, nil)

	err := svc.Delete(context.Background(), "missing")

	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestTeacherServiceCreateRejectsDuplicateDNI(t *testing.T) {
	dni := "12345678A"
	repo := &mockTeacherRepo{dniTaken: true}
	svc := NewTeacherService(repo, &mockClassCounter{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateTeacherRequest{
		FirstName: "Ana",
		LastName:  "Ruiz",
		DNI:       &dni,
	})

	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Nil(t, repo.created)
}

func TestTeacherServiceCreatePassesLanguageLinks(t *testing.T) {
	repo := &mockTeacherRepo{}
	inv := &mockInvalidator{}
	svc := NewTeacherService(repo, &mockClassCounter{}, inv, nil, nil)

	teacher, err := svc.Create(context.Background(), CreateTeacherRequest{
		FirstName:   "  Ana ",
		LastName:    "Ruiz",
		LanguageIDs: []string{"l1", "l2"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Ana", teacher.FirstName)
	assert.Equal(t, []string{"l1", "l2"}, repo.createdLang)
	assert.Equal(t, 1, inv.calls)
}

func TestTeacherServiceCreateValidatesPayload(t *testing.T) {
	svc := NewTeacherService(&mockTeacherRepo{}, &mockClassCounter{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateTeacherRequest{FirstName: "Ana"})

	require.Error(t, err)
	appErr, ok := err.(*appErrors.Error)
	require.True(t, ok)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
