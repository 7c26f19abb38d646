package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/linguaschool/admin-api/internal/models"
	appErrors "github.com/linguaschool/admin-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByDNI(ctx context.Context, dni, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher, languageIDs []string) error
	Update(ctx context.Context, teacher *models.Teacher, languageIDs []string) error
	Delete(ctx context.Context, id string) error
}

type teacherClassCounter interface {
	CountByTeacher(ctx context.Context, teacherID string) (int, error)
}

// CreateTeacherRequest represents payload for creating teachers.
type CreateTeacherRequest struct {
	FirstName   string   `json:"first_name" validate:"required"`
	LastName    string   `json:"last_name" validate:"required"`
	DNI         *string  `json:"dni" validate:"omitempty,max=50"`
	Email       *string  `json:"email" validate:"omitempty,email"`
	Phone       *string  `json:"phone" validate:"omitempty,max=50"`
	AvatarURL   *string  `json:"avatar_url" validate:"omitempty,url"`
	LanguageIDs []string `json:"language_ids"`
}

// UpdateTeacherRequest represents payload for updating teachers.
type UpdateTeacherRequest struct {
	FirstName   string   `json:"first_name" validate:"required"`
	LastName    string   `json:"last_name" validate:"required"`
	DNI         *string  `json:"dni" validate:"omitempty,max=50"`
	Email       *string  `json:"email" validate:"omitempty,email"`
	Phone       *string  `json:"phone" validate:"omitempty,max=50"`
	AvatarURL   *string  `json:"avatar_url" validate:"omitempty,url"`
	LanguageIDs []string `json:"language_ids"`
}

// TeacherService orchestrates teacher operations.
type TeacherService struct {
	repo      teacherRepository
	classes   teacherClassCounter
	reconcile snapshotInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, classes teacherClassCounter, reconcile snapshotInvalidator, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, classes: classes, reconcile: reconcile, validator: validate, logger: logger}
}

// List returns teachers plus pagination data.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return teachers, pagination, nil
}

// Get returns a teacher by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a new teacher together with their language links.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	if err := s.ensureUniqueDNI(ctx, req.DNI, ""); err != nil {
		return nil, err
	}

	teacher := &models.Teacher{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	teacher.DNI = normalizeOptional(req.DNI)
	teacher.Email = normalizeOptional(req.Email)
	teacher.Phone = normalizeOptional(req.Phone)
	teacher.AvatarURL = normalizeOptional(req.AvatarURL)

	if err := s.repo.Create(ctx, teacher, req.LanguageIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	s.invalidateSnapshots(ctx)
	return s.Get(ctx, teacher.ID)
}

// Update modifies an existing teacher and replaces their language links.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	if err := s.ensureUniqueDNI(ctx, req.DNI, id); err != nil {
		return nil, err
	}

	teacher.FirstName = strings.TrimSpace(req.FirstName)
	teacher.LastName = strings.TrimSpace(req.LastName)
	teacher.DNI = normalizeOptional(req.DNI)
	teacher.Email = normalizeOptional(req.Email)
	teacher.Phone = normalizeOptional(req.Phone)
	teacher.AvatarURL = normalizeOptional(req.AvatarURL)

	if err := s.repo.Update(ctx, teacher, req.LanguageIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	s.invalidateSnapshots(ctx)
	return s.Get(ctx, id)
}

// Delete removes a teacher. The operation is refused outright while any class
// still references the teacher; nothing is changed in that case.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	count, err := s.classes.CountByTeacher(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher references")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrReferenced, "teacher is assigned to existing classes")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	s.invalidateSnapshots(ctx)
	return nil
}

func (s *TeacherService) ensureUniqueDNI(ctx context.Context, dni *string, excludeID string) error {
	if dni == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*dni)
	if trimmed == "" {
		return nil
	}
	exists, err := s.repo.ExistsByDNI(ctx, trimmed, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check DNI uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrValidation, "dni already used")
	}
	return nil
}

func (s *TeacherService) invalidateSnapshots(ctx context.Context) {
	if s.reconcile == nil {
		return
	}
	if err := s.reconcile.InvalidateAll(ctx); err != nil {
		s.logger.Warn("failed to invalidate calendar snapshots", zap.Error(err))
	}
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
