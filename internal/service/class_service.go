package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/linguaschool/admin-api/internal/models"
	appErrors "github.com/linguaschool/admin-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassEventDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.ClassEventDetail, error)
	Create(ctx context.Context, class *models.ClassEvent) error
	Update(ctx context.Context, class *models.ClassEvent) error
	Delete(ctx context.Context, id string) error
}

type teacherFinder interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type languageFinder interface {
	FindByID(ctx context.Context, id string) (*models.Language, error)
}

// CreateClassRequest represents payload for scheduling a class.
type CreateClassRequest struct {
	Title       string   `json:"title"`
	Date        string   `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string   `json:"start_time" validate:"required"`
	EndTime     string   `json:"end_time" validate:"required"`
	TeacherID   string   `json:"teacher_id" validate:"required"`
	LanguageID  string   `json:"language_id" validate:"required"`
	Classroom   string   `json:"classroom"`
	Kind        string   `json:"kind"`
	Status      string   `json:"status"`
	Description *string  `json:"description"`
	StudentIDs  []string `json:"student_ids"`
}

// UpdateClassRequest represents payload for rescheduling a class.
type UpdateClassRequest struct {
	Title       string   `json:"title"`
	Date        string   `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string   `json:"start_time" validate:"required"`
	EndTime     string   `json:"end_time" validate:"required"`
	TeacherID   string   `json:"teacher_id" validate:"required"`
	LanguageID  string   `json:"language_id" validate:"required"`
	Classroom   string   `json:"classroom"`
	Kind        string   `json:"kind"`
	Status      string   `json:"status"`
	Description *string  `json:"description"`
	StudentIDs  []string `json:"student_ids"`
}

// ClassService orchestrates class scheduling operations.
type ClassService struct {
	repo      classRepository
	teachers  teacherFinder
	languages languageFinder
	reconcile snapshotInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(repo classRepository, teachers teacherFinder, languages languageFinder, reconcile snapshotInvalidator, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, teachers: teachers, languages: languages, reconcile: reconcile, validator: validate, logger: logger}
}

// List returns classes plus pagination data.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassEventDetail, *models.Pagination, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 200
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return classes, pagination, nil
}

// Get returns a class by id.
func (s *ClassService) Get(ctx context.Context, id string) (*models.ClassEventDetail, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Create schedules a new class.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.ClassEventDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class, err := s.buildClass(ctx, req)
	if err != nil {
		return nil, err
	}
	class.StudentIDs = req.StudentIDs
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	s.invalidateSnapshots(ctx)
	return s.Get(ctx, class.ID)
}

// Update reschedules an existing class and replaces its enrollment.
func (s *ClassService) Update(ctx context.Context, id string, req UpdateClassRequest) (*models.ClassEventDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	class, err := s.buildClass(ctx, CreateClassRequest(req))
	if err != nil {
		return nil, err
	}
	class.ID = id
	class.StudentIDs = req.StudentIDs
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	s.invalidateSnapshots(ctx)
	return s.Get(ctx, id)
}

// Delete removes a class and its enrollment rows.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	s.invalidateSnapshots(ctx)
	return nil
}

func (s *ClassService) buildClass(ctx context.Context, req CreateClassRequest) (*models.ClassEvent, error) {
	parsedDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD")
	}
	if !validClockTime(req.StartTime) || !validClockTime(req.EndTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "times must use HH:MM")
	}
	if req.EndTime <= req.StartTime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}

	resolvedKind := models.ClassKind(req.Kind)
	if req.Kind == "" {
		resolvedKind = models.KindClass
	}
	if resolvedKind != models.KindClass && resolvedKind != models.KindSpecial {
		return nil, appErrors.Clone(appErrors.ErrValidation, "kind must be class or special")
	}

	resolvedStatus := models.ClassStatus(req.Status)
	if req.Status == "" {
		resolvedStatus = models.StatusScheduled
	}
	switch resolvedStatus {
	case models.StatusScheduled, models.StatusCancelled, models.StatusPostponed:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be scheduled, cancelled or postponed")
	}

	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown teacher")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher")
	}
	if _, err := s.languages.FindByID(ctx, req.LanguageID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown language")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check language")
	}

	return &models.ClassEvent{
		Title:       strings.TrimSpace(req.Title),
		Date:        parsedDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		TeacherID:   req.TeacherID,
		LanguageID:  req.LanguageID,
		Classroom:   strings.TrimSpace(req.Classroom),
		Kind:        resolvedKind,
		Status:      resolvedStatus,
		Description: normalizeOptional(req.Description),
	}, nil
}

func (s *ClassService) invalidateSnapshots(ctx context.Context) {
	if s.reconcile == nil {
		return
	}
	if err := s.reconcile.InvalidateAll(ctx); err != nil {
		s.logger.Warn("failed to invalidate calendar snapshots", zap.Error(err))
	}
}

func validClockTime(value string) bool {
	_, err := time.Parse("15:04", value)
	return err == nil && len(value) == 5
}
