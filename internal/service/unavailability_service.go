package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/linguaschool/admin-api/internal/models"
	appErrors "github.com/linguaschool/admin-api/pkg/errors"
)

type unavailabilityRepository interface {
	List(ctx context.Context, teacherID string) ([]models.UnavailabilityBlock, error)
	FindByID(ctx context.Context, id string) (*models.UnavailabilityBlock, error)
	Create(ctx context.Context, block *models.UnavailabilityBlock) error
	Delete(ctx context.Context, id string) error
	DeleteByTeacherAndDate(ctx context.Context, teacherID string, date time.Time) (int, error)
}

// CreateUnavailabilityRequest marks a teacher unavailable on a date.
type CreateUnavailabilityRequest struct {
	TeacherID string  `json:"teacher_id" validate:"required"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Reason    *string `json:"reason" validate:"omitempty,max=500"`
}

// UnavailabilityService manages per-date teacher unavailability.
type UnavailabilityService struct {
	repo      unavailabilityRepository
	teachers  teacherFinder
	reconcile snapshotInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUnavailabilityService constructs an UnavailabilityService.
func NewUnavailabilityService(repo unavailabilityRepository, teachers teacherFinder, reconcile snapshotInvalidator, validate *validator.Validate, logger *zap.Logger) *UnavailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnavailabilityService{repo: repo, teachers: teachers, reconcile: reconcile, validator: validate, logger: logger}
}

// List returns unavailability blocks, optionally narrowed to one teacher.
func (s *UnavailabilityService) List(ctx context.Context, teacherID string) ([]models.UnavailabilityBlock, error) {
	blocks, err := s.repo.List(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list unavailability blocks")
	}
	return blocks, nil
}

// Create marks a teacher unavailable for a whole day.
func (s *UnavailabilityService) Create(ctx context.Context, req CreateUnavailabilityRequest) (*models.UnavailabilityBlock, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unavailability payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD")
	}
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown teacher")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher")
	}

	block := &models.UnavailabilityBlock{
		TeacherID:   req.TeacherID,
		Date:        date,
		Unavailable: true,
		Reason:      normalizeOptional(req.Reason),
	}
	if err := s.repo.Create(ctx, block); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create unavailability block")
	}
	s.invalidateSnapshots(ctx)
	return block, nil
}

// Delete removes a single block by its id.
func (s *UnavailabilityService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "unavailability block not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unavailability block")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete unavailability block")
	}
	s.invalidateSnapshots(ctx)
	return nil
}

// DeleteByTeacherAndDate clears every block a teacher holds on a date.
// Marking forms address blocks this way rather than by id.
func (s *UnavailabilityService) DeleteByTeacherAndDate(ctx context.Context, teacherID, dateValue string) error {
	date, err := time.Parse("2006-01-02", dateValue)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD")
	}
	removed, err := s.repo.DeleteByTeacherAndDate(ctx, teacherID, date)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete unavailability blocks")
	}
	if removed == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "no unavailability block for that teacher and date")
	}
	s.invalidateSnapshots(ctx)
	return nil
}

func (s *UnavailabilityService) invalidateSnapshots(ctx context.Context) {
	if s.reconcile == nil {
		return
	}
	if err := s.reconcile.InvalidateAll(ctx); err != nil {
		s.logger.Warn("failed to invalidate calendar snapshots", zap.Error(err))
	}
}
