package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/linguaschool/admin-api/internal/models"
	appErrors "github.com/linguaschool/admin-api/pkg/errors"
)

type weeklyAvailabilityRepository interface {
	ListByOwner(ctx context.Context, ownerType models.OwnerType, ownerID string) ([]models.WeeklyAvailability, error)
	FindByID(ctx context.Context, id string) (*models.WeeklyAvailability, error)
	ReplaceForOwner(ctx context.Context, ownerType models.OwnerType, ownerID string, entries []models.WeeklyAvailability) ([]models.WeeklyAvailability, error)
	Update(ctx context.Context, entry *models.WeeklyAvailability) error
	Delete(ctx context.Context, id string) error
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// WeeklySlotRequest is one recurring availability window.
type WeeklySlotRequest struct {
	ID      string `json:"id"`
	Weekday string `json:"weekday" validate:"required"`
	From    string `json:"from" validate:"required"`
	Until   string `json:"until" validate:"required"`
}

// ReplaceWeeklyAvailabilityRequest swaps an owner's full weekly grid.
type ReplaceWeeklyAvailabilityRequest struct {
	Slots []WeeklySlotRequest `json:"slots" validate:"dive"`
}

// WeeklyAvailabilityService manages recurring availability windows for
// teachers and students.
type WeeklyAvailabilityService struct {
	repo      weeklyAvailabilityRepository
	teachers  teacherFinder
	students  studentFinder
	reconcile snapshotInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWeeklyAvailabilityService constructs a WeeklyAvailabilityService.
func NewWeeklyAvailabilityService(repo weeklyAvailabilityRepository, teachers teacherFinder, students studentFinder, reconcile snapshotInvalidator, validate *validator.Validate, logger *zap.Logger) *WeeklyAvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeeklyAvailabilityService{repo: repo, teachers: teachers, students: students, reconcile: reconcile, validator: validate, logger: logger}
}

// ListByOwner returns the weekly grid for one teacher or student.
func (s *WeeklyAvailabilityService) ListByOwner(ctx context.Context, ownerType models.OwnerType, ownerID string) ([]models.WeeklyAvailability, error) {
	if err := s.checkOwner(ctx, ownerType, ownerID); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weekly availability")
	}
	return entries, nil
}

// Replace swaps the owner's entire weekly grid in one transaction. Rows that
// carry an id keep it; new rows get one assigned.
func (s *WeeklyAvailabilityService) Replace(ctx context.Context, ownerType models.OwnerType, ownerID string, req ReplaceWeeklyAvailabilityRequest) ([]models.WeeklyAvailability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weekly availability payload")
	}
	if err := s.checkOwner(ctx, ownerType, ownerID); err != nil {
		return nil, err
	}

	entries := make([]models.WeeklyAvailability, 0, len(req.Slots))
	for _, slot := range req.Slots {
		if err := validateWeekday(slot.Weekday); err != nil {
			return nil, err
		}
		if err := validateWindow(slot.From, slot.Until); err != nil {
			return nil, err
		}
		entries = append(entries, models.WeeklyAvailability{
			ID:        slot.ID,
			OwnerType: ownerType,
			OwnerID:   ownerID,
			Weekday:   slot.Weekday,
			From:      slot.From,
			Until:     slot.Until,
		})
	}

	saved, err := s.repo.ReplaceForOwner(ctx, ownerType, ownerID, entries)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace weekly availability")
	}
	s.invalidateSnapshots(ctx)
	return saved, nil
}

// UpdateSlot edits one saved window in place.
func (s *WeeklyAvailabilityService) UpdateSlot(ctx context.Context, id string, req WeeklySlotRequest) (*models.WeeklyAvailability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weekly availability payload")
	}
	if err := validateWeekday(req.Weekday); err != nil {
		return nil, err
	}
	if err := validateWindow(req.From, req.Until); err != nil {
		return nil, err
	}

	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "weekly availability slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly availability slot")
	}

	entry.Weekday = req.Weekday
	entry.From = req.From
	entry.Until = req.Until
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update weekly availability slot")
	}
	s.invalidateSnapshots(ctx)
	return entry, nil
}

// DeleteSlot removes one saved window.
func (s *WeeklyAvailabilityService) DeleteSlot(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "weekly availability slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly availability slot")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete weekly availability slot")
	}
	s.invalidateSnapshots(ctx)
	return nil
}

func (s *WeeklyAvailabilityService) checkOwner(ctx context.Context, ownerType models.OwnerType, ownerID string) error {
	switch ownerType {
	case models.OwnerTeacher:
		if _, err := s.teachers.FindByID(ctx, ownerID); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check owner")
		}
	case models.OwnerStudent:
		if _, err := s.students.FindByID(ctx, ownerID); err != nil {
			if err == sql.ErrNoRows {
				return appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check owner")
		}
	default:
		return appErrors.Clone(appErrors.ErrValidation, "owner type must be teacher or student")
	}
	return nil
}

func (s *WeeklyAvailabilityService) invalidateSnapshots(ctx context.Context) {
	if s.reconcile == nil {
		return
	}
	if err := s.reconcile.InvalidateAll(ctx); err != nil {
		s.logger.Warn("failed to invalidate calendar snapshots", zap.Error(err))
	}
}

func validateWeekday(weekday string) error {
	for _, name := range models.WeekdayNames {
		if weekday == name {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, "weekday must be a lowercase day name")
}

func validateWindow(from, until string) error {
	if !validClockTime(from) || !validClockTime(until) {
		return appErrors.Clone(appErrors.ErrValidation, "times must use HH:MM")
	}
	if until <= from {
		return appErrors.Clone(appErrors.ErrValidation, "window must end after it starts")
	}
	return nil
}
