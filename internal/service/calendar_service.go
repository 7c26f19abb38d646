package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/linguaschool/admin-api/internal/agenda"
	"github.com/linguaschool/admin-api/internal/models"
	"github.com/linguaschool/admin-api/pkg/cache"
	appErrors "github.com/linguaschool/admin-api/pkg/errors"
)

// snapshotInvalidator drops cached calendar snapshots after a write so the
// next agenda read sees fresh data.
type snapshotInvalidator interface {
	InvalidateAll(ctx context.Context) error
}

type snapshotStore interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	InvalidateAll(ctx context.Context) error
}

// Snapshot sources read whole collections. The calendar works on complete
// rosters, so the loader bypasses the paginated listing paths entirely.
type calendarClassSource interface {
	ListAll(ctx context.Context) ([]models.ClassEventDetail, error)
}

type calendarBlockSource interface {
	List(ctx context.Context, teacherID string) ([]models.UnavailabilityBlock, error)
}

type calendarTeacherSource interface {
	ListAll(ctx context.Context) ([]models.Teacher, error)
}

const (
	snapshotClasses  = "classes"
	snapshotBlocks   = "blocks"
	snapshotTeachers = "teachers"
)

// CalendarService assembles the daily agenda and calendar day markers from
// cached collection snapshots.
type CalendarService struct {
	classes   calendarClassSource
	blocks    calendarBlockSource
	teachers  calendarTeacherSource
	snapshots snapshotStore
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(classes calendarClassSource, blocks calendarBlockSource, teachers calendarTeacherSource, snapshots snapshotStore, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{classes: classes, blocks: blocks, teachers: teachers, snapshots: snapshots, logger: logger}
}

// SetMetrics attaches snapshot lookup instrumentation.
func (s *CalendarService) SetMetrics(metrics *MetricsService) {
	s.metrics = metrics
}

// Agenda returns the ordered agenda for one date with conflict flags applied.
func (s *CalendarService) Agenda(ctx context.Context, dateValue string, filter agenda.Filter, highlightConflicts bool) ([]agenda.Item, error) {
	date, err := time.Parse("2006-01-02", dateValue)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD")
	}

	classes, blocks, teachers, err := s.loadCollections(ctx)
	if err != nil {
		return nil, err
	}

	items := agenda.Assemble(date, classes, blocks, teachers, filter)
	idx := agenda.NewBlockIndex(blocks)
	return agenda.Annotate(items, idx, highlightConflicts), nil
}

// DayMarkers returns which days carry events, unavailability and conflicts.
func (s *CalendarService) DayMarkers(ctx context.Context, filter agenda.Filter, highlightConflicts bool) (agenda.DayMarkers, error) {
	classes, blocks, _, err := s.loadCollections(ctx)
	if err != nil {
		return agenda.DayMarkers{}, err
	}
	return agenda.ComputeDayMarkers(classes, blocks, filter, highlightConflicts), nil
}

// InvalidateAll drops every cached snapshot. Mutation services call this so
// that the very next read refetches the collections.
func (s *CalendarService) InvalidateAll(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	return s.snapshots.InvalidateAll(ctx)
}

func (s *CalendarService) loadCollections(ctx context.Context) ([]models.ClassEventDetail, []models.UnavailabilityBlock, []models.Teacher, error) {
	classes, err := loadSnapshot(ctx, s, snapshotClasses, s.classes.ListAll)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}

	blocks, err := loadSnapshot(ctx, s, snapshotBlocks, func(ctx context.Context) ([]models.UnavailabilityBlock, error) {
		return s.blocks.List(ctx, "")
	})
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unavailability blocks")
	}

	teachers, err := loadSnapshot(ctx, s, snapshotTeachers, s.teachers.ListAll)
	if err != nil {
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}

	return classes, blocks, teachers, nil
}

// loadSnapshot reads one collection through the snapshot cache. Store errors
// other than a plain miss are logged and treated as a miss, so a broken cache
// never takes the calendar down.
func loadSnapshot[T any](ctx context.Context, s *CalendarService, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if s.snapshots != nil {
		var cached []T
		err := s.snapshots.Get(ctx, key, &cached)
		if err == nil {
			if s.metrics != nil {
				s.metrics.ObserveSnapshotLookup(true)
			}
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("snapshot read failed", zap.String("key", key), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.ObserveSnapshotLookup(false)
		}
	}

	fresh, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if s.snapshots != nil {
		if err := s.snapshots.Set(ctx, key, fresh); err != nil {
			s.logger.Warn("snapshot write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return fresh, nil
}
