package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/linguaschool/admin-api/internal/models"
)

// WeeklyAvailabilityRepository manages recurring weekly time windows for
// teachers and students.
type WeeklyAvailabilityRepository struct {
	db *sqlx.DB
}

// NewWeeklyAvailabilityRepository constructs the repository.
func NewWeeklyAvailabilityRepository(db *sqlx.DB) *WeeklyAvailabilityRepository {
	return &WeeklyAvailabilityRepository{db: db}
}

const weeklyColumns = "id, owner_type, owner_id, weekday, from_time, until_time, created_at"

// ListByOwner returns the windows attached to a teacher or student.
func (r *WeeklyAvailabilityRepository) ListByOwner(ctx context.Context, ownerType models.OwnerType, ownerID string) ([]models.WeeklyAvailability, error) {
	query := fmt.Sprintf("SELECT %s FROM weekly_availability WHERE owner_type = $1 AND owner_id = $2 ORDER BY weekday ASC, from_time ASC", weeklyColumns)
	var entries []models.WeeklyAvailability
	if err := r.db.SelectContext(ctx, &entries, query, ownerType, ownerID); err != nil {
		return nil, fmt.Errorf("list weekly availability: %w", err)
	}
	return entries, nil
}

// FindByID fetches a single window.
func (r *WeeklyAvailabilityRepository) FindByID(ctx context.Context, id string) (*models.WeeklyAvailability, error) {
	query := fmt.Sprintf("SELECT %s FROM weekly_availability WHERE id = $1", weeklyColumns)
	var entry models.WeeklyAvailability
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ReplaceForOwner swaps the owner's full window list in one transaction.
// Rows submitted without ids are assigned new ones; rows carrying ids keep
// them so later per-row updates and deletes stay addressable.
func (r *WeeklyAvailabilityRepository) ReplaceForOwner(ctx context.Context, ownerType models.OwnerType, ownerID string, entries []models.WeeklyAvailability) ([]models.WeeklyAvailability, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin replace weekly availability: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM weekly_availability WHERE owner_type = $1 AND owner_id = $2`, ownerType, ownerID); err != nil {
		return nil, fmt.Errorf("clear weekly availability: %w", err)
	}

	now := time.Now().UTC()
	saved := make([]models.WeeklyAvailability, 0, len(entries))
	for _, entry := range entries {
		entry.OwnerType = ownerType
		entry.OwnerID = ownerID
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO weekly_availability (id, owner_type, owner_id, weekday, from_time, until_time, created_at)
			VALUES (:id, :owner_type, :owner_id, :weekday, :from_time, :until_time, :created_at)`, &entry); err != nil {
			return nil, fmt.Errorf("insert weekly availability: %w", err)
		}
		saved = append(saved, entry)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit replace weekly availability: %w", err)
	}
	return saved, nil
}

// Update modifies a persisted window in place.
func (r *WeeklyAvailabilityRepository) Update(ctx context.Context, entry *models.WeeklyAvailability) error {
	const query = `UPDATE weekly_availability SET weekday = :weekday, from_time = :from_time, until_time = :until_time WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("update weekly availability: %w", err)
	}
	return nil
}

// Delete removes a persisted window by id.
func (r *WeeklyAvailabilityRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM weekly_availability WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete weekly availability: %w", err)
	}
	return nil
}
