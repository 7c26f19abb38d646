package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/linguaschool/admin-api/internal/models"
)

// UnavailabilityRepository manages whole-day teacher block-out records.
type UnavailabilityRepository struct {
	db *sqlx.DB
}

// NewUnavailabilityRepository constructs an UnavailabilityRepository.
func NewUnavailabilityRepository(db *sqlx.DB) *UnavailabilityRepository {
	return &UnavailabilityRepository{db: db}
}

const blockColumns = "id, teacher_id, date, unavailable, reason, created_at"

// List returns every block, optionally narrowed to one teacher.
func (r *UnavailabilityRepository) List(ctx context.Context, teacherID string) ([]models.UnavailabilityBlock, error) {
	query := fmt.Sprintf("SELECT %s FROM unavailability_blocks", blockColumns)
	var args []interface{}
	if teacherID != "" {
		query += " WHERE teacher_id = $1"
		args = append(args, teacherID)
	}
	query += " ORDER BY date ASC, teacher_id ASC"

	var blocks []models.UnavailabilityBlock
	if err := r.db.SelectContext(ctx, &blocks, query, args...); err != nil {
		return nil, fmt.Errorf("list unavailability blocks: %w", err)
	}
	return blocks, nil
}

// FindByID fetches a block by ID.
func (r *UnavailabilityRepository) FindByID(ctx context.Context, id string) (*models.UnavailabilityBlock, error) {
	query := fmt.Sprintf("SELECT %s FROM unavailability_blocks WHERE id = $1", blockColumns)
	var block models.UnavailabilityBlock
	if err := r.db.GetContext(ctx, &block, query, id); err != nil {
		return nil, err
	}
	return &block, nil
}

// Create inserts a block record.
func (r *UnavailabilityRepository) Create(ctx context.Context, block *models.UnavailabilityBlock) error {
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	if block.CreatedAt.IsZero() {
		block.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO unavailability_blocks (id, teacher_id, date, unavailable, reason, created_at)
		VALUES (:id, :teacher_id, :date, :unavailable, :reason, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("create unavailability block: %w", err)
	}
	return nil
}

// Delete removes a block by its canonical identity, the id.
func (r *UnavailabilityRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM unavailability_blocks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete unavailability block: %w", err)
	}
	return nil
}

// DeleteByTeacherAndDate removes every block for the teacher on the calendar
// day and reports how many rows went away. The availability form keys entries
// this way; the rows it deletes are the same ones Delete would remove by id.
func (r *UnavailabilityRepository) DeleteByTeacherAndDate(ctx context.Context, teacherID string, date time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM unavailability_blocks WHERE teacher_id = $1 AND date = $2`, teacherID, date)
	if err != nil {
		return 0, fmt.Errorf("delete unavailability block by teacher and date: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete unavailability block by teacher and date: %w", err)
	}
	return int(removed), nil
}
