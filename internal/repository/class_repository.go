package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/linguaschool/admin-api/internal/models"
)

// ClassRepository manages persistence for classes and enrollments.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classDetailColumns = `
c.id, c.title, c.date, c.start_time, c.end_time, c.teacher_id, c.language_id,
c.classroom, c.kind, c.status, c.description, c.created_at, c.updated_at,
t.first_name || ' ' || t.last_name AS teacher_name,
l.name AS language_name`

// List returns class details matching the filter, teacher and language names
// resolved, enrollment ids attached.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassEventDetail, int, error) {
	base := `FROM classes c
JOIN teachers t ON t.id = c.teacher_id
JOIN languages l ON l.id = c.language_id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("c.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.LanguageID != "" {
		conditions = append(conditions, fmt.Sprintf("c.language_id = $%d", len(args)+1))
		args = append(args, filter.LanguageID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("c.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("c.date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 200
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY c.date ASC, c.start_time ASC LIMIT %d OFFSET %d", classDetailColumns, base, size, offset)
	var classes []models.ClassEventDetail
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}

	if err := r.attachStudents(ctx, classes); err != nil {
		return nil, 0, err
	}

	return classes, total, nil
}

// ListAll returns every class with resolved names and no pagination. The
// calendar snapshot loader consumes whole collections; paging here would
// silently drop later classes from the agenda and the day markers.
func (r *ClassRepository) ListAll(ctx context.Context) ([]models.ClassEventDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes c
JOIN teachers t ON t.id = c.teacher_id
JOIN languages l ON l.id = c.language_id
ORDER BY c.date ASC, c.start_time ASC`, classDetailColumns)
	var classes []models.ClassEventDetail
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list all classes: %w", err)
	}
	if err := r.attachStudents(ctx, classes); err != nil {
		return nil, err
	}
	return classes, nil
}

// FindByID fetches a class with resolved names and enrollment ids.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.ClassEventDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes c
JOIN teachers t ON t.id = c.teacher_id
JOIN languages l ON l.id = c.language_id
WHERE c.id = $1`, classDetailColumns)
	var class models.ClassEventDetail
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	classes := []models.ClassEventDetail{class}
	if err := r.attachStudents(ctx, classes); err != nil {
		return nil, err
	}
	return &classes[0], nil
}

// Create inserts a class and its enrollment rows in one transaction.
func (r *ClassRepository) Create(ctx context.Context, class *models.ClassEvent) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create class: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO classes (id, title, date, start_time, end_time, teacher_id, language_id, classroom, kind, status, description, created_at, updated_at)
		VALUES (:id, :title, :date, :start_time, :end_time, :teacher_id, :language_id, :classroom, :kind, :status, :description, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}

	if err = replaceEnrollment(ctx, tx, class.ID, class.StudentIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create class: %w", err)
	}
	return nil
}

// Update modifies a class and replaces its enrollment rows atomically.
func (r *ClassRepository) Update(ctx context.Context, class *models.ClassEvent) error {
	class.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update class: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE classes SET title = :title, date = :date, start_time = :start_time, end_time = :end_time, teacher_id = :teacher_id, language_id = :language_id, classroom = :classroom, kind = :kind, status = :status, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("update class: %w", err)
	}

	if err = replaceEnrollment(ctx, tx, class.ID, class.StudentIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update class: %w", err)
	}
	return nil
}

// Delete removes a class and its enrollment rows.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete class: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM class_students WHERE class_id = $1`, id); err != nil {
		return fmt.Errorf("delete class enrollments: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete class: %w", err)
	}
	return nil
}

// CountByTeacher returns how many classes reference the teacher. The teacher
// delete guard refuses deletion while this is non-zero.
func (r *ClassRepository) CountByTeacher(ctx context.Context, teacherID string) (int, error) {
	const query = `SELECT COUNT(*) FROM classes WHERE teacher_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, teacherID); err != nil {
		return 0, fmt.Errorf("count classes by teacher: %w", err)
	}
	return count, nil
}

func (r *ClassRepository) attachStudents(ctx context.Context, classes []models.ClassEventDetail) error {
	if len(classes) == 0 {
		return nil
	}
	ids := make([]string, len(classes))
	for i, c := range classes {
		ids[i] = c.ID
	}

	query, args, err := sqlx.In(`SELECT class_id, student_id FROM class_students WHERE class_id IN (?) ORDER BY student_id ASC`, ids)
	if err != nil {
		return fmt.Errorf("build enrollment query: %w", err)
	}
	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load enrollments: %w", err)
	}
	defer rows.Close()

	byClass := make(map[string][]string, len(classes))
	for rows.Next() {
		var classID, studentID string
		if err := rows.Scan(&classID, &studentID); err != nil {
			return fmt.Errorf("scan enrollment: %w", err)
		}
		byClass[classID] = append(byClass[classID], studentID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate enrollments: %w", err)
	}

	for i := range classes {
		studentIDs := byClass[classes[i].ID]
		if studentIDs == nil {
			studentIDs = []string{}
		}
		classes[i].StudentIDs = studentIDs
	}
	return nil
}

func replaceEnrollment(ctx context.Context, tx *sqlx.Tx, classID string, studentIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM class_students WHERE class_id = $1`, classID); err != nil {
		return fmt.Errorf("clear class enrollments: %w", err)
	}
	for _, studentID := range studentIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO class_students (class_id, student_id) VALUES ($1, $2)`, classID, studentID); err != nil {
			return fmt.Errorf("insert class enrollment: %w", err)
		}
	}
	return nil
}
