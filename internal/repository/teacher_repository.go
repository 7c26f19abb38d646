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

// TeacherRepository manages persistence for teachers and their language links.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

const teacherColumns = "id, first_name, last_name, dni, email, phone, avatar_url, created_at, updated_at"

// List returns teachers matching filters along with total count. Language
// links are loaded in a second query to keep rows flat.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	base := "FROM teachers WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(COALESCE(dni, '')) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if filter.LanguageID != "" {
		conditions = append(conditions, fmt.Sprintf("id IN (SELECT teacher_id FROM teacher_languages WHERE language_id = $%d)", len(args)+1))
		args = append(args, filter.LanguageID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"first_name": "first_name",
		"last_name":  "last_name",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "last_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", teacherColumns, base, column, order, size, offset)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}

	if err := r.attachLanguages(ctx, teachers); err != nil {
		return nil, 0, err
	}

	return teachers, total, nil
}

// ListAll returns every teacher without pagination. The calendar snapshot
// loader needs the complete roster so unavailability items resolve names.
func (r *TeacherRepository) ListAll(ctx context.Context) ([]models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers ORDER BY last_name ASC, first_name ASC", teacherColumns)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list all teachers: %w", err)
	}
	if err := r.attachLanguages(ctx, teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

// FindByID fetches a teacher and their languages by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE id = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	teachers := []models.Teacher{teacher}
	if err := r.attachLanguages(ctx, teachers); err != nil {
		return nil, err
	}
	return &teachers[0], nil
}

// ExistsByDNI checks whether another teacher already carries the DNI.
func (r *TeacherRepository) ExistsByDNI(ctx context.Context, dni, excludeID string) (bool, error) {
	return existsByDNI(ctx, r.db, "teachers", dni, excludeID)
}

// Create inserts a teacher together with their language links in one
// transaction, so a failed link insert never leaves a half-formed teacher.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher, languageIDs []string) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create teacher: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO teachers (id, first_name, last_name, dni, email, phone, avatar_url, created_at, updated_at)
		VALUES (:id, :first_name, :last_name, :dni, :email, :phone, :avatar_url, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}

	if err = replaceTeacherLanguages(ctx, tx, teacher.ID, languageIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create teacher: %w", err)
	}
	return nil
}

// Update modifies a teacher record and replaces their language links
// atomically.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher, languageIDs []string) error {
	teacher.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update teacher: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE teachers SET first_name = :first_name, last_name = :last_name, dni = :dni, email = :email, phone = :phone, avatar_url = :avatar_url, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}

	if err = replaceTeacherLanguages(ctx, tx, teacher.ID, languageIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update teacher: %w", err)
	}
	return nil
}

// Delete removes a teacher plus their language links, weekly availability and
// unavailability blocks. Callers must refuse the delete first while classes
// still reference the teacher.
func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete teacher: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM teacher_languages WHERE teacher_id = $1`, id); err != nil {
		return fmt.Errorf("delete teacher languages: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM weekly_availability WHERE owner_type = 'teacher' AND owner_id = $1`, id); err != nil {
		return fmt.Errorf("delete teacher weekly availability: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM unavailability_blocks WHERE teacher_id = $1`, id); err != nil {
		return fmt.Errorf("delete teacher unavailability: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete teacher: %w", err)
	}
	return nil
}

func (r *TeacherRepository) attachLanguages(ctx context.Context, teachers []models.Teacher) error {
	if len(teachers) == 0 {
		return nil
	}
	ids := make([]string, len(teachers))
	for i, t := range teachers {
		ids[i] = t.ID
	}

	query, args, err := sqlx.In(`
SELECT tl.teacher_id, l.id, l.name
FROM teacher_languages tl
JOIN languages l ON l.id = tl.language_id
WHERE tl.teacher_id IN (?)
ORDER BY l.name ASC`, ids)
	if err != nil {
		return fmt.Errorf("build teacher languages query: %w", err)
	}
	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load teacher languages: %w", err)
	}
	defer rows.Close()

	byTeacher := make(map[string][]models.Language, len(teachers))
	for rows.Next() {
		var teacherID string
		var lang models.Language
		if err := rows.Scan(&teacherID, &lang.ID, &lang.Name); err != nil {
			return fmt.Errorf("scan teacher language: %w", err)
		}
		byTeacher[teacherID] = append(byTeacher[teacherID], lang)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate teacher languages: %w", err)
	}

	for i := range teachers {
		langs := byTeacher[teachers[i].ID]
		if langs == nil {
			langs = []models.Language{}
		}
		teachers[i].Languages = langs
	}
	return nil
}

func replaceTeacherLanguages(ctx context.Context, tx *sqlx.Tx, teacherID string, languageIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM teacher_languages WHERE teacher_id = $1`, teacherID); err != nil {
		return fmt.Errorf("clear teacher languages: %w", err)
	}
	for _, languageID := range languageIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO teacher_languages (teacher_id, language_id) VALUES ($1, $2)`, teacherID, languageID); err != nil {
			return fmt.Errorf("insert teacher language: %w", err)
		}
	}
	return nil
}
