package models

import "time"

// ClassKind distinguishes regular lessons from one-off special events.
type ClassKind string

const (
	KindClass   ClassKind = "class"
	KindSpecial ClassKind = "special"
)

// ClassStatus tracks the lifecycle of a scheduled class.
type ClassStatus string

const (
	StatusScheduled ClassStatus = "scheduled"
	StatusCancelled ClassStatus = "cancelled"
	StatusPostponed ClassStatus = "postponed"
)

// ClassEvent is a scheduled class or special event on a single date.
// StartTime and EndTime are zero-padded "HH:MM" strings.
type ClassEvent struct {
	ID          string      `db:"id" json:"id"`
	Title       string      `db:"title" json:"title"`
	Date        time.Time   `db:"date" json:"date"`
	StartTime   string      `db:"start_time" json:"start_time"`
	EndTime     string      `db:"end_time" json:"end_time"`
	TeacherID   string      `db:"teacher_id" json:"teacher_id"`
	LanguageID  string      `db:"language_id" json:"language_id"`
	Classroom   string      `db:"classroom" json:"classroom"`
	Kind        ClassKind   `db:"kind" json:"kind"`
	Status      ClassStatus `db:"status" json:"status"`
	Description *string     `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`

	StudentIDs []string `db:"-" json:"student_ids"`
}

// ClassEventDetail extends ClassEvent with display names resolved via joins.
type ClassEventDetail struct {
	ClassEvent
	TeacherName  string `db:"teacher_name" json:"teacher_name"`
	LanguageName string `db:"language_name" json:"language_name"`
}

// ClassFilter captures filtering options for listing classes.
type ClassFilter struct {
	TeacherID  string
	LanguageID string
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}
