package models

import "time"

// UnavailabilityBlock marks a teacher as blocked out for a whole calendar day.
// The source data calls this "availability" while storing the opposite; the
// type is named for what the record actually holds.
type UnavailabilityBlock struct {
	ID          string    `db:"id" json:"id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	Date        time.Time `db:"date" json:"date"`
	Unavailable bool      `db:"unavailable" json:"unavailable"`
	Reason      *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// WeekdayName values accepted by weekly availability entries.
var WeekdayNames = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// OwnerType identifies which entity a weekly availability window belongs to.
type OwnerType string

const (
	OwnerTeacher OwnerType = "teacher"
	OwnerStudent OwnerType = "student"
)

// WeeklyAvailability is a recurring weekly time window attached to a teacher
// or student. It is captured for future scheduling use and is not consulted
// by conflict detection.
type WeeklyAvailability struct {
	ID        string    `db:"id" json:"id"`
	OwnerType OwnerType `db:"owner_type" json:"owner_type"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	Weekday   string    `db:"weekday" json:"weekday"`
	From      string    `db:"from_time" json:"from"`
	Until     string    `db:"until_time" json:"until"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
