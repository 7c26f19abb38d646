// Package agenda holds the pure read-model computations behind the calendar
// view: assembling the per-day item list, detecting teacher conflicts, and
// deriving the day sets used to decorate the month widget. All functions are
// synchronous, operate on whole-collection snapshots, and never mutate their
// inputs.
package agenda

import (
	"fmt"
	"sort"
	"time"

	"github.com/linguaschool/admin-api/internal/models"
)

// ItemKind tags the variants of an agenda item.
type ItemKind string

const (
	ItemClass       ItemKind = "class"
	ItemSpecial     ItemKind = "special"
	ItemUnavailable ItemKind = "unavailable"
)

// Item is a single entry in the day view: either a scheduled class/special
// event or a projected whole-day unavailability block.
type Item struct {
	ID           string             `json:"id"`
	Kind         ItemKind           `json:"kind"`
	Date         time.Time          `json:"date"`
	StartTime    string             `json:"start_time"`
	EndTime      string             `json:"end_time"`
	Title        string             `json:"title,omitempty"`
	TeacherID    string             `json:"teacher_id"`
	TeacherName  string             `json:"teacher_name"`
	LanguageID   string             `json:"language_id,omitempty"`
	LanguageName string             `json:"language_name,omitempty"`
	Classroom    string             `json:"classroom,omitempty"`
	Status       models.ClassStatus `json:"status,omitempty"`
	Description  string             `json:"description,omitempty"`
	Conflict     bool               `json:"conflict"`
}

// Filter narrows the agenda and day markers by teacher and/or language.
// Empty fields mean the dimension is not filtered. The language filter never
// applies to unavailability items, which carry no language.
type Filter struct {
	TeacherID  string
	LanguageID string
}

// unavailableStartTime is the display start of a projected block. Ordering
// never relies on comparing it against "HH:MM" strings; blocks are pinned
// first by kind.
const unavailableStartTime = "All Day"

// SameDay reports whether two timestamps fall on the same calendar day,
// ignoring time of day and comparing in each value's own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// dayKey produces the calendar-day component of a timestamp for map keys.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Assemble produces the ordered day view for the selected date: classes and
// special events matching the filter plus every unavailability block for the
// day, projected into placeholder items. A zero date yields an empty agenda.
func Assemble(date time.Time, classes []models.ClassEventDetail, blocks []models.UnavailabilityBlock, teachers []models.Teacher, f Filter) []Item {
	if date.IsZero() {
		return nil
	}

	items := make([]Item, 0, len(classes)+len(blocks))

	for _, c := range classes {
		if !SameDay(c.Date, date) {
			continue
		}
		if f.TeacherID != "" && c.TeacherID != f.TeacherID {
			continue
		}
		if f.LanguageID != "" && c.LanguageID != f.LanguageID {
			continue
		}
		items = append(items, classItem(c))
	}

	for _, b := range blocks {
		if !SameDay(b.Date, date) || !b.Unavailable {
			continue
		}
		if f.TeacherID != "" && b.TeacherID != f.TeacherID {
			continue
		}
		items = append(items, blockItem(b, teachers))
	}

	sort.SliceStable(items, func(i, j int) bool {
		if (items[i].Kind == ItemUnavailable) != (items[j].Kind == ItemUnavailable) {
			return items[i].Kind == ItemUnavailable
		}
		return items[i].StartTime < items[j].StartTime
	})

	return items
}

func classItem(c models.ClassEventDetail) Item {
	kind := ItemClass
	if c.Kind == models.KindSpecial {
		kind = ItemSpecial
	}
	title := c.Title
	if title == "" {
		title = fmt.Sprintf("%s with %s", c.LanguageName, c.TeacherName)
	}
	item := Item{
		ID:           c.ID,
		Kind:         kind,
		Date:         c.Date,
		StartTime:    c.StartTime,
		EndTime:      c.EndTime,
		Title:        title,
		TeacherID:    c.TeacherID,
		TeacherName:  c.TeacherName,
		LanguageID:   c.LanguageID,
		LanguageName: c.LanguageName,
		Classroom:    c.Classroom,
		Status:       c.Status,
	}
	if c.Description != nil {
		item.Description = *c.Description
	}
	return item
}

func blockItem(b models.UnavailabilityBlock, teachers []models.Teacher) Item {
	name := resolveTeacherName(b.TeacherID, teachers)
	description := "Marked as unavailable"
	if b.Reason != nil && *b.Reason != "" {
		description = *b.Reason
	}
	return Item{
		ID:          b.ID,
		Kind:        ItemUnavailable,
		Date:        b.Date,
		StartTime:   unavailableStartTime,
		EndTime:     "",
		TeacherID:   b.TeacherID,
		TeacherName: name,
		Description: description,
	}
}

// resolveTeacherName looks the teacher up in the known set and degrades to a
// synthesized placeholder built from the trailing characters of the id. The
// placeholder is a display policy only, never a data integrity signal.
func resolveTeacherName(teacherID string, teachers []models.Teacher) string {
	for _, t := range teachers {
		if t.ID == teacherID {
			return t.FullName()
		}
	}
	suffix := teacherID
	if len(suffix) > 2 {
		suffix = suffix[len(suffix)-2:]
	}
	return "Teacher " + suffix
}

// BlockIndex answers "is this teacher blocked out on this day" in O(1).
type BlockIndex map[string]struct{}

// NewBlockIndex builds the lookup from every block with the unavailable flag
// set. Duplicate (teacher, date) entries collapse into one key, so any
// matching record is authoritative.
func NewBlockIndex(blocks []models.UnavailabilityBlock) BlockIndex {
	idx := make(BlockIndex, len(blocks))
	for _, b := range blocks {
		if !b.Unavailable {
			continue
		}
		idx[b.TeacherID+"|"+dayKey(b.Date)] = struct{}{}
	}
	return idx
}

// Blocked reports whether the teacher has a whole-day block on the date.
func (idx BlockIndex) Blocked(teacherID string, date time.Time) bool {
	_, ok := idx[teacherID+"|"+dayKey(date)]
	return ok
}

// IsConflict reports whether a class/special item collides with a teacher
// unavailability block on the same calendar day. Unavailability items are
// never themselves in conflict, and a cancelled class cannot conflict.
// Start and end times are ignored: blocks cover the whole day.
func IsConflict(item Item, idx BlockIndex) bool {
	if item.Kind != ItemClass && item.Kind != ItemSpecial {
		return false
	}
	if item.Status == models.StatusCancelled {
		return false
	}
	return idx.Blocked(item.TeacherID, item.Date)
}

// DayMarkers are the three independent date sets decorating the calendar
// widget. A date may appear in all three at once; rendering layers them.
type DayMarkers struct {
	EventDays       []time.Time `json:"event_days"`
	UnavailableDays []time.Time `json:"unavailable_days"`
	ConflictDays    []time.Time `json:"conflict_days"`
}

// ComputeDayMarkers derives the day sets over the whole dataset. Classes and
// conflict candidates are narrowed by both filter dimensions, blocks by
// teacher only. Conflict days are suppressed entirely unless highlighting is
// requested. Every conflict day is backed by a visible class, so ConflictDays
// stays a subset of EventDays under any filter.
func ComputeDayMarkers(classes []models.ClassEventDetail, blocks []models.UnavailabilityBlock, f Filter, highlightConflicts bool) DayMarkers {
	idx := NewBlockIndex(blocks)

	markers := DayMarkers{
		EventDays:       []time.Time{},
		UnavailableDays: []time.Time{},
		ConflictDays:    []time.Time{},
	}

	seenEvent := map[string]struct{}{}
	for _, c := range classes {
		if f.TeacherID != "" && c.TeacherID != f.TeacherID {
			continue
		}
		if f.LanguageID != "" && c.LanguageID != f.LanguageID {
			continue
		}
		key := dayKey(c.Date)
		if _, ok := seenEvent[key]; !ok {
			seenEvent[key] = struct{}{}
			markers.EventDays = append(markers.EventDays, c.Date)
		}
	}

	// Conflict candidates carry the same narrowing as EventDays: a day may
	// only be marked conflicting through a class the filter still shows.
	if highlightConflicts {
		seenConflict := map[string]struct{}{}
		for _, c := range classes {
			if f.TeacherID != "" && c.TeacherID != f.TeacherID {
				continue
			}
			if f.LanguageID != "" && c.LanguageID != f.LanguageID {
				continue
			}
			if c.Status == models.StatusCancelled {
				continue
			}
			if !idx.Blocked(c.TeacherID, c.Date) {
				continue
			}
			key := dayKey(c.Date)
			if _, ok := seenConflict[key]; !ok {
				seenConflict[key] = struct{}{}
				markers.ConflictDays = append(markers.ConflictDays, c.Date)
			}
		}
	}

	seenBlocked := map[string]struct{}{}
	for _, b := range blocks {
		if !b.Unavailable {
			continue
		}
		if f.TeacherID != "" && b.TeacherID != f.TeacherID {
			continue
		}
		key := dayKey(b.Date)
		if _, ok := seenBlocked[key]; !ok {
			seenBlocked[key] = struct{}{}
			markers.UnavailableDays = append(markers.UnavailableDays, b.Date)
		}
	}

	return markers
}

// Annotate returns a copy of the agenda with the Conflict flag set on every
// class/special item colliding with a block. The flag is forced off when
// highlighting is disabled.
func Annotate(items []Item, idx BlockIndex, highlightConflicts bool) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	if !highlightConflicts {
		return out
	}
	for i := range out {
		out[i].Conflict = IsConflict(out[i], idx)
	}
	return out
}
