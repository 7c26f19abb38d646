package dto

import (
	"time"

	"github.com/linguaschool/admin-api/internal/agenda"
)

// AgendaResponse is the /calendar/agenda payload.
type AgendaResponse struct {
	Date  string        `json:"date"`
	Items []agenda.Item `json:"items"`
}

// DayMarkersResponse is the /calendar/days payload. Days are YYYY-MM-DD.
type DayMarkersResponse struct {
	EventDays       []string `json:"eventDays"`
	UnavailableDays []string `json:"unavailableDays"`
	ConflictDays    []string `json:"conflictDays"`
}

// NewDayMarkersResponse flattens marker dates to date-only strings.
func NewDayMarkersResponse(markers agenda.DayMarkers) DayMarkersResponse {
	return DayMarkersResponse{
		EventDays:       formatDays(markers.EventDays),
		UnavailableDays: formatDays(markers.UnavailableDays),
		ConflictDays:    formatDays(markers.ConflictDays),
	}
}

func formatDays(days []time.Time) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format("2006-01-02"))
	}
	return out
}
