package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/linguaschool/admin-api/internal/agenda"
	"github.com/linguaschool/admin-api/internal/dto"
	appErrors "github.com/linguaschool/admin-api/pkg/errors"
	"github.com/linguaschool/admin-api/pkg/response"
)

// CalendarReader assembles agendas and day markers.
type CalendarReader interface {
	Agenda(ctx context.Context, date string, filter agenda.Filter, highlightConflicts bool) ([]agenda.Item, error)
	DayMarkers(ctx context.Context, filter agenda.Filter, highlightConflicts bool) (agenda.DayMarkers, error)
}

// CalendarHandler serves the daily agenda and day markers.
type CalendarHandler struct {
	calendar CalendarReader
}

// NewCalendarHandler constructs a new CalendarHandler.
func NewCalendarHandler(calendar CalendarReader) *CalendarHandler {
	return &CalendarHandler{calendar: calendar}
}

// Agenda handles GET /calendar/agenda?date=YYYY-MM-DD.
func (h *CalendarHandler) Agenda(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date is required"))
		return
	}
	filter := agenda.Filter{
		TeacherID:  c.Query("teacherId"),
		LanguageID: c.Query("languageId"),
	}
	items, err := h.calendar.Agenda(c.Request.Context(), date, filter, highlightConflicts(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.AgendaResponse{Date: date, Items: items}, nil)
}

// Days handles GET /calendar/days.
func (h *CalendarHandler) Days(c *gin.Context) {
	filter := agenda.Filter{
		TeacherID:  c.Query("teacherId"),
		LanguageID: c.Query("languageId"),
	}
	markers, err := h.calendar.DayMarkers(c.Request.Context(), filter, highlightConflicts(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewDayMarkersResponse(markers), nil)
}

// highlightConflicts defaults to true; only an explicit false switches the
// conflict pass off.
func highlightConflicts(c *gin.Context) bool {
	return strings.ToLower(c.DefaultQuery("highlightConflicts", "true")) != "false"
}
