package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaschool/admin-api/internal/agenda"
)

type calendarServiceMock struct {
	agendaResp    []agenda.Item
	agendaErr     error
	markersResp   agenda.DayMarkers
	markersErr    error
	lastDate      string
	lastFilter    agenda.Filter
	lastHighlight bool
}

func (m *calendarServiceMock) Agenda(ctx context.Context, date string, filter agenda.Filter, highlightConflicts bool) ([]agenda.Item, error) {
	m.lastDate = date
	m.lastFilter = filter
	m.lastHighlight = highlightConflicts
	return m.agendaResp, m.agendaErr
}

func (m *calendarServiceMock) DayMarkers(ctx context.Context, filter agenda.Filter, highlightConflicts bool) (agenda.DayMarkers, error) {
	m.lastFilter = filter
	m.lastHighlight = highlightConflicts
	return m.markersResp, m.markersErr
}

func TestCalendarHandlerAgenda(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &calendarServiceMock{
		agendaResp: []agenda.Item{{ID: "u1", Kind: agenda.ItemUnavailable, StartTime: "All Day"}},
	}
	handler := NewCalendarHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/calendar/agenda?date=2025-06-10&teacherId=t1", nil)
	c.Request = req

	handler.Agenda(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-06-10", mockSvc.lastDate)
	assert.Equal(t, "t1", mockSvc.lastFilter.TeacherID)
	assert.True(t, mockSvc.lastHighlight, "conflict highlighting defaults on")

	var body struct {
		Data struct {
			Items []agenda.Item `json:"items"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Items, 1)
	assert.Equal(t, "All Day", body.Data.Items[0].StartTime)
}

func TestCalendarHandlerAgendaRequiresDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewCalendarHandler(&calendarServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/calendar/agenda", nil)
	c.Request = req

	handler.Agenda(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalendarHandlerAgendaHighlightOff(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &calendarServiceMock{}
	handler := NewCalendarHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/calendar/agenda?date=2025-06-10&highlightConflicts=false", nil)
	c.Request = req

	handler.Agenda(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, mockSvc.lastHighlight)
}

func TestCalendarHandlerDaysFormatsDates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	day := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	mockSvc := &calendarServiceMock{
		markersResp: agenda.DayMarkers{
			EventDays:       []time.Time{day},
			UnavailableDays: []time.Time{day},
			ConflictDays:    []time.Time{day},
		},
	}
	handler := NewCalendarHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/calendar/days?languageId=l1", nil)
	c.Request = req

	handler.Days(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "l1", mockSvc.lastFilter.LanguageID)

	var body struct {
		Data struct {
			EventDays    []string `json:"eventDays"`
			ConflictDays []string `json:"conflictDays"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"2025-06-10"}, body.Data.EventDays)
	assert.Equal(t, []string{"2025-06-10"}, body.Data.ConflictDays)
}
