package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linguaschool/admin-api/internal/service"
	appErrors "github.com/linguaschool/admin-api/pkg/errors"
	"github.com/linguaschool/admin-api/pkg/response"
)

// WeeklyAvailabilityHandler edits individual weekly availability slots.
// Whole-grid reads and replacements live on the teacher and student routes.
type WeeklyAvailabilityHandler struct {
	weekly *service.WeeklyAvailabilityService
}

// NewWeeklyAvailabilityHandler constructs a new WeeklyAvailabilityHandler.
func NewWeeklyAvailabilityHandler(weekly *service.WeeklyAvailabilityService) *WeeklyAvailabilityHandler {
	return &WeeklyAvailabilityHandler{weekly: weekly}
}

// UpdateSlot handles PUT /weekly-availability/:id.
func (h *WeeklyAvailabilityHandler) UpdateSlot(c *gin.Context) {
	var req service.WeeklySlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid weekly availability payload"))
		return
	}
	entry, err := h.weekly.UpdateSlot(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// DeleteSlot handles DELETE /weekly-availability/:id.
func (h *WeeklyAvailabilityHandler) DeleteSlot(c *gin.Context) {
	if err := h.weekly.DeleteSlot(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
