package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linguaschool/admin-api/internal/service"
	appErrors "github.com/linguaschool/admin-api/pkg/errors"
	"github.com/linguaschool/admin-api/pkg/response"
)

// UnavailabilityHandler manages per-date teacher unavailability routes.
type UnavailabilityHandler struct {
	blocks *service.UnavailabilityService
}

// NewUnavailabilityHandler constructs a new UnavailabilityHandler.
func NewUnavailabilityHandler(blocks *service.UnavailabilityService) *UnavailabilityHandler {
	return &UnavailabilityHandler{blocks: blocks}
}

// List handles GET /unavailability. An optional teacherId query narrows the
// result to one teacher.
func (h *UnavailabilityHandler) List(c *gin.Context) {
	blocks, err := h.blocks.List(c.Request.Context(), c.Query("teacherId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blocks, nil)
}

// ListForTeacher handles GET /teachers/:id/unavailability.
func (h *UnavailabilityHandler) ListForTeacher(c *gin.Context) {
	blocks, err := h.blocks.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blocks, nil)
}

// Create handles POST /unavailability.
func (h *UnavailabilityHandler) Create(c *gin.Context) {
	var req service.CreateUnavailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid unavailability payload"))
		return
	}
	block, err := h.blocks.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, block)
}

// Delete handles DELETE /unavailability/:id.
func (h *UnavailabilityHandler) Delete(c *gin.Context) {
	if err := h.blocks.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteByTeacherAndDate handles DELETE /unavailability. Marking forms clear
// a day by teacher and date instead of by block id.
func (h *UnavailabilityHandler) DeleteByTeacherAndDate(c *gin.Context) {
	teacherID := c.Query("teacherId")
	date := c.Query("date")
	if teacherID == "" || date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "teacherId and date are required"))
		return
	}
	if err := h.blocks.DeleteByTeacherAndDate(c.Request.Context(), teacherID, date); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
