package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linguaschool/admin-api/internal/service"
	"github.com/linguaschool/admin-api/pkg/response"
)

// LanguageHandler exposes the language catalogue.
type LanguageHandler struct {
	languages *service.LanguageService
}

// NewLanguageHandler constructs a new LanguageHandler.
func NewLanguageHandler(languages *service.LanguageService) *LanguageHandler {
	return &LanguageHandler{languages: languages}
}

// List handles GET /languages.
func (h *LanguageHandler) List(c *gin.Context) {
	languages, err := h.languages.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, languages, nil)
}

// Get handles GET /languages/:id.
func (h *LanguageHandler) Get(c *gin.Context) {
	language, err := h.languages.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, language, nil)
}
