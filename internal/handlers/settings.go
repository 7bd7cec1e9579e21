package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/soiree/internal/services"
	"github.com/charlesng35/soiree/pkg/response"
)

type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GET /api/admin/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settings.Get(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// PUT /api/admin/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}
	var req services.SettingsInput
	if !bindAndValidate(c, &req) {
		return
	}

	settings, err := h.settings.Update(requestContext(c), admin, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, settings)
}
