package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/soiree/internal/services"
	"github.com/charlesng35/soiree/pkg/response"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
	guests    *services.GuestService
}

func NewDashboardHandler(dashboard *services.DashboardService, guests *services.GuestService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, guests: guests}
}

// GET /api/dashboard
func (h *DashboardHandler) Show(c *gin.Context) {
	guest, ok := currentGuest(c)
	if !ok {
		return
	}

	view, err := h.dashboard.Load(requestContext(c), guest)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// PUT /api/rsvp
func (h *DashboardHandler) UpdateRSVP(c *gin.Context) {
	guest, ok := currentGuest(c)
	if !ok {
		return
	}

	var req services.RSVPInput
	if !bindAndValidate(c, &req) {
		return
	}

	updated, err := h.guests.UpdateRSVP(requestContext(c), guest, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, updated)
}
