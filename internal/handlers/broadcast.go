package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/soiree/internal/services"
	"github.com/charlesng35/soiree/pkg/response"
)

type BroadcastHandler struct {
	broadcast *services.BroadcastService
}

func NewBroadcastHandler(broadcast *services.BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{broadcast: broadcast}
}

// POST /api/admin/broadcast
func (h *BroadcastHandler) Send(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}
	var req services.BulkSMSRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.broadcast.SendBulkSMS(requestContext(c), admin, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
