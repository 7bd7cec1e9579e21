package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/soiree/internal/services"
	"github.com/charlesng35/soiree/pkg/response"
)

type InviteHandler struct {
	invites *services.InviteService
}

func NewInviteHandler(invites *services.InviteService) *InviteHandler {
	return &InviteHandler{invites: invites}
}

// GET /api/invites
func (h *InviteHandler) List(c *gin.Context) {
	guest, ok := currentGuest(c)
	if !ok {
		return
	}

	invitees, err := h.invites.ListInvitees(requestContext(c), guest)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, invitees, &response.Meta{Total: len(invitees)})
}

// POST /api/invites
func (h *InviteHandler) Create(c *gin.Context) {
	guest, ok := currentGuest(c)
	if !ok {
		return
	}

	var req services.InviteInput
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.invites.InviteFriend(requestContext(c), guest, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// PUT /api/invites/:id
func (h *InviteHandler) Update(c *gin.Context) {
	guest, ok := currentGuest(c)
	if !ok {
		return
	}

	var req services.InviteInput
	if !bindAndValidate(c, &req) {
		return
	}

	updated, err := h.invites.UpdateInvite(requestContext(c), guest, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, updated)
}

// DELETE /api/invites/:id
func (h *InviteHandler) Delete(c *gin.Context) {
	guest, ok := currentGuest(c)
	if !ok {
		return
	}

	if err := h.invites.DeleteInvite(requestContext(c), guest, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/invites/:id/qr?size=256
func (h *InviteHandler) QR(c *gin.Context) {
	guest, ok := currentGuest(c)
	if !ok {
		return
	}

	png, err := h.invites.InviteQR(requestContext(c), guest, c.Param("id"), parseIntQuery(c, "size", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}
