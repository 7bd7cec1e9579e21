package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/soiree/internal/services"
	"github.com/charlesng35/soiree/pkg/response"
)

// CatalogHandler manages events, sub-events and timeline items.
type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /api/admin/events
func (h *CatalogHandler) ListEvents(c *gin.Context) {
	events, err := h.catalog.ListEvents(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, events, &response.Meta{Total: len(events)})
}

// POST /api/admin/events
func (h *CatalogHandler) CreateEvent(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}
	var req services.EventInput
	if !bindAndValidate(c, &req) {
		return
	}

	event, err := h.catalog.CreateEvent(requestContext(c), admin, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, event)
}

// PUT /api/admin/events/:id
func (h *CatalogHandler) UpdateEvent(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}
	var req services.EventInput
	if !bindAndValidate(c, &req) {
		return
	}

	event, err := h.catalog.UpdateEvent(requestContext(c), admin, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, event)
}

// DELETE /api/admin/events/:id
func (h *CatalogHandler) DeleteEvent(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteEvent(requestContext(c), admin, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/admin/subevents
func (h *CatalogHandler) CreateSubEvent(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}
	var req services.SubEventInput
	if !bindAndValidate(c, &req) {
		return
	}

	sub, err := h.catalog.CreateSubEvent(requestContext(c), admin, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, sub)
}

// PUT /api/admin/subevents/:id
func (h *CatalogHandler) UpdateSubEvent(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}
	var req services.SubEventInput
	if !bindAndValidate(c, &req) {
		return
	}

	sub, err := h.catalog.UpdateSubEvent(requestContext(c), admin, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, sub)
}

// DELETE /api/admin/subevents/:id
func (h *CatalogHandler) DeleteSubEvent(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteSubEvent(requestContext(c), admin, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/admin/timeline
func (h *CatalogHandler) ListTimeline(c *gin.Context) {
	items, err := h.catalog.ListTimeline(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, items, &response.Meta{Total: len(items)})
}

// POST /api/admin/timeline
func (h *CatalogHandler) CreateTimelineItem(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}
	var req services.TimelineInput
	if !bindAndValidate(c, &req) {
		return
	}

	item, err := h.catalog.CreateTimelineItem(requestContext(c), admin, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

// PUT /api/admin/timeline/:id
func (h *CatalogHandler) UpdateTimelineItem(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}
	var req services.TimelineInput
	if !bindAndValidate(c, &req) {
		return
	}

	item, err := h.catalog.UpdateTimelineItem(requestContext(c), admin, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// DELETE /api/admin/timeline/:id
func (h *CatalogHandler) DeleteTimelineItem(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteTimelineItem(requestContext(c), admin, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
