package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/soiree/internal/services"
	appErrors "github.com/charlesng35/soiree/pkg/errors"
	"github.com/charlesng35/soiree/pkg/response"
)

// maxImportSize caps CSV uploads.
const maxImportSize = 2 << 20

type GuestHandler struct {
	guests *services.GuestService
}

func NewGuestHandler(guests *services.GuestService) *GuestHandler {
	return &GuestHandler{guests: guests}
}

// GET /api/admin/guests
func (h *GuestHandler) List(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}

	guests, err := h.guests.ListGuests(requestContext(c), admin)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, guests, &response.Meta{Total: len(guests)})
}

// POST /api/admin/guests
func (h *GuestHandler) Create(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}

	var req services.GuestInput
	if !bindAndValidate(c, &req) {
		return
	}

	guest, err := h.guests.GenerateInvite(requestContext(c), admin, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, guest)
}

// PUT /api/admin/guests/:id
func (h *GuestHandler) Update(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}

	var req services.GuestInput
	if !bindAndValidate(c, &req) {
		return
	}

	guest, err := h.guests.UpdateGuest(requestContext(c), admin, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, guest)
}

// DELETE /api/admin/guests/:id
func (h *GuestHandler) Delete(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}

	if err := h.guests.DeleteGuest(requestContext(c), admin, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// POST /api/admin/guests/import
//
// Accepts a multipart "file" upload, a form field named "csv", or a raw
// text/csv body.
func (h *GuestHandler) Import(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}

	data, err := readImportPayload(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.guests.ImportCSV(requestContext(c), admin, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func readImportPayload(c *gin.Context) (string, error) {
	contentType := c.ContentType()
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		header, err := c.FormFile("file")
		if err != nil {
			if value := c.PostForm("csv"); value != "" {
				return value, nil
			}
			return "", appErrors.NewBadRequest("CSV file is required")
		}
		file, err := header.Open()
		if err != nil {
			return "", appErrors.NewBadRequest("CSV file is unreadable")
		}
		defer file.Close()
		return readLimited(file)
	case contentType == "application/x-www-form-urlencoded":
		return c.PostForm("csv"), nil
	default:
		return readLimited(c.Request.Body)
	}
}

func readLimited(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImportSize+1))
	if err != nil {
		return "", appErrors.NewBadRequest("CSV body is unreadable")
	}
	if len(data) > maxImportSize {
		return "", appErrors.NewBadRequest("CSV file is too large")
	}
	return string(data), nil
}

// GET /api/admin/guests/export
func (h *GuestHandler) Export(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}

	csv, err := h.guests.ExportCSV(requestContext(c), admin)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="guests.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}

// GET /api/admin/stats
func (h *GuestHandler) Stats(c *gin.Context) {
	admin, ok := currentGuest(c)
	if !ok {
		return
	}

	stats, err := h.guests.Stats(requestContext(c), admin)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}
