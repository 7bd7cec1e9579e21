package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/soiree/internal/middleware"
	"github.com/charlesng35/soiree/internal/models"
	appErrors "github.com/charlesng35/soiree/pkg/errors"
	"github.com/charlesng35/soiree/pkg/response"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentGuest returns the session guest or writes an Unauthorized response.
func currentGuest(c *gin.Context) (*models.Guest, bool) {
	guest, ok := middleware.GuestFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return guest, true
}
