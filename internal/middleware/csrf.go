package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/soiree/pkg/crypto"
	"github.com/charlesng35/soiree/pkg/errors"
	"github.com/charlesng35/soiree/pkg/logger"
	"github.com/charlesng35/soiree/pkg/response"
)

const (
	// CSRFCookieName carries the double-submit token readable by the dashboard script.
	CSRFCookieName = "soiree_csrf"
	// CSRFHeaderName must echo the cookie on mutating requests.
	CSRFHeaderName = "X-CSRF-Token"

	csrfTokenLength = 32
	csrfCookieTTL   = 24 * 60 * 60
)

// CSRF guards cookie-authenticated mutations with a double-submit token.
// Reads receive the token in a cookie and a response header; POST, PUT,
// PATCH and DELETE must send it back in X-CSRF-Token. forceSecure marks the
// cookie Secure even when TLS terminates at a proxy that omits
// X-Forwarded-Proto.
func CSRF(forceSecure bool) gin.HandlerFunc {
	log := logger.WithModule("csrf")

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token, err := csrfToken(c, forceSecure)
		if err != nil {
			response.Error(c, errors.ErrInternalServer.WithInternal(err))
			c.Abort()
			return
		}

		if !mutates(c.Request.Method) {
			c.Header(CSRFHeaderName, token)
			c.Next()
			return
		}

		sent := strings.TrimSpace(c.GetHeader(CSRFHeaderName))
		if sent == "" || !crypto.Equal(token, sent) {
			log.Warn("csrf token rejected",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Bool("header_present", sent != ""),
			)
			response.Error(c, errors.ErrCSRFInvalid)
			c.Abort()
			return
		}
		c.Next()
	}
}

// csrfToken returns the token from the request cookie, minting one when absent,
// and refreshes the cookie either way.
func csrfToken(c *gin.Context, forceSecure bool) (string, error) {
	token, err := c.Cookie(CSRFCookieName)
	if err != nil || token == "" {
		token, err = crypto.GenerateToken(csrfTokenLength)
		if err != nil {
			return "", err
		}
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   csrfCookieTTL,
		Secure:   forceSecure || requestIsHTTPS(c.Request),
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

func requestIsHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func mutates(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
