package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, hsts := range []bool{false, true} {
		r := gin.New()
		r.Use(SecurityHeaders(hsts))
		r.GET("/invite/:code", func(c *gin.Context) { c.Redirect(http.StatusFound, "/dashboard") })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invite/ABC123", nil))

		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
		require.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		require.Equal(t, ContentSecurityPolicy, w.Header().Get("Content-Security-Policy"))
		if hsts {
			require.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=31536000")
		} else {
			require.Empty(t, w.Header().Get("Strict-Transport-Security"))
		}
	}
}
