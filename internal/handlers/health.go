package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/soiree/internal/monitoring"
)

// Health reports readiness of every registered dependency. Any failing
// probe turns the response into a 503.
func Health(manager *monitoring.HealthManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := manager.EvaluateReadiness(requestContext(c))
		status := http.StatusOK
		if !report.Success {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	}
}

// Liveness answers as long as the process serves requests.
func Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "status": monitoring.StatusUp})
}
