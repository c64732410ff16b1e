package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health returns a handler for GET /api/health.
func Health(settings Settings, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"fetch_mode": settings.FetchMode,
			"uptime":     time.Since(startTime).Round(time.Second).String(),
		})
	}
}
