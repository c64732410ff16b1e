package middleware

import (
	"time"

	"sjsage522/productscraper/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request through the server logger
func RequestLogger() gin.HandlerFunc {
	log := logger.ForServer()

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= 500 {
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("Request handled")
	}
}
