package handler

import (
	"context"
	"net/http"

	"sjsage522/productscraper/internal/scraper"
	"sjsage522/productscraper/logger"
	"sjsage522/productscraper/services/publisher"

	"github.com/gin-gonic/gin"
)

// Scrape returns a handler for POST /api/scrape.
//
// The response is the same single object the command line prints:
// the found fields on success, {"error": "..."} otherwise.
func Scrape(sc Scraper, pub publisher.Publisher, settings Settings) gin.HandlerFunc {
	log := logger.ForServer()

	return func(c *gin.Context) {
		target, req, err := parseRequest(c, settings)
		if err != nil {
			writeError(c, statusFor(err), err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), settings.FetchTimeout)
		defer cancel()

		result, err := sc.Scrape(ctx, target, req)
		if err != nil {
			writeError(c, statusFor(err), err)
			return
		}

		if pub != nil {
			msg := publisher.ResultMessage{Site: string(target.Site), URL: target.URL, Result: result}
			if pubErr := publisher.PublishResult(c.Request.Context(), pub, msg); pubErr != nil {
				log.Error().Err(pubErr).Str("url", target.URL).Msg("Failed to publish result")
			}
		}

		c.PureJSON(http.StatusOK, scraper.Success(result).Body())
	}
}
