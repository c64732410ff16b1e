package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"sjsage522/productscraper/internal/scraper"
	scrapeerrors "sjsage522/productscraper/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Scraper runs a single scrape invocation
type Scraper interface {
	Scrape(ctx context.Context, target scraper.Target, req scraper.FieldRequest) (scraper.Result, error)
}

// Settings holds the configuration the handlers need
type Settings struct {
	AmazonHost   string
	FetchTimeout time.Duration
	FetchMode    string
}

// ScrapeRequest is the body accepted by the scrape and job endpoints
type ScrapeRequest struct {
	ASIN    string          `json:"asin"`
	URL     string          `json:"url"`
	Site    string          `json:"site"`
	Options json.RawMessage `json:"options"`
}

// optionAliases are the toggle names used by the dashboard front end
var optionAliases = map[string]scraper.Field{
	"includeTitle":        scraper.FieldTitle,
	"includePrice":        scraper.FieldPrice,
	"includeImage":        scraper.FieldImage,
	"includeBuyboxWinner": scraper.FieldBuybox,
	"includeSeller":       scraper.FieldSeller,
	"includeBrand":        scraper.FieldBrand,
	"includeLink":         scraper.FieldLink,
}

// parseRequest decodes the body into a target and field request.
// Every failure is a configuration error.
func parseRequest(c *gin.Context, settings Settings) (scraper.Target, scraper.FieldRequest, error) {
	var body ScrapeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return scraper.Target{}, scraper.FieldRequest{}, scrapeerrors.NewInvalidJSON(err)
	}

	identifier := strings.TrimSpace(body.URL)
	if identifier == "" {
		identifier = strings.TrimSpace(body.ASIN)
	}
	if identifier == "" {
		return scraper.Target{}, scraper.FieldRequest{}, scrapeerrors.NewConfiguration("asin or url is required", nil)
	}

	req := scraper.NewFieldRequest()
	if opts := strings.TrimSpace(string(body.Options)); opts != "" && opts != "null" {
		parsed, err := scraper.ParseFieldOptions(body.Options, optionAliases)
		if err != nil {
			return scraper.Target{}, scraper.FieldRequest{}, err
		}
		req = parsed
	}

	target, err := scraper.ResolveTarget(identifier, body.Site, settings.AmazonHost)
	if err != nil {
		return scraper.Target{}, scraper.FieldRequest{}, err
	}
	return target, req, nil
}

// statusFor maps an invocation error onto an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case scrapeerrors.IsType(err, scrapeerrors.ErrorTypeConfiguration):
		return http.StatusBadRequest
	case isFetchStage(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isFetchStage(err error) bool {
	se, ok := scrapeerrors.As(err)
	return ok && se.IsFetchStage()
}

func writeError(c *gin.Context, status int, err error) {
	c.PureJSON(status, scraper.Failure(err).Body())
}
