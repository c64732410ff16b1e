package fetch

import (
	"context"
	"net/http"
	"time"

	"sjsage522/productscraper/helpers"
	"sjsage522/productscraper/logger"
	scrapeerrors "sjsage522/productscraper/pkg/errors"
)

// HTTPFetcher fetches pages with a single GET carrying browser-like headers
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	log       *logger.Logger
}

// NewHTTPFetcher creates an HTTPFetcher. The timeout bounds the whole request.
func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       logger.ForFetcher("http"),
	}
}

// Fetch returns the page HTML. Captcha interstitials fail immediately since
// there is no page to type an answer into.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.log.Debug().Str("url", url).Msg("Fetching page")

	html, err := helpers.FetchWithBrowserHeaders(ctx, f.client, url, f.userAgent)
	if err != nil {
		return "", err
	}

	if _, ok := Detect(html); ok {
		f.log.Warn().Str("url", url).Msg("Captcha challenge detected")
		return "", scrapeerrors.NewCaptcha(url, "captcha challenge encountered", ErrUnsolved)
	}

	f.log.Debug().Str("url", url).Int("bytes", len(html)).Msg("Page fetched")
	return html, nil
}

// Close is a no-op
func (f *HTTPFetcher) Close() error {
	return nil
}
