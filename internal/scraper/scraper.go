package scraper

import (
	"context"
	"time"

	"sjsage522/productscraper/logger"
	scrapeerrors "sjsage522/productscraper/pkg/errors"
)

// Fetcher obtains the raw HTML of a page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Scraper runs one fetch-then-extract invocation per call. It holds no
// per-invocation state and is safe for concurrent use.
type Scraper struct {
	fetcher Fetcher
	log     *logger.Logger
}

// New creates a Scraper on top of a page fetcher
func New(fetcher Fetcher) *Scraper {
	return &Scraper{
		fetcher: fetcher,
		log:     logger.ForScraper(),
	}
}

// Scrape fetches the target page and extracts the requested fields.
// Failures are always *errors.ScrapeError; missing fields are not failures.
func (s *Scraper) Scrape(ctx context.Context, target Target, req FieldRequest) (Result, error) {
	start := time.Now()
	s.log.Debug().
		Str("site", string(target.Site)).
		Str("url", target.URL).
		Stringer("fields", req).
		Msg("Scraping product page")

	html, err := s.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		if _, ok := scrapeerrors.As(err); !ok {
			err = scrapeerrors.NewFetch(target.URL, err)
		}
		s.log.Warn().Err(err).Str("url", target.URL).Msg("Fetch failed")
		return nil, err
	}

	result, err := ExtractHTML(html, req, target.Site, target.URL)
	if err != nil {
		return nil, err
	}

	if missing := len(req.Fields()) - len(result); missing > 0 {
		s.log.Debug().Int("missing", missing).Str("url", target.URL).Msg("Some requested fields were not found")
	}
	s.log.Info().
		Str("site", string(target.Site)).
		Int("fields", len(result)).
		Dur("elapsed", time.Since(start)).
		Msg("Scrape completed")

	return result, nil
}
