package fetch

import (
	"context"
	"fmt"

	"sjsage522/productscraper/config"
)

// Fetcher turns a page URL into HTML text
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Close() error
}

// New returns the fetcher selected by cfg.FetchMode
func New(cfg *config.Config, solver Solver) (Fetcher, error) {
	switch cfg.FetchMode {
	case config.FetchModeHTTP:
		return NewHTTPFetcher(cfg.UserAgent, cfg.FetchTimeout), nil
	case config.FetchModeBrowser:
		return NewBrowserFetcher(BrowserOptions{
			ControlURL: cfg.BrowserWS,
			Bin:        cfg.BrowserBin,
			Headless:   cfg.BrowserHeadless,
			UserAgent:  cfg.UserAgent,
		}, solver), nil
	default:
		return nil, fmt.Errorf("unsupported fetch mode %q", cfg.FetchMode)
	}
}
