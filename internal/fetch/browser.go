package fetch

import (
	"context"
	"fmt"
	"sync"

	"sjsage522/productscraper/logger"
	scrapeerrors "sjsage522/productscraper/pkg/errors"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// BrowserOptions configures the automated browser
type BrowserOptions struct {
	// ControlURL connects to a running browser; empty launches a local one
	ControlURL string
	Bin        string
	Headless   bool
	UserAgent  string
}

// BrowserFetcher renders pages in a Chromium instance driven over CDP
type BrowserFetcher struct {
	opts   BrowserOptions
	solver Solver
	log    *logger.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launched bool
}

// NewBrowserFetcher creates a BrowserFetcher. The browser is connected on
// first use so an unreachable backend surfaces as a fetch failure.
func NewBrowserFetcher(opts BrowserOptions, solver Solver) *BrowserFetcher {
	if solver == nil {
		solver = PlaceholderSolver{}
	}
	return &BrowserFetcher{
		opts:   opts,
		solver: solver,
		log:    logger.ForFetcher("browser"),
	}
}

func (f *BrowserFetcher) connect() (*rod.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		return f.browser, nil
	}

	controlURL := f.opts.ControlURL
	launched := false
	if controlURL == "" {
		l := launcher.New().Headless(f.opts.Headless)
		if f.opts.Bin != "" {
			l = l.Bin(f.opts.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		controlURL = u
		launched = true
		f.log.Info().Str("controlURL", controlURL).Msg("Browser launched")
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	f.browser = browser
	f.launched = launched
	return browser, nil
}

// Fetch navigates a fresh page to url, clears a captcha interstitial if one
// appears and returns the rendered HTML.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	browser, err := f.connect()
	if err != nil {
		return "", err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", fmt.Errorf("failed to create page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	p := page.Context(ctx)

	if f.opts.UserAgent != "" {
		if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.opts.UserAgent}); err != nil {
			f.log.Warn().Err(err).Msg("Failed to override user agent")
		}
	}

	f.log.Debug().Str("url", url).Msg("Navigating")
	if err := p.Navigate(url); err != nil {
		return "", fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return "", fmt.Errorf("waiting for %s to load failed: %w", url, err)
	}

	if err := f.clearCaptcha(ctx, p, url); err != nil {
		return "", err
	}

	html, err := p.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to read page HTML: %w", err)
	}
	return html, nil
}

func (f *BrowserFetcher) clearCaptcha(ctx context.Context, p *rod.Page, url string) error {
	has, _, err := p.Has(captchaInputSelector)
	if err != nil {
		return fmt.Errorf("captcha check failed: %w", err)
	}
	if !has {
		return nil
	}

	f.log.Warn().Str("url", url).Msg("Captcha challenge detected")

	var imageURL string
	if found, img, err := p.Has(captchaImageSelector); err == nil && found {
		if src, err := img.Attribute("src"); err == nil && src != nil {
			imageURL = *src
		}
	}

	answer, err := Attempt(ctx, f.solver, imageURL)
	if err != nil {
		return scrapeerrors.NewCaptcha(url, "captcha challenge encountered", err)
	}

	input, err := p.Element(captchaInputSelector)
	if err != nil {
		return scrapeerrors.NewCaptcha(url, "captcha input disappeared", err)
	}
	if err := input.Input(answer); err != nil {
		return scrapeerrors.NewCaptcha(url, "failed to type captcha answer", err)
	}

	submit, err := p.Element(captchaSubmitSelector)
	if err != nil {
		return scrapeerrors.NewCaptcha(url, "captcha submit button not found", err)
	}

	wait := p.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return scrapeerrors.NewCaptcha(url, "failed to submit captcha answer", err)
	}
	wait()

	if still, _, err := p.Has(captchaInputSelector); err == nil && still {
		return scrapeerrors.NewCaptcha(url, "captcha answer rejected", ErrUnsolved)
	}
	f.log.Info().Str("url", url).Msg("Captcha cleared")
	return nil
}

// Close shuts down a locally launched browser. Remote browsers are left running.
func (f *BrowserFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser == nil || !f.launched {
		return nil
	}
	err := f.browser.Close()
	f.browser = nil
	return err
}
