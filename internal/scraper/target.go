package scraper

import (
	"fmt"
	"strings"

	"sjsage522/productscraper/helpers"
	scrapeerrors "sjsage522/productscraper/pkg/errors"

	"golang.org/x/net/publicsuffix"
)

// Target is a resolved page address together with its layout
type Target struct {
	Site       Site
	URL        string
	Identifier string
}

// ResolveTarget turns a caller identifier (ASIN or product URL) and an
// optional explicit site into the page to fetch.
func ResolveTarget(identifier, site, amazonHost string) (Target, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return Target{}, scrapeerrors.NewConfiguration("missing product identifier or URL", nil)
	}

	explicit := Site(strings.ToLower(strings.TrimSpace(site)))
	if explicit != "" && !IsSupported(explicit) {
		return Target{}, scrapeerrors.NewConfiguration(fmt.Sprintf("unsupported site %q", site), nil)
	}

	if u, ok := helpers.ParseHTTPURL(identifier); ok {
		detected := explicit
		if detected == "" {
			detected = siteForHost(u.Hostname())
		}
		if detected == "" {
			return Target{}, scrapeerrors.NewConfiguration(fmt.Sprintf("unsupported site %q", u.Hostname()), nil)
		}
		return Target{Site: detected, URL: identifier, Identifier: identifier}, nil
	}

	if explicit == SiteNoon {
		return Target{}, scrapeerrors.NewConfiguration("noon requires a product URL", nil)
	}
	if !helpers.IsASIN(identifier) {
		return Target{}, scrapeerrors.NewConfiguration(fmt.Sprintf("invalid ASIN %q", identifier), nil)
	}

	return Target{
		Site:       SiteAmazon,
		URL:        AmazonProductURL(amazonHost, identifier),
		Identifier: identifier,
	}, nil
}

// AmazonProductURL builds the canonical detail page URL for an ASIN
func AmazonProductURL(host, asin string) string {
	return fmt.Sprintf("https://%s/dp/%s", host, asin)
}

// siteForHost classifies a host by the first label of its registrable domain,
// so amazon.co.uk is amazon but amazon.eg.example.com is not.
func siteForHost(host string) Site {
	domain, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(strings.TrimSuffix(host, ".")))
	if err != nil {
		return ""
	}
	label, _, _ := strings.Cut(domain, ".")
	switch label {
	case "amazon":
		return SiteAmazon
	case "noon":
		return SiteNoon
	}
	return ""
}
