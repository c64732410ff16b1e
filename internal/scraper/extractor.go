package scraper

import (
	"strings"

	scrapeerrors "sjsage522/productscraper/pkg/errors"

	"github.com/PuerkitoBio/goquery"
)

// Extract resolves every requested field against doc using the site's
// selector table. Fields without a rule or without a match are omitted;
// link is the supplied URL and never reads the document.
func Extract(doc *goquery.Document, req FieldRequest, site Site, link string) Result {
	result := make(Result)
	for _, field := range req.Fields() {
		if field == FieldLink {
			if link != "" {
				result[string(FieldLink)] = link
			}
			continue
		}

		rule, ok := RuleFor(site, field)
		if !ok || doc == nil {
			continue
		}
		if value, found := rule.Resolve(doc.Selection); found {
			result[string(field)] = value
		}
	}
	return result
}

// ExtractHTML parses html and extracts the requested fields. Malformed markup
// still yields a best-effort tree; only a reader failure is an error.
func ExtractHTML(html string, req FieldRequest, site Site, link string) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, scrapeerrors.NewParsing(link, "failed to parse HTML", err)
	}
	return Extract(doc, req, site, link), nil
}
