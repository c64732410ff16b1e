package scraper

import (
	"sjsage522/productscraper/helpers"

	"github.com/PuerkitoBio/goquery"
)

// Resolve tries each strategy in order and returns the first non-empty value
func (r Rule) Resolve(doc *goquery.Selection) (string, bool) {
	for _, s := range r {
		if v := s.apply(doc); v != "" {
			return v, true
		}
	}
	return "", false
}

// apply reads the first matched element only. A missing attribute yields ""
// so the caller falls through to the next strategy.
func (s Strategy) apply(doc *goquery.Selection) string {
	if s.matcher == nil || doc == nil {
		return ""
	}

	el := doc.FindMatcher(s.matcher)
	if el.Length() == 0 {
		return ""
	}

	var raw string
	if s.Attr != "" {
		v, exists := el.Attr(s.Attr)
		if !exists {
			return ""
		}
		raw = v
	} else {
		raw = el.Text()
	}

	value := helpers.CollapseSpace(raw)
	if s.Clean != nil && value != "" {
		value = helpers.CollapseSpace(s.Clean(value))
	}
	return value
}
