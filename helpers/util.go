package helpers

import (
	"net/url"
	"regexp"
	"strings"
)

var asinPattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// IsASIN reports whether s is a well-formed Amazon standard identification number
func IsASIN(s string) bool {
	return asinPattern.MatchString(s)
}

// ParseHTTPURL returns the parsed URL when s is an absolute http(s) URL
func ParseHTTPURL(s string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	return u, true
}

// CollapseSpace trims s and folds every internal whitespace run into one space
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
