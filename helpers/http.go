package helpers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html/charset"
)

// Upper bound on a product page body.
const maxBodyBytes = 10 << 20

// FetchWithBrowserHeaders sends an HTTP GET request with browser-like headers
// and returns the body converted to UTF-8. Any non-2xx status is an error.
func FetchWithBrowserHeaders(ctx context.Context, client *http.Client, url, userAgent string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s unexpected status code: %d", url, resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return DecodeUTF8(bodyBytes, resp.Header.Get("Content-Type"))
}

// DecodeUTF8 converts body to UTF-8 based on the Content-Type header and the
// document's own meta declarations.
func DecodeUTF8(body []byte, contentType string) (string, error) {
	encoding, name, _ := charset.DetermineEncoding(body, contentType)
	if strings.EqualFold(name, "utf-8") {
		return string(body), nil
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, encoding.NewDecoder().Reader(bytes.NewReader(body))); err != nil {
		return "", fmt.Errorf("failed to read converted UTF-8 body: %w", err)
	}
	return buf.String(), nil
}
