package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrapeErrorMessage(t *testing.T) {
	transport := stderrors.New("Get \"https://www.amazon.eg/dp/B08N5WRWNW\": dial tcp: lookup failed")

	testCases := []struct {
		name     string
		err      *ScrapeError
		expected string
	}{
		{
			name:     "fetch error is verbatim",
			err:      NewFetch("https://www.amazon.eg/dp/B08N5WRWNW", transport),
			expected: transport.Error(),
		},
		{
			name:     "invalid json",
			err:      NewInvalidJSON(stderrors.New("invalid character 'o' in literal null (expecting 'u')")),
			expected: "Invalid JSON: invalid character 'o' in literal null (expecting 'u')",
		},
		{
			name:     "message only",
			err:      NewConfiguration("usage: productscraper <identifier> '<options_json>'", nil),
			expected: "usage: productscraper <identifier> '<options_json>'",
		},
		{
			name:     "empty",
			err:      New(ErrorTypeParsing, "", "", nil),
			expected: "parsing error",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestScrapeErrorUnwrapAndType(t *testing.T) {
	transport := stderrors.New("connection refused")
	wrapped := fmt.Errorf("scrape: %w", NewFetch("https://example.com", transport))

	assert.True(t, stderrors.Is(wrapped, transport))
	assert.True(t, IsType(wrapped, ErrorTypeFetch))
	assert.False(t, IsType(wrapped, ErrorTypeConfiguration))
	assert.False(t, IsType(transport, ErrorTypeFetch))

	se, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", se.Target)
	assert.True(t, se.IsFetchStage())
	assert.False(t, se.Time.IsZero())

	assert.True(t, NewCaptcha("u", "captcha not solved", nil).IsFetchStage())
	assert.False(t, NewParsing("u", "bad", nil).IsFetchStage())
}
