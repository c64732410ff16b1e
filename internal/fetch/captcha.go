package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	captchaInputSelector  = "#captchacharacters"
	captchaImageSelector  = "div.a-row.a-text-center img"
	captchaSubmitSelector = `button[type="submit"]`

	// PlaceholderAnswer is what the stub solver returns instead of a solution
	PlaceholderAnswer = "PLACEHOLDER"
)

// ErrUnsolved means a captcha challenge could not be answered
var ErrUnsolved = errors.New("captcha not solved")

// Solver answers an image captcha
type Solver interface {
	Solve(ctx context.Context, imageURL string) (string, error)
}

// PlaceholderSolver is the stub solver shipped until a solving service is wired in
type PlaceholderSolver struct{}

// Solve always returns PlaceholderAnswer
func (PlaceholderSolver) Solve(ctx context.Context, imageURL string) (string, error) {
	return PlaceholderAnswer, nil
}

// SolverFunc adapts a function to the Solver interface
type SolverFunc func(ctx context.Context, imageURL string) (string, error)

// Solve calls f
func (f SolverFunc) Solve(ctx context.Context, imageURL string) (string, error) {
	return f(ctx, imageURL)
}

// Challenge describes a detected captcha interstitial
type Challenge struct {
	ImageURL string
}

// Detect reports whether html is a captcha interstitial rather than a product page
func Detect(html string) (Challenge, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Challenge{}, false
	}
	if doc.Find(captchaInputSelector).Length() == 0 {
		return Challenge{}, false
	}

	src, _ := doc.Find(captchaImageSelector).First().Attr("src")
	return Challenge{ImageURL: strings.TrimSpace(src)}, true
}

// Attempt asks solver for an answer. Errors and placeholder, empty or
// "ERROR" answers are all reported as ErrUnsolved.
func Attempt(ctx context.Context, solver Solver, imageURL string) (string, error) {
	if solver == nil {
		return "", ErrUnsolved
	}
	if imageURL == "" {
		return "", fmt.Errorf("%w: no challenge image", ErrUnsolved)
	}

	answer, err := solver.Solve(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsolved, err)
	}

	answer = strings.TrimSpace(answer)
	switch strings.ToUpper(answer) {
	case "", PlaceholderAnswer, "ERROR":
		return "", ErrUnsolved
	}
	return answer, nil
}
