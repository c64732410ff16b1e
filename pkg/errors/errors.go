package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration represents undecodable options or bad invocation arguments
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeFetch represents transport failures while fetching the page
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeCaptcha represents a captcha interstitial that could not be solved
	ErrorTypeCaptcha ErrorType = "captcha"
	// ErrorTypeParsing represents HTML that could not be read at all
	ErrorTypeParsing ErrorType = "parsing"
)

// ScrapeError is the failure variant of an invocation.
// Missing fields are never reported through it.
type ScrapeError struct {
	Type    ErrorType
	Target  string
	Message string
	Err     error
	Time    time.Time
}

// Error returns the human-readable message emitted in the error object.
// Fetch errors without a message surface the transport error verbatim.
func (e *ScrapeError) Error() string {
	switch {
	case e.Message == "" && e.Err != nil:
		return e.Err.Error()
	case e.Message == "":
		return string(e.Type) + " error"
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// IsFetchStage reports whether the error happened while obtaining the page
func (e *ScrapeError) IsFetchStage() bool {
	return e.Type == ErrorTypeFetch || e.Type == ErrorTypeCaptcha
}

// New creates a new ScrapeError
func New(errType ErrorType, target, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Target:  target,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// NewInvalidJSON creates the configuration error reported for undecodable options
func NewInvalidJSON(err error) *ScrapeError {
	return NewConfiguration("Invalid JSON", err)
}

// NewFetch creates a new fetch error carrying the transport error verbatim
func NewFetch(target string, err error) *ScrapeError {
	return New(ErrorTypeFetch, target, "", err)
}

// NewCaptcha creates a new captcha error
func NewCaptcha(target, message string, err error) *ScrapeError {
	return New(ErrorTypeCaptcha, target, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(target, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, target, message, err)
}

// As returns the ScrapeError in err's chain, if any
func As(err error) (*ScrapeError, bool) {
	var se *ScrapeError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsType reports whether err carries a ScrapeError of the given type
func IsType(err error, errType ErrorType) bool {
	se, ok := As(err)
	return ok && se.Type == errType
}
