package scraper

import (
	"encoding/json"
	"io"
)

// Response is either a success result or a failure message, never both
type Response struct {
	result Result
	err    error
}

// Success wraps an extraction result
func Success(result Result) Response {
	if result == nil {
		result = Result{}
	}
	return Response{result: result}
}

// Failure wraps an invocation error
func Failure(err error) Response {
	return Response{err: err}
}

// Failed reports whether the response is the failure variant
func (r Response) Failed() bool {
	return r.err != nil
}

// Err returns the failure cause, if any
func (r Response) Err() error {
	return r.err
}

// Body returns the single object emitted for the response
func (r Response) Body() map[string]string {
	if r.err != nil {
		return map[string]string{"error": r.err.Error()}
	}
	return r.result
}

// ExitCode is 0 for success and 1 for any failure
func (r Response) ExitCode() int {
	if r.err != nil {
		return 1
	}
	return 0
}

// Write emits the response as one JSON object followed by a newline.
// Keys are sorted, so identical results serialize identically.
func (r Response) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(r.Body())
}
