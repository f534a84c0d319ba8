package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstream matches any *UpstreamError via errors.Is.
	ErrUpstream = errors.New("upstream weather service error")

	// ErrEmptyForecast is returned when the forecast call succeeds but
	// carries no periods. Callers must not summarize in that case.
	ErrEmptyForecast = errors.New("forecast returned no periods")
)

// UpstreamError reports a required call to the weather service that failed,
// either with a non-success status or a response missing expected fields.
type UpstreamError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.URL)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
