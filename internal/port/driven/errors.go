package driven

import (
	"errors"
	"fmt"
)

// ErrUnauthorized marks a request rejected because the access token is no
// longer accepted.
var ErrUnauthorized = errors.New("access token rejected")

// IssueError is returned when a credential exchange is answered with a
// failure by the platform.
type IssueError struct {
	StatusCode int
	Message    string
}

func (e *IssueError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("token request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("token request failed with status %d: %s", e.StatusCode, e.Message)
}

// UpstreamStatusError is returned when the platform answers a data request
// with a non-success status.
type UpstreamStatusError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets callers match a 401 with errors.Is(err, ErrUnauthorized).
func (e *UpstreamStatusError) Unwrap() error {
	if e.StatusCode == 401 {
		return ErrUnauthorized
	}
	return nil
}

// UpstreamFormatError is returned when a response body is not the JSON
// document the adapter expects.
type UpstreamFormatError struct {
	Err error
}

func (e *UpstreamFormatError) Error() string {
	return fmt.Sprintf("unexpected upstream response: %v", e.Err)
}

func (e *UpstreamFormatError) Unwrap() error {
	return e.Err
}
