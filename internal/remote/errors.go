package remote

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedStatus  = errors.New("unexpected response status")
	ErrMalformedResponse = errors.New("malformed response body")
)

// RequestError is the single failure kind of the remote store client. It covers transport
// failures, non-2xx responses and undecodable bodies.
type RequestError struct {
	Op     string
	Method string
	URL    string
	// StatusCode is zero when no response was received.
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s posts: %s %s: status %d: %v", e.Op, e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s posts: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsRequestFailure reports whether err came from a remote store call.
func IsRequestFailure(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}
