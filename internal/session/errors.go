package session

import "fmt"

// ConnectionError reports that the streaming connection could not be established.
// It is fatal; no reconnect is attempted.
type ConnectionError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.URL, e.Err)
}

// Unwrap returns the original error for error chain inspection.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// RequestError reports a failure of the work done over an established connection.
type RequestError struct {
	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

// Unwrap returns the original error for error chain inspection.
func (e *RequestError) Unwrap() error {
	return e.Err
}
