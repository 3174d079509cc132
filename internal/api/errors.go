package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for backend operations.
// These errors are part of the client's public API and should be checked
// using errors.Is().
var (
	// ErrInvalidCredentials indicates the backend rejected the login, or
	// returned a success status without the expected user id.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMalformedResponse indicates a 2xx response whose body could not be
	// decoded as the expected JSON shape.
	ErrMalformedResponse = errors.New("malformed backend response")

	// ErrUnsupportedFile indicates an upload with a file type the ingestion
	// pipeline cannot index.
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// StatusError reports a non-2xx backend response.
type StatusError struct {
	// Code is the HTTP status code.
	Code int
	// Body is the backend-provided error message, if any.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned status %d", e.Code)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Code, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
