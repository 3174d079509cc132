package session

import "errors"

var (
	// ErrLoginInProgress is returned when Login is called while another
	// Login is already in flight. Callers wait for the first to settle.
	ErrLoginInProgress = errors.New("login already in progress")

	// ErrNotAuthenticated is returned by operations that require a
	// signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrCorruptRecord is returned by a Store when the persisted session
	// cannot be decoded. The manager clears the store and continues as
	// signed out.
	ErrCorruptRecord = errors.New("corrupt session record")
)
