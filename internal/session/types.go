package session

import (
	"time"

	"github.com/plumehq/plume/internal/api"
)

// Role is the authorization level the backend assigned to a user.
type Role string

const (
	// RoleAdmin unlocks the document management views.
	RoleAdmin Role = "admin"
	// RoleUser is the default, least-privileged role.
	RoleUser Role = "user"
)

// ParseRole maps a backend role string to a Role. Unknown values map to
// RoleUser so a malformed or hostile response can never grant privileges.
func ParseRole(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// User is the authenticated account for the current session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Phase describes where the session currently is in its lifecycle.
type Phase int

const (
	// PhaseUnauthenticated means no user is signed in.
	PhaseUnauthenticated Phase = iota
	// PhaseRestoring means Initialize is still reading the persisted record.
	PhaseRestoring
	// PhaseAuthenticating means a Login call is in flight.
	PhaseAuthenticating
	// PhaseAuthenticated means a user is signed in.
	PhaseAuthenticated
)

// String implements fmt.Stringer for log output.
func (p Phase) String() string {
	switch p {
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseRestoring:
		return "restoring"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is a point-in-time snapshot of the session. Snapshots are values;
// mutating one never affects the manager.
type State struct {
	Phase      Phase
	User       User
	Parameters api.Parameters

	// HasParameters reports whether Parameters holds a fetched value.
	// The retrieval settings are loaded best-effort after login, so an
	// authenticated session may not have them yet.
	HasParameters bool

	// Err is the most recent session-level failure (rejected login,
	// unreadable store). Cleared by the next successful operation.
	Err error
}

// Loading reports whether a lifecycle transition is in flight. Views render
// a progress indicator instead of the login form or shell while this is true.
func (s State) Loading() bool {
	return s.Phase == PhaseRestoring || s.Phase == PhaseAuthenticating
}

// Authenticated reports whether a user is signed in.
func (s State) Authenticated() bool {
	return s.Phase == PhaseAuthenticated
}

// Record is the durable form of a session, persisted across restarts.
// Parameters is nil when the retrieval settings were never fetched.
type Record struct {
	User       User            `json:"user"`
	Parameters *api.Parameters `json:"parameters,omitempty"`
	SavedAt    time.Time       `json:"saved_at"`
}
