// Package session owns the client-side authentication lifecycle: signing in
// against the backend, persisting the session across restarts, and exposing
// a consistent snapshot of who is signed in to the rest of the program.
package session

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/plumehq/plume/internal/api"
	"github.com/plumehq/plume/internal/log"
)

// Backend is the slice of the API client the session lifecycle needs.
type Backend interface {
	Authenticate(ctx context.Context, email, password string) (api.Identity, error)
	FetchParameters(ctx context.Context, userID string) (api.Parameters, error)
}

// Manager coordinates the session lifecycle. All methods are safe for
// concurrent use; network calls run without the internal lock held so a
// slow backend never blocks Snapshot.
type Manager struct {
	backend Backend
	store   Store
	logger  log.Logger

	mu    sync.Mutex
	state State
}

// NewManager creates a manager in the unauthenticated phase. Call
// Initialize before serving any UI so a persisted session is restored.
func NewManager(backend Backend, store Store, logger log.Logger) *Manager {
	return &Manager{
		backend: backend,
		store:   store,
		logger:  logger,
		state:   State{Phase: PhaseUnauthenticated},
	}
}

// Initialize restores a previously persisted session, if any.
//
// The manager is in PhaseRestoring for the duration and is guaranteed to
// leave it when Initialize returns, whatever happens: a corrupt record is
// cleared and treated as signed out, and any other store failure also
// resolves to signed out. Initialize never returns an error to the caller;
// startup proceeds either way.
//
// When a session is restored, the retrieval settings are refreshed from the
// backend best-effort. A failed refresh keeps the persisted copy, so startup
// works offline.
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	m.state.Phase = PhaseRestoring
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		if m.state.Phase == PhaseRestoring {
			m.state.Phase = PhaseUnauthenticated
		}
		m.mu.Unlock()
	}()

	record, ok, err := m.store.Load()
	if err != nil {
		// Unreadable records are discarded rather than surfaced: the
		// worst case is the user signs in again.
		m.logger.Warn("discarding unreadable session record", "error", err)
		if clearErr := m.store.Clear(); clearErr != nil {
			m.logger.Error("failed to clear session store", "error", clearErr)
		}
		return
	}
	if !ok {
		m.logger.Debug("no persisted session")
		return
	}

	params := record.Parameters
	if fresh, fetchErr := m.backend.FetchParameters(ctx, record.User.ID); fetchErr == nil {
		params = &fresh
	} else {
		m.logger.Debug("parameter refresh failed, keeping persisted copy",
			"user_id", record.User.ID, "error", fetchErr)
	}

	m.mu.Lock()
	m.state.Phase = PhaseAuthenticated
	m.state.User = record.User
	if params != nil {
		m.state.Parameters = *params
		m.state.HasParameters = true
	}
	m.state.Err = nil
	m.mu.Unlock()

	m.logger.Info("session restored",
		"user_id", record.User.ID,
		"role", record.User.Role,
		"saved_at", record.SavedAt)
}

// Login authenticates against the backend and, on success, persists the
// session and moves to PhaseAuthenticated.
//
// Only one Login may be in flight at a time; a concurrent call fails fast
// with ErrLoginInProgress. A rejected or failed login signs the user out
// completely: the in-memory state is zeroed (keeping the failure in
// State.Err) and the persisted record is cleared, so a stale session can
// never outlive a failed attempt.
//
// The retrieval settings fetch after a successful login is best-effort: a
// failure leaves HasParameters false but the login still succeeds.
func (m *Manager) Login(ctx context.Context, email, password string) (User, error) {
	m.mu.Lock()
	if m.state.Phase == PhaseAuthenticating {
		m.mu.Unlock()
		return User{}, ErrLoginInProgress
	}
	m.state.Phase = PhaseAuthenticating
	m.state.Err = nil
	m.mu.Unlock()

	identity, err := m.backend.Authenticate(ctx, email, password)
	if err != nil {
		err = fmt.Errorf("login: %w", err)
		m.mu.Lock()
		m.state = State{Phase: PhaseUnauthenticated, Err: err}
		m.mu.Unlock()
		if clearErr := m.store.Clear(); clearErr != nil {
			m.logger.Error("failed to clear session store", "error", clearErr)
		}
		m.logger.Warn("login failed", "email", email, "error", err)
		return User{}, err
	}

	user := User{
		ID:    identity.UserID,
		Email: email,
		Role:  ParseRole(identity.Role),
	}

	var params *api.Parameters
	if fetched, fetchErr := m.backend.FetchParameters(ctx, user.ID); fetchErr == nil {
		params = &fetched
	} else {
		m.logger.Warn("parameter fetch after login failed",
			"user_id", user.ID, "error", fetchErr)
	}

	record := Record{User: user, Parameters: params, SavedAt: time.Now().UTC()}
	if saveErr := m.store.Save(record); saveErr != nil {
		// The in-memory session is still valid; only persistence across
		// restarts is lost.
		m.logger.Error("failed to persist session", "error", saveErr)
	}

	m.mu.Lock()
	m.state = State{Phase: PhaseAuthenticated, User: user}
	if params != nil {
		m.state.Parameters = *params
		m.state.HasParameters = true
	}
	m.mu.Unlock()

	m.logger.Info("logged in", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Logout signs the user out synchronously. It is idempotent: calling it
// while signed out is a no-op. The persisted record is cleared best-effort;
// the in-memory state is always reset.
func (m *Manager) Logout() {
	m.mu.Lock()
	wasAuthenticated := m.state.Phase == PhaseAuthenticated
	userID := m.state.User.ID
	m.state = State{Phase: PhaseUnauthenticated}
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.logger.Error("failed to clear session store", "error", err)
	}
	if wasAuthenticated {
		m.logger.Info("logged out", "user_id", userID)
	}
}

// SetParameters replaces the cached retrieval settings and persists them
// alongside the session record. The backend update itself is the caller's
// responsibility; call this after the backend accepted the new values.
func (m *Manager) SetParameters(params api.Parameters) error {
	m.mu.Lock()
	if m.state.Phase != PhaseAuthenticated {
		m.mu.Unlock()
		return ErrNotAuthenticated
	}
	m.state.Parameters = params
	m.state.HasParameters = true
	user := m.state.User
	m.mu.Unlock()

	record := Record{User: user, Parameters: &params, SavedAt: time.Now().UTC()}
	if err := m.store.Save(record); err != nil {
		return fmt.Errorf("persisting parameters: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current session state. The copy is
// detached: mutating it, including its model list, does not affect the
// manager.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := m.state
	state.Parameters.AvailableModels = slices.Clone(state.Parameters.AvailableModels)
	return state
}
