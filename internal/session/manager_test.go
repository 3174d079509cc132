package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/plumehq/plume/internal/api"
	"github.com/plumehq/plume/internal/log"
)

// fakeBackend is a controllable Backend implementation. Authenticate can be
// made to block on release so tests can observe in-flight state.
type fakeBackend struct {
	mu        sync.Mutex
	authCalls int

	identity api.Identity
	authErr  error

	params    api.Parameters
	paramsErr error

	// When non-nil, Authenticate signals started and blocks until release
	// is closed.
	started chan struct{}
	release chan struct{}
}

func (f *fakeBackend) Authenticate(_ context.Context, _, _ string) (api.Identity, error) {
	f.mu.Lock()
	f.authCalls++
	started, release := f.started, f.release
	identity, err := f.identity, f.authErr
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		<-release
	}
	return identity, err
}

func (f *fakeBackend) FetchParameters(_ context.Context, _ string) (api.Parameters, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params, f.paramsErr
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authCalls
}

// memStore is an in-memory Store with injectable failures.
type memStore struct {
	mu     sync.Mutex
	record *Record

	loadErr  error
	saveErr  error
	clearErr error

	saves  int
	clears int
}

func (s *memStore) Load() (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return Record{}, false, s.loadErr
	}
	if s.record == nil {
		return Record{}, false, nil
	}
	return *s.record, true, nil
}

func (s *memStore) Save(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.record = &record
	return nil
}

func (s *memStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	if s.clearErr != nil {
		return s.clearErr
	}
	s.record = nil
	return nil
}

func (s *memStore) stored() *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return nil
	}
	rec := *s.record
	return &rec
}

func newTestManager(backend Backend, store Store) *Manager {
	return NewManager(backend, store, log.NewNop())
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{"user", RoleUser},
		{"", RoleUser},
		{"superadmin", RoleUser},
		{"ADMIN", RoleUser},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInitialize_NoPersistedSession(t *testing.T) {
	m := newTestManager(&fakeBackend{}, &memStore{})

	m.Initialize(context.Background())

	state := m.Snapshot()
	if state.Loading() {
		t.Error("still loading after Initialize")
	}
	if state.Authenticated() {
		t.Error("authenticated with empty store")
	}
	if state.Err != nil {
		t.Errorf("Err = %v, want nil", state.Err)
	}
}

func TestInitialize_RestoresSession(t *testing.T) {
	store := &memStore{record: &Record{
		User:       User{ID: "usr-123", Email: "user@example.com", Role: RoleAdmin},
		Parameters: &api.Parameters{ModelName: "mistral-7b"},
		SavedAt:    time.Now().UTC(),
	}}
	backend := &fakeBackend{paramsErr: errors.New("backend down")}
	m := newTestManager(backend, store)

	m.Initialize(context.Background())

	state := m.Snapshot()
	if !state.Authenticated() {
		t.Fatalf("phase = %v, want authenticated", state.Phase)
	}
	if state.User.ID != "usr-123" || state.User.Role != RoleAdmin {
		t.Errorf("User = %+v", state.User)
	}
	// The backend refresh failed, so the persisted copy survives.
	if !state.HasParameters || state.Parameters.ModelName != "mistral-7b" {
		t.Errorf("Parameters = %+v, HasParameters = %v", state.Parameters, state.HasParameters)
	}
}

func TestInitialize_RefreshesParameters(t *testing.T) {
	store := &memStore{record: &Record{
		User:       User{ID: "usr-123", Role: RoleUser},
		Parameters: &api.Parameters{ModelName: "stale-model"},
	}}
	backend := &fakeBackend{params: api.Parameters{ModelName: "fresh-model"}}
	m := newTestManager(backend, store)

	m.Initialize(context.Background())

	state := m.Snapshot()
	if state.Parameters.ModelName != "fresh-model" {
		t.Errorf("ModelName = %q, want fresh-model", state.Parameters.ModelName)
	}
}

func TestInitialize_CorruptRecordClearedAndSignedOut(t *testing.T) {
	store := &memStore{loadErr: ErrCorruptRecord}
	m := newTestManager(&fakeBackend{}, store)

	m.Initialize(context.Background())

	state := m.Snapshot()
	if state.Loading() {
		t.Error("still loading after Initialize")
	}
	if state.Authenticated() {
		t.Error("authenticated despite corrupt record")
	}
	if state.Err != nil {
		t.Errorf("corrupt record should not surface an error, got %v", state.Err)
	}
	if store.clears != 1 {
		t.Errorf("store clears = %d, want 1", store.clears)
	}
}

func TestLogin_Success(t *testing.T) {
	backend := &fakeBackend{
		identity: api.Identity{UserID: "usr-123", Role: "admin"},
		params:   api.Parameters{ModelName: "mistral-7b", TopK: 4},
	}
	store := &memStore{}
	m := newTestManager(backend, store)

	user, err := m.Login(context.Background(), "admin@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != "usr-123" || user.Role != RoleAdmin || user.Email != "admin@example.com" {
		t.Errorf("user = %+v", user)
	}

	state := m.Snapshot()
	if !state.Authenticated() || state.Loading() {
		t.Errorf("phase = %v after successful login", state.Phase)
	}
	if !state.HasParameters || state.Parameters.TopK != 4 {
		t.Errorf("Parameters = %+v, HasParameters = %v", state.Parameters, state.HasParameters)
	}

	stored := store.stored()
	if stored == nil {
		t.Fatal("session not persisted")
	}
	if stored.User.ID != "usr-123" {
		t.Errorf("persisted user = %+v", stored.User)
	}
	if stored.SavedAt.IsZero() {
		t.Error("persisted record missing SavedAt")
	}
}

func TestLogin_Rejected(t *testing.T) {
	backend := &fakeBackend{authErr: api.ErrInvalidCredentials}
	store := &memStore{}
	m := newTestManager(backend, store)

	_, err := m.Login(context.Background(), "user@example.com", "wrong")
	if !errors.Is(err, api.ErrInvalidCredentials) {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}

	state := m.Snapshot()
	if state.Loading() {
		t.Error("still loading after rejected login")
	}
	if state.Authenticated() {
		t.Error("authenticated after rejected login")
	}
	if !errors.Is(state.Err, api.ErrInvalidCredentials) {
		t.Errorf("State.Err = %v, want the login failure", state.Err)
	}
	if store.stored() != nil {
		t.Error("rejected login must not persist a session")
	}
	if store.clears == 0 {
		t.Error("rejected login must clear the persisted store")
	}
}

func TestLogin_FailureSignsOutRestoredSession(t *testing.T) {
	store := &memStore{record: &Record{
		User:    User{ID: "usr-123", Email: "admin@example.com", Role: RoleAdmin},
		SavedAt: time.Now().UTC(),
	}}
	backend := &fakeBackend{}
	m := newTestManager(backend, store)

	m.Initialize(context.Background())
	if !m.Snapshot().Authenticated() {
		t.Fatal("persisted session should restore")
	}

	backend.mu.Lock()
	backend.authErr = api.ErrInvalidCredentials
	backend.mu.Unlock()

	_, err := m.Login(context.Background(), "admin@example.com", "wrong")
	if !errors.Is(err, api.ErrInvalidCredentials) {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}

	// A failed attempt ends the old session too: no state rollback, and the
	// record on disk is gone so the next start cannot resurrect it.
	state := m.Snapshot()
	if state.Authenticated() {
		t.Errorf("still authenticated after failed login, user = %+v", state.User)
	}
	if state.User != (User{}) {
		t.Errorf("User = %+v after failed login, want zero", state.User)
	}
	if !errors.Is(state.Err, api.ErrInvalidCredentials) {
		t.Errorf("State.Err = %v, want the login failure", state.Err)
	}
	if store.stored() != nil {
		t.Error("persisted session survives a failed login")
	}
}

func TestLogin_ParameterFetchFailureIsNotFatal(t *testing.T) {
	backend := &fakeBackend{
		identity:  api.Identity{UserID: "usr-123", Role: "user"},
		paramsErr: errors.New("parameters unavailable"),
	}
	m := newTestManager(backend, &memStore{})

	if _, err := m.Login(context.Background(), "user@example.com", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	state := m.Snapshot()
	if !state.Authenticated() {
		t.Error("login should succeed without parameters")
	}
	if state.HasParameters {
		t.Error("HasParameters = true despite fetch failure")
	}
}

func TestLogin_PersistFailureKeepsSession(t *testing.T) {
	backend := &fakeBackend{identity: api.Identity{UserID: "usr-123", Role: "user"}}
	store := &memStore{saveErr: errors.New("disk full")}
	m := newTestManager(backend, store)

	if _, err := m.Login(context.Background(), "user@example.com", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !m.Snapshot().Authenticated() {
		t.Error("in-memory session should survive a persist failure")
	}
}

func TestLogin_SingleFlight(t *testing.T) {
	backend := &fakeBackend{
		identity: api.Identity{UserID: "usr-123", Role: "user"},
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	m := newTestManager(backend, &memStore{})

	done := make(chan error, 1)
	go func() {
		_, err := m.Login(context.Background(), "user@example.com", "password123")
		done <- err
	}()

	// Wait until the first login is inside Authenticate.
	<-backend.started

	if !m.Snapshot().Loading() {
		t.Error("expected loading while login is in flight")
	}
	_, err := m.Login(context.Background(), "other@example.com", "password")
	if !errors.Is(err, ErrLoginInProgress) {
		t.Errorf("concurrent login error = %v, want ErrLoginInProgress", err)
	}

	close(backend.release)
	if err := <-done; err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	if backend.calls() != 1 {
		t.Errorf("auth calls = %d, want 1", backend.calls())
	}
	if !m.Snapshot().Authenticated() {
		t.Error("first login should have completed")
	}
}

func TestLogout(t *testing.T) {
	backend := &fakeBackend{identity: api.Identity{UserID: "usr-123", Role: "user"}}
	store := &memStore{}
	m := newTestManager(backend, store)

	if _, err := m.Login(context.Background(), "user@example.com", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	m.Logout()

	state := m.Snapshot()
	if state.Authenticated() || state.Loading() {
		t.Errorf("phase = %v after logout", state.Phase)
	}
	if state.User != (User{}) {
		t.Errorf("User = %+v after logout, want zero", state.User)
	}
	if store.stored() != nil {
		t.Error("persisted record survives logout")
	}

	// Idempotent: a second logout is a no-op.
	m.Logout()
	if store.clears != 2 {
		t.Errorf("store clears = %d, want 2", store.clears)
	}
}

func TestSetParameters(t *testing.T) {
	backend := &fakeBackend{identity: api.Identity{UserID: "usr-123", Role: "user"}}
	store := &memStore{}
	m := newTestManager(backend, store)

	t.Run("requires authentication", func(t *testing.T) {
		err := m.SetParameters(api.Parameters{ModelName: "mistral-7b"})
		if !errors.Is(err, ErrNotAuthenticated) {
			t.Errorf("error = %v, want ErrNotAuthenticated", err)
		}
	})

	if _, err := m.Login(context.Background(), "user@example.com", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	t.Run("updates and persists", func(t *testing.T) {
		params := api.Parameters{ModelName: "llama3.1-8b", TopK: 8}
		if err := m.SetParameters(params); err != nil {
			t.Fatalf("SetParameters: %v", err)
		}

		state := m.Snapshot()
		if state.Parameters.ModelName != "llama3.1-8b" || state.Parameters.TopK != 8 {
			t.Errorf("Parameters = %+v", state.Parameters)
		}

		stored := store.stored()
		if stored == nil || stored.Parameters == nil {
			t.Fatal("parameters not persisted")
		}
		if stored.Parameters.ModelName != "llama3.1-8b" {
			t.Errorf("persisted ModelName = %q", stored.Parameters.ModelName)
		}
	})
}

func TestSnapshot_Detached(t *testing.T) {
	backend := &fakeBackend{
		identity: api.Identity{UserID: "usr-123", Role: "user"},
		params:   api.Parameters{ModelName: "mistral-7b", AvailableModels: []string{"mistral-7b", "llama3.1-8b"}},
	}
	m := newTestManager(backend, &memStore{})
	if _, err := m.Login(context.Background(), "user@example.com", "password123"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	snap := m.Snapshot()
	snap.Parameters.AvailableModels[0] = "mutated"
	snap.User.Role = RoleAdmin

	fresh := m.Snapshot()
	if fresh.Parameters.AvailableModels[0] != "mistral-7b" {
		t.Error("snapshot mutation leaked into the manager")
	}
	if fresh.User.Role != RoleUser {
		t.Error("snapshot user mutation leaked into the manager")
	}
}

func TestSessionSurvivesRestart(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	backend := &fakeBackend{
		identity: api.Identity{UserID: "usr-123", Role: "admin"},
		params:   api.Parameters{ModelName: "mistral-7b"},
	}

	first := newTestManager(backend, store)
	if _, err := first.Login(context.Background(), "admin@example.com", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// A new manager over the same store stands in for a process restart.
	second := newTestManager(backend, store)
	second.Initialize(context.Background())

	state := second.Snapshot()
	if !state.Authenticated() {
		t.Fatal("session not restored after restart")
	}
	if state.User.ID != "usr-123" || state.User.Role != RoleAdmin {
		t.Errorf("restored user = %+v", state.User)
	}

	// Logout on the restored session clears the store for good.
	second.Logout()
	third := newTestManager(backend, store)
	third.Initialize(context.Background())
	if third.Snapshot().Authenticated() {
		t.Error("session restored after logout")
	}
}
