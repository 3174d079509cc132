// Package testutil provides shared test helpers, most importantly an
// in-memory fake of the retrieval backend.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Account is a credential entry known to the fake backend.
type Account struct {
	Password string
	UserID   string
	Role     string
}

// Backend is an httptest-based fake of the retrieval service.
//
// Zero-configuration usage covers the happy path; failure modes are opted
// into per test via the exported knobs. All fields must be set before the
// first request; counters may be read at any time via the accessor methods.
type Backend struct {
	Server *httptest.Server

	mu sync.Mutex

	// Accounts maps email to credentials. Configure before use.
	Accounts map[string]Account

	// Parameters returned by /parameters/get, keyed by user id.
	Parameters map[string]map[string]any

	// Collections, Tags and Documents back the document endpoints.
	Collections []string
	Tags        []string
	Documents   []map[string]any

	// History entries returned by /history/get.
	History []map[string]any

	// QueryAnswer is returned for every /query call.
	QueryAnswer string

	// AuthStatus overrides the login response status (0 = normal behavior).
	AuthStatus int
	// ParametersStatus overrides /parameters/get (0 = normal behavior).
	ParametersStatus int

	authCalls       int
	parametersCalls int
	queryCalls      int
}

// NewBackend starts a fake backend with one known account
// (user@example.com / password123 → usr-123, role "user").
// Callers must Close() it.
func NewBackend() *Backend {
	b := &Backend{
		Accounts: map[string]Account{
			"user@example.com": {Password: "password123", UserID: "usr-123", Role: "user"},
		},
		Parameters: map[string]map[string]any{
			"usr-123": {
				"model_name":           "mistral-7b",
				"available_models":     []string{"mistral-7b", "llama3.1-8b"},
				"chunk_size":           512,
				"chunk_overlap":        64,
				"similarity_threshold": 0.75,
				"k":                    4,
				"prompt_template":      "Answer using only the provided context.",
			},
		},
		QueryAnswer: "The answer is 42.",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.handleLogin)
	mux.HandleFunc("GET /parameters/get", b.handleParameters)
	mux.HandleFunc("POST /parameters/update", b.handleOK)
	mux.HandleFunc("POST /query", b.handleQuery)
	mux.HandleFunc("GET /collection/get", b.handleCollections)
	mux.HandleFunc("POST /collection/create", b.handleOK)
	mux.HandleFunc("GET /document/get_tags", b.handleTags)
	mux.HandleFunc("GET /document/get", b.handleDocuments)
	mux.HandleFunc("GET /document/get_by_tag", b.handleDocuments)
	mux.HandleFunc("POST /document/add", b.handleOK)
	mux.HandleFunc("POST /document/add_zip", b.handleOK)
	mux.HandleFunc("DELETE /document/delete", b.handleOK)
	mux.HandleFunc("DELETE /document/delete_by_tag", b.handleOK)
	mux.HandleFunc("GET /history/get", b.handleHistory)

	b.Server = httptest.NewServer(mux)
	return b
}

// URL returns the fake backend's base URL.
func (b *Backend) URL() string {
	return b.Server.URL
}

// Close shuts the fake backend down.
func (b *Backend) Close() {
	b.Server.Close()
}

// AuthCalls returns how many login requests were received.
func (b *Backend) AuthCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.authCalls
}

// ParametersCalls returns how many parameter fetches were received.
func (b *Backend) ParametersCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.parametersCalls
}

// QueryCalls returns how many queries were received.
func (b *Backend) QueryCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queryCalls
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.authCalls++
	status := b.AuthStatus
	b.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, map[string]any{"error": "forced auth failure"})
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad request"})
		return
	}

	account, ok := b.Accounts[req.Email]
	if !ok || account.Password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":   account.UserID,
		"user_role": account.Role,
	})
}

func (b *Backend) handleParameters(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.parametersCalls++
	status := b.ParametersStatus
	b.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, map[string]any{"error": "forced parameters failure"})
		return
	}

	params, ok := b.Parameters[r.URL.Query().Get("user_id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown user"})
		return
	}
	writeJSON(w, http.StatusOK, params)
}

func (b *Backend) handleQuery(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	b.queryCalls++
	answer := b.QueryAnswer
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"answer": answer,
		"sources": []map[string]any{
			{"source": "guide.pdf", "collection": "default", "page": 3},
		},
	})
}

func (b *Backend) handleCollections(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	collections := b.Collections
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"collections": collections})
}

func (b *Backend) handleTags(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	tags := b.Tags
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

func (b *Backend) handleDocuments(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	documents := b.Documents
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"documents": documents})
}

func (b *Backend) handleHistory(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	history := b.History
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (b *Backend) handleOK(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
