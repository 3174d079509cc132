package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plumehq/plume/internal/api"
)

func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	record := Record{
		User: User{ID: "usr-123", Email: "user@example.com", Role: RoleUser},
		Parameters: &api.Parameters{
			ModelName:       "mistral-7b",
			AvailableModels: []string{"mistral-7b"},
			TopK:            4,
		},
		SavedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := store.Save(record); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("Load: ok = false after Save")
	}
	if loaded.User != record.User {
		t.Errorf("User = %+v, want %+v", loaded.User, record.User)
	}
	if loaded.Parameters == nil || loaded.Parameters.ModelName != "mistral-7b" {
		t.Errorf("Parameters = %+v", loaded.Parameters)
	}
	if !loaded.SavedAt.Equal(record.SavedAt) {
		t.Errorf("SavedAt = %v, want %v", loaded.SavedAt, record.SavedAt)
	}
}

func TestFileStore_LoadAbsent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Error("Load: ok = true for empty store")
	}
}

func TestFileStore_CorruptRecord(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid json", "{not json"},
		{"missing user id", `{"user":{"email":"user@example.com"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			store, err := NewFileStore(dir)
			if err != nil {
				t.Fatalf("NewFileStore: %v", err)
			}
			path := filepath.Join(dir, "session.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}

			_, _, err = store.Load()
			if !errors.Is(err, ErrCorruptRecord) {
				t.Errorf("Load error = %v, want ErrCorruptRecord", err)
			}
		})
	}
}

func TestFileStore_Clear(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	record := Record{User: User{ID: "usr-123", Role: RoleUser}}
	if err := store.Save(record); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, err := store.Load(); err != nil || ok {
		t.Errorf("after Clear: ok = %v, err = %v, want absent", ok, err)
	}

	// Clearing an already-empty store is a no-op.
	if err := store.Clear(); err != nil {
		t.Errorf("Clear on empty store: %v", err)
	}
}

func TestFileStore_RecordPermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := store.Save(Record{User: User{ID: "usr-123"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "session.json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("record permissions = %o, want 600", perm)
	}
}

func TestNewFileStore_EmptyDir(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Error("expected error for empty state directory")
	}
}
