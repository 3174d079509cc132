package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	recordFileName = "session.json"
	lockFileName   = "session.lock"

	dirPerm  = 0o700
	filePerm = 0o600
)

// FileStore persists the session record as JSON under a state directory,
// guarded by a file lock so concurrent processes cannot interleave writes.
type FileStore struct {
	path     string
	lockPath string
}

// NewFileStore creates a store rooted at dir, creating the directory if
// needed. The directory is user-only since the record identifies the account.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("state directory is empty")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &FileStore{
		path:     filepath.Join(dir, recordFileName),
		lockPath: filepath.Join(dir, lockFileName),
	}, nil
}

// Load reads the persisted record. ok is false when none exists.
func (s *FileStore) Load() (Record, bool, error) {
	unlock, err := s.lock()
	if err != nil {
		return Record{}, false, err
	}
	defer unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("reading session record: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, false, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if record.User.ID == "" {
		return Record{}, false, fmt.Errorf("%w: missing user id", ErrCorruptRecord)
	}
	return record, true, nil
}

// Save writes the record atomically: marshal to a temp file in the same
// directory, then rename over the destination.
func (s *FileStore) Save(record Record) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session record: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), recordFileName+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing session record: %w", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting record permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing session record: %w", err)
	}
	return nil
}

// Clear removes the persisted record. Clearing an absent record is a no-op.
func (s *FileStore) Clear() error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session record: %w", err)
	}
	return nil
}

func (s *FileStore) lock() (func(), error) {
	fl := flock.New(s.lockPath)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("locking session store: %w", err)
	}
	return func() { _ = fl.Unlock() }, nil
}
