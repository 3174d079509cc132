package session

// Store persists the session record across process restarts.
//
// Load returns ok=false when no record exists; a decode failure is reported
// as an error wrapping ErrCorruptRecord so callers can distinguish "nothing
// saved" from "saved but unreadable".
type Store interface {
	Load() (record Record, ok bool, err error)
	Save(record Record) error
	Clear() error
}
