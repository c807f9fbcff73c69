package session

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/crateful/unbox/internal/domain"
)

var (
	// ErrSessionUnavailable is returned for any id that is not the
	// currently active session, including ids superseded by a later
	// extraction.
	ErrSessionUnavailable = errors.New("session no longer available")

	// ErrNoPayload is returned for entries that carry no fetchable data,
	// such as directories.
	ErrNoPayload = errors.New("entry has no payload")

	errEntryNotFound = errors.New("entry not found in session")
)

type active struct {
	id      string
	engine  string
	entries map[string]*domain.Entry
	fetch   func(path string) ([]byte, error)
	cleanup func()
}

// Manager tracks the single live extraction session. Opening a new session
// always releases the previous one first, and session ids are never reused.
type Manager struct {
	mu      sync.Mutex
	current *active
}

func NewManager() *Manager {
	return &Manager{}
}

// Open takes ownership of a successful attempt and returns the fresh
// session id.
func (m *Manager) Open(attempt *domain.Attempt, engine string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.releaseLocked()

	entries := make(map[string]*domain.Entry, len(attempt.Entries))
	for i := range attempt.Entries {
		e := &attempt.Entries[i]
		entries[e.Path] = e
	}

	m.current = &active{
		id:      uuid.NewString(),
		engine:  engine,
		entries: entries,
		fetch:   attempt.Fetch,
		cleanup: attempt.Cleanup,
	}
	return m.current.id
}

// FetchEntry resolves one entry's payload by path. Paths are tolerant of
// the trailing-slash ambiguity between "dir" and "dir/". A stale session id
// yields ErrSessionUnavailable rather than a panic.
func (m *Manager) FetchEntry(sessionID, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.id != sessionID {
		return nil, ErrSessionUnavailable
	}

	entry, ok := m.current.entries[path]
	if !ok && !strings.HasSuffix(path, "/") {
		entry, ok = m.current.entries[path+"/"]
	}
	if !ok {
		return nil, errEntryNotFound
	}

	if entry.IsDir {
		return nil, ErrNoPayload
	}
	if entry.Data != nil {
		return entry.Data, nil
	}
	if m.current.fetch == nil {
		return nil, ErrNoPayload
	}
	return m.current.fetch(entry.Path)
}

// Release tears down the session's backing store if the id still matches
// the active session. Stale ids are a no-op.
func (m *Manager) Release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil || m.current.id != sessionID {
		return
	}
	m.releaseLocked()
}

// ActiveID returns the live session id, or "" when no session is active.
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ""
	}
	return m.current.id
}

func (m *Manager) releaseLocked() {
	if m.current == nil {
		return
	}
	if m.current.cleanup != nil {
		m.current.cleanup()
	}
	m.current = nil
}
