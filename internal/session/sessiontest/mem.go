// Package sessiontest provides an in-memory session.Store for tests (such
// as internal/dispatch's) that need a Store without touching a real OS
// secret service.
package sessiontest

import "github.com/blackwell-systems/vaultkeeper/internal/session"

// MemStore is a session.Store backed by a plain struct field.
type MemStore struct {
	Token   string
	Present bool
}

func (m *MemStore) Save(token string) error {
	m.Token = token
	m.Present = true
	return nil
}

func (m *MemStore) Load() (string, bool, error) {
	return m.Token, m.Present, nil
}

func (m *MemStore) Clear() error {
	m.Token = ""
	m.Present = false
	return nil
}

var _ session.Store = (*MemStore)(nil)
