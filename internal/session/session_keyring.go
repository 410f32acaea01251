//go:build darwin || linux

package session

import (
	"github.com/zalando/go-keyring"

	"github.com/blackwell-systems/vaultkeeper"
)

// keyringService/keyringUser name the single credential entry vaultkeeper
// keeps in the OS secret store (macOS Keychain via go-keyring's darwin
// backend, the Secret Service via its linux backend).
const (
	keyringService = "vaultkeeper"
	keyringUser    = "session-token"
)

// keyringStore holds the real token in the OS secret store and keeps an
// empty marker file at the well-known path purely to signal presence
// without round-tripping the keyring just to answer "is there a saved
// session".
type keyringStore struct {
	dotDir string
}

// New constructs the platform Store for the current OS.
func New(dotDir string) Store {
	return &keyringStore{dotDir: dotDir}
}

func (s *keyringStore) Save(token string) error {
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		return vaultkeeper.Wrap(vaultkeeper.KindSessionStoreUnavailable, "session.save", "", err)
	}
	return writeMarker(s.dotDir, nil)
}

func (s *keyringStore) Load() (string, bool, error) {
	_, present, err := readMarker(s.dotDir)
	if err != nil || !present {
		return "", false, err
	}

	token, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		if err == keyring.ErrNotFound {
			// Marker survived without a backing keyring entry (e.g. the
			// keychain was reset out from under us) — treat as absent.
			_ = removeMarker(s.dotDir)
			return "", false, nil
		}
		return "", false, vaultkeeper.Wrap(vaultkeeper.KindSessionStoreUnavailable, "session.load", "", err)
	}
	return token, true, nil
}

func (s *keyringStore) Clear() error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil && err != keyring.ErrNotFound {
		return vaultkeeper.Wrap(vaultkeeper.KindSessionStoreUnavailable, "session.clear", "", err)
	}
	return removeMarker(s.dotDir)
}
