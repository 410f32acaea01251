// Package session implements the three-operation session-token store:
// save/load/clear of an opaque token, backed by a platform-specific
// secure store, with a marker/ciphertext file at a well-known path
// indicating presence.
//
// Follows the same restrictive-permission file discipline used
// elsewhere in this module (0700 dirs, 0600 files); the platform
// secret-store calls themselves are per-OS backends layered on top.
package session

import (
	"os"
	"path/filepath"

	"github.com/blackwell-systems/vaultkeeper"
)

// FileName is the fixed marker/ciphertext file name under the user's home
// dot-directory.
const FileName = "session.enc"

// Store is the session-token store abstraction. No operation ever prompts
// the user; failures are hard errors, never silent retries with a prompt.
type Store interface {
	Save(token string) error
	Load() (string, bool, error)
	Clear() error
}

// markerPath returns the well-known path for the marker/ciphertext file
// under dotDir (e.g. "~/.vaultkeeper").
func markerPath(dotDir string) string {
	return filepath.Join(dotDir, FileName)
}

// ensureDir creates dotDir with owner-only permissions if missing.
func ensureDir(dotDir string) error {
	if err := os.MkdirAll(dotDir, 0o700); err != nil {
		return vaultkeeper.Wrap(vaultkeeper.KindSessionStoreUnavailable, "session.mkdir", dotDir, err)
	}
	return nil
}

// writeMarker writes data (empty on mac/linux, ciphertext on Windows) to
// the well-known path with owner-only permissions.
func writeMarker(dotDir string, data []byte) error {
	if err := ensureDir(dotDir); err != nil {
		return err
	}
	path := markerPath(dotDir)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return vaultkeeper.Wrap(vaultkeeper.KindSessionStoreUnavailable, "session.write", path, err)
	}
	return nil
}

func readMarker(dotDir string) ([]byte, bool, error) {
	path := markerPath(dotDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, vaultkeeper.Wrap(vaultkeeper.KindSessionStoreUnavailable, "session.read", path, err)
	}
	return data, true, nil
}

func removeMarker(dotDir string) error {
	path := markerPath(dotDir)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return vaultkeeper.Wrap(vaultkeeper.KindSessionStoreUnavailable, "session.remove", path, err)
	}
	return nil
}
