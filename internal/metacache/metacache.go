// Package metacache persists EntryMetadata to a per-user cache directory
// so the list UI has something to render within tens of milliseconds of
// startup, well before the host CLI could answer a "list" call.
//
// Same restrictive-permission-then-write discipline as a typical local
// session cache, generalized here with an explicit temp-file-then-rename
// step for atomicity, since this cache is read concurrently with writes.
// The on-disk encoding uses encoding/gob rather than JSON: a compact
// binary encoding with no schema-flexible fields, so the type-rigid wire
// format enforces at compile time the same discipline that drops the
// host CLI's dynamic `match` field at the parse boundary.
package metacache

import (
	"bytes"
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"github.com/blackwell-systems/vaultkeeper"
)

// FileName is the fixed file name under the per-user cache directory.
const FileName = "vault_metadata.bin"

// formatVersion is bumped whenever the gob-encoded shape changes in a way
// that isn't safely forward/backward compatible; Load rejects anything
// else as corrupt.
const formatVersion = 1

// DefaultTTL is the staleness threshold from this design.
const DefaultTTL = 300 * time.Second

// Document is the MetadataCache of this design.
type Document struct {
	Version   int
	AccountID string
	CreatedAt time.Time
	Entries   []vaultkeeper.EntryMetadata
}

// Stale reports whether the document's age exceeds ttl. Staleness is a UX
// hint (schedules a background sync), never a correctness property.
func (d Document) Stale(ttl time.Duration, now time.Time) bool {
	return now.Sub(d.CreatedAt) > ttl
}

// Store reads and writes the metadata cache file at path.
type Store struct {
	path string
}

// New constructs a Store. dir is the per-user cache directory (e.g. from
// os.UserCacheDir() + "/<app name>"); the file name is always FileName.
func New(dir string) *Store {
	return &Store{path: filepath.Join(dir, FileName)}
}

// Path returns the full path to the cache file.
func (s *Store) Path() string { return s.path }

// Load reads and decodes the cache file. A missing file, a decode
// failure, or a version mismatch all return (Document{}, false, nil) — per
// this design, corruption is recoverable by deletion and produces no
// error the caller needs to special-case, only "no cache".
func (s *Store) Load() (Document, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, false, nil
		}
		return Document{}, false, vaultkeeper.Wrap(vaultkeeper.KindIO, "cache.load", s.path, err)
	}

	var doc Document
	if decErr := gob.NewDecoder(bytes.NewReader(data)).Decode(&doc); decErr != nil || doc.Version != formatVersion {
		_ = os.Remove(s.path) // CacheCorrupt: silently delete, per this design
		return Document{}, false, nil
	}

	return doc, true, nil
}

// Save writes doc to a temporary sibling file and renames it over the
// target, so a process killed mid-write never leaves a half-written cache
// behind for the next Load to trip over.
func (s *Store) Save(doc Document) error {
	doc.Version = formatVersion

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return vaultkeeper.Wrap(vaultkeeper.KindIO, "cache.save.mkdir", dir, err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(doc); err != nil {
		return vaultkeeper.Wrap(vaultkeeper.KindIO, "cache.save.encode", s.path, err)
	}

	tmp, err := os.CreateTemp(dir, FileName+".tmp-*")
	if err != nil {
		return vaultkeeper.Wrap(vaultkeeper.KindIO, "cache.save.tempfile", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return vaultkeeper.Wrap(vaultkeeper.KindIO, "cache.save.write", tmpPath, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return vaultkeeper.Wrap(vaultkeeper.KindIO, "cache.save.chmod", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return vaultkeeper.Wrap(vaultkeeper.KindIO, "cache.save.close", tmpPath, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return vaultkeeper.Wrap(vaultkeeper.KindIO, "cache.save.rename", s.path, err)
	}
	return nil
}

// Delete removes the cache file, ignoring a not-exist error.
func (s *Store) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return vaultkeeper.Wrap(vaultkeeper.KindIO, "cache.delete", s.path, err)
	}
	return nil
}

// BuildDocument projects entries into a fresh Document stamped with now.
func BuildDocument(accountID string, entries []vaultkeeper.VaultEntry, now time.Time) Document {
	meta := make([]vaultkeeper.EntryMetadata, len(entries))
	for i, e := range entries {
		meta[i] = vaultkeeper.NewEntryMetadata(e)
	}
	return Document{
		Version:   formatVersion,
		AccountID: accountID,
		CreatedAt: now,
		Entries:   meta,
	}
}
