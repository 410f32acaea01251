package metacache

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blackwell-systems/vaultkeeper"
)

func sampleEntries() []vaultkeeper.VaultEntry {
	return []vaultkeeper.VaultEntry{
		{
			ID:   "a",
			Name: "GitHub",
			Kind: vaultkeeper.KindLogin,
			Login: &vaultkeeper.LoginBlock{
				Username: "alice",
				Password: "p1",
				TOTPSeed: "JBSWY3DPEHPK3PXP",
				URIs:     []string{"https://github.com"},
			},
		},
		{
			ID:   "b",
			Name: "Bank",
			Kind: vaultkeeper.KindLogin,
			Login: &vaultkeeper.LoginBlock{
				Username: "alice",
			},
		},
	}
}

// TestRoundTrip covers P7: a cache written then read back preserves entry
// order and is equal after canonicalization (Version/CreatedAt excluded
// from the per-entry comparison since CreatedAt is stamped by BuildDocument).
func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := BuildDocument("acct-1", sampleEntries(), now)

	if err := store.Save(doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("Load() = %v, %v, %v", got, ok, err)
	}

	if got.AccountID != doc.AccountID {
		t.Errorf("AccountID = %q, want %q", got.AccountID, doc.AccountID)
	}
	if len(got.Entries) != len(doc.Entries) {
		t.Fatalf("len(Entries) = %d, want %d", len(got.Entries), len(doc.Entries))
	}
	for i := range doc.Entries {
		if got.Entries[i].ID != doc.Entries[i].ID {
			t.Errorf("Entries[%d].ID = %q, want %q (order not preserved)", i, got.Entries[i].ID, doc.Entries[i].ID)
		}
	}
}

// TestNoSecretOnDisk covers P1: none of the written bytes contain a secret
// value from the fixture.
func TestNoSecretOnDisk(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	doc := BuildDocument("acct-1", sampleEntries(), time.Now())
	if err := store.Save(doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	raw, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	for _, secret := range []string{"p1", "JBSWY3DPEHPK3PXP"} {
		if bytes.Contains(raw, []byte(secret)) {
			t.Errorf("disk cache contains secret fixture value %q", secret)
		}
	}
}

// TestCorruptionRecovery covers P8: a flipped byte in the body causes Load
// to report "no cache" and delete the file.
func TestCorruptionRecovery(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	doc := BuildDocument("acct-1", sampleEntries(), time.Now())
	if err := store.Save(doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	raw, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(raw) < 10 {
		t.Fatal("fixture too small to corrupt meaningfully")
	}
	raw[len(raw)/2] ^= 0xFF
	if err := os.WriteFile(store.Path(), raw, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v, want nil (corruption is silent)", err)
	}
	if ok {
		t.Fatal("Load() after corruption reported a hit, want miss")
	}
	if _, statErr := os.Stat(store.Path()); !os.IsNotExist(statErr) {
		t.Fatal("corrupt cache file was not deleted")
	}
}

func TestStale(t *testing.T) {
	now := time.Now()
	doc := Document{CreatedAt: now.Add(-10 * time.Minute)}
	if !doc.Stale(5*time.Minute, now) {
		t.Fatal("Stale() = false, want true for a 10m-old doc with a 5m TTL")
	}
	fresh := Document{CreatedAt: now.Add(-1 * time.Minute)}
	if fresh.Stale(5*time.Minute, now) {
		t.Fatal("Stale() = true, want false for a 1m-old doc with a 5m TTL")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "nonexistent"))
	_, ok, err := store.Load()
	if err != nil || ok {
		t.Fatalf("Load() = %v, %v, want false, nil", ok, err)
	}
}
