package vaultkeeper

import (
	"reflect"
	"testing"
	"time"
)

// TestNewEntryMetadata_Projection covers P2: HasPassword/HasTOTP track
// presence exactly, and every other field is carried through verbatim.
func TestNewEntryMetadata_Projection(t *testing.T) {
	rev := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	entry := VaultEntry{
		ID:   "a",
		Name: "GitHub",
		Kind: KindLogin,
		Login: &LoginBlock{
			Username: "alice",
			Password: "p1",
			TOTPSeed: "JBSWY3DPEHPK3PXP",
			URIs:     []string{"https://github.com"},
		},
		Favorite: true,
		FolderID: "folder-1",
		OrgID:    "org-1",
		Revision: rev,
	}

	meta := NewEntryMetadata(entry)

	if meta.ID != entry.ID || meta.Name != entry.Name || meta.Kind != entry.Kind {
		t.Fatalf("identity fields not carried through verbatim: %+v", meta)
	}
	if meta.Username != "alice" {
		t.Errorf("Username = %q, want alice", meta.Username)
	}
	if !reflect.DeepEqual(meta.URIs, []string{"https://github.com"}) {
		t.Errorf("URIs = %v, want [https://github.com]", meta.URIs)
	}
	if meta.FolderID != "folder-1" || !meta.Favorite || !meta.Revision.Equal(rev) {
		t.Fatalf("carried-through fields mismatch: %+v", meta)
	}
	if !meta.HasPassword {
		t.Error("HasPassword = false, want true")
	}
	if !meta.HasTOTP {
		t.Error("HasTOTP = false, want true")
	}
}

func TestNewEntryMetadata_NoLoginBlock(t *testing.T) {
	entry := VaultEntry{ID: "b", Name: "Bank", Kind: KindLogin}
	meta := NewEntryMetadata(entry)

	if meta.HasPassword {
		t.Error("HasPassword = true for an entry with no login block")
	}
	if meta.HasTOTP {
		t.Error("HasTOTP = true for an entry with no login block")
	}
	if meta.Username != "" {
		t.Errorf("Username = %q, want empty", meta.Username)
	}
}

func TestNewEntryMetadata_PasswordWithoutTOTP(t *testing.T) {
	entry := VaultEntry{
		ID:    "c",
		Kind:  KindLogin,
		Login: &LoginBlock{Username: "bob", Password: "secret"},
	}
	meta := NewEntryMetadata(entry)

	if !meta.HasPassword {
		t.Error("HasPassword = false, want true")
	}
	if meta.HasTOTP {
		t.Error("HasTOTP = true for an entry with no totp seed")
	}
}

func TestEntryKindString(t *testing.T) {
	cases := map[EntryKind]string{
		KindLogin:      "Login",
		KindSecureNote: "Note",
		KindCard:       "Card",
		KindIdentity:   "Identity",
		EntryKind(99):  "Unknown",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("EntryKind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}
