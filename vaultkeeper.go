// Package vaultkeeper provides the state and secret-lifecycle core for a
// keyboard-driven terminal front-end to a host password-manager CLI.
//
// The package is organized so that no secret material ever needs to leave
// internal/secretcache: the disk-persisted side of the system
// (internal/metacache) only ever sees EntryMetadata, the non-secret
// projection defined in this file.
package vaultkeeper // import "github.com/blackwell-systems/vaultkeeper"

import "time"

// EntryKind identifies the kind of a vault entry. Values match the host
// CLI's own `type` enumeration so no translation table is needed at the
// JSON parse boundary.
type EntryKind int

const (
	// KindLogin is a username/password/TOTP credential.
	KindLogin EntryKind = 1
	// KindSecureNote is a free-text note.
	KindSecureNote EntryKind = 2
	// KindCard is a payment card.
	KindCard EntryKind = 3
	// KindIdentity is a personal-details record.
	KindIdentity EntryKind = 4
)

// String returns the tab label for the kind.
func (k EntryKind) String() string {
	switch k {
	case KindLogin:
		return "Login"
	case KindSecureNote:
		return "Note"
	case KindCard:
		return "Card"
	case KindIdentity:
		return "Identity"
	default:
		return "Unknown"
	}
}

// LoginBlock holds login-kind secret fields. A VaultEntry carries this only
// for KindLogin entries; it is nil otherwise.
type LoginBlock struct {
	Username string
	Password string
	// TOTPSeed is the base32-encoded RFC 6238 seed, empty if the entry has
	// no authenticator configured.
	TOTPSeed string
	URIs     []string
}

// CardBlock holds card-kind secret fields.
type CardBlock struct {
	Holder   string
	Number   string
	Brand    string
	ExpMonth string
	ExpYear  string
	Code     string
}

// IdentityBlock holds identity-kind fields. The host CLI's identity schema
// is free-form beyond name/address; vaultkeeper only needs the fields the
// UI renders, so this stays intentionally small.
type IdentityBlock struct {
	FullName string
	Email    string
	Phone    string
	Address  string
}

// VaultEntry is the full record for a single vault item, including any
// secret material. Instances MUST live only in memory — never serialize a
// VaultEntry to disk. Use EntryMetadata for anything persisted.
type VaultEntry struct {
	ID       string
	Name     string
	Kind     EntryKind
	Login    *LoginBlock
	Notes    string
	Card     *CardBlock
	Identity *IdentityBlock
	Favorite bool
	FolderID string
	OrgID    string
	Revision time.Time
}

// EntryMetadata is the projection of a VaultEntry safe to persist to disk.
// It carries no secret material: HasPassword/HasTOTP are derived booleans,
// never the fields themselves, and URIs are flattened to plain strings so
// the on-disk encoding never needs a schema-flexible payload.
type EntryMetadata struct {
	ID          string
	Name        string
	Kind        EntryKind
	Username    string
	URIs        []string
	FolderID    string
	Favorite    bool
	Revision    time.Time
	HasPassword bool
	HasTOTP     bool
}

// NewEntryMetadata projects a VaultEntry into its disk-safe metadata. This
// is the only sanctioned path from VaultEntry to anything that touches
// disk; callers must not hand-roll an equivalent.
func NewEntryMetadata(e VaultEntry) EntryMetadata {
	m := EntryMetadata{
		ID:       e.ID,
		Name:     e.Name,
		Kind:     e.Kind,
		FolderID: e.FolderID,
		Favorite: e.Favorite,
		Revision: e.Revision,
	}
	if e.Login != nil {
		m.Username = e.Login.Username
		m.URIs = append([]string(nil), e.Login.URIs...)
		m.HasPassword = e.Login.Password != ""
		m.HasTOTP = e.Login.TOTPSeed != ""
	}
	return m
}
