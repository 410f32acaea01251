package vaultkeeper

import (
	"errors"
	"fmt"
)

// Kind classifies an Error by failure category; KindOf extracts it.
// Using one enum rather than a sentinel per kind keeps
// errors.Is/errors.As working uniformly through Error.
type Kind int

const (
	// KindUnknown is the zero value; never constructed deliberately.
	KindUnknown Kind = iota
	// KindHostToolMissing means the host CLI binary isn't on PATH.
	KindHostToolMissing
	// KindHostAuthRequired means the account isn't logged in at all.
	KindHostAuthRequired
	// KindHostLocked means the vault exists but needs unlocking.
	KindHostLocked
	// KindHostInvalidCredentials means unlock was attempted with a wrong password.
	KindHostInvalidCredentials
	// KindHostCommandFailed wraps a non-zero host CLI exit with its stderr.
	KindHostCommandFailed
	// KindHostParseError wraps a JSON decode failure on host CLI output.
	KindHostParseError
	// KindSessionStoreUnavailable means the platform secret store could not be reached.
	KindSessionStoreUnavailable
	// KindClipboardUnavailable means the clipboard gateway failed to write.
	KindClipboardUnavailable
	// KindCacheCorrupt means the metadata disk cache failed to deserialize or failed its version check.
	KindCacheCorrupt
	// KindIO wraps a filesystem error with the offending path.
	KindIO
	// KindConfig wraps a configuration parse/validation error.
	KindConfig
	// KindInternalInvariant marks a bug: an invariant the code assumed was violated.
	KindInternalInvariant
)

// Error is the single error type vaultkeeper code returns. It carries a
// Kind for dispatch-level routing plus an op/item pair for context, in the
// style of a typical backend error type, generalized to one type with a Kind.
type Error struct {
	Kind Kind
	Op   string // e.g. "unlock", "list", "cache.load"
	Item string // id or path, if applicable; empty otherwise
	Err  error
}

// Error returns a human-readable message.
func (e *Error) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Item, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the wrapped error to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is allows errors.Is against another *Error to match by Kind, and passes
// through to the wrapped error otherwise.
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return e.Kind == te.Kind
	}
	return errors.Is(e.Err, target)
}

// Wrap constructs an *Error, returning nil if err is nil so call sites can
// write `return Wrap(...)` unconditionally after a fallible call.
func Wrap(kind Kind, op, item string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Item: item, Err: err}
}

// KindOf extracts the Kind from err, or KindUnknown if err is not (or does
// not wrap) a *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

var (
	// ErrNotFound indicates the requested entry id has no matching record.
	ErrNotFound = errors.New("entry not found")
	// ErrInvalidSeed indicates a TOTP seed failed base32 decoding.
	ErrInvalidSeed = errors.New("invalid totp seed")
	// ErrNoToken indicates the session store has nothing saved.
	ErrNoToken = errors.New("no session token stored")
	// ErrSyncInProgress indicates a background sync was requested while one was already running.
	ErrSyncInProgress = errors.New("sync already in progress")
)
