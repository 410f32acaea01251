package vaultkeeper

import (
	"errors"
	"testing"
)

func TestWrap_NilIsNil(t *testing.T) {
	if err := Wrap(KindIO, "op", "item", nil); err != nil {
		t.Fatalf("Wrap(..., nil) = %v, want nil", err)
	}
}

func TestWrap_ErrorMessage(t *testing.T) {
	err := Wrap(KindHostCommandFailed, "list", "", errors.New("exit status 1"))
	got := err.Error()
	want := "list: exit status 1"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	withItem := Wrap(KindHostCommandFailed, "get", "abc", errors.New("not found"))
	got = withItem.Error()
	want = `get "abc": not found`
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestKindOf(t *testing.T) {
	err := Wrap(KindHostLocked, "status", "", errors.New("locked"))
	if KindOf(err) != KindHostLocked {
		t.Errorf("KindOf() = %v, want KindHostLocked", KindOf(err))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("KindOf(plain error) should be KindUnknown")
	}
}

func TestErrorIs_MatchesByKind(t *testing.T) {
	a := Wrap(KindHostLocked, "status", "", errors.New("x"))
	b := Wrap(KindHostLocked, "get", "y", errors.New("z"))
	c := Wrap(KindHostInvalidCredentials, "unlock", "", errors.New("w"))

	if !errors.Is(a, b) {
		t.Error("errors.Is should match two *Error values with the same Kind")
	}
	if errors.Is(a, c) {
		t.Error("errors.Is should not match *Error values with different Kinds")
	}
}

func TestErrorIs_UnwrapsToSentinel(t *testing.T) {
	err := Wrap(KindHostCommandFailed, "get", "missing-id", ErrNotFound)
	if !errors.Is(err, ErrNotFound) {
		t.Error("errors.Is should see through Wrap to the underlying sentinel")
	}
}
