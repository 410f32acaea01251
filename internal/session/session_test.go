package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMarkerRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dotdir")

	if err := writeMarker(dir, []byte("ciphertext")); err != nil {
		t.Fatalf("writeMarker() error = %v", err)
	}

	data, present, err := readMarker(dir)
	if err != nil || !present {
		t.Fatalf("readMarker() = %v, %v, %v", data, present, err)
	}
	if string(data) != "ciphertext" {
		t.Fatalf("readMarker() = %q, want ciphertext", data)
	}

	info, err := os.Stat(markerPath(dir))
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("marker file mode = %o, want 0600", info.Mode().Perm())
	}

	if err := removeMarker(dir); err != nil {
		t.Fatalf("removeMarker() error = %v", err)
	}
	if _, present, _ := readMarker(dir); present {
		t.Fatal("readMarker() after removeMarker() still reports present")
	}
}

func TestReadMarker_Missing(t *testing.T) {
	_, present, err := readMarker(filepath.Join(t.TempDir(), "nope"))
	if err != nil || present {
		t.Fatalf("readMarker() = %v, %v, want false, nil", present, err)
	}
}
