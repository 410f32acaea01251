package appstate

import (
	"testing"
	"time"

	"github.com/blackwell-systems/vaultkeeper"
)

func sampleRows() []vaultkeeper.EntryMetadata {
	return []vaultkeeper.EntryMetadata{
		{ID: "1", Name: "GitHub", Kind: vaultkeeper.KindLogin, Username: "alice"},
		{ID: "2", Name: "GitLab", Kind: vaultkeeper.KindLogin, Username: "alice"},
		{ID: "3", Name: "Visa", Kind: vaultkeeper.KindCard},
		{ID: "4", Name: "Wifi password", Kind: vaultkeeper.KindSecureNote},
	}
}

func newState() *ApplicationState {
	s := New(TextFilterer{Mode: FilterExact})
	s.SetRows(sampleRows())
	return s
}

// TestFilterIdempotence covers P5.
func TestFilterIdempotence(t *testing.T) {
	s := newState()
	s.SetFilter("git")
	first := append([]int(nil), s.Filtered...)
	s.SetFilter("git")
	second := append([]int(nil), s.Filtered...)

	if len(first) != len(second) {
		t.Fatalf("Filtered changed between identical queries: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Filtered changed between identical queries: %v vs %v", first, second)
		}
	}
}

func TestFilterEmptyQueryMatchesTab(t *testing.T) {
	s := newState()
	s.SetTab(TabCard)
	s.SetFilter("")
	if len(s.Filtered) != 1 {
		t.Fatalf("len(Filtered) = %d, want 1 (scenario 5: Card tab has exactly one entry)", len(s.Filtered))
	}
}

// TestNavigationWrap covers P6.
func TestNavigationWrap(t *testing.T) {
	s := newState()
	n := len(s.Filtered)

	s.Selected = 0
	s.MoveUp()
	if s.Selected != n-1 {
		t.Fatalf("MoveUp() from 0 = %d, want %d", s.Selected, n-1)
	}

	s.Selected = n - 1
	s.MoveDown()
	if s.Selected != 0 {
		t.Fatalf("MoveDown() from %d = %d, want 0", n-1, s.Selected)
	}
}

func TestPageMoveWraps(t *testing.T) {
	s := newState() // 4 rows
	s.Selected = 0
	s.PageDown() // +10 over 4 rows
	if s.Selected < 0 || s.Selected >= len(s.Filtered) {
		t.Fatalf("PageDown() landed out of range: %d", s.Selected)
	}
	s.Selected = 0
	s.PageUp()
	if s.Selected < 0 || s.Selected >= len(s.Filtered) {
		t.Fatalf("PageUp() landed out of range: %d", s.Selected)
	}
}

func TestHomeEnd(t *testing.T) {
	s := newState()
	s.Selected = 1
	s.Home()
	if s.Selected != 0 {
		t.Fatalf("Home() = %d, want 0", s.Selected)
	}
	s.End()
	if s.Selected != len(s.Filtered)-1 {
		t.Fatalf("End() = %d, want %d", s.Selected, len(s.Filtered)-1)
	}
}

func TestTabSwitchResetsSelection(t *testing.T) {
	s := newState()
	s.Selected = 1
	s.SetTab(TabCard)
	if s.Selected != 0 {
		t.Fatalf("Selected after SetTab = %d, want 0", s.Selected)
	}
}

func TestStatusExpiry(t *testing.T) {
	s := newState()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetStatus("please wait", LevelWarning, 3*time.Second, now)

	s.ExpireStatus(now.Add(1 * time.Second))
	if s.Status.Text == "" {
		t.Fatal("status cleared before expiry")
	}

	s.ExpireStatus(now.Add(4 * time.Second))
	if s.Status.Text != "" {
		t.Fatal("status not cleared after expiry")
	}
}

func TestStartSyncSuppressesConcurrent(t *testing.T) {
	s := newState()
	if !s.StartSync() {
		t.Fatal("StartSync() first call = false, want true")
	}
	if s.StartSync() {
		t.Fatal("StartSync() while syncing = true, want false (concurrent syncs suppressed)")
	}
	s.FinishSyncOK()
	if !s.SecretsAvailable {
		t.Fatal("SecretsAvailable false after FinishSyncOK")
	}
	if !s.StartSync() {
		t.Fatal("StartSync() after finish = false, want true")
	}
}

func TestFinishSyncFailedKeepsRows(t *testing.T) {
	s := newState()
	before := append([]vaultkeeper.EntryMetadata(nil), s.Rows...)
	s.StartSync()
	s.FinishSyncFailed("network error")
	if s.Sync.Phase != SyncFailed || s.Sync.FailMessage != "network error" {
		t.Fatalf("Sync = %+v, want Failed(network error)", s.Sync)
	}
	if len(s.Rows) != len(before) {
		t.Fatal("failed sync altered the displayed row count")
	}
}
