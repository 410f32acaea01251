// Package appstate owns ApplicationState, the single source of truth the
// UI renders from. It is owned exclusively by the
// event-loop task in internal/dispatch; every method here assumes
// single-writer access and takes no lock of its own — the only shared
// mutable state in the system (SecretCache/TotpCache) lives in
// internal/secretcache instead, guarded there.
package appstate

import (
	"time"

	"github.com/blackwell-systems/vaultkeeper"
)

// Mode is the outer input-mode state machine from this design.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFiltering
	ModePasswordInput
	ModeSaveTokenPrompt
	ModeNotLoggedIn
	ModeError
)

// Tab is the active entry-kind filter.
type Tab int

const (
	TabAll Tab = iota
	TabLogin
	TabNote
	TabCard
	TabIdentity
)

// Matches reports whether kind belongs to tab.
func (t Tab) Matches(kind vaultkeeper.EntryKind) bool {
	switch t {
	case TabAll:
		return true
	case TabLogin:
		return kind == vaultkeeper.KindLogin
	case TabNote:
		return kind == vaultkeeper.KindSecureNote
	case TabCard:
		return kind == vaultkeeper.KindCard
	case TabIdentity:
		return kind == vaultkeeper.KindIdentity
	default:
		return false
	}
}

// StatusLevel colours the one-line status area.
type StatusLevel int

const (
	LevelInfo StatusLevel = iota
	LevelWarning
	LevelError
)

// StatusMessage is the transient status-bar message from this design.
type StatusMessage struct {
	Text    string
	Level   StatusLevel
	Expires time.Time
}

// SyncPhase is the sync-state enumeration.
type SyncPhase int

const (
	SyncIdle SyncPhase = iota
	SyncSyncing
	SyncFailed
)

// SyncState bundles the phase, last failure message, and spinner frame.
type SyncState struct {
	Phase        SyncPhase
	FailMessage  string
	SpinnerFrame int
}

// ApplicationState is the full render-from model from this design.
type ApplicationState struct {
	Rows     []vaultkeeper.EntryMetadata // (i) unfiltered
	Filter   string                      // (ii)
	Tab      Tab                         // (iii)
	Filtered []int                       // (iv) indexes into Rows

	Selected int // (v) position within Filtered
	Viewport int // (vi) scrolling viewport position

	DetailsVisible bool // (vii)
	DetailsScroll  int

	Mode Mode // (viii)

	UnlockBuffer  string // (ix)
	LastUnlockErr string

	Status StatusMessage // (x)

	Sync SyncState // (xi)

	SecretsAvailable bool // (xii)

	filterer Filterer
}

// Filterer computes the Filtered index list for Rows given the current
// Filter/Tab. Injected so the caller (cmd/vaultkeeper) can choose fuzzy
// vs exact substring per config without appstate importing that
// decision.
type Filterer interface {
	Filter(rows []vaultkeeper.EntryMetadata, tab Tab, query string) []int
}

// New constructs an empty ApplicationState using filterer for §4.8
// filtering. Mode starts at ModeNormal; callers transition it per the
// startup sequence in this design before the first render.
func New(filterer Filterer) *ApplicationState {
	return &ApplicationState{filterer: filterer}
}

// SetRows replaces the unfiltered row vector (e.g. after a background
// sync) and recomputes the filtered view. This
// replacement is a single assignment — ApplicationState has no other
// owner, so no additional synchronization is needed here.
func (s *ApplicationState) SetRows(rows []vaultkeeper.EntryMetadata) {
	s.Rows = rows
	s.recompute()
	s.clampSelection()
}

// SetFilter updates the filter string and recomputes incrementally — no
// debounce, per this design.
func (s *ApplicationState) SetFilter(query string) {
	s.Filter = query
	s.recompute()
	s.Selected = 0
	s.Viewport = 0
}

// SetTab switches the visible kind subset and resets selection to 0, per
// this design.
func (s *ApplicationState) SetTab(tab Tab) {
	s.Tab = tab
	s.recompute()
	s.Selected = 0
	s.Viewport = 0
}

func (s *ApplicationState) recompute() {
	if s.filterer == nil {
		s.Filtered = identityFilter(s.Rows, s.Tab)
		return
	}
	s.Filtered = s.filterer.Filter(s.Rows, s.Tab, s.Filter)
}

func identityFilter(rows []vaultkeeper.EntryMetadata, tab Tab) []int {
	out := make([]int, 0, len(rows))
	for i, r := range rows {
		if tab.Matches(r.Kind) {
			out = append(out, i)
		}
	}
	return out
}

func (s *ApplicationState) clampSelection() {
	if len(s.Filtered) == 0 {
		s.Selected = 0
		return
	}
	if s.Selected >= len(s.Filtered) {
		s.Selected = len(s.Filtered) - 1
	}
}

// Selected entry's metadata, or false if the filtered list is empty.
func (s *ApplicationState) SelectedEntry() (vaultkeeper.EntryMetadata, bool) {
	if len(s.Filtered) == 0 {
		return vaultkeeper.EntryMetadata{}, false
	}
	idx := s.Filtered[s.Selected]
	return s.Rows[idx], true
}

// --- Navigation ---

const pageSize = 10

// MoveDown moves the selection down one row, wrapping to 0 past the end.
func (s *ApplicationState) MoveDown() {
	n := len(s.Filtered)
	if n == 0 {
		return
	}
	s.Selected = (s.Selected + 1) % n
}

// MoveUp moves the selection up one row, wrapping to the last row before 0.
func (s *ApplicationState) MoveUp() {
	n := len(s.Filtered)
	if n == 0 {
		return
	}
	s.Selected = (s.Selected - 1 + n) % n
}

// PageDown moves ten rows down, clamping to the last row; a page move
// from the last row wraps to the first.
func (s *ApplicationState) PageDown() {
	n := len(s.Filtered)
	if n == 0 {
		return
	}
	if s.Selected == n-1 {
		s.Selected = 0
		return
	}
	s.Selected += pageSize
	if s.Selected > n-1 {
		s.Selected = n - 1
	}
}

// PageUp moves ten rows up, clamping to the first row; a page move from
// the first row wraps to the last.
func (s *ApplicationState) PageUp() {
	n := len(s.Filtered)
	if n == 0 {
		return
	}
	if s.Selected == 0 {
		s.Selected = n - 1
		return
	}
	s.Selected -= pageSize
	if s.Selected < 0 {
		s.Selected = 0
	}
}

// Home moves the selection to the first row.
func (s *ApplicationState) Home() {
	s.Selected = 0
}

// End moves the selection to the last row.
func (s *ApplicationState) End() {
	if n := len(s.Filtered); n > 0 {
		s.Selected = n - 1
	}
}

// ToggleDetails flips the details-panel visibility.
func (s *ApplicationState) ToggleDetails() {
	s.DetailsVisible = !s.DetailsVisible
}

// ScrollDetails moves the details scroll offset by delta, clamped at 0.
func (s *ApplicationState) ScrollDetails(delta int) {
	s.DetailsScroll += delta
	if s.DetailsScroll < 0 {
		s.DetailsScroll = 0
	}
}

// SetStatus arms a transient status-bar message.
func (s *ApplicationState) SetStatus(text string, level StatusLevel, ttl time.Duration, now time.Time) {
	s.Status = StatusMessage{Text: text, Level: level, Expires: now.Add(ttl)}
}

// ExpireStatus clears Status if its expiry has passed. Called on every
// tick.
func (s *ApplicationState) ExpireStatus(now time.Time) {
	if s.Status.Text != "" && !now.Before(s.Status.Expires) {
		s.Status = StatusMessage{}
	}
}

// AdvanceSpinner increments the sync spinner frame counter, called on
// every tick while Sync.Phase == SyncSyncing.
func (s *ApplicationState) AdvanceSpinner() {
	s.Sync.SpinnerFrame++
}

// StartSync transitions into SyncSyncing, returning false if a sync is
// already in progress.
func (s *ApplicationState) StartSync() bool {
	if s.Sync.Phase == SyncSyncing {
		return false
	}
	s.Sync.Phase = SyncSyncing
	s.Sync.SpinnerFrame = 0
	return true
}

// FinishSyncOK transitions to SyncIdle and marks secrets as available.
func (s *ApplicationState) FinishSyncOK() {
	s.Sync = SyncState{Phase: SyncIdle}
	s.SecretsAvailable = true
}

// FinishSyncFailed transitions to SyncFailed(msg) without altering the
// currently displayed list.
func (s *ApplicationState) FinishSyncFailed(msg string) {
	s.Sync = SyncState{Phase: SyncFailed, FailMessage: msg}
}
