// Package dispatch is the event-loop task that owns ApplicationState and
// is the single writer to it. It wires together every other
// internal package — the host-CLI adapter, the two caches, the
// prefetcher, the clipboard gateway, the local TOTP generator, and the
// session-token store — into the input-mode state machine and the copy-
// action template from this design.
//
// Grounded on a cmd/*/main.go dispatch loop shape (a single select over
// an input channel driving a big switch on event type), here generalized
// from a CLI-verb dispatch to an input-mode state machine.
package dispatch

import (
	"context"
	"time"

	"github.com/blackwell-systems/vaultkeeper"
	"github.com/blackwell-systems/vaultkeeper/internal/appstate"
	"github.com/blackwell-systems/vaultkeeper/internal/clipboard"
	"github.com/blackwell-systems/vaultkeeper/internal/hostcli"
	"github.com/blackwell-systems/vaultkeeper/internal/metacache"
	"github.com/blackwell-systems/vaultkeeper/internal/prefetch"
	"github.com/blackwell-systems/vaultkeeper/internal/secretcache"
	"github.com/blackwell-systems/vaultkeeper/internal/session"
	"github.com/blackwell-systems/vaultkeeper/internal/totp"

	"github.com/rs/zerolog"
)

// CopyField names the field a copy action extracts from the selected
// VaultEntry.
type CopyField int

const (
	FieldUsername CopyField = iota
	FieldPassword
	FieldTOTP
	FieldCardNumber
	FieldCVV
)

// Field is an alias of CopyField; for EventCopy, InputEvent.Arg carries
// one as an int.
type Field = CopyField

// EventKind enumerates every input the event loop reacts to.
type EventKind int

const (
	EventRune EventKind = iota // a printable character typed into the filter
	EventBackspace
	EventClearFilter
	EventUp
	EventDown
	EventPageUp
	EventPageDown
	EventHome
	EventEnd
	EventTabLeft
	EventTabRight
	EventTabSelect // Ctrl-1..5, Arg carries the 0-based tab index
	EventCopy      // Arg carries the CopyField
	EventToggleDetails
	EventScrollDetails // Arg carries the signed delta
	EventRefresh
	EventQuit
	EventLockAndQuit
	EventSubmit // Enter; meaning depends on the current Mode
	EventTick
)

// InputEvent is one item off the input channel.
type InputEvent struct {
	Kind EventKind
	Rune rune
	Arg  int
}

// Clock abstracts time.Now so tests can drive a deterministic clock.
type Clock func() time.Time

// Dispatcher owns ApplicationState and every collaborator needed to act
// on an InputEvent. It is not safe for concurrent use — this design
// requires a single owning task.
type Dispatcher struct {
	state *appstate.ApplicationState

	adapter     *hostcli.Adapter
	secrets     *secretcache.SecretCache
	totps       *secretcache.TotpCache
	metaStore   *metacache.Store
	sessions    session.Store
	prefetcher  *prefetch.Worker
	clip        *clipboard.Gateway
	log         zerolog.Logger
	now         Clock
	accountID   string
	sessionTok  string
	cacheTTL    time.Duration
	statusTTL   time.Duration
	exitCode    int
	shouldExit  bool
	didLockQuit bool
}

// Config bundles the construction-time parameters not already owned by
// one of the injected collaborators.
type Config struct {
	AccountID string
	CacheTTL  time.Duration
	StatusTTL time.Duration
	Now       Clock
}

// New wires a Dispatcher from its collaborators. state must already be
// constructed with the desired Filterer.
func New(
	state *appstate.ApplicationState,
	adapter *hostcli.Adapter,
	secrets *secretcache.SecretCache,
	totps *secretcache.TotpCache,
	metaStore *metacache.Store,
	sessions session.Store,
	prefetcher *prefetch.Worker,
	clip *clipboard.Gateway,
	log zerolog.Logger,
	cfg Config,
) *Dispatcher {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	statusTTL := cfg.StatusTTL
	if statusTTL <= 0 {
		statusTTL = 3 * time.Second
	}
	return &Dispatcher{
		state:     state,
		adapter:   adapter,
		secrets:   secrets,
		totps:     totps,
		metaStore: metaStore,
		sessions:  sessions,
		prefetcher: prefetcher,
		clip:      clip,
		log:       log,
		now:       now,
		accountID: cfg.AccountID,
		cacheTTL:  cfg.CacheTTL,
		statusTTL: statusTTL,
	}
}

// State exposes the owned ApplicationState for the renderer. The renderer
// must only read it, never mutate it.
func (d *Dispatcher) State() *appstate.ApplicationState { return d.state }

// ShouldExit reports whether the event loop should stop after the last
// handled event, and the process exit code to use.
func (d *Dispatcher) ShouldExit() (bool, int) { return d.shouldExit, d.exitCode }

// Startup implements the Startup branch of this design: probe the host
// CLI's status and enter the correct initial mode. It also loads whatever
// metadata cache is on disk so the first render is never empty-handed
// (scenario 2: warm start with a stale cache).
func (d *Dispatcher) Startup(ctx context.Context) error {
	if doc, ok, _ := d.metaStore.Load(); ok {
		d.state.SetRows(doc.Entries)
	}

	if tok, present, _ := d.sessions.Load(); present {
		d.sessionTok = tok
	}

	status, err := d.adapter.Status(ctx, d.sessionTok)
	if err != nil {
		d.state.Mode = appstate.ModeError
		d.state.LastUnlockErr = err.Error()
		d.exitCode = 4
		return err
	}

	switch status {
	case hostcli.StatusUnlocked:
		d.state.Mode = appstate.ModeNormal
		if effect := d.beginSyncIfStale(ctx); effect != nil {
			effect()
		}
	case hostcli.StatusLocked:
		d.state.Mode = appstate.ModePasswordInput
	case hostcli.StatusLoggedOut:
		d.state.Mode = appstate.ModeNotLoggedIn
		d.exitCode = 2
	default:
		d.state.Mode = appstate.ModeError
		d.exitCode = 4
	}
	return nil
}

// beginSyncIfStale starts a sync when the disk cache is missing or older
// than cacheTTL, returning the RunSync side effect the caller must run
// (same contract as Handle's return value) so SecretsAvailable actually
// becomes true instead of leaving the sync flag set with nothing ever
// scheduled to clear it. Returns nil if the cache is still fresh or a
// sync is already in flight.
func (d *Dispatcher) beginSyncIfStale(ctx context.Context) func() {
	doc, ok, _ := d.metaStore.Load()
	if ok && !doc.Stale(d.cacheTTL, d.now()) {
		d.state.SecretsAvailable = true
		return nil
	}
	if !d.RequestSync() {
		return nil
	}
	return func() { d.RunSync(ctx) }
}

// RequestSync starts a one-shot sync if one isn't already running,
// returning false if it was suppressed.
func (d *Dispatcher) RequestSync() bool {
	return d.state.StartSync()
}

// RunSync performs the actual adapter round-trip for a sync started by
// RequestSync. It mutates ApplicationState, so it runs on the owning
// goroutine: tests call it directly, and the event loop in
// cmd/vaultkeeper runs the side effect returned by Handle in place, so
// the loop waits for the host CLI while a sync is in progress.
func (d *Dispatcher) RunSync(ctx context.Context) {
	entries, err := d.adapter.List(ctx, d.sessionTok)
	if err != nil {
		d.state.FinishSyncFailed(err.Error())
		d.state.SetStatus("sync failed: "+err.Error(), appstate.LevelError, d.statusTTL, d.now())
		return
	}

	doc := metacache.BuildDocument(d.accountID, entries, d.now())
	if err := d.metaStore.Save(doc); err != nil {
		d.log.Warn().Err(err).Msg("failed to persist metadata cache")
	}

	d.state.SetRows(doc.Entries)
	d.state.FinishSyncOK()
}

// Tick advances the spinner and expires the status message; called once
// per input-loop tick.
func (d *Dispatcher) Tick() {
	d.state.ExpireStatus(d.now())
	if d.state.Sync.Phase == appstate.SyncSyncing {
		d.state.AdvanceSpinner()
	}
}

// Handle applies one InputEvent to the owned ApplicationState, returning
// any synchronous side effect the caller must perform on the owning
// goroutine (e.g. RunSync) encoded as a zero-arg thunk, or nil if none is
// needed.
func (d *Dispatcher) Handle(ctx context.Context, ev InputEvent) (sideEffect func()) {
	if ev.Kind == EventTick {
		d.Tick()
		return nil
	}

	switch d.state.Mode {
	case appstate.ModePasswordInput:
		return d.handlePasswordInput(ctx, ev)
	case appstate.ModeSaveTokenPrompt:
		return d.handleSaveTokenPrompt(ctx, ev)
	case appstate.ModeNotLoggedIn, appstate.ModeError:
		if ev.Kind == EventQuit {
			d.shouldExit = true
		}
		return nil
	default:
		return d.handleNormalOrFiltering(ctx, ev)
	}
}

func (d *Dispatcher) handlePasswordInput(ctx context.Context, ev InputEvent) func() {
	switch ev.Kind {
	case EventRune:
		d.state.UnlockBuffer += string(ev.Rune)
	case EventBackspace:
		if n := len(d.state.UnlockBuffer); n > 0 {
			d.state.UnlockBuffer = d.state.UnlockBuffer[:n-1]
		}
	case EventSubmit:
		password := d.state.UnlockBuffer
		return func() {
			tok, err := d.adapter.Unlock(ctx, password)
			d.state.UnlockBuffer = ""
			if err != nil {
				d.state.LastUnlockErr = err.Error()
				return
			}
			d.sessionTok = tok
			d.state.LastUnlockErr = ""
			d.state.Mode = appstate.ModeSaveTokenPrompt
		}
	case EventQuit:
		d.shouldExit = true
		d.exitCode = 3
	}
	return nil
}

// handleSaveTokenPrompt answers the Y/N prompt from this design. Only a
// rune event carries the answer; anything else is ignored rather than
// defaulting either way.
func (d *Dispatcher) handleSaveTokenPrompt(ctx context.Context, ev InputEvent) func() {
	if ev.Kind != EventRune {
		return nil
	}
	switch ev.Rune {
	case 'y', 'Y':
		if err := d.sessions.Save(d.sessionTok); err != nil {
			d.log.Warn().Err(err).Msg("failed to persist session token")
		}
		d.state.Mode = appstate.ModeNormal
		return d.beginSyncIfStale(ctx)
	case 'n', 'N':
		d.state.Mode = appstate.ModeNormal
		return d.beginSyncIfStale(ctx)
	}
	return nil
}

func (d *Dispatcher) handleNormalOrFiltering(ctx context.Context, ev InputEvent) func() {
	switch ev.Kind {
	case EventRune:
		d.state.Mode = appstate.ModeFiltering
		d.state.SetFilter(d.state.Filter + string(ev.Rune))
		d.enqueueSelectionPrefetch()
	case EventBackspace:
		if n := len(d.state.Filter); n > 0 {
			d.state.SetFilter(d.state.Filter[:n-1])
		}
		if d.state.Filter == "" {
			d.state.Mode = appstate.ModeNormal
		}
		d.enqueueSelectionPrefetch()
	case EventClearFilter:
		d.state.SetFilter("")
		d.state.Mode = appstate.ModeNormal
	case EventUp:
		d.state.MoveUp()
		d.enqueueSelectionPrefetch()
	case EventDown:
		d.state.MoveDown()
		d.enqueueSelectionPrefetch()
	case EventPageUp:
		d.state.PageUp()
		d.enqueueSelectionPrefetch()
	case EventPageDown:
		d.state.PageDown()
		d.enqueueSelectionPrefetch()
	case EventHome:
		d.state.Home()
		d.enqueueSelectionPrefetch()
	case EventEnd:
		d.state.End()
		d.enqueueSelectionPrefetch()
	case EventTabLeft:
		d.state.SetTab((d.state.Tab - 1 + 5) % 5)
		d.enqueueSelectionPrefetch()
	case EventTabRight:
		d.state.SetTab((d.state.Tab + 1) % 5)
		d.enqueueSelectionPrefetch()
	case EventTabSelect:
		d.state.SetTab(appstate.Tab(ev.Arg))
		d.enqueueSelectionPrefetch()
	case EventToggleDetails:
		d.state.ToggleDetails()
	case EventScrollDetails:
		d.state.ScrollDetails(ev.Arg)
	case EventCopy:
		return d.handleCopy(ctx, CopyField(ev.Arg))
	case EventRefresh:
		if d.RequestSync() {
			return func() { d.RunSync(ctx) }
		}
	case EventQuit:
		d.shouldExit = true
	case EventLockAndQuit:
		d.secrets.Clear()
		d.totps.Clear()
		if err := d.sessions.Clear(); err != nil {
			d.log.Warn().Err(err).Msg("failed to clear session store")
		}
		d.didLockQuit = true
		d.shouldExit = true
	}
	return nil
}

func (d *Dispatcher) enqueueSelectionPrefetch() {
	if d.prefetcher == nil {
		return
	}
	if m, ok := d.state.SelectedEntry(); ok {
		d.prefetcher.Enqueue(m.ID)
	}
}

// handleCopy implements the copy-action template of this design: gate on
// secrets_available (P10), consult SecretCache, fall back to a
// synchronous adapter fetch on miss, extract the requested field, and
// hand it to the clipboard gateway. TOTP is computed locally from the
// cached seed, never via the adapter.
func (d *Dispatcher) handleCopy(ctx context.Context, field CopyField) func() {
	if !d.state.SecretsAvailable {
		d.state.SetStatus("please wait, still loading vault", appstate.LevelWarning, d.statusTTL, d.now())
		return nil
	}

	meta, ok := d.state.SelectedEntry()
	if !ok {
		return nil
	}

	if entry, hit := d.secrets.Get(meta.ID); hit {
		d.copyFromEntry(entry, field)
		return nil
	}

	// Miss: hand the adapter fetch back as a side effect; the caller runs
	// it on the owning goroutine and waits for the subprocess.
	return func() {
		entry, err := d.adapter.Get(ctx, d.sessionTok, meta.ID)
		if err != nil {
			d.state.SetStatus("copy failed: "+err.Error(), appstate.LevelError, d.statusTTL, d.now())
			return
		}
		d.secrets.Insert(meta.ID, entry)
		d.copyFromEntry(entry, field)
	}
}

func (d *Dispatcher) copyFromEntry(entry vaultkeeper.VaultEntry, field CopyField) {
	var value string
	switch field {
	case FieldUsername:
		if entry.Login != nil {
			value = entry.Login.Username
		}
	case FieldPassword:
		if entry.Login != nil {
			value = entry.Login.Password
		}
	case FieldTOTP:
		if entry.Login == nil || entry.Login.TOTPSeed == "" {
			d.state.SetStatus("entry has no TOTP seed", appstate.LevelWarning, d.statusTTL, d.now())
			return
		}
		value = d.totpCode(entry.ID, entry.Login.TOTPSeed)
	case FieldCardNumber:
		if entry.Card != nil {
			value = entry.Card.Number
		}
	case FieldCVV:
		if entry.Card != nil {
			value = entry.Card.Code
		}
	}

	if value == "" {
		d.state.SetStatus("nothing to copy for that field", appstate.LevelWarning, d.statusTTL, d.now())
		return
	}
	if err := d.clip.Copy(value); err != nil {
		d.state.SetStatus("clipboard error: "+err.Error(), appstate.LevelError, d.statusTTL, d.now())
	}
}

// totpCode always recomputes for display; per this resolved open
// question the TotpCache is only consulted here, for the explicit copy
// path, and only when at least 3 seconds remain in the current step so a
// copy never hands over a code that's about to flip. A cached code from
// an earlier step is never returned.
func (d *Dispatcher) totpCode(id, seed string) string {
	now := d.now().Unix()
	result := totp.Generate(seed, now)
	if !result.Valid {
		return ""
	}
	if result.SecondsRemaining < 3 {
		return result.Code
	}
	if cached, hit := d.totps.Get(id); hit && cached.Code == result.Code {
		return cached.Code
	}
	d.totps.Insert(id, result.Code)
	return result.Code
}
