// Package clipboard is the clipboard gateway: a thin wrapper over the OS
// clipboard that auto-clears what it wrote after a configurable timeout,
// so a copied password doesn't sit on the system clipboard indefinitely.
//
// Grounded on github.com/atotto/clipboard (named in the pass-cli
// manifest); the auto-clear timer is plumbing this package adds on top,
// since the library itself only does a single set/get.
package clipboard

import (
	"sync"
	"time"

	"github.com/atotto/clipboard"

	"github.com/blackwell-systems/vaultkeeper"
)

// Writer is the subset of atotto/clipboard this gateway depends on, so
// tests can substitute an in-memory fake without touching the real OS
// clipboard.
type Writer interface {
	WriteAll(text string) error
}

type osWriter struct{}

func (osWriter) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Gateway copies text to the clipboard and clears it again after timeout,
// unless superseded by a newer copy first.
type Gateway struct {
	mu      sync.Mutex
	writer  Writer
	timeout time.Duration
	timer   *time.Timer
	gen     uint64 // incremented on every Copy, guards stale clears
}

// New constructs a Gateway using the real OS clipboard.
func New(timeout time.Duration) *Gateway {
	return &Gateway{writer: osWriter{}, timeout: timeout}
}

// NewWithWriter constructs a Gateway over a custom Writer, for tests.
func NewWithWriter(w Writer, timeout time.Duration) *Gateway {
	return &Gateway{writer: w, timeout: timeout}
}

// Copy writes text to the clipboard and arms (or re-arms) the auto-clear
// timer. A copy in flight when a new Copy arrives is superseded: its clear
// is cancelled and a fresh one scheduled for the new text.
func (g *Gateway) Copy(text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.writer.WriteAll(text); err != nil {
		return vaultkeeper.Wrap(vaultkeeper.KindClipboardUnavailable, "clipboard.copy", "", err)
	}

	g.gen++
	myGen := g.gen
	if g.timer != nil {
		g.timer.Stop()
	}
	if g.timeout <= 0 {
		return nil
	}
	g.timer = time.AfterFunc(g.timeout, func() {
		g.clearIfCurrent(myGen)
	})
	return nil
}

func (g *Gateway) clearIfCurrent(gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.gen {
		return // superseded by a later copy
	}
	_ = g.writer.WriteAll("")
}

// Stop cancels any pending auto-clear without touching clipboard contents.
// Used on process shutdown where a background timer would otherwise leak.
func (g *Gateway) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.timer.Stop()
	}
}
