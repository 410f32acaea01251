// Package ui is the tcell-based renderer and input/tick event source. It
// owns the terminal screen exclusively; it reads
// an immutable *appstate.ApplicationState snapshot each render and never
// calls into internal/hostcli or mutates state itself — every input it
// observes is translated into a dispatch.InputEvent and handed to the
// caller's event loop instead.
//
// Grounded on pass-cli's terminal UI stack (gdamore/tcell/v2, reachable
// in that repo through tview); the direct tcell.Screen usage here is a
// thinner layer than tview's widget tree since ApplicationState already
// holds everything the renderer needs to draw.
package ui

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/blackwell-systems/vaultkeeper/internal/dispatch"
)

// tickPeriod is the input-loop tick period from this design ("period ≤
// 250ms, chosen to let the TOTP countdown animate smoothly").
const tickPeriod = 200 * time.Millisecond

// EventSource multiplexes tcell's PollEvent loop and a periodic ticker
// into a single channel of dispatch.InputEvent, translating key presses
// per the bindings table in this design.
type EventSource struct {
	screen tcell.Screen
	events chan dispatch.InputEvent
	done   chan struct{}
}

// NewEventSource starts the polling and ticking goroutines over screen and
// returns a handle whose Events channel the event loop should range over.
func NewEventSource(screen tcell.Screen) *EventSource {
	es := &EventSource{
		screen: screen,
		events: make(chan dispatch.InputEvent, 16),
		done:   make(chan struct{}),
	}
	go es.pollKeys()
	go es.tick()
	return es
}

// Events is the merged input/tick channel the dispatcher's event loop
// ranges over.
func (es *EventSource) Events() <-chan dispatch.InputEvent { return es.events }

// Close stops the ticker goroutine. The key-poll goroutine stops on its
// own once screen.Fini() is called elsewhere, per tcell's contract.
func (es *EventSource) Close() { close(es.done) }

func (es *EventSource) tick() {
	t := time.NewTicker(tickPeriod)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			select {
			case es.events <- dispatch.InputEvent{Kind: dispatch.EventTick}:
			default:
			}
		case <-es.done:
			return
		}
	}
}

func (es *EventSource) pollKeys() {
	for {
		ev := es.screen.PollEvent()
		if ev == nil {
			return
		}
		switch tev := ev.(type) {
		case *tcell.EventKey:
			if translated, ok := translateKey(tev); ok {
				es.events <- translated
			}
		case *tcell.EventResize:
			es.screen.Sync()
		}
	}
}

// translateKey maps one tcell key event to a dispatch.InputEvent per the
// bindings in this design. ok is false for keys with no assigned meaning.
func translateKey(ev *tcell.EventKey) (dispatch.InputEvent, bool) {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlQ, tcell.KeyEscape:
		return dispatch.InputEvent{Kind: dispatch.EventQuit}, true
	case tcell.KeyCtrlL:
		return dispatch.InputEvent{Kind: dispatch.EventLockAndQuit}, true
	case tcell.KeyCtrlX:
		return dispatch.InputEvent{Kind: dispatch.EventClearFilter}, true
	case tcell.KeyCtrlD:
		return dispatch.InputEvent{Kind: dispatch.EventToggleDetails}, true
	case tcell.KeyCtrlR:
		return dispatch.InputEvent{Kind: dispatch.EventRefresh}, true
	case tcell.KeyCtrlU:
		return dispatch.InputEvent{Kind: dispatch.EventCopy, Arg: int(dispatch.FieldUsername)}, true
	case tcell.KeyCtrlP:
		return dispatch.InputEvent{Kind: dispatch.EventCopy, Arg: int(dispatch.FieldPassword)}, true
	case tcell.KeyCtrlT:
		return dispatch.InputEvent{Kind: dispatch.EventCopy, Arg: int(dispatch.FieldTOTP)}, true
	case tcell.KeyCtrlN:
		return dispatch.InputEvent{Kind: dispatch.EventCopy, Arg: int(dispatch.FieldCardNumber)}, true
	case tcell.KeyCtrlM:
		return dispatch.InputEvent{Kind: dispatch.EventCopy, Arg: int(dispatch.FieldCVV)}, true
	case tcell.KeyCtrlK:
		return dispatch.InputEvent{Kind: dispatch.EventUp}, true
	case tcell.KeyCtrlJ:
		return dispatch.InputEvent{Kind: dispatch.EventDown}, true
	case tcell.KeyCtrlH:
		return dispatch.InputEvent{Kind: dispatch.EventTabLeft}, true
	case tcell.KeyUp:
		if ev.Modifiers()&tcell.ModShift != 0 {
			return dispatch.InputEvent{Kind: dispatch.EventScrollDetails, Arg: -1}, true
		}
		return dispatch.InputEvent{Kind: dispatch.EventUp}, true
	case tcell.KeyDown:
		if ev.Modifiers()&tcell.ModShift != 0 {
			return dispatch.InputEvent{Kind: dispatch.EventScrollDetails, Arg: 1}, true
		}
		return dispatch.InputEvent{Kind: dispatch.EventDown}, true
	case tcell.KeyLeft:
		return dispatch.InputEvent{Kind: dispatch.EventTabLeft}, true
	case tcell.KeyRight:
		return dispatch.InputEvent{Kind: dispatch.EventTabRight}, true
	case tcell.KeyPgUp:
		return dispatch.InputEvent{Kind: dispatch.EventPageUp}, true
	case tcell.KeyPgDn:
		return dispatch.InputEvent{Kind: dispatch.EventPageDown}, true
	case tcell.KeyHome:
		return dispatch.InputEvent{Kind: dispatch.EventHome}, true
	case tcell.KeyEnd:
		return dispatch.InputEvent{Kind: dispatch.EventEnd}, true
	case tcell.KeyCtrlA, tcell.KeyCtrlE, tcell.KeyCtrlB, tcell.KeyCtrlF:
		// Reserved by tcell's control-key set but unassigned in this design.
		return dispatch.InputEvent{}, false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return dispatch.InputEvent{Kind: dispatch.EventBackspace}, true
	case tcell.KeyEnter:
		return dispatch.InputEvent{Kind: dispatch.EventSubmit}, true
	case tcell.KeyRune:
		// Ctrl-1..5 arrive as plain digit runes with ModCtrl set rather
		// than as distinct tcell.Key constants. Everything else is a literal character: the filter
		// buffer in Normal/Filtering mode, the password buffer in
		// PasswordInput mode, or the y/n answer in SaveTokenPrompt mode —
		// internal/dispatch interprets the same EventRune differently per
		// Mode, so no mode-specific translation happens here.
		if ev.Modifiers()&tcell.ModCtrl != 0 && ev.Rune() >= '1' && ev.Rune() <= '5' {
			return dispatch.InputEvent{Kind: dispatch.EventTabSelect, Arg: int(ev.Rune() - '1')}, true
		}
		return dispatch.InputEvent{Kind: dispatch.EventRune, Rune: ev.Rune()}, true
	}
	return dispatch.InputEvent{}, false
}
