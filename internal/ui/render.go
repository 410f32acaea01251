package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/blackwell-systems/vaultkeeper/internal/appstate"
)

var (
	styleDefault = tcell.StyleDefault
	styleHeader  = tcell.StyleDefault.Bold(true)
	styleSel     = tcell.StyleDefault.Reverse(true)
	styleInfo    = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleWarn    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleErr     = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// Render draws one frame from an immutable snapshot of state. It never
// mutates state and never touches the host-CLI adapter — every value it needs is already on ApplicationState.
func Render(screen tcell.Screen, state *appstate.ApplicationState) {
	screen.Clear()
	w, h := screen.Size()

	switch state.Mode {
	case appstate.ModePasswordInput:
		renderPasswordDialog(screen, state, w, h)
	case appstate.ModeNotLoggedIn:
		renderFullScreenMessage(screen, w, h, "Not logged in. Run the host CLI's login flow, then restart. Press Esc to exit.")
	case appstate.ModeError:
		renderFullScreenMessage(screen, w, h, "Unrecoverable error: "+state.LastUnlockErr+". Press Esc to exit.")
	case appstate.ModeSaveTokenPrompt:
		renderSaveTokenPrompt(screen, w, h)
	default:
		renderNormal(screen, state, w, h)
	}

	screen.Show()
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}

func renderFullScreenMessage(screen tcell.Screen, w, h int, msg string) {
	drawText(screen, 2, h/2, styleErr, msg)
	_ = w
}

func renderPasswordDialog(screen tcell.Screen, state *appstate.ApplicationState, w, h int) {
	drawText(screen, 2, h/2-1, styleHeader, "Vault is locked. Enter master password:")
	mask := make([]rune, len(state.UnlockBuffer))
	for i := range mask {
		mask[i] = '*'
	}
	drawText(screen, 2, h/2, styleDefault, string(mask))
	if state.LastUnlockErr != "" {
		drawText(screen, 2, h/2+2, styleErr, state.LastUnlockErr)
	}
	_ = w
}

func renderSaveTokenPrompt(screen tcell.Screen, w, h int) {
	drawText(screen, 2, h/2, styleHeader, "Save session for next launch? (y/n)")
	_ = w
}

func renderNormal(screen tcell.Screen, state *appstate.ApplicationState, w, h int) {
	renderTabs(screen, state, w)
	renderFilter(screen, state, w)

	listTop := 2
	listHeight := h - listTop - 1
	if state.DetailsVisible {
		listHeight = listHeight / 2
	}
	renderList(screen, state, listTop, listHeight, w)

	if state.DetailsVisible {
		renderDetails(screen, state, listTop+listHeight, h-listTop-listHeight-1, w)
	}

	renderStatusBar(screen, state, h-1, w)
}

func renderTabs(screen tcell.Screen, state *appstate.ApplicationState, w int) {
	labels := []string{"All", "Login", "Note", "Card", "Identity"}
	x := 0
	for i, label := range labels {
		style := styleDefault
		if appstate.Tab(i) == state.Tab {
			style = styleHeader
		}
		text := fmt.Sprintf(" %s ", label)
		drawText(screen, x, 0, style, text)
		x += len(text) + 1
	}
	_ = w
}

func renderFilter(screen tcell.Screen, state *appstate.ApplicationState, w int) {
	prefix := "Filter: "
	drawText(screen, 0, 1, styleDefault, prefix+state.Filter)
	if state.Sync.Phase == appstate.SyncSyncing {
		frames := []rune{'|', '/', '-', '\\'}
		frame := frames[state.Sync.SpinnerFrame%len(frames)]
		drawText(screen, w-2, 1, styleInfo, string(frame))
	}
}

func renderList(screen tcell.Screen, state *appstate.ApplicationState, top, height, w int) {
	for row := 0; row < height && row < len(state.Filtered); row++ {
		idx := row + state.Viewport
		if idx >= len(state.Filtered) {
			break
		}
		meta := state.Rows[state.Filtered[idx]]
		style := styleDefault
		if idx == state.Selected {
			style = styleSel
		}
		line := fmt.Sprintf("%-30s %-20s %s", meta.Name, meta.Username, meta.Kind)
		if len(line) > w {
			line = line[:w]
		}
		drawText(screen, 0, top+row, style, line)
	}
}

func renderDetails(screen tcell.Screen, state *appstate.ApplicationState, top, height, w int) {
	meta, ok := state.SelectedEntry()
	if !ok {
		return
	}
	drawText(screen, 0, top, styleHeader, "Details")
	lines := []string{
		"Name: " + meta.Name,
		"Username: " + meta.Username,
		"Kind: " + meta.Kind.String(),
	}
	if meta.HasTOTP {
		lines = append(lines, "TOTP: configured")
	}
	if meta.Favorite {
		lines = append(lines, "Favorite: yes")
	}
	for i, l := range lines {
		if i+1 >= height {
			break
		}
		drawText(screen, 0, top+1+i, styleDefault, l)
	}
	_ = w
}

func renderStatusBar(screen tcell.Screen, state *appstate.ApplicationState, y, w int) {
	if state.Status.Text == "" {
		return
	}
	style := styleInfo
	switch state.Status.Level {
	case appstate.LevelWarning:
		style = styleWarn
	case appstate.LevelError:
		style = styleErr
	}
	drawText(screen, 0, y, style, state.Status.Text)
	_ = w
}
