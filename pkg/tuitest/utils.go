// Package tuitest builds bubbletea messages and normalises rendered views
// for model tests.
package tuitest

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// StripANSI drops escape sequences plus trailing spaces and blank lines, so
// a view can be matched as plain text.
func StripANSI(view string) string {
	var b strings.Builder
	for line := range strings.Lines(ansi.Strip(view)) {
		b.WriteString(strings.TrimRight(line, " \n"))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// KeyPress is a single typed rune.
func KeyPress(r rune) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// KeyPressString types s one rune at a time.
func KeyPressString(s string) []tea.Msg {
	var msgs []tea.Msg
	for _, r := range s {
		msgs = append(msgs, KeyPress(r))
	}
	return msgs
}

func key(k tea.KeyType) tea.Msg { return tea.KeyMsg{Type: k} }

func KeyDown() tea.Msg { return key(tea.KeyDown) }
func KeyUp() tea.Msg   { return key(tea.KeyUp) }
func KeyEsc() tea.Msg  { return key(tea.KeyEsc) }

// WindowSize is the resize message sent on startup and on SIGWINCH.
func WindowSize(w, h int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: w, Height: h}
}
