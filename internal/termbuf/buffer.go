// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

// Package termbuf holds the transcript of a shell session: an append-only
// sequence of lines plus the current prompt. Lines keep their raw content
// forever; styling is resolved at render time through the ansi allow list.
package termbuf

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/reefbird/gangway/internal/ansi"
	"github.com/reefbird/gangway/internal/model"
)

var (
	errorLineStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	commandLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
)

// Buffer is the ordered transcript of one session. Entries are only ever
// appended; the whole buffer resets only when the session disconnects.
type Buffer struct {
	lines  []model.TerminalLine
	prompt string
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// Append adds a line at the tail. Earlier entries are never touched.
func (b *Buffer) Append(kind model.LineKind, raw string) {
	b.lines = append(b.lines, model.TerminalLine{Kind: kind, Raw: raw})
}

// SetPrompt replaces the current prompt.
func (b *Buffer) SetPrompt(text string) {
	b.prompt = text
}

// Prompt returns the current prompt, or "" outside a connected session.
func (b *Buffer) Prompt() string {
	return b.prompt
}

// Lines returns the transcript in insertion order. Callers must treat the
// slice as read-only.
func (b *Buffer) Lines() []model.TerminalLine {
	return b.lines
}

// Len returns the number of transcript lines.
func (b *Buffer) Len() int {
	return len(b.lines)
}

// Reset drops all lines and the prompt. Called only on disconnect.
func (b *Buffer) Reset() {
	b.lines = nil
	b.prompt = ""
}

// View renders the whole transcript, one entry per line.
func (b *Buffer) View() string {
	if len(b.lines) == 0 {
		return ""
	}
	rendered := make([]string, len(b.lines))
	for i, l := range b.lines {
		rendered[i] = Render(l)
	}
	return strings.Join(rendered, "\n")
}

// Render converts one line into display text. Normal lines translate their
// recognized SGR sequences into styles; error and command lines drop embedded
// styling entirely and take a fixed look, so remote content cannot disguise
// an error line or fake a command echo. Literal text always survives intact.
func Render(l model.TerminalLine) string {
	switch l.Kind {
	case model.LineError:
		return errorLineStyle.Render(ansi.Strip(l.Raw))
	case model.LineCommand:
		return commandLineStyle.Render(ansi.Strip(l.Raw))
	default:
		var sb strings.Builder
		for _, seg := range ansi.Parse(l.Raw) {
			if seg.Style.IsZero() {
				sb.WriteString(seg.Text)
				continue
			}
			sb.WriteString(styleFor(seg.Style).Render(seg.Text))
		}
		return sb.String()
	}
}

// styleFor maps a parsed ansi style onto a lipgloss style.
func styleFor(s ansi.Style) lipgloss.Style {
	st := lipgloss.NewStyle()
	if s.Bold {
		st = st.Bold(true)
	}
	if s.Faint {
		st = st.Faint(true)
	}
	if s.Italic {
		st = st.Italic(true)
	}
	if s.Underline {
		st = st.Underline(true)
	}
	if s.Foreground != "" {
		st = st.Foreground(lipgloss.Color(s.Foreground))
	}
	if s.Background != "" {
		st = st.Background(lipgloss.Color(s.Background))
	}
	return st
}
