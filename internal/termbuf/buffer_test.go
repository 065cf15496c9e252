// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package termbuf

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/reefbird/gangway/internal/model"
)

func TestAppendKeepsOrder(t *testing.T) {
	b := New()
	b.Append(model.LineNormal, "first")
	b.Append(model.LineError, "second")
	b.Append(model.LineCommand, "third")

	if b.Len() != 3 {
		t.Fatalf("expected 3 lines, got %d", b.Len())
	}
	lines := b.Lines()
	for i, want := range []string{"first", "second", "third"} {
		if lines[i].Raw != want {
			t.Fatalf("line %d: expected %q, got %q", i, want, lines[i].Raw)
		}
	}
	if lines[1].Kind != model.LineError || lines[2].Kind != model.LineCommand {
		t.Fatalf("line kinds not preserved: %+v", lines)
	}
}

func TestPromptReplacesNotAppends(t *testing.T) {
	b := New()
	b.SetPrompt("alice@one:~$ ")
	b.SetPrompt("alice@two:~$ ")
	if b.Prompt() != "alice@two:~$ " {
		t.Fatalf("expected latest prompt, got %q", b.Prompt())
	}
	if b.Len() != 0 {
		t.Fatalf("setting the prompt must not append lines, got %d", b.Len())
	}
}

func TestResetClearsEverything(t *testing.T) {
	b := New()
	b.Append(model.LineNormal, "left over")
	b.SetPrompt("$ ")
	b.Reset()
	if b.Len() != 0 || b.Prompt() != "" {
		t.Fatalf("reset left state behind: len=%d prompt=%q", b.Len(), b.Prompt())
	}
	if b.View() != "" {
		t.Fatalf("reset buffer should render empty, got %q", b.View())
	}
}

func TestRenderPreservesLiteralText(t *testing.T) {
	// Pin the renderer so assertions do not depend on the test terminal.
	lipgloss.SetColorProfile(termenv.Ascii)

	got := Render(model.TerminalLine{Kind: model.LineNormal, Raw: "\x1b[31mERROR: disk full\x1b[0m"})
	if got != "ERROR: disk full" {
		t.Fatalf("styled render mangled text: %q", got)
	}

	plain := Render(model.TerminalLine{Kind: model.LineNormal, Raw: "ERROR: disk full"})
	if plain != "ERROR: disk full" {
		t.Fatalf("plain render mangled text: %q", plain)
	}
}

func TestRenderNeutralizesInjection(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	// A title-change sequence and a screen clear hidden in output.
	got := Render(model.TerminalLine{Kind: model.LineNormal, Raw: "\x1b]0;pwned\x07ls\x1b[2J done"})
	if got != "ls done" {
		t.Fatalf("injection not neutralized: %q", got)
	}
	if strings.ContainsRune(got, 0x1b) {
		t.Fatalf("escape byte leaked: %q", got)
	}
}

func TestErrorLinesIgnoreEmbeddedStyling(t *testing.T) {
	lipgloss.SetColorProfile(termenv.TrueColor)
	defer lipgloss.SetColorProfile(termenv.Ascii)

	// The remote claims green; error lines stay error-styled.
	got := Render(model.TerminalLine{Kind: model.LineError, Raw: "\x1b[32mall good\x1b[0m"})
	if !strings.Contains(got, "all good") {
		t.Fatalf("error render lost text: %q", got)
	}
	if strings.Contains(got, "[32m") {
		t.Fatalf("embedded styling survived on an error line: %q", got)
	}
}

func TestViewJoinsLines(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	b := New()
	b.Append(model.LineNormal, "alice@example.com:~$ ")
	b.Append(model.LineCommand, "alice@example.com:~$ ls")
	b.Append(model.LineNormal, "notes.txt")

	want := "alice@example.com:~$ \nalice@example.com:~$ ls\nnotes.txt"
	if got := b.View(); got != want {
		t.Fatalf("view mismatch:\n got: %q\nwant: %q", got, want)
	}
}
