// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reefbird/gangway/internal/config"
	"github.com/reefbird/gangway/internal/i18n"
	"github.com/reefbird/gangway/internal/model"
	"github.com/reefbird/gangway/internal/protocol"
	"github.com/reefbird/gangway/internal/session"
)

const testPublicKey = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIFakeFakeFakeFakeFakeFake gangway"

// fakeConn records outbound frames. Next blocks until the context dies,
// like a socket with nothing to say.
type fakeConn struct {
	sent   []protocol.Frame
	closed bool
}

func (c *fakeConn) Send(_ context.Context, f protocol.Frame) {
	c.sent = append(c.sent, f)
}

func (c *fakeConn) Next(ctx context.Context) (protocol.Frame, error) {
	<-ctx.Done()
	return protocol.Frame{}, ctx.Err()
}

func (c *fakeConn) Close() { c.closed = true }

func testConfig() config.Config {
	return config.Config{
		Relay:    config.RelayConfig{URL: "http://relay.test"},
		Timeouts: config.TimeoutConfig{Provision: time.Second, Connect: time.Second},
	}
}

// runCmd executes a command tree and collects every produced message.
// Safe only for commands known not to block.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, runCmd(c)...)
		}
		return out
	case nil:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

// findMsg picks the first message matching want out of a command's output.
func findMsg[T tea.Msg](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	for _, msg := range runCmd(cmd) {
		if m, ok := msg.(T); ok {
			return m
		}
	}
	var zero T
	t.Fatalf("no %T produced", zero)
	return zero
}

func TestShellSessionScenario(t *testing.T) {
	i18n.Init("en")
	fc := &fakeConn{}
	m := newShellModelWithTransport(testConfig(),
		func(ctx context.Context) (string, string, error) {
			return "session-1", testPublicKey, nil
		},
		func(ctx context.Context, sessionID string) (sessionConn, error) {
			if sessionID != "session-1" {
				t.Errorf("dialed session %q, want session-1", sessionID)
			}
			return fc, nil
		})

	// Generate a key from the idle screen.
	mi, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	m = mi.(*shellModel)
	if m.state.Status() != model.StatusGeneratingKey {
		t.Fatalf("expected GENERATING_KEY after 'g', got %v", m.state.Status())
	}
	issued := findMsg[keyIssuedMsg](t, cmd)

	mi, _ = m.Update(issued)
	m = mi.(*shellModel)
	if m.state.Status() != model.StatusKeyGenerated {
		t.Fatalf("expected KEY_GENERATED, got %v", m.state.Status())
	}
	if m.state.Session.ID == "" || m.state.Session.PublicKey == "" {
		t.Fatal("expected a non-empty session id and public key")
	}

	// Advance to the connect form and fill it in.
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = mi.(*shellModel)
	if !m.formStage {
		t.Fatal("expected the connect form after enter on the key screen")
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("example.com")})
	m = mi.(*shellModel)
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = mi.(*shellModel)
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("alice")})
	m = mi.(*shellModel)
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = mi.(*shellModel)
	if m.focusIndex != focusConnect {
		t.Fatalf("expected focus on the connect button, got %d", m.focusIndex)
	}

	// Submit: the machine moves to CONNECTING and the dial command sends
	// the connect frame.
	mi, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = mi.(*shellModel)
	if m.state.Status() != model.StatusConnecting {
		t.Fatalf("expected CONNECTING after submit, got %v", m.state.Status())
	}
	opened := findMsg[connOpenedMsg](t, cmd)
	if len(fc.sent) != 1 {
		t.Fatalf("expected 1 outbound frame after dialing, got %d", len(fc.sent))
	}
	if f := fc.sent[0]; f.Type != protocol.TypeConnect || f.Host != "example.com" || f.Username != "alice" {
		t.Fatalf("unexpected connect frame: %+v", f)
	}

	mi, _ = m.Update(opened)
	m = mi.(*shellModel)
	if m.conn == nil {
		t.Fatal("expected the connection to be retained")
	}

	// First prompt arrives: CONNECTED, transcript holds the prompt line.
	prompt := "alice@example.com:~$ "
	mi, _ = m.Update(frameMsg{generation: m.generation, frame: protocol.Prompt(prompt)})
	m = mi.(*shellModel)
	if m.state.Status() != model.StatusConnected {
		t.Fatalf("expected CONNECTED after prompt frame, got %v", m.state.Status())
	}
	if m.buf.Prompt() != prompt {
		t.Fatalf("prompt = %q, want %q", m.buf.Prompt(), prompt)
	}
	if m.buf.Len() != 1 || m.buf.Lines()[0].Raw != prompt {
		t.Fatalf("expected transcript [%q], got %v", prompt, m.buf.Lines())
	}

	// Type a command and submit it.
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ls")})
	m = mi.(*shellModel)
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = mi.(*shellModel)
	if m.buf.Len() != 2 {
		t.Fatalf("expected 2 transcript lines after submit, got %d", m.buf.Len())
	}
	echo := m.buf.Lines()[1]
	if echo.Kind != model.LineCommand || echo.Raw != prompt+"ls" {
		t.Fatalf("unexpected command echo: %+v", echo)
	}
	if len(fc.sent) != 2 {
		t.Fatalf("expected 2 outbound frames, got %d", len(fc.sent))
	}
	if f := fc.sent[1]; f.Type != protocol.TypeExecute || f.Args != "ls" {
		t.Fatalf("unexpected execute frame: %+v", f)
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input cleared after submit, got %q", m.input.Value())
	}

	// Output and a fresh prompt flow into the transcript in order.
	mi, _ = m.Update(frameMsg{generation: m.generation, frame: protocol.Output("docs  notes.txt")})
	m = mi.(*shellModel)
	mi, _ = m.Update(frameMsg{generation: m.generation, frame: protocol.Prompt(prompt)})
	m = mi.(*shellModel)
	if m.buf.Len() != 4 {
		t.Fatalf("expected 4 transcript lines, got %d", m.buf.Len())
	}

	// Transport closes: back to idle with nothing left behind.
	mi, _ = m.Update(connClosedMsg{generation: m.generation})
	m = mi.(*shellModel)
	if m.state.Status() != model.StatusIdle {
		t.Fatalf("expected IDLE after close, got %v", m.state.Status())
	}
	if m.buf.Len() != 0 || m.buf.Prompt() != "" {
		t.Fatal("expected an empty transcript and prompt after close")
	}
	if m.state.Session.ID != "" || m.state.Session.PublicKey != "" {
		t.Fatal("expected session id and key to be discarded")
	}
	if !fc.closed {
		t.Fatal("expected the connection to be closed")
	}
}

func TestShellProvisionFailure(t *testing.T) {
	i18n.Init("en")
	m := newShellModelWithTransport(testConfig(),
		func(ctx context.Context) (string, string, error) {
			return "", "", errors.New("relay rejected provisioning: 503")
		},
		nil)

	mi, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	m = mi.(*shellModel)
	failed := findMsg[provisionFailedMsg](t, cmd)

	mi, _ = m.Update(failed)
	m = mi.(*shellModel)
	if m.state.Status() != model.StatusError {
		t.Fatalf("expected ERROR after provisioning failure, got %v", m.state.Status())
	}
	if !strings.Contains(m.state.LastError, "503") {
		t.Fatalf("expected the cause to be stored, got %q", m.state.LastError)
	}

	// Esc recovers to idle; a new attempt is allowed.
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = mi.(*shellModel)
	if m.state.Status() != model.StatusIdle {
		t.Fatalf("expected IDLE after esc, got %v", m.state.Status())
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	m = mi.(*shellModel)
	if m.state.Status() != model.StatusGeneratingKey {
		t.Fatalf("expected a fresh attempt to start, got %v", m.state.Status())
	}
}

func TestShellStaleMessagesDropped(t *testing.T) {
	i18n.Init("en")
	m := newShellModelWithTransport(testConfig(),
		func(ctx context.Context) (string, string, error) {
			return "session-1", testPublicKey, nil
		},
		nil)

	mi, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	m = mi.(*shellModel)
	issued := findMsg[keyIssuedMsg](t, cmd)

	// The user bails out before provisioning finishes.
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = mi.(*shellModel)
	if m.state.Status() != model.StatusIdle {
		t.Fatalf("expected IDLE after esc, got %v", m.state.Status())
	}

	// The late result must not resurrect the dead attempt.
	mi, _ = m.Update(issued)
	m = mi.(*shellModel)
	if m.state.Status() != model.StatusIdle {
		t.Fatalf("stale key issuance changed status to %v", m.state.Status())
	}
	if m.state.Session.ID != "" {
		t.Fatalf("stale key issuance stored id %q", m.state.Session.ID)
	}
}

func TestShellEmptyInputNeverSends(t *testing.T) {
	i18n.Init("en")
	fc := &fakeConn{}
	m := newShellModelWithTransport(testConfig(), nil, nil)
	m.state = session.State{Session: model.Session{ID: "s1", PublicKey: testPublicKey, Status: model.StatusConnected}}
	m.conn = fc
	m.buf.SetPrompt("alice@example.com:~$ ")

	for _, input := range []string{"", "   ", "\t"} {
		m.input.SetValue(input)
		mi, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m = mi.(*shellModel)
		if m.buf.Len() != 0 {
			t.Fatalf("input %q appended a command line", input)
		}
		if len(fc.sent) != 0 {
			t.Fatalf("input %q sent a frame", input)
		}
	}
}

func TestShellSubmitGatedWhileConnecting(t *testing.T) {
	i18n.Init("en")
	fc := &fakeConn{}
	m := newShellModelWithTransport(testConfig(), nil, nil)
	m.state = session.State{Session: model.Session{ID: "s1", PublicKey: testPublicKey, Status: model.StatusConnecting}}
	m.conn = fc

	// Composition works while connecting, submission does not.
	mi, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("uptime")})
	m = mi.(*shellModel)
	if m.input.Value() != "uptime" {
		t.Fatalf("expected live composition, got %q", m.input.Value())
	}
	mi, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = mi.(*shellModel)
	if len(fc.sent) != 0 {
		t.Fatal("execute frame sent before a prompt arrived")
	}
	if m.input.Value() != "uptime" {
		t.Fatalf("expected input preserved, got %q", m.input.Value())
	}
}

func TestShellConnectFormValidation(t *testing.T) {
	i18n.Init("en")
	m := newShellModelWithTransport(testConfig(), nil, nil)
	m.state = session.State{Session: model.Session{ID: "s1", PublicKey: testPublicKey, Status: model.StatusKeyGenerated}}
	m.formStage = true
	m.focusIndex = focusConnect

	mi, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = mi.(*shellModel)
	if m.state.Status() != model.StatusKeyGenerated {
		t.Fatalf("empty form must not connect, got %v", m.state.Status())
	}
	if m.formErr == "" {
		t.Fatal("expected a validation error")
	}
}

func TestShellConnectTimeout(t *testing.T) {
	i18n.Init("en")
	fc := &fakeConn{}
	m := newShellModelWithTransport(testConfig(), nil, nil)
	m.state = session.State{Session: model.Session{ID: "s1", PublicKey: testPublicKey, Status: model.StatusConnecting}}
	m.conn = fc

	mi, _ := m.Update(connectTimeoutMsg{generation: m.generation})
	m = mi.(*shellModel)
	if m.state.Status() != model.StatusError {
		t.Fatalf("expected ERROR after connect timeout, got %v", m.state.Status())
	}
	if !fc.closed {
		t.Fatal("expected the half-open connection to be closed")
	}

	// A timeout that fires after the session moved on is ignored.
	m2 := newShellModelWithTransport(testConfig(), nil, nil)
	m2.state = session.State{Session: model.Session{ID: "s2", PublicKey: testPublicKey, Status: model.StatusConnected}}
	mi, _ = m2.Update(connectTimeoutMsg{generation: m2.generation})
	m2 = mi.(*shellModel)
	if m2.state.Status() != model.StatusConnected {
		t.Fatalf("timeout in CONNECTED changed status to %v", m2.state.Status())
	}
}

func TestShellInboundFramesKeepOrder(t *testing.T) {
	i18n.Init("en")
	m := newShellModelWithTransport(testConfig(), nil, nil)
	m.state = session.State{Session: model.Session{ID: "s1", PublicKey: testPublicKey, Status: model.StatusConnected}}
	m.conn = &fakeConn{}

	frames := []protocol.Frame{
		protocol.Prompt("p$ "),
		protocol.Output("one"),
		protocol.Error("boom"),
		protocol.Output("two"),
	}
	for _, f := range frames {
		mi, _ := m.Update(frameMsg{generation: m.generation, frame: f})
		m = mi.(*shellModel)
	}

	lines := m.buf.Lines()
	if len(lines) != len(frames) {
		t.Fatalf("expected %d lines, got %d", len(frames), len(lines))
	}
	wantKinds := []model.LineKind{model.LineNormal, model.LineNormal, model.LineError, model.LineNormal}
	wantRaw := []string{"p$ ", "one", "boom", "two"}
	for i := range lines {
		if lines[i].Kind != wantKinds[i] || lines[i].Raw != wantRaw[i] {
			t.Fatalf("line %d = %+v, want kind %v raw %q", i, lines[i], wantKinds[i], wantRaw[i])
		}
	}
	// The error frame did not disturb the session itself.
	if m.state.Status() != model.StatusConnected {
		t.Fatalf("error frame changed status to %v", m.state.Status())
	}
}

func TestShellViewSmoke(t *testing.T) {
	i18n.Init("en")
	m := newShellModelWithTransport(testConfig(), nil, nil)
	mi, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = mi.(*shellModel)
	if m.View() == "" {
		t.Fatal("idle view is empty")
	}

	m.state = session.State{Session: model.Session{ID: "sess-42", PublicKey: testPublicKey, Status: model.StatusKeyGenerated}}
	view := m.View()
	if !strings.Contains(view, "sess-42") {
		t.Fatal("key view does not show the session id")
	}
	if !strings.Contains(view, "ssh-ed25519") {
		t.Fatal("key view does not show the public key")
	}

	m.state.Session.Status = model.StatusConnected
	m.buf.SetPrompt("alice@example.com:~$ ")
	m.buf.Append(model.LineNormal, "alice@example.com:~$ ")
	m.refreshViewport()
	view = m.View()
	if !strings.Contains(view, "alice@example.com") {
		t.Fatal("shell view does not show the transcript")
	}

	m.state = session.State{LastError: "relay exploded", Session: model.Session{Status: model.StatusError}}
	if !strings.Contains(m.View(), "relay exploded") {
		t.Fatal("error view does not show the stored message")
	}
}
