// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui provides the shell session workflow: provision an ephemeral
// key pair, connect through the relay, and drive the remote shell from a
// transcript view. The session state machine decides what is allowed at
// any moment; this file only translates key presses and transport
// messages into machine events and paints the result.
package tui // import "github.com/reefbird/gangway/internal/tui"

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/reefbird/gangway/internal/config"
	"github.com/reefbird/gangway/internal/i18n"
	"github.com/reefbird/gangway/internal/model"
	"github.com/reefbird/gangway/internal/protocol"
	"github.com/reefbird/gangway/internal/session"
	"github.com/reefbird/gangway/internal/termbuf"
	"github.com/reefbird/gangway/internal/transport"
)

// Styles for focused and blurred text inputs.
var focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

// Fallbacks when the timeouts are not configured.
const (
	defaultProvisionTimeout = 10 * time.Second
	defaultConnectTimeout   = 15 * time.Second
)

// Connect form focus positions.
const (
	focusHost = iota
	focusUser
	focusConnect
)

// sessionConn is the part of the transport connection the shell view
// drives. *transport.Conn implements it; tests substitute a fake.
type sessionConn interface {
	Send(ctx context.Context, f protocol.Frame)
	Next(ctx context.Context) (protocol.Frame, error)
	Close()
}

// provisionFunc requests a one-time key pair from the relay.
type provisionFunc func(ctx context.Context) (sessionID, publicKey string, err error)

// dialFunc opens the session WebSocket for a provisioned id.
type dialFunc func(ctx context.Context, sessionID string) (sessionConn, error)

// Shell workflow messages. Every async message carries the generation it
// was issued under; messages from a torn-down session are dropped.
type (
	// keyIssuedMsg indicates provisioning succeeded.
	keyIssuedMsg struct {
		generation int
		id         string
		publicKey  string
	}

	// provisionFailedMsg indicates provisioning failed.
	provisionFailedMsg struct {
		generation int
		cause      string
	}

	// connOpenedMsg indicates the WebSocket is up and the connect frame
	// is on the wire.
	connOpenedMsg struct {
		generation int
		conn       sessionConn
	}

	// connFailedMsg indicates the WebSocket could not be opened.
	connFailedMsg struct {
		generation int
		cause      string
	}

	// frameMsg delivers one inbound frame, in arrival order.
	frameMsg struct {
		generation int
		frame      protocol.Frame
	}

	// connClosedMsg indicates the transport is gone, for any reason.
	connClosedMsg struct {
		generation int
	}

	// connectTimeoutMsg fires when no prompt arrived in time.
	connectTimeoutMsg struct {
		generation int
	}
)

// shellModel is the Bubble Tea model for the whole client workflow.
type shellModel struct {
	cfg   config.Config
	state session.State
	buf   *termbuf.Buffer

	provision provisionFunc
	dial      dialFunc
	conn      sessionConn

	// generation increments on every session teardown. Commands started
	// under an earlier generation deliver stale messages which are
	// silently discarded.
	generation int

	// Key screen: false shows the issued key, true shows the connect form.
	formStage bool
	keyCopied bool

	hostInput  textinput.Model
	userInput  textinput.Model
	focusIndex int
	formErr    string

	input    textinput.Model // live shell line
	viewport viewport.Model
	spinner  spinner.Model

	width  int
	height int
}

// newShellModel wires the model to a real relay.
func newShellModel(cfg config.Config) *shellModel {
	prov := transport.NewProvisioner(cfg.Relay.URL)
	return newShellModelWithTransport(cfg, prov.Provision,
		func(ctx context.Context, sessionID string) (sessionConn, error) {
			return transport.Dial(ctx, cfg.Relay.URL, sessionID)
		})
}

// newShellModelWithTransport allows injection of the provisioning and dial
// functions. Tests use fakes here.
func newShellModelWithTransport(cfg config.Config, provision provisionFunc, dial dialFunc) *shellModel {
	host := textinput.New()
	host.Prompt = "Host:     "
	host.Placeholder = "example.com"
	host.CharLimit = 128
	host.Width = 40
	host.Cursor.Style = focusedStyle

	user := textinput.New()
	user.Prompt = "Username: "
	user.Placeholder = "alice"
	user.CharLimit = 64
	user.Width = 40
	user.Cursor.Style = focusedStyle

	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 512
	in.Cursor.Style = focusedStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorHighlight)

	return &shellModel{
		cfg:       cfg,
		state:     session.New(),
		buf:       termbuf.New(),
		provision: provision,
		dial:      dial,
		hostInput: host,
		userInput: user,
		input:     in,
		viewport:  viewport.New(0, 0),
		spinner:   sp,
	}
}

// Init starts cursor blinking; everything else waits for the user.
func (m *shellModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update is the single place session state changes. Inbound frames, user
// actions and timers all arrive here one at a time.
func (m *shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = msg.Height - 7
		if m.viewport.Height < 3 {
			m.viewport.Height = 3
		}
		m.input.Width = msg.Width - 4
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		if st := m.state.Status(); st != model.StatusGeneratingKey && st != model.StatusConnecting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case keyIssuedMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.state, _ = session.Next(m.state, session.KeyIssued{ID: msg.id, PublicKey: msg.publicKey})
		m.formStage = false
		m.keyCopied = false
		return m, nil

	case provisionFailedMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.state, _ = session.Next(m.state, session.ProvisionFailed{Cause: msg.cause})
		return m, nil

	case connOpenedMsg:
		if msg.generation != m.generation {
			// The session was torn down while dialing. Nobody owns this
			// socket anymore, so close it here.
			msg.conn.Close()
			return m, nil
		}
		m.conn = msg.conn
		return m, tea.Batch(m.waitForFrame(msg.conn), m.connectTimeout())

	case connFailedMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.state, _ = session.Next(m.state, session.Fatal{Cause: msg.cause})
		return m, nil

	case connectTimeoutMsg:
		if msg.generation != m.generation || m.state.Status() != model.StatusConnecting {
			return m, nil
		}
		// The relay never answered with a prompt. The generation bump
		// invalidates the pending read on the dying socket.
		m.generation++
		if m.conn != nil {
			m.conn.Close()
			m.conn = nil
		}
		m.state, _ = session.Next(m.state, session.Fatal{Cause: i18n.T("shell.connect_timeout")})
		return m, nil

	case frameMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		// Re-arm the reader first so frames keep flowing in order.
		cmd := m.waitForFrame(m.conn)
		m.applyFrame(msg.frame)
		return m, cmd

	case connClosedMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.reset()
		return m, nil
	}

	// Cursor blinking and other component messages.
	return m, m.updateInputs(msg)
}

// handleKeyMsg routes a key press to the handler for the current status.
func (m *shellModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.reset()
		return m, tea.Quit
	}

	switch m.state.Status() {
	case model.StatusIdle:
		return m.handleIdleKeys(msg)
	case model.StatusGeneratingKey:
		if msg.String() == "esc" {
			m.reset()
		}
		return m, nil
	case model.StatusKeyGenerated:
		if m.formStage {
			return m.handleFormKeys(msg)
		}
		return m.handleKeyScreenKeys(msg)
	case model.StatusConnecting, model.StatusConnected:
		return m.handleShellKeys(msg)
	case model.StatusError:
		switch msg.String() {
		case "esc", "enter":
			m.reset()
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}
	return m, nil
}

// handleIdleKeys handles input on the idle screen.
func (m *shellModel) handleIdleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "g", "enter":
		m.state, _ = session.Next(m.state, session.GenerateRequested{})
		if m.state.Status() != model.StatusGeneratingKey {
			return m, nil
		}
		return m, tea.Batch(m.provisionCmd(), m.spinner.Tick)
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

// handleKeyScreenKeys handles input while the issued key is displayed.
func (m *shellModel) handleKeyScreenKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "c":
		// Copy the public key so it can be installed on the target host.
		if err := clipboard.WriteAll(m.state.Session.PublicKey); err == nil {
			m.keyCopied = true
		}
		return m, nil

	case "enter":
		m.formStage = true
		m.formErr = ""
		return m, m.setFormFocus(focusHost)

	case "esc":
		m.reset()
		return m, nil
	}
	return m, nil
}

// handleFormKeys handles input on the connect form.
func (m *shellModel) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Back to the key display; the session key stays valid.
		m.formStage = false
		return m, nil

	case "tab", "shift+tab", "enter", "up", "down":
		s := msg.String()

		if s == "enter" && m.focusIndex == focusConnect {
			return m.submitConnect()
		}

		if s == "up" || s == "shift+tab" {
			m.focusIndex--
			if m.focusIndex < focusHost {
				m.focusIndex = focusConnect
			}
		} else {
			m.focusIndex++
			if m.focusIndex > focusConnect {
				m.focusIndex = focusHost
			}
		}
		return m, m.setFormFocus(m.focusIndex)
	}

	return m, m.updateInputs(msg)
}

// submitConnect validates the form and asks the machine to connect.
func (m *shellModel) submitConnect() (tea.Model, tea.Cmd) {
	host := strings.TrimSpace(m.hostInput.Value())
	user := strings.TrimSpace(m.userInput.Value())
	if host == "" || user == "" {
		m.formErr = i18n.T("shell.form_incomplete")
		return m, nil
	}

	var action session.Action
	m.state, action = session.Next(m.state, session.ConnectRequested{})
	if action != session.ActionSendConnect {
		return m, nil
	}
	m.formErr = ""
	m.input.Focus()
	return m, tea.Batch(m.dialCmd(m.state.Session.ID, host, user), m.spinner.Tick)
}

// handleShellKeys handles input while connecting or connected. The input
// line accepts keystrokes in both states; submitting is gated on a live
// prompt.
func (m *shellModel) handleShellKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.reset()
		return m, nil

	case "enter":
		if m.state.Status() != model.StatusConnected {
			return m, nil
		}
		args := strings.TrimSpace(m.input.Value())
		if args == "" {
			return m, nil
		}
		m.buf.Append(model.LineCommand, m.buf.Prompt()+args)
		m.refreshViewport()
		if m.conn != nil {
			m.conn.Send(context.Background(), protocol.Execute(args))
		}
		m.input.Reset()
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applyFrame feeds one inbound frame into the machine and the transcript.
func (m *shellModel) applyFrame(f protocol.Frame) {
	switch f.Type {
	case protocol.TypePrompt:
		var action session.Action
		m.state, action = session.Next(m.state, session.PromptReceived{Content: f.Content})
		if action == session.ActionStorePrompt {
			m.buf.SetPrompt(f.Content)
			m.buf.Append(model.LineNormal, f.Content)
		}
	case protocol.TypeOutput:
		m.buf.Append(model.LineNormal, f.Content)
	case protocol.TypeError:
		m.buf.Append(model.LineError, f.Content)
	}
	m.refreshViewport()
}

// reset tears the session down and returns to the idle screen. In-flight
// commands belong to the previous generation and get dropped on arrival.
func (m *shellModel) reset() {
	m.generation++
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.state, _ = session.Next(m.state, session.TransportClosed{})
	m.buf.Reset()
	m.hostInput.Reset()
	m.userInput.Reset()
	m.input.Reset()
	m.input.Blur()
	m.formStage = false
	m.formErr = ""
	m.keyCopied = false
	m.focusIndex = focusHost
	m.refreshViewport()
}

// setFormFocus moves focus between the connect form fields.
func (m *shellModel) setFormFocus(index int) tea.Cmd {
	m.focusIndex = index
	inputs := []*textinput.Model{&m.hostInput, &m.userInput}
	var cmds []tea.Cmd
	for i, in := range inputs {
		if i == index {
			cmds = append(cmds, in.Focus())
			in.TextStyle = focusedStyle
			continue
		}
		in.Blur()
		in.TextStyle = lipgloss.NewStyle()
	}
	return tea.Batch(cmds...)
}

// updateInputs forwards component messages to whichever inputs are active.
func (m *shellModel) updateInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	switch m.state.Status() {
	case model.StatusKeyGenerated:
		m.hostInput, cmd = m.hostInput.Update(msg)
		cmds = append(cmds, cmd)
		m.userInput, cmd = m.userInput.Update(msg)
		cmds = append(cmds, cmd)
	case model.StatusConnecting, model.StatusConnected:
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// refreshViewport rebuilds the transcript view, keeping the tail in sight
// unless the user scrolled away.
func (m *shellModel) refreshViewport() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.buf.View())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// provisionCmd asks the relay for a key pair, bounded by the provision
// timeout.
func (m *shellModel) provisionCmd() tea.Cmd {
	generation := m.generation
	provision := m.provision
	timeout := m.cfg.Timeouts.Provision
	if timeout <= 0 {
		timeout = defaultProvisionTimeout
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		id, key, err := provision(ctx)
		if err != nil {
			return provisionFailedMsg{generation: generation, cause: err.Error()}
		}
		return keyIssuedMsg{generation: generation, id: id, publicKey: key}
	}
}

// dialCmd opens the WebSocket and sends the connect frame.
func (m *shellModel) dialCmd(sessionID, host, username string) tea.Cmd {
	generation := m.generation
	dial := m.dial
	timeout := m.cfg.Timeouts.Connect
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		conn, err := dial(ctx, sessionID)
		if err != nil {
			return connFailedMsg{generation: generation, cause: err.Error()}
		}
		conn.Send(ctx, protocol.Connect(host, username))
		return connOpenedMsg{generation: generation, conn: conn}
	}
}

// waitForFrame blocks on the next inbound frame. It re-arms itself from
// the frameMsg handler, one frame at a time, which preserves arrival
// order.
func (m *shellModel) waitForFrame(conn sessionConn) tea.Cmd {
	generation := m.generation
	return func() tea.Msg {
		f, err := conn.Next(context.Background())
		if err != nil {
			return connClosedMsg{generation: generation}
		}
		return frameMsg{generation: generation, frame: f}
	}
}

// connectTimeout bounds the wait for the first prompt frame.
func (m *shellModel) connectTimeout() tea.Cmd {
	generation := m.generation
	timeout := m.cfg.Timeouts.Connect
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	return tea.Tick(timeout, func(time.Time) tea.Msg {
		return connectTimeoutMsg{generation: generation}
	})
}

// View paints the screen for the current status.
func (m *shellModel) View() string {
	switch m.state.Status() {
	case model.StatusGeneratingKey:
		return m.viewGenerating()
	case model.StatusKeyGenerated:
		if m.formStage {
			return m.viewConnectForm()
		}
		return m.viewKey()
	case model.StatusConnecting, model.StatusConnected:
		return m.viewShell()
	case model.StatusError:
		return m.viewError()
	default:
		return m.viewIdle()
	}
}

// viewIdle renders the start screen.
func (m *shellModel) viewIdle() string {
	var content []string
	content = append(content, titleStyle.Render("🔑 "+i18n.T("shell.title")))
	content = append(content, "")
	content = append(content, i18n.T("shell.idle_body"))
	content = append(content, "")
	content = append(content, helpStyle.Render(i18n.T("shell.idle_hint")))

	main := dialogBoxStyle.
		BorderForeground(colorSubtle).
		Render(lipgloss.JoinVertical(lipgloss.Left, content...))

	footer := footerStyle.Render(AlignFooter(i18n.T("shell.idle_footer"), "", m.footerWidth()))
	return lipgloss.JoinVertical(lipgloss.Left, main, "", footer)
}

// viewGenerating renders the provisioning wait.
func (m *shellModel) viewGenerating() string {
	var content []string
	content = append(content, titleStyle.Render("🔑 "+i18n.T("shell.title")))
	content = append(content, "")
	content = append(content, m.spinner.View()+" "+i18n.T("shell.generating"))

	main := dialogBoxStyle.
		BorderForeground(colorSubtle).
		Render(lipgloss.JoinVertical(lipgloss.Left, content...))

	footer := footerStyle.Render(AlignFooter(i18n.T("shell.generating_footer"), "", m.footerWidth()))
	return lipgloss.JoinVertical(lipgloss.Left, main, "", footer)
}

// viewKey renders the issued session key.
func (m *shellModel) viewKey() string {
	var content []string
	content = append(content, titleStyle.Render("✨ "+i18n.T("shell.key_title")))
	content = append(content, "")
	content = append(content, helpStyle.Render("Session: ")+m.state.Session.ID)
	content = append(content, "")
	content = append(content, specialStyle.Render(i18n.T("shell.key_once")))
	content = append(content, "")
	content = append(content, m.state.Session.PublicKey)
	content = append(content, "")

	if m.keyCopied {
		content = append(content, successStyle.Render(i18n.T("shell.key_copied")))
	} else {
		content = append(content, helpStyle.Render(i18n.T("shell.key_copy_hint")))
	}

	main := dialogBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, content...))

	footer := footerStyle.Render(AlignFooter(i18n.T("shell.key_footer"), "", m.footerWidth()))
	return lipgloss.JoinVertical(lipgloss.Left, main, "", footer)
}

// viewConnectForm renders the host/username form.
func (m *shellModel) viewConnectForm() string {
	var content []string
	content = append(content, titleStyle.Render("🔌 "+i18n.T("shell.form_title")))
	content = append(content, "")
	content = append(content, m.hostInput.View())
	content = append(content, m.userInput.View())

	button := formItemStyle.Render("[ " + i18n.T("shell.form_connect") + " ]")
	if m.focusIndex == focusConnect {
		button = formSelectedItemStyle.Render("[ " + i18n.T("shell.form_connect") + " ]")
	}
	content = append(content, "", button)

	if m.formErr != "" {
		content = append(content, "", errorStyle.Render(m.formErr))
	}

	main := dialogBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, content...))

	footer := footerStyle.Render(AlignFooter(i18n.T("shell.form_footer"), "", m.footerWidth()))
	return lipgloss.JoinVertical(lipgloss.Left, main, "", footer)
}

// viewShell renders the transcript plus the live input line.
func (m *shellModel) viewShell() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.state.Status() == model.StatusConnected {
		b.WriteString(promptStyle.Render(m.buf.Prompt()))
		b.WriteString(m.input.View())
	} else {
		b.WriteString(m.spinner.View() + " " + i18n.T("shell.connecting"))
		if v := m.input.View(); v != "" {
			b.WriteString("\n" + v)
		}
	}
	b.WriteString("\n")

	var status string
	if m.state.Status() == model.StatusConnected {
		status = successStyle.Render("● " + i18n.T("shell.connected"))
	} else {
		status = specialStyle.Render("● " + i18n.T("shell.connecting"))
	}
	b.WriteString(footerStyle.Render(AlignFooter(i18n.T("shell.shell_footer"), status, m.footerWidth())))
	return b.String()
}

// viewError renders the stored failure.
func (m *shellModel) viewError() string {
	var content []string
	content = append(content, titleStyle.Render("⚠️  "+i18n.T("shell.error_title")))
	content = append(content, "")
	content = append(content, errorStyle.Render(m.state.LastError))

	main := dialogBoxStyle.
		BorderForeground(colorError).
		Render(lipgloss.JoinVertical(lipgloss.Left, content...))

	footer := footerStyle.Render(AlignFooter(i18n.T("shell.error_footer"), "", m.footerWidth()))
	return lipgloss.JoinVertical(lipgloss.Left, main, "", footer)
}

// footerWidth returns the usable footer width before the first window
// size message arrives.
func (m *shellModel) footerWidth() int {
	if m.width > 0 {
		return m.width
	}
	return 78
}
