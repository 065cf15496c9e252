// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package relay

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// outputChunkSize bounds how much shell output a single output frame carries.
const outputChunkSize = 4096

// Bridge is one interactive SSH shell driven by a WebSocket session. Shell
// output is pumped into an internal channel and handed out in arrival order
// by Drain.
type Bridge struct {
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	chunks  chan string
	done    chan struct{}
	host    string
	user    string

	closeOnce sync.Once
}

// DialBridge connects to the remote host with the session's ephemeral key and
// starts an interactive login shell on a PTY. The host may carry an explicit
// port; otherwise 22 is assumed. Host keys are not verified: the key pair is
// single-use and the remote host is chosen by the same user who holds it.
func DialBridge(ctx context.Context, host, username string, signer ssh.Signer, timeout time.Duration) (*Bridge, error) {
	cfg := &ssh.ClientConfig{
		User: username,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	addr := host
	if !strings.Contains(host, ":") {
		addr = net.JoinHostPort(host, "22")
	}

	dialer := net.Dialer{Timeout: timeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, addr, cfg)
	if err != nil {
		netConn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)

	session, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create ssh session: %w", err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := session.RequestPty("xterm-256color", 24, 80, modes); err != nil {
		session.Close()
		client.Close()
		return nil, fmt.Errorf("request pty: %w", err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		client.Close()
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		client.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	if err := session.Shell(); err != nil {
		session.Close()
		client.Close()
		return nil, fmt.Errorf("start shell: %w", err)
	}

	b := &Bridge{
		client:  client,
		session: session,
		stdin:   stdin,
		chunks:  make(chan string, 64),
		done:    make(chan struct{}),
		host:    host,
		user:    username,
	}
	go b.pump(stdout)
	return b, nil
}

// pump reads shell output into the chunk channel until the session ends.
func (b *Bridge) pump(stdout io.Reader) {
	defer close(b.chunks)
	buf := make([]byte, outputChunkSize)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			select {
			case b.chunks <- string(buf[:n]):
			case <-b.done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// Execute writes a command line to the remote shell.
func (b *Bridge) Execute(args string) error {
	_, err := io.WriteString(b.stdin, args+"\n")
	return err
}

// Drain waits for the shell to produce output, then collects everything
// currently buffered. Each returned element becomes its own output frame.
func (b *Bridge) Drain(interval time.Duration) []string {
	time.Sleep(interval)
	var out []string
	for {
		select {
		case chunk, ok := <-b.chunks:
			if !ok {
				return out
			}
			out = append(out, chunk)
		default:
			return out
		}
	}
}

// Prompt returns the synthetic prompt line announced after connect and after
// every command.
func (b *Bridge) Prompt() string {
	return fmt.Sprintf("%s@%s:~$ ", b.user, b.host)
}

// Close tears down the SSH session and connection. Safe to call more than once.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
		_ = b.session.Close()
		_ = b.client.Close()
	})
}
