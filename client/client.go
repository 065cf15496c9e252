// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package client

import (
	"context"
	"fmt"

	"github.com/reefbird/gangway/internal/protocol"
	"github.com/reefbird/gangway/internal/transport"
)

// Credentials is one provisioned session: the opaque id addressing the
// streaming endpoint and the public half of the session key pair. The
// private half stays on the relay.
type Credentials struct {
	SessionID string
	PublicKey string
}

// Client talks to one relay.
type Client struct {
	baseURL     string
	provisioner *transport.Provisioner
}

// New returns a client for the relay at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:     baseURL,
		provisioner: transport.NewProvisioner(baseURL),
	}
}

// Provision requests a fresh session from the relay. Each session may be
// provisioned at most once; a dropped session requires a new call.
func (c *Client) Provision(ctx context.Context) (Credentials, error) {
	id, key, err := c.provisioner.Provision(ctx)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{SessionID: id, PublicKey: key}, nil
}

// OpenShell opens the session WebSocket and sends the connect frame for
// host/username. The caller owns the returned shell and must Close it.
// The relay answers with a prompt frame once the SSH bridge is up; read
// it with Next.
func (c *Client) OpenShell(ctx context.Context, creds Credentials, host, username string) (*Shell, error) {
	conn, err := transport.Dial(ctx, c.baseURL, creds.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to open session %s: %w", creds.SessionID, err)
	}
	conn.Send(ctx, protocol.Connect(host, username))
	return &Shell{conn: conn}, nil
}

// Shell is one open remote shell session.
type Shell struct {
	conn *transport.Conn
}

// Execute sends one command line to the remote shell. Output arrives as
// subsequent frames from Next, terminated by a fresh prompt frame.
func (s *Shell) Execute(ctx context.Context, args string) {
	s.conn.Send(ctx, protocol.Execute(args))
}

// Next returns the next inbound frame in arrival order. It blocks until a
// frame arrives, the context dies, or the connection closes.
func (s *Shell) Next(ctx context.Context) (protocol.Frame, error) {
	return s.conn.Next(ctx)
}

// Run executes args and collects output frames until the next prompt.
// It is a convenience for scripted, one-command-at-a-time use.
func (s *Shell) Run(ctx context.Context, args string) ([]string, error) {
	s.Execute(ctx, args)
	var out []string
	for {
		f, err := s.Next(ctx)
		if err != nil {
			return out, err
		}
		switch f.Type {
		case protocol.TypePrompt:
			return out, nil
		case protocol.TypeOutput:
			out = append(out, f.Content)
		case protocol.TypeError:
			return out, fmt.Errorf("remote error: %s", f.Content)
		}
	}
}

// Close tears the session down. The relay deletes the session key on
// disconnect, so a closed shell cannot be reopened.
func (s *Shell) Close() {
	s.conn.Close()
}
