// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package transport

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/reefbird/gangway/internal/logging"
	"github.com/reefbird/gangway/internal/protocol"
)

// maxFrameSize bounds inbound frames. Shell output is chunked by the relay,
// so anything larger than this is hostile or broken.
const maxFrameSize = 1024 * 1024

// Conn is the streaming connection of one session. A session has at most
// one; it is owned by the shell view and every frame passes through it.
type Conn struct {
	ws     *websocket.Conn
	closed atomic.Bool
}

// Dial opens the WebSocket for sessionID. baseURL is the relay's HTTP URL;
// the scheme is translated to ws/wss.
func Dial(ctx context.Context, baseURL, sessionID string) (*Conn, error) {
	target, err := wsURL(baseURL, sessionID)
	if err != nil {
		return nil, err
	}
	ws, _, err := websocket.Dial(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", target, err)
	}
	ws.SetReadLimit(maxFrameSize)
	return &Conn{ws: ws}, nil
}

// wsURL derives ws(s)://.../ws/<sessionID> from the relay base URL.
func wsURL(baseURL, sessionID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid relay url %q: %w", baseURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported relay scheme %q", u.Scheme)
	}
	u.Path = path.Join(u.Path, "ws", sessionID)
	return u.String(), nil
}

// Send transmits one outbound frame. A send on a closed or failing
// connection is dropped and logged, never surfaced: the read side delivers
// the authoritative disconnect.
func (c *Conn) Send(ctx context.Context, f protocol.Frame) {
	if c.closed.Load() {
		logging.Warnf("transport: dropping %s frame, connection closed", f.Type)
		return
	}
	data, err := f.Encode()
	if err != nil {
		logging.Errorf("transport: cannot encode %s frame: %v", f.Type, err)
		return
	}
	if err := c.ws.Write(ctx, websocket.MessageText, data); err != nil {
		logging.Warnf("transport: dropping %s frame: %v", f.Type, err)
	}
}

// Next blocks until the next inbound frame arrives, preserving arrival
// order. Malformed data is dropped with a log line and the read continues.
// A returned error means the connection is gone and no further frames will
// ever arrive.
func (c *Conn) Next(ctx context.Context) (protocol.Frame, error) {
	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			c.closed.Store(true)
			return protocol.Frame{}, err
		}
		f, err := protocol.Decode(data)
		if err != nil {
			logging.Warnf("transport: dropping inbound frame: %v", err)
			continue
		}
		return f, nil
	}
}

// Close tears the connection down. Safe to call more than once.
func (c *Conn) Close() {
	if c.closed.Swap(true) {
		return
	}
	_ = c.ws.Close(websocket.StatusNormalClosure, "")
}
