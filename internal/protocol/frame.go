// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

// Package protocol defines the JSON frames exchanged between the shell client
// and the relay over the session WebSocket. Every frame carries a `type`
// discriminator; the remaining fields depend on the type.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Frame types sent by the relay.
const (
	TypePrompt = "prompt"
	TypeOutput = "output"
	TypeError  = "error"
)

// Frame types sent by the client.
const (
	TypeConnect = "connect"
	TypeExecute = "execute"
)

// ErrMalformedFrame is returned for data that does not decode into a frame
// with a recognized type. Callers drop such frames without touching session
// state.
var ErrMalformedFrame = errors.New("malformed frame")

// Frame is the single wire message. Inbound frames (prompt/output/error)
// populate Content; the outbound connect frame populates Host and Username;
// the outbound execute frame populates Args.
type Frame struct {
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	Host     string `json:"host,omitempty"`
	Username string `json:"username,omitempty"`
	Args     string `json:"args,omitempty"`
}

// Connect builds the outbound frame that asks the relay to open a shell on
// host as username.
func Connect(host, username string) Frame {
	return Frame{Type: TypeConnect, Host: host, Username: username}
}

// Execute builds the outbound frame carrying one command line.
func Execute(args string) Frame {
	return Frame{Type: TypeExecute, Args: args}
}

// Prompt builds the inbound frame announcing a fresh shell prompt.
func Prompt(content string) Frame {
	return Frame{Type: TypePrompt, Content: content}
}

// Output builds an inbound frame carrying a chunk of shell output.
func Output(content string) Frame {
	return Frame{Type: TypeOutput, Content: content}
}

// Error builds an inbound frame carrying a relay-side failure message.
func Error(content string) Frame {
	return Frame{Type: TypeError, Content: content}
}

// Encode serializes the frame as JSON.
func (f Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// Decode parses data into a Frame and validates the type discriminator.
// Unknown or missing types yield ErrMalformedFrame.
func Decode(data []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	switch f.Type {
	case TypePrompt, TypeOutput, TypeError, TypeConnect, TypeExecute:
		return f, nil
	default:
		return Frame{}, fmt.Errorf("%w: unknown type %q", ErrMalformedFrame, f.Type)
	}
}
