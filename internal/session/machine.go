// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

// Package session implements the connection lifecycle of a shell session as
// an explicit state machine. Next is the only place a session's status
// changes; provisioner, transport and UI merely feed events into it and carry
// out the action it returns.
package session

import "github.com/reefbird/gangway/internal/model"

// Event is an input to the machine. The concrete types below are the only
// implementations.
type Event interface {
	isEvent()
}

// GenerateRequested is emitted when the user asks for a new key pair.
type GenerateRequested struct{}

// KeyIssued is emitted when provisioning succeeds.
type KeyIssued struct {
	ID        string
	PublicKey string
}

// ProvisionFailed is emitted when provisioning fails.
type ProvisionFailed struct {
	Cause string
}

// ConnectRequested is emitted when the user submits host and username.
type ConnectRequested struct{}

// PromptReceived is emitted for every inbound prompt frame.
type PromptReceived struct {
	Content string
}

// TransportClosed is emitted when the streaming connection ends, for any
// reason, and when the owning view tears the session down.
type TransportClosed struct{}

// Fatal is emitted for unrecoverable failures outside provisioning.
type Fatal struct {
	Cause string
}

func (GenerateRequested) isEvent() {}
func (KeyIssued) isEvent()         {}
func (ProvisionFailed) isEvent()   {}
func (ConnectRequested) isEvent()  {}
func (PromptReceived) isEvent()    {}
func (TransportClosed) isEvent()   {}
func (Fatal) isEvent()             {}

// Action is the side effect a transition requires from the caller. At most
// one action results from any event.
type Action int

const (
	// ActionNone requires nothing.
	ActionNone Action = iota
	// ActionSendConnect requires the caller to open the transport and send
	// the connect frame for the current session.
	ActionSendConnect
	// ActionStorePrompt requires the caller to replace the current prompt
	// with the event content and append it to the transcript.
	ActionStorePrompt
	// ActionReset requires the caller to clear the transcript and prompt
	// and release any open transport.
	ActionReset
)

// State is the machine's complete state. The zero value is a fresh idle
// session.
type State struct {
	Session   model.Session
	LastError string
}

// New returns a fresh idle state.
func New() State {
	return State{}
}

// Status is a read shortcut for gating checks.
func (s State) Status() model.ConnectionStatus {
	return s.Session.Status
}

// Next applies ev to s and returns the successor state plus the required
// side effect. Events that are not valid in the current status leave the
// state untouched; they are ignored, not errors.
func Next(s State, ev Event) (State, Action) {
	switch e := ev.(type) {
	case GenerateRequested:
		if s.Session.Status != model.StatusIdle {
			return s, ActionNone
		}
		s.Session.Status = model.StatusGeneratingKey
		return s, ActionNone

	case KeyIssued:
		if s.Session.Status != model.StatusGeneratingKey {
			return s, ActionNone
		}
		s.Session.ID = e.ID
		s.Session.PublicKey = e.PublicKey
		s.Session.Status = model.StatusKeyGenerated
		return s, ActionNone

	case ProvisionFailed:
		if s.Session.Status != model.StatusGeneratingKey {
			return s, ActionNone
		}
		s.Session.Status = model.StatusError
		s.LastError = e.Cause
		return s, ActionNone

	case ConnectRequested:
		if s.Session.Status != model.StatusKeyGenerated {
			return s, ActionNone
		}
		s.Session.Status = model.StatusConnecting
		return s, ActionSendConnect

	case PromptReceived:
		// Valid from any status: the relay owns the prompt.
		s.Session.Status = model.StatusConnected
		return s, ActionStorePrompt

	case TransportClosed:
		// Valid from any status. Ends the session: id and key are gone and a
		// reconnect requires provisioning from scratch.
		return State{}, ActionReset

	case Fatal:
		s.Session.Status = model.StatusError
		s.LastError = e.Cause
		return s, ActionNone

	default:
		return s, ActionNone
	}
}
