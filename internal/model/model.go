// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import (
	"fmt"
	"time"
)

// ConnectionStatus is the lifecycle state of a shell session. It is owned
// exclusively by the session state machine; every other component only reads
// it to decide whether an operation is permitted.
type ConnectionStatus int

const (
	StatusIdle ConnectionStatus = iota
	StatusGeneratingKey
	StatusKeyGenerated
	StatusConnecting
	StatusConnected
	StatusError
)

// String returns a stable machine-readable name, used in logs and audit rows.
func (s ConnectionStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusGeneratingKey:
		return "generating_key"
	case StatusKeyGenerated:
		return "key_generated"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Session is one attempt at a remote-shell connection. ID and PublicKey are
// assigned exactly once by the provisioner and discarded when the session
// returns to idle; a new session must be provisioned before reconnecting.
type Session struct {
	ID        string
	PublicKey string
	Status    ConnectionStatus
}

// LineKind classifies a transcript line for rendering.
type LineKind int

const (
	LineNormal LineKind = iota
	LineError
	LineCommand
)

// TerminalLine is a single entry in the session transcript. Raw keeps the
// content exactly as received; control sequences are only interpreted at
// render time.
type TerminalLine struct {
	Kind LineKind
	Raw  string
}

// SessionRecord is the relay-side ledger entry for a provisioned session.
// Status moves through issued -> connected -> closed (or expired when the
// sweeper reaps an abandoned session). ConnectedAt and ClosedAt are zero
// until the corresponding transition happens.
type SessionRecord struct {
	ID           string
	PublicKey    string
	RemoteHost   string
	RemoteUser   string
	Status       string
	CommandCount int
	CreatedAt    time.Time
	ConnectedAt  time.Time
	ClosedAt     time.Time
}

// Session record statuses as stored in the shell_sessions table.
const (
	SessionIssued    = "issued"
	SessionConnected = "connected"
	SessionClosed    = "closed"
	SessionExpired   = "expired"
)

// AuditLogEntry represents a single audit trail event.
type AuditLogEntry struct {
	ID        int
	Timestamp string
	Username  string
	Action    string
	Details   string
}
