// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"time"

	"github.com/reefbird/gangway/internal/model"
)

// Store defines the interface for all database operations in Gangway.
// This allows for multiple database backends to be implemented.
type Store interface {
	// Session record methods
	SaveSessionRecord(id, publicKey string) error
	MarkSessionConnected(id, remoteHost, remoteUser string) error
	MarkSessionClosed(id, status string) error
	IncrementSessionCommands(id string) error
	GetSessionRecord(id string) (*model.SessionRecord, error)
	GetAllSessionRecords() ([]model.SessionRecord, error)
	GetStaleSessionRecords(cutoff time.Time) ([]model.SessionRecord, error)

	// Audit log methods
	GetAllAuditLogEntries() ([]model.AuditLogEntry, error)
	LogAction(action string, details string) error
}

// AuditWriter is a narrow interface for components that only record audit
// events. Tests inject a fake via SetDefaultAuditWriter to observe actions
// without a database.
type AuditWriter interface {
	LogAction(action string, details string) error
}

var defaultAuditWriter AuditWriter

// SetDefaultAuditWriter installs a package-level AuditWriter override.
func SetDefaultAuditWriter(w AuditWriter) { defaultAuditWriter = w }

// ClearDefaultAuditWriter removes any installed AuditWriter override.
func ClearDefaultAuditWriter() { defaultAuditWriter = nil }

// DefaultAuditWriter returns the injected AuditWriter, or the store when one
// has been initialized. Returns nil when neither is available.
func DefaultAuditWriter() AuditWriter {
	if defaultAuditWriter != nil {
		return defaultAuditWriter
	}
	if store != nil {
		return store
	}
	return nil
}
