// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the data access layer for the Gangway relay.
// This file contains the SQLite implementation of the database store.
package db // import "github.com/reefbird/gangway/internal/db"

import (
	"time"

	"github.com/reefbird/gangway/internal/model"
	"github.com/uptrace/bun"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SqliteStore is the SQLite implementation of the Store interface.
type SqliteStore struct {
	bun *bun.DB
}

// SaveSessionRecord persists a freshly provisioned session.
func (s *SqliteStore) SaveSessionRecord(id, publicKey string) error {
	return SaveSessionRecordBun(s.bun, id, publicKey)
}

// MarkSessionConnected records the remote endpoint once a bridge is established.
func (s *SqliteStore) MarkSessionConnected(id, remoteHost, remoteUser string) error {
	return MarkSessionConnectedBun(s.bun, id, remoteHost, remoteUser)
}

// MarkSessionClosed finalizes a session record with the given terminal status.
func (s *SqliteStore) MarkSessionClosed(id, status string) error {
	return MarkSessionClosedBun(s.bun, id, status)
}

// IncrementSessionCommands bumps the executed-command counter for a session.
func (s *SqliteStore) IncrementSessionCommands(id string) error {
	return IncrementSessionCommandsBun(s.bun, id)
}

// GetSessionRecord retrieves a single session record by ID.
func (s *SqliteStore) GetSessionRecord(id string) (*model.SessionRecord, error) {
	return GetSessionRecordBun(s.bun, id)
}

// GetAllSessionRecords retrieves all session records, most recent first.
func (s *SqliteStore) GetAllSessionRecords() ([]model.SessionRecord, error) {
	return GetAllSessionRecordsBun(s.bun)
}

// GetStaleSessionRecords returns open sessions created before the cutoff.
func (s *SqliteStore) GetStaleSessionRecords(cutoff time.Time) ([]model.SessionRecord, error) {
	return GetStaleSessionRecordsBun(s.bun, cutoff)
}

// GetAllAuditLogEntries retrieves all entries from the audit log, most recent first.
func (s *SqliteStore) GetAllAuditLogEntries() ([]model.AuditLogEntry, error) {
	return GetAllAuditLogEntriesBun(s.bun)
}

// LogAction records an audit trail event.
func (s *SqliteStore) LogAction(action string, details string) error {
	return LogActionBun(s.bun, action, details)
}
