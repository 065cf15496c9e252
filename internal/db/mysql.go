// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the data access layer for the Gangway relay.
// This file contains the MySQL implementation of the database store.
// Note: This implementation is considered experimental.
package db // import "github.com/reefbird/gangway/internal/db"

import (
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/reefbird/gangway/internal/model"
	"github.com/uptrace/bun"
)

// MySQLStore is the MySQL implementation of the Store interface.
type MySQLStore struct {
	bun *bun.DB
}

// SaveSessionRecord persists a freshly provisioned session.
func (s *MySQLStore) SaveSessionRecord(id, publicKey string) error {
	return SaveSessionRecordBun(s.bun, id, publicKey)
}

// MarkSessionConnected records the remote endpoint once a bridge is established.
func (s *MySQLStore) MarkSessionConnected(id, remoteHost, remoteUser string) error {
	return MarkSessionConnectedBun(s.bun, id, remoteHost, remoteUser)
}

// MarkSessionClosed finalizes a session record with the given terminal status.
func (s *MySQLStore) MarkSessionClosed(id, status string) error {
	return MarkSessionClosedBun(s.bun, id, status)
}

// IncrementSessionCommands bumps the executed-command counter for a session.
func (s *MySQLStore) IncrementSessionCommands(id string) error {
	return IncrementSessionCommandsBun(s.bun, id)
}

// GetSessionRecord retrieves a single session record by ID.
func (s *MySQLStore) GetSessionRecord(id string) (*model.SessionRecord, error) {
	return GetSessionRecordBun(s.bun, id)
}

// GetAllSessionRecords retrieves all session records, most recent first.
func (s *MySQLStore) GetAllSessionRecords() ([]model.SessionRecord, error) {
	return GetAllSessionRecordsBun(s.bun)
}

// GetStaleSessionRecords returns open sessions created before the cutoff.
func (s *MySQLStore) GetStaleSessionRecords(cutoff time.Time) ([]model.SessionRecord, error) {
	return GetStaleSessionRecordsBun(s.bun, cutoff)
}

// GetAllAuditLogEntries retrieves all entries from the audit log, most recent first.
func (s *MySQLStore) GetAllAuditLogEntries() ([]model.AuditLogEntry, error) {
	return GetAllAuditLogEntriesBun(s.bun)
}

// LogAction records an audit trail event.
func (s *MySQLStore) LogAction(action string, details string) error {
	return LogActionBun(s.bun, action, details)
}
