// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"os/user"
	"strings"
	"time"

	"github.com/reefbird/gangway/internal/model"
	"github.com/uptrace/bun"
)

// SessionRecordModel maps the `shell_sessions` table for Bun queries.
type SessionRecordModel struct {
	bun.BaseModel `bun:"table:shell_sessions"`
	ID            string         `bun:"id,pk"`
	PublicKey     string         `bun:"public_key"`
	RemoteHost    sql.NullString `bun:"remote_host"`
	RemoteUser    sql.NullString `bun:"remote_user"`
	Status        string         `bun:"status"`
	CommandCount  int            `bun:"command_count"`
	CreatedAt     time.Time      `bun:"created_at"`
	ConnectedAt   sql.NullTime   `bun:"connected_at"`
	ClosedAt      sql.NullTime   `bun:"closed_at"`
}

// AuditLogModel maps the audit_log table.
type AuditLogModel struct {
	bun.BaseModel `bun:"table:audit_log"`
	ID            int    `bun:"id,pk,autoincrement"`
	Timestamp     string `bun:"timestamp"`
	Username      string `bun:"username"`
	Action        string `bun:"action"`
	Details       string `bun:"details"`
}

// --- Mapping helpers (centralized conversions) ---
func sessionRecordModelToModel(sm SessionRecordModel) model.SessionRecord {
	rec := model.SessionRecord{
		ID:           sm.ID,
		PublicKey:    sm.PublicKey,
		Status:       sm.Status,
		CommandCount: sm.CommandCount,
		CreatedAt:    sm.CreatedAt,
	}
	if sm.RemoteHost.Valid {
		rec.RemoteHost = sm.RemoteHost.String
	}
	if sm.RemoteUser.Valid {
		rec.RemoteUser = sm.RemoteUser.String
	}
	if sm.ConnectedAt.Valid {
		rec.ConnectedAt = sm.ConnectedAt.Time
	}
	if sm.ClosedAt.Valid {
		rec.ClosedAt = sm.ClosedAt.Time
	}
	return rec
}

// SaveSessionRecordBun inserts a new session record in the issued state.
func SaveSessionRecordBun(bdb *bun.DB, id, publicKey string) error {
	ctx := context.Background()
	sm := &SessionRecordModel{
		ID:        id,
		PublicKey: publicKey,
		Status:    model.SessionIssued,
		CreatedAt: time.Now().UTC(),
	}
	_, err := bdb.NewInsert().Model(sm).Column("id", "public_key", "status", "created_at").Exec(ctx)
	return MapDBError(err)
}

// MarkSessionConnectedBun stamps the remote endpoint and connect time.
func MarkSessionConnectedBun(bdb *bun.DB, id, remoteHost, remoteUser string) error {
	ctx := context.Background()
	_, err := bdb.NewUpdate().Model((*SessionRecordModel)(nil)).
		Set("status = ?", model.SessionConnected).
		Set("remote_host = ?", remoteHost).
		Set("remote_user = ?", remoteUser).
		Set("connected_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// MarkSessionClosedBun finalizes a session record with a terminal status.
func MarkSessionClosedBun(bdb *bun.DB, id, status string) error {
	ctx := context.Background()
	_, err := bdb.NewUpdate().Model((*SessionRecordModel)(nil)).
		Set("status = ?", status).
		Set("closed_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// IncrementSessionCommandsBun bumps the executed-command counter.
func IncrementSessionCommandsBun(bdb *bun.DB, id string) error {
	ctx := context.Background()
	_, err := ExecRaw(ctx, bdb, "UPDATE shell_sessions SET command_count = command_count + 1 WHERE id = ?", id)
	return err
}

// GetSessionRecordBun retrieves a single session record by ID.
// Returns (nil, nil) when no record exists.
func GetSessionRecordBun(bdb *bun.DB, id string) (*model.SessionRecord, error) {
	ctx := context.Background()
	var sm SessionRecordModel
	err := bdb.NewSelect().Model(&sm).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	rec := sessionRecordModelToModel(sm)
	return &rec, nil
}

// GetAllSessionRecordsBun returns all session records, most recent first.
func GetAllSessionRecordsBun(bdb *bun.DB) ([]model.SessionRecord, error) {
	ctx := context.Background()
	var sm []SessionRecordModel
	if err := bdb.NewSelect().Model(&sm).OrderExpr("created_at DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.SessionRecord, 0, len(sm))
	for _, s := range sm {
		out = append(out, sessionRecordModelToModel(s))
	}
	return out, nil
}

// GetStaleSessionRecordsBun returns non-terminal sessions created before cutoff.
func GetStaleSessionRecordsBun(bdb *bun.DB, cutoff time.Time) ([]model.SessionRecord, error) {
	ctx := context.Background()
	var sm []SessionRecordModel
	err := bdb.NewSelect().Model(&sm).
		Where("status IN (?)", bun.In([]string{model.SessionIssued, model.SessionConnected})).
		Where("created_at < ?", cutoff).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.SessionRecord, 0, len(sm))
	for _, s := range sm {
		out = append(out, sessionRecordModelToModel(s))
	}
	return out, nil
}

// GetAllAuditLogEntriesBun retrieves audit log entries ordered by timestamp desc.
func GetAllAuditLogEntriesBun(bdb *bun.DB) ([]model.AuditLogEntry, error) {
	ctx := context.Background()
	var am []AuditLogModel
	if err := bdb.NewSelect().Model(&am).OrderExpr("timestamp DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.AuditLogEntry, 0, len(am))
	for _, a := range am {
		out = append(out, model.AuditLogEntry{ID: a.ID, Timestamp: a.Timestamp, Username: a.Username, Action: a.Action, Details: a.Details})
	}
	return out, nil
}

// LogActionBun inserts an audit log entry with the current OS user.
func LogActionBun(bdb *bun.DB, action string, details string) error {
	ctx := context.Background()
	curUser, err := user.Current()
	username := "unknown"
	if err == nil {
		if parts := strings.Split(curUser.Username, `\`); len(parts) > 1 {
			username = parts[1]
		} else {
			username = curUser.Username
		}
	}
	_, err = ExecRaw(ctx, bdb, "INSERT INTO audit_log (username, action, details) VALUES (?, ?, ?)", username, action, details)
	return MapDBError(err)
}
