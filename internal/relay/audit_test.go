// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package relay

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/reefbird/gangway/internal/db"
	"github.com/reefbird/gangway/internal/testutil"
)

func TestProvisioningIsAudited(t *testing.T) {
	fake := &testutil.FakeAuditWriter{}
	db.SetDefaultAuditWriter(fake)
	t.Cleanup(db.ClearDefaultAuditWriter)

	_, srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/generate-key", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if !fake.Has("KEY_ISSUED") {
		t.Fatalf("expected a KEY_ISSUED audit entry, got %v", fake.Actions)
	}
}

func TestSessionTeardownIsAudited(t *testing.T) {
	fake := &testutil.FakeAuditWriter{}
	db.SetDefaultAuditWriter(fake)
	t.Cleanup(db.ClearDefaultAuditWriter)

	s, srv := newTestServer(t)
	kp := testSigner(t)
	s.registry.Put("sess-audit", kp.PublicKey, kp.Signer)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, wsAddr(srv, "sess-audit"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	c.CloseNow()

	deadline := time.After(3 * time.Second)
	for !fake.Has("SESSION_CLOSED") {
		select {
		case <-deadline:
			t.Fatalf("expected a SESSION_CLOSED audit entry, got %v", fake.Actions)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
