// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "testing"

func TestConnectionStatusString(t *testing.T) {
	cases := map[ConnectionStatus]string{
		StatusIdle:          "idle",
		StatusGeneratingKey: "generating_key",
		StatusKeyGenerated:  "key_generated",
		StatusConnecting:    "connecting",
		StatusConnected:     "connected",
		StatusError:         "error",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("status %d: got %q, want %q", int(status), got, want)
		}
	}

	if got := ConnectionStatus(99).String(); got != "unknown(99)" {
		t.Errorf("out-of-range status: got %q", got)
	}
}

func TestSessionRecordStatuses(t *testing.T) {
	// The sweeper and the bridge both write these literals into the
	// shell_sessions table; they must stay distinct.
	seen := map[string]bool{}
	for _, s := range []string{SessionIssued, SessionConnected, SessionClosed, SessionExpired} {
		if seen[s] {
			t.Fatalf("duplicate session status %q", s)
		}
		seen[s] = true
	}
}
