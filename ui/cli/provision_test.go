// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/reefbird/gangway/internal/config"
	"github.com/reefbird/gangway/internal/relay"
)

func withTestRelay(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(relay.NewServer(config.RelayConfig{DialTimeout: time.Second}).Handler())
	t.Cleanup(srv.Close)

	prev := appConfig
	appConfig = config.Config{
		Relay:    config.RelayConfig{URL: srv.URL},
		Timeouts: config.TimeoutConfig{Provision: 5 * time.Second},
	}
	t.Cleanup(func() { appConfig = prev })

	return srv
}

func TestProvisionCmdPrintsSession(t *testing.T) {
	withTestRelay(t)

	cmd := newProvisionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("provision failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "ssh-ed25519 ") {
		t.Fatalf("expected a public key in output, got %q", got)
	}
}

func TestProvisionCmdDeadRelay(t *testing.T) {
	srv := withTestRelay(t)
	srv.Close()

	cmd := newProvisionCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error against a dead relay")
	}
}
