// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

// Package transport talks to the relay: a one-shot provisioning call over
// HTTP and the session-scoped WebSocket carrying frames.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Provisioner requests one-time key pairs from the relay.
type Provisioner struct {
	baseURL string
	client  *http.Client
}

// NewProvisioner returns a provisioner for the relay at baseURL. Deadlines
// come from the caller's context.
func NewProvisioner(baseURL string) *Provisioner {
	return &Provisioner{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

type provisionResponse struct {
	PublicKey string `json:"publicKey"`
	SessionID string `json:"sessionId"`
}

// Provision asks the relay for a fresh session. It must be called at most
// once per session attempt; the returned id addresses the streaming
// endpoint.
func (p *Provisioner) Provision(ctx context.Context) (sessionID, publicKey string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/generate-key", nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to build provisioning request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("provisioning request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", "", fmt.Errorf("relay rejected provisioning: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var pr provisionResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return "", "", fmt.Errorf("failed to decode provisioning response: %w", err)
	}
	if pr.SessionID == "" || pr.PublicKey == "" {
		return "", "", fmt.Errorf("relay returned an incomplete session")
	}
	return pr.SessionID, pr.PublicKey, nil
}
