// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

// package relay implements the Gangway relay: the HTTP endpoint that issues
// ephemeral session keys and the WebSocket endpoint that bridges a client's
// frames onto an SSH connection.
package relay

import (
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// sessionEntry holds the server-side half of a provisioned session. The
// private key never leaves the registry except as an ssh.Signer handed to
// the bridge that claims it.
type sessionEntry struct {
	ID        string
	PublicKey string
	Signer    ssh.Signer
	CreatedAt time.Time
	Claimed   bool
}

// Registry is a concurrency-safe, in-memory table of provisioned sessions.
// Entries are single-use: a session is claimed by exactly one WebSocket
// connection and removed when that connection ends.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*sessionEntry
}

// NewRegistry returns an empty session registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*sessionEntry)}
}

// Put stores a freshly provisioned session under its ID.
func (r *Registry) Put(id, publicKey string, signer ssh.Signer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = &sessionEntry{
		ID:        id,
		PublicKey: publicKey,
		Signer:    signer,
		CreatedAt: time.Now(),
	}
}

// Claim hands out the signer for a session and marks it taken. It returns
// false when the session is unknown or already claimed by another connection.
func (r *Registry) Claim(id string) (ssh.Signer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.Claimed {
		return nil, false
	}
	e.Claimed = true
	return e.Signer, true
}

// Release removes a session from the registry. Keys are single-use, so a
// released session cannot be claimed again.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Len reports the number of live entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Sweep removes unclaimed sessions older than ttl and returns their IDs so
// the caller can finalize their persistent records.
func (r *Registry) Sweep(ttl time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-ttl)
	var expired []string
	for id, e := range r.entries {
		if !e.Claimed && e.CreatedAt.Before(cutoff) {
			delete(r.entries, id)
			expired = append(expired, id)
		}
	}
	return expired
}
