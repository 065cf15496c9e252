// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil holds small in-memory doubles shared by tests across
// packages.
package testutil

import "sync"

// FakeAuditWriter records audit actions instead of writing them to a
// database. It satisfies db.AuditWriter.
type FakeAuditWriter struct {
	mu      sync.Mutex
	Actions []string
	Details []string
	// Err, if set, is returned from LogAction.
	Err error
}

// LogAction appends the action/details pair to the recorded slices.
func (f *FakeAuditWriter) LogAction(action, details string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Actions = append(f.Actions, action)
	f.Details = append(f.Details, details)
	return nil
}

// Has reports whether an action was recorded.
func (f *FakeAuditWriter) Has(action string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.Actions {
		if a == action {
			return true
		}
	}
	return false
}
