// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package authorize

import (
	"strings"
)

// markerComment tags the lines this tool manages so RemoveKey never
// touches keys the user installed by other means.
const markerComment = "gangway-session"

// MergeAuthorizedKeys appends publicKey to existing authorized_keys
// content. It returns the merged content and whether anything was
// added; a key already present (ignoring comments) is left alone.
func MergeAuthorizedKeys(existing, publicKey string) (string, bool) {
	publicKey = strings.TrimSpace(publicKey)
	if publicKey == "" {
		return existing, false
	}

	want := normalizeKeyLine(publicKey)
	for _, line := range strings.Split(existing, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if normalizeKeyLine(line) == want {
			return existing, false
		}
	}

	var b strings.Builder
	b.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(publicKey)
	if !strings.Contains(publicKey, markerComment) {
		b.WriteString(" " + markerComment)
	}
	b.WriteString("\n")
	return b.String(), true
}

// PruneAuthorizedKeys removes publicKey from existing authorized_keys
// content. Only lines carrying the gangway marker comment are eligible
// for removal. It returns the pruned content and whether a line was
// dropped.
func PruneAuthorizedKeys(existing, publicKey string) (string, bool) {
	want := normalizeKeyLine(strings.TrimSpace(publicKey))
	if want == "" {
		return existing, false
	}

	var b strings.Builder
	removed := false
	for _, line := range strings.Split(existing, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") &&
			normalizeKeyLine(trimmed) == want && strings.Contains(trimmed, markerComment) {
			removed = true
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if !removed {
		return existing, false
	}

	// Splitting on "\n" and rejoining adds a trailing newline even when
	// the input had none; collapse the duplicate.
	out := b.String()
	out = strings.TrimRight(out, "\n")
	if out != "" {
		out += "\n"
	}
	return out, true
}
