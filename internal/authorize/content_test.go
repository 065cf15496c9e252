// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package authorize

import (
	"strings"
	"testing"
)

const testKey = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIFakeFakeFakeFakeFakeFakeFakeFakeFakeFakeFake"

func TestMergeAuthorizedKeys_AppendsToEmpty(t *testing.T) {
	merged, added := MergeAuthorizedKeys("", testKey)
	if !added {
		t.Fatal("expected key to be added to empty content")
	}
	want := testKey + " " + markerComment + "\n"
	if merged != want {
		t.Errorf("merged content = %q, want %q", merged, want)
	}
}

func TestMergeAuthorizedKeys_PreservesExisting(t *testing.T) {
	existing := "# user keys\nssh-rsa AAAAB3Old user@laptop\n"
	merged, added := MergeAuthorizedKeys(existing, testKey)
	if !added {
		t.Fatal("expected key to be added")
	}
	if !strings.HasPrefix(merged, existing) {
		t.Errorf("existing content was modified: %q", merged)
	}
	if !strings.HasSuffix(merged, testKey+" "+markerComment+"\n") {
		t.Errorf("new key missing or malformed at end: %q", merged)
	}
}

func TestMergeAuthorizedKeys_MissingTrailingNewline(t *testing.T) {
	existing := "ssh-rsa AAAAB3Old user@laptop"
	merged, added := MergeAuthorizedKeys(existing, testKey)
	if !added {
		t.Fatal("expected key to be added")
	}
	if strings.Contains(merged, "laptopssh-ed25519") {
		t.Errorf("keys ran together without a newline: %q", merged)
	}
	if strings.Count(merged, "\n") != 2 {
		t.Errorf("expected exactly two lines, got %q", merged)
	}
}

func TestMergeAuthorizedKeys_Dedupes(t *testing.T) {
	tests := []struct {
		name     string
		existing string
	}{
		{"exact line", testKey + " " + markerComment + "\n"},
		{"different comment", testKey + " alice@workstation\n"},
		{"no comment", testKey + "\n"},
		{"surrounding whitespace", "  " + testKey + "  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, added := MergeAuthorizedKeys(tt.existing, testKey)
			if added {
				t.Errorf("expected no-op for already-present key, got %q", merged)
			}
			if merged != tt.existing {
				t.Errorf("content changed on no-op merge: %q", merged)
			}
		})
	}
}

func TestMergeAuthorizedKeys_EmptyKey(t *testing.T) {
	existing := "ssh-rsa AAAAB3Old user@laptop\n"
	merged, added := MergeAuthorizedKeys(existing, "  \n")
	if added || merged != existing {
		t.Errorf("blank key should be a no-op, got added=%v content=%q", added, merged)
	}
}

func TestPruneAuthorizedKeys_RemovesManagedLine(t *testing.T) {
	existing := "ssh-rsa AAAAB3Old user@laptop\n" + testKey + " " + markerComment + "\n"
	pruned, removed := PruneAuthorizedKeys(existing, testKey)
	if !removed {
		t.Fatal("expected managed key to be removed")
	}
	want := "ssh-rsa AAAAB3Old user@laptop\n"
	if pruned != want {
		t.Errorf("pruned content = %q, want %q", pruned, want)
	}
}

func TestPruneAuthorizedKeys_LeavesUnmanagedKeys(t *testing.T) {
	// Same key material but installed by the user, without our marker.
	existing := testKey + " alice@workstation\n"
	pruned, removed := PruneAuthorizedKeys(existing, testKey)
	if removed {
		t.Errorf("unmanaged key was removed: %q", pruned)
	}
	if pruned != existing {
		t.Errorf("content changed: %q", pruned)
	}
}

func TestPruneAuthorizedKeys_AbsentKey(t *testing.T) {
	existing := "ssh-rsa AAAAB3Old user@laptop\n"
	pruned, removed := PruneAuthorizedKeys(existing, testKey)
	if removed || pruned != existing {
		t.Errorf("expected no-op, got removed=%v content=%q", removed, pruned)
	}
}

func TestMergeThenPruneRoundTrip(t *testing.T) {
	existing := "# managed by hand\nssh-rsa AAAAB3Old user@laptop\n"

	merged, added := MergeAuthorizedKeys(existing, testKey)
	if !added {
		t.Fatal("merge failed to add key")
	}
	pruned, removed := PruneAuthorizedKeys(merged, testKey)
	if !removed {
		t.Fatal("prune failed to remove key")
	}
	if pruned != existing {
		t.Errorf("round trip did not restore original: %q != %q", pruned, existing)
	}
}

func TestNormalizeKeyLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{testKey + " comment here", testKey},
		{testKey, testKey},
		{"  " + testKey + "   extra  fields  ", testKey},
		{"garbage", "garbage"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeKeyLine(tt.in); got != tt.want {
			t.Errorf("normalizeKeyLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
