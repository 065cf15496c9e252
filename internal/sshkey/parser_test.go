// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package sshkey

import "testing"

func TestParsePublicKeyLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		algorithm string
		comment   string
		wantErr   bool
	}{
		{
			name:      "plain key",
			line:      "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIDummy gangway",
			algorithm: "ssh-ed25519",
			comment:   "gangway",
		},
		{
			name:      "no comment",
			line:      "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIDummy",
			algorithm: "ssh-ed25519",
		},
		{
			name:      "with options prefix",
			line:      `command="internal-sftp",no-pty ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIDummy ops`,
			algorithm: "ssh-ed25519",
			comment:   "ops",
		},
		{
			name:      "multi word comment",
			line:      "ecdsa-sha2-nistp256 AAAAE2VjZHNh alice laptop key",
			algorithm: "ecdsa-sha2-nistp256",
			comment:   "alice laptop key",
		},
		{name: "empty", line: "", wantErr: true},
		{name: "not a key", line: "hello world", wantErr: true},
		{name: "missing key data", line: "ssh-ed25519", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alg, data, comment, err := Parse(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if alg != tt.algorithm {
				t.Errorf("algorithm: got %q, want %q", alg, tt.algorithm)
			}
			if data == "" {
				t.Error("expected key data")
			}
			if comment != tt.comment {
				t.Errorf("comment: got %q, want %q", comment, tt.comment)
			}
		})
	}
}
