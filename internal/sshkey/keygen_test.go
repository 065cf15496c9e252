// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package sshkey

import (
	"strings"
	"testing"

	xssh "golang.org/x/crypto/ssh"
)

func TestGenerateProducesUsableKeyPair(t *testing.T) {
	kp, err := Generate("gangway-session")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if kp.PublicKey == "" || kp.PrivatePEM == "" || kp.Signer == nil {
		t.Fatalf("incomplete key pair: %+v", kp)
	}

	// Parse public key
	pk, comment, _, _, err := xssh.ParseAuthorizedKey([]byte(kp.PublicKey))
	if err != nil {
		t.Fatalf("ParseAuthorizedKey failed: %v", err)
	}
	if comment != "gangway-session" {
		t.Errorf("unexpected comment: got %q want %q", comment, "gangway-session")
	}
	if pk.Type() != "ssh-ed25519" {
		t.Errorf("unexpected key type: %s", pk.Type())
	}

	// Parse private key and check both halves match
	signer, err := xssh.ParsePrivateKey([]byte(kp.PrivatePEM))
	if err != nil {
		t.Fatalf("ParsePrivateKey failed on marshaled PEM: %v", err)
	}
	if signer.PublicKey().Type() != kp.Signer.PublicKey().Type() {
		t.Fatalf("signer type mismatch: %s vs %s", signer.PublicKey().Type(), kp.Signer.PublicKey().Type())
	}
	if FingerprintSHA256(signer.PublicKey()) != FingerprintSHA256(pk) {
		t.Fatal("private and public halves do not match")
	}
}

func TestGenerateWithoutComment(t *testing.T) {
	kp, err := Generate("")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if strings.HasSuffix(kp.PublicKey, " ") {
		t.Fatalf("public key line has trailing space: %q", kp.PublicKey)
	}
	if _, _, _, _, err := xssh.ParseAuthorizedKey([]byte(kp.PublicKey)); err != nil {
		t.Fatalf("ParseAuthorizedKey failed: %v", err)
	}
}

func TestParsePrivateKeyRoundTrip(t *testing.T) {
	kp, err := Generate("round-trip")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	signer, err := ParsePrivateKey([]byte(kp.PrivatePEM))
	if err != nil {
		t.Fatalf("ParsePrivateKey failed: %v", err)
	}
	if FingerprintSHA256(signer.PublicKey()) == "" {
		t.Fatal("expected non-empty fingerprint")
	}

	if _, err := ParsePrivateKey([]byte("not a key")); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestParseAuthorizedKeyLine(t *testing.T) {
	algo, data, comment, err := Parse("ssh-ed25519 AAAAC3Nza gangway-session")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if algo != "ssh-ed25519" || data != "AAAAC3Nza" || comment != "gangway-session" {
		t.Fatalf("unexpected parse result: %q %q %q", algo, data, comment)
	}

	// Options prefix is skipped.
	algo, _, _, err = Parse(`from="10.0.0.1",no-pty ssh-ed25519 AAAAC3Nza`)
	if err != nil {
		t.Fatalf("Parse with options failed: %v", err)
	}
	if algo != "ssh-ed25519" {
		t.Fatalf("unexpected algorithm: %q", algo)
	}

	if _, _, _, err := Parse(""); err == nil {
		t.Fatal("expected error for empty line")
	}
	if _, _, _, err := Parse("garbage line"); err == nil {
		t.Fatal("expected error for non-key line")
	}
}
