// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

// Package sshkey generates and parses the ephemeral ed25519 key pairs that
// back shell sessions. Private keys use the modern OpenSSH PEM format;
// public keys use the authorized_keys line format.
package sshkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"
)

// KeyPair is one generated ephemeral key, ready for all three uses: handing
// the public half to the user, authenticating the relay's SSH bridge, and
// exporting the private half.
type KeyPair struct {
	PublicKey  string // authorized_keys line including the comment
	PrivatePEM string // OpenSSH PEM encoding
	Signer     ssh.Signer
}

// Generate creates a fresh ed25519 key pair. The comment ends up in the
// authorized_keys line so operators can tell gangway keys apart on target
// hosts.
func Generate(comment string) (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key: %w", err)
	}

	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to derive ssh public key: %w", err)
	}
	authorized := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub)))
	if comment != "" {
		authorized = fmt.Sprintf("%s %s", authorized, comment)
	}

	// MarshalPrivateKey handles the OpenSSH-specific binary format; it takes
	// a crypto.Signer, which ed25519.PrivateKey implements.
	block, err := ssh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ed25519 private key: %w", err)
	}

	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		return nil, fmt.Errorf("failed to build signer: %w", err)
	}

	return &KeyPair{
		PublicKey:  authorized,
		PrivatePEM: string(pem.EncodeToMemory(block)),
		Signer:     signer,
	}, nil
}

// ParsePrivateKey loads a PEM-encoded private key into a signer, for
// authenticating with a pre-existing key instead of a generated one.
func ParsePrivateKey(pemBytes []byte) (ssh.Signer, error) {
	signer, err := ssh.ParsePrivateKey(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return signer, nil
}

// FingerprintSHA256 returns the standard SHA256 fingerprint for a public
// key, as shown in logs and the key screen.
func FingerprintSHA256(pk ssh.PublicKey) string {
	return ssh.FingerprintSHA256(pk)
}
