// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

// Package client is the programmatic interface to a Gangway relay. It
// offers the same operations the interactive client performs: provision a
// session, open its WebSocket, connect to a host and execute commands.
// Scripts and tooling use it to drive remote shells without the TUI.
package client
