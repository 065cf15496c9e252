// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

// Package cli wires up the Gangway command-line interface using Cobra.
// The root command launches the interactive shell client; subcommands run
// the relay, provision sessions, install keys on target hosts and export
// the audit trail.
package cli
