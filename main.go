// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Gangway.
//
// Usage:
//
//	go run . [flags]
//	./gangway [flags]
//
// Running without a subcommand launches the interactive shell client.
// See --help for the relay and operational subcommands.
package main

import (
	"os"

	"github.com/reefbird/gangway/internal/logging"
	"github.com/reefbird/gangway/ui/cli"
)

// main is the entrypoint for the Gangway CLI.
func main() {
	if err := cli.Execute(); err != nil {
		logging.Errorf("gangway: %v", err)
		os.Exit(1)
	}
}
