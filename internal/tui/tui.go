// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui provides the terminal user interface for Gangway.
// This file, tui.go, is the main entry point for the TUI.
package tui // import "github.com/reefbird/gangway/internal/tui"

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reefbird/gangway/internal/config"
	"github.com/reefbird/gangway/internal/logging"
)

// Run is the main entrypoint for the TUI. It initializes and runs the
// Bubble Tea program with the shell workflow as the root model.
func Run(cfg config.Config) {
	if _, err := tea.NewProgram(newShellModel(cfg)).Run(); err != nil {
		logging.Errorf("TUI run error: %v", err)
		os.Exit(1)
	}
}
