// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/reefbird/gangway/internal/db"
	"github.com/reefbird/gangway/internal/i18n"
	"github.com/reefbird/gangway/internal/logging"
	"github.com/reefbird/gangway/internal/relay"
)

// newRelayCmd returns the `gangway relay` subcommand: the server half of
// the system. It provisions session keys over HTTP and bridges session
// WebSockets onto SSH connections.
func newRelayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Run the Gangway relay server",
		Long: `Runs the relay: the HTTP endpoint that issues ephemeral session keys
and the per-session WebSocket endpoint that bridges shell frames to the
target host over SSH. Metrics are exposed on /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			relay.PrintBanner()

			if appConfig.Audit.Enabled {
				if err := db.InitDB(appConfig.Relay.DB, appConfig.Relay.DSN); err != nil {
					return errors.New(i18n.T("cli.relay.error_init_db", err))
				}
			} else {
				logging.Warnf("%s", i18n.T("cli.relay.audit_disabled"))
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return relay.NewServer(appConfig.Relay).Run(ctx)
		},
	}

	cmd.Flags().String("relay.listen", "", "Listen address (e.g. :8000)")
	cmd.Flags().String("relay.db", "", "Audit database type (sqlite, mysql, postgres)")
	cmd.Flags().String("relay.dsn", "", "Audit database DSN")

	return cmd
}
