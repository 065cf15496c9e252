// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/reefbird/gangway/client"
	"github.com/reefbird/gangway/internal/i18n"
)

// newProvisionCmd returns the `gangway provision` subcommand: a one-shot
// key provisioning call against the relay, for scripting and for
// installing the key on a target host before connecting interactively.
func newProvisionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Request an ephemeral session key from the relay",
		Long: `Asks the relay for a fresh session: an opaque session id and the
public half of a one-time key pair. The private half never leaves the
relay. The printed public key must be accepted by the target account
(see 'gangway authorize') before the session can connect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout := appConfig.Timeouts.Provision
			if timeout <= 0 {
				timeout = 10 * time.Second
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			creds, err := client.New(appConfig.Relay.URL).Provision(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", i18n.T("cli.provision.failed"), err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", i18n.T("cli.provision.session_id"), creds.SessionID)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", i18n.T("cli.provision.public_key"), creds.PublicKey)
			return nil
		},
	}

	return cmd
}
