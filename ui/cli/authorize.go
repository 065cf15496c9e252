// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/reefbird/gangway/client"
	"github.com/reefbird/gangway/internal/authorize"
	"github.com/reefbird/gangway/internal/i18n"
	"github.com/reefbird/gangway/internal/sshkey"
)

// newAuthorizeCmd returns the `gangway authorize` subcommand. It installs
// a session public key into a target account's authorized_keys file so
// the relay bridge can authenticate with the ephemeral key. This
// bootstrap hop needs its own credentials: an identity file, a running
// SSH agent, or an interactive password.
func newAuthorizeCmd() *cobra.Command {
	var host string
	var user string
	var keyFile string
	var fromRelay bool
	var identityFile string
	var remove bool

	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Install a session public key on a target host",
		Long: `Appends a public key to the target account's ~/.ssh/authorized_keys
over SFTP (atomic rename, correct permissions). The key comes either
from a file (--key) or from a freshly provisioned relay session
(--from-relay), in which case the session id is printed for the
subsequent connect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if host == "" || user == "" {
				return errors.New(i18n.T("cli.authorize.missing_target"))
			}

			publicKey, sessionID, err := resolveAuthorizeKey(cmd.Context(), keyFile, fromRelay)
			if err != nil {
				return err
			}

			var privateKey string
			if identityFile != "" {
				data, err := os.ReadFile(identityFile)
				if err != nil {
					return fmt.Errorf("could not read identity file: %w", err)
				}
				privateKey = string(data)
			}

			prompt := func() (string, error) {
				fmt.Fprintf(cmd.OutOrStdout(), i18n.T("cli.authorize.password_prompt"), user, host)
				pw, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Fprintln(cmd.OutOrStdout())
				if err != nil {
					return "", err
				}
				return string(pw), nil
			}

			auth, err := authorize.NewAuthorizer(host, user, privateKey, prompt)
			if err != nil {
				return err
			}
			defer auth.Close()

			if remove {
				removed, err := auth.RemoveKey(publicKey)
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.authorize.not_present"))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.authorize.removed"))
				return nil
			}

			added, err := auth.InstallKey(publicKey)
			if err != nil {
				return err
			}
			if !added {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.authorize.already_present"))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.authorize.installed", user, host))
			}
			if sessionID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", i18n.T("cli.provision.session_id"), sessionID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Target host (host or host:port)")
	cmd.Flags().StringVar(&user, "user", "", "Target account")
	cmd.Flags().StringVar(&keyFile, "key", "", "Public key file to install")
	cmd.Flags().BoolVar(&fromRelay, "from-relay", false, "Provision a fresh session key from the relay and install it")
	cmd.Flags().StringVarP(&identityFile, "identity", "i", "", "Private key file used to authenticate this bootstrap connection")
	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the key instead of installing it")

	return cmd
}

// resolveAuthorizeKey yields the public key to install, either read from
// a file or minted by the relay. The returned session id is non-empty
// only in the --from-relay case.
func resolveAuthorizeKey(ctx context.Context, keyFile string, fromRelay bool) (publicKey, sessionID string, err error) {
	switch {
	case fromRelay && keyFile != "":
		return "", "", errors.New(i18n.T("cli.authorize.key_conflict"))
	case fromRelay:
		timeout := appConfig.Timeouts.Provision
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		creds, err := client.New(appConfig.Relay.URL).Provision(ctx)
		if err != nil {
			return "", "", fmt.Errorf("%s: %w", i18n.T("cli.provision.failed"), err)
		}
		return creds.PublicKey, creds.SessionID, nil
	case keyFile != "":
		data, err := os.ReadFile(keyFile)
		if err != nil {
			return "", "", fmt.Errorf("could not read key file: %w", err)
		}
		key := strings.TrimSpace(string(data))
		if key == "" {
			return "", "", errors.New(i18n.T("cli.authorize.empty_key"))
		}
		if _, _, _, err := sshkey.Parse(key); err != nil {
			return "", "", fmt.Errorf("%s: %w", i18n.T("cli.authorize.invalid_key"), err)
		}
		return key, "", nil
	default:
		return "", "", errors.New(i18n.T("cli.authorize.missing_key"))
	}
}
