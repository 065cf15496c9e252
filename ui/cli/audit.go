// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/reefbird/gangway/internal/db"
	"github.com/reefbird/gangway/internal/i18n"
)

// newAuditCmd groups the audit trail operations.
func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect and export the relay audit trail",
	}
	cmd.AddCommand(newAuditExportCmd())
	return cmd
}

// newAuditExportCmd returns `gangway audit export`: a zstd-compressed
// JSON dump of the audit log, for retention and offline analysis.
func newAuditExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the audit log to a compressed JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !db.IsInitialized() {
				if err := db.InitDB(appConfig.Relay.DB, appConfig.Relay.DSN); err != nil {
					return errors.New(i18n.T("cli.relay.error_init_db", err))
				}
			}

			entries, err := db.GetAllAuditLogEntries()
			if err != nil {
				return errors.New(i18n.T("cli.audit.error_export", err))
			}

			if output == "" {
				output = fmt.Sprintf("gangway-audit-%s.json.zst", time.Now().Format("2006-01-02"))
			}

			f, err := os.Create(output)
			if err != nil {
				return errors.New(i18n.T("cli.audit.error_write", err))
			}
			defer f.Close()

			zw, err := zstd.NewWriter(f)
			if err != nil {
				return errors.New(i18n.T("cli.audit.error_write", err))
			}

			enc := json.NewEncoder(zw)
			enc.SetIndent("", "  ")
			if err := enc.Encode(entries); err != nil {
				zw.Close()
				return errors.New(i18n.T("cli.audit.error_write", err))
			}
			if err := zw.Close(); err != nil {
				return errors.New(i18n.T("cli.audit.error_write", err))
			}

			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.audit.export_success", len(entries), output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default gangway-audit-YYYY-MM-DD.json.zst)")

	return cmd
}
