// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface (CLI) for Gangway using the
// Cobra library. It defines the root command, the subcommands (relay,
// provision, authorize, audit, version), flags, and the shared
// configuration bootstrap every command runs through.

package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/reefbird/gangway/buildvars"
	"github.com/reefbird/gangway/internal/config"
	"github.com/reefbird/gangway/internal/db"
	"github.com/reefbird/gangway/internal/i18n"
	"github.com/reefbird/gangway/internal/logging"
	"github.com/reefbird/gangway/internal/tui"
)

var cfgFile string
var verbose bool
var showVersionFlag bool

var appConfig config.Config

// configDefaults are the baseline values every command starts from. The
// config file, GANGWAY_* environment variables and flags override them in
// that order.
func configDefaults() map[string]any {
	return map[string]any{
		"language":           "en",
		"relay.url":          "http://localhost:8000",
		"relay.listen":       ":8000",
		"relay.db":           "sqlite",
		"relay.dsn":          "./gangway.db",
		"relay.session_ttl":  30 * time.Minute,
		"timeouts.provision": 10 * time.Second,
		"timeouts.connect":   15 * time.Second,
		"audit.enabled":      true,
	}
}

// setupDefaultServices loads the configuration and initializes i18n and
// logging. It runs as the PersistentPreRunE of the root command, so every
// subcommand sees a fully resolved appConfig.
func setupDefaultServices(cmd *cobra.Command, _ []string) error {
	optionalConfigPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	defaults := configDefaults()
	appConfig, err = config.LoadConfig[config.Config](cmd, defaults, optionalConfigPath)
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		// First run, or the config file was deleted. Persist the defaults so
		// subsequent runs have a file to inspect and edit.
		if writeErr := config.WriteConfigFile(&appConfig, false); writeErr != nil {
			logging.Warnf("could not write default config file: %v", writeErr)
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// Guard the critical values against empty entries in a user-edited file.
	if appConfig.Language == "" {
		appConfig.Language = defaults["language"].(string)
	}
	if appConfig.Relay.URL == "" {
		appConfig.Relay.URL = defaults["relay.url"].(string)
	}
	if appConfig.Relay.DB == "" {
		appConfig.Relay.DB = defaults["relay.db"].(string)
	}
	if appConfig.Relay.DSN == "" {
		appConfig.Relay.DSN = defaults["relay.dsn"].(string)
	}

	i18n.Init(appConfig.Language)
	logging.SetDebug(verbose || appConfig.Debug)
	db.SetDebug(verbose || appConfig.Debug)

	return nil
}

// getConfigPathFromCli returns the --config path if the user set one,
// after checking the file actually exists.
func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// Execute runs the CLI entrypoint. The main package calls this function
// and handles process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates and configures a new root cobra command. It is also
// used by tests to get fresh, isolated command trees.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gangway",
		Short: "Gangway is an interactive remote shell client with a session relay.",
		Long: `Gangway opens remote shells through ephemeral, single-session keys.
The relay mints a key pair per session and bridges a WebSocket to the
target host over SSH; the client drives the shell from a terminal view.

Running without a subcommand launches the interactive shell client.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if showVersionFlag {
				fmt.Println(resolveBuildVersion())
				os.Exit(0)
			}
			return setupDefaultServices(cmd, args)
		},
		Run: func(cmd *cobra.Command, args []string) {
			// Config and i18n are already initialized by PersistentPreRunE.
			tui.Run(appConfig)
		},
	}

	cmd.Version = resolveBuildVersion()

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging")
	cmd.PersistentFlags().BoolVarP(&showVersionFlag, "version", "V", false, "Print version and exit")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().String("language", "en", `UI language ("en", "de")`)
	cmd.PersistentFlags().String("relay.url", "", "Relay base URL (e.g. http://relay.example.com:8000)")

	cmd.AddCommand(
		newRelayCmd(),
		newProvisionCmd(),
		newAuthorizeCmd(),
		newAuditCmd(),
		newVersionCmd(),
	)

	return cmd
}

// newVersionCmd returns the `gangway version` subcommand so users and CI
// can query build info without parsing --help output.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "version: %s\n", resolveBuildVersion())
			if info, ok := debug.ReadBuildInfo(); ok {
				for _, s := range info.Settings {
					switch s.Key {
					case "vcs.revision":
						if s.Value != "" {
							fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", s.Value)
						}
					case "vcs.time":
						if s.Value != "" {
							fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", s.Value)
						}
					}
				}
			}
		},
	}
}

// resolveBuildVersion prefers the linker-injected version, then the module
// version recorded in build info, then "dev".
func resolveBuildVersion() string {
	if v := buildvars.VersionOrDefault(""); v != "" {
		return v
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}
