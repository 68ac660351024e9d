package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string

	// RootCmd is the root command for idlewipe
	RootCmd = &cobra.Command{
		Use:   "idlewipe",
		Short: "Idle application tracking with secure data cleanup",
		Long: `idlewipe launches registered applications, records when they were last
used, and securely destroys their configured data paths once an app has
been idle longer than its threshold.

Destruction is irreversible: regular files are overwritten with random
data before removal. There are no snapshots and no undo.

Quick Start:
  1. Write ~/.idlewipe/config.json with your apps
  2. Launch apps through 'idlewipe launch <app>'
  3. Optionally run 'idlewipe watch --daemon' to track activity
     in the configured data paths
  4. Run 'idlewipe task --all' periodically (cron, launchd, systemd)

Examples:
  # Launch an app and record the use
  idlewipe launch editor

  # Preview what a cleanup run would destroy
  idlewipe task --all --dry-run

  # Clean up every idle app
  idlewipe task --all

  # Show per-app usage and verdicts
  idlewipe status`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("idlewipe: idle application tracking with secure data cleanup")
			fmt.Println()
			fmt.Println("Run 'idlewipe status' to check tracked apps.")
			fmt.Println("Run 'idlewipe --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "usage store path (default: ~/.idlewipe/idlewipe.db)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "registry path (default: ~/.idlewipe/config.json)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// idlewipeDir returns ~/.idlewipe, creating it if needed.
func idlewipeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, ".idlewipe")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create idlewipe directory: %w", err)
	}

	return dir, nil
}

// getDBPath returns the usage store path, using the flag value or default
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}

	dir, err := idlewipeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "idlewipe.db"), nil
}

// getConfigPath returns the registry path, using the flag value or default
func getConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}

	dir, err := idlewipeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// getDefaultPIDFile returns the default PID file path
func getDefaultPIDFile() (string, error) {
	dir, err := idlewipeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.pid"), nil
}

// getDefaultLogFile returns the default log file path
func getDefaultLogFile() (string, error) {
	dir, err := idlewipeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.log"), nil
}

// newLogger returns a text slog logger writing to w.
func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, nil))
}
