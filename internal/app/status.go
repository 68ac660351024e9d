package app

import (
	"fmt"
	"os"
	"time"

	"github.com/blackwell-systems/idlewipe/internal/config"
	"github.com/blackwell-systems/idlewipe/internal/output"
	"github.com/blackwell-systems/idlewipe/internal/store"
	"github.com/blackwell-systems/idlewipe/internal/watcher"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-app usage and idle verdicts",
	Long: `Show every registered application with its last recorded use, idle
days, threshold, recent watcher activity, and the verdict a cleanup run
would reach right now.`,
	RunE: runStatus,
}

func init() {
	RootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfgPath, err := getConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	storePath, err := getDBPath()
	if err != nil {
		return err
	}
	st, err := store.New(storePath)
	if err != nil {
		return fmt.Errorf("failed to open usage store: %w", err)
	}
	defer st.Close()

	if st.FutureSchema() {
		fmt.Fprintf(os.Stderr, "⚠  usage store was written by a newer idlewipe; tracking is read-only\n\n")
	}

	now := time.Now()
	weekAgo := now.Add(-7 * 24 * time.Hour)

	rows := make([]output.StatusRow, 0, len(cfg.Apps))
	for _, name := range cfg.Names() {
		app, _ := cfg.App(name)

		row := output.StatusRow{
			App:       name,
			Threshold: app.MaxDaysIdle,
			Targets:   len(app.CleanupPaths),
		}

		last, err := st.LastLaunch(name)
		if err != nil {
			return fmt.Errorf("failed to read usage for %s: %w", name, err)
		}
		if last != nil {
			row.LastUsed = *last
			row.IdleDays = int(now.Sub(*last).Hours() / 24)
		}

		if count, err := st.TouchCountSince(name, weekAgo); err == nil {
			row.Activity7d = count
		}

		rows = append(rows, row)
	}

	fmt.Print(output.RenderStatusTable(rows))

	pidFile, err := getDefaultPIDFile()
	if err != nil {
		return err
	}
	running, err := watcher.IsDaemonRunning(pidFile)
	if err != nil {
		return err
	}

	fmt.Println()
	if running {
		fmt.Println("Activity tracking: running")
	} else {
		fmt.Println("Activity tracking: stopped (start with 'idlewipe watch --daemon')")
	}

	return nil
}
