package app

import (
	"fmt"
	"os"
	"time"

	"github.com/blackwell-systems/idlewipe/internal/config"
	"github.com/blackwell-systems/idlewipe/internal/launcher"
	"github.com/blackwell-systems/idlewipe/internal/store"
	"github.com/spf13/cobra"
)

var launchCmd = &cobra.Command{
	Use:   "launch <app>",
	Short: "Launch a registered application and record the use",
	Long: `Launch a registered application as a detached process and record the
launch time in the usage store.

The app must be defined in the registry with a 'cmd' entry. The process
is started detached: it keeps running after idlewipe exits, and its
output is not captured.

A failure to record the launch does not kill the launched process; it is
reported as a warning and the command still succeeds.`,
	Example: `  # Launch the app named "editor"
  idlewipe launch editor`,
	Args: cobra.ExactArgs(1),
	RunE: runLaunch,
}

func init() {
	RootCmd.AddCommand(launchCmd)
}

func runLaunch(cmd *cobra.Command, args []string) error {
	name := args[0]

	cfgPath, err := getConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	app, err := cfg.App(name)
	if err != nil {
		return err
	}
	if len(app.Cmd) == 0 {
		return fmt.Errorf("app %q has no cmd configured", name)
	}

	pid, err := launcher.Start(app.Cmd)
	if err != nil {
		return fmt.Errorf("failed to launch %s: %w", name, err)
	}

	fmt.Printf("✓ Started %s (PID %d)\n", name, pid)

	// The process is already running; a store failure must not undo that.
	storePath, err := getDBPath()
	if err == nil {
		err = store.RecordLaunch(storePath, name, time.Now())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠  failed to record launch: %v\n", err)
	}

	return nil
}
