package app

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/blackwell-systems/idlewipe/internal/config"
	"github.com/blackwell-systems/idlewipe/internal/store"
	"github.com/blackwell-systems/idlewipe/internal/watcher"
	"github.com/spf13/cobra"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Track app activity via filesystem events",
		Long: `Watch the cleanup paths of every registered application and record
filesystem activity in them as usage.

Launching through 'idlewipe launch' already records usage, but apps
started any other way would look idle forever. The watcher closes that
gap: writes under an app's configured paths count as the app being used
and push its idle clock back.

Watch modes:
  • Foreground (default): run in the current terminal, Ctrl+C to stop
  • Daemon: run as a detached background process
  • Stop: stop a running daemon

Activity is coalesced and written to the usage store every 30 seconds.`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  idlewipe watch

  # Run as background daemon
  idlewipe watch --daemon

  # Stop running daemon
  idlewipe watch --stop

  # Use custom PID and log files
  idlewipe watch --daemon --pid-file /tmp/watch.pid --log-file /tmp/watch.log`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.idlewipe/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.idlewipe/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchPIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return err
		}
		watchPIDFile = defaultPID
	}

	if watchLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return err
		}
		watchLogFile = defaultLog
	}

	if watchStop {
		return stopWatchDaemon()
	}

	if watchDaemon {
		return startWatchDaemon()
	}

	if watchDaemonChild {
		return runWatchDaemonChild()
	}

	return runWatchForeground()
}

func stopWatchDaemon() error {
	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if !running {
		fmt.Println("Daemon is not running")
		return nil
	}

	if err := watcher.StopDaemon(watchPIDFile); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	fmt.Println("✓ Daemon stopped")

	return nil
}

func startWatchDaemon() error {
	if err := watcher.StartDaemon(watchPIDFile, watchLogFile); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	fmt.Println("✓ Activity tracking daemon started")
	fmt.Printf("  PID file: %s\n", watchPIDFile)
	fmt.Printf("  Log file: %s\n", watchLogFile)
	fmt.Printf("\nTo stop: idlewipe watch --stop\n")

	return nil
}

// newWatcher builds a watcher over the cleanup paths of every registered
// app.
func newWatcher(log *slog.Logger) (*watcher.Watcher, *store.Store, error) {
	cfgPath, err := getConfigPath()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}

	storePath, err := getDBPath()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.New(storePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open usage store: %w", err)
	}

	m := watcher.NewMatcher()
	for _, name := range cfg.Names() {
		app, _ := cfg.App(name)
		m.AddApp(name, app.CleanupPaths)
	}

	w, err := watcher.New(st, m, log)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	return w, st, nil
}

func runWatchDaemonChild() error {
	// stdout/stderr are discarded for the detached child; log to the
	// log file instead.
	logF, err := os.OpenFile(watchLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logF.Close()
	log := newLogger(logF)

	w, st, err := newWatcher(log)
	if err != nil {
		log.Error("daemon startup failed", "error", err)
		return err
	}
	defer st.Close()

	if err := w.Start(); err != nil {
		log.Error("watcher start failed", "error", err)
		return err
	}
	log.Info("activity tracking started", "pid", os.Getpid())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh
	log.Info("shutting down", "signal", sig.String())

	if err := w.Stop(); err != nil {
		log.Error("watcher stop failed", "error", err)
		return err
	}
	os.Remove(watchPIDFile)
	return nil
}

func runWatchForeground() error {
	w, st, err := newWatcher(newLogger(os.Stderr))
	if err != nil {
		return err
	}
	defer st.Close()

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Println("Tracking app activity. Events are written every 30 seconds.")
	fmt.Println("Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh
	fmt.Printf("\nReceived signal %v, shutting down...\n", sig)

	if err := w.Stop(); err != nil {
		return fmt.Errorf("failed to stop watcher: %w", err)
	}

	fmt.Println("Activity tracking stopped")

	return nil
}
