package app

import (
	"strings"
	"testing"
)

func TestRunWatchStopWithoutDaemon(t *testing.T) {
	useTempHome(t)

	origStop, origPID, origLog := watchStop, watchPIDFile, watchLogFile
	watchStop, watchPIDFile, watchLogFile = true, "", ""
	t.Cleanup(func() {
		watchStop, watchPIDFile, watchLogFile = origStop, origPID, origLog
	})

	got := captureStdout(t, func() error { return runWatch(nil, nil) })
	if !strings.Contains(got, "not running") {
		t.Errorf("expected not-running notice, got:\n%s", got)
	}
}

func TestNewWatcherRequiresConfig(t *testing.T) {
	useTempHome(t)

	if _, _, err := newWatcher(quietLogger()); err == nil {
		t.Error("expected error when registry is missing")
	}
}
