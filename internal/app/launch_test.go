package app

import (
	"errors"
	"runtime"
	"testing"

	"github.com/blackwell-systems/idlewipe/internal/config"
	"github.com/blackwell-systems/idlewipe/internal/store"
)

func TestRunLaunchUnknownApp(t *testing.T) {
	home := useTempHome(t)
	writeTestConfig(t, home, `{"apps":{"editor":{"cmd":["true"]}}}`)

	err := runLaunch(nil, []string{"nope"})
	if !errors.Is(err, config.ErrUnknownApp) {
		t.Errorf("err = %v, want ErrUnknownApp", err)
	}
}

func TestRunLaunchNoCmd(t *testing.T) {
	home := useTempHome(t)
	writeTestConfig(t, home, `{"apps":{"cache-only":{"max_days_idle":30,"cleanup_paths":["/tmp/x"]}}}`)

	err := runLaunch(nil, []string{"cache-only"})
	if err == nil {
		t.Fatal("expected error for app without cmd")
	}
}

func TestRunLaunchRecordsUse(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on the true(1) binary")
	}

	home := useTempHome(t)
	writeTestConfig(t, home, `{"apps":{"noop":{"cmd":["true"]}}}`)

	if err := runLaunch(nil, []string{"noop"}); err != nil {
		t.Fatalf("runLaunch() error: %v", err)
	}

	storePath, err := getDBPath()
	if err != nil {
		t.Fatalf("getDBPath() error: %v", err)
	}
	last, err := store.LastLaunch(storePath, "noop")
	if err != nil {
		t.Fatalf("LastLaunch() error: %v", err)
	}
	if last == nil {
		t.Error("launch was not recorded")
	}
}

func TestRunLaunchMissingBinaryFails(t *testing.T) {
	home := useTempHome(t)
	writeTestConfig(t, home, `{"apps":{"ghost":{"cmd":["/nonexistent/binary-xyz"]}}}`)

	if err := runLaunch(nil, []string{"ghost"}); err == nil {
		t.Error("expected error launching nonexistent binary")
	}
}
