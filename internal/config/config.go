// Package config loads and validates the application registry.
//
// The registry is a JSON file mapping application names to their launch
// command, idle threshold, and cleanup paths:
//
//	{
//	  "apps": {
//	    "editor": {
//	      "cmd": ["/usr/bin/editor", "--profile", "work"],
//	      "max_days_idle": 30,
//	      "cleanup_paths": ["~/.editor/cache", "$XDG_DATA_HOME/editor"]
//	    }
//	  }
//	}
//
// Validation happens at load time, before any core logic runs: a malformed
// registry never reaches the deletion path.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrUnknownApp is returned when a requested application is not in the
// registry.
var ErrUnknownApp = errors.New("app not defined in config")

// App is one registry entry.
type App struct {
	// Cmd is the command line used by `idlewipe launch`. Required for
	// launching, ignored by cleanup.
	Cmd []string `json:"cmd,omitempty"`

	// MaxDaysIdle is the idle threshold in whole days. Absent means the
	// app is never cleaned up.
	MaxDaysIdle *int `json:"max_days_idle,omitempty"`

	// CleanupPaths are the path expressions destroyed once the app has
	// been idle longer than MaxDaysIdle. Expressions may contain
	// environment variables and a leading ~.
	CleanupPaths []string `json:"cleanup_paths,omitempty"`
}

// Config is the parsed registry.
type Config struct {
	Apps map[string]App `json:"apps"`
}

// Load reads and validates the registry at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file %s not found (create it, see README for the format): %w", path, err)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks the registry's structural invariants.
func (c *Config) Validate() error {
	if c.Apps == nil {
		return fmt.Errorf("config must define an \"apps\" object")
	}

	for name, app := range c.Apps {
		if name == "" {
			return fmt.Errorf("app names must be non-empty")
		}
		if app.MaxDaysIdle != nil && *app.MaxDaysIdle <= 0 {
			return fmt.Errorf("app %q: max_days_idle must be a positive integer, got %d", name, *app.MaxDaysIdle)
		}
		for i, arg := range app.Cmd {
			if arg == "" {
				return fmt.Errorf("app %q: cmd[%d] must be non-empty", name, i)
			}
		}
		for i, p := range app.CleanupPaths {
			if p == "" {
				return fmt.Errorf("app %q: cleanup_paths[%d] must be non-empty", name, i)
			}
		}
	}

	return nil
}

// App looks up one registry entry by name.
func (c *Config) App(name string) (App, error) {
	app, ok := c.Apps[name]
	if !ok {
		return App{}, fmt.Errorf("%q: %w", name, ErrUnknownApp)
	}
	return app, nil
}

// Names returns all registered application names in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Apps))
	for name := range c.Apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
