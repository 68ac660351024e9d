// Package pathutil canonicalizes configured path expressions.
//
// Cleanup targets come out of config.json as strings that may contain
// environment variable references ($VAR, ${VAR}, or Windows-style %VAR%),
// a leading ~ for the home directory, and relative segments. Normalize
// resolves all of that without requiring the target to exist, since
// deletion targets routinely don't.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Normalize expands environment variables and the home-directory shorthand
// in expr and returns a canonical absolute path. It never fails: when a
// resolution step cannot be applied (unknown variable, missing home
// directory, nonexistent path chain) the best-effort expanded form is
// returned instead.
func Normalize(expr string) string {
	p := expandPercentVars(expr)
	p = os.ExpandEnv(p)
	p = expandHome(p)

	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}

	// Resolve symlinks in the parent chain only. The final element is left
	// untouched so that a configured path that is itself a symlink still
	// refers to the link, not its target; the deletion engine relies on
	// that distinction.
	dir, base := filepath.Split(p)
	if dir != "" && base != "" {
		if resolved, err := filepath.EvalSymlinks(filepath.Clean(dir)); err == nil {
			p = filepath.Join(resolved, base)
		}
	}

	return p
}

// expandPercentVars replaces %NAME% references with the value of the
// environment variable NAME. References to unset variables are left as-is,
// matching how Windows itself treats them.
func expandPercentVars(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	var sb strings.Builder
	for {
		start := strings.IndexByte(s, '%')
		if start < 0 {
			break
		}
		end := strings.IndexByte(s[start+1:], '%')
		if end < 0 {
			break
		}
		end += start + 1

		name := s[start+1 : end]
		if val, ok := os.LookupEnv(name); ok && name != "" {
			sb.WriteString(s[:start])
			sb.WriteString(val)
		} else {
			sb.WriteString(s[:end+1])
		}
		s = s[end+1:]
	}
	sb.WriteString(s)
	return sb.String()
}

// expandHome replaces a leading ~ with the current user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~"+string(filepath.Separator)) && !strings.HasPrefix(p, "~/") {
		return p
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}

	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}
