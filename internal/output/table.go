// Package output provides terminal output utilities for idlewipe.
//
// Table rendering uses ASCII characters plus ANSI color codes, gated on
// stdout being a TTY and NO_COLOR being unset. The progress bar is safe to
// use from multiple goroutines.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

// ANSI color codes for verdict display
const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorGray  = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// StatusRow is one application's line in the status table.
type StatusRow struct {
	App        string
	LastUsed   time.Time // zero means never
	IdleDays   int       // meaningful when LastUsed is non-zero
	Threshold  *int      // nil means no cleanup policy
	Activity7d int       // watcher touches in the last 7 days
	Targets    int       // configured cleanup paths
}

// Verdict returns the short judgement shown in the last column.
func (r StatusRow) Verdict() string {
	switch {
	case r.Threshold == nil:
		return "no policy"
	case r.LastUsed.IsZero():
		return "never launched"
	case r.IdleDays > *r.Threshold:
		return "idle"
	default:
		return "ok"
	}
}

// RenderStatusTable renders the per-application status table.
// Rows are expected pre-sorted by the caller.
func RenderStatusTable(rows []StatusRow) string {
	if len(rows) == 0 {
		return "No applications configured.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-20s %-16s %-6s %-11s %-9s %-8s %s\n",
		"App", "Last Used", "Idle", "Threshold", "Activity", "Targets", "Verdict"))
	sb.WriteString(strings.Repeat("─", 82))
	sb.WriteString("\n")

	for _, row := range rows {
		lastUsed := formatRelativeTime(row.LastUsed)

		idle := "—"
		if !row.LastUsed.IsZero() {
			idle = fmt.Sprintf("%dd", row.IdleDays)
		}

		threshold := "—"
		if row.Threshold != nil {
			threshold = fmt.Sprintf("%dd", *row.Threshold)
		}

		verdict := row.Verdict()
		sb.WriteString(fmt.Sprintf("%-20s %-16s %-6s %-11s %-9d %-8d %s\n",
			truncate(row.App, 20),
			lastUsed,
			idle,
			threshold,
			row.Activity7d,
			row.Targets,
			colorize(verdictColor(verdict), verdict)))
	}

	return sb.String()
}

func verdictColor(verdict string) string {
	switch verdict {
	case "ok":
		return colorGreen
	case "idle":
		return colorRed
	default:
		return colorGray
	}
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// formatRelativeTime renders t relative to now ("3 days ago"). A zero time
// renders as "never".
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24/7), "week")
	case diff < 365*24*time.Hour:
		return plural(int(diff.Hours()/24/30), "month")
	default:
		return plural(int(diff.Hours()/24/365), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
