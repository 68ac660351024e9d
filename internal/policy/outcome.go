package policy

import (
	"time"

	"github.com/blackwell-systems/idlewipe/internal/wipe"
)

// State is the terminal state one evaluation reached.
type State string

const (
	// StateNoThreshold: the app has no idle threshold configured; cleanup
	// never runs for it.
	StateNoThreshold State = "no-threshold"

	// StateNeverLaunched: no usage record exists. Absence of evidence is
	// not treated as idleness; nothing is destroyed.
	StateNeverLaunched State = "never-launched"

	// StateNotIdle: the app was used recently enough.
	StateNotIdle State = "not-idle"

	// StateNoTargets: the app is idle but has no cleanup paths configured.
	StateNoTargets State = "no-targets"

	// StateWouldClean: dry-run only; the app is idle and targets would
	// have been destroyed.
	StateWouldClean State = "would-clean"

	// StateCleanupDone: every target was destroyed cleanly.
	StateCleanupDone State = "cleanup-done"

	// StateCleanupPartial: cleanup ran but some entries survived.
	StateCleanupPartial State = "cleanup-partial"
)

// IdlePolicy is the per-application cleanup policy from the registry.
type IdlePolicy struct {
	// ThresholdDays is the idle threshold in whole days; nil means never
	// clean up.
	ThresholdDays *int

	// CleanupPaths are path expressions destroyed on exceedance, in order.
	CleanupPaths []string
}

// TargetResult is the outcome of destroying one cleanup target.
type TargetResult struct {
	// Path is the normalized target path.
	Path string

	// Result is nil for dry runs.
	Result *wipe.Result
}

// Outcome is the structured result of one evaluation. The CLI layer maps
// it to output and an exit code; Evaluate itself never terminates the
// process.
type Outcome struct {
	App       string
	State     State
	LastUsed  *time.Time // nil when never launched
	IdleDays  int        // whole days, truncated; meaningful when LastUsed != nil
	Threshold int        // meaningful unless State == StateNoThreshold
	Targets   []TargetResult
}

// Destroyed reports whether any destructive action was taken.
func (o *Outcome) Destroyed() bool {
	return o.State == StateCleanupDone || o.State == StateCleanupPartial
}
