// Package policy decides whether an idle application's data should be
// destroyed, and runs the destruction.
//
// The decision is deliberately conservative: no threshold, no record, a
// store that cannot be read, or an idle span not strictly beyond the
// threshold all result in no action. The destructive path never runs as a
// side effect of an error in the decision path.
package policy

import (
	"log/slog"
	"time"

	"github.com/blackwell-systems/idlewipe/internal/pathutil"
	"github.com/blackwell-systems/idlewipe/internal/store"
	"github.com/blackwell-systems/idlewipe/internal/wipe"
)

// Evaluator combines the usage tracker, the deletion engine, and a clock.
// All collaborators are explicit so tests can inject a fake clock, a
// temporary store, and a quiet logger.
type Evaluator struct {
	// DBPath locates the usage store. Opened and closed per evaluation.
	DBPath string

	// Engine destroys cleanup targets.
	Engine *wipe.Engine

	// Now is the clock source. Defaults to time.Now.
	Now func() time.Time

	// DryRun reports what would be destroyed without destroying it.
	DryRun bool

	// Log receives decision and warning output. Defaults to slog.Default().
	Log *slog.Logger
}

// Evaluate applies pol to appID: reads the last use from the store,
// computes whole idle days, and on strict exceedance destroys each cleanup
// target in order. One target's failure never stops the next.
func (e *Evaluator) Evaluate(appID string, pol IdlePolicy) *Outcome {
	log := e.logger().With("app", appID)
	out := &Outcome{App: appID}

	if pol.ThresholdDays == nil {
		out.State = StateNoThreshold
		log.Info("no idle threshold configured, nothing to do")
		return out
	}
	out.Threshold = *pol.ThresholdDays

	last, err := store.LastLaunch(e.DBPath, appID)
	if err != nil {
		// An unreadable store is never evidence of idleness.
		log.Warn("could not read usage store, treating app as never launched",
			"error", err)
		last = nil
	}

	if last == nil {
		out.State = StateNeverLaunched
		log.Info("no launch record, skipping cleanup")
		return out
	}

	out.LastUsed = last
	now := e.now()

	// Whole days, truncated toward zero: partial days don't count.
	out.IdleDays = int(now.Sub(*last).Hours() / 24)

	// Strict inequality: exactly at the threshold is not yet idle.
	if out.IdleDays <= out.Threshold {
		out.State = StateNotIdle
		log.Info("not idle long enough, no action",
			"idle_days", out.IdleDays, "threshold_days", out.Threshold)
		return out
	}

	if len(pol.CleanupPaths) == 0 {
		out.State = StateNoTargets
		log.Info("idle threshold exceeded but no cleanup paths configured, skipping",
			"idle_days", out.IdleDays)
		return out
	}

	log.Info("idle threshold exceeded, cleaning up",
		"idle_days", out.IdleDays, "threshold_days", out.Threshold,
		"targets", len(pol.CleanupPaths), "dry_run", e.DryRun)

	partial := false
	for _, expr := range pol.CleanupPaths {
		target := pathutil.Normalize(expr)

		if e.DryRun {
			out.Targets = append(out.Targets, TargetResult{Path: target})
			continue
		}

		log.Info("securely deleting", "path", target)
		res := e.Engine.Destroy(target)
		if res.Partial() {
			partial = true
		}
		out.Targets = append(out.Targets, TargetResult{Path: target, Result: res})
	}

	switch {
	case e.DryRun:
		out.State = StateWouldClean
	case partial:
		out.State = StateCleanupPartial
	default:
		out.State = StateCleanupDone
	}

	return out
}

func (e *Evaluator) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Evaluator) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.Default()
}
