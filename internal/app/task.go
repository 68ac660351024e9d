package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blackwell-systems/idlewipe/internal/config"
	"github.com/blackwell-systems/idlewipe/internal/output"
	"github.com/blackwell-systems/idlewipe/internal/policy"
	"github.com/blackwell-systems/idlewipe/internal/wipe"
	"github.com/spf13/cobra"
)

var (
	taskFlagAll    bool
	taskFlagDryRun bool
	taskFlagPasses int
)

var taskCmd = &cobra.Command{
	Use:   "task [apps...]",
	Short: "Evaluate idle apps and destroy their configured data",
	Long: `Evaluate the idle policy for the named apps (or every registered app
with --all) and securely destroy the cleanup paths of each app that has
been idle longer than its threshold.

Idle time is measured in whole days since the last recorded use. An app
exactly at its threshold is kept; cleanup runs only on strict exceedance.
Apps that were never launched are skipped: absence of usage data is not
treated as idleness.

Destruction overwrites regular files with random data before unlinking
them. It is irreversible. Use --dry-run first.

One app's failure (unknown name, broken policy) never stops the
remaining apps; failures are reported at the end.`,
	Example: `  # Preview a full cleanup run
  idlewipe task --all --dry-run

  # Clean up every idle app
  idlewipe task --all

  # Clean up two specific apps with extra overwrite passes
  idlewipe task editor browser --passes 7`,
	RunE: runTask,
}

func init() {
	taskCmd.Flags().BoolVar(&taskFlagAll, "all", false, "evaluate every registered app")
	taskCmd.Flags().BoolVar(&taskFlagDryRun, "dry-run", false, "report what would be destroyed without destroying")
	taskCmd.Flags().IntVar(&taskFlagPasses, "passes", wipe.DefaultPasses, "random overwrite passes per file")

	RootCmd.AddCommand(taskCmd)
}

func runTask(cmd *cobra.Command, args []string) error {
	if taskFlagAll && len(args) > 0 {
		return fmt.Errorf("cannot combine --all with explicit app names")
	}
	if !taskFlagAll && len(args) == 0 {
		return fmt.Errorf("specify one or more apps, or --all")
	}
	if taskFlagPasses < 1 {
		return fmt.Errorf("--passes must be at least 1")
	}

	cfgPath, err := getConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	names := args
	if taskFlagAll {
		names = cfg.Names()
	}
	if len(names) == 0 {
		fmt.Println("No applications configured.")
		return nil
	}

	storePath, err := getDBPath()
	if err != nil {
		return err
	}

	ev := &policy.Evaluator{
		DBPath: storePath,
		Engine: &wipe.Engine{Passes: taskFlagPasses},
		DryRun: taskFlagDryRun,
		Log:    newLogger(os.Stderr),
	}

	var progress *output.ProgressBar
	if len(names) > 1 {
		label := "Evaluating applications..."
		if taskFlagDryRun {
			label = "Evaluating applications (dry run)..."
		}
		progress = output.NewProgress(len(names), label)
	}

	outcomes, errs := evaluateApps(cfg, ev, names, progress)
	if progress != nil {
		progress.Finish()
		fmt.Println()
	}

	for _, out := range outcomes {
		printOutcome(os.Stdout, out)
	}
	printTaskSummary(os.Stdout, outcomes, taskFlagDryRun)

	if len(errs) > 0 {
		fmt.Fprintln(os.Stderr)
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "⚠  %v\n", err)
		}
		return fmt.Errorf("%d of %d apps failed", len(errs), len(names))
	}
	return nil
}

// evaluateApps evaluates each named app in order. An app whose registry
// lookup fails is recorded as an error and the loop moves on.
func evaluateApps(cfg *config.Config, ev *policy.Evaluator, names []string, progress *output.ProgressBar) ([]*policy.Outcome, []error) {
	var outcomes []*policy.Outcome
	var errs []error

	for _, name := range names {
		app, err := cfg.App(name)
		if err != nil {
			errs = append(errs, err)
		} else {
			outcomes = append(outcomes, ev.Evaluate(name, policy.IdlePolicy{
				ThresholdDays: app.MaxDaysIdle,
				CleanupPaths:  app.CleanupPaths,
			}))
		}
		if progress != nil {
			progress.Increment()
		}
	}

	return outcomes, errs
}

func printOutcome(w io.Writer, out *policy.Outcome) {
	switch out.State {
	case policy.StateNoThreshold:
		fmt.Fprintf(w, "- %s: no cleanup policy\n", out.App)
	case policy.StateNeverLaunched:
		fmt.Fprintf(w, "- %s: never launched, skipping\n", out.App)
	case policy.StateNotIdle:
		fmt.Fprintf(w, "✓ %s: idle %dd (threshold %dd), keeping\n", out.App, out.IdleDays, out.Threshold)
	case policy.StateNoTargets:
		fmt.Fprintf(w, "- %s: idle %dd (threshold %dd) but no cleanup paths\n", out.App, out.IdleDays, out.Threshold)
	case policy.StateWouldClean:
		fmt.Fprintf(w, "→ %s: idle %dd (threshold %dd), would destroy %d path(s):\n", out.App, out.IdleDays, out.Threshold, len(out.Targets))
		for _, tgt := range out.Targets {
			fmt.Fprintf(w, "    %s\n", tgt.Path)
		}
	case policy.StateCleanupDone:
		fmt.Fprintf(w, "✓ %s: idle %dd (threshold %dd), destroyed %d path(s) (%d entries)\n",
			out.App, out.IdleDays, out.Threshold, len(out.Targets), entriesRemoved(out))
	case policy.StateCleanupPartial:
		fmt.Fprintf(w, "⚠ %s: idle %dd (threshold %dd), cleanup incomplete (%d entries removed):\n",
			out.App, out.IdleDays, out.Threshold, entriesRemoved(out))
		for _, tgt := range out.Targets {
			if tgt.Result == nil || !tgt.Result.Partial() {
				continue
			}
			for _, f := range tgt.Result.Failures {
				fmt.Fprintf(w, "    %s\n", f.String())
			}
		}
	}
}

func printTaskSummary(w io.Writer, outcomes []*policy.Outcome, dryRun bool) {
	var cleaned, wouldClean, partial int
	for _, out := range outcomes {
		switch out.State {
		case policy.StateCleanupDone:
			cleaned++
		case policy.StateCleanupPartial:
			partial++
		case policy.StateWouldClean:
			wouldClean++
		}
	}

	var parts []string
	if dryRun {
		parts = append(parts, fmt.Sprintf("%d would be cleaned", wouldClean))
	} else {
		parts = append(parts, fmt.Sprintf("%d cleaned", cleaned))
		if partial > 0 {
			parts = append(parts, fmt.Sprintf("%d incomplete", partial))
		}
	}

	fmt.Fprintf(w, "\n%d apps evaluated: %s\n", len(outcomes), strings.Join(parts, ", "))
}

// entriesRemoved sums removed filesystem entries across all targets.
func entriesRemoved(out *policy.Outcome) int {
	total := 0
	for _, tgt := range out.Targets {
		if tgt.Result != nil {
			total += tgt.Result.Removed
		}
	}
	return total
}
