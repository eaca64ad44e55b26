package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajxudir/depfloor/pkg/bump"
	"github.com/ajxudir/depfloor/pkg/config"
	"github.com/ajxudir/depfloor/pkg/display"
	"github.com/ajxudir/depfloor/pkg/errors"
	"github.com/ajxudir/depfloor/pkg/manifest"
	"github.com/ajxudir/depfloor/pkg/output"
	"github.com/ajxudir/depfloor/pkg/preflight"
	"github.com/ajxudir/depfloor/pkg/verbose"
	"github.com/ajxudir/depfloor/pkg/warnings"
)

var (
	bumpFileFlag           string
	bumpDryRunFlag         bool
	bumpContinueOnFailFlag bool
	bumpPersistFlag        string
	bumpOutputFlag         string
	bumpNoProgressFlag     bool
	bumpSkipPreflightFlag  bool
	bumpWindow             windowFlags
)

// validatePersistCommandFunc checks the persist command's executables (mockable for testing).
var validatePersistCommandFunc = preflight.ValidateCommand

var bumpCmd = &cobra.Command{
	Use:   "bump",
	Short: "Raise dependency floors in pyproject.toml",
	Long: `Raise the lower bound of every dependency declared in [project].dependencies
to the oldest minor series still inside the support window, then persist the new
requirements with the configured command (default: uv add --no-sync) or in place.`,
	Args: cobra.NoArgs,
	RunE: runBump,
}

func init() {
	bumpCmd.Flags().StringVarP(&bumpFileFlag, "file", "f", "", "Manifest to bump (default: "+config.DefaultManifest+")")
	bumpWindow.register(bumpCmd)
	bumpCmd.Flags().BoolVar(&bumpDryRunFlag, "dry-run", false, "Compute new floors without writing them")
	bumpCmd.Flags().BoolVar(&bumpContinueOnFailFlag, "continue-on-fail", false, "Keep failing dependencies unchanged instead of aborting")
	bumpCmd.Flags().StringVar(&bumpPersistFlag, "persist", config.DefaultPersistMode, "How to write requirements: command or inplace")
	bumpCmd.Flags().StringVarP(&bumpOutputFlag, "output", "o", string(output.FormatTable), "Output format: table or json")
	bumpCmd.Flags().BoolVar(&bumpNoProgressFlag, "no-progress", false, "Disable the progress bar")
	bumpCmd.Flags().BoolVar(&bumpSkipPreflightFlag, "skip-preflight", false, "Skip checking that the persist command is installed")
}

// runBump executes the bump command.
//
// It performs the following operations:
//   - Step 1: Load configuration and apply flag overrides
//   - Step 2: Check the persist command is installed
//   - Step 3: Read the manifest
//   - Step 4: Plan the new floor of every dependency
//   - Step 5: Persist the plan unless --dry-run or a dependency failed
//   - Step 6: Print the result, then the collected warnings
//
// Returns:
//   - error: ExitError for configuration problems, DependencyError on
//     fail-fast, PartialSuccessError with --continue-on-fail, or a persist error
func runBump(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(bumpOutputFlag)
	if err != nil {
		return errors.NewExitError(errors.ExitConfigError, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	win, err := bumpWindow.resolve(cmd, cfg)
	if err != nil {
		return err
	}

	continueOnFail := cfg.ContinueOnFail
	if cmd.Flags().Changed("continue-on-fail") {
		continueOnFail = bumpContinueOnFailFlag
	}
	mode := cfg.Persist.Mode
	if cmd.Flags().Changed("persist") {
		mode = bumpPersistFlag
	}
	persister, err := newPersister(mode, cfg)
	if err != nil {
		return err
	}
	if err := runPreflight(mode, cfg); err != nil {
		return err
	}

	project, err := manifest.Load(manifestPath(cfg))
	if err != nil {
		return err
	}
	verbose.Printf("Manifest %s: %d dependencies", project.Path, len(project.Dependencies))

	client, err := newRegistryClient(cfg)
	if err != nil {
		return err
	}

	collector := display.NewWarningCollector()
	restore := warnings.SetWarningWriter(collector)
	defer restore()

	progress := display.NewDisabledProgress()
	if !output.IsStructuredFormat(format) && !bumpNoProgressFlag && len(project.Dependencies) > 0 {
		progress = display.NewProgress(os.Stderr, len(project.Dependencies), "Resolving floors")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	now := nowFunc()
	bumper := bump.New(client, bump.Options{
		Window:         win,
		Now:            now,
		ContinueOnFail: continueOnFail,
		Progress: func(done, total int, r bump.Result) {
			progress.Set(done, r.Name)
		},
	})

	plan, planErr := bumper.Plan(ctx, project.Dependencies)
	progress.Done()
	if plan == nil {
		return planErr
	}

	persisted := false
	var applyErr error
	if _, partial := errors.IsPartialSuccess(planErr); planErr == nil || partial {
		if bumpDryRunFlag {
			verbose.Info("Dry run: not persisting")
		} else {
			persisted, applyErr = bumper.Apply(ctx, plan, project, persister)
		}
	}

	result := buildBumpResult(project, plan, windowInfo(win, now), persisted)
	result.Warnings = collector.Messages()
	if err := renderBump(format, result); err != nil {
		return err
	}

	if applyErr != nil {
		return applyErr
	}
	return planErr
}

// runPreflight fails before any lookup when the persist command cannot run.
// Only the command persister with a real run needs it.
func runPreflight(mode string, cfg *config.Config) error {
	if mode != config.PersistModeCommand || bumpDryRunFlag || bumpSkipPreflightFlag {
		return nil
	}
	validation := validatePersistCommandFunc(cfg.Persist.Command)
	if !validation.HasErrors() {
		return nil
	}
	verbose.Printf("Exit code %d (config error): preflight validation failed", errors.ExitConfigError)
	return errors.NewExitError(errors.ExitConfigError, fmt.Errorf("%s\n  💡 Options:\n     --skip-preflight     Bypass validation if the command is available through other means\n     --persist inplace    Edit the manifest directly instead", strings.TrimRight(validation.ErrorMessage(), "\n")))
}

// manifestPath returns --file, or the configured manifest relative to the
// configuration's working directory.
func manifestPath(cfg *config.Config) string {
	if bumpFileFlag != "" {
		return bumpFileFlag
	}
	path := cfg.Manifest
	if path == "" {
		path = config.DefaultManifest
	}
	if !filepath.IsAbs(path) && cfg.WorkingDir != "" {
		path = filepath.Join(cfg.WorkingDir, path)
	}
	return path
}

// buildBumpResult converts a plan into its output form.
//
// Parameters:
//   - project: Manifest the plan was computed for
//   - plan: Planned requirements
//   - win: Window the plan was computed with
//   - persisted: Whether the requirements were written
//
// Returns:
//   - *output.BumpResult: Result with one entry per dependency in declared order
func buildBumpResult(project *manifest.Project, plan *bump.Plan, win output.WindowInfo, persisted bool) *output.BumpResult {
	result := &output.BumpResult{
		Manifest:  project.Path,
		Window:    win,
		DryRun:    bumpDryRunFlag,
		Persisted: persisted,
		Summary: output.BumpSummary{
			Total:     len(project.Dependencies),
			Updated:   plan.Count(bump.OutcomeUpdated),
			Unchanged: plan.Count(bump.OutcomeUnchanged),
			Fallback:  plan.Count(bump.OutcomeFallback),
			Skipped:   plan.Count(bump.OutcomeSkipped),
			Failed:    plan.Count(bump.OutcomeFailed),
		},
	}

	for _, r := range plan.Results {
		entry := output.BumpEntry{
			Name:        r.Name,
			Original:    r.Original,
			Requirement: r.Requirement,
			Floor:       r.Floor,
			Reason:      string(r.Reason),
			FloorDate:   r.FloorDate,
			Status:      display.BumpStatus(r.Outcome, persisted),
			Warning:     r.Warning,
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", r.Name, r.Err))
		}
		result.Dependencies = append(result.Dependencies, entry)
	}
	return result
}

// renderBump writes the result to stdout in the requested format. Warnings
// and errors go to stderr after the table.
func renderBump(format output.Format, result *output.BumpResult) error {
	if output.IsStructuredFormat(format) {
		return output.WriteBumpResult(os.Stdout, format, result)
	}

	display.PrintBumpTable(os.Stdout, result)
	display.PrintWarnings(os.Stderr, result.Warnings)
	return nil
}
