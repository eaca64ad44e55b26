// Package cmd implements the command-line interface for depfloor.
// It provides commands for raising the dependency floors of a Python project,
// querying the floor of individual packages, and managing configuration.
package cmd

import (
	stderrors "errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ajxudir/depfloor/pkg/errors"
	"github.com/ajxudir/depfloor/pkg/verbose"
)

var exitFunc = os.Exit
var nowFunc = time.Now
var verboseFlag bool
var versionFlag bool
var skipBuildChecksFlag bool
var configFlag string

var rootCmd = &cobra.Command{
	Use:   "depfloor",
	Short: "Raise Python dependency floors to a time-based support window",
	Long: `Raise the lower bound of every dependency in pyproject.toml to the oldest
release still inside a rolling support window, based on release dates from the
package index.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verboseFlag {
			verbose.Enable()
		}
		if !skipBuildChecksFlag {
			if warnings := GetBuildWarnings(); warnings != "" {
				fmt.Fprint(os.Stderr, warnings)
				fmt.Fprintln(os.Stderr)
			}
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if versionFlag {
			printVersionOutput()
			return
		}
		_ = cmd.Help()
	},
}

// Execute runs the root command and exits with appropriate code:
//   - 0: Success
//   - 1: Partial failure (some dependencies failed, with --continue-on-fail)
//   - 2: Complete failure
//   - 3: Configuration or validation error
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		errors.PrintErrorWithHints(os.Stderr, []error{err}, verboseFlag)
		code := errors.GetExitCode(err)

		var partialErr *errors.PartialSuccessError
		if stderrors.As(err, &partialErr) {
			code = errors.ExitPartialFailure
			verbose.Printf("Exit code %d: partial success - %d succeeded, %d failed", code, partialErr.Succeeded, partialErr.Failed)
		} else {
			verbose.Printf("Exit code %d: %v", code, err)
		}

		exitFunc(code)
	}
}

// ExecuteTest runs the root command for testing (returns error instead of exiting).
//
// Returns:
//   - error: Command execution error, or nil on success
func ExecuteTest() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file path (default: .depfloor.yml in the working directory)")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable verbose debug output")
	rootCmd.PersistentFlags().BoolVar(&skipBuildChecksFlag, "skip-build-checks", false, "Skip build validation warnings (dev build, arch mismatch)")

	rootCmd.Flags().BoolVarP(&versionFlag, "version", "v", false, "Show version information")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(floorCmd)
	rootCmd.AddCommand(bumpCmd)
}

// printVersionOutput prints version, build, and runtime information to stdout.
func printVersionOutput() {
	buildOS, buildArch := getBuildTarget()
	fmt.Printf("  Build:   %s/%s\n", buildOS, buildArch)

	if buildOS != runtime.GOOS || buildArch != runtime.GOARCH {
		fmt.Printf("  Runtime: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	}

	fmt.Printf("  Go:      %s\n", runtime.Version())
	if BuildTime != "" {
		fmt.Printf("  Date:    %s\n", BuildTime)
	}
	fmt.Println()
	if GitCommit != "" {
		fmt.Printf("  Git:     %s\n", GitCommit)
	}
	fmt.Printf("  Version: %s\n", Version)
}
