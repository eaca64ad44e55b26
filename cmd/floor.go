package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ajxudir/depfloor/pkg/display"
	"github.com/ajxudir/depfloor/pkg/errors"
	"github.com/ajxudir/depfloor/pkg/floor"
	"github.com/ajxudir/depfloor/pkg/history"
	"github.com/ajxudir/depfloor/pkg/manifest"
	"github.com/ajxudir/depfloor/pkg/output"
	"github.com/ajxudir/depfloor/pkg/registry"
)

var (
	floorOutputFlag string
	floorSeriesFlag bool
	floorWindow     windowFlags
)

var floorCmd = &cobra.Command{
	Use:   "floor <package>...",
	Short: "Show the floor of packages without changing anything",
	Long: `Show the floor each package would get under the support window, the rule that
chose it, and the first-seen date of every minor series.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFloor,
}

func init() {
	floorWindow.register(floorCmd)
	floorCmd.Flags().StringVarP(&floorOutputFlag, "output", "o", string(output.FormatTable), "Output format: table or json")
	floorCmd.Flags().BoolVar(&floorSeriesFlag, "series", false, "Also list every minor series with its band (always included in JSON)")
}

// runFloor executes the floor command.
//
// Packages are looked up independently; one failing package does not stop
// the others.
//
// Returns:
//   - error: ExitError for configuration problems, DependencyError when every
//     package failed, PartialSuccessError when only some did
func runFloor(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(floorOutputFlag)
	if err != nil {
		return errors.NewExitError(errors.ExitConfigError, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	win, err := floorWindow.resolve(cmd, cfg)
	if err != nil {
		return err
	}
	client, err := newRegistryClient(cfg)
	if err != nil {
		return err
	}

	now := nowFunc()
	result := &output.FloorResult{Window: windowInfo(win, now)}
	var failures []error
	for _, arg := range args {
		entry, err := queryFloor(cmd, client, arg, win, now)
		if err != nil {
			failures = append(failures, err)
			entry.Error = err.Error()
		}
		result.Packages = append(result.Packages, entry)
	}

	if output.IsStructuredFormat(format) {
		if err := output.WriteFloorResult(os.Stdout, format, result); err != nil {
			return err
		}
	} else {
		display.PrintFloorTable(os.Stdout, result, floorSeriesFlag)
	}

	switch {
	case len(failures) == 0:
		return nil
	case len(failures) == len(args):
		return failures[0]
	default:
		return errors.NewPartialSuccessError(len(args)-len(failures), len(failures), failures)
	}
}

// queryFloor selects the floor of one package.
//
// Parameters:
//   - arg: Package name, optionally with extras or a specifier, which are ignored
//
// Returns:
//   - output.FloorEntry: Floor and series; only Name and PURL on error
//   - error: DependencyError wrapping the cause
func queryFloor(cmd *cobra.Command, client *registry.Client, arg string, win floor.Window, now time.Time) (output.FloorEntry, error) {
	entry := output.FloorEntry{Name: arg, PURL: registry.PackageURL(arg)}

	req, err := manifest.ParseRequirement(arg)
	if err != nil {
		return entry, errors.NewDependencyError(arg, err)
	}
	entry.Name = req.Name
	entry.PURL = registry.PackageURL(req.Name)

	artifacts, err := client.Artifacts(cmd.Context(), req.Name)
	if err != nil {
		return entry, errors.NewDependencyError(req.Name, err)
	}

	pkg := history.NewPackage(req.Name, artifacts)
	sel, err := floor.Select(pkg, now, win)
	if err != nil {
		return entry, errors.NewDependencyError(req.Name, err)
	}
	entry.Floor = sel.Floor
	entry.Reason = string(sel.Reason)
	entry.FloorDate = sel.Date

	for _, s := range pkg.MinorSeries() {
		entry.Series = append(entry.Series, output.SeriesEntry{
			Version: s.Version.Format(),
			Date:    s.Date,
			Band:    string(win.Classify(s.Date, now)),
		})
	}
	return entry, nil
}
