package cmd

import (
	"fmt"
	"os"

	"github.com/impactsel/engine/analytics"
	"github.com/impactsel/engine/graph"
	"github.com/impactsel/engine/output"
	"github.com/spf13/cobra"
)

var (
	verboseFlag bool
	Version     = "1.2.2"
	GitCommit   = "HEAD"
)

var rootCmd = &cobra.Command{
	Use:   "impact-engine",
	Short: "Test impact selection from static call-graph analysis",
	Long: `Impact Engine - selects the tests most worth running for a code change.

Builds a static inter-procedural call graph from C# source, indexes which
tests reach which production methods, maps diffs to affected methods, and
produces a bounded execution plan (test list, batches, estimated duration)
under a confidence-level policy.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		disableMetrics, _ := cmd.Flags().GetBool("disable-metrics") //nolint:all
		verboseFlag, _ = cmd.Flags().GetBool("verbose")             //nolint:all
		analytics.LoadEnvFile()
		analytics.Init(disableMetrics)
		analytics.SetVersion(Version)
		if verboseFlag {
			graph.EnableVerboseLogging()
		}

		// Show banner for help command
		if cmd.Name() == "help" || (len(os.Args) == 1 || (len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h"))) {
			noBanner, _ := cmd.Flags().GetBool("no-banner")
			logger := output.NewLogger(output.VerbosityDefault)
			if output.ShouldShowBanner(logger.IsTTY(), noBanner) {
				output.PrintBanner(logger.GetWriter(), Version, output.DefaultBannerOptions())
			} else if logger.IsTTY() && !noBanner {
				fmt.Fprintln(os.Stderr, output.GetCompactBanner(Version))
				fmt.Fprintln(os.Stderr)
			}
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// newLogger builds the run's logger from the persistent verbosity flags.
func newLogger(cmd *cobra.Command) *output.Logger {
	verbosity := output.VerbosityDefault
	if v, _ := cmd.Flags().GetBool("verbose"); v { //nolint:all
		verbosity = output.VerbosityVerbose
	}
	if d, _ := cmd.Flags().GetBool("debug"); d { //nolint:all
		verbosity = output.VerbosityDebug
	}
	return output.NewLogger(verbosity)
}

// exitWith maps a run outcome to the documented exit codes and terminates.
func exitWith(logger *output.Logger, err error, warningCount int) {
	if err != nil {
		logger.Error("%v", err)
	}
	os.Exit(int(output.DetermineExitCode(err, warningCount)))
}

func init() {
	rootCmd.PersistentFlags().Bool("disable-metrics", false, "Disable metrics collection")
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("debug", false, "Debug diagnostics with timings")
	rootCmd.PersistentFlags().Bool("no-banner", false, "Disable startup banner")
}
