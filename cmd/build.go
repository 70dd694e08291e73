package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/impactsel/engine/analytics"
	"github.com/impactsel/engine/engine"
	"github.com/impactsel/engine/output"
	"github.com/impactsel/engine/sourceindex"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the call graph and coverage index for a solution",
	Long: `Parses every project in the solution descriptor, builds the method call
graph and the test-to-production coverage index, and prints build statistics.
Use this to validate a descriptor and inspect index health before planning.`,
	Run: func(cmd *cobra.Command, _ []string) {
		logger := newLogger(cmd)
		analytics.ReportEvent(analytics.BuildStarted)

		solutionPath, _ := cmd.Flags().GetString("solution") //nolint:all
		maxDepth, _ := cmd.Flags().GetUint32("max-depth")    //nolint:all
		parallelism, _ := cmd.Flags().GetInt("parallelism")  //nolint:all

		eng := engine.New(nil)
		handle, warnings, err := buildIndex(cmd.Context(), eng, solutionPath, maxDepth, parallelism, logger)
		if err != nil {
			analytics.ReportEvent(analytics.BuildFailed)
			exitWith(logger, err, 0)
		}

		graph := handle.Source.Graph()
		fmt.Printf("Methods: %d\n", len(handle.Source.AllRecords()))
		fmt.Printf("Call graph vertices: %d\n", len(graph.Vertices()))
		fmt.Printf("Tests discovered: %d\n", len(handle.Tests))
		for _, w := range warnings {
			logger.Warning("project %s: %d parse errors", w.Project, len(w.Errors))
			for _, e := range w.Errors {
				logger.Progress("  %s", e)
			}
		}

		analytics.ReportEventWithProperties(analytics.BuildCompleted, map[string]interface{}{
			"methods": len(handle.Source.AllRecords()),
			"tests":   len(handle.Tests),
		})
		exitWith(logger, nil, len(warnings))
	},
}

// buildIndex loads the solution descriptor and builds a fresh IndexHandle,
// wiring cancellation to SIGINT/SIGTERM so a ctrl-C returns the documented
// Cancelled exit code instead of a half-written index.
func buildIndex(ctx context.Context, eng *engine.Engine, solutionPath string, maxDepth uint32, parallelism int, logger *output.Logger) (*engine.IndexHandle, []sourceindex.ProjectWarning, error) {
	stop := logger.StartTiming("build")

	solution, err := sourceindex.LoadSolution(solutionPath)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := engine.DefaultOptions()
	if maxDepth > 0 {
		opts.MaxDepth = maxDepth
	}
	if parallelism > 0 {
		opts.MaxParallelism = parallelism
	}
	opts.Progress = func(phase string, done, total int) {
		logger.ObservePhase(output.PhaseSample{Phase: phase, Done: done, Total: total})
	}

	handle, err := eng.BuildIndex(ctx, solution, opts)
	logger.FinishPhases()
	stop()
	if err != nil {
		return nil, nil, err
	}
	logger.Progress("Indexed %d projects in %s", len(solution.Projects), logger.GetTiming("build"))
	return handle, handle.Warnings, nil
}

func init() {
	buildCmd.Flags().String("solution", "solution.yaml", "Path to the YAML solution descriptor")
	buildCmd.Flags().Uint32("max-depth", 0, "Coverage BFS depth cap (default 5)")
	buildCmd.Flags().Int("parallelism", 0, "Worker count for project parsing (default CPU count)")
	rootCmd.AddCommand(buildCmd)
}
