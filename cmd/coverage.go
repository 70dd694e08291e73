package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/impactsel/engine/analytics"
	"github.com/impactsel/engine/engine"
	"github.com/impactsel/engine/errs"
	"github.com/impactsel/engine/methodid"
	"github.com/spf13/cobra"
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Show which tests reach a production method",
	Long: `Builds the index and prints every test that can reach the given method,
with the confidence and call path behind each match. The method is named by
its canonical id, e.g. "Calc.Calculator.Add(Int32,Int32)".`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)
		analytics.ReportEvent(analytics.CoverageQueried)

		solutionPath, _ := cmd.Flags().GetString("solution") //nolint:all
		maxDepth, _ := cmd.Flags().GetUint32("max-depth")    //nolint:all
		parallelism, _ := cmd.Flags().GetInt("parallelism")  //nolint:all
		asJSON, _ := cmd.Flags().GetBool("json")             //nolint:all

		eng := engine.New(nil)
		_, warnings, err := buildIndex(cmd.Context(), eng, solutionPath, maxDepth, parallelism, logger)
		if err != nil {
			exitWith(logger, err, 0)
		}

		production := methodid.MethodID(args[0])
		entries, err := eng.GetTestsForMethod(production)
		if err != nil {
			exitWith(logger, err, len(warnings))
		}

		if asJSON {
			if err := json.NewEncoder(os.Stdout).Encode(entries); err != nil {
				exitWith(logger, &errs.Internal{Reason: err.Error()}, len(warnings))
			}
			exitWith(logger, nil, len(warnings))
		}

		if len(entries) == 0 {
			fmt.Printf("No tests reach %s\n", production)
			exitWith(logger, nil, len(warnings))
		}

		fmt.Printf("Tests reaching %s:\n", production)
		for _, e := range entries {
			path := make([]string, len(e.Path))
			for i, id := range e.Path {
				path[i] = string(id)
			}
			fmt.Printf("  %s  confidence %.2f, depth %d\n", e.Test, e.Confidence, e.Depth)
			fmt.Printf("    via %s\n", strings.Join(path, " -> "))
		}
		exitWith(logger, nil, len(warnings))
	},
}

func init() {
	coverageCmd.Flags().String("solution", "solution.yaml", "Path to the YAML solution descriptor")
	coverageCmd.Flags().Bool("json", false, "Emit coverage entries as JSON")
	coverageCmd.Flags().Uint32("max-depth", 0, "Coverage BFS depth cap (default 5)")
	coverageCmd.Flags().Int("parallelism", 0, "Worker count for project parsing (default CPU count)")
	rootCmd.AddCommand(coverageCmd)
}
