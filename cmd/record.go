package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/impactsel/engine/analytics"
	"github.com/impactsel/engine/errs"
	"github.com/impactsel/engine/historylog"
	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Append test execution results to the history log",
	Long: `Reads execution results in the pipe-delimited interchange format

	test_id | passed(0|1) | duration_ms | iso8601_timestamp

one per line, from --results ("-" for stdin) and appends them to the
history database the historical scorer reads. Use --compact to also trim
the log to the most recent records per test.`,
	Run: func(cmd *cobra.Command, _ []string) {
		logger := newLogger(cmd)
		analytics.ReportEvent(analytics.ResultsRecorded)

		historyPath, _ := cmd.Flags().GetString("history")  //nolint:all
		resultsPath, _ := cmd.Flags().GetString("results")  //nolint:all
		compactN, _ := cmd.Flags().GetInt("compact")        //nolint:all

		if historyPath == "" {
			exitWith(logger, &errs.InvalidInput{What: "--history is required"}, 0)
		}

		history, err := historylog.Open(historyPath)
		if err != nil {
			exitWith(logger, &errs.Internal{Reason: err.Error()}, 0)
		}
		defer history.Close()

		if resultsPath != "" {
			var r io.Reader
			if resultsPath == "-" {
				r = os.Stdin
			} else {
				f, err := os.Open(resultsPath)
				if err != nil {
					exitWith(logger, &errs.InvalidInput{What: fmt.Sprintf("opening results %s: %v", resultsPath, err)}, 0)
				}
				defer f.Close()
				r = f
			}
			if err := history.Import(r); err != nil {
				exitWith(logger, &errs.InvalidInput{What: err.Error()}, 0)
			}
			logger.Progress("Results imported from %s", resultsPath)
		}

		if compactN > 0 {
			if err := history.Compact(compactN); err != nil {
				exitWith(logger, &errs.Internal{Reason: err.Error()}, 0)
			}
			logger.Progress("History compacted to last %d records per test", compactN)
		}

		exitWith(logger, nil, 0)
	},
}

// openHistory opens the history log at path, or returns nil when no path is
// configured (the historical scorer then scores every test neutrally).
func openHistory(path string) (*historylog.Log, error) {
	if path == "" {
		return nil, nil
	}
	log, err := historylog.Open(path)
	if err != nil {
		return nil, &errs.Internal{Reason: err.Error()}
	}
	return log, nil
}

func init() {
	recordCmd.Flags().String("history", "", "Path to the execution history database")
	recordCmd.Flags().String("results", "", "Results file in the interchange format (\"-\" for stdin)")
	recordCmd.Flags().Int("compact", 0, "Retain only the last N records per test after import")
	rootCmd.AddCommand(recordCmd)
}
