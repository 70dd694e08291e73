package cmd

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/impactsel/engine/analytics"
	"github.com/impactsel/engine/diff"
	"github.com/impactsel/engine/engine"
	"github.com/impactsel/engine/errs"
	"github.com/impactsel/engine/model"
	"github.com/impactsel/engine/output"
	"github.com/impactsel/engine/selection"
	"github.com/impactsel/engine/sourceindex"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Select the tests worth running for a change set",
	Long: `Builds the index, resolves the diff to affected methods, scores every
known test against them, and emits a bounded execution plan under the chosen
confidence level (Fast, Medium, High, Full).

The diff comes from --diff (a unified-diff file, "-" for stdin) or, when
omitted, from git against --base/--head in --project-root.`,
	Run: func(cmd *cobra.Command, _ []string) {
		logger := newLogger(cmd)
		analytics.ReportEvent(analytics.PlanStarted)
		start := time.Now()

		solutionPath, _ := cmd.Flags().GetString("solution") //nolint:all
		maxDepth, _ := cmd.Flags().GetUint32("max-depth")    //nolint:all
		parallelism, _ := cmd.Flags().GetInt("parallelism")  //nolint:all
		historyPath, _ := cmd.Flags().GetString("history")   //nolint:all

		history, err := openHistory(historyPath)
		if err != nil {
			exitWith(logger, err, 0)
		}
		if history != nil {
			defer history.Close()
		}

		eng := engine.New(history)
		_, warnings, err := buildIndex(cmd.Context(), eng, solutionPath, maxDepth, parallelism, logger)
		if err != nil {
			analytics.ReportEvent(analytics.PlanFailed)
			exitWith(logger, err, 0)
		}

		hunks, err := resolveHunks(cmd)
		if err != nil {
			analytics.ReportEvent(analytics.PlanFailed)
			exitWith(logger, err, len(warnings))
		}

		changes, err := eng.ResolveChanges(hunks)
		if err != nil {
			exitWith(logger, err, len(warnings))
		}

		selOpts, err := selectionOptions(cmd)
		if err != nil {
			exitWith(logger, err, len(warnings))
		}
		selOpts.MaxParallelism = parallelism
		if selOpts.MaxParallelism <= 0 {
			selOpts.MaxParallelism = runtime.NumCPU()
		}

		plan, err := eng.Plan(changes, selOpts)
		if err != nil {
			analytics.ReportEvent(analytics.PlanFailed)
			exitWith(logger, err, len(warnings))
		}

		if err := renderPlan(cmd, eng, plan, changes, warnings, start); err != nil {
			exitWith(logger, err, len(warnings))
		}

		analytics.ReportEventWithProperties(analytics.PlanCompleted, map[string]interface{}{
			"selected": len(plan.Tests),
			"level":    plan.ConfidenceLevel,
		})
		exitWith(logger, nil, len(warnings))
	},
}

// resolveHunks picks the diff source: an explicit patch file wins, then git
// in the project root using the CI-derived or flag-provided base ref.
func resolveHunks(cmd *cobra.Command) ([]diff.Hunk, error) {
	diffPath, _ := cmd.Flags().GetString("diff")            //nolint:all
	projectRoot, _ := cmd.Flags().GetString("project-root") //nolint:all
	baseRef, _ := cmd.Flags().GetString("base")             //nolint:all
	headRef, _ := cmd.Flags().GetString("head")             //nolint:all

	if diffPath != "" {
		provider, err := diff.NewUnifiedDiffProviderFromFile(diffPath)
		if err != nil {
			return nil, &errs.InvalidInput{What: err.Error()}
		}
		return provider.GetChangedHunks()
	}

	if baseRef == "" {
		baseRef = diff.ResolveBaseRef()
	}
	if baseRef != "" {
		if err := diff.ValidateGitRef(projectRoot, baseRef); err != nil {
			return nil, &errs.InvalidInput{What: err.Error()}
		}
	}
	provider, err := diff.NewChangedFilesProvider(diff.ProviderOptions{
		ProjectRoot: projectRoot,
		BaseRef:     baseRef,
		HeadRef:     headRef,
	})
	if err != nil {
		return nil, &errs.InvalidInput{What: err.Error()}
	}
	return provider.GetChangedHunks()
}

// selectionOptions assembles selection.Options from the plan flags.
func selectionOptions(cmd *cobra.Command) (selection.Options, error) {
	levelFlag, _ := cmd.Flags().GetString("level")          //nolint:all
	includeFlaky, _ := cmd.Flags().GetBool("include-flaky") //nolint:all
	maxTests, _ := cmd.Flags().GetInt("max-tests")          //nolint:all
	maxDuration, _ := cmd.Flags().GetDuration("max-duration") //nolint:all
	minScore, _ := cmd.Flags().GetFloat64("min-score")      //nolint:all

	level, err := parseLevel(levelFlag)
	if err != nil {
		return selection.Options{}, err
	}

	opts := selection.Options{
		Level:        level,
		IncludeFlaky: includeFlaky,
	}

	if maxTests > 0 || maxDuration > 0 || minScore > 0 {
		policy := selection.DefaultPolicies()[level]
		if maxTests > 0 {
			policy.MaxTests = maxTests
		}
		if maxDuration > 0 {
			policy.MaxDuration = maxDuration
		}
		if minScore > 0 {
			policy.MinScore = minScore
		}
		opts.PolicyOverride = &policy
	}

	if opts.IncludedCategories, err = categorySet(cmd, "included-categories"); err != nil {
		return selection.Options{}, err
	}
	if opts.ExcludedCategories, err = categorySet(cmd, "excluded-categories"); err != nil {
		return selection.Options{}, err
	}
	opts.RequiredTags = tagSet(cmd, "required-tags")
	opts.ExcludedTags = tagSet(cmd, "excluded-tags")
	return opts, nil
}

func parseLevel(s string) (selection.ConfidenceLevel, error) {
	switch strings.ToLower(s) {
	case "fast":
		return selection.Fast, nil
	case "medium":
		return selection.Medium, nil
	case "high":
		return selection.High, nil
	case "full":
		return selection.Full, nil
	default:
		return "", &errs.InvalidInput{What: fmt.Sprintf("unknown confidence level %q, must be one of: Fast, Medium, High, Full", s)}
	}
}

func categorySet(cmd *cobra.Command, flag string) (map[model.Category]struct{}, error) {
	value, _ := cmd.Flags().GetString(flag) //nolint:all
	names := output.ParseList(value)
	if len(names) == 0 {
		return nil, nil
	}
	cats, err := output.ParseCategories(names)
	if err != nil {
		return nil, &errs.InvalidInput{What: err.Error()}
	}
	set := make(map[model.Category]struct{}, len(cats))
	for _, c := range cats {
		set[c] = struct{}{}
	}
	return set, nil
}

func tagSet(cmd *cobra.Command, flag string) map[string]struct{} {
	value, _ := cmd.Flags().GetString(flag) //nolint:all
	tags := output.ParseList(value)
	if len(tags) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}

// renderPlan enriches the plan and writes it in the requested format.
func renderPlan(cmd *cobra.Command, eng *engine.Engine, plan model.ExecutionPlan, changes model.ChangeSet, warnings []sourceindex.ProjectWarning, start time.Time) error {
	format, _ := cmd.Flags().GetString("format")            //nolint:all
	projectRoot, _ := cmd.Flags().GetString("project-root") //nolint:all
	showCoverage, _ := cmd.Flags().GetBool("show-coverage") //nolint:all

	opts := output.NewDefaultOptions()
	opts.ProjectRoot = projectRoot
	opts.ShowCoverage = showCoverage
	opts.Version = Version

	handle := eng.Handle()
	enricher := output.NewEnricher(handle.Coverage, opts)
	enriched := enricher.EnrichPlan(plan, changes.AffectedMethods())
	summary := output.BuildSummary(plan, len(handle.Tests), len(warnings))

	warningStrings := make([]string, len(warnings))
	for i, w := range warnings {
		warningStrings[i] = fmt.Sprintf("project %s: %s", w.Project, strings.Join(w.Errors, "; "))
	}
	info := output.PlanInfo{
		ConfidenceLevel: plan.ConfidenceLevel,
		Version:         Version,
		Duration:        time.Since(start),
		Timestamp:       time.Now().UTC(),
		Warnings:        warningStrings,
	}

	switch strings.ToLower(format) {
	case "json":
		return output.NewJSONFormatter(opts).Format(plan, enriched, summary, info)
	case "csv":
		return output.NewCSVFormatter(opts).Format(enriched)
	case "sarif":
		return output.NewSARIFFormatter(opts).Format(plan, enriched, info)
	case "text", "":
		return output.NewTextFormatter(opts, newLogger(cmd)).Format(plan, enriched, summary)
	default:
		return &errs.InvalidInput{What: fmt.Sprintf("unknown format %q, must be one of: text, json, csv, sarif", format)}
	}
}

func init() {
	planCmd.Flags().String("solution", "solution.yaml", "Path to the YAML solution descriptor")
	planCmd.Flags().String("diff", "", "Unified diff file to resolve (\"-\" for stdin)")
	planCmd.Flags().String("project-root", ".", "Repository root for git-based diffs")
	planCmd.Flags().String("base", "", "Baseline git ref (auto-detected in CI when empty)")
	planCmd.Flags().String("head", "HEAD", "Head git ref")
	planCmd.Flags().String("level", "Medium", "Confidence level: Fast, Medium, High, Full")
	planCmd.Flags().String("format", "text", "Output format: text, json, csv, sarif")
	planCmd.Flags().String("history", "", "Path to the execution history database")
	planCmd.Flags().Bool("include-flaky", false, "Admit tests marked flaky")
	planCmd.Flags().Bool("show-coverage", false, "Show per-test covered methods in text output")
	planCmd.Flags().Int("max-tests", 0, "Override the level's test-count cap")
	planCmd.Flags().Duration("max-duration", 0, "Override the level's duration budget")
	planCmd.Flags().Float64("min-score", 0, "Override the level's score floor")
	planCmd.Flags().String("included-categories", "", "Comma-separated categories to keep")
	planCmd.Flags().String("excluded-categories", "", "Comma-separated categories to drop")
	planCmd.Flags().String("required-tags", "", "Comma-separated tags a test must carry")
	planCmd.Flags().String("excluded-tags", "", "Comma-separated tags that exclude a test")
	planCmd.Flags().Uint32("max-depth", 0, "Coverage BFS depth cap (default 5)")
	planCmd.Flags().Int("parallelism", 0, "Worker count for project parsing (default CPU count)")
	rootCmd.AddCommand(planCmd)
}
