// Package engine is the stable facade over the analysis pipeline:
// BuildIndex, GetTestsForMethod, ResolveChanges, Plan, RecordResults.
// SourceIndex, CallGraph, TestRegistry, and CoverageIndex are immutable
// once built and held behind one atomically-swapped *IndexHandle — build
// once, read many; a rebuild swaps the pointer rather than mutating.
package engine

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/impactsel/engine/changeimpact"
	"github.com/impactsel/engine/coverageindex"
	"github.com/impactsel/engine/diff"
	"github.com/impactsel/engine/errs"
	"github.com/impactsel/engine/historylog"
	"github.com/impactsel/engine/methodid"
	"github.com/impactsel/engine/model"
	"github.com/impactsel/engine/scoring"
	"github.com/impactsel/engine/selection"
	"github.com/impactsel/engine/sourceindex"
	"github.com/impactsel/engine/testregistry"
)

// Options configures a Build: the BFS/confidence tunables CoverageIndex
// uses, worker bounds, and the history window Scorers default to.
type Options struct {
	MaxDepth         uint32
	DecayPerHop      float64
	FrameworkPenalty float64
	HistoryWindow    int
	MaxParallelism   int

	// Progress, if non-nil, receives (phase, done, total) samples during
	// BuildIndex. Called from the build goroutine; keep it fast.
	Progress func(phase string, done, total int)
}

// DefaultOptions matches the documented defaults.
func DefaultOptions() Options {
	return Options{MaxDepth: 5, DecayPerHop: 0.15, FrameworkPenalty: 0.1, HistoryWindow: 30}
}

// IndexHandle is one immutable build's worth of SourceIndex, CallGraph (via
// the SourceIndex), TestRegistry classification, and CoverageIndex. Readers
// need no synchronization; a rebuild produces a new IndexHandle rather than
// mutating this one.
type IndexHandle struct {
	Source   *sourceindex.Index
	Coverage *coverageindex.Index
	Tests    []model.TestRecord
	Warnings []sourceindex.ProjectWarning
	Options  Options
}

// Engine holds the current IndexHandle behind an atomic pointer and a
// History collaborator. Safe for concurrent use: BuildIndex swaps the
// pointer atomically; every other method reads a stable snapshot.
type Engine struct {
	handle  atomic.Pointer[IndexHandle]
	history *historylog.Log
	mu      sync.Mutex // serializes BuildIndex calls; reads are lock-free
}

// New builds an Engine backed by history (may be nil: the HistoricalScorer
// then always returns the neutral 0.5).
func New(history *historylog.Log) *Engine {
	return &Engine{history: history}
}

// BuildIndex parses solution and assembles a new IndexHandle, replacing the
// current one atomically. Returns the handle (per-project warnings are in
// handle.Warnings) and an error only for InvalidInput, Cancelled or Internal
// failures — ParseFailure warnings never abort the build.
func (e *Engine) BuildIndex(ctx context.Context, solution sourceindex.SolutionDescriptor, opts Options) (*IndexHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(solution.Projects) == 0 {
		return nil, &errs.InvalidInput{What: "solution descriptor has no projects"}
	}
	opts = mergeDefaults(opts)

	var parseProgress func(done, total int)
	if opts.Progress != nil {
		parseProgress = func(done, total int) { opts.Progress("parse", done, total) }
	}
	src, warnings, err := sourceindex.Build(ctx, solution, opts.MaxParallelism, parseProgress)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &errs.Cancelled{Phase: "sourceindex.Build"}
		}
		return nil, &errs.Internal{Reason: err.Error()}
	}

	tests := classifyTests(src)
	if opts.Progress != nil {
		opts.Progress("coverage", 0, len(tests))
	}
	cov := coverageindex.Build(src.Graph(), recordsOf(tests), coverageindex.Config{
		MaxDepth:         opts.MaxDepth,
		DecayPerHop:      opts.DecayPerHop,
		FrameworkPenalty: opts.FrameworkPenalty,
	})
	if opts.Progress != nil {
		opts.Progress("coverage", len(tests), len(tests))
	}

	handle := &IndexHandle{Source: src, Coverage: cov, Tests: tests, Warnings: warnings, Options: opts}
	e.handle.Store(handle)
	return handle, nil
}

func mergeDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.MaxDepth == 0 {
		opts.MaxDepth = def.MaxDepth
	}
	if opts.DecayPerHop == 0 {
		opts.DecayPerHop = def.DecayPerHop
	}
	if opts.FrameworkPenalty == 0 {
		opts.FrameworkPenalty = def.FrameworkPenalty
	}
	if opts.HistoryWindow == 0 {
		opts.HistoryWindow = def.HistoryWindow
	}
	return opts
}

// classifyTests assembles model.TestRecord for every test-attributed
// MethodRecord in src, assigning Category via testregistry's pattern
// classifier. AvgExecution defaults to zero until a HistoryLog provides a
// rolling average (see Engine.Plan, which backfills it from history before
// scoring).
func classifyTests(src *sourceindex.Index) []model.TestRecord {
	var out []model.TestRecord
	for _, rec := range src.AllRecords() {
		if !rec.IsTest {
			continue
		}
		out = append(out, model.TestRecord{
			MethodRecord: rec,
			Category:     testregistry.ClassifyCategory(rec.DeclaringType, nil),
			Tags:         map[string]struct{}{},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func recordsOf(tests []model.TestRecord) []model.MethodRecord {
	out := make([]model.MethodRecord, len(tests))
	for i, t := range tests {
		out[i] = t.MethodRecord
	}
	return out
}

// GetTestsForMethod returns the CoverageEntries reaching production, sorted
// by descending confidence.
func (e *Engine) GetTestsForMethod(production methodid.MethodID) ([]model.CoverageEntry, error) {
	h := e.handle.Load()
	if h == nil {
		return nil, &errs.InvalidInput{What: "no index built yet"}
	}
	return h.Coverage.TestsFor(production), nil
}

// ResolveChanges maps a diff's hunks to a ChangeSet using the current
// IndexHandle's SourceIndex.
func (e *Engine) ResolveChanges(hunks []diff.Hunk) (model.ChangeSet, error) {
	h := e.handle.Load()
	if h == nil {
		return model.ChangeSet{}, &errs.InvalidInput{What: "no index built yet"}
	}
	resolver := changeimpact.New(h.Source)
	return resolver.Resolve(hunks), nil
}

// Plan scores every test against changes and builds a bounded ExecutionPlan
// under opts. When changes has no affected methods, returns an empty plan
// with a non-empty rationale explaining why.
func (e *Engine) Plan(changes model.ChangeSet, opts selection.Options) (model.ExecutionPlan, error) {
	h := e.handle.Load()
	if h == nil {
		return model.ExecutionPlan{}, &errs.InvalidInput{What: "no index built yet"}
	}

	affected := changes.AffectedMethods()
	if len(affected) == 0 {
		return finishEmptyPlan(opts, "no affected methods"), nil
	}

	window := h.Options.HistoryWindow
	if window == 0 {
		window = 30
	}

	tests := backfillAvgExecution(h.Tests, e.history, window)

	maxMS := 0.0
	for _, t := range tests {
		if ms := float64(t.AvgExecution.Milliseconds()); ms > maxMS {
			maxMS = ms
		}
	}

	var history scoring.HistoryProvider
	if e.history != nil {
		history = e.history
	}

	// Scoring is pure per candidate, so it shards freely across workers;
	// results land at their candidate's index, keeping the order (and the
	// plan) deterministic regardless of worker interleaving.
	composite := scoring.NewComposite(scoring.Default(), nil)
	candidates := make([]selection.Candidate, len(tests))
	workers := opts.MaxParallelism
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(tests) {
		workers = len(tests)
	}
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	jobs := make(chan int, len(tests))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				sctx := scoring.ScoreContext{
					Test:            tests[i],
					AffectedMethods: affected,
					Coverage:        h.Coverage,
					History:         history,
					HistoryWindow:   window,
					MaxExecutionMS:  maxMS,
				}
				candidates[i] = selection.Candidate{Test: tests[i], Score: composite.Score(sctx)}
			}
		}()
	}
	for i := range tests {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	plan := selection.Select(candidates, opts)
	return plan, nil
}

func finishEmptyPlan(opts selection.Options, rationale string) model.ExecutionPlan {
	return model.ExecutionPlan{
		Tests:           nil,
		Batches:         nil,
		ConfidenceLevel: string(opts.Level),
		Rationale:       rationale,
	}
}

// backfillAvgExecution copies tests, filling AvgExecution from history's
// rolling average when the record itself carries a zero duration (a fresh
// build has no timing data of its own yet).
func backfillAvgExecution(tests []model.TestRecord, history *historylog.Log, window int) []model.TestRecord {
	out := make([]model.TestRecord, len(tests))
	copy(out, tests)
	if history == nil {
		return out
	}
	for i, t := range out {
		if t.AvgExecution > 0 {
			continue
		}
		if avg, known, err := history.AvgDuration(t.ID, window); err == nil && known {
			out[i].AvgExecution = avg
		}
	}
	return out
}

// RecordResults appends results to the Engine's HistoryLog. A no-op
// (returns nil) when the Engine has no HistoryLog configured.
func (e *Engine) RecordResults(results []model.ExecutionResult) error {
	if e.history == nil {
		return nil
	}
	return e.history.Append(results)
}

// Handle returns the current IndexHandle, or nil if BuildIndex has never
// succeeded.
func (e *Engine) Handle() *IndexHandle { return e.handle.Load() }
