// Package scoring implements the engine's composable scorers: pure,
// deterministic functions from (test, context) to a score in [0,1], combined
// into a weighted-mean composite verdict.
package scoring

import (
	"math"

	"github.com/impactsel/engine/coverageindex"
	"github.com/impactsel/engine/methodid"
	"github.com/impactsel/engine/model"
)

// HistoryProvider is the narrow view of a HistoryLog the HistoricalScorer
// needs — a separate interface so scoring never imports historylog directly
// and can be tested against a fake.
type HistoryProvider interface {
	// Stats reports the rolling pass rate and flakiness over the last
	// window executions of test. known is false when no history exists,
	// in which case the scorer falls back to the neutral 0.5.
	Stats(test methodid.MethodID, window int) (passRate float64, flaky bool, known bool)
}

// ScoreContext bundles everything a Scorer may consult for one test against
// one change set. AffectedMethods is the ChangeSet's resolved method union;
// MaxExecutionMS is the slowest AvgExecution among the candidate set being
// scored, the ExecutionTimeScorer's normalization ceiling.
type ScoreContext struct {
	Test            model.TestRecord
	AffectedMethods map[methodid.MethodID]struct{}
	Coverage        *coverageindex.Index
	History         HistoryProvider
	HistoryWindow   int
	MaxExecutionMS  float64
}

// Scorer is a pure, deterministic function from (test, context) to a score
// in [0,1], paired with the weight it contributes to a composite.
type Scorer interface {
	Score(ctx ScoreContext) (float64, error)
	Weight() float64
	Name() string
}

// CompositeScorer computes the weighted mean of its Scorers' outputs. A
// scorer that errors contributes a zero score rather than aborting the
// whole composite; the error is reported through onError and the run
// continues.
type CompositeScorer struct {
	scorers []Scorer
	onError func(scorer string, err error)
}

// NewComposite builds a CompositeScorer over scorers. onError, if non-nil,
// is called (for logging) whenever a scorer errors; may be nil.
func NewComposite(scorers []Scorer, onError func(scorer string, err error)) *CompositeScorer {
	return &CompositeScorer{scorers: scorers, onError: onError}
}

// Default returns the three mandatory scorers from the component design at
// their specified weights: Impact (1.0), Historical (0.6), ExecutionTime
// (0.3).
func Default() []Scorer {
	return []Scorer{
		&ImpactScorer{},
		&HistoricalScorer{},
		&ExecutionTimeScorer{},
	}
}

// Score returns the weighted mean of every scorer's output against ctx. A
// CompositeScorer with no scorers scores 0.
func (c *CompositeScorer) Score(ctx ScoreContext) float64 {
	if len(c.scorers) == 0 {
		return 0
	}
	var weightedSum, totalWeight float64
	for _, s := range c.scorers {
		score, err := s.Score(ctx)
		if err != nil {
			if c.onError != nil {
				c.onError(s.Name(), err)
			}
			score = 0
		}
		weightedSum += score * s.Weight()
		totalWeight += s.Weight()
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

// ImpactScorer scores a test by the highest coverage confidence it has
// against any affected method, 0 if it covers none of them. Weight 1.0.
type ImpactScorer struct{}

func (ImpactScorer) Name() string   { return "impact" }
func (ImpactScorer) Weight() float64 { return 1.0 }

func (ImpactScorer) Score(ctx ScoreContext) (float64, error) {
	if ctx.Coverage == nil || len(ctx.AffectedMethods) == 0 {
		return 0, nil
	}
	best := 0.0
	for _, production := range ctx.Coverage.MethodsFor(ctx.Test.ID) {
		if _, affected := ctx.AffectedMethods[production]; !affected {
			continue
		}
		for _, entry := range ctx.Coverage.TestsFor(production) {
			if entry.Test == ctx.Test.ID && entry.Confidence > best {
				best = entry.Confidence
			}
		}
	}
	return best, nil
}

// HistoricalScorer scores a test by its last-N pass rate and inverse
// flakiness: score = 0.7*pass_rate + 0.3*(1-flakiness). Unknown tests score
// the neutral 0.5. Weight 0.6.
type HistoricalScorer struct{}

func (HistoricalScorer) Name() string    { return "historical" }
func (HistoricalScorer) Weight() float64 { return 0.6 }

func (HistoricalScorer) Score(ctx ScoreContext) (float64, error) {
	if ctx.History == nil {
		return 0.5, nil
	}
	window := ctx.HistoryWindow
	if window == 0 {
		window = 30
	}
	passRate, flaky, known := ctx.History.Stats(ctx.Test.ID, window)
	if !known {
		return 0.5, nil
	}
	flakiness := 0.0
	if flaky {
		flakiness = 1.0
	}
	return 0.7*passRate + 0.3*(1-flakiness), nil
}

// ExecutionTimeScorer favours faster tests as a tiebreaker:
// score = 1 - clamp(log10(ms+1)/log10(max_ms+1), 0, 1). Weight 0.3.
type ExecutionTimeScorer struct{}

func (ExecutionTimeScorer) Name() string    { return "execution_time" }
func (ExecutionTimeScorer) Weight() float64 { return 0.3 }

func (ExecutionTimeScorer) Score(ctx ScoreContext) (float64, error) {
	maxMS := ctx.MaxExecutionMS
	if maxMS <= 0 {
		return 1, nil
	}
	ms := float64(ctx.Test.AvgExecution.Milliseconds())
	ratio := math.Log10(ms+1) / math.Log10(maxMS+1)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return 1 - ratio, nil
}
