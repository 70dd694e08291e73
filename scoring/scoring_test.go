package scoring

import (
	"errors"
	"testing"
	"time"

	"github.com/impactsel/engine/callgraph"
	"github.com/impactsel/engine/coverageindex"
	"github.com/impactsel/engine/methodid"
	"github.com/impactsel/engine/model"
)

func buildCoverage(t *testing.T, testID, prodID methodid.MethodID) *coverageindex.Index {
	t.Helper()
	cg := callgraph.New()
	cg.AddEdge(testID, prodID)
	return coverageindex.Build(cg, []model.MethodRecord{{ID: testID, IsTest: true}}, coverageindex.DefaultConfig())
}

func TestImpactScorerCoversAffected(t *testing.T) {
	testID := methodid.MethodID("Tests.T.AddT()")
	prodID := methodid.MethodID("Calc.C.Add(Int32,Int32)")
	cov := buildCoverage(t, testID, prodID)

	ctx := ScoreContext{
		Test:            model.TestRecord{MethodRecord: model.MethodRecord{ID: testID}},
		AffectedMethods: map[methodid.MethodID]struct{}{prodID: {}},
		Coverage:        cov,
	}
	score, err := (ImpactScorer{}).Score(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score < 0.84 || score > 0.86 {
		t.Fatalf("expected ~0.85, got %v", score)
	}
}

func TestImpactScorerZeroWhenUnaffected(t *testing.T) {
	testID := methodid.MethodID("Tests.T.AddT()")
	prodID := methodid.MethodID("Calc.C.Add(Int32,Int32)")
	cov := buildCoverage(t, testID, prodID)

	ctx := ScoreContext{
		Test:            model.TestRecord{MethodRecord: model.MethodRecord{ID: testID}},
		AffectedMethods: map[methodid.MethodID]struct{}{"Other.Other.Other()": {}},
		Coverage:        cov,
	}
	score, _ := (ImpactScorer{}).Score(ctx)
	if score != 0 {
		t.Fatalf("expected 0, got %v", score)
	}
}

type fakeHistory struct {
	passRate float64
	flaky    bool
	known    bool
}

func (f fakeHistory) Stats(methodid.MethodID, int) (float64, bool, bool) {
	return f.passRate, f.flaky, f.known
}

func TestHistoricalScorerUnknownIsNeutral(t *testing.T) {
	ctx := ScoreContext{History: fakeHistory{known: false}}
	score, _ := (HistoricalScorer{}).Score(ctx)
	if score != 0.5 {
		t.Fatalf("expected neutral 0.5, got %v", score)
	}
}

func TestHistoricalScorerFormula(t *testing.T) {
	ctx := ScoreContext{History: fakeHistory{passRate: 1.0, flaky: false, known: true}}
	score, _ := (HistoricalScorer{}).Score(ctx)
	if score != 1.0 {
		t.Fatalf("expected 1.0 for perfect non-flaky history, got %v", score)
	}

	ctx2 := ScoreContext{History: fakeHistory{passRate: 0, flaky: true, known: true}}
	score2, _ := (HistoricalScorer{}).Score(ctx2)
	if score2 != 0 {
		t.Fatalf("expected 0 for all-failing flaky history, got %v", score2)
	}
}

func TestExecutionTimeScorerFavoursFaster(t *testing.T) {
	fast := ScoreContext{Test: model.TestRecord{AvgExecution: 10 * time.Millisecond}, MaxExecutionMS: 10000}
	slow := ScoreContext{Test: model.TestRecord{AvgExecution: 9000 * time.Millisecond}, MaxExecutionMS: 10000}

	fastScore, _ := (ExecutionTimeScorer{}).Score(fast)
	slowScore, _ := (ExecutionTimeScorer{}).Score(slow)
	if fastScore <= slowScore {
		t.Fatalf("expected faster test to score higher: fast=%v slow=%v", fastScore, slowScore)
	}
}

type erroringScorer struct{}

func (erroringScorer) Name() string    { return "erroring" }
func (erroringScorer) Weight() float64 { return 1.0 }
func (erroringScorer) Score(ScoreContext) (float64, error) {
	return 0.9, errors.New("boom")
}

func TestCompositeTreatsErrorAsZero(t *testing.T) {
	var loggedName string
	composite := NewComposite([]Scorer{erroringScorer{}}, func(name string, err error) { loggedName = name })
	score := composite.Score(ScoreContext{})
	if score != 0 {
		t.Fatalf("expected erroring scorer to contribute 0, got %v", score)
	}
	if loggedName != "erroring" {
		t.Fatalf("expected onError to be called with scorer name, got %q", loggedName)
	}
}

func TestCompositeWeightedMean(t *testing.T) {
	composite := NewComposite(Default(), nil)
	ctx := ScoreContext{
		Test:           model.TestRecord{AvgExecution: time.Millisecond},
		MaxExecutionMS: 1000,
		History:        fakeHistory{known: false},
	}
	score := composite.Score(ctx)
	if score <= 0 || score > 1 {
		t.Fatalf("expected score in (0,1], got %v", score)
	}
}
