// Package model holds the engine's core data model: the value types that
// SourceIndex, CoverageIndex, ChangeResolver, Scorer, Selector, and
// HistoryLog pass between each other. Every type here is a plain value or a
// slice/map of values — ownership of the underlying method facts stays with
// SourceIndex (see sourceindex.Index); these types never reach back into it.
package model

import (
	"time"

	"github.com/impactsel/engine/methodid"
)

// Framework identifies the test framework a TestRecord was attributed with.
type Framework string

const (
	FrameworkNUnit  Framework = "nunit"
	FrameworkXUnit  Framework = "xunit"
	FrameworkMSTest Framework = "mstest"
	FrameworkNone   Framework = "none"
)

// Category is the behavioral classification a pattern classifier assigns a
// TestRecord, per the engine's test-category taxonomy.
type Category string

const (
	CategoryUnit        Category = "Unit"
	CategoryIntegration Category = "Integration"
	CategoryAPI         Category = "API"
	CategoryDatabase    Category = "Database"
	CategoryUI          Category = "UI"
	CategoryEndToEnd    Category = "EndToEnd"
	CategoryPerformance Category = "Performance"
	CategorySecurity    Category = "Security"
)

// MethodRecord is everything SourceIndex knows about one declared method,
// keyed by its MethodID. The line range covers the full method body so
// ChangeResolver can test hunk overlap against it.
type MethodRecord struct {
	ID                 methodid.MethodID
	DisplayName        string
	DeclaringType       string
	SourcePath         string
	StartLine          int
	EndLine            int
	IsTest             bool
	Framework          Framework
	Attributes         map[string]struct{}
	FrameworkVersionTag string
}

// HasAttribute reports whether name is present in the record's attribute set
// (case-sensitive; names are stored as written at the use site with any
// "Attribute" suffix stripped, e.g. "Test").
func (m MethodRecord) HasAttribute(name string) bool {
	_, ok := m.Attributes[name]
	return ok
}

// TestRecord is a MethodRecord known to be a test, enriched with the fields
// the Scorer and Selector need. History is consulted through a HistoryLog
// collaborator by ID — a TestRecord never owns its own history entries.
type TestRecord struct {
	MethodRecord
	Category      Category
	Tags          map[string]struct{}
	AvgExecution  time.Duration
	IsFlaky       bool
	LastSelected  *time.Time
}

// HasTag reports whether tag is present in the test's tag set.
func (t TestRecord) HasTag(tag string) bool {
	_, ok := t.Tags[tag]
	return ok
}

// CoverageEntry records one discovered reach from a test to a production
// method, with the shortest known path and its decayed confidence.
// Invariants: Path[0] == Test, Path[len(Path)-1] == Production,
// 0 < Depth <= MAX_DEPTH, 0 <= Confidence <= 1.
type CoverageEntry struct {
	Test        methodid.MethodID
	Production  methodid.MethodID
	Path        []methodid.MethodID
	Depth       uint32
	Confidence  float64
}

// ChangeKind classifies how a file changed in a diff hunk.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "Added"
	ChangeModified ChangeKind = "Modified"
	ChangeDeleted  ChangeKind = "Deleted"
	ChangeRenamed  ChangeKind = "Renamed"
)

// LineRange is an inclusive [Start, End] line range, 1-indexed.
type LineRange struct {
	Start int
	End   int
}

// Overlaps reports whether r and other share at least one line.
func (r LineRange) Overlaps(other LineRange) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// CodeChange is one file-level hunk from a diff, with the MethodIDs and
// type names it was resolved to overlap.
type CodeChange struct {
	FilePath      string
	ChangeKind    ChangeKind
	LineRange     LineRange
	ChangedMethods map[methodid.MethodID]struct{}
	ChangedTypes   map[string]struct{}
}

// ChangeSet is a finite collection of CodeChanges with a content hash over
// the file+range tuples, used to detect "the same diff was resolved twice"
// without comparing full change slices.
type ChangeSet struct {
	Changes []CodeChange
	Hash    string
}

// AffectedMethods returns the union of every CodeChange's ChangedMethods.
func (cs ChangeSet) AffectedMethods() map[methodid.MethodID]struct{} {
	out := make(map[methodid.MethodID]struct{})
	for _, c := range cs.Changes {
		for id := range c.ChangedMethods {
			out[id] = struct{}{}
		}
	}
	return out
}

// ExecutionResult is one recorded outcome of running a test, the unit
// HistoryLog.Append consumes.
type ExecutionResult struct {
	TestID   methodid.MethodID
	Passed   bool
	Duration time.Duration
	At       time.Time
}

// ExecutionPlan is the Selector's output: an ordered, batched test list with
// the rationale behind it. Invariants: sum(test.AvgExecution) <=
// options.MaxDuration when set; len(Tests) <= options.MaxTests when set;
// every test appears exactly once; Batches partitions Tests.
type ExecutionPlan struct {
	Tests             []TestRecord
	Batches           [][]TestRecord
	EstimatedDuration time.Duration
	ConfidenceLevel   string
	Rationale         string
}
