package output

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"

	"github.com/impactsel/engine/methodid"
	"github.com/impactsel/engine/model"
)

// CoverageSource is the narrow view of the coverage index the enricher
// needs: which tests reach a given production method.
type CoverageSource interface {
	TestsFor(production methodid.MethodID) []model.CoverageEntry
}

// CoveredMethod records one affected production method a selected test
// covers, with the confidence and path behind the match.
type CoveredMethod struct {
	ID         methodid.MethodID
	Confidence float64
	Depth      uint32
	Path       []methodid.MethodID
}

// SnippetLine is one line of source context.
type SnippetLine struct {
	Number      int
	Content     string
	IsHighlight bool
}

// CodeSnippet is the source context around a test declaration.
type CodeSnippet struct {
	StartLine     int
	HighlightLine int
	Lines         []SnippetLine
}

// EnrichedTest is a selected test with the context formatters render: its
// batch assignment, a repository-relative path, source context, and the
// affected methods it covers (the per-test selection rationale).
type EnrichedTest struct {
	Test    model.TestRecord
	Batch   int
	RelPath string
	Snippet CodeSnippet
	Covered []CoveredMethod
}

// Enricher turns an ExecutionPlan into EnrichedTests by joining it against
// the coverage index and reading source context from disk (cached per file).
type Enricher struct {
	coverage  CoverageSource
	options   *OutputOptions
	fileCache map[string][]string
}

// NewEnricher creates an enricher over coverage with the given options.
func NewEnricher(coverage CoverageSource, opts *OutputOptions) *Enricher {
	if opts == nil {
		opts = NewDefaultOptions()
	}
	return &Enricher{
		coverage:  coverage,
		options:   opts,
		fileCache: make(map[string][]string),
	}
}

// EnrichPlan enriches every test in plan. affected is the change set's
// resolved method union; a test's Covered list holds the affected methods it
// reaches, most confident first.
func (e *Enricher) EnrichPlan(plan model.ExecutionPlan, affected map[methodid.MethodID]struct{}) []*EnrichedTest {
	batchOf := make(map[methodid.MethodID]int)
	for i, batch := range plan.Batches {
		for _, t := range batch {
			batchOf[t.ID] = i
		}
	}

	enriched := make([]*EnrichedTest, 0, len(plan.Tests))
	for _, t := range plan.Tests {
		et := &EnrichedTest{
			Test:    t,
			Batch:   batchOf[t.ID],
			RelPath: e.relPath(t.SourcePath),
			Covered: e.coveredMethods(t.ID, affected),
		}
		if snippet, err := e.extractSnippet(t.SourcePath, t.StartLine); err == nil {
			et.Snippet = snippet
		}
		enriched = append(enriched, et)
	}
	return enriched
}

// coveredMethods returns the affected methods test reaches, sorted by
// descending confidence then MethodID for determinism.
func (e *Enricher) coveredMethods(test methodid.MethodID, affected map[methodid.MethodID]struct{}) []CoveredMethod {
	if e.coverage == nil {
		return nil
	}
	ids := make([]methodid.MethodID, 0, len(affected))
	for id := range affected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var covered []CoveredMethod
	for _, production := range ids {
		for _, entry := range e.coverage.TestsFor(production) {
			if entry.Test != test {
				continue
			}
			covered = append(covered, CoveredMethod{
				ID:         production,
				Confidence: entry.Confidence,
				Depth:      entry.Depth,
				Path:       entry.Path,
			})
			break
		}
	}
	sort.SliceStable(covered, func(i, j int) bool {
		if covered[i].Confidence != covered[j].Confidence {
			return covered[i].Confidence > covered[j].Confidence
		}
		return covered[i].ID < covered[j].ID
	})
	return covered
}

func (e *Enricher) relPath(path string) string {
	if e.options.ProjectRoot == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(e.options.ProjectRoot, path)
	if err != nil {
		return path
	}
	return rel
}

// extractSnippet reads source context around line from path.
func (e *Enricher) extractSnippet(path string, line int) (CodeSnippet, error) {
	snippet := CodeSnippet{HighlightLine: line}
	if path == "" || line <= 0 {
		return snippet, nil
	}

	lines, err := e.readFileLines(path)
	if err != nil {
		return snippet, err
	}

	contextLines := e.options.ContextLines
	if contextLines == 0 {
		contextLines = 3
	}

	startLine := line - contextLines
	if startLine < 1 {
		startLine = 1
	}
	endLine := line + contextLines
	if endLine > len(lines) {
		endLine = len(lines)
	}

	snippet.StartLine = startLine
	for i := startLine; i <= endLine; i++ {
		snippet.Lines = append(snippet.Lines, SnippetLine{
			Number:      i,
			Content:     lines[i-1],
			IsHighlight: i == line,
		})
	}
	return snippet, nil
}

// readFileLines reads and caches file contents.
func (e *Enricher) readFileLines(filePath string) ([]string, error) {
	if lines, ok := e.fileCache[filePath]; ok {
		return lines, nil
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	e.fileCache[filePath] = lines
	return lines, nil
}
