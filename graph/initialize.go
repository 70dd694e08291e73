package graph

import (
	"context"
	"fmt"
	"sync"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// ParseWarning records a project file that failed to parse. Per the engine's
// failure semantics, a parse failure is non-fatal: the file contributes no
// nodes or edges and the caller is told why.
type ParseWarning struct {
	File   string
	Reason string
}

// ProgressSample is a pull-style progress update: Done out of Total files
// parsed so far in Phase. Consumers poll or channel-read these; the engine
// never blocks on a consumer reading them.
type ProgressSample struct {
	Phase string
	Done  int
	Total int
}

// Initialize parses every C# source file under directory into a single
// CodeGraph, parsing the files one at a time (see ParseFiles). Callers
// parsing a multi-project solution invoke it once per project directory, in
// parallel across projects, and merge the resulting graphs.
//
// Cancellation is checked at each file boundary; on cancellation Initialize
// returns the graph built from the files parsed so far together with
// ctx.Err(), and the remaining files are reported as "cancelled" warnings.
func Initialize(ctx context.Context, directory string, progress chan<- ProgressSample) (*CodeGraph, []ParseWarning, error) {
	files, err := getFiles(directory)
	if err != nil {
		return NewCodeGraph(), nil, fmt.Errorf("walking %s: %w", directory, err)
	}
	return ParseFiles(ctx, files, progress)
}

// ParseFiles parses an explicit list of C# source files into a single
// CodeGraph. Files are parsed sequentially, in list order, by a single
// worker; parallelism happens one level up, across projects. This is
// what sourceindex.Build calls per project, since a solution descriptor's
// project already names its source_files explicitly rather than a directory
// to walk.
func ParseFiles(ctx context.Context, files []string, progress chan<- ProgressSample) (*CodeGraph, []ParseWarning, error) {
	start := time.Now()
	codeGraph := NewCodeGraph()

	numWorkers := 1

	type fileResult struct {
		graph   *CodeGraph
		warning *ParseWarning
	}

	fileChan := make(chan string, len(files))
	resultChan := make(chan fileResult, len(files))
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		parser := sitter.NewParser()
		defer parser.Close()
		parser.SetLanguage(csharp.GetLanguage())

		for file := range fileChan {
			select {
			case <-ctx.Done():
				resultChan <- fileResult{warning: &ParseWarning{File: file, Reason: "cancelled"}}
				continue
			default:
			}

			sourceCode, err := readFile(file)
			if err != nil {
				resultChan <- fileResult{warning: &ParseWarning{File: file, Reason: err.Error()}}
				continue
			}

			tree, err := parser.ParseCtx(ctx, nil, sourceCode)
			if err != nil {
				resultChan <- fileResult{warning: &ParseWarning{File: file, Reason: err.Error()}}
				continue
			}

			localGraph := NewCodeGraph()
			buildGraphFromAST(tree.RootNode(), sourceCode, localGraph, file)
			tree.Close()
			resultChan <- fileResult{graph: localGraph}
		}
	}

	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go worker()
	}
	for _, f := range files {
		fileChan <- f
	}
	close(fileChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var warnings []ParseWarning
	done := 0
	for res := range resultChan {
		done++
		if progress != nil {
			select {
			case progress <- ProgressSample{Phase: "parse", Done: done, Total: len(files)}:
			default:
			}
		}
		if res.warning != nil {
			warnings = append(warnings, *res.warning)
			continue
		}
		for _, node := range res.graph.Nodes {
			codeGraph.AddNode(node)
		}
		for _, edge := range res.graph.Edges {
			codeGraph.AddEdge(edge.From, edge.To)
			codeGraph.ParentOf[edge.To.ID] = edge.From.ID
		}
	}

	Log(fmt.Sprintf("parsed %d files (%d warnings) in %s", len(files), len(warnings), time.Since(start)))

	if ctx.Err() != nil {
		return codeGraph, warnings, ctx.Err()
	}
	return codeGraph, warnings, nil
}
