// Package sourceindex parses a C# solution into the engine's MethodRecord
// and CallGraph data model in passes: index declarations, extract call
// sites, resolve targets, add edges. Projects parse independently and merge
// into one solution-wide index.
package sourceindex

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/impactsel/engine/callgraph"
	"github.com/impactsel/engine/graph"
	"github.com/impactsel/engine/methodid"
	"github.com/impactsel/engine/model"
	"github.com/impactsel/engine/testregistry"
)

// ProjectDescriptor is one project entry from a solution descriptor.
type ProjectDescriptor struct {
	Path         string
	FrameworkTag string
	SourceFiles  []string
	References   []string
}

// SolutionDescriptor lists the projects SourceIndex parses into one Index.
type SolutionDescriptor struct {
	Projects []ProjectDescriptor
}

// ProjectWarning reports that a project produced parse errors. Per the
// engine's failure semantics, a warning is non-fatal: the project's failing
// files contribute no nodes or edges and the build continues.
type ProjectWarning struct {
	Project string
	Errors  []string
}

// Index is SourceIndex's immutable build output: every MethodRecord, keyed
// by MethodID and by source file for ChangeResolver's line-range lookups,
// plus the resolved CallGraph. Immutable after Build returns — readers need
// no synchronization.
type Index struct {
	records map[methodid.MethodID]model.MethodRecord
	byFile  map[string][]model.MethodRecord
	graph   *callgraph.CallGraph
}

// Record looks up a single MethodRecord by ID.
func (idx *Index) Record(id methodid.MethodID) (model.MethodRecord, bool) {
	rec, ok := idx.records[id]
	return rec, ok
}

// RecordsInFile returns every MethodRecord declared in path, sorted by
// StartLine — the order ChangeResolver's overlap scan depends on.
func (idx *Index) RecordsInFile(path string) []model.MethodRecord {
	return idx.byFile[path]
}

// AllRecords returns every known MethodRecord, in MethodID order.
func (idx *Index) AllRecords() []model.MethodRecord {
	ids := make([]methodid.MethodID, 0, len(idx.records))
	for id := range idx.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]model.MethodRecord, len(ids))
	for i, id := range ids {
		out[i] = idx.records[id]
	}
	return out
}

// Graph returns the resolved CallGraph.
func (idx *Index) Graph() *callgraph.CallGraph {
	return idx.graph
}

// Build parses every project in solution and assembles one Index. Projects
// parse in parallel, bounded by maxParallelism (CPU count if <= 0); edges
// from every project's call sites are merged into a single CallGraph under
// one writer, matching the engine's "merges per-project sub-graphs under a
// single writer; no concurrent mutation" assembly rule. progress, if
// non-nil, is called from the merging goroutine after each project
// completes.
func Build(ctx context.Context, solution SolutionDescriptor, maxParallelism int, progress func(done, total int)) (*Index, []ProjectWarning, error) {
	if maxParallelism <= 0 {
		maxParallelism = runtime.NumCPU()
	}
	if maxParallelism < 1 {
		maxParallelism = 1
	}
	if maxParallelism > len(solution.Projects) && len(solution.Projects) > 0 {
		maxParallelism = len(solution.Projects)
	}

	type projectResult struct {
		project  ProjectDescriptor
		codeGraph *graph.CodeGraph
		warning  *ProjectWarning
	}

	jobs := make(chan ProjectDescriptor, len(solution.Projects))
	results := make(chan projectResult, len(solution.Projects))
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for proj := range jobs {
			cg, warnings, err := graph.ParseFiles(ctx, proj.SourceFiles, nil)
			var pw *ProjectWarning
			if len(warnings) > 0 || err != nil {
				pw = &ProjectWarning{Project: proj.Path}
				for _, w := range warnings {
					pw.Errors = append(pw.Errors, fmt.Sprintf("%s: %s", w.File, w.Reason))
				}
				if err != nil {
					pw.Errors = append(pw.Errors, err.Error())
				}
			}
			results <- projectResult{project: proj, codeGraph: cg, warning: pw}
		}
	}

	wg.Add(maxParallelism)
	for i := 0; i < maxParallelism; i++ {
		go worker()
	}
	for _, p := range solution.Projects {
		jobs <- p
	}
	close(jobs)
	go func() {
		wg.Wait()
		close(results)
	}()

	idx := &Index{
		records: make(map[methodid.MethodID]model.MethodRecord),
		byFile:  make(map[string][]model.MethodRecord),
		graph:   callgraph.New(),
	}
	hierarchy := newTypeHierarchy()
	var warnings []ProjectWarning
	done := 0
	for res := range results {
		done++
		if progress != nil {
			progress(done, len(solution.Projects))
		}
		if res.warning != nil {
			warnings = append(warnings, *res.warning)
		}
		if res.codeGraph != nil {
			indexProject(idx, res.codeGraph, res.project.FrameworkTag, hierarchy)
		}
	}
	expandOverrideEdges(idx.graph, hierarchy)

	for file, recs := range idx.byFile {
		sort.Slice(recs, func(i, j int) bool { return recs[i].StartLine < recs[j].StartLine })
		idx.byFile[file] = recs
	}

	if ctx.Err() != nil {
		return idx, warnings, ctx.Err()
	}
	if err := idx.graph.Validate(); err != nil {
		return idx, warnings, fmt.Errorf("sourceindex: %w", err)
	}
	return idx, warnings, nil
}

var methodLikeTypes = map[string]bool{
	"method_declaration":        true,
	"constructor_declaration":   true,
	"local_function_statement":  true,
	"lambda_expression":         true,
}

var typeLikeTypes = map[string]bool{
	"class_declaration":     true,
	"struct_declaration":    true,
	"interface_declaration": true,
	"record_declaration":    true,
}

// indexProject runs the per-project passes over one CodeGraph: index
// declarations into MethodRecords and CallGraph vertices, then resolve each
// invocation node to its callee MethodIDs and add the edges.
func indexProject(idx *Index, cg *graph.CodeGraph, frameworkTag string, hierarchy *typeHierarchy) {
	nodeToID := make(map[string]methodid.MethodID, len(cg.Nodes))
	byName := make(map[string][]methodid.MethodID)

	for _, n := range cg.Nodes {
		if typeLikeTypes[n.Type] {
			hierarchy.addType(n.Name, n.BaseTypes)
			continue
		}
		if !methodLikeTypes[n.Type] {
			continue
		}
		id := methodIDFor(n)
		nodeToID[n.ID] = id
		idx.graph.AddVertex(id)
		byName[n.Name] = append(byName[n.Name], id)

		if n.Type == "lambda_expression" || n.Type == "local_function_statement" {
			continue
		}
		if n.Type == "method_declaration" {
			hierarchy.addMethod(n.DeclaringType, n.Name, id)
		}

		attrs := make(map[string]struct{}, len(n.Attributes))
		for _, a := range n.Attributes {
			attrs[a] = struct{}{}
		}
		rec := model.MethodRecord{
			ID:                  id,
			DisplayName:         n.Name,
			DeclaringType:       n.Namespace + "." + n.DeclaringType,
			SourcePath:          n.File,
			StartLine:           int(n.LineNumber),
			EndLine:             endLine(n),
			Attributes:          attrs,
			FrameworkVersionTag: frameworkTag,
		}
		names := make([]string, 0, len(attrs))
		for a := range attrs {
			names = append(names, a)
		}
		rec.IsTest = testregistry.IsTestMethod(names)
		if rec.IsTest {
			rec.Framework = testregistry.FrameworkFor(names)
		}
		idx.records[id] = rec
		idx.byFile[n.File] = append(idx.byFile[n.File], rec)
	}

	for _, n := range cg.Nodes {
		if n.Type != "invocation_expression" {
			continue
		}
		callerID, ok := findEnclosingMethodID(cg, nodeToID, n.ID)
		if !ok {
			continue
		}
		callees := resolveCallTarget(n, byName, callerID)
		site := callgraph.CallSite{
			Target: n.CallTargetName,
			File:   n.File,
			Line:   int(n.LineNumber),
		}
		if len(callees) > 0 {
			for _, calleeID := range callees {
				idx.graph.AddEdge(callerID, calleeID)
			}
			site.Resolved = true
			site.TargetID = callees[0]
		} else {
			site.FailureReason = "unresolved_invocation"
		}
		idx.graph.AddCallSite(callerID, site)
	}

	// Lambdas and local functions are themselves call-graph vertices reached
	// by containment from their enclosing method (the engine's "emit u → λ_n"
	// rule); walk CodeGraph edges once more to wire those edges.
	for _, e := range cg.Edges {
		if e.To.Type != "lambda_expression" && e.To.Type != "local_function_statement" {
			continue
		}
		fromID, fromOK := nodeToID[e.From.ID]
		toID, toOK := nodeToID[e.To.ID]
		if fromOK && toOK {
			idx.graph.AddEdge(fromID, toID)
		}
	}
}

func endLine(n *graph.Node) int {
	if n.EndLineNumber >= n.LineNumber {
		return int(n.EndLineNumber)
	}
	return int(n.LineNumber)
}

func methodIDFor(n *graph.Node) methodid.MethodID {
	if n.Type == "lambda_expression" {
		return methodid.MethodID(n.Namespace + "." + n.DeclaringType + "." + n.Name + "(" + joinTypes(n.ParamTypes) + ")")
	}
	return methodid.New(n.Namespace, n.DeclaringType, n.Name, n.TypeParams, n.ParamTypes)
}

func joinTypes(types []string) string {
	out := ""
	for i, t := range types {
		if i > 0 {
			out += ","
		}
		out += t
	}
	return out
}

// findEnclosingMethodID walks ParentOf from a node until it reaches a
// method-like ancestor already indexed into nodeToID.
func findEnclosingMethodID(cg *graph.CodeGraph, nodeToID map[string]methodid.MethodID, nodeID string) (methodid.MethodID, bool) {
	current := nodeID
	for {
		parentID, ok := cg.ParentOf[current]
		if !ok {
			return "", false
		}
		if id, ok := nodeToID[parentID]; ok {
			if parent := cg.Nodes[parentID]; parent != nil && methodLikeTypes[parent.Type] {
				return id, true
			}
		}
		current = parentID
	}
}

// resolveCallTarget resolves an invocation node to its callee MethodIDs
// using lexical scope only. A call on the caller's own declaring type wins
// outright. A receiver call (x.M()) with no same-type match keeps every
// candidate sharing the simple name: the receiver's static type is unknown
// without type inference, so the engine over-approximates the virtual
// dispatch rather than guessing one target. A bare call with no same-type
// match takes the lexicographically first candidate only, keeping the
// result deterministic per the "bit-identical given identical source"
// invariant. No runtime type analysis is performed.
func resolveCallTarget(call *graph.Node, byName map[string][]methodid.MethodID, caller methodid.MethodID) []methodid.MethodID {
	candidates := byName[call.CallTargetName]
	if len(candidates) == 0 {
		return nil
	}
	callerType := methodid.DeclaringType(caller)
	var sameType []methodid.MethodID
	for _, c := range candidates {
		if methodid.DeclaringType(c) == callerType {
			sameType = append(sameType, c)
		}
	}
	if len(sameType) > 0 {
		sort.Slice(sameType, func(i, j int) bool { return sameType[i] < sameType[j] })
		return sameType
	}
	pool := append([]methodid.MethodID{}, candidates...)
	sort.Slice(pool, func(i, j int) bool { return pool[i] < pool[j] })
	if call.CallObjectName == "" {
		return pool[:1]
	}
	return pool
}
