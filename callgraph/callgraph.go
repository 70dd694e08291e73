// Package callgraph holds the directed graph of method-invocation edges
// SourceIndex builds and CoverageIndex traverses, keyed by MethodID, with
// materialized forward and reverse adjacency and an explicit Validate
// invariant check.
package callgraph

import (
	"fmt"
	"sort"

	"github.com/impactsel/engine/methodid"
)

// CallSite is one resolved (or unresolved) invocation site inside a
// caller, kept for diagnostics: unresolved sites carry the reason the edge
// was dropped.
type CallSite struct {
	Target        string
	File          string
	Line          int
	Resolved      bool
	TargetID      methodid.MethodID
	FailureReason string
}

// CallGraph is a directed graph G = (V, E) where V is a set of MethodIDs and
// E is the set of resolved caller-to-callee edges. Immutable once Build
// returns; rebuilds produce a new CallGraph (see engine.IndexHandle).
type CallGraph struct {
	vertices map[methodid.MethodID]struct{}
	succ     map[methodid.MethodID][]methodid.MethodID
	pred     map[methodid.MethodID][]methodid.MethodID
	sites    map[methodid.MethodID][]CallSite
}

// New returns an empty, ready-to-populate CallGraph.
func New() *CallGraph {
	return &CallGraph{
		vertices: make(map[methodid.MethodID]struct{}),
		succ:     make(map[methodid.MethodID][]methodid.MethodID),
		pred:     make(map[methodid.MethodID][]methodid.MethodID),
		sites:    make(map[methodid.MethodID][]CallSite),
	}
}

// AddVertex registers id as a known method even if it has no edges yet
// (every declared method is a vertex, called or not).
func (g *CallGraph) AddVertex(id methodid.MethodID) {
	g.vertices[id] = struct{}{}
}

// AddEdge adds a directed edge caller → callee, registering both endpoints
// as vertices. Duplicate edges are not re-added; self-loops (recursion) are
// permitted per the data model invariant.
func (g *CallGraph) AddEdge(caller, callee methodid.MethodID) {
	g.AddVertex(caller)
	g.AddVertex(callee)
	if !containsID(g.succ[caller], callee) {
		g.succ[caller] = append(g.succ[caller], callee)
	}
	if !containsID(g.pred[callee], caller) {
		g.pred[callee] = append(g.pred[callee], caller)
	}
}

// AddCallSite records a call site under caller, whether or not it resolved.
func (g *CallGraph) AddCallSite(caller methodid.MethodID, site CallSite) {
	g.sites[caller] = append(g.sites[caller], site)
}

// Succ returns the methods caller directly invokes, in edge-insertion order.
func (g *CallGraph) Succ(caller methodid.MethodID) []methodid.MethodID {
	return g.succ[caller]
}

// Pred returns the methods that directly invoke callee, in edge-insertion order.
func (g *CallGraph) Pred(callee methodid.MethodID) []methodid.MethodID {
	return g.pred[callee]
}

// CallSites returns every recorded call site within caller.
func (g *CallGraph) CallSites(caller methodid.MethodID) []CallSite {
	return g.sites[caller]
}

// Vertices returns every known MethodID, sorted for deterministic iteration.
func (g *CallGraph) Vertices() []methodid.MethodID {
	out := make([]methodid.MethodID, 0, len(g.vertices))
	for id := range g.vertices {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Has reports whether id is a known vertex.
func (g *CallGraph) Has(id methodid.MethodID) bool {
	_, ok := g.vertices[id]
	return ok
}

// Validate checks the data model's CallGraph invariant: every edge endpoint
// is in V. It returns the first violation found, or nil if the graph is
// consistent. Called after SourceIndex.Build merges per-project sub-graphs.
func (g *CallGraph) Validate() error {
	for caller, callees := range g.succ {
		if !g.Has(caller) {
			return fmt.Errorf("callgraph: edge source %q not in vertex set", caller)
		}
		for _, callee := range callees {
			if !g.Has(callee) {
				return fmt.Errorf("callgraph: edge target %q (from %q) not in vertex set", callee, caller)
			}
		}
	}
	return nil
}

func containsID(ids []methodid.MethodID, target methodid.MethodID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}
