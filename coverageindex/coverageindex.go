// Package coverageindex computes reverse reachability from test methods to
// production methods over a callgraph.CallGraph: a bounded breadth-first
// traversal per test with confidence decaying per hop. Visited frontiers are
// memoized with an LRU cache (github.com/hashicorp/golang-lru/v2) keyed by
// method, so two tests that share a common callee reuse its downstream
// reach instead of re-traversing it — the near-linear-in-graph-size cost
// bound the component design requires.
package coverageindex

import (
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/impactsel/engine/callgraph"
	"github.com/impactsel/engine/methodid"
	"github.com/impactsel/engine/model"
)

// Config holds the tunables the component design names: bounded depth,
// per-hop confidence decay, and the penalty applied to framework methods.
type Config struct {
	MaxDepth         uint32
	DecayPerHop      float64
	FrameworkPenalty float64
}

// DefaultConfig matches the documented defaults.
func DefaultConfig() Config {
	return Config{MaxDepth: 5, DecayPerHop: 0.15, FrameworkPenalty: 0.1}
}

// frameworkNamespacePrefixes identifies namespaces treated as framework code
// for the confidence penalty, per the component design's examples.
var frameworkNamespacePrefixes = []string{"System.", "Microsoft.", "NUnit.", "Xunit.", "MSTest."}

func isFrameworkNamespace(namespace string) bool {
	for _, prefix := range frameworkNamespacePrefixes {
		if strings.HasPrefix(namespace, prefix) {
			return true
		}
	}
	return false
}

// Index is the immutable-after-build reverse-reachability index: for every
// production method, the tests that can reach it with their confidence, and
// symmetrically for every test, the production methods it reaches.
type Index struct {
	byProduction map[methodid.MethodID][]model.CoverageEntry
	byTest       map[methodid.MethodID][]methodid.MethodID
	cfg          Config
}

// TestsFor returns every CoverageEntry reaching production, sorted by
// descending confidence.
func (idx *Index) TestsFor(production methodid.MethodID) []model.CoverageEntry {
	return idx.byProduction[production]
}

// MethodsFor returns every production method reachable from test, for
// auditing; the engine's round-trip invariant requires this agree with
// TestsFor in both directions.
func (idx *Index) MethodsFor(test methodid.MethodID) []methodid.MethodID {
	return idx.byTest[test]
}

// reachNode is one entry in a node's memoized downstream reach: the hop
// count from the cached root and the predecessor on the path back to it.
type reachNode struct {
	depth  uint32
	parent methodid.MethodID
}

// namespaceOf returns the first dotted segment of a MethodID followed by a
// dot (e.g. "System." for "System.String.Concat(String)"), or "" when the ID
// has no dot. The framework-penalty check only needs this leading prefix.
func namespaceOf(id methodid.MethodID) string {
	s := string(id)
	if paren := strings.IndexByte(s, '('); paren >= 0 {
		s = s[:paren]
	}
	if lt := strings.IndexByte(s, '<'); lt >= 0 {
		s = s[:lt]
	}
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return ""
	}
	return s[:dot] + "."
}

// Build computes the CoverageIndex for every test in tests over cg.
func Build(cg *callgraph.CallGraph, tests []model.MethodRecord, cfg Config) *Index {
	if cfg.MaxDepth == 0 {
		cfg = DefaultConfig()
	}

	cache, _ := lru.New[methodid.MethodID, map[methodid.MethodID]reachNode](4096)

	reachFrom := func(root methodid.MethodID) map[methodid.MethodID]reachNode {
		if cached, ok := cache.Get(root); ok {
			return cached
		}
		nodes := map[methodid.MethodID]reachNode{root: {depth: 0, parent: ""}}
		type queued struct {
			id    methodid.MethodID
			depth uint32
		}
		queue := []queued{{root, 0}}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if cur.depth >= cfg.MaxDepth {
				continue
			}
			for _, next := range cg.Succ(cur.id) {
				if _, seen := nodes[next]; seen {
					continue
				}
				nodes[next] = reachNode{depth: cur.depth + 1, parent: cur.id}
				queue = append(queue, queued{next, cur.depth + 1})
			}
		}
		cache.Add(root, nodes)
		return nodes
	}

	idx := &Index{
		byProduction: make(map[methodid.MethodID][]model.CoverageEntry),
		byTest:       make(map[methodid.MethodID][]methodid.MethodID),
		cfg:          cfg,
	}

	for _, test := range tests {
		best := make(map[methodid.MethodID]model.CoverageEntry)
		// bestFromRoot tracks, per visited BFS frontier node, the accumulated
		// depth and path-so-far from the test root, so a cache hit's local
		// reach can be spliced onto the right prefix.
		type frontier struct {
			id    methodid.MethodID
			depth uint32
			path  []methodid.MethodID
		}
		visitedFrontier := make(map[methodid.MethodID]bool)
		queue := []frontier{{id: test.ID, depth: 0, path: []methodid.MethodID{test.ID}}}
		visitedFrontier[test.ID] = true

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]

			reach := reachFrom(cur.id)
			for target, rn := range reach {
				if target == cur.id {
					continue
				}
				total := cur.depth + rn.depth
				if total == 0 || total > cfg.MaxDepth {
					continue
				}
				suffix := reconstructSuffix(reach, cur.id, target)
				fullPath := append(append([]methodid.MethodID{}, cur.path...), suffix...)
				considerEntry(best, test.ID, target, fullPath, total, cfg)
			}

			for _, next := range cg.Succ(cur.id) {
				if visitedFrontier[next] || cur.depth+1 > cfg.MaxDepth {
					continue
				}
				visitedFrontier[next] = true
				queue = append(queue, frontier{
					id:    next,
					depth: cur.depth + 1,
					path:  append(append([]methodid.MethodID{}, cur.path...), next),
				})
			}
		}

		var methodIDs []methodid.MethodID
		for production, entry := range best {
			idx.byProduction[production] = append(idx.byProduction[production], entry)
			methodIDs = append(methodIDs, production)
		}
		sort.Slice(methodIDs, func(i, j int) bool { return methodIDs[i] < methodIDs[j] })
		idx.byTest[test.ID] = methodIDs
	}

	for production, entries := range idx.byProduction {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Confidence > entries[j].Confidence })
		idx.byProduction[production] = entries
	}

	return idx
}

// reconstructSuffix walks reach's local parent pointers from target back to
// root, returning the path root→...→target excluding root itself.
func reconstructSuffix(reach map[methodid.MethodID]reachNode, root, target methodid.MethodID) []methodid.MethodID {
	var rev []methodid.MethodID
	cur := target
	for cur != root {
		rev = append(rev, cur)
		cur = reach[cur].parent
	}
	out := make([]methodid.MethodID, len(rev))
	for i, id := range rev {
		out[len(rev)-1-i] = id
	}
	return out
}

func considerEntry(best map[methodid.MethodID]model.CoverageEntry, test, production methodid.MethodID, path []methodid.MethodID, depth uint32, cfg Config) {
	penalty := 0.0
	if isFrameworkNamespace(namespaceOf(production)) {
		penalty = cfg.FrameworkPenalty
	}
	confidence := 1.0 - float64(depth)*cfg.DecayPerHop - penalty
	if confidence < 0 {
		confidence = 0
	}
	entry := model.CoverageEntry{
		Test:       test,
		Production: production,
		Path:       path,
		Depth:      depth,
		Confidence: confidence,
	}
	existing, ok := best[production]
	if !ok {
		best[production] = entry
		return
	}
	if entry.Depth < existing.Depth {
		best[production] = entry
		return
	}
	if entry.Depth == existing.Depth && pathKey(entry.Path) < pathKey(existing.Path) {
		best[production] = entry
	}
}

func pathKey(path []methodid.MethodID) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = string(id)
	}
	return strings.Join(parts, "|")
}
