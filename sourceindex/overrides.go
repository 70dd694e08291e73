package sourceindex

import (
	"sort"
	"strings"

	"github.com/impactsel/engine/callgraph"
	"github.com/impactsel/engine/methodid"
)

// typeHierarchy accumulates, across every project in the solution, the facts
// override-edge expansion needs: which types derive from which, and which
// MethodIDs each type declares per method simple name.
//
// A call that resolves to a method M on type T also reaches any override of
// M on a type derived from T when the runtime receiver is the derived type.
// The engine performs no runtime type analysis, so the expansion is a
// conservative over-approximation: every declared override of M visible in
// the solution gets an edge.
type typeHierarchy struct {
	// derived maps a base type's simple name to the simple names of types
	// directly listing it among their base types.
	derived map[string][]string

	// methods maps a type's simple name to its declared methods by simple
	// name.
	methods map[string]map[string][]methodid.MethodID
}

func newTypeHierarchy() *typeHierarchy {
	return &typeHierarchy{
		derived: make(map[string][]string),
		methods: make(map[string]map[string][]methodid.MethodID),
	}
}

// addType records one type declaration and its base-type list. Base names
// are as written at the declaration site; generic arguments are stripped so
// "IRepository<T>" matches a base list entry of "IRepository<User>".
func (h *typeHierarchy) addType(name string, bases []string) {
	simple := simpleTypeName(name)
	for _, base := range bases {
		baseSimple := simpleTypeName(base)
		if baseSimple == "" || baseSimple == simple {
			continue
		}
		h.derived[baseSimple] = append(h.derived[baseSimple], simple)
	}
}

// addMethod records that typeName declares id under methodName.
func (h *typeHierarchy) addMethod(typeName, methodName string, id methodid.MethodID) {
	simple := simpleTypeName(typeName)
	if h.methods[simple] == nil {
		h.methods[simple] = make(map[string][]methodid.MethodID)
	}
	h.methods[simple][methodName] = append(h.methods[simple][methodName], id)
}

// overridesOf returns the MethodIDs overriding callee: methods with the same
// simple name and parameter type list declared on types transitively derived
// from declaringSimple. The result is sorted for deterministic edge order.
func (h *typeHierarchy) overridesOf(declaringSimple, methodName string, callee methodid.MethodID) []methodid.MethodID {
	wantParams := paramSuffix(callee)

	var out []methodid.MethodID
	seen := map[string]bool{declaringSimple: true}
	queue := append([]string{}, h.derived[declaringSimple]...)
	for len(queue) > 0 {
		typ := queue[0]
		queue = queue[1:]
		if seen[typ] {
			continue
		}
		seen[typ] = true
		queue = append(queue, h.derived[typ]...)

		for _, id := range h.methods[typ][methodName] {
			if id != callee && paramSuffix(id) == wantParams {
				out = append(out, id)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// expandOverrideEdges adds, for every resolved edge u → v, edges u → v' for
// each known override v' of v. Runs once after all projects are merged so
// overrides declared in a different project than their base are seen.
func expandOverrideEdges(g *callgraph.CallGraph, h *typeHierarchy) {
	for _, u := range g.Vertices() {
		callees := append([]methodid.MethodID{}, g.Succ(u)...)
		for _, v := range callees {
			declaring := simpleTypeName(lastSegment(methodid.DeclaringType(v)))
			if declaring == "" {
				continue
			}
			for _, override := range h.overridesOf(declaring, methodSimpleName(v), v) {
				g.AddEdge(u, override)
			}
		}
	}
}

// simpleTypeName strips any generic argument list and namespace/nesting
// qualifiers: "Collections.Outer+Inner<T>" → "Inner".
func simpleTypeName(name string) string {
	name = lastSegment(name)
	if lt := strings.IndexByte(name, '<'); lt >= 0 {
		name = name[:lt]
	}
	return name
}

// lastSegment returns the text after the final '.' or '+'.
func lastSegment(name string) string {
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		name = name[dot+1:]
	}
	if plus := strings.LastIndexByte(name, '+'); plus >= 0 {
		name = name[plus+1:]
	}
	return name
}

// methodSimpleName extracts the method's simple name from its MethodID:
// "Calc.Calculator.Add(Int32,Int32)" → "Add".
func methodSimpleName(id methodid.MethodID) string {
	s := string(id)
	if paren := strings.IndexByte(s, '('); paren >= 0 {
		s = s[:paren]
	}
	if lt := strings.IndexByte(s, '<'); lt >= 0 {
		s = s[:lt]
	}
	if dot := strings.LastIndexByte(s, '.'); dot >= 0 {
		s = s[dot+1:]
	}
	return s
}

// paramSuffix returns the "(...)" parameter list portion of a MethodID, the
// signature part an override must match exactly.
func paramSuffix(id methodid.MethodID) string {
	s := string(id)
	if paren := strings.IndexByte(s, '('); paren >= 0 {
		return s[paren:]
	}
	return ""
}
