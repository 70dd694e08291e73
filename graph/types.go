// Package graph builds an in-memory AST-derived graph of a C# solution using
// tree-sitter, the foundation SourceIndex walks to emit MethodRecords and
// CallGraph edges.
package graph

// SourceLocation stores the file location of a code snippet for lazy loading,
// avoiding holding the full source text of every node in memory.
type SourceLocation struct {
	File      string
	StartByte uint32
	EndByte   uint32
}

// Node represents a single declaration or call site in the parsed AST:
// a type, method, constructor, call expression, lambda, or using directive.
type Node struct {
	ID             string
	Type           string // "class_declaration", "method_declaration", "invocation_expression", ...
	Name           string
	Namespace      string
	DeclaringType  string // the enclosing type's name, "+"-joined for nested types (e.g. "Square+Corner")
	File           string
	LineNumber     uint32
	EndLineNumber  uint32
	SourceLocation *SourceLocation
	OutgoingEdges  []*Edge

	Visibility   string
	IsStatic     bool
	ReturnType   string
	ParamNames   []string
	ParamTypes   []string
	TypeParams   []string
	Attributes   []string // attribute names, e.g. ["Test", "Category"]
	BaseTypes    []string
	IsNestedType bool

	// Populated on call/invocation nodes only.
	CallTargetName string // the method name being invoked
	CallObjectName string // the receiver expression, empty for bare calls
}

// GetCodeSnippet reads the node's source range lazily from disk.
func (n *Node) GetCodeSnippet() (string, error) {
	if n.SourceLocation == nil {
		return "", nil
	}
	content, err := readFile(n.SourceLocation.File)
	if err != nil {
		return "", err
	}
	if n.SourceLocation.EndByte > uint32(len(content)) {
		return "", nil
	}
	return string(content[n.SourceLocation.StartByte:n.SourceLocation.EndByte]), nil
}

// Edge represents a directed structural edge between two nodes in the AST
// graph — e.g. "this type declares this method" or "this method contains
// this call expression". Call-graph edges (caller invokes callee) live in
// the callgraph package, not here.
type Edge struct {
	From *Node
	To   *Node
}

// CodeGraph holds every Node discovered while parsing a solution, plus the
// structural edges between them (containment, not invocation).
type CodeGraph struct {
	Nodes map[string]*Node
	Edges []*Edge

	// ParentOf maps a node ID to the ID of its immediate containing
	// declaration (e.g. a method's containing type, a call's containing
	// method). Populated as edges are added; used to find the enclosing
	// method of a call site without re-walking the tree.
	ParentOf map[string]string
}

// NewCodeGraph creates an empty, ready-to-use CodeGraph.
func NewCodeGraph() *CodeGraph {
	return &CodeGraph{
		Nodes:    make(map[string]*Node),
		ParentOf: make(map[string]string),
	}
}

// AddNode registers a node in the graph, keyed by its ID.
func (g *CodeGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
}

// AddEdge records a containment edge and updates the parent index.
func (g *CodeGraph) AddEdge(from, to *Node) {
	g.Edges = append(g.Edges, &Edge{From: from, To: to})
	from.OutgoingEdges = append(from.OutgoingEdges, &Edge{From: from, To: to})
	g.ParentOf[to.ID] = from.ID
}

// FindContaining walks ParentOf from nodeID until it finds an ancestor whose
// Type is one of wantTypes, or returns nil if none is found.
func (g *CodeGraph) FindContaining(nodeID string, wantTypes ...string) *Node {
	current := nodeID
	for {
		parentID, ok := g.ParentOf[current]
		if !ok {
			return nil
		}
		parent := g.Nodes[parentID]
		if parent == nil {
			return nil
		}
		for _, t := range wantTypes {
			if parent.Type == t {
				return parent
			}
		}
		current = parentID
	}
}
