// Package rpgmodel defines the Repository Planning Graph's typed data
// model: the tagged-union Node and Edge variants, their required metadata,
// and the invariants the store and facade enforce at their boundaries.
package rpgmodel

import "sort"

// EntityKind is the closed set of code entity kinds a StructuralMetadata
// can describe.
type EntityKind string

const (
	EntityFile     EntityKind = "file"
	EntityClass    EntityKind = "class"
	EntityFunction EntityKind = "function"
	EntityMethod   EntityKind = "method"
	EntityModule   EntityKind = "module"
)

// IntentTag is the closed set of optional semantic intents a feature may carry.
type IntentTag string

const (
	IntentBehavior IntentTag = "behavior"
	IntentData     IntentTag = "data"
	IntentControl  IntentTag = "control"
	IntentIO       IntentTag = "io"
	IntentUtil     IntentTag = "util"
)

// DependencyType is the closed set of DependencyEdge relations.
type DependencyType string

const (
	DependencyImport    DependencyType = "import"
	DependencyCall      DependencyType = "call"
	DependencyInherit   DependencyType = "inherit"
	DependencyImplement DependencyType = "implement"
	DependencyUse       DependencyType = "use"
)

// NodeType discriminates the two Node variants on the wire and in the store.
type NodeType string

const (
	NodeHighLevel NodeType = "high_level"
	NodeLowLevel  NodeType = "low_level"
)

// EdgeType discriminates the two Edge variants on the wire and in the store.
type EdgeType string

const (
	EdgeFunctional EdgeType = "functional"
	EdgeDependency EdgeType = "dependency"
)

// SemanticFeature is an immutable description of what an entity does: a
// non-empty natural-language description, a deduplicated keyword list, and
// an optional intent tag. Construct with NewSemanticFeature; the zero value
// is not valid.
type SemanticFeature struct {
	description string
	keywords    []string
	intent      IntentTag
	hasIntent   bool
}

// NewSemanticFeature builds a SemanticFeature, deduplicating and trimming
// empty keywords. description must be non-empty.
func NewSemanticFeature(description string, keywords []string, intent IntentTag) SemanticFeature {
	seen := make(map[string]bool, len(keywords))
	deduped := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		deduped = append(deduped, kw)
	}
	return SemanticFeature{
		description: description,
		keywords:    deduped,
		intent:      intent,
		hasIntent:   intent != "",
	}
}

// Description returns the feature's natural-language description.
func (f SemanticFeature) Description() string { return f.description }

// Keywords returns the feature's deduplicated keyword list. Callers must
// not mutate the returned slice.
func (f SemanticFeature) Keywords() []string { return f.keywords }

// Intent returns the feature's intent tag and whether one was set.
func (f SemanticFeature) Intent() (IntentTag, bool) { return f.intent, f.hasIntent }

// IsZero reports whether this is the zero-value SemanticFeature (no description).
func (f SemanticFeature) IsZero() bool { return f.description == "" && len(f.keywords) == 0 }

// StructuralMetadata locates a code entity or directory group in the repository.
type StructuralMetadata struct {
	// FilePath is the repo-relative path for a code entity. Empty for a
	// directory-group (DirectoryPath is used instead).
	FilePath string
	// DirectoryPath is the repo-relative directory path for a directory-group.
	DirectoryPath string
	// EntityKind is required for code entities; empty for directory-groups.
	EntityKind EntityKind
	// QualifiedName is the dotted name (enclosing scopes joined with ".").
	QualifiedName string
	// StartLine / EndLine are 1-indexed, inclusive, and optional (0 means unset).
	StartLine int
	EndLine   int
	// ScipSymbol is advisory SCIP-scheme interop metadata. Never consulted
	// for identity or equality.
	ScipSymbol string
}

// Node is the tagged union of HighLevelNode and LowLevelNode. Zero value is
// invalid; construct via NewHighLevelNode / NewLowLevelNode.
type Node struct {
	ID   string
	Type NodeType

	Feature SemanticFeature

	// HighLevelNode fields.
	DirectoryPath string

	// LowLevelNode fields.
	Metadata   StructuralMetadata
	SourceText string
	hasSource  bool
}

// NewHighLevelNode constructs an architectural node. directoryPath may be empty.
func NewHighLevelNode(id string, feature SemanticFeature, directoryPath string) Node {
	return Node{
		ID:            id,
		Type:          NodeHighLevel,
		Feature:       feature,
		DirectoryPath: directoryPath,
	}
}

// NewLowLevelNode constructs an implementation node. sourceText is optional;
// pass hasSource=false to omit it entirely (as opposed to an empty string).
func NewLowLevelNode(id string, feature SemanticFeature, metadata StructuralMetadata, sourceText string, hasSource bool) Node {
	return Node{
		ID:         id,
		Type:       NodeLowLevel,
		Feature:    feature,
		Metadata:   metadata,
		SourceText: sourceText,
		hasSource:  hasSource,
	}
}

// HasSourceText reports whether a LowLevelNode carries source text.
func (n Node) HasSourceText() bool { return n.hasSource }

// Edge is the tagged union of FunctionalEdge and DependencyEdge.
type Edge struct {
	Source string
	Target string
	Type   EdgeType

	// FunctionalEdge fields.
	Level        int
	SiblingOrder int
	hasLevel     bool
	hasSibling   bool

	// DependencyEdge fields.
	DependencyType DependencyType
	IsRuntime      bool
	SourceLine     int
	hasRuntime     bool
	hasSourceLine  bool
}

// NewFunctionalEdge constructs a parent->child hierarchy edge.
func NewFunctionalEdge(source, target string, level, siblingOrder int, hasLevel, hasSibling bool) Edge {
	return Edge{
		Source: source, Target: target, Type: EdgeFunctional,
		Level: level, SiblingOrder: siblingOrder,
		hasLevel: hasLevel, hasSibling: hasSibling,
	}
}

// HasLevel reports whether Level was set on a FunctionalEdge.
func (e Edge) HasLevel() bool { return e.hasLevel }

// HasSiblingOrder reports whether SiblingOrder was set on a FunctionalEdge.
func (e Edge) HasSiblingOrder() bool { return e.hasSibling }

// NewDependencyEdge constructs an import/call/inherit/implement/use edge.
func NewDependencyEdge(source, target string, depType DependencyType, isRuntime bool, hasRuntime bool, sourceLine int, hasSourceLine bool) Edge {
	return Edge{
		Source:         source,
		Target:         target,
		Type:           EdgeDependency,
		DependencyType: depType,
		IsRuntime:      isRuntime,
		hasRuntime:     hasRuntime,
		SourceLine:     sourceLine,
		hasSourceLine:  hasSourceLine,
	}
}

// HasIsRuntime reports whether IsRuntime was set on a DependencyEdge.
func (e Edge) HasIsRuntime() bool { return e.hasRuntime }

// HasSourceLine reports whether SourceLine was set on a DependencyEdge.
func (e Edge) HasSourceLine() bool { return e.hasSourceLine }

// Key identifies a DependencyEdge for multi-edge-forbidden checks: the
// tuple (source, target, dependencyType) must be unique per invariant 4.
func (e Edge) Key() string {
	return e.Source + "\x00" + e.Target + "\x00" + string(e.DependencyType)
}

// SortNodesByID returns a new slice of nodes sorted by ascending ID,
// matching the ID-ascending tie-break used throughout the Evolver and Router.
func SortNodesByID(nodes []Node) []Node {
	sorted := make([]Node, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}
