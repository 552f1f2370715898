// Package rpgstore defines the Store interface and its two reference
// implementations: an in-memory arena-style store and a durable SQLite
// store. Each has its own test file (memory_test.go, sql_test.go) covering
// matching invariant cases.
package rpgstore

import (
	"rpg/internal/rpgmodel"
)

// EdgeKindFilter narrows getOutEdges/getInEdges to one Edge variant. The
// zero value ("") means no filter.
type EdgeKindFilter rpgmodel.EdgeType

// ExportConfig controls optional fields included in an exported snapshot.
type ExportConfig struct {
	// Name, RootPath and Description populate the envelope's config block.
	Name        string
	RootPath    string
	Description string
}

// Stats summarizes a graph's current size.
type Stats struct {
	NodeCount          int
	EdgeCount          int
	HighLevelNodeCount int
	LowLevelNodeCount  int
}

// SearchHit is a ranked result from searchByFeature.
type SearchHit struct {
	NodeID string
	Score  float64
}

// Store is the minimum operation set a Graph Store backend must implement.
// Implementations must be atomic with respect to observable state: a
// failing addEdge must leave no partial mutation.
type Store interface {
	AddNode(node rpgmodel.Node) error
	HasNode(id string) bool
	GetNode(id string) (rpgmodel.Node, bool)
	UpdateNode(id string, node rpgmodel.Node) error
	// RemoveNode deletes the node and, by CASCADE, every edge incident on
	// it. Returns the removed edges.
	RemoveNode(id string) ([]rpgmodel.Edge, error)

	AddEdge(edge rpgmodel.Edge) error
	GetOutEdges(id string, filter EdgeKindFilter) ([]rpgmodel.Edge, error)
	GetInEdges(id string, filter EdgeKindFilter) ([]rpgmodel.Edge, error)

	GetChildren(id string) ([]rpgmodel.Node, error)
	GetParent(id string) (rpgmodel.Node, bool, error)
	GetDependencies(id string) ([]rpgmodel.Node, error)
	GetDependents(id string) ([]rpgmodel.Node, error)

	// GetTopologicalOrder returns nodes such that for every DependencyEdge
	// u->v, v precedes u. Cycle members are grouped with an ID-ascending
	// tie-break.
	GetTopologicalOrder() ([]rpgmodel.Node, error)

	SearchByFeature(query string) ([]SearchHit, error)
	SearchByPath(glob string) ([]rpgmodel.Node, error)

	GetStats() (Stats, error)

	ExportJSON(config ExportConfig) ([]byte, error)
	ImportJSON(payload []byte) error

	// AllNodes and AllEdges support bulk operations (serializer, tests)
	// without going through a glob or feature search.
	AllNodes() ([]rpgmodel.Node, error)
	AllEdges() ([]rpgmodel.Edge, error)

	Close() error
}
