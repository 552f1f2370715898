// Package rpgfacade wraps a rpgstore.Store and enforces invariants at the
// API boundary: duplicate-ID rejection, endpoint existence checks, and
// typed factory methods for each Node/Edge variant.
package rpgfacade

import (
	"rpg/internal/rpgerrors"
	"rpg/internal/rpgid"
	"rpg/internal/rpgmodel"
	"rpg/internal/rpgstore"
)

// Facade is the typed entry point every other component (Evolver, Router,
// CLI) uses to read and mutate the graph. It never silently ignores a
// missing ID on mutation; delete-idempotence for missing IDs is a policy
// the Evolver applies on top, not something the facade does itself.
type Facade struct {
	store rpgstore.Store
}

// New wraps an existing Store.
func New(store rpgstore.Store) *Facade {
	return &Facade{store: store}
}

// Store returns the underlying Store, for components (serializer, CLI)
// that need direct access to bulk or search operations.
func (f *Facade) Store() rpgstore.Store { return f.store }

// AddHighLevelNode constructs and inserts a directory-group node, deriving
// its canonical ID from directoryPath.
func (f *Facade) AddHighLevelNode(directoryPath string, feature rpgmodel.SemanticFeature) (rpgmodel.Node, error) {
	id := rpgid.HighLevel(directoryPath)
	node := rpgmodel.NewHighLevelNode(id, feature, directoryPath)
	if err := f.store.AddNode(node); err != nil {
		return rpgmodel.Node{}, err
	}
	return node, nil
}

// AddLowLevelNode constructs and inserts an implementation node, deriving
// its canonical ID from the metadata (file path, kind and qualified name;
// the start line is left out of the ID, matching the diff parser's IDs)
// and, when not already set, an advisory SCIP symbol scoped to the
// entity's file.
func (f *Facade) AddLowLevelNode(metadata rpgmodel.StructuralMetadata, feature rpgmodel.SemanticFeature, sourceText string, includeSource bool) (rpgmodel.Node, error) {
	id := rpgid.LowLevel(metadata.FilePath, metadata.EntityKind, metadata.QualifiedName, 0)
	if metadata.ScipSymbol == "" && metadata.QualifiedName != "" {
		metadata.ScipSymbol = rpgid.BuildScipSymbol("rpg-repo", metadata.FilePath, "", metadata.EntityKind, metadata.QualifiedName)
	}
	node := rpgmodel.NewLowLevelNode(id, feature, metadata, sourceText, includeSource)
	if err := f.store.AddNode(node); err != nil {
		return rpgmodel.Node{}, err
	}
	return node, nil
}

// AddFunctionalEdge inserts a parent->child hierarchy edge after checking
// both endpoints exist.
func (f *Facade) AddFunctionalEdge(parentID, childID string, level, siblingOrder int, hasLevel, hasSibling bool) error {
	if err := f.checkEndpoints(parentID, childID); err != nil {
		return err
	}
	return f.store.AddEdge(rpgmodel.NewFunctionalEdge(parentID, childID, level, siblingOrder, hasLevel, hasSibling))
}

// AddDependencyEdge inserts an import/call/inherit/implement/use edge
// after checking both endpoints exist.
func (f *Facade) AddDependencyEdge(sourceID, targetID string, depType rpgmodel.DependencyType, isRuntime bool, hasRuntime bool, sourceLine int, hasSourceLine bool) error {
	if err := f.checkEndpoints(sourceID, targetID); err != nil {
		return err
	}
	return f.store.AddEdge(rpgmodel.NewDependencyEdge(sourceID, targetID, depType, isRuntime, hasRuntime, sourceLine, hasSourceLine))
}

func (f *Facade) checkEndpoints(sourceID, targetID string) error {
	if !f.store.HasNode(sourceID) {
		return rpgerrors.GraphInvariantError("edge source does not exist: "+sourceID, nil)
	}
	if !f.store.HasNode(targetID) {
		return rpgerrors.GraphInvariantError("edge target does not exist: "+targetID, nil)
	}
	return nil
}

// GetNode returns the node with the given ID.
func (f *Facade) GetNode(id string) (rpgmodel.Node, bool) {
	return f.store.GetNode(id)
}

// HasNode reports whether a node with the given ID exists.
func (f *Facade) HasNode(id string) bool {
	return f.store.HasNode(id)
}

// UpdateNode replaces a node's feature and metadata in place. Incident
// edges are preserved since the store keys edges by ID, not by value.
func (f *Facade) UpdateNode(id string, node rpgmodel.Node) error {
	return f.store.UpdateNode(id, node)
}

// RemoveNode removes a node and every edge incident on it (CASCADE).
// Returns the removed edges so callers (the Evolver's orphan-prune walk)
// can inspect what was severed.
func (f *Facade) RemoveNode(id string) ([]rpgmodel.Edge, error) {
	return f.store.RemoveNode(id)
}

// GetChildren returns id's FunctionalEdge children.
func (f *Facade) GetChildren(id string) ([]rpgmodel.Node, error) {
	return f.store.GetChildren(id)
}

// GetParent returns id's single FunctionalEdge parent, if any.
func (f *Facade) GetParent(id string) (rpgmodel.Node, bool, error) {
	return f.store.GetParent(id)
}

// GetDependencies returns the nodes id depends on via DependencyEdges.
func (f *Facade) GetDependencies(id string) ([]rpgmodel.Node, error) {
	return f.store.GetDependencies(id)
}

// GetDependents returns the nodes that depend on id via DependencyEdges.
func (f *Facade) GetDependents(id string) ([]rpgmodel.Node, error) {
	return f.store.GetDependents(id)
}

// GetTopologicalOrder returns a dependency-respecting node order.
func (f *Facade) GetTopologicalOrder() ([]rpgmodel.Node, error) {
	return f.store.GetTopologicalOrder()
}

// AllHighLevelNodes returns every HighLevelNode currently in the graph,
// sorted by ascending ID.
func (f *Facade) AllHighLevelNodes() ([]rpgmodel.Node, error) {
	nodes, err := f.store.AllNodes()
	if err != nil {
		return nil, err
	}
	var out []rpgmodel.Node
	for _, n := range nodes {
		if n.Type == rpgmodel.NodeHighLevel {
			out = append(out, n)
		}
	}
	return out, nil
}

// SearchByFeature delegates to the store's best-effort ranked search.
func (f *Facade) SearchByFeature(query string) ([]rpgstore.SearchHit, error) {
	return f.store.SearchByFeature(query)
}

// SearchByPath delegates to the store's glob search.
func (f *Facade) SearchByPath(glob string) ([]rpgmodel.Node, error) {
	return f.store.SearchByPath(glob)
}

// GetStats returns the graph's current size.
func (f *Facade) GetStats() (rpgstore.Stats, error) {
	return f.store.GetStats()
}

// ExportJSON serializes the entire graph.
func (f *Facade) ExportJSON(config rpgstore.ExportConfig) ([]byte, error) {
	return f.store.ExportJSON(config)
}

// ImportJSON replaces the graph's contents from a serialized payload.
func (f *Facade) ImportJSON(payload []byte) error {
	return f.store.ImportJSON(payload)
}

// Close releases the underlying store's resources.
func (f *Facade) Close() error {
	return f.store.Close()
}
