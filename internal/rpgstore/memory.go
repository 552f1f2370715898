package rpgstore

import (
	"path"
	"sort"
	"strings"
	"sync"

	"rpg/internal/rpgerrors"
	"rpg/internal/rpgmodel"
)

// MemoryStore is the default reference Store implementation: ID-indexed
// maps guarded by a single RWMutex, arena-style per the graph's design
// notes on cyclic references (edges hold IDs, never direct handles).
type MemoryStore struct {
	mu sync.RWMutex

	nodes map[string]rpgmodel.Node
	// outEdges/inEdges index edges by endpoint for O(degree) traversal.
	outEdges map[string][]rpgmodel.Edge
	inEdges  map[string][]rpgmodel.Edge
	// depEdgeKeys enforces invariant 4 (no duplicate (source,target,type)).
	depEdgeKeys map[string]bool
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:       make(map[string]rpgmodel.Node),
		outEdges:    make(map[string][]rpgmodel.Edge),
		inEdges:     make(map[string][]rpgmodel.Edge),
		depEdgeKeys: make(map[string]bool),
	}
}

func (s *MemoryStore) AddNode(node rpgmodel.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[node.ID]; exists {
		return rpgerrors.GraphInvariantError("duplicate node ID "+node.ID, nil)
	}
	s.nodes[node.ID] = node
	return nil
}

func (s *MemoryStore) HasNode(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[id]
	return ok
}

func (s *MemoryStore) GetNode(id string) (rpgmodel.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	return n, ok
}

func (s *MemoryStore) UpdateNode(id string, node rpgmodel.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[id]; !exists {
		return rpgerrors.GraphInvariantError("update of nonexistent node "+id, nil)
	}
	node.ID = id
	s.nodes[id] = node
	return nil
}

// RemoveNode deletes the node and, by CASCADE, every edge incident on it.
func (s *MemoryStore) RemoveNode(id string) ([]rpgmodel.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.nodes[id]; !exists {
		return nil, rpgerrors.GraphInvariantError("removal of nonexistent node "+id, nil)
	}

	var removed []rpgmodel.Edge
	for _, e := range s.outEdges[id] {
		removed = append(removed, e)
		s.unindexEdgeLocked(e)
	}
	for _, e := range s.inEdges[id] {
		removed = append(removed, e)
		s.unindexEdgeLocked(e)
	}
	delete(s.nodes, id)
	delete(s.outEdges, id)
	delete(s.inEdges, id)
	return removed, nil
}

func (s *MemoryStore) unindexEdgeLocked(e rpgmodel.Edge) {
	s.outEdges[e.Source] = removeEdge(s.outEdges[e.Source], e)
	s.inEdges[e.Target] = removeEdge(s.inEdges[e.Target], e)
	if e.Type == rpgmodel.EdgeDependency {
		delete(s.depEdgeKeys, e.Key())
	}
}

func removeEdge(edges []rpgmodel.Edge, target rpgmodel.Edge) []rpgmodel.Edge {
	out := edges[:0]
	for _, e := range edges {
		if e == target {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (s *MemoryStore) AddEdge(edge rpgmodel.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[edge.Source]; !ok {
		return rpgerrors.GraphInvariantError("edge source does not exist: "+edge.Source, nil)
	}
	if _, ok := s.nodes[edge.Target]; !ok {
		return rpgerrors.GraphInvariantError("edge target does not exist: "+edge.Target, nil)
	}

	switch edge.Type {
	case rpgmodel.EdgeFunctional:
		if edge.Source == edge.Target {
			return rpgerrors.GraphInvariantError("functional self-loop on "+edge.Source, nil)
		}
		for _, existing := range s.inEdges[edge.Target] {
			if existing.Type == rpgmodel.EdgeFunctional {
				return rpgerrors.GraphInvariantError("node "+edge.Target+" already has a parent", nil)
			}
		}
		if s.wouldCycleLocked(edge.Source, edge.Target) {
			return rpgerrors.GraphInvariantError("functional edge would create a cycle", nil)
		}
	case rpgmodel.EdgeDependency:
		if edge.Source == edge.Target {
			return rpgerrors.GraphInvariantError("dependency self-loop on "+edge.Source, nil)
		}
		if s.depEdgeKeys[edge.Key()] {
			return rpgerrors.GraphInvariantError("duplicate dependency edge "+edge.Key(), nil)
		}
	}

	s.outEdges[edge.Source] = append(s.outEdges[edge.Source], edge)
	s.inEdges[edge.Target] = append(s.inEdges[edge.Target], edge)
	if edge.Type == rpgmodel.EdgeDependency {
		s.depEdgeKeys[edge.Key()] = true
	}
	return nil
}

// wouldCycleLocked reports whether adding a functional edge target<-source
// would put target (or one of its descendants) as an ancestor of source,
// i.e. create a cycle in the hierarchy forest. Caller holds s.mu.
func (s *MemoryStore) wouldCycleLocked(source, target string) bool {
	current := source
	for {
		var parentEdge *rpgmodel.Edge
		for i, e := range s.inEdges[current] {
			if e.Type == rpgmodel.EdgeFunctional {
				parentEdge = &s.inEdges[current][i]
				break
			}
		}
		if parentEdge == nil {
			return false
		}
		if parentEdge.Source == target {
			return true
		}
		current = parentEdge.Source
	}
}

func (s *MemoryStore) GetOutEdges(id string, filter EdgeKindFilter) ([]rpgmodel.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterEdges(s.outEdges[id], filter), nil
}

func (s *MemoryStore) GetInEdges(id string, filter EdgeKindFilter) ([]rpgmodel.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterEdges(s.inEdges[id], filter), nil
}

func filterEdges(edges []rpgmodel.Edge, filter EdgeKindFilter) []rpgmodel.Edge {
	if filter == "" {
		out := make([]rpgmodel.Edge, len(edges))
		copy(out, edges)
		return out
	}
	var out []rpgmodel.Edge
	for _, e := range edges {
		if string(e.Type) == string(filter) {
			out = append(out, e)
		}
	}
	return out
}

func (s *MemoryStore) GetChildren(id string) ([]rpgmodel.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var children []rpgmodel.Node
	for _, e := range s.outEdges[id] {
		if e.Type == rpgmodel.EdgeFunctional {
			if n, ok := s.nodes[e.Target]; ok {
				children = append(children, n)
			}
		}
	}
	return children, nil
}

func (s *MemoryStore) GetParent(id string) (rpgmodel.Node, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.inEdges[id] {
		if e.Type == rpgmodel.EdgeFunctional {
			if n, ok := s.nodes[e.Source]; ok {
				return n, true, nil
			}
		}
	}
	return rpgmodel.Node{}, false, nil
}

func (s *MemoryStore) GetDependencies(id string) ([]rpgmodel.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var deps []rpgmodel.Node
	for _, e := range s.outEdges[id] {
		if e.Type == rpgmodel.EdgeDependency {
			if n, ok := s.nodes[e.Target]; ok {
				deps = append(deps, n)
			}
		}
	}
	return deps, nil
}

func (s *MemoryStore) GetDependents(id string) ([]rpgmodel.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var deps []rpgmodel.Node
	for _, e := range s.inEdges[id] {
		if e.Type == rpgmodel.EdgeDependency {
			if n, ok := s.nodes[e.Source]; ok {
				deps = append(deps, n)
			}
		}
	}
	return deps, nil
}

// GetTopologicalOrder implements Kahn's algorithm over DependencyEdges
// with an ID-ascending tie-break, so cycle members still get a
// deterministic (if not fully dependency-respecting) position.
func (s *MemoryStore) GetTopologicalOrder() ([]rpgmodel.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inDegree := make(map[string]int, len(s.nodes))
	ids := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		inDegree[id] = 0
		ids = append(ids, id)
	}
	// u -> v means "u depends on v"; v must precede u. So in Kahn terms we
	// process nodes with no outstanding dependencies first: treat each
	// dependency edge u->v as a "v must come before u" constraint, i.e. an
	// edge v -> u in the processing DAG.
	for _, edges := range s.outEdges {
		for _, e := range edges {
			if e.Type == rpgmodel.EdgeDependency {
				inDegree[e.Source]++
			}
		}
	}

	sort.Strings(ids)
	var ready []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	var order []rpgmodel.Node
	visited := make(map[string]bool, len(s.nodes))

	for len(ready) > 0 {
		sort.Strings(ready)
		id := ready[0]
		ready = ready[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		order = append(order, s.nodes[id])

		for _, e := range s.inEdges[id] {
			if e.Type != rpgmodel.EdgeDependency {
				continue
			}
			inDegree[e.Source]--
			if inDegree[e.Source] == 0 && !visited[e.Source] {
				ready = append(ready, e.Source)
			}
		}
	}

	if len(order) < len(s.nodes) {
		// Cycle remnants: append remaining nodes ID-ascending.
		var remaining []string
		for _, id := range ids {
			if !visited[id] {
				remaining = append(remaining, id)
			}
		}
		sort.Strings(remaining)
		for _, id := range remaining {
			order = append(order, s.nodes[id])
		}
	}

	return order, nil
}

// SearchByFeature returns best-effort ranked hits: a node's score is the
// fraction of lower-cased query tokens it contains across its description
// and keywords.
func (s *MemoryStore) SearchByFeature(query string) ([]SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return nil, nil
	}

	var hits []SearchHit
	for id, n := range s.nodes {
		haystack := strings.ToLower(n.Feature.Description() + " " + strings.Join(n.Feature.Keywords(), " "))
		matched := 0
		for _, tok := range tokens {
			if strings.Contains(haystack, tok) {
				matched++
			}
		}
		if matched > 0 {
			hits = append(hits, SearchHit{NodeID: id, Score: float64(matched) / float64(len(tokens))})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].NodeID < hits[j].NodeID
	})
	return hits, nil
}

func (s *MemoryStore) SearchByPath(glob string) ([]rpgmodel.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []rpgmodel.Node
	for _, n := range s.nodes {
		candidate := n.Metadata.FilePath
		if n.Type == rpgmodel.NodeHighLevel {
			candidate = n.DirectoryPath
		}
		if candidate == "" {
			continue
		}
		ok, err := path.Match(glob, candidate)
		if err != nil {
			return nil, rpgerrors.StoreError("invalid glob pattern", err)
		}
		if ok {
			matches = append(matches, n)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (s *MemoryStore) GetStats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats Stats
	seen := make(map[rpgmodel.Edge]bool)
	for _, edges := range s.outEdges {
		for _, e := range edges {
			if !seen[e] {
				seen[e] = true
				stats.EdgeCount++
			}
		}
	}
	for _, n := range s.nodes {
		stats.NodeCount++
		if n.Type == rpgmodel.NodeHighLevel {
			stats.HighLevelNodeCount++
		} else {
			stats.LowLevelNodeCount++
		}
	}
	return stats, nil
}

func (s *MemoryStore) ExportJSON(config ExportConfig) ([]byte, error) {
	nodes, _ := s.AllNodes()
	edges, _ := s.AllEdges()
	env := BuildEnvelope(config, nodes, edges)
	return MarshalEnvelope(env)
}

func (s *MemoryStore) ImportJSON(payload []byte) error {
	env, err := UnmarshalEnvelope(payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = make(map[string]rpgmodel.Node, len(env.Nodes))
	s.outEdges = make(map[string][]rpgmodel.Edge)
	s.inEdges = make(map[string][]rpgmodel.Edge)
	s.depEdgeKeys = make(map[string]bool)

	for _, ne := range env.Nodes {
		n, err := FromEnvelopeNode(ne)
		if err != nil {
			return err
		}
		s.nodes[n.ID] = n
	}
	for _, ee := range env.Edges {
		e, err := FromEnvelopeEdge(ee)
		if err != nil {
			return err
		}
		s.outEdges[e.Source] = append(s.outEdges[e.Source], e)
		s.inEdges[e.Target] = append(s.inEdges[e.Target], e)
		if e.Type == rpgmodel.EdgeDependency {
			s.depEdgeKeys[e.Key()] = true
		}
	}
	return nil
}

func (s *MemoryStore) AllNodes() ([]rpgmodel.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := make([]rpgmodel.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes, nil
}

func (s *MemoryStore) AllEdges() ([]rpgmodel.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[rpgmodel.Edge]bool)
	var edges []rpgmodel.Edge
	for _, out := range s.outEdges {
		for _, e := range out {
			if !seen[e] {
				seen[e] = true
				edges = append(edges, e)
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
	return edges, nil
}

func (s *MemoryStore) Close() error { return nil }
