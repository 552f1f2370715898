package rpgstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rpg/internal/rpgmodel"
)

func newTestSQLStore(t *testing.T) *SQLStore {
	t.Helper()
	dir := t.TempDir()
	s, err := OpenSQLStore(dir, ".rpg/graph.sqlite", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLStore_AddNode_DuplicateRejected(t *testing.T) {
	s := newTestSQLStore(t)
	require.NoError(t, s.AddNode(hlNode("a:dir")))
	require.Error(t, s.AddNode(hlNode("a:dir")))
}

func TestSQLStore_AddEdge_SingleParent(t *testing.T) {
	s := newTestSQLStore(t)
	require.NoError(t, s.AddNode(hlNode("a:dir")))
	require.NoError(t, s.AddNode(hlNode("b:dir")))
	require.NoError(t, s.AddNode(llNode("f.ts:function:foo", "f.ts")))

	require.NoError(t, s.AddEdge(rpgmodel.NewFunctionalEdge("a:dir", "f.ts:function:foo", 0, 0, false, false)))
	err := s.AddEdge(rpgmodel.NewFunctionalEdge("b:dir", "f.ts:function:foo", 0, 0, false, false))
	require.Error(t, err)
}

func TestSQLStore_RejectsMultiNodeParentCycle(t *testing.T) {
	s := newTestSQLStore(t)
	require.NoError(t, s.AddNode(hlNode("a:dir")))
	require.NoError(t, s.AddNode(hlNode("b:dir")))
	require.NoError(t, s.AddNode(hlNode("c:dir")))

	require.NoError(t, s.AddEdge(rpgmodel.NewFunctionalEdge("a:dir", "b:dir", 0, 0, false, false)))
	require.NoError(t, s.AddEdge(rpgmodel.NewFunctionalEdge("b:dir", "c:dir", 0, 0, false, false)))

	err := s.AddEdge(rpgmodel.NewFunctionalEdge("c:dir", "a:dir", 0, 0, false, false))
	require.Error(t, err)
}

func TestSQLStore_NoDependencySelfLoop(t *testing.T) {
	s := newTestSQLStore(t)
	require.NoError(t, s.AddNode(llNode("f.ts:function:foo", "f.ts")))
	err := s.AddEdge(rpgmodel.NewDependencyEdge("f.ts:function:foo", "f.ts:function:foo", rpgmodel.DependencyCall, false, false, 0, false))
	require.Error(t, err)
}

func TestSQLStore_NoDuplicateDependencyEdge(t *testing.T) {
	s := newTestSQLStore(t)
	require.NoError(t, s.AddNode(llNode("a.ts:function:a", "a.ts")))
	require.NoError(t, s.AddNode(llNode("b.ts:function:b", "b.ts")))

	edge := rpgmodel.NewDependencyEdge("a.ts:function:a", "b.ts:function:b", rpgmodel.DependencyCall, false, false, 0, false)
	require.NoError(t, s.AddEdge(edge))
	require.Error(t, s.AddEdge(edge))
}

func TestSQLStore_RemoveNode_Cascades(t *testing.T) {
	s := newTestSQLStore(t)
	require.NoError(t, s.AddNode(hlNode("a:dir")))
	require.NoError(t, s.AddNode(llNode("f.ts:function:foo", "f.ts")))
	require.NoError(t, s.AddEdge(rpgmodel.NewFunctionalEdge("a:dir", "f.ts:function:foo", 0, 0, false, false)))

	removed, err := s.RemoveNode("a:dir")
	require.NoError(t, err)
	require.Len(t, removed, 1)

	edges, _ := s.GetInEdges("f.ts:function:foo", "")
	require.Empty(t, edges)
}

func TestSQLStore_ExportImport_RoundTrip(t *testing.T) {
	s := newTestSQLStore(t)
	require.NoError(t, s.AddNode(hlNode("a:dir")))
	require.NoError(t, s.AddNode(llNode("f.ts:function:foo", "f.ts")))
	require.NoError(t, s.AddEdge(rpgmodel.NewFunctionalEdge("a:dir", "f.ts:function:foo", 0, 0, false, false)))

	data, err := s.ExportJSON(ExportConfig{Name: "repo"})
	require.NoError(t, err)

	s2 := newTestSQLStore(t)
	require.NoError(t, s2.ImportJSON(data))

	nodes, err := s2.AllNodes()
	require.NoError(t, err)
	require.Len(t, nodes, 2)
}

func TestSQLStore_GetTopologicalOrder(t *testing.T) {
	s := newTestSQLStore(t)
	require.NoError(t, s.AddNode(llNode("a.ts:file:a.ts", "a.ts")))
	require.NoError(t, s.AddNode(llNode("b.ts:file:b.ts", "b.ts")))
	require.NoError(t, s.AddEdge(rpgmodel.NewDependencyEdge("a.ts:file:a.ts", "b.ts:file:b.ts", rpgmodel.DependencyImport, false, false, 0, false)))

	order, err := s.GetTopologicalOrder()
	require.NoError(t, err)
	require.Len(t, order, 2)
	require.Equal(t, "b.ts:file:b.ts", order[0].ID)
}

func TestSQLStore_GetTopologicalOrder_ChainOfThree(t *testing.T) {
	s := newTestSQLStore(t)
	require.NoError(t, s.AddNode(llNode("a.ts:file:a.ts", "a.ts")))
	require.NoError(t, s.AddNode(llNode("b.ts:file:b.ts", "b.ts")))
	require.NoError(t, s.AddNode(llNode("c.ts:file:c.ts", "c.ts")))
	require.NoError(t, s.AddEdge(rpgmodel.NewDependencyEdge("a.ts:file:a.ts", "b.ts:file:b.ts", rpgmodel.DependencyImport, false, false, 0, false)))
	require.NoError(t, s.AddEdge(rpgmodel.NewDependencyEdge("b.ts:file:b.ts", "c.ts:file:c.ts", rpgmodel.DependencyImport, false, false, 0, false)))

	order, err := s.GetTopologicalOrder()
	require.NoError(t, err)
	require.Len(t, order, 3)

	index := make(map[string]int, len(order))
	for i, n := range order {
		index[n.ID] = i
	}
	require.Less(t, index["b.ts:file:b.ts"], index["a.ts:file:a.ts"])
	require.Less(t, index["c.ts:file:c.ts"], index["b.ts:file:b.ts"])
}
