package rpgfacade

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rpg/internal/rpgmodel"
	"rpg/internal/rpgstore"
)

func TestFacade_AddHighLevelNode_DerivesCanonicalID(t *testing.T) {
	f := New(rpgstore.NewMemoryStore())
	feature := rpgmodel.NewSemanticFeature("directory", nil, "")

	node, err := f.AddHighLevelNode("src/dirA", feature)
	require.NoError(t, err)
	require.Equal(t, "src/dirA:dir", node.ID)
	require.True(t, f.HasNode("src/dirA:dir"))
}

func TestFacade_AddLowLevelNode_DerivesCanonicalID(t *testing.T) {
	f := New(rpgstore.NewMemoryStore())
	feature := rpgmodel.NewSemanticFeature("a function", []string{"foo"}, "")
	metadata := rpgmodel.StructuralMetadata{FilePath: "src/x.ts", EntityKind: rpgmodel.EntityFunction, QualifiedName: "foo"}

	node, err := f.AddLowLevelNode(metadata, feature, "", false)
	require.NoError(t, err)
	require.Equal(t, "src/x.ts:function:foo", node.ID)
	require.NotEmpty(t, node.Metadata.ScipSymbol)
	require.Contains(t, node.Metadata.ScipSymbol, "foo")
}

func TestFacade_AddLowLevelNode_PreservesGivenScipSymbol(t *testing.T) {
	f := New(rpgstore.NewMemoryStore())
	feature := rpgmodel.NewSemanticFeature("a function", []string{"foo"}, "")
	metadata := rpgmodel.StructuralMetadata{FilePath: "src/x.ts", EntityKind: rpgmodel.EntityFunction, QualifiedName: "foo", ScipSymbol: "explicit-symbol"}

	node, err := f.AddLowLevelNode(metadata, feature, "", false)
	require.NoError(t, err)
	require.Equal(t, "explicit-symbol", node.Metadata.ScipSymbol)
}

func TestFacade_AddFunctionalEdge_RejectsMissingEndpoint(t *testing.T) {
	f := New(rpgstore.NewMemoryStore())
	_, err := f.AddHighLevelNode("src/dirA", rpgmodel.NewSemanticFeature("d", nil, ""))
	require.NoError(t, err)

	err = f.AddFunctionalEdge("src/dirA:dir", "missing:function:foo", 0, 0, false, false)
	require.Error(t, err)
}

func TestFacade_RemoveNode_Cascades(t *testing.T) {
	f := New(rpgstore.NewMemoryStore())
	parent, _ := f.AddHighLevelNode("src/dirA", rpgmodel.NewSemanticFeature("d", nil, ""))
	metadata := rpgmodel.StructuralMetadata{FilePath: "src/x.ts", EntityKind: rpgmodel.EntityFunction, QualifiedName: "foo"}
	child, _ := f.AddLowLevelNode(metadata, rpgmodel.NewSemanticFeature("f", nil, ""), "", false)

	require.NoError(t, f.AddFunctionalEdge(parent.ID, child.ID, 0, 0, false, false))

	removed, err := f.RemoveNode(parent.ID)
	require.NoError(t, err)
	require.Len(t, removed, 1)

	got, _, err := f.GetParent(child.ID)
	require.NoError(t, err)
	require.Equal(t, rpgmodel.Node{}, got)
}

func TestFacade_ExportImport_RoundTrip(t *testing.T) {
	f := New(rpgstore.NewMemoryStore())
	_, err := f.AddHighLevelNode("src/dirA", rpgmodel.NewSemanticFeature("d", nil, ""))
	require.NoError(t, err)

	data, err := f.ExportJSON(rpgstore.ExportConfig{Name: "repo"})
	require.NoError(t, err)

	f2 := New(rpgstore.NewMemoryStore())
	require.NoError(t, f2.ImportJSON(data))
	require.True(t, f2.HasNode("src/dirA:dir"))
}
