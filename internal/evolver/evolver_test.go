package evolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"rpg/internal/diffparser"
	"rpg/internal/rpgfacade"
	"rpg/internal/rpgmodel"
	"rpg/internal/rpgstore"
	"rpg/internal/router"
	"rpg/internal/semantics"
)

type fakeVcsProbe struct {
	nameStatus string
	files      map[string]map[string][]byte
}

func (f *fakeVcsProbe) NameStatus(ctx context.Context, repo, commitRange string) (string, error) {
	return f.nameStatus, nil
}

func (f *fakeVcsProbe) FileAtRevision(ctx context.Context, repo, rev, path string) ([]byte, bool, error) {
	byRev, ok := f.files[rev]
	if !ok {
		return nil, false, nil
	}
	content, ok := byRev[path]
	return content, ok, nil
}

func newTestEvolver(probe *fakeVcsProbe) (*Evolver, *rpgfacade.Facade) {
	store := rpgstore.NewMemoryStore()
	facade := rpgfacade.New(store)
	parser := diffparser.New("/repo", probe, nil)
	extractor := semantics.NewExtractor(nil, nil, nil)
	rtr := router.New(nil, nil)
	return New(facade, parser, extractor, rtr, nil, nil), facade
}

func TestRun_EmptyCommitRangeYieldsZeroCounters(t *testing.T) {
	probe := &fakeVcsProbe{nameStatus: ""}
	ev, _ := newTestEvolver(probe)

	result, err := ev.Run(context.Background(), DefaultEvolutionOptions())
	require.NoError(t, err)
	require.Zero(t, result.Inserted)
	require.Zero(t, result.Deleted)
	require.Zero(t, result.Modified)
	require.Zero(t, result.Rerouted)
	require.NotEmpty(t, result.RunID)
}

func TestRun_SingleAddInsertsFileNode(t *testing.T) {
	probe := &fakeVcsProbe{
		nameStatus: "A\tsrc/new.go\n",
		files: map[string]map[string][]byte{
			"B": {"src/new.go": []byte("package src\n\nfunc Foo() {}\n")},
		},
	}
	ev, facade := newTestEvolver(probe)

	opts := DefaultEvolutionOptions()
	opts.CommitRange = "A..B"
	result, err := ev.Run(context.Background(), opts)
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.Inserted, 1)
	require.True(t, facade.HasNode("src/new.go:file:src/new.go"))
}

func TestRun_OrphanPruneOnDelete(t *testing.T) {
	probe := &fakeVcsProbe{nameStatus: ""}
	ev, facade := newTestEvolver(probe)

	parent, err := facade.AddHighLevelNode("src/dirA", rpgmodel.NewSemanticFeature("dirA package", []string{"dira"}, ""))
	require.NoError(t, err)

	childMeta := rpgmodel.StructuralMetadata{FilePath: "src/dirA/x.go", EntityKind: rpgmodel.EntityFunction, QualifiedName: "foo"}
	child, err := facade.AddLowLevelNode(childMeta, rpgmodel.NewSemanticFeature("does a thing", []string{"thing"}, ""), "", false)
	require.NoError(t, err)
	require.NoError(t, facade.AddFunctionalEdge(parent.ID, child.ID, 0, 0, false, false))

	deleted, err := facade.RemoveNode(child.ID)
	require.NoError(t, err)
	pruned := ev.pruneOrphansFrom(functionalParentOf(deleted, child.ID))

	require.Equal(t, 1, pruned)
	require.False(t, facade.HasNode(parent.ID))
}

func TestRun_DriftReroutePicksBetterParent(t *testing.T) {
	probe := &fakeVcsProbe{
		nameStatus: "M\tsrc/x.go\n",
		files: map[string]map[string][]byte{
			"A": {"src/x.go": []byte("package src\n\nfunc foo() {}\n")},
			"B": {"src/x.go": []byte("package src\n\nfunc foo() { totallyDifferentBehaviorHere() }\n")},
		},
	}
	ev, facade := newTestEvolver(probe)

	dirA, err := facade.AddHighLevelNode("src/dirA", rpgmodel.NewSemanticFeature("networking and sockets", []string{"network", "socket"}, ""))
	require.NoError(t, err)
	dirB, err := facade.AddHighLevelNode("src/dirB", rpgmodel.NewSemanticFeature("function foo in src/x.go", []string{"function", "foo"}, ""))
	require.NoError(t, err)

	existingMeta := rpgmodel.StructuralMetadata{FilePath: "src/x.go", EntityKind: rpgmodel.EntityFunction, QualifiedName: "foo"}
	existing := rpgmodel.NewLowLevelNode("src/x.go:function:foo", rpgmodel.NewSemanticFeature("handles socket networking", []string{"socket", "networking"}, ""), existingMeta, "", false)
	require.NoError(t, facade.Store().AddNode(existing))
	require.NoError(t, facade.AddFunctionalEdge(dirA.ID, existing.ID, 0, 0, false, false))

	opts := DefaultEvolutionOptions()
	opts.CommitRange = "A..B"
	result, err := ev.Run(context.Background(), opts)
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.Rerouted, 1)

	parent, ok, err := facade.GetParent("src/x.go:function:foo")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, dirB.ID, parent.ID)
}

func TestRun_MatchingDescriptionDriftIsInPlaceUpdate(t *testing.T) {
	oldSource := []byte("package src\n\nfunc foo() {}\n")
	newSource := []byte("package src\n\n// unrelated comment\nfunc foo() {}\n")
	probe := &fakeVcsProbe{
		nameStatus: "M\tsrc/x.go\n",
		files: map[string]map[string][]byte{
			"A": {"src/x.go": oldSource},
			"B": {"src/x.go": newSource},
		},
	}
	ev, facade := newTestEvolver(probe)

	fileMeta := rpgmodel.StructuralMetadata{FilePath: "src/x.go", EntityKind: rpgmodel.EntityFile, QualifiedName: "src/x.go"}
	fileNode := rpgmodel.NewLowLevelNode("src/x.go:file:src/x.go", rpgmodel.NewSemanticFeature("file src/x.go in src/x.go", []string{"src", "go"}, ""), fileMeta, string(oldSource), true)
	require.NoError(t, facade.Store().AddNode(fileNode))

	opts := DefaultEvolutionOptions()
	opts.CommitRange = "A..B"
	result, err := ev.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Zero(t, result.Rerouted)
	require.GreaterOrEqual(t, result.Modified, 1)
}

func TestRun_DependencyInjectionOnRelativeImport(t *testing.T) {
	probe := &fakeVcsProbe{
		nameStatus: "A\tsrc/a.ts\n",
		files: map[string]map[string][]byte{
			"B": {"src/a.ts": []byte("import './b';\nfunction f() {}\n")},
		},
	}
	ev, facade := newTestEvolver(probe)

	bMeta := rpgmodel.StructuralMetadata{FilePath: "src/b.ts", EntityKind: rpgmodel.EntityFile, QualifiedName: "src/b.ts"}
	bNode := rpgmodel.NewLowLevelNode("src/b.ts:file:src/b.ts", rpgmodel.NewSemanticFeature("file src/b.ts", nil, ""), bMeta, "", false)
	require.NoError(t, facade.Store().AddNode(bNode))

	opts := DefaultEvolutionOptions()
	opts.CommitRange = "A..B"
	_, err := ev.Run(context.Background(), opts)
	require.NoError(t, err)

	deps, err := facade.GetDependencies("src/a.ts:file:src/a.ts")
	require.NoError(t, err)
	var depIDs []string
	for _, d := range deps {
		depIDs = append(depIDs, d.ID)
	}
	require.Contains(t, depIDs, "src/b.ts:file:src/b.ts")
}
