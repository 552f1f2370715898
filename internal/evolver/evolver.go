// Package evolver reconciles the Repository Planning Graph against a new
// range of commits: it schedules deletions, modifications, and insertions
// in that strict order, measures semantic drift on modified entities,
// re-routes drifted entities to a new parent, and injects dependency edges
// for newly resolvable relative imports.
package evolver

import (
	"context"
	"encoding/hex"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"rpg/internal/diffparser"
	"rpg/internal/rpgfacade"
	"rpg/internal/rpgid"
	"rpg/internal/rpglog"
	"rpg/internal/rpgmodel"
	"rpg/internal/router"
	"rpg/internal/semantics"
)

// relativeImportExtensions are tried in order when resolving a relative
// import to a file already present in the graph.
var relativeImportExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".py", ""}

// EvolutionOptions configures one evolution pass.
type EvolutionOptions struct {
	RepoPath       string
	CommitRange    string
	DriftThreshold float64
	UseLLM         bool
	IncludeSource  bool
	Parallel       bool
	Workers        int
}

// DefaultEvolutionOptions returns the spec's stated defaults.
func DefaultEvolutionOptions() EvolutionOptions {
	return EvolutionOptions{DriftThreshold: 0.4, Workers: 4}
}

// Result reports what one evolution pass did.
type Result struct {
	Inserted    int
	Deleted     int
	Modified    int
	Rerouted    int
	PrunedNodes int
	LLMCalls    int
	DurationMs  int64
	RunID       string
	RunDigest   string
}

// Evolver orchestrates one evolution pass over a graph.
type Evolver struct {
	facade    *rpgfacade.Facade
	diffs     *diffparser.Parser
	extractor *semantics.Extractor
	router    *router.Router
	embedder  semantics.Embedder
	logger    *rpglog.Logger
}

// New builds an Evolver. embedder is optional: without it, drift falls back
// to keyword/description Jaccard.
func New(facade *rpgfacade.Facade, diffs *diffparser.Parser, extractor *semantics.Extractor, rtr *router.Router, embedder semantics.Embedder, logger *rpglog.Logger) *Evolver {
	return &Evolver{facade: facade, diffs: diffs, extractor: extractor, router: rtr, embedder: embedder, logger: logger}
}

func (e *Evolver) warn(message string, fields map[string]interface{}) {
	if e.logger != nil {
		e.logger.Warn(message, fields)
	}
}

// Run executes exactly one pass: delete, modify, insert, in that order.
func (e *Evolver) Run(ctx context.Context, opts EvolutionOptions) (Result, error) {
	start := time.Now()

	diff, err := e.diffs.Parse(ctx, opts.CommitRange)
	if err != nil {
		return Result{}, err
	}

	result := Result{RunID: uuid.NewString()}
	result.RunDigest = digestChangedEntities(diff)

	e.runDeleteStage(diff.Deletions, &result)
	e.runModifyStage(ctx, diff.Modifications, opts, &result)
	e.runInsertStage(ctx, diff.Insertions, opts, &result)

	result.LLMCalls = e.router.LLMCalls()
	result.DurationMs = time.Since(start).Milliseconds()
	return result, nil
}

// runDeleteStage removes every deleted entity and prunes orphaned
// HighLevelNode ancestors, in ID-ascending order.
func (e *Evolver) runDeleteStage(deletions []diffparser.ChangedEntity, result *Result) {
	sorted := append([]diffparser.ChangedEntity(nil), deletions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, ce := range sorted {
		if !e.facade.HasNode(ce.ID) {
			continue // idempotent: absent ID is a zero-prune no-op
		}
		removedEdges, err := e.facade.RemoveNode(ce.ID)
		if err != nil {
			e.warn("failed removing deleted entity", map[string]interface{}{"id": ce.ID, "error": err.Error()})
			continue
		}
		result.Deleted++
		if parentID := functionalParentOf(removedEdges, ce.ID); parentID != "" {
			result.PrunedNodes += e.pruneOrphansFrom(parentID)
		}
	}
}

// pruneOrphansFrom walks upward from parentID, removing any HighLevelNode
// ancestor left with no children, and recursing to its own parent.
func (e *Evolver) pruneOrphansFrom(parentID string) int {
	pruned := 0
	for parentID != "" {
		node, ok := e.facade.GetNode(parentID)
		if !ok || node.Type != rpgmodel.NodeHighLevel {
			break
		}
		children, err := e.facade.GetChildren(parentID)
		if err != nil || len(children) > 0 {
			break
		}
		var nextID string
		if grandparent, hasGrandparent, err := e.facade.GetParent(parentID); err == nil && hasGrandparent {
			nextID = grandparent.ID
		}
		if _, err := e.facade.RemoveNode(parentID); err != nil {
			break
		}
		pruned++
		parentID = nextID
	}
	return pruned
}

func functionalParentOf(edges []rpgmodel.Edge, childID string) string {
	for _, edge := range edges {
		if edge.Type == rpgmodel.EdgeFunctional && edge.Target == childID {
			return edge.Source
		}
	}
	return ""
}

// runModifyStage locates each modification's existing node, computes drift,
// and either reroutes (delete+insert) or updates in place. A modification
// whose old side cannot be located degenerates to a plain insertion.
func (e *Evolver) runModifyStage(ctx context.Context, modifications []diffparser.Modification, opts EvolutionOptions, result *Result) {
	sorted := append([]diffparser.Modification(nil), modifications...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].New.ID < sorted[j].New.ID })

	requests := make([]semantics.ExtractRequest, len(sorted))
	for i, mod := range sorted {
		requests[i] = extractRequestFor(mod.New)
	}
	features := e.extractFeatures(ctx, requests, opts.Parallel, opts.Workers)

	for i, mod := range sorted {
		existing, found := e.locateExisting(mod.Old)
		if !found {
			if _, ok := e.insertWithFeature(ctx, mod.New, features[i], opts); ok {
				result.Inserted++
			}
			continue
		}

		newFeature := features[i]
		drift := computeDrift(ctx, existing.Feature, newFeature, e.embedder)

		if drift > opts.DriftThreshold {
			removedEdges, err := e.facade.RemoveNode(existing.ID)
			if err != nil {
				e.warn("failed removing entity for reroute", map[string]interface{}{"id": existing.ID, "error": err.Error()})
				continue
			}
			if parentID := functionalParentOf(removedEdges, existing.ID); parentID != "" {
				result.PrunedNodes += e.pruneOrphansFrom(parentID)
			}
			if _, ok := e.insertWithFeature(ctx, mod.New, newFeature, opts); ok {
				result.Rerouted++
			}
			continue
		}

		updated := rebuildForUpdate(existing, newFeature, mod.New, opts.IncludeSource)
		if err := e.facade.UpdateNode(existing.ID, updated); err != nil {
			e.warn("failed updating entity in place", map[string]interface{}{"id": existing.ID, "error": err.Error()})
			continue
		}
		result.Modified++
	}
}

// locateExisting finds the graph node an old ChangedEntity refers to: first
// by exact ID, then by the (filePath, entityType, entityName) prefix that
// tolerates a startLine mismatch between initial-encoding and
// evolution-produced IDs.
func (e *Evolver) locateExisting(old diffparser.ChangedEntity) (rpgmodel.Node, bool) {
	if node, ok := e.facade.GetNode(old.ID); ok {
		return node, true
	}

	nodes, err := e.facade.Store().AllNodes()
	if err != nil {
		return rpgmodel.Node{}, false
	}
	for _, node := range nodes {
		if node.Type != rpgmodel.NodeLowLevel {
			continue
		}
		if rpgid.HasPrefix(node.ID, old.FilePath, old.EntityType, old.QualifiedName) {
			return node, true
		}
	}
	return rpgmodel.Node{}, false
}

func rebuildForUpdate(existing rpgmodel.Node, feature rpgmodel.SemanticFeature, ce diffparser.ChangedEntity, includeSource bool) rpgmodel.Node {
	metadata := existing.Metadata
	metadata.QualifiedName = ce.QualifiedName
	metadata.StartLine = ce.StartLine
	metadata.EndLine = ce.EndLine

	sourceText := existing.SourceText
	hasSource := existing.HasSourceText()
	if includeSource {
		sourceText = ce.SourceCode
		hasSource = true
	}
	return rpgmodel.NewLowLevelNode(existing.ID, feature, metadata, sourceText, hasSource)
}

// runInsertStage extracts a feature and finds a parent for every inserted
// entity, in ID-ascending order.
func (e *Evolver) runInsertStage(ctx context.Context, insertions []diffparser.ChangedEntity, opts EvolutionOptions, result *Result) {
	sorted := append([]diffparser.ChangedEntity(nil), insertions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	requests := make([]semantics.ExtractRequest, len(sorted))
	for i, ce := range sorted {
		requests[i] = extractRequestFor(ce)
	}
	features := e.extractFeatures(ctx, requests, opts.Parallel, opts.Workers)

	for i, ce := range sorted {
		if _, ok := e.insertWithFeature(ctx, ce, features[i], opts); ok {
			result.Inserted++
		}
	}
}

// insertWithFeature creates the LowLevelNode, routes it to a parent, and
// (for file-level entities) injects dependency edges for resolvable
// relative imports. A failed parent-edge insertion reverts the node.
func (e *Evolver) insertWithFeature(ctx context.Context, ce diffparser.ChangedEntity, feature rpgmodel.SemanticFeature, opts EvolutionOptions) (rpgmodel.Node, bool) {
	metadata := rpgmodel.StructuralMetadata{
		FilePath:      ce.FilePath,
		EntityKind:    ce.EntityType,
		QualifiedName: ce.QualifiedName,
		StartLine:     ce.StartLine,
		EndLine:       ce.EndLine,
	}

	node, err := e.facade.AddLowLevelNode(metadata, feature, ce.SourceCode, opts.IncludeSource)
	if err != nil {
		e.warn("failed inserting entity", map[string]interface{}{"id": ce.ID, "error": err.Error()})
		return rpgmodel.Node{}, false
	}

	parentID, found := e.findParent(ctx, feature.Description())
	if found {
		if err := e.facade.AddFunctionalEdge(parentID, node.ID, 0, 0, false, false); err != nil {
			e.warn("failed adding parent edge, reverting insert", map[string]interface{}{"id": node.ID, "error": err.Error()})
			_, _ = e.facade.RemoveNode(node.ID)
			return rpgmodel.Node{}, false
		}
	}

	if ce.EntityType == rpgmodel.EntityFile {
		e.injectDependencyEdges(node, ce)
	}

	return node, true
}

func (e *Evolver) findParent(ctx context.Context, description string) (string, bool) {
	nodes, err := e.facade.AllHighLevelNodes()
	if err != nil {
		return "", false
	}
	candidates := router.CandidatesFromNodes(nodes)
	return e.router.FindBestParent(ctx, description, candidates)
}

// injectDependencyEdges resolves each relative import the syntax probe
// found for a file entity against files already present in the graph.
// Pre-existing edges and self-edges are silently ignored.
func (e *Evolver) injectDependencyEdges(node rpgmodel.Node, ce diffparser.ChangedEntity) {
	baseDir := filepath.Dir(ce.FilePath)
	for _, imp := range ce.Imports {
		if !strings.HasPrefix(imp.Module, ".") {
			continue
		}
		resolved := filepath.Clean(filepath.Join(baseDir, imp.Module))
		for _, ext := range relativeImportExtensions {
			candidatePath := resolved + ext
			candidateID := rpgid.LowLevel(candidatePath, rpgmodel.EntityFile, candidatePath, 0)
			if candidateID == node.ID {
				break
			}
			if !e.facade.HasNode(candidateID) {
				continue
			}
			_ = e.facade.AddDependencyEdge(node.ID, candidateID, rpgmodel.DependencyImport, false, false, imp.Line, imp.Line > 0)
			break
		}
	}
}

func extractRequestFor(ce diffparser.ChangedEntity) semantics.ExtractRequest {
	return semantics.ExtractRequest{
		Kind:          ce.EntityType,
		Name:          ce.EntityName,
		FilePath:      ce.FilePath,
		SourceText:    ce.SourceCode,
		HasSourceText: ce.SourceCode != "",
	}
}

// extractFeatures runs extraction for every request, optionally fanning out
// across a bounded worker pool. Results preserve input order regardless of
// completion order, since actual graph mutation always happens serially
// afterward in ID-ascending order.
func (e *Evolver) extractFeatures(ctx context.Context, requests []semantics.ExtractRequest, parallel bool, workers int) []rpgmodel.SemanticFeature {
	out := make([]rpgmodel.SemanticFeature, len(requests))
	if !parallel || workers <= 1 || len(requests) <= 1 {
		for i, req := range requests {
			out[i] = e.extractor.Extract(ctx, req)
		}
		return out
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, req := range requests {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, req semantics.ExtractRequest) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = e.extractor.Extract(ctx, req)
		}(i, req)
	}
	wg.Wait()
	return out
}

func digestChangedEntities(diff diffparser.DiffResult) string {
	var ids []string
	for _, ce := range diff.Deletions {
		ids = append(ids, ce.ID)
	}
	for _, mod := range diff.Modifications {
		ids = append(ids, mod.Old.ID, mod.New.ID)
	}
	for _, ce := range diff.Insertions {
		ids = append(ids, ce.ID)
	}
	sort.Strings(ids)

	sum := blake2b.Sum256([]byte(strings.Join(ids, "\n")))
	return hex.EncodeToString(sum[:])
}
