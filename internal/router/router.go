// Package router picks the best parent HighLevelNode for a new low-level
// entity by ranking description similarity, optionally arbitrated by an
// external language model.
package router

import (
	"context"
	"math"
	"sort"
	"strings"

	"rpg/internal/rpgmodel"
	"rpg/internal/semantics"
)

// topK is the number of ranked candidates offered to an external arbiter.
const topK = 5

// Candidate is one HighLevelNode considered as a parent.
type Candidate struct {
	ID          string
	Description string
}

// Router finds the best parent HighLevelNode for a new entity's description.
type Router struct {
	embedder semantics.Embedder
	arbiter  semantics.Arbiter
	llmCalls int
	topK     int
}

// New builds a Router. embedder and arbiter are both optional: without an
// embedder, similarity falls back to token-set Jaccard; without an arbiter,
// the top-ranked candidate is always chosen.
func New(embedder semantics.Embedder, arbiter semantics.Arbiter) *Router {
	return &Router{embedder: embedder, arbiter: arbiter, topK: topK}
}

// WithTunables overrides the router's top-K from a loaded Tunables file.
func (r *Router) WithTunables(t Tunables) *Router {
	r.topK = t.ApplyTopK()
	return r
}

// LLMCalls returns the number of external arbiter calls made so far.
func (r *Router) LLMCalls() int { return r.llmCalls }

// scored pairs a candidate with its similarity score for ranking.
type scored struct {
	candidate Candidate
	score     float64
}

// FindBestParent ranks candidates against newDescription and returns the
// chosen parent ID, or "" if candidates is empty.
func (r *Router) FindBestParent(ctx context.Context, newDescription string, candidates []Candidate) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	ranked := r.rank(ctx, newDescription, candidates)

	k := r.topK
	if k == 0 {
		k = topK
	}
	top := ranked
	if len(top) > k {
		top = top[:k]
	}

	if r.arbiter != nil {
		descriptions := make([]string, len(top))
		ids := make([]string, len(top))
		for i, c := range top {
			descriptions[i] = c.candidate.Description
			ids[i] = c.candidate.ID
		}
		r.llmCalls++
		chosen, err := r.arbiter.Arbitrate(ctx, descriptions, ids, newDescription)
		if err == nil && containsID(ids, chosen) {
			return chosen, true
		}
	}

	return top[0].candidate.ID, true
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

// rank scores every candidate and returns them sorted by descending score,
// ties broken by ascending ID.
func (r *Router) rank(ctx context.Context, newDescription string, candidates []Candidate) []scored {
	var newEmbedding []float64
	if r.embedder != nil {
		if v, err := r.embedder.Embed(ctx, newDescription); err == nil {
			newEmbedding = v
		}
	}

	out := make([]scored, len(candidates))
	for i, c := range candidates {
		var score float64
		if newEmbedding != nil {
			if candEmbedding, err := r.embedder.Embed(ctx, c.Description); err == nil {
				score = cosineSimilarity(newEmbedding, candEmbedding)
			} else {
				score = jaccard(newDescription, c.Description)
			}
		} else {
			score = jaccard(newDescription, c.Description)
		}
		out[i] = scored{candidate: c, score: score}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].candidate.ID < out[j].candidate.ID
	})
	return out
}

// cosineSimilarity computes the cosine of two equal-length vectors. A
// dimension mismatch or zero vector yields 0.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// jaccard computes the token-set Jaccard similarity between two strings,
// tokenized on whitespace after lower-casing.
func jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	tokens := strings.Fields(strings.ToLower(s))
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[tok] = true
	}
	return set
}

// CandidatesFromNodes converts a set of HighLevelNode graph nodes into
// ranking candidates, ignoring any node that isn't a high-level node.
func CandidatesFromNodes(nodes []rpgmodel.Node) []Candidate {
	out := make([]Candidate, 0, len(nodes))
	for _, n := range nodes {
		if n.Type != rpgmodel.NodeHighLevel {
			continue
		}
		out = append(out, Candidate{ID: n.ID, Description: n.Feature.Description()})
	}
	return out
}
