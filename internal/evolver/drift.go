package evolver

import (
	"context"
	"math"
	"strings"

	"rpg/internal/rpgmodel"
	"rpg/internal/semantics"
)

// computeDrift measures the normalized distance between an entity's old and
// new SemanticFeature, in [0,1]. An embedder is preferred when configured;
// otherwise the fallback chain is keyword-set Jaccard, then description
// token Jaccard when both keyword sets are empty, landing on 0 when both
// descriptions also contain no tokens.
func computeDrift(ctx context.Context, oldFeature, newFeature rpgmodel.SemanticFeature, embedder semantics.Embedder) float64 {
	if oldFeature.IsZero() {
		return 1.0
	}

	if embedder != nil {
		oldVector, errOld := embedder.Embed(ctx, oldFeature.Description())
		newVector, errNew := embedder.Embed(ctx, newFeature.Description())
		if errOld == nil && errNew == nil {
			return 1 - cosineSimilarity(oldVector, newVector)
		}
	}

	oldKeywords, newKeywords := oldFeature.Keywords(), newFeature.Keywords()
	if len(oldKeywords) == 0 && len(newKeywords) == 0 {
		if len(strings.Fields(oldFeature.Description())) == 0 && len(strings.Fields(newFeature.Description())) == 0 {
			return 0
		}
		return 1 - tokenJaccard(oldFeature.Description(), newFeature.Description())
	}

	return 1 - setJaccard(oldKeywords, newKeywords)
}

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

func setJaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	intersection := 0
	for k := range setA {
		if setB[k] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenJaccard(a, b string) float64 {
	return setJaccard(strings.Fields(strings.ToLower(a)), strings.Fields(strings.ToLower(b)))
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}
