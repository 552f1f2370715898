package semantics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"rpg/internal/rpglog"
	"rpg/internal/rpgmodel"
)

// ExtractRequest describes the code entity to summarize.
type ExtractRequest struct {
	Kind                rpgmodel.EntityKind
	Name                string
	FilePath            string
	SourceText          string
	HasSourceText       bool
	ParentQualifiedName string
	HasParent           bool
}

// promptSnippetChars caps the source snippet a Describer sees at roughly
// 2000 tokens, using the 4-chars-per-token approximation from the prompt
// contract.
const promptSnippetChars = 2000 * 4

// Extractor produces a SemanticFeature for a code entity, preferring an
// external Describer when configured and falling back to a deterministic
// template + keyword split otherwise.
type Extractor struct {
	describer Describer
	cache     *Cache
	logger    *rpglog.Logger
}

// NewExtractor builds an Extractor. describer and cache are both optional;
// a nil describer always uses the heuristic fallback, and a nil cache
// disables caching.
func NewExtractor(describer Describer, cache *Cache, logger *rpglog.Logger) *Extractor {
	return &Extractor{describer: describer, cache: cache, logger: logger}
}

// Extract returns a SemanticFeature for req, consulting the cache first and
// populating it on miss.
func (e *Extractor) Extract(ctx context.Context, req ExtractRequest) rpgmodel.SemanticFeature {
	key := CacheKey(string(req.Kind), req.Name, req.FilePath, req.SourceText)

	if e.cache != nil {
		if feature, ok := e.cache.Get(key); ok {
			return feature
		}
	}

	feature := e.extractUncached(ctx, req)

	if e.cache != nil {
		e.cache.Put(key, feature)
	}
	return feature
}

func (e *Extractor) extractUncached(ctx context.Context, req ExtractRequest) rpgmodel.SemanticFeature {
	if e.describer != nil {
		snippet := req.SourceText
		if len(snippet) > promptSnippetChars {
			snippet = snippet[:promptSnippetChars]
		}
		descReq := DescribeRequest{
			Kind:          string(req.Kind),
			Name:          req.Name,
			FilePath:      req.FilePath,
			SourceSnippet: snippet,
			Parent:        req.ParentQualifiedName,
			HasParent:     req.HasParent,
		}
		resp, err := e.describer.Describe(ctx, descReq)
		if err == nil && resp.Description != "" {
			return rpgmodel.NewSemanticFeature(resp.Description, resp.Keywords, "")
		}
		if e.logger != nil {
			e.logger.Warn("describer failed, falling back to heuristic", map[string]interface{}{
				"kind": string(req.Kind), "name": req.Name, "filePath": req.FilePath, "error": errString(err),
			})
		}
	}

	return heuristicFeature(req)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// heuristicFeature builds the deterministic offline fallback: description
// "<kind> <name> in <filePath>", keywords from tokenized identifier
// fragments of name only; filePath does not contribute keywords.
func heuristicFeature(req ExtractRequest) rpgmodel.SemanticFeature {
	description := fmt.Sprintf("%s %s in %s", req.Kind, req.Name, req.FilePath)
	keywords := tokenizeIdentifier(req.Name)
	return rpgmodel.NewSemanticFeature(description, keywords, "")
}

// tokenizeIdentifier splits an identifier on camelCase and snake_case
// boundaries, lower-cases the fragments, deduplicates, and drops fragments
// shorter than 2 characters.
func tokenizeIdentifier(name string) []string {
	var fragments []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			fragments = append(fragments, current.String())
			current.Reset()
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || r == ':' || r == '/':
			flush()
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]):
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()

	seen := make(map[string]bool, len(fragments))
	out := make([]string, 0, len(fragments))
	for _, f := range fragments {
		lower := strings.ToLower(f)
		if len(lower) < 2 || seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, lower)
	}
	return out
}

// CacheKey computes the SHA-256 hash of the extraction inputs the spec
// keys the semantic cache by: (kind, name, filePath, sourceText).
func CacheKey(kind, name, filePath, sourceText string) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(filePath))
	h.Write([]byte{0})
	h.Write([]byte(sourceText))
	return hex.EncodeToString(h.Sum(nil))
}
