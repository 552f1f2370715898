package semantics

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"rpg/internal/rpgmodel"
)

func TestExtract_HeuristicFallback(t *testing.T) {
	extractor := NewExtractor(nil, nil, nil)

	feature := extractor.Extract(context.Background(), ExtractRequest{
		Kind:     rpgmodel.EntityFunction,
		Name:     "handleUserRequest",
		FilePath: "pkg/handler.go",
	})

	require.Equal(t, "function handleUserRequest in pkg/handler.go", feature.Description())
	require.Contains(t, feature.Keywords(), "handle")
	require.Contains(t, feature.Keywords(), "user")
	require.Contains(t, feature.Keywords(), "request")
}

func TestTokenizeIdentifier_SnakeCase(t *testing.T) {
	tokens := tokenizeIdentifier("format_output_value")
	require.Equal(t, []string{"format", "output", "value"}, tokens)
}

func TestTokenizeIdentifier_DropsShortFragments(t *testing.T) {
	tokens := tokenizeIdentifier("aXaB")
	for _, tok := range tokens {
		require.GreaterOrEqual(t, len(tok), 2)
	}
}

type fakeDescriber struct {
	resp DescribeResponse
	err  error
}

func (f *fakeDescriber) Describe(ctx context.Context, req DescribeRequest) (DescribeResponse, error) {
	return f.resp, f.err
}

func TestExtract_UsesDescriberWhenConfigured(t *testing.T) {
	describer := &fakeDescriber{resp: DescribeResponse{Description: "handles a thing", Keywords: []string{"a", "b"}}}
	extractor := NewExtractor(describer, nil, nil)

	feature := extractor.Extract(context.Background(), ExtractRequest{
		Kind: rpgmodel.EntityFunction, Name: "f", FilePath: "x.go",
	})

	require.Equal(t, "handles a thing", feature.Description())
}

func TestExtract_FallsBackOnDescriberError(t *testing.T) {
	describer := &fakeDescriber{err: errors.New("model unavailable")}
	extractor := NewExtractor(describer, nil, nil)

	feature := extractor.Extract(context.Background(), ExtractRequest{
		Kind: rpgmodel.EntityFunction, Name: "f", FilePath: "x.go",
	})

	require.Equal(t, "function f in x.go", feature.Description())
}

func TestExtract_CachesAcrossCalls(t *testing.T) {
	calls := 0
	describer := describerFunc(func(ctx context.Context, req DescribeRequest) (DescribeResponse, error) {
		calls++
		return DescribeResponse{Description: "described once"}, nil
	})
	cache := NewCache(filepath.Join(t.TempDir(), "cache.json"))
	extractor := NewExtractor(describer, cache, nil)

	req := ExtractRequest{Kind: rpgmodel.EntityFunction, Name: "f", FilePath: "x.go", SourceText: "func f() {}"}
	first := extractor.Extract(context.Background(), req)
	second := extractor.Extract(context.Background(), req)

	require.Equal(t, first.Description(), second.Description())
	require.Equal(t, 1, calls)
}

type describerFunc func(ctx context.Context, req DescribeRequest) (DescribeResponse, error)

func (f describerFunc) Describe(ctx context.Context, req DescribeRequest) (DescribeResponse, error) {
	return f(ctx, req)
}

func TestCacheKey_StableAndDistinguishing(t *testing.T) {
	k1 := CacheKey("function", "f", "x.go", "func f() {}")
	k2 := CacheKey("function", "f", "x.go", "func f() {}")
	k3 := CacheKey("function", "f", "x.go", "func f() { return }")

	require.Equal(t, k1, k2)
	require.NotEqual(t, k1, k3)
}
