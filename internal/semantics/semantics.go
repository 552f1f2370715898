// Package semantics produces SemanticFeatures for code entities, either via
// an external Describer/Embedder or a deterministic offline fallback, and
// caches extraction results across an evolution pass.
package semantics

import "context"

// DescribeRequest is the input to a Describer call.
type DescribeRequest struct {
	Kind          string
	Name          string
	FilePath      string
	SourceSnippet string
	Parent        string
	HasParent     bool
}

// DescribeResponse is a Describer's structured answer.
type DescribeResponse struct {
	Description string
	Keywords    []string
}

// Describer is an external language-model client that turns a code entity
// into a natural-language description and keyword set. Implementations must
// cap the source snippet at roughly 2000 tokens (~4 chars/token) plus 200
// tokens of prompt overhead.
type Describer interface {
	Describe(ctx context.Context, req DescribeRequest) (DescribeResponse, error)
}

// Embedder turns text into a fixed-dimension vector. Dimension is
// provider-specific but must stay constant within a single run.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Arbiter is an external model client the router uses to pick among top-K
// candidates. It is a separate interface from Describer, with its own
// Arbitrate method.
type Arbiter interface {
	Arbitrate(ctx context.Context, candidateDescriptions []string, candidateIDs []string, newDescription string) (chosenID string, err error)
}
