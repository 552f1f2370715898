//go:build !cgo

// Package syntaxprobe parses a source buffer under a named grammar and
// yields a flat, source-ordered list of entities (class/function/method) with
// spans, qualified names, and import records. This build lacks cgo, so the
// tree-sitter grammars are unavailable; every call returns an empty result,
// matching the "unsupported tag" behavior of the full implementation.
package syntaxprobe

import (
	"rpg/internal/rpgmodel"
	"rpg/internal/syntaxprobe/grammars"
)

// ImportKind is the closed set of ways a module can be brought into scope.
type ImportKind string

const (
	ImportStatement ImportKind = "import"
	ImportFrom      ImportKind = "from"
	ImportRequire   ImportKind = "require"
)

// Entity is one source-ordered code construct extracted from a file.
type Entity struct {
	Kind          rpgmodel.EntityKind
	Name          string
	QualifiedName string
	StartLine     int
	EndLine       int
	SourceSlice   string
}

// Import is one module reference extracted from a file's import statements.
type Import struct {
	Module string
	Kind   ImportKind
	Line   int
}

// Result is everything the probe extracts from a single source buffer.
type Result struct {
	Entities []Entity
	Imports  []Import
}

// CallSite is one call expression found by the optional call-site
// extraction sub-operation.
type CallSite struct {
	CalleeSymbol string
	CallerFile   string
	CallerEntity string
	Line         int
}

// Probe always returns an empty Result without cgo.
func Probe(source []byte, tag grammars.LanguageTag, filePath string) Result {
	return Result{}
}

// ExtractCallSites always returns nil without cgo.
func ExtractCallSites(source []byte, tag grammars.LanguageTag, callerFile string) []CallSite {
	return nil
}
