//go:build !cgo

// Package grammars wraps the tree-sitter grammars the Syntax Probe walks.
// This stub is used when CGO is not available: tag resolution still works
// so callers can decide a file is in scope, but no grammar handle exists.
package grammars

import "rpg/internal/rpgmodel"

type LanguageTag string

const (
	LangTypeScript LanguageTag = "typescript"
	LangJavaScript LanguageTag = "javascript"
	LangPython     LanguageTag = "python"
	LangRust       LanguageTag = "rust"
	LangGo         LanguageTag = "go"
	LangJava       LanguageTag = "java"
)

// GrammarSet mirrors the cgo build's shape but Language is always nil.
type GrammarSet struct {
	Tag             LanguageTag
	Language        interface{}
	EntityNodeKinds map[string]rpgmodel.EntityKind
	ImportNodeKinds []string
}

func Get(tag LanguageTag) (GrammarSet, bool) {
	return GrammarSet{}, false
}

func TagFromExtension(ext string) (LanguageTag, bool) {
	switch ext {
	case ".ts", ".mts", ".cts", ".tsx":
		return LangTypeScript, true
	case ".js", ".mjs", ".cjs", ".jsx":
		return LangJavaScript, true
	case ".py", ".pyw":
		return LangPython, true
	case ".rs":
		return LangRust, true
	case ".go":
		return LangGo, true
	case ".java":
		return LangJava, true
	default:
		return "", false
	}
}
