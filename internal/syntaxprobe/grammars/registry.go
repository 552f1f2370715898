//go:build cgo

// Package grammars wraps the tree-sitter grammars the Syntax Probe walks.
// It owns grammar selection only; the Probe owns AST interpretation.
package grammars

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"rpg/internal/rpgmodel"
)

// LanguageTag identifies one of the probe's closed set of supported
// languages. Tags outside this set are simply absent from the Registry.
type LanguageTag string

const (
	LangTypeScript LanguageTag = "typescript"
	LangJavaScript LanguageTag = "javascript"
	LangPython     LanguageTag = "python"
	LangRust       LanguageTag = "rust"
	LangGo         LanguageTag = "go"
	LangJava       LanguageTag = "java"
)

// GrammarSet is the contract each language tag satisfies: a parser handle,
// a map from grammar node kind to the entity kind it represents, and the
// node kinds that carry import/require statements.
type GrammarSet struct {
	Tag             LanguageTag
	Language        *sitter.Language
	EntityNodeKinds map[string]rpgmodel.EntityKind
	ImportNodeKinds []string
}

var registry = map[LanguageTag]GrammarSet{
	LangGo: {
		Tag:      LangGo,
		Language: golang.GetLanguage(),
		EntityNodeKinds: map[string]rpgmodel.EntityKind{
			"function_declaration": rpgmodel.EntityFunction,
			"method_declaration":   rpgmodel.EntityMethod,
			"func_literal":         rpgmodel.EntityFunction,
			"type_declaration":     rpgmodel.EntityClass,
		},
		ImportNodeKinds: []string{"import_declaration", "import_spec"},
	},
	LangJavaScript: {
		Tag:      LangJavaScript,
		Language: javascript.GetLanguage(),
		EntityNodeKinds: map[string]rpgmodel.EntityKind{
			"function_declaration":           rpgmodel.EntityFunction,
			"function_expression":            rpgmodel.EntityFunction,
			"arrow_function":                 rpgmodel.EntityFunction,
			"generator_function_declaration": rpgmodel.EntityFunction,
			"method_definition":              rpgmodel.EntityMethod,
			"class_declaration":              rpgmodel.EntityClass,
		},
		ImportNodeKinds: []string{"import_statement"},
	},
	LangTypeScript: {
		Tag:      LangTypeScript,
		Language: typescript.GetLanguage(),
		EntityNodeKinds: map[string]rpgmodel.EntityKind{
			"function_declaration":           rpgmodel.EntityFunction,
			"function_expression":            rpgmodel.EntityFunction,
			"arrow_function":                 rpgmodel.EntityFunction,
			"generator_function_declaration": rpgmodel.EntityFunction,
			"method_definition":              rpgmodel.EntityMethod,
			"class_declaration":               rpgmodel.EntityClass,
			"interface_declaration":           rpgmodel.EntityClass,
		},
		ImportNodeKinds: []string{"import_statement"},
	},
	LangPython: {
		Tag:      LangPython,
		Language: python.GetLanguage(),
		EntityNodeKinds: map[string]rpgmodel.EntityKind{
			"function_definition": rpgmodel.EntityFunction,
			"lambda":               rpgmodel.EntityFunction,
			"class_definition":     rpgmodel.EntityClass,
		},
		ImportNodeKinds: []string{"import_statement", "import_from_statement"},
	},
	LangRust: {
		Tag:      LangRust,
		Language: rust.GetLanguage(),
		EntityNodeKinds: map[string]rpgmodel.EntityKind{
			"function_item":     rpgmodel.EntityFunction,
			"closure_expression": rpgmodel.EntityFunction,
			"struct_item":       rpgmodel.EntityClass,
			"impl_item":         rpgmodel.EntityClass,
		},
		ImportNodeKinds: []string{"use_declaration"},
	},
	LangJava: {
		Tag:      LangJava,
		Language: java.GetLanguage(),
		EntityNodeKinds: map[string]rpgmodel.EntityKind{
			"method_declaration":      rpgmodel.EntityMethod,
			"constructor_declaration": rpgmodel.EntityMethod,
			"lambda_expression":       rpgmodel.EntityFunction,
			"class_declaration":       rpgmodel.EntityClass,
			"interface_declaration":   rpgmodel.EntityClass,
		},
		ImportNodeKinds: []string{"import_declaration"},
	},
}

// Get returns the GrammarSet for tag, if the probe supports it.
func Get(tag LanguageTag) (GrammarSet, bool) {
	gs, ok := registry[tag]
	return gs, ok
}

// TagFromExtension maps a file extension (including the leading dot) to a
// supported language tag. TSX and JSX map onto the TypeScript/JavaScript
// grammars respectively since the probe's closed set has no separate tag
// for them.
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
