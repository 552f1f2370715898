//go:build cgo

package syntaxprobe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rpg/internal/rpgmodel"
	"rpg/internal/syntaxprobe/grammars"
)

func TestProbe_GoFunctionsAndMethods(t *testing.T) {
	source := []byte(`package pkg

import "fixture/internal"

type Handler struct {
	service Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{service: svc}
}

func (h *Handler) Handle(input string) string {
	result := h.service.Process(input)
	return internal.FormatOutput(result)
}
`)

	result := Probe(source, grammars.LangGo, "pkg/handler.go")
	require.NotEmpty(t, result.Entities)

	var names []string
	for _, e := range result.Entities {
		names = append(names, e.Name)
	}
	require.Contains(t, names, "Handler")
	require.Contains(t, names, "NewHandler")
	require.Contains(t, names, "Handle")

	for _, e := range result.Entities {
		if e.Name == "NewHandler" {
			require.Equal(t, rpgmodel.EntityFunction, e.Kind)
		}
		if e.Name == "Handle" {
			require.Equal(t, rpgmodel.EntityMethod, e.Kind)
		}
		if e.Name == "Handler" {
			require.Equal(t, rpgmodel.EntityClass, e.Kind)
		}
		require.Greater(t, e.EndLine, 0)
		require.GreaterOrEqual(t, e.EndLine, e.StartLine)
		require.NotEmpty(t, e.SourceSlice)
	}
}

func TestProbe_GoImports(t *testing.T) {
	source := []byte(`package main

import (
	"fixture/pkg"
	"fixture/internal"
)

func main() {}
`)

	result := Probe(source, grammars.LangGo, "main.go")
	var modules []string
	for _, imp := range result.Imports {
		modules = append(modules, imp.Module)
	}
	require.Contains(t, modules, "fixture/pkg")
	require.Contains(t, modules, "fixture/internal")
}

func TestProbe_UnsupportedTagYieldsEmpty(t *testing.T) {
	result := Probe([]byte("whatever"), grammars.LanguageTag("cobol"), "x.cbl")
	require.Empty(t, result.Entities)
	require.Empty(t, result.Imports)
}

func TestProbe_MalformedSourceYieldsEmptyOrPartial(t *testing.T) {
	// tree-sitter is error-tolerant; a syntax error should never panic or
	// return an error, only possibly fewer entities.
	require.NotPanics(t, func() {
		Probe([]byte("func ((( broken"), grammars.LangGo, "broken.go")
	})
}

func TestProbe_QualifiedNameNesting(t *testing.T) {
	source := []byte(`package pkg

func Outer() {
	inner := func() {
		_ = 1
	}
	inner()
}
`)
	result := Probe(source, grammars.LangGo, "pkg/nested.go")
	var qualified []string
	for _, e := range result.Entities {
		qualified = append(qualified, e.QualifiedName)
	}
	require.Contains(t, qualified, "Outer")
}

func TestExtractCallSites_Go(t *testing.T) {
	source := []byte(`package pkg

func Handle() string {
	result := service.Process("x")
	return internal.FormatOutput(result)
}
`)
	sites := ExtractCallSites(source, grammars.LangGo, "pkg/handler.go")
	require.NotEmpty(t, sites)

	var callees []string
	for _, s := range sites {
		callees = append(callees, s.CalleeSymbol)
	}
	require.Contains(t, callees, "Process")
	require.Contains(t, callees, "FormatOutput")

	for _, s := range sites {
		require.Equal(t, "Handle", s.CallerEntity)
	}
}

func TestExtractCallSites_Go_CallerEntityIsReceiverQualified(t *testing.T) {
	source := []byte(`package pkg

func (s *Service) Process(input string) string {
	return internal.FormatOutput(input)
}
`)
	sites := ExtractCallSites(source, grammars.LangGo, "pkg/service.go")
	require.NotEmpty(t, sites)

	for _, s := range sites {
		require.Equal(t, "Service.Process", s.CallerEntity)
	}
}
