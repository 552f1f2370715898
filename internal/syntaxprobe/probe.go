//go:build cgo

// Package syntaxprobe parses a source buffer under a named grammar and
// yields a flat, source-ordered list of entities (class/function/method) with
// spans, qualified names, and import records. Grammar selection is by
// language tag; unsupported tags and parse failures both yield an empty
// result rather than an error, so callers can treat the file as opaque.
package syntaxprobe

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

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

// Probe parses source under the grammar named by tag and returns its
// entities and imports in source order. filePath is used only for
// attribution in the returned Entity/Import values, not for I/O. An
// unsupported tag or a parse failure both yield a zero Result, never an
// error: the caller treats the file as opaque.
func Probe(source []byte, tag grammars.LanguageTag, filePath string) Result {
	gs, ok := grammars.Get(tag)
	if !ok {
		return Result{}
	}

	parser := sitter.NewParser()
	parser.SetLanguage(gs.Language)
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		return Result{}
	}
	root := tree.RootNode()
	if root == nil {
		return Result{}
	}

	p := &probeState{gs: gs, source: source, filePath: filePath}
	p.walkEntities(root, nil)
	p.walkImports(root)
	return Result{Entities: p.entities, Imports: p.imports}
}

type probeState struct {
	gs       grammars.GrammarSet
	source   []byte
	filePath string
	entities []Entity
	imports  []Import
}

// walkEntities performs a pre-order traversal, accumulating entities in
// source order and threading the enclosing scope names down so nested
// functions/methods get dotted qualified names.
func (p *probeState) walkEntities(node *sitter.Node, scope []string) {
	if node == nil {
		return
	}
	kind, ok := p.gs.EntityNodeKinds[node.Type()]
	nextScope := scope
	if ok {
		name := p.entityName(node, kind)
		if name != "" {
			qualified := p.qualifiedName(node, scope, name)
			p.entities = append(p.entities, Entity{
				Kind:          kind,
				Name:          name,
				QualifiedName: strings.Join(qualified, "."),
				StartLine:     int(node.StartPoint().Row) + 1,
				EndLine:       int(node.EndPoint().Row) + 1,
				SourceSlice:   string(p.source[node.StartByte():node.EndByte()]),
			})
			nextScope = qualified
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		p.walkEntities(node.Child(i), nextScope)
	}
}

// entityName extracts a declaration's name, falling back to the name of the
// variable/const it is assigned to for arrow/lambda functions bound to a
// named declarator (spec §4.1).
func (p *probeState) entityName(node *sitter.Node, kind rpgmodel.EntityKind) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return p.text(nameNode)
	}

	switch node.Type() {
	case "func_literal", "arrow_function", "function_expression", "lambda", "closure_expression":
		if name := p.declaratorName(node); name != "" {
			return name
		}
		return ""
	}

	// Go type_declaration wraps a type_spec child that carries the name.
	if node.Type() == "type_declaration" {
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child != nil && child.Type() == "type_spec" {
				if n := child.ChildByFieldName("name"); n != nil {
					return p.text(n)
				}
			}
		}
	}

	// impl_item in Rust names the type being implemented, not itself.
	if node.Type() == "impl_item" {
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child != nil && child.Type() == "type_identifier" {
				return p.text(child)
			}
		}
	}

	return ""
}

// declaratorName walks up to find a variable_declarator/assignment binding
// an anonymous function expression to a name, e.g. `const f = () => {}`.
func (p *probeState) declaratorName(node *sitter.Node) string {
	parent := node.Parent()
	if parent == nil {
		return ""
	}
	switch parent.Type() {
	case "variable_declarator", "assignment_expression":
		if n := parent.ChildByFieldName("name"); n != nil {
			return p.text(n)
		}
		if n := parent.ChildByFieldName("left"); n != nil {
			return p.text(n)
		}
	}
	return ""
}

// qualifiedName builds a dotted qualified name for an entity node, given
// the scope it was found in and its own bare name. Go methods are
// qualified by their receiver type rather than by AST containment; every
// other entity kind is qualified purely by the enclosing scope.
func (p *probeState) qualifiedName(node *sitter.Node, scope []string, name string) []string {
	qualifier := scope
	if node.Type() == "method_declaration" {
		if recv := p.goReceiverTypeName(node); recv != "" {
			qualifier = append(append([]string{}, scope...), recv)
		}
	}
	return append(append([]string{}, qualifier...), name)
}

// goReceiverTypeName extracts the receiver's type identifier from a Go
// method_declaration, unwrapping a pointer or generic receiver, so a method
// can be qualified by its type even though method_declaration is a sibling
// of type_declaration, not its AST descendant.
func (p *probeState) goReceiverTypeName(node *sitter.Node) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	var typeNode *sitter.Node
	for i := 0; i < int(recv.ChildCount()); i++ {
		child := recv.Child(i)
		if child != nil && child.Type() == "parameter_declaration" {
			typeNode = child.ChildByFieldName("type")
			break
		}
	}
	if typeNode == nil {
		return ""
	}
	if typeNode.Type() == "pointer_type" {
		for i := 0; i < int(typeNode.ChildCount()); i++ {
			child := typeNode.Child(i)
			if child != nil && child.IsNamed() {
				typeNode = child
				break
			}
		}
	}
	if typeNode.Type() == "generic_type" {
		if n := typeNode.ChildByFieldName("type"); n != nil {
			typeNode = n
		}
	}
	return p.text(typeNode)
}

func (p *probeState) text(n *sitter.Node) string {
	return string(p.source[n.StartByte():n.EndByte()])
}

// walkImports finds every import-bearing node for the language and
// extracts the module string(s) it names.
func (p *probeState) walkImports(root *sitter.Node) {
	if len(p.gs.ImportNodeKinds) == 0 {
		return
	}
	var imports []Import
	var walk func(*sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if containsKind(p.gs.ImportNodeKinds, node.Type()) {
			imports = append(imports, p.extractImport(node)...)
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(root)
	p.imports = imports
}

func containsKind(kinds []string, kind string) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// extractImport pulls the module string(s) out of one import-bearing node.
// Go and Rust import single strings; JS/TS import_statement and Python's
// import_from_statement can name a module string directly as a child.
func (p *probeState) extractImport(node *sitter.Node) []Import {
	line := int(node.StartPoint().Row) + 1

	switch p.gs.Tag {
	case grammars.LangGo:
		if node.Type() != "import_spec" {
			return nil
		}
		if pathNode := node.ChildByFieldName("path"); pathNode != nil {
			return []Import{{Module: unquote(p.text(pathNode)), Kind: ImportStatement, Line: line}}
		}
		return nil

	case grammars.LangJavaScript, grammars.LangTypeScript:
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child != nil && child.Type() == "string" {
				return []Import{{Module: unquote(p.text(child)), Kind: ImportStatement, Line: line}}
			}
		}
		return nil

	case grammars.LangPython:
		kind := ImportStatement
		if node.Type() == "import_from_statement" {
			kind = ImportFrom
		}
		var out []Import
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			switch child.Type() {
			case "dotted_name", "relative_import":
				out = append(out, Import{Module: p.text(child), Kind: kind, Line: line})
			}
		}
		return out

	case grammars.LangRust:
		if argNode := node.ChildByFieldName("argument"); argNode != nil {
			return []Import{{Module: p.text(argNode), Kind: ImportStatement, Line: line}}
		}
		return nil

	case grammars.LangJava:
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child != nil && (child.Type() == "scoped_identifier" || child.Type() == "identifier") {
				return []Import{{Module: p.text(child), Kind: ImportStatement, Line: line}}
			}
		}
		return nil
	}
	return nil
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// ExtractCallSites walks source under tag's grammar and emits one CallSite
// per call expression. Member chains a.b.c() yield the trailing identifier
// c; an optional-chaining prefix ?. is stripped; `new X()` and its generic
// form `new X<T>()` both yield calleeSymbol X. CallerEntity is the
// qualified name of the innermost enclosing entity, using the same
// scope-threading rules as entity extraction (including Go's
// receiver-qualified methods), or "" for a call at file scope.
func ExtractCallSites(source []byte, tag grammars.LanguageTag, callerFile string) []CallSite {
	gs, ok := grammars.Get(tag)
	if !ok {
		return nil
	}
	parser := sitter.NewParser()
	parser.SetLanguage(gs.Language)
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		return nil
	}
	root := tree.RootNode()
	if root == nil {
		return nil
	}

	p := &probeState{gs: gs, source: source}
	callNodeTypes := callExpressionKinds(tag)
	newNodeTypes := newExpressionKinds(tag)

	var sites []CallSite
	p.walkCallSites(root, nil, callerFile, callNodeTypes, newNodeTypes, &sites)
	return sites
}

func (p *probeState) walkCallSites(node *sitter.Node, scope []string, callerFile string, callNodeTypes, newNodeTypes []string, sites *[]CallSite) {
	if node == nil {
		return
	}
	nextScope := scope
	if kind, ok := p.gs.EntityNodeKinds[node.Type()]; ok {
		if name := p.entityName(node, kind); name != "" {
			nextScope = p.qualifiedName(node, scope, name)
		}
	}

	line := int(node.StartPoint().Row) + 1
	callerEntity := strings.Join(scope, ".")
	if containsKind(callNodeTypes, node.Type()) {
		if callee := calleeSymbol(node, p.source); callee != "" {
			*sites = append(*sites, CallSite{CalleeSymbol: callee, CallerFile: callerFile, CallerEntity: callerEntity, Line: line})
		}
	}
	if containsKind(newNodeTypes, node.Type()) {
		if callee := newCalleeSymbol(node, p.source); callee != "" {
			*sites = append(*sites, CallSite{CalleeSymbol: callee, CallerFile: callerFile, CallerEntity: callerEntity, Line: line})
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		p.walkCallSites(node.Child(i), nextScope, callerFile, callNodeTypes, newNodeTypes, sites)
	}
}

func callExpressionKinds(tag grammars.LanguageTag) []string {
	switch tag {
	case grammars.LangGo:
		return []string{"call_expression"}
	case grammars.LangJavaScript, grammars.LangTypeScript:
		return []string{"call_expression"}
	case grammars.LangPython:
		return []string{"call"}
	case grammars.LangRust:
		return []string{"call_expression"}
	case grammars.LangJava:
		return []string{"method_invocation"}
	}
	return nil
}

func newExpressionKinds(tag grammars.LanguageTag) []string {
	switch tag {
	case grammars.LangJavaScript, grammars.LangTypeScript:
		return []string{"new_expression"}
	case grammars.LangJava:
		return []string{"object_creation_expression"}
	}
	return nil
}

// calleeSymbol extracts the trailing identifier from a call's function
// expression, stripping an optional-chaining `?.` prefix from member access.
func calleeSymbol(callNode *sitter.Node, source []byte) string {
	fn := callNode.ChildByFieldName("function")
	if fn == nil {
		fn = callNode.ChildByFieldName("name")
	}
	if fn == nil {
		return ""
	}
	return trailingIdentifier(fn, source)
}

func trailingIdentifier(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "member_expression", "field_expression", "selector_expression":
		if prop := node.ChildByFieldName("property"); prop != nil {
			return string(source[prop.StartByte():prop.EndByte()])
		}
		if field := node.ChildByFieldName("field"); field != nil {
			return string(source[field.StartByte():field.EndByte()])
		}
	}
	// Fall back to the last identifier-like child, which also covers plain
	// identifiers and optional-chaining member access (`a?.b()`), since the
	// `?.` token itself is a separate leaf sibling, not part of the name.
	var last *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "identifier", "property_identifier", "field_identifier":
			last = child
		}
	}
	if last != nil {
		return string(source[last.StartByte():last.EndByte()])
	}
	if node.Type() == "identifier" {
		return string(source[node.StartByte():node.EndByte()])
	}
	return ""
}

// newCalleeSymbol extracts X from `new X()` and unwraps the generic form
// `new X<T>()` to the same X.
func newCalleeSymbol(newNode *sitter.Node, source []byte) string {
	ctor := newNode.ChildByFieldName("constructor")
	if ctor == nil {
		ctor = newNode.ChildByFieldName("type")
	}
	if ctor == nil {
		for i := 0; i < int(newNode.ChildCount()); i++ {
			child := newNode.Child(i)
			if child == nil {
				continue
			}
			switch child.Type() {
			case "identifier", "type_identifier", "generic_type":
				ctor = child
			}
		}
	}
	if ctor == nil {
		return ""
	}
	if ctor.Type() == "generic_type" {
		if base := ctor.ChildByFieldName("name"); base != nil {
			return string(source[base.StartByte():base.EndByte()])
		}
		if c := ctor.Child(0); c != nil {
			return string(source[c.StartByte():c.EndByte()])
		}
	}
	return string(source[ctor.StartByte():ctor.EndByte()])
}
