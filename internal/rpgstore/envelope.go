package rpgstore

import (
	"encoding/json"

	"rpg/internal/rpgerrors"
	"rpg/internal/rpgmodel"
)

// EnvelopeVersion is the current serialized-form schema version (§6).
const EnvelopeVersion = "1.0.0"

// Envelope is the exact on-wire JSON shape from §6: version tag, config
// block, and flat node/edge lists with discriminated tags.
type Envelope struct {
	Version string          `json:"version"`
	Config  EnvelopeConfig  `json:"config"`
	Nodes   []NodeEnvelope  `json:"nodes"`
	Edges   []EdgeEnvelope  `json:"edges"`
}

// EnvelopeConfig is the envelope's optional descriptive config block.
type EnvelopeConfig struct {
	Name        string `json:"name"`
	RootPath    string `json:"rootPath,omitempty"`
	Description string `json:"description,omitempty"`
}

// NodeEnvelope is the wire form of rpgmodel.Node, tagged by nodeType.
type NodeEnvelope struct {
	NodeType string `json:"nodeType"`
	ID       string `json:"id"`

	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Intent      string   `json:"intent,omitempty"`

	// HighLevelNode.
	DirectoryPath string `json:"directoryPath,omitempty"`

	// LowLevelNode.
	FilePath          string `json:"filePath,omitempty"`
	MetadataDirectory string `json:"metadataDirectoryPath,omitempty"`
	EntityKind        string `json:"entityKind,omitempty"`
	QualifiedName     string `json:"qualifiedName,omitempty"`
	StartLine         int    `json:"startLine,omitempty"`
	EndLine           int    `json:"endLine,omitempty"`
	ScipSymbol        string `json:"scipSymbol,omitempty"`
	SourceText        string `json:"sourceText,omitempty"`
	HasSourceText     bool   `json:"hasSourceText,omitempty"`
}

// EdgeEnvelope is the wire form of rpgmodel.Edge, tagged by edgeType.
type EdgeEnvelope struct {
	EdgeType string `json:"edgeType"`
	Source   string `json:"source"`
	Target   string `json:"target"`

	// FunctionalEdge.
	Level        *int `json:"level,omitempty"`
	SiblingOrder *int `json:"siblingOrder,omitempty"`

	// DependencyEdge.
	DependencyType string `json:"dependencyType,omitempty"`
	IsRuntime      *bool  `json:"isRuntime,omitempty"`
	SourceLine     *int   `json:"sourceLine,omitempty"`
}

// ToEnvelopeNode converts a domain Node into its wire representation.
func ToEnvelopeNode(n rpgmodel.Node) NodeEnvelope {
	env := NodeEnvelope{
		NodeType:    string(n.Type),
		ID:          n.ID,
		Description: n.Feature.Description(),
		Keywords:    n.Feature.Keywords(),
	}
	if intent, ok := n.Feature.Intent(); ok {
		env.Intent = string(intent)
	}
	switch n.Type {
	case rpgmodel.NodeHighLevel:
		env.DirectoryPath = n.DirectoryPath
	case rpgmodel.NodeLowLevel:
		env.FilePath = n.Metadata.FilePath
		env.MetadataDirectory = n.Metadata.DirectoryPath
		env.EntityKind = string(n.Metadata.EntityKind)
		env.QualifiedName = n.Metadata.QualifiedName
		env.StartLine = n.Metadata.StartLine
		env.EndLine = n.Metadata.EndLine
		env.ScipSymbol = n.Metadata.ScipSymbol
		if n.HasSourceText() {
			env.SourceText = n.SourceText
			env.HasSourceText = true
		}
	}
	return env
}

// FromEnvelopeNode decodes a wire node back into the domain type.
func FromEnvelopeNode(env NodeEnvelope) (rpgmodel.Node, error) {
	intent := rpgmodel.IntentTag(env.Intent)
	feature := rpgmodel.NewSemanticFeature(env.Description, env.Keywords, intent)

	switch rpgmodel.NodeType(env.NodeType) {
	case rpgmodel.NodeHighLevel:
		return rpgmodel.NewHighLevelNode(env.ID, feature, env.DirectoryPath), nil
	case rpgmodel.NodeLowLevel:
		metadata := rpgmodel.StructuralMetadata{
			FilePath:      env.FilePath,
			DirectoryPath: env.MetadataDirectory,
			EntityKind:    rpgmodel.EntityKind(env.EntityKind),
			QualifiedName: env.QualifiedName,
			StartLine:     env.StartLine,
			EndLine:       env.EndLine,
			ScipSymbol:    env.ScipSymbol,
		}
		return rpgmodel.NewLowLevelNode(env.ID, feature, metadata, env.SourceText, env.HasSourceText), nil
	default:
		return rpgmodel.Node{}, rpgerrors.GraphInvariantError("unknown nodeType "+env.NodeType, nil)
	}
}

// ToEnvelopeEdge converts a domain Edge into its wire representation.
func ToEnvelopeEdge(e rpgmodel.Edge) EdgeEnvelope {
	env := EdgeEnvelope{
		EdgeType: string(e.Type),
		Source:   e.Source,
		Target:   e.Target,
	}
	switch e.Type {
	case rpgmodel.EdgeFunctional:
		if e.HasLevel() {
			level := e.Level
			env.Level = &level
		}
		if e.HasSiblingOrder() {
			sib := e.SiblingOrder
			env.SiblingOrder = &sib
		}
	case rpgmodel.EdgeDependency:
		env.DependencyType = string(e.DependencyType)
		if e.HasIsRuntime() {
			rt := e.IsRuntime
			env.IsRuntime = &rt
		}
		if e.HasSourceLine() {
			line := e.SourceLine
			env.SourceLine = &line
		}
	}
	return env
}

// FromEnvelopeEdge decodes a wire edge back into the domain type.
func FromEnvelopeEdge(env EdgeEnvelope) (rpgmodel.Edge, error) {
	switch rpgmodel.EdgeType(env.EdgeType) {
	case rpgmodel.EdgeFunctional:
		level, hasLevel := 0, false
		if env.Level != nil {
			level, hasLevel = *env.Level, true
		}
		sib, hasSib := 0, false
		if env.SiblingOrder != nil {
			sib, hasSib = *env.SiblingOrder, true
		}
		return rpgmodel.NewFunctionalEdge(env.Source, env.Target, level, sib, hasLevel, hasSib), nil
	case rpgmodel.EdgeDependency:
		isRuntime, hasRuntime := false, false
		if env.IsRuntime != nil {
			isRuntime, hasRuntime = *env.IsRuntime, true
		}
		line, hasLine := 0, false
		if env.SourceLine != nil {
			line, hasLine = *env.SourceLine, true
		}
		return rpgmodel.NewDependencyEdge(env.Source, env.Target, rpgmodel.DependencyType(env.DependencyType), isRuntime, hasRuntime, line, hasLine), nil
	default:
		return rpgmodel.Edge{}, rpgerrors.GraphInvariantError("unknown edgeType "+env.EdgeType, nil)
	}
}

// BuildEnvelope assembles a full Envelope from node/edge slices.
func BuildEnvelope(config ExportConfig, nodes []rpgmodel.Node, edges []rpgmodel.Edge) Envelope {
	env := Envelope{
		Version: EnvelopeVersion,
		Config: EnvelopeConfig{
			Name:        config.Name,
			RootPath:    config.RootPath,
			Description: config.Description,
		},
		Nodes: make([]NodeEnvelope, len(nodes)),
		Edges: make([]EdgeEnvelope, len(edges)),
	}
	for i, n := range nodes {
		env.Nodes[i] = ToEnvelopeNode(n)
	}
	for i, e := range edges {
		env.Edges[i] = ToEnvelopeEdge(e)
	}
	return env
}

// MarshalEnvelope serializes an Envelope to indented JSON.
func MarshalEnvelope(env Envelope) ([]byte, error) {
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalEnvelope parses a JSON payload into an Envelope.
func UnmarshalEnvelope(payload []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Envelope{}, rpgerrors.StoreError("decoding envelope JSON", err)
	}
	return env, nil
}
