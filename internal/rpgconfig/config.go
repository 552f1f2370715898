// Package rpgconfig loads and validates the graph's on-disk configuration.
// Values set in the config file override DefaultConfig; environment
// variables and CLI flags are not consulted when loading.
package rpgconfig

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"rpg/internal/rpgerrors"
)

// CurrentVersion is the schema version this build writes and expects.
const CurrentVersion = 1

// Config is the complete .rpg/config.{json,toml,yaml} schema.
type Config struct {
	Version  int    `json:"version" mapstructure:"version" toml:"version" yaml:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot" toml:"repoRoot" yaml:"repoRoot"`

	Store     StoreConfig     `json:"store" mapstructure:"store" toml:"store" yaml:"store"`
	Evolution EvolutionConfig `json:"evolution" mapstructure:"evolution" toml:"evolution" yaml:"evolution"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging" toml:"logging" yaml:"logging"`
	Export    ExportConfig    `json:"export" mapstructure:"export" toml:"export" yaml:"export"`
}

// StoreConfig selects and configures the backing Store implementation.
type StoreConfig struct {
	// Kind is "memory" or "sqlite".
	Kind string `json:"kind" mapstructure:"kind" toml:"kind" yaml:"kind"`
	// Path is the SQLite file path, relative to RepoRoot, when Kind is "sqlite".
	Path string `json:"path" mapstructure:"path" toml:"path" yaml:"path"`
}

// EvolutionConfig holds the Evolver's default EvolutionOptions.
type EvolutionConfig struct {
	// DriftThreshold is the semantic-drift cutoff above which a modified
	// entity is rerouted (delete+insert) instead of updated in place.
	DriftThreshold float64 `json:"driftThreshold" mapstructure:"driftThreshold" toml:"driftThreshold" yaml:"driftThreshold"`
	// UseLLM enables the Describer capability when one is registered.
	UseLLM bool `json:"useLLM" mapstructure:"useLLM" toml:"useLLM" yaml:"useLLM"`
	// IncludeSource controls whether low-level node snippets retain source text.
	IncludeSource bool `json:"includeSource" mapstructure:"includeSource" toml:"includeSource" yaml:"includeSource"`
}

// LoggingConfig mirrors rpglog.Config in serializable form.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format" toml:"format" yaml:"format"`
	Level  string `json:"level" mapstructure:"level" toml:"level" yaml:"level"`
}

// ExportConfig controls the Serializer's optional output compression.
type ExportConfig struct {
	Compress bool `json:"compress" mapstructure:"compress" toml:"compress" yaml:"compress"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Version:  CurrentVersion,
		RepoRoot: ".",
		Store: StoreConfig{
			Kind: "memory",
			Path: ".rpg/graph.sqlite",
		},
		Evolution: EvolutionConfig{
			DriftThreshold: 0.4,
			UseLLM:         false,
			IncludeSource:  false,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
		Export: ExportConfig{
			Compress: false,
		},
	}
}

// Load reads .rpg/config.{json,toml,yaml} under repoRoot, falling back to
// DefaultConfig when no config file exists. JSON and TOML are decoded
// through viper for layered precedence; YAML is decoded directly since it
// is accepted as a third, unlayered format.
func Load(repoRoot string) (*Config, error) {
	dir := filepath.Join(repoRoot, ".rpg")

	if path := filepath.Join(dir, "config.yaml"); fileExists(path) {
		return loadYAML(path, repoRoot)
	}

	v := viper.New()
	v.SetDefault("version", CurrentVersion)
	v.SetDefault("repoRoot", ".")
	v.SetConfigName("config")
	v.AddConfigPath(dir)

	if fileExists(filepath.Join(dir, "config.toml")) {
		v.SetConfigType("toml")
	} else {
		v.SetConfigType("json")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			cfg := DefaultConfig()
			cfg.RepoRoot = repoRoot
			return cfg, nil
		}
		return nil, rpgerrors.ConfigError("reading config file", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, rpgerrors.ConfigError("decoding config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(path, repoRoot string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rpgerrors.ConfigError("reading config.yaml", err)
	}
	cfg := DefaultConfig()
	cfg.RepoRoot = repoRoot
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, rpgerrors.ConfigError("decoding config.yaml", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveJSON writes the configuration as .rpg/config.json.
func (c *Config) SaveJSON(repoRoot string) error {
	return c.save(repoRoot, "config.json", jsonMarshal)
}

// SaveTOML writes the configuration as .rpg/config.toml, for operators who
// prefer a TOML layout over JSON.
func (c *Config) SaveTOML(repoRoot string) error {
	return c.save(repoRoot, "config.toml", tomlMarshal)
}

func (c *Config) save(repoRoot, name string, marshal func(*Config) ([]byte, error)) error {
	dir := filepath.Join(repoRoot, ".rpg")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return rpgerrors.ConfigError("creating .rpg directory", err)
	}
	data, err := marshal(c)
	if err != nil {
		return rpgerrors.ConfigError("encoding config", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return rpgerrors.ConfigError("writing config file", err)
	}
	return nil
}

func jsonMarshal(c *Config) ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

func tomlMarshal(c *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks invariants that DefaultConfig always satisfies but a
// hand-edited file might violate.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return rpgerrors.ConfigError(
			"unsupported config version "+strconv.Itoa(c.Version), nil)
	}
	if c.Evolution.DriftThreshold < 0 || c.Evolution.DriftThreshold > 1 {
		return rpgerrors.ConfigError("evolution.driftThreshold must be in [0,1]", nil)
	}
	switch c.Store.Kind {
	case "memory", "sqlite":
	default:
		return rpgerrors.ConfigError("store.kind must be \"memory\" or \"sqlite\"", nil)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
