package router

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"rpg/internal/rpgerrors"
)

// TunablesFile is the optional override file under .rpg/ for the router's
// ranking parameters.
const TunablesFile = "routing.toml"

// Tunables holds the router's ranking parameters. Router.WithTunables
// applies only TopK; JaccardWeight and CosineWeight are parsed but not
// used in ranking.
type Tunables struct {
	TopK          int     `toml:"top_k"`
	JaccardWeight float64 `toml:"jaccard_weight"`
	CosineWeight  float64 `toml:"cosine_weight"`
}

// DefaultTunables mirrors the router's built-in defaults.
func DefaultTunables() Tunables {
	return Tunables{TopK: topK, JaccardWeight: 1.0, CosineWeight: 1.0}
}

// LoadTunables reads .rpg/routing.toml under rpgDir if present, returning
// the defaults when the file is absent. A malformed file is a ConfigError.
func LoadTunables(rpgDir string) (Tunables, error) {
	path := filepath.Join(rpgDir, TunablesFile)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultTunables(), nil
	}
	if err != nil {
		return Tunables{}, rpgerrors.ConfigError("reading routing.toml", err)
	}

	tunables := DefaultTunables()
	if err := toml.Unmarshal(data, &tunables); err != nil {
		return Tunables{}, rpgerrors.ConfigError("parsing routing.toml", err)
	}
	return tunables, nil
}

// ApplyTopK returns t with TopK clamped to at least 1, so a zero-value or
// malformed override never disables ranking entirely.
func (t Tunables) ApplyTopK() int {
	if t.TopK < 1 {
		return topK
	}
	return t.TopK
}
