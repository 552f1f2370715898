package rpgconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"rpg/internal/rpgerrors"
)

// LocalStateFile is the path, relative to .rpg/, of the branch-local
// sync bookkeeping file.
const LocalStateFile = "local/state.json"

// LocalState records what the branch-local graph was last synced against.
type LocalState struct {
	BaseCommit string `json:"baseCommit"`
	Branch     string `json:"branch"`
	LastSync   string `json:"lastSync"`
}

// NewLocalState builds a LocalState stamped with the current time in
// ISO-8601 (RFC3339) form.
func NewLocalState(baseCommit, branch string) LocalState {
	return LocalState{
		BaseCommit: baseCommit,
		Branch:     branch,
		LastSync:   time.Now().UTC().Format(time.RFC3339),
	}
}

// LoadLocalState reads .rpg/local/state.json under repoRoot. A missing file
// returns the zero LocalState with ok=false rather than an error: a repo
// that has never synced simply has no local state yet.
func LoadLocalState(repoRoot string) (LocalState, bool, error) {
	path := filepath.Join(repoRoot, ".rpg", LocalStateFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return LocalState{}, false, nil
		}
		return LocalState{}, false, rpgerrors.ConfigError("reading local state", err)
	}
	var state LocalState
	if err := json.Unmarshal(data, &state); err != nil {
		return LocalState{}, false, rpgerrors.ConfigError("decoding local state", err)
	}
	return state, true, nil
}

// SaveLocalState writes state to .rpg/local/state.json under repoRoot,
// creating the local/ directory if needed.
func SaveLocalState(repoRoot string, state LocalState) error {
	dir := filepath.Join(repoRoot, ".rpg", "local")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return rpgerrors.ConfigError("creating .rpg/local directory", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return rpgerrors.ConfigError("encoding local state", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "state.json"), data, 0o644); err != nil {
		return rpgerrors.ConfigError("writing local state", err)
	}
	return nil
}
