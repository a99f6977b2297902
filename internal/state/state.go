package state

import (
	"encoding/json" // For JSON encoding and decoding of the state file
	"os"            // For file system operations like reading and writing files
	"path/filepath"

	"edaproxy/internal/logger" // Custom logger package for logging errors and debug info
)

// LinkState represents a symlink the installer created.
// It records where the link lives and which wrapper binary it pointed at.
type LinkState struct {
	Path   string `json:"path"`   // Absolute path of the symlink
	Target string `json:"target"` // Wrapper binary the symlink resolves to
}

// State holds the links managed by the installer, keyed by tool name.
// Links absent from State are never removed, so hand-made links survive a sync.
type State struct {
	Links map[string]LinkState `json:"links"`
}

// New returns an empty, initialized State.
func New() *State {
	return &State{Links: make(map[string]LinkState)}
}

// LoadState loads the saved state from a JSON file at the given path.
// If the file does not exist or cannot be parsed, it returns a new empty State.
func LoadState(path string) *State {
	file, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("[DEBUG] No link state at %s: %v\n", path, err)
		return New()
	}

	var st State
	if err := json.Unmarshal(file, &st); err != nil {
		logger.Warn("[WARN] Ignoring unreadable link state %s: %v\n", path, err)
		return New()
	}

	// Ensure the map is initialized if JSON contained null
	if st.Links == nil {
		st.Links = make(map[string]LinkState)
	}
	return &st
}

// SaveState writes the given State to a JSON file at the given path.
// Errors during marshalling or writing are logged but not propagated.
func SaveState(path string, st *State) {
	file, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		logger.Error("[ERROR] Failed to marshal state: %v\n", err)
		return
	}

	logger.Debug("[DEBUG] Writing state to %s:\n%s\n", path, string(file))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Error("[ERROR] Failed to create state directory for %s: %v\n", path, err)
		return
	}
	if err := os.WriteFile(path, file, 0644); err != nil {
		logger.Error("[ERROR] Failed to write state file %s: %v\n", path, err)
	}
}
