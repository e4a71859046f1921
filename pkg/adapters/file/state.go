package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pcdshub/happi-to-confluence/pkg/domain"
)

// StateFile persists the run state as indented JSON.
type StateFile struct {
	Path string
}

// NewStateFile creates a StateFile. An empty path defaults to
// ".happi-to-confluence/state.json".
func NewStateFile(path string) *StateFile {
	if path == "" {
		path = filepath.Join(".happi-to-confluence", "state.json")
	}
	return &StateFile{Path: path}
}

// Save writes the state atomically.
func (s *StateFile) Save(state *domain.RunState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run state: %w", err)
	}
	if err := writeAtomic(s.Path, data); err != nil {
		return fmt.Errorf("failed to save run state: %w", err)
	}
	return nil
}

// Load reads a previously saved state.
func (s *StateFile) Load() (*domain.RunState, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run state: %w", err)
	}
	state := domain.NewRunState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run state: %w", err)
	}
	return state, nil
}
