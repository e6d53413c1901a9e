package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"AlertSentinel/internal/model"
)

// State is what survives a restart.
type State struct {
	LastNotified    *model.LastAction `json:"last_notified,omitempty"`
	LastEvaluatedAt time.Time         `json:"last_evaluated_at"`
	Evaluations     int               `json:"evaluations"`
	Notifications   int               `json:"notifications"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// LoadState reads the state from a JSON file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, err
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SaveState writes the state to a JSON file, creating its directory if needed.
func SaveState(filePath string, st *State) error {
	st.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0o644)
}
