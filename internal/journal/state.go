package journal

import (
	"encoding/json"
	"os"
	"time"

	"BreakoutSentinel/internal/model"
)

// LoadState reads the journal state from a JSON file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*model.JournalState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.JournalState{Symbols: map[string]model.SymbolRecord{}}, nil
		}
		return nil, err
	}
	var state model.JournalState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Symbols == nil {
		state.Symbols = map[string]model.SymbolRecord{}
	}
	return &state, nil
}

// SaveState writes the journal state to a JSON file.
func SaveState(filePath string, state *model.JournalState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
