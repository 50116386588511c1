package store

import (
	"encoding/json"
	"fmt"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

// decodeEntries reads a partition's serialized entries. An empty string
// reads as an empty log.
func decodeEntries(raw string) ([]domain.FoodEntry, error) {
	if raw == "" {
		return []domain.FoodEntry{}, nil
	}
	var entries []domain.FoodEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	if entries == nil {
		entries = []domain.FoodEntry{}
	}
	return entries, nil
}

func encodeEntries(entries []domain.FoodEntry) (string, error) {
	if entries == nil {
		entries = []domain.FoodEntry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encode entries: %w", err)
	}
	return string(b), nil
}

func indexOfEntry(entries []domain.FoodEntry, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func boolToString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalJSON(raw string, v any) error {
	return json.Unmarshal([]byte(raw), v)
}
