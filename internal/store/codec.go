package store

import (
	"encoding/json"
	"fmt"

	"github.com/MrSnakeDoc/stamp/internal/domain"
)

// EncodeSnapshot serializes a snapshot for storage.
func EncodeSnapshot(snap domain.Snapshot) ([]byte, error) {
	if snap.Entries == nil {
		snap.Entries = map[string]domain.Mark{}
	}
	if snap.Order == nil {
		snap.Order = []string{}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a stored snapshot. Structural validity (both
// entries and order present) is left to the caller.
func DecodeSnapshot(data []byte) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// EncodeSettings serializes settings for storage.
func EncodeSettings(s domain.Settings) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	return data, nil
}

// DecodeSettings parses stored settings as a patch so that fields missing
// from older documents fall back to defaults.
func DecodeSettings(data []byte) (*domain.SettingsPatch, error) {
	var p domain.SettingsPatch
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return &p, nil
}
