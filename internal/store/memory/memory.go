package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/MrSnakeDoc/stamp/internal/domain"
	"github.com/MrSnakeDoc/stamp/internal/store"
)

// Store keeps encoded snapshots and settings in process memory.
// Used when no durable backend is configured and in tests.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string][]byte // resource ID -> encoded snapshot
	settings  []byte
	failErr   error
}

var _ store.Gateway = (*Store)(nil)

// NewStore creates an empty memory store
func NewStore() *Store {
	return &Store{
		snapshots: make(map[string][]byte),
	}
}

// SaveSnapshot stores a copy of the snapshot
func (s *Store) SaveSnapshot(_ context.Context, resourceID string, snap domain.Snapshot) error {
	data, err := store.EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}
	s.snapshots[resourceID] = data
	return nil
}

// GetSnapshot returns a copy of the stored snapshot
func (s *Store) GetSnapshot(_ context.Context, resourceID string) (*domain.Snapshot, error) {
	s.mu.RLock()
	data, ok := s.snapshots[resourceID]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	return store.DecodeSnapshot(data)
}

// FailWrites makes every subsequent save return err (nil restores writes).
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failErr = err
}

// PutRaw stores an already encoded snapshot, bypassing validation.
func (s *Store) PutRaw(resourceID string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots[resourceID] = slices.Clone(data)
}

// ListResources returns the stored resource IDs, sorted
func (s *Store) ListResources(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// SaveSettings stores the settings document
func (s *Store) SaveSettings(_ context.Context, settings domain.Settings) error {
	data, err := store.EncodeSettings(settings)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}
	s.settings = data
	return nil
}

// GetSettings returns the stored settings document
func (s *Store) GetSettings(_ context.Context) (*domain.SettingsPatch, error) {
	s.mu.RLock()
	data := s.settings
	s.mu.RUnlock()

	if data == nil {
		return nil, nil
	}
	return store.DecodeSettings(data)
}

// Count returns the number of stored snapshots
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.snapshots)
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }
