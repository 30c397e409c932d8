package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/stamp/internal/domain"
	"github.com/MrSnakeDoc/stamp/internal/store"
)

// Store persists snapshots and settings in Redis
type Store struct {
	client *redis.Client
}

var _ store.Gateway = (*Store)(nil)

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// SaveSnapshot stores the entries and order of a resource
func (s *Store) SaveSnapshot(ctx context.Context, resourceID string, snap domain.Snapshot) error {
	data, err := store.EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, store.MarksKey(resourceID), data, 0)
	pipe.SAdd(ctx, store.KeyAllResources, resourceID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// GetSnapshot retrieves the stored snapshot of a resource
func (s *Store) GetSnapshot(ctx context.Context, resourceID string) (*domain.Snapshot, error) {
	data, err := s.client.Get(ctx, store.MarksKey(resourceID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // First visit
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return store.DecodeSnapshot(data)
}

// ListResources returns the IDs of every resource with a stored snapshot
func (s *Store) ListResources(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, store.KeyAllResources).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	slices.Sort(ids)
	return ids, nil
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}
