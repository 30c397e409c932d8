package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/stamp/internal/domain"
	"github.com/MrSnakeDoc/stamp/internal/store"
)

// SaveSettings stores the global settings document
func (s *Store) SaveSettings(ctx context.Context, settings domain.Settings) error {
	data, err := store.EncodeSettings(settings)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, store.KeySettings, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// GetSettings retrieves the global settings document
func (s *Store) GetSettings(ctx context.Context) (*domain.SettingsPatch, error) {
	data, err := s.client.Get(ctx, store.KeySettings).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return store.DecodeSettings(data)
}
