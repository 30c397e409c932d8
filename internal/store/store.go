// Package store defines the persistence gateway for per-resource snapshots
// and global settings.
package store

import (
	"context"

	"github.com/MrSnakeDoc/stamp/internal/domain"
)

// Gateway is a durable key-value store keyed by resource identifier.
// GetSnapshot returns (nil, nil) when nothing is stored for the resource,
// GetSettings returns (nil, nil) when no settings were ever saved.
type Gateway interface {
	GetSnapshot(ctx context.Context, resourceID string) (*domain.Snapshot, error)
	SaveSnapshot(ctx context.Context, resourceID string, snap domain.Snapshot) error
	ListResources(ctx context.Context) ([]string, error)

	GetSettings(ctx context.Context) (*domain.SettingsPatch, error)
	SaveSettings(ctx context.Context, s domain.Settings) error

	Ping(ctx context.Context) error
	Close() error
}
