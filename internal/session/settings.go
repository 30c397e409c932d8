package session

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/stamp/internal/domain"
	"github.com/MrSnakeDoc/stamp/internal/logger"
)

// Settings returns the settings in effect: stored values over defaults.
func (m *Manager) Settings() domain.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.settingsLocked()
}

func (m *Manager) settingsLocked() domain.Settings {
	if m.stored == nil {
		return m.defaults
	}
	return m.stored.Apply(m.defaults)
}

// SetDefaults replaces the defaults that stored settings are merged over.
func (m *Manager) SetDefaults(defaults domain.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.defaults = defaults
	m.renderActiveLocked()
}

// LoadSettings reads the stored settings document from the gateway.
// On failure the previous values stay in effect, and a document read
// before a concurrent SaveSettings is discarded.
func (m *Manager) LoadSettings(ctx context.Context) error {
	if m.gateway == nil {
		return nil
	}
	m.mu.Lock()
	saves := m.saves
	m.mu.Unlock()

	p, err := m.gateway.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saves != saves {
		m.logger.Debug("discarding settings read that raced a save")
		return nil
	}
	m.stored = p
	return nil
}

// SaveSettings validates and stores new settings, then re-renders.
func (m *Manager) SaveSettings(ctx context.Context, s domain.Settings) (domain.Settings, error) {
	if err := s.Validate(); err != nil {
		return domain.Settings{}, err
	}
	if m.gateway != nil {
		if err := m.gateway.SaveSettings(ctx, s); err != nil {
			return domain.Settings{}, fmt.Errorf("failed to save settings: %w", err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p := s.Patch()
	m.stored = &p
	m.saves++
	m.logger.Info("settings saved",
		logger.Bool("auto_play_on_jump", s.AutoPlayOnJump),
		logger.String("copy_mode", string(s.CopyMode)))
	m.renderActiveLocked()
	return m.settingsLocked(), nil
}

func (m *Manager) renderActiveLocked() {
	if m.active != nil {
		m.renderer.Render(m.active.view(m.settingsLocked(), ""))
	}
}
