package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/stamp/internal/domain"
	"github.com/MrSnakeDoc/stamp/internal/logger"
	"github.com/MrSnakeDoc/stamp/internal/sources/settingsfile"
)

// SettingsTarget receives reloaded settings
type SettingsTarget interface {
	SetDefaults(domain.Settings)
	LoadSettings(ctx context.Context) error
}

// SettingsReloader handles periodic reloading of the settings defaults file
// and of the stored settings document
type SettingsReloader struct {
	loader        *settingsfile.Loader
	target        SettingsTarget
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewSettingsReloader creates a new settings reloader. An empty file path
// disables the defaults file; stored settings are still reloaded.
func NewSettingsReloader(
	settingsFile string,
	target SettingsTarget,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SettingsReloader {
	var loader *settingsfile.Loader
	if settingsFile != "" {
		loader = settingsfile.NewLoader(settingsFile)
	}

	return &SettingsReloader{
		loader:        loader,
		target:        target,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the periodic reload process
func (sr *SettingsReloader) Start(ctx context.Context) error {
	// Load immediately on start
	if err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial settings reload failed: %w", err)
	}

	// A non-positive interval leaves only the manual trigger
	var tick <-chan time.Time
	var ticker *time.Ticker
	if sr.interval > 0 {
		ticker = time.NewTicker(sr.interval)
		tick = ticker.C
	}

	go func() {
		if ticker != nil {
			defer ticker.Stop()
		}
		for {
			select {
			case <-tick:
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload settings",
						logger.Error(err))
				}
			case <-sr.manualTrigger:
				sr.logger.Info("manual settings reload triggered")
				if err := sr.Reload(ctx); err != nil {
					sr.logger.Error("failed to reload settings",
						logger.Error(err))
				}
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (sr *SettingsReloader) Stop() {
	close(sr.stopCh)
}

// Reload reads the defaults file, if any, then the stored settings
func (sr *SettingsReloader) Reload(ctx context.Context) error {
	if sr.loader != nil {
		defaults, err := sr.loader.Defaults()
		if err != nil {
			return fmt.Errorf("failed to load settings defaults: %w", err)
		}
		sr.target.SetDefaults(defaults)
		sr.logger.Info("loaded settings defaults",
			logger.String("file", sr.loader.Path()),
			logger.Bool("auto_play_on_jump", defaults.AutoPlayOnJump),
			logger.String("copy_mode", string(defaults.CopyMode)))
	}

	if err := sr.target.LoadSettings(ctx); err != nil {
		// Keep serving the previous values
		sr.logger.Warn("failed to load stored settings",
			logger.Error(err))
	}

	return nil
}
