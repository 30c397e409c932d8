package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/stamp/internal/config"
	"github.com/MrSnakeDoc/stamp/internal/httpserver"
	"github.com/MrSnakeDoc/stamp/internal/httpserver/deps"
	"github.com/MrSnakeDoc/stamp/internal/logger"
	"github.com/MrSnakeDoc/stamp/internal/player"
	"github.com/MrSnakeDoc/stamp/internal/scheduler"
	"github.com/MrSnakeDoc/stamp/internal/session"
	"github.com/MrSnakeDoc/stamp/internal/store"
	"github.com/MrSnakeDoc/stamp/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	gateway  store.Gateway
	manager  *session.Manager
	queue    *scheduler.PersistQueue
	monitor  *scheduler.LoopMonitor
	reloader *scheduler.SettingsReloader
}

func New(cfg *config.Config) (*App, error) {
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize the store early - fail fast if unavailable
	gateway, err := OpenGateway(cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	remote := player.NewRemote(time.Now)
	queue := scheduler.NewPersistQueue(gateway, loggerClient, scheduler.DefaultWriteTimeout)

	manager := session.NewManager(session.Options{
		Gateway:       gateway,
		Player:        remote,
		Reports:       remote,
		Persister:     queue,
		Renderer:      debugRenderer(loggerClient),
		Logger:        loggerClient,
		ConfirmWindow: cfg.DeleteConfirmWindow,
		VideoBaseURL:  cfg.VideoBaseURL,
		OnSwitch: func(from, to string) {
			// The page reports a fresh element for the new resource
			remote.Reset()
		},
	})

	monitor := scheduler.NewLoopMonitor(manager, loggerClient, cfg.LoopInterval)

	// Create manual reload trigger channel
	reloadTrigger := make(chan struct{}, 1)

	if cfg.SettingsFile != "" {
		loggerClient.Info("settings file configured",
			logger.String("file", cfg.SettingsFile))
	} else {
		loggerClient.Info("settings file not configured, using built-in defaults")
	}
	reloader := scheduler.NewSettingsReloader(
		cfg.SettingsFile,
		manager,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		RateBurst:     cfg.RateBurst,
		RatePerMin:    cfg.RatePerMin,
		StoreBackend:  cfg.StoreBackend,
		Sessions:      manager,
		Player:        remote,
		Gateway:       gateway,
		Queue:         queue,
		ReloadTrigger: reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   server,
		gateway:  gateway,
		manager:  manager,
		queue:    queue,
		monitor:  monitor,
		reloader: reloader,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting stamp v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("stamp %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start persist queue before anything can enqueue
	if err := a.queue.Start(ctx); err != nil {
		return fmt.Errorf("failed to start persist queue: %w", err)
	}

	// Start settings reloader (loads defaults + stored settings, then refreshes)
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start settings reloader: %w", err)
	}
	a.logger.Info("settings reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	// Start loop monitor
	if err := a.monitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start loop monitor: %w", err)
	}
	a.logger.Info("loop monitor started",
		logger.Duration("interval", a.cfg.LoopInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()
	a.monitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.manager.Close()

	// Flush pending writes within the same deadline
	if err := a.queue.Stop(shutdownCtx); err != nil {
		a.logger.Error("persist queue did not drain", logger.Error(err))
	} else {
		a.logger.Info("✅ Persist queue drained")
	}

	if err := a.gateway.Close(); err != nil {
		a.logger.Warnf("failed to close store: %v", err)
	} else {
		a.logger.Info("✅ Store closed cleanly")
	}

	a.logger.Info("✅ stamp stopped cleanly")
	_ = a.logger.Sync()
	return nil
}

// debugRenderer logs every view change; HTTP handlers return the same view.
func debugRenderer(log logger.Logger) session.Renderer {
	return session.RendererFunc(func(v session.View) {
		log.Debug("view rendered",
			logger.String("resource_id", v.ResourceID),
			logger.Int("marks", len(v.Marks)),
			logger.String("loop", v.Loop.State),
			logger.String("error", v.Notice))
	})
}
