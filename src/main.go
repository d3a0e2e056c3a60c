package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/contre95/musevault/src/features/catalog"
	"github.com/contre95/musevault/src/features/cli"
	"github.com/contre95/musevault/src/features/config"
	"github.com/contre95/musevault/src/features/history"
	"github.com/contre95/musevault/src/features/hosting"
	"github.com/contre95/musevault/src/features/logging"
	"github.com/contre95/musevault/src/features/metrics"
	"github.com/contre95/musevault/src/features/ratings"
	"github.com/contre95/musevault/src/infra/artwork"
	"github.com/contre95/musevault/src/infra/database"
	"github.com/contre95/musevault/src/infra/discogs"
	"github.com/contre95/musevault/src/infra/watcher"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(application{}).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			cli.PrintError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

type application struct{}

// load reads the configuration and installs the default logger.
func (application) load(configPath string) (*config.Manager, error) {
	cfgManager, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(logging.SetupLogger(cfgManager))
	return cfgManager, nil
}

// Catalog builds a catalog façade for one-shot CLI queries.
func (a application) Catalog(configPath string) (cli.Catalog, error) {
	cfgManager, err := a.load(configPath)
	if err != nil {
		return nil, err
	}
	client := discogs.NewClient(cfgManager.Get().Discogs)
	return catalog.NewService(client, catalog.NewCacheFromConfig(cfgManager.Get().Catalog, nil), cfgManager, nil), nil
}

// Serve wires every feature and runs the HTTP server until ctx is done.
func (a application) Serve(ctx context.Context, configPath string) error {
	cfgManager, err := a.load(configPath)
	if err != nil {
		return err
	}
	if err := cfgManager.EnsureDirectories(); err != nil {
		return err
	}

	// Create the metrics collector
	collector := metrics.NewCollector()

	// Create the catalog service
	client := discogs.NewClient(cfgManager.Get().Discogs)
	catalogService := catalog.NewService(client, catalog.NewCacheFromConfig(cfgManager.Get().Catalog, nil), cfgManager, collector)
	cfgManager.Subscribe(catalogService.ApplyConfig)

	// Create the database store
	db, err := database.NewSqliteStore(cfgManager.Get().Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ratingsService := ratings.NewService(db, catalogService)
	historyService := history.NewService(db)
	covers := artwork.NewService(cfgManager, &http.Client{Timeout: cfgManager.Get().Discogs.Timeout})

	// Create the per-client rate limiter
	limiter := hosting.NewRateLimiter(cfgManager.Get().RateLimit, collector.RateLimited)
	cfgManager.Subscribe(limiter.ApplyConfig)

	// Watch the config file for changes
	configWatcher, err := watcher.NewWatcher(cfgManager, configPath, nil)
	if err != nil {
		slog.Error("Failed to create config watcher", "error", err)
	} else if err := configWatcher.Start(ctx); err != nil {
		slog.Error("Failed to start config watcher", "error", err)
	} else {
		defer configWatcher.Stop()
	}

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, catalogService, covers, ratingsService, historyService, collector, limiter)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	if err := server.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	slog.Info("Server gracefully shut down.")
	return nil
}
