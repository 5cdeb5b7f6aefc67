// Package app wires configuration, storage, the catalog loader and the player into a
// ready-to-use guide.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Taichi-iskw/idcable/internal/catalog"
	"github.com/Taichi-iskw/idcable/internal/config"
	"github.com/Taichi-iskw/idcable/internal/favorites"
	"github.com/Taichi-iskw/idcable/internal/httpclient"
	"github.com/Taichi-iskw/idcable/internal/logger"
	"github.com/Taichi-iskw/idcable/internal/player"
	"github.com/Taichi-iskw/idcable/internal/player/external"
	"github.com/Taichi-iskw/idcable/internal/player/hls"
	"github.com/Taichi-iskw/idcable/internal/repository/storage"
	"github.com/Taichi-iskw/idcable/internal/service/common"
	"github.com/Taichi-iskw/idcable/internal/service/guide"
)

// Options customizes Build
type Options struct {
	// OnChange receives every player snapshot change
	OnChange func(player.Snapshot)
	// Notifier shows blocking notices; nil drops them
	Notifier player.Notifier
	// LogOutput is used when no log file is configured; defaults to stderr
	LogOutput io.Writer
	// PlayerArgs are passed to the player command before the stream flags
	PlayerArgs []string
}

// App holds the wired components
type App struct {
	Config     *config.Config
	Log        logger.Logger
	Favorites  *favorites.Store
	Guide      *guide.Guide
	Media      *external.Media
	Controller *player.Controller
}

// Build loads the configuration and wires every component. The returned cleanup closes
// the player, the storage and the log file.
func Build(ctx context.Context, opts Options) (*App, func(), error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return BuildWithConfig(ctx, cfg, opts)
}

// BuildWithConfig wires the components for an already loaded configuration
func BuildWithConfig(ctx context.Context, cfg *config.Config, opts Options) (*App, func(), error) {
	log, closeLog, err := newLogger(cfg, opts.LogOutput)
	if err != nil {
		return nil, nil, err
	}

	repo, err := storage.Open(ctx, cfg)
	if err != nil {
		closeLog()
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	client := httpclient.New("")
	loader := catalog.NewLoader(client, cfg.APIBase, cfg.Locale, log.With("component", "catalog"))

	media := external.New(common.NewCmdRunner(), cfg.Player.Command, opts.PlayerArgs, log.With("component", "media"))

	var engine player.Engine
	if cfg.Player.Engine == config.EngineHLS {
		engine = hls.NewEngine(client, log.With("component", "hls"))
	}

	controller := player.NewController(player.Options{
		Engine:   engine,
		Media:    media,
		Notifier: opts.Notifier,
		ProxyURL: cfg.ProxyURL,
		Logger:   log.With("component", "player"),
		OnChange: opts.OnChange,
	})

	store := favorites.NewStore(repo)
	g := guide.NewGuide(loader, store, controller, cfg.PageSize, log.With("component", "guide"))

	cleanup := func() {
		controller.Close()
		if err := repo.Close(); err != nil {
			log.Warnf("failed to close storage: %v", err)
		}
		closeLog()
	}

	return &App{
		Config:     cfg,
		Log:        log,
		Favorites:  store,
		Guide:      g,
		Media:      media,
		Controller: controller,
	}, cleanup, nil
}

func newLogger(cfg *config.Config, fallback io.Writer) (*logger.ZeroLogger, func(), error) {
	if cfg.Log.File == "" {
		if fallback == nil {
			fallback = os.Stderr
		}
		return logger.New(fallback, cfg.Log.Level), func() {}, nil
	}

	log, closeFile, err := logger.NewFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return log, func() { _ = closeFile() }, nil
}
