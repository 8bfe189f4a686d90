package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/vk/dynmod/internal/ctxlog"
	"github.com/vk/dynmod/internal/hostcap"
	"github.com/vk/dynmod/internal/pipeline"
	"github.com/vk/dynmod/internal/registry"
	"github.com/vk/dynmod/internal/resolver"
	"github.com/vk/dynmod/internal/source"
	"github.com/vk/dynmod/internal/strategy"
	"github.com/vk/dynmod/internal/transform"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	RegistryPaths []string
	Root          string
	SourceExt     string
	StripComments bool
	ResolveOnly   bool
	LogFormat     string
	LogLevel      string
	Modules       []string
}

// App encapsulates the runtime's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	resolver   *resolver.Resolver
	pipeline   *pipeline.TextPipeline
	dispatcher *strategy.Dispatcher
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App with its own isolated logger and a registry populated
// from the configured registry paths.
func NewApp(outW io.Writer, cfg *Config) *App {
	return NewAppWithFs(outW, cfg, afero.NewOsFs())
}

// NewAppWithFs is NewApp with an explicit filesystem, primarily for tests.
func NewAppWithFs(outW io.Writer, cfg *Config, fsys afero.Fs) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if err := reg.LoadPaths(ctx, fsys, cfg.RegistryPaths...); err != nil {
		// A failure to load the package registry is a fatal startup error.
		panic(fmt.Errorf("failed to load package registry: %w", err))
	}
	logger.Debug("Package registry populated.", "packages", reg.Len())

	res := resolver.New(reg, cfg.Root, cfg.SourceExt)

	var tf pipeline.Transform
	if cfg.StripComments {
		tf = transform.StripComments
	}
	p := pipeline.NewText(res, source.NewCache(source.NewFileSource(fsys)), tf)

	// The dispatcher fronts the pipeline through the host's native loading
	// capabilities, probing once and pinning.
	dispatcher := strategy.NewDispatcher(hostcap.AsyncFrom(p), hostcap.SyncFrom(p), nil)

	return &App{
		outW:       outW,
		logger:     logger,
		config:     cfg,
		registry:   reg,
		resolver:   res,
		pipeline:   p,
		dispatcher: dispatcher,
	}
}

// Registry returns the application's package registry. Primarily for tests.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Dispatcher returns the application's strategy dispatcher. Primarily for
// tests.
func (a *App) Dispatcher() *strategy.Dispatcher {
	return a.dispatcher
}
