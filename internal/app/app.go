package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/tracegraph/internal/config"
	"github.com/vk/tracegraph/internal/console"
	"github.com/vk/tracegraph/internal/ctxlog"
	"github.com/vk/tracegraph/internal/registry"
	"github.com/vk/tracegraph/internal/session"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *config.Model
	printer  *console.Printer
	appCfg   *Config

	// session is the most recent session built by Run or Check.
	session *session.Session
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Console output goes to outW, logs to logW.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	var configPaths []string
	if appConfig.ConfigPath != "" {
		configPaths = append(configPaths, appConfig.ConfigPath)
	}
	cfgModel, err := loader.Load(ctx, configPaths...)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	applyOverrides(cfgModel, appConfig)
	if err := cfgModel.Validate(); err != nil {
		panic(err)
	}
	logger.Debug("Configuration loaded.", "kind", cfgModel.Session.Kind, "graph", cfgModel.Session.Graph)

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules))

	// Validate the integrity of the registry.
	if err := reg.ValidateRegistry(ctx); err != nil {
		// This is a programmer error (an event kind without a handler), so we panic.
		panic(err)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfgModel,
		printer:  console.New(outW, appConfig.NoColor),
		appCfg:   appConfig,
	}
}

// applyOverrides writes CLI values over the loaded configuration.
func applyOverrides(m *config.Model, c *Config) {
	if c.GraphPath != "" {
		m.Session.Graph = c.GraphPath
	}
	if c.Kind != "" {
		m.Session.Kind = c.Kind
	}
	if c.Layout != "" {
		m.Session.Layout = c.Layout
	}
	if c.EventsPath != "" {
		m.Source = &config.Source{Type: config.SourceFile, Path: c.EventsPath}
	}
	if c.Port != nil {
		m.Server.Port = *c.Port
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Config returns the effective configuration.
func (a *App) Config() *config.Model {
	return a.config
}

// Session returns the most recent session, or nil before Run or Check. This
// is primarily for testing.
func (a *App) Session() *session.Session {
	return a.session
}
