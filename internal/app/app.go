package app

import (
	"io"
	"log/slog"

	"github.com/vk/refinery/internal/config"
	"github.com/vk/refinery/internal/hcl"
	"github.com/vk/refinery/internal/iniconf"
	"github.com/vk/refinery/internal/workflow"
	"github.com/vk/refinery/internal/yamlconf"
)

// ErrOutputDirectoryExists is returned when the output directory is already
// present. Nothing is written in that case.
var ErrOutputDirectoryExists = workflow.ErrOutputDirectoryExists

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger  *slog.Logger
	config  *Config
	loaders []config.Loader
}

// DefaultLoaders returns one loader per supported configuration format.
func DefaultLoaders() []config.Loader {
	return []config.Loader{
		hcl.NewLoader(),
		yamlconf.NewLoader(),
		iniconf.NewLoader(),
	}
}

// NewApp is the constructor for the main application. Logs go to logW. When
// no loaders are given, DefaultLoaders is used.
func NewApp(logW io.Writer, cfg *Config, loaders ...config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	if len(loaders) == 0 {
		loaders = DefaultLoaders()
	}
	return &App{
		logger:  logger,
		config:  cfg,
		loaders: loaders,
	}
}
