package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vk/refinery/internal/emit"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // simulation config: .hcl, .yaml/.yml or .cfg/.ini
	OutDir     string // must not exist; unused by Check

	// Overrides for the matching simulation config keys.
	Profile     string
	ProfileFile string
	TemplateDir string

	Format    string
	LogFormat string
	LogLevel  string
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.Format == "" {
		cfg.Format = emit.FormatDAX
	}
	if !slices.Contains(emit.Formats(), cfg.Format) {
		return nil, fmt.Errorf("invalid format %q: must be one of %s", cfg.Format, strings.Join(emit.Formats(), ", "))
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log-level %q: must be one of %s", cfg.LogLevel, strings.Join(logLevels, ", "))
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log-format %q: must be one of %s", cfg.LogFormat, strings.Join(logFormats, ", "))
	}
	if cfg.Profile != "" && cfg.ProfileFile != "" {
		return nil, errors.New("profile and profile file are mutually exclusive")
	}
	return &cfg, nil
}
