// Package iniconf reads the legacy key/value configuration format: an INI
// file whose [simulation] section holds the sweep list and input paths.
package iniconf

import (
	"context"
	"fmt"

	"github.com/vk/refinery/internal/config"
	"github.com/vk/refinery/internal/ctxlog"
	"gopkg.in/ini.v1"
)

const sectionName = "simulation"

// Loader is the INI-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new INI configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{".cfg", ".ini"}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Simulation, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("INI loader started.", "path", path)

	// Option names fold to lower case; the section name does not.
	file, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys:     true,
		IgnoreInlineComment: false,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read INI file %s: %w", config.ErrConfiguration, path, err)
	}

	section, err := file.GetSection(sectionName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s has no [%s] section", config.ErrConfiguration, path, sectionName)
	}

	fields := make(config.Fields, len(section.Keys()))
	for _, key := range section.Keys() {
		fields[key.Name()] = key.String()
	}
	logger.Debug("INI simulation section read.", "keys", len(fields))

	return config.Decode(path, fields)
}
