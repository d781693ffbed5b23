package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrConfiguration marks a missing or malformed configuration value. It is
// always reported before any output is written.
var ErrConfiguration = errors.New("configuration error")

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads the configuration file at path and returns the decoded,
	// validated simulation configuration.
	Load(ctx context.Context, path string) (*Simulation, error)
	// Extensions lists the file extensions (with leading dot) the loader handles.
	Extensions() []string
}

// Fields is the flat key/value view of a configuration file that every
// format is reduced to before decoding.
type Fields map[string]string

// LoaderFor picks the loader that handles path's file extension. The
// comparison ignores case.
func LoaderFor(path string, loaders ...Loader) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var supported []string
	for _, l := range loaders {
		for _, e := range l.Extensions() {
			if e == ext {
				return l, nil
			}
			supported = append(supported, e)
		}
	}
	return nil, fmt.Errorf("%w: no loader for %q (supported extensions: %s)", ErrConfiguration, path, strings.Join(supported, ", "))
}
