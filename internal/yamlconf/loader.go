// Package yamlconf provides the YAML implementation of config.Loader.
//
//	simulation:
//	  epsilons: [5, 10]     # or "5, 10"
//	  temperature: 290
//	  structure: Q42.psf
package yamlconf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/vk/refinery/internal/config"
	"github.com/vk/refinery/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// Loader is the YAML-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

type fileRoot struct {
	Simulation map[string]yaml.Node `yaml:"simulation"`
}

// Extensions implements config.Loader.
func (l *Loader) Extensions() []string {
	return []string{".yaml", ".yml"}
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Simulation, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}

	var root fileRoot
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: failed to decode YAML file %s: %w", config.ErrConfiguration, path, err)
	}
	if root.Simulation == nil {
		return nil, fmt.Errorf("%w: %s has no simulation mapping", config.ErrConfiguration, path)
	}

	fields := make(config.Fields, len(root.Simulation))
	for key, node := range root.Simulation {
		s, err := nodeString(&node)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: key %q: %w", config.ErrConfiguration, path, key, err)
		}
		fields[key] = s
	}
	logger.Debug("YAML simulation mapping read.", "keys", len(fields))

	return config.Decode(path, fields)
}

// nodeString keeps scalars in the exact textual form they were written in;
// sequences of scalars become comma-joined lists.
func nodeString(n *yaml.Node) (string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return "", nil
		}
		return n.Value, nil
	case yaml.SequenceNode:
		parts := make([]string, 0, len(n.Content))
		for _, c := range n.Content {
			if c.Kind != yaml.ScalarNode {
				return "", fmt.Errorf("line %d: sequence entries must be scalars", c.Line)
			}
			parts = append(parts, c.Value)
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("line %d: expected a scalar or a sequence", n.Line)
	}
}
