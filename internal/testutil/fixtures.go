package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/refinery/internal/config"
)

// SimulationFields returns a complete, valid set of configuration fields
// with the given sweep values.
func SimulationFields(eps ...string) config.Fields {
	return config.Fields{
		"epsilons":          strings.Join(eps, ","),
		"temperature":       "290",
		"equilibrate_steps": "1000",
		"production_steps":  "250000",
		"structure":         "Q42.psf",
		"coordinates":       "crd.md18_vmd_autopsf.pdb",
		"sassena_pdb":       "sassena.pdb",
		"fixed_pdb":         "fixed.pdb",
		"extended_system":   "init.xsc",
		"bin_coordinates":   "init.coor",
		"bin_velocities":    "init.vel",
		"sassena_db":        "sassenadb.tgz",
	}
}

// Simulation decodes SimulationFields into a Simulation with defaults applied.
func Simulation(t *testing.T, eps ...string) *config.Simulation {
	t.Helper()
	sim, err := config.Decode("", SimulationFields(eps...))
	require.NoError(t, err)
	return sim
}

// WriteFiles writes files below root. Keys are slash-separated relative
// paths; intermediate directories are created.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// ListFiles returns the slash-separated paths of all regular files below root, sorted.
func ListFiles(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	return out
}

// Unindent removes common leading whitespace from a multi-line string,
// allowing readable, indented configuration snippets in Go tests.
func Unindent(s string) string {
	lines := strings.Split(s, "\n")

	// Remove leading/trailing empty lines that are common with multi-line literals
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return ""
	}

	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}

	var b strings.Builder
	for i, line := range lines {
		switch {
		case minIndent <= 0:
			b.WriteString(line)
		case len(line) >= minIndent:
			b.WriteString(line[minIndent:])
		default:
			b.WriteString(strings.TrimSpace(line))
		}
		if i < len(lines)-1 {
			b.WriteRune('\n')
		}
	}
	b.WriteRune('\n')
	return b.String()
}
