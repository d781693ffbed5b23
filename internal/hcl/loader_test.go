package hcl

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/refinery/internal/config"
	"github.com/zclconf/go-cty/cty"
)

const validHCL = `
simulation {
  epsilons          = "5, 10"
  temperature       = 290
  equilibrate_steps = 1000
  production_steps  = 50000
  structure         = "Q42.psf"
  coordinates       = "crd.md18_vmd_autopsf.pdb"
  sassena_pdb       = "sassena.pdb"
  fixed_pdb         = "fixed.pdb"
  extended_system   = "init.xsc"
  bin_coordinates   = "final.coor"
  bin_velocities    = "final.vel"
  sassena_db        = "sassena-db.tar.gz"
  profile           = "compact"
}
`

func writeHCL(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sim.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("valid file", func(t *testing.T) {
		path := writeHCL(t, validHCL)
		sim, err := NewLoader().Load(ctx, path)
		require.NoError(t, err)

		assert.Equal(t, []string{"5", "10"}, sim.Epsilons)
		assert.Equal(t, "290", sim.Temperature)
		assert.Equal(t, "50000", sim.ProductionSteps)
		assert.Equal(t, "compact", sim.Profile)
		assert.Equal(t, path, sim.Source)
	})

	t.Run("sweep list built with functions", func(t *testing.T) {
		content := `
simulation {
  epsilons          = join(",", [for e in range(5, 20, 5) : format("%d", e)])
  temperature       = 290
  equilibrate_steps = 1000
  production_steps  = 50000
  structure         = "a"
  coordinates       = "b"
  sassena_pdb       = "c"
  fixed_pdb         = "d"
  extended_system   = "e"
  bin_coordinates   = "f"
  bin_velocities    = "g"
  sassena_db        = "h"
}
`
		sim, err := NewLoader().Load(ctx, writeHCL(t, content))
		require.NoError(t, err)
		assert.Equal(t, []string{"5", "10", "15"}, sim.Epsilons)
	})

	t.Run("number literals keep their source text", func(t *testing.T) {
		tests := []struct {
			epsilons string
			want     []string
		}{
			{"[5.0, 0.10, 1e1]", []string{"5.0", "0.10", "1e1"}},
			{"[5.0, 5]", []string{"5.0", "5"}},
			{`[-3, "7"]`, []string{"-3", "7"}},
			{"2.50", []string{"2.50"}},
		}
		for _, tc := range tests {
			t.Run(tc.epsilons, func(t *testing.T) {
				content := strings.Replace(validHCL, `epsilons          = "5, 10"`, "epsilons = "+tc.epsilons, 1)
				sim, err := NewLoader().Load(ctx, writeHCL(t, content))
				require.NoError(t, err)
				assert.Equal(t, tc.want, sim.Epsilons)
			})
		}
	})

	t.Run("missing block", func(t *testing.T) {
		_, err := NewLoader().Load(ctx, writeHCL(t, "\n"))
		require.ErrorIs(t, err, config.ErrConfiguration)
		assert.ErrorContains(t, err, "exactly one simulation block")
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := NewLoader().Load(ctx, writeHCL(t, "simulation {"))
		require.ErrorIs(t, err, config.ErrConfiguration)
		assert.ErrorContains(t, err, "failed to parse HCL file")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader().Load(ctx, filepath.Join(t.TempDir(), "nope.hcl"))
		require.ErrorIs(t, err, config.ErrConfiguration)
	})
}

func TestToString(t *testing.T) {
	testCases := []struct {
		name string
		val  cty.Value
		want string
	}{
		{"string", cty.StringVal("5, 10"), "5, 10"},
		{"integer", cty.NumberIntVal(300), "300"},
		{"fraction", cty.NumberFloatVal(0.5), "0.5"},
		{"tuple", cty.TupleVal([]cty.Value{cty.NumberIntVal(5), cty.StringVal("10")}), "5,10"},
		{"list", cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}), "a,b"},
		{"null", cty.NullVal(cty.String), ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := toString(tc.val)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := toString(cty.ObjectVal(map[string]cty.Value{"a": cty.True}))
	assert.Error(t, err)
}
