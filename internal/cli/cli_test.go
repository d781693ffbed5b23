package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/refinery/internal/app"
	"github.com/vk/refinery/internal/testutil"
)

const simulationINI = `
	[simulation]
	epsilons = 5
	temperature = 290
	equilibrate_steps = 1000
	production_steps = 250000
	structure = Q42.psf
	coordinates = crd.md18_vmd_autopsf.pdb
	sassena_pdb = sassena.pdb
	fixed_pdb = fixed.pdb
	extended_system = init.xsc
	bin_coordinates = init.coor
	bin_velocities = init.vel
	sassena_db = sassenadb.tgz
`

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = Execute(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func writeConfig(t *testing.T) (configPath, root string) {
	t.Helper()
	root = t.TempDir()
	testutil.WriteFiles(t, root, map[string]string{"sim.cfg": testutil.Unindent(simulationINI)})
	return filepath.Join(root, "sim.cfg"), root
}

func requireExitCode(t *testing.T, err error, code int) *ExitError {
	t.Helper()
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr), "expected *ExitError, got %T: %v", err, err)
	assert.Equal(t, code, exitErr.Code)
	return exitErr
}

func TestExecute_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"unknown flag", []string{"generate", "--this-is-not-a-valid-flag", "a", "b"}, "unknown flag: --this-is-not-a-valid-flag"},
		{"unknown command", []string{"frobnicate"}, `unknown command "frobnicate"`},
		{"missing outdir", []string{"generate", "sim.cfg"}, "accepts 2 arg(s), received 1"},
		{"bad format", []string{"generate", "--format", "json", "sim.cfg", "out"}, `invalid format "json"`},
		{"bad log level", []string{"--log-level", "loud", "check", "sim.cfg"}, `invalid log-level "loud"`},
		{"two profile sources", []string{"check", "--profile", "compact", "--profile-file", "p.yaml", "sim.cfg"}, "mutually exclusive"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execute(t, tc.args...)
			exitErr := requireExitCode(t, err, 2)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}

func TestExecute_Help(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "generate")
	assert.Contains(t, out, "profiles")
}

func TestExecute_Version(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "refinery version "+Version+"\n", out)
}

func TestExecute_Generate(t *testing.T) {
	configPath, root := writeConfig(t)
	outDir := filepath.Join(root, "run")

	out, logs, err := execute(t, "--log-level", "debug", "generate", "-f", "yaml", configPath, outDir)
	require.NoError(t, err)
	assert.Empty(t, out)
	testutil.AssertLogged(t, logs, "Workflow generated.", "tasks=6")

	files := testutil.ListFiles(t, outDir)
	assert.Contains(t, files, "workflow.yml")
	assert.Contains(t, files, "rc.txt")
	assert.Contains(t, files, "sassenaCoh_5.xml")
}

func TestExecute_GenerateFailureIsNotUsage(t *testing.T) {
	configPath, root := writeConfig(t)
	outDir := filepath.Join(root, "run")
	require.NoError(t, os.Mkdir(outDir, 0o755))

	_, _, err := execute(t, "generate", configPath, outDir)
	require.ErrorIs(t, err, app.ErrOutputDirectoryExists)
	var exitErr *ExitError
	assert.False(t, errors.As(err, &exitErr))
}

func TestExecute_Check(t *testing.T) {
	configPath, _ := writeConfig(t)

	out, _, err := execute(t, "check", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "sassena_coh_5")
	assert.Contains(t, out, "ptraj_5.dcd")

	_, _, err = execute(t, "check", "--strict", configPath)
	exitErr := requireExitCode(t, err, 1)
	assert.Equal(t, "1 lint finding(s)", exitErr.Message)
}

func TestExecute_Profiles(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		out, _, err := execute(t, "profiles")
		require.NoError(t, err)
		assert.Contains(t, out, "* default")
		assert.Contains(t, out, "  compact")
	})

	t.Run("show", func(t *testing.T) {
		out, _, err := execute(t, "profiles", "compact")
		require.NoError(t, err)
		assert.Contains(t, out, "production   mpi         5760    240")
	})

	t.Run("yaml", func(t *testing.T) {
		out, _, err := execute(t, "profiles", "--yaml", "default")
		require.NoError(t, err)
		assert.Contains(t, out, "name: default")
		assert.Contains(t, out, "max_wall_minutes: 2880")
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := execute(t, "profiles", "nowhere")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `no built-in profile table "nowhere"`)
	})
}
