package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/refinery/internal/cli"
)

func TestRun_PanicRecovery(t *testing.T) {
	// --- Arrange ---
	// Replace the command tree with one that panics the way a broken
	// built-in topology would.
	original := execute
	t.Cleanup(func() { execute = original })
	execute = func(context.Context, []string, io.Writer, io.Writer) error {
		panic("duplicate producer for par5.prm")
	}

	// --- Act ---
	runErr := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"generate", "a.hcl", "out"})

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")
	require.Contains(t, runErr.Error(), "application startup panicked", "The error message should indicate that a panic was recovered.")
	require.Contains(t, runErr.Error(), "duplicate producer", "The error message should contain the underlying reason for the panic.")
}

func TestRun_Help(t *testing.T) {
	out := &bytes.Buffer{}

	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error for help")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	// Providing an unknown flag is a usage error with exit code 2.
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}
