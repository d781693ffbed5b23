package catalog

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	dir := t.TempDir()

	t.Run("registers in order", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Add("par5.prm", filepath.Join(dir, "par5.prm")))
		require.NoError(t, c.Add("par10.prm", filepath.Join(dir, "par10.prm")))

		assert.Equal(t, 2, c.Len())
		entries := c.Entries()
		assert.Equal(t, "par5.prm", entries[0].Name)
		assert.Equal(t, "par10.prm", entries[1].Name)
	})

	t.Run("same name and location is a no-op", func(t *testing.T) {
		c := New()
		p := filepath.Join(dir, "a")
		require.NoError(t, c.Add("a", p))
		require.NoError(t, c.Add("a", p))
		assert.Equal(t, 1, c.Len())
	})

	t.Run("same name at a different location fails", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Add("a", filepath.Join(dir, "a")))
		err := c.Add("a", filepath.Join(dir, "b"))
		require.ErrorIs(t, err, ErrDuplicateLogicalName)
		assert.ErrorContains(t, err, `"a"`)
	})

	t.Run("relative paths become absolute", func(t *testing.T) {
		c := New()
		require.NoError(t, c.Add("rel", "inputs/Q42.psf"))
		e, ok := c.Lookup("rel")
		require.True(t, ok)
		assert.True(t, filepath.IsAbs(e.Path))
		assert.True(t, strings.HasSuffix(e.Path, filepath.Join("inputs", "Q42.psf")))
	})

	t.Run("empty name", func(t *testing.T) {
		assert.Error(t, New().Add("", "/x"))
	})
}

func TestWriteTo(t *testing.T) {
	c := New()
	require.NoError(t, c.Add("par5.prm", "/runs/r1/par5.prm"))
	require.NoError(t, c.Add("equilibrate_5.conf", "/runs/r1/equilibrate_5.conf"))

	var buf bytes.Buffer
	n, err := c.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		padRight("par5.prm", 30)+" "+padRight("file:///runs/r1/par5.prm", 100)+` pool="local"`,
		lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "equilibrate_5.conf "))
	assert.Equal(t, len(lines[0]), len(lines[1]), "columns are fixed width")
}

func TestWriteTo_Empty(t *testing.T) {
	var buf bytes.Buffer
	n, err := New().WriteTo(&buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, buf.String())
}

func padRight(s string, width int) string {
	return s + strings.Repeat(" ", width-len(s))
}
