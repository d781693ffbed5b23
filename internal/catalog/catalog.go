// Package catalog accumulates the replica catalog: the mapping from logical
// artifact names to the physical files the execution fabric should use.
package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
)

// Pool is the site annotation written on every entry.
const Pool = "local"

// ErrDuplicateLogicalName is returned when a logical name is registered twice
// with different physical locations.
var ErrDuplicateLogicalName = errors.New("duplicate logical name")

// Entry binds a logical name to an absolute physical path.
type Entry struct {
	Name string
	Path string
}

// URL returns the file URL of the entry.
func (e Entry) URL() string {
	return "file://" + e.Path
}

// Catalog is an ordered, append-only set of entries. It is not safe for
// concurrent use.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// Add registers name at path. A relative path is made absolute. Registering
// the same name at the same location again is a no-op.
func (c *Catalog) Add(name, path string) error {
	if name == "" {
		return errors.New("catalog: empty logical name")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("catalog: resolving %s: %w", path, err)
	}
	if i, ok := c.index[name]; ok {
		if c.entries[i].Path == abs {
			return nil
		}
		return fmt.Errorf("%w %q: %s and %s", ErrDuplicateLogicalName, name, c.entries[i].Path, abs)
	}
	c.index[name] = len(c.entries)
	c.entries = append(c.entries, Entry{Name: name, Path: abs})
	return nil
}

// Lookup returns the entry registered under name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	i, ok := c.index[name]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the entries in registration order.
func (c *Catalog) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// WriteTo writes one fixed-width line per entry:
//
//	<name padded to 30> <url padded to 100> pool="local"
func (c *Catalog) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	for _, e := range c.entries {
		n, err := fmt.Fprintf(bw, "%-30s %-100s pool=%q\n", e.Name, e.URL(), Pool)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}
