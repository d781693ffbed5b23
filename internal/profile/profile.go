// Package profile holds the static resource profile tables: per task kind,
// the execution mode, wall-time budget and worker count handed to the
// execution fabric. The values are advisory and never enforced here.
//
// Facilities differ only in the numbers, so each facility is a data file
// (see tables/) rather than code.
package profile

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode is the execution mode of a task.
type Mode string

const (
	// ModeSingle runs one process.
	ModeSingle Mode = "single"
	// ModeMPI runs Count MPI ranks.
	ModeMPI Mode = "mpi"
)

// ErrUnknownTaskKind is returned by Lookup for a kind the table lacks.
var ErrUnknownTaskKind = errors.New("unknown task kind")

// Profile is the resource annotation of one task.
type Profile struct {
	Mode           Mode `yaml:"mode"`
	MaxWallMinutes int  `yaml:"max_wall_minutes"`
	Count          int  `yaml:"count"`
}

// Table maps task kinds to profiles.
type Table struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Tasks       map[string]Profile `yaml:"tasks"`
}

// DefaultName is the built-in table used when none is selected.
const DefaultName = "default"

//go:embed tables/*.yaml
var builtin embed.FS

// Names lists the built-in tables, sorted.
func Names() []string {
	entries, err := builtin.ReadDir("tables")
	if err != nil {
		panic(fmt.Errorf("profile: reading built-in tables: %w", err))
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Load returns the built-in table called name.
func Load(name string) (*Table, error) {
	data, err := builtin.ReadFile(path.Join("tables", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("no built-in profile table %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return Parse(data)
}

// LoadFile reads a facility table from a YAML file.
func LoadFile(file string) (*Table, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading profile table: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return t, nil
}

// Parse decodes and validates a table.
func Parse(data []byte) (*Table, error) {
	var t Table
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding profile table: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) validate() error {
	if t.Name == "" {
		return errors.New("profile table has no name")
	}
	if len(t.Tasks) == 0 {
		return fmt.Errorf("profile table %q defines no tasks", t.Name)
	}
	var errs []error
	for _, kind := range t.Kinds() {
		p := t.Tasks[kind]
		if p.Mode != ModeSingle && p.Mode != ModeMPI {
			errs = append(errs, fmt.Errorf("%s: mode %q must be %q or %q", kind, p.Mode, ModeSingle, ModeMPI))
		}
		if p.MaxWallMinutes < 1 {
			errs = append(errs, fmt.Errorf("%s: max_wall_minutes must be at least 1", kind))
		}
		if p.Count < 1 {
			errs = append(errs, fmt.Errorf("%s: count must be at least 1", kind))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("profile table %q: %w", t.Name, errors.Join(errs...))
	}
	return nil
}

// Kinds returns the task kinds present in the table, sorted.
func (t *Table) Kinds() []string {
	kinds := make([]string, 0, len(t.Tasks))
	for k := range t.Tasks {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Lookup returns the profile for kind.
func (t *Table) Lookup(kind string) (Profile, error) {
	p, ok := t.Tasks[kind]
	if !ok {
		return Profile{}, fmt.Errorf("%w %q in profile table %q", ErrUnknownTaskKind, kind, t.Name)
	}
	return p, nil
}

// Require fails unless the table covers every given kind.
func (t *Table) Require(kinds ...string) error {
	for _, k := range kinds {
		if _, err := t.Lookup(k); err != nil {
			return err
		}
	}
	return nil
}
