package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Defaults applied by Decode when the optional keys are absent.
const (
	DefaultName              = "refinement"
	DefaultProfile           = "default"
	DefaultParameterTemplate = "parameters.prm"
	DefaultIncoherentDB      = "database/db-neutron-incoherent.xml"
	DefaultCoherentDB        = "database/db-neutron-coherent.xml"
)

// Simulation is the decoded configuration of one workflow run.
type Simulation struct {
	// Source is the file the configuration was read from.
	Source string

	Name string
	// Epsilons holds the sweep values in list order, trimmed but otherwise
	// exactly as written.
	Epsilons []string

	Temperature      string
	EquilibrateSteps string
	ProductionSteps  string

	Structure      string
	Coordinates    string
	SassenaPDB     string
	FixedPDB       string
	ExtendedSystem string
	BinCoordinates string
	BinVelocities  string
	SassenaDB      string

	IncoherentDB string
	CoherentDB   string

	Profile           string
	ProfileFile       string
	TemplateDir       string
	ParameterTemplate string
}

// field binds a configuration key to its destination in Simulation.
type field struct {
	key      string
	required bool
	dest     func(*Simulation) *string
}

var fields = []field{
	{"temperature", true, func(s *Simulation) *string { return &s.Temperature }},
	{"equilibrate_steps", true, func(s *Simulation) *string { return &s.EquilibrateSteps }},
	{"production_steps", true, func(s *Simulation) *string { return &s.ProductionSteps }},
	{"structure", true, func(s *Simulation) *string { return &s.Structure }},
	{"coordinates", true, func(s *Simulation) *string { return &s.Coordinates }},
	{"sassena_pdb", true, func(s *Simulation) *string { return &s.SassenaPDB }},
	{"fixed_pdb", true, func(s *Simulation) *string { return &s.FixedPDB }},
	{"extended_system", true, func(s *Simulation) *string { return &s.ExtendedSystem }},
	{"bin_coordinates", true, func(s *Simulation) *string { return &s.BinCoordinates }},
	{"bin_velocities", true, func(s *Simulation) *string { return &s.BinVelocities }},
	{"sassena_db", true, func(s *Simulation) *string { return &s.SassenaDB }},
	{"name", false, func(s *Simulation) *string { return &s.Name }},
	{"incoherent_db", false, func(s *Simulation) *string { return &s.IncoherentDB }},
	{"coherent_db", false, func(s *Simulation) *string { return &s.CoherentDB }},
	{"profile", false, func(s *Simulation) *string { return &s.Profile }},
	{"profile_file", false, func(s *Simulation) *string { return &s.ProfileFile }},
	{"template_dir", false, func(s *Simulation) *string { return &s.TemplateDir }},
	{"parameter_template", false, func(s *Simulation) *string { return &s.ParameterTemplate }},
}

// epsilonsKey is handled separately: it may be present but empty.
const epsilonsKey = "epsilons"

// Keys returns every key Decode understands, sorted.
func Keys() []string {
	keys := []string{epsilonsKey}
	for _, f := range fields {
		keys = append(keys, f.key)
	}
	sort.Strings(keys)
	return keys
}

// Decode builds a Simulation from flat fields, applying defaults and
// validating every value. All problems are reported together, wrapped in
// ErrConfiguration.
func Decode(source string, in Fields) (*Simulation, error) {
	sim := &Simulation{Source: source}
	var errs []error

	known := map[string]bool{epsilonsKey: true}
	for _, f := range fields {
		known[f.key] = true
	}
	var unknown []string
	for k := range in {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		errs = append(errs, fmt.Errorf("unknown key %q", k))
	}

	raw, ok := in[epsilonsKey]
	if !ok {
		errs = append(errs, fmt.Errorf("missing required key %q", epsilonsKey))
	} else {
		eps, err := ParseSweepList(raw)
		if err != nil {
			errs = append(errs, err)
		}
		sim.Epsilons = eps
	}

	for _, f := range fields {
		v := strings.TrimSpace(in[f.key])
		if v == "" && f.required {
			errs = append(errs, fmt.Errorf("missing required key %q", f.key))
			continue
		}
		*f.dest(sim) = v
	}

	if sim.Temperature != "" {
		if _, err := strconv.ParseFloat(sim.Temperature, 64); err != nil {
			errs = append(errs, fmt.Errorf("temperature %q is not a number", sim.Temperature))
		}
	}
	for key, v := range map[string]string{
		"equilibrate_steps": sim.EquilibrateSteps,
		"production_steps":  sim.ProductionSteps,
	} {
		if v == "" {
			continue
		}
		if n, err := strconv.ParseInt(v, 10, 64); err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("%s %q is not a positive integer", key, v))
		}
	}

	if len(errs) > 0 {
		sortErrors(errs)
		return nil, fmt.Errorf("%w in %s: %w", ErrConfiguration, source, errors.Join(errs...))
	}

	setDefault(&sim.Name, DefaultName)
	setDefault(&sim.Profile, DefaultProfile)
	setDefault(&sim.ParameterTemplate, DefaultParameterTemplate)
	setDefault(&sim.IncoherentDB, DefaultIncoherentDB)
	setDefault(&sim.CoherentDB, DefaultCoherentDB)
	return sim, nil
}

// ParseSweepList splits a comma-separated sweep list. Entries are trimmed of
// surrounding whitespace and must be non-empty, distinct, and usable inside a
// file name. A blank list yields no sweep values.
func ParseSweepList(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for i, p := range parts {
		v := strings.TrimSpace(p)
		switch {
		case v == "":
			return nil, fmt.Errorf("epsilons: entry %d is empty", i+1)
		case strings.ContainsAny(v, `/\`):
			return nil, fmt.Errorf("epsilons: entry %q contains a path separator", v)
		case strings.ContainsFunc(v, isSpaceOrControl):
			return nil, fmt.Errorf("epsilons: entry %q contains whitespace", v)
		case seen[v]:
			return nil, fmt.Errorf("epsilons: duplicate entry %q", v)
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, nil
}

func isSpaceOrControl(r rune) bool {
	return r <= ' ' || r == 0x7f
}

func setDefault(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

// sortErrors keeps the joined message stable regardless of map iteration order.
func sortErrors(errs []error) {
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
}
