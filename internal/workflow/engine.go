package workflow

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/vk/refinery/internal/catalog"
	"github.com/vk/refinery/internal/config"
	"github.com/vk/refinery/internal/ctxlog"
	"github.com/vk/refinery/internal/naming"
	"github.com/vk/refinery/internal/profile"
	"github.com/vk/refinery/internal/render"
)

// Engine turns a Simulation into a Plan.
type Engine struct {
	renderer *render.Renderer
	table    *profile.Table
}

// NewEngine creates an engine that renders with r and annotates tasks from table.
func NewEngine(r *render.Renderer, table *profile.Table) *Engine {
	return &Engine{renderer: r, table: table}
}

// File is a pending render: the template, the record that fills it and the
// name it is written under by Commit.
type File struct {
	Name     string
	Sweep    SweepValue
	Template string
	Record   any
}

// Plan is the fully assembled, validated result of one build. Nothing in a
// Plan has been written yet.
type Plan struct {
	// OutDir is the absolute output directory.
	OutDir   string
	Workflow *Workflow
	Files    []File
	Catalog  *catalog.Catalog
	Findings []Finding

	renderer *render.Renderer
}

// globalInputs lists the configured input files in graph order.
func globalInputs(sim *config.Simulation) []string {
	return []string{
		sim.Structure,
		sim.Coordinates,
		sim.SassenaPDB,
		sim.FixedPDB,
		sim.ExtendedSystem,
		sim.BinCoordinates,
		sim.BinVelocities,
		sim.SassenaDB,
	}
}

// assembly is the state of one Plan call.
type assembly struct {
	e       *Engine
	sim     *config.Simulation
	outDir  string
	baseDir string
	b       *builder
	files   []File
	cat     *catalog.Catalog
	untarID string
}

// Plan checks every configuration render, assembles the task graph and
// validates it. It performs no filesystem writes.
func (e *Engine) Plan(ctx context.Context, sim *config.Simulation, outDir string) (*Plan, error) {
	logger := ctxlog.FromContext(ctx).With("workflow", sim.Name)

	if err := e.table.Require(kindStrings()...); err != nil {
		return nil, &BuildError{Stage: StageProfile, Err: err}
	}

	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return nil, &BuildError{Stage: StageInputs, Artifact: outDir, Err: err}
	}
	baseDir := "."
	if sim.Source != "" {
		baseDir = filepath.Dir(sim.Source)
	}

	a := &assembly{
		e:       e,
		sim:     sim,
		outDir:  absOut,
		baseDir: baseDir,
		b:       newBuilder(sim.Name),
		cat:     catalog.New(),
	}

	logger.Debug("Registering external inputs.")
	if err := a.registerInputs(); err != nil {
		return nil, err
	}
	if err := a.addPreparation(); err != nil {
		return nil, err
	}

	for _, raw := range sim.Epsilons {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		eps := SweepValue(raw)
		logger.Debug("Assembling sweep pipeline.", "sweep", raw)
		if err := a.addSweep(eps); err != nil {
			return nil, err
		}
	}

	wf := a.b.build()
	if err := Validate(wf); err != nil {
		return nil, &BuildError{Stage: StageValidate, Err: err}
	}
	if err := a.registerOutputs(wf); err != nil {
		return nil, err
	}

	findings := Lint(wf)
	for _, f := range findings {
		logger.Warn("Workflow lint finding.", "kind", f.Kind, "task", f.Task, "artifact", f.Artifact, "detail", f.Message)
	}
	logger.Info("Workflow planned.", "tasks", wf.Len(), "edges", len(wf.Edges()), "files", len(a.files), "catalog_entries", a.cat.Len())

	return &Plan{
		OutDir:   absOut,
		Workflow: wf,
		Files:    a.files,
		Catalog:  a.cat,
		Findings: findings,
		renderer: e.renderer,
	}, nil
}

func kindStrings() []string {
	out := make([]string, len(Kinds))
	for i, k := range Kinds {
		out[i] = string(k)
	}
	return out
}

func (a *assembly) profileFor(kind TaskKind) profile.Profile {
	p, err := a.e.table.Lookup(string(kind))
	if err != nil {
		// Plan checked the table covers Kinds before assembly started.
		panic(err)
	}
	return p
}

func (a *assembly) registerInputs() error {
	for _, name := range globalInputs(a.sim) {
		a.b.declareInput(name)
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.baseDir, path)
		}
		if err := a.cat.Add(name, path); err != nil {
			return &BuildError{Stage: StageCatalog, Artifact: name, Err: err}
		}
	}
	return nil
}

// registerOutputs adds the staged-out results at their final location.
func (a *assembly) registerOutputs(wf *Workflow) error {
	for _, n := range wf.nodes {
		for _, u := range n.Uses {
			if u.Link != LinkOutput || !u.Transfer {
				continue
			}
			if err := a.cat.Add(u.Name, filepath.Join(a.outDir, u.Name)); err != nil {
				return &BuildError{Stage: StageCatalog, Sweep: string(n.Sweep), Artifact: u.Name, Err: err}
			}
		}
	}
	return nil
}

func (a *assembly) addPreparation() error {
	sim := a.sim
	id, err := a.b.addTask(TaskNode{
		Kind:       KindUntar,
		Executable: "tar",
		Label:      naming.PreparationLabel,
		Args:       []Arg{lit("-xzvf"), fileArg(sim.SassenaDB)},
		Uses: []Usage{
			{Name: sim.SassenaDB, Link: LinkInput},
			{Name: sim.IncoherentDB, Link: LinkOutput},
			{Name: sim.CoherentDB, Link: LinkOutput},
		},
		Profile: a.profileFor(KindUntar),
	})
	if err != nil {
		return &BuildError{Stage: StageAssemble, Artifact: naming.PreparationLabel, Err: err}
	}
	a.untarID = id
	return nil
}

// render queues one template render for Commit and registers its output in
// the catalog. The record is checked against the template now so a missing
// template or placeholder fails the plan, not the write.
func (a *assembly) render(eps SweepValue, templateID, name string, record any) error {
	if err := a.e.renderer.Check(templateID, record); err != nil {
		return &BuildError{Stage: StageRender, Sweep: string(eps), Artifact: name, Err: err}
	}
	if err := a.cat.Add(name, filepath.Join(a.outDir, name)); err != nil {
		return &BuildError{Stage: StageCatalog, Sweep: string(eps), Artifact: name, Err: err}
	}
	a.b.declareInput(name)
	a.files = append(a.files, File{Name: name, Sweep: eps, Template: templateID, Record: record})
	return nil
}

// ParameterCoefficient derives the nonbonded well depth written into the
// parameter file: -0.01 times the sweep value, fixed width 10, 6 decimals.
func ParameterCoefficient(eps SweepValue) (string, error) {
	v, err := strconv.ParseFloat(string(eps), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("%w %q: not a finite decimal number", ErrInvalidSweepValue, eps)
	}
	return fmt.Sprintf("%10.6f", -0.01*v), nil
}

func (a *assembly) renderSweep(eps SweepValue) error {
	sim := a.sim
	s := string(eps)

	coefficient, err := ParameterCoefficient(eps)
	if err != nil {
		return &BuildError{Stage: StageRender, Sweep: s, Artifact: naming.Parameters(s), Err: err}
	}

	parameters := naming.Parameters(s)
	renders := []struct {
		template string
		name     string
		record   any
	}{
		{sim.ParameterTemplate, parameters, render.ParameterFile{Epsilon: coefficient}},
		{render.EquilibrateTemplate, naming.EquilibrateConf(s), render.EquilibrateConfig{
			Temperature:    sim.Temperature,
			Epsilon:        s,
			Structure:      sim.Structure,
			Coordinates:    sim.Coordinates,
			Parameters:     parameters,
			FixedPDB:       sim.FixedPDB,
			OutputName:     naming.EquilibrateStem(s),
			ExtendedSystem: sim.ExtendedSystem,
			BinCoordinates: sim.BinCoordinates,
			BinVelocities:  sim.BinVelocities,
			Timesteps:      sim.EquilibrateSteps,
		}},
		{render.ProductionTemplate, naming.ProductionConf(s), render.ProductionConfig{
			Temperature: sim.Temperature,
			Epsilon:     s,
			Structure:   sim.Structure,
			Coordinates: sim.Coordinates,
			Parameters:  parameters,
			FixedPDB:    sim.FixedPDB,
			InputName:   naming.EquilibrateStem(s),
			OutputName:  naming.ProductionStem(s),
			Timesteps:   sim.ProductionSteps,
		}},
		{render.PtrajTemplate, naming.PtrajConf(s), render.PtrajConfig{
			TrajectoryInput:  naming.ProductionTrajectory(s),
			TrajectoryOutput: naming.PtrajTrajectory(s),
		}},
		{render.IncoherentTemplate, naming.IncoherentConf(s), render.SpectralConfig{
			SassenaPDB: sim.SassenaPDB,
			Trajectory: naming.PtrajTrajectory(s),
			Output:     naming.IncoherentOutput(s),
			Database:   sim.IncoherentDB,
		}},
		{render.CoherentTemplate, naming.CoherentConf(s), render.SpectralConfig{
			SassenaPDB: sim.SassenaPDB,
			Trajectory: naming.PtrajTrajectory(s),
			Output:     naming.CoherentOutput(s),
			Database:   sim.CoherentDB,
		}},
	}
	for _, r := range renders {
		if err := a.render(eps, r.template, r.name, r.record); err != nil {
			return err
		}
	}
	return nil
}

func (a *assembly) addSweep(eps SweepValue) error {
	if err := a.renderSweep(eps); err != nil {
		return err
	}

	sim := a.sim
	s := string(eps)

	restarts := make([]string, len(naming.RestartExtensions))
	for i, ext := range naming.RestartExtensions {
		restarts[i] = naming.EquilibrateRestart(s, ext)
	}

	eqUses := []Usage{
		in(naming.EquilibrateConf(s)),
		in(sim.Structure),
		in(sim.Coordinates),
		in(naming.Parameters(s)),
		in(sim.FixedPDB),
		in(sim.ExtendedSystem),
		in(sim.BinCoordinates),
		in(sim.BinVelocities),
	}
	for _, r := range restarts {
		eqUses = append(eqUses, out(r, false))
	}
	eqID, err := a.add(eps, TaskNode{
		Kind:       KindEquilibrate,
		Executable: "namd",
		Label:      naming.EquilibrateLabel(s),
		Args:       []Arg{fileArg(naming.EquilibrateConf(s))},
		Uses:       eqUses,
	})
	if err != nil {
		return err
	}

	prodUses := []Usage{
		in(naming.ProductionConf(s)),
		in(sim.Structure),
		in(sim.Coordinates),
		in(naming.Parameters(s)),
		in(sim.FixedPDB),
	}
	for _, r := range restarts {
		prodUses = append(prodUses, in(r))
	}
	prodUses = append(prodUses, out(naming.ProductionTrajectory(s), true))
	prodID, err := a.add(eps, TaskNode{
		Kind:       KindProduction,
		Executable: "namd",
		Label:      naming.ProductionLabel(s),
		Args:       []Arg{fileArg(naming.ProductionConf(s))},
		Uses:       prodUses,
	}, eqID)
	if err != nil {
		return err
	}

	ptrajID, err := a.add(eps, TaskNode{
		Kind:       KindPtraj,
		Namespace:  "amber",
		Executable: "ptraj",
		Label:      naming.PtrajLabel(s),
		Args:       []Arg{fileArg(sim.Coordinates)},
		Stdin:      naming.PtrajConf(s),
		Uses: []Usage{
			in(sim.Coordinates),
			in(naming.PtrajConf(s)),
			in(naming.ProductionTrajectory(s)),
			out(naming.PtrajTrajectory(s), true),
		},
	}, prodID)
	if err != nil {
		return err
	}

	if _, err := a.add(eps, TaskNode{
		Kind:       KindIncoherent,
		Executable: "sassena",
		Label:      naming.IncoherentLabel(s),
		Args:       []Arg{lit("--config"), fileArg(naming.IncoherentConf(s))},
		Uses: []Usage{
			in(naming.IncoherentConf(s)),
			in(naming.PtrajTrajectory(s)),
			in(sim.IncoherentDB),
			in(sim.SassenaPDB),
			out(naming.IncoherentOutput(s), true),
		},
	}, ptrajID, a.untarID); err != nil {
		return err
	}

	// The coherent branch reads the ptraj trajectory but is ordered after
	// production only. Lint reports the gap.
	if _, err := a.add(eps, TaskNode{
		Kind:       KindCoherent,
		Executable: "sassena",
		Label:      naming.CoherentLabel(s),
		Args:       []Arg{lit("--config"), fileArg(naming.CoherentConf(s))},
		Uses: []Usage{
			in(naming.CoherentConf(s)),
			in(naming.PtrajTrajectory(s)),
			in(sim.CoherentDB),
			in(sim.SassenaPDB),
			out(naming.CoherentOutput(s), true),
		},
	}, prodID, a.untarID); err != nil {
		return err
	}
	return nil
}

// add appends a sweep task with its profile and edges from parents.
func (a *assembly) add(eps SweepValue, t TaskNode, parents ...string) (string, error) {
	t.Sweep = eps
	t.Profile = a.profileFor(t.Kind)
	id, err := a.b.addTask(t)
	if err != nil {
		return "", &BuildError{Stage: StageAssemble, Sweep: string(eps), Artifact: t.Label, Err: err}
	}
	for _, p := range parents {
		if err := a.b.depends(id, p); err != nil {
			return "", &BuildError{Stage: StageAssemble, Sweep: string(eps), Artifact: t.Label, Err: err}
		}
	}
	return id, nil
}

func in(name string) Usage { return Usage{Name: name, Link: LinkInput} }

func out(name string, transfer bool) Usage {
	return Usage{Name: name, Link: LinkOutput, Transfer: transfer}
}
