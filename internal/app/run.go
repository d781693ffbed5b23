package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vk/refinery/internal/config"
	"github.com/vk/refinery/internal/ctxlog"
	"github.com/vk/refinery/internal/emit"
	"github.com/vk/refinery/internal/profile"
	"github.com/vk/refinery/internal/render"
	"github.com/vk/refinery/internal/workflow"
)

// Run generates the workflow: it plans everything in memory and only then
// writes the output directory.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.OutDir == "" {
		return errors.New("no output directory given")
	}
	if _, err := os.Stat(a.config.OutDir); err == nil {
		return fmt.Errorf("%w: %s", ErrOutputDirectoryExists, a.config.OutDir)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking output directory: %w", err)
	}

	enc, err := emit.ForFormat(a.config.Format)
	if err != nil {
		return err
	}

	plan, err := a.plan(ctx, a.config.OutDir)
	if err != nil {
		return err
	}
	if err := plan.Commit(ctx, enc); err != nil {
		return fmt.Errorf("writing workflow: %w", err)
	}

	a.logger.Info("Workflow generated.",
		"outdir", plan.OutDir,
		"graph", enc.FileName(),
		"tasks", plan.Workflow.Len(),
		"files", len(plan.Files),
	)
	a.logger.Debug("App.Run method finished.")
	return nil
}

// Check plans the workflow without writing anything and returns the lint
// findings.
func (a *App) Check(ctx context.Context) ([]workflow.Finding, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Check method started.")

	outDir := a.config.OutDir
	if outDir == "" {
		outDir = filepath.Join(filepath.Dir(a.config.ConfigPath), "out")
	}
	plan, err := a.plan(ctx, outDir)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Workflow checked.", "tasks", plan.Workflow.Len(), "findings", len(plan.Findings))
	return plan.Findings, nil
}

func (a *App) plan(ctx context.Context, outDir string) (*workflow.Plan, error) {
	sim, err := a.loadSimulation(ctx)
	if err != nil {
		return nil, err
	}
	ctx = ctxlog.With(ctx, "config", sim.Source)

	table, err := a.loadProfiles(sim)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Profile table selected.", "table", table.Name)

	templateDir := a.config.TemplateDir
	if templateDir == "" && sim.TemplateDir != "" {
		templateDir = relativeTo(sim.Source, sim.TemplateDir)
	}
	renderer, err := render.New(templateDir)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	a.logger.Debug("Templates loaded.", "dir", templateDir, "templates", renderer.IDs())

	return workflow.NewEngine(renderer, table).Plan(ctx, sim, outDir)
}

func (a *App) loadSimulation(ctx context.Context) (*config.Simulation, error) {
	path := a.config.ConfigPath
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", config.ErrConfiguration, path)
	}

	loader, err := config.LoaderFor(path, a.loaders...)
	if err != nil {
		return nil, err
	}
	sim, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Configuration loaded.", "path", path, "sweep_values", len(sim.Epsilons))
	return sim, nil
}

// loadProfiles resolves the profile table: command-line overrides win over
// the configuration file, and a table file wins over a table name.
func (a *App) loadProfiles(sim *config.Simulation) (*profile.Table, error) {
	switch {
	case a.config.ProfileFile != "":
		return profile.LoadFile(a.config.ProfileFile)
	case a.config.Profile != "":
		return profile.Load(a.config.Profile)
	case sim.ProfileFile != "":
		return profile.LoadFile(relativeTo(sim.Source, sim.ProfileFile))
	default:
		return profile.Load(sim.Profile)
	}
}

// relativeTo resolves a path written in a configuration file against the
// file's directory.
func relativeTo(source, path string) string {
	if filepath.IsAbs(path) || source == "" {
		return path
	}
	return filepath.Join(filepath.Dir(source), path)
}
