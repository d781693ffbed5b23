package workflow

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vk/refinery/internal/ctxlog"
)

// CatalogFile is the replica catalog's file name inside the output directory.
const CatalogFile = "rc.txt"

// Encoder serializes a Workflow for the execution fabric.
type Encoder interface {
	// FileName is the name of the graph file inside the output directory.
	FileName() string
	Encode(w io.Writer, wf *Workflow) error
}

// Commit writes the plan into its output directory: every pending render, the
// graph description produced by enc and the replica catalog. The directory
// must not exist. If any write fails the directory is removed again, along
// with any parent directories Commit created for it.
func (p *Plan) Commit(ctx context.Context, enc Encoder) (err error) {
	logger := ctxlog.FromContext(ctx).With("outdir", p.OutDir)

	// owned is the topmost directory this call creates; rollback removes it
	// and leaves pre-existing ancestors alone.
	parent := filepath.Dir(p.OutDir)
	owned := missingAncestor(parent)
	defer func() {
		if err == nil || owned == "" {
			return
		}
		logger.Debug("Removing partially written output directory.", "path", owned, "error", err)
		if rmErr := os.RemoveAll(owned); rmErr != nil {
			logger.Error("Failed to remove output directory.", "path", owned, "error", rmErr)
		}
	}()

	if err := os.MkdirAll(parent, 0o755); err != nil {
		return &BuildError{Stage: StageWrite, Artifact: p.OutDir, Err: err}
	}
	if err := os.Mkdir(p.OutDir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrOutputDirectoryExists, p.OutDir)
		}
		return &BuildError{Stage: StageWrite, Artifact: p.OutDir, Err: err}
	}
	if owned == "" {
		owned = p.OutDir
	}

	for _, f := range p.Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := p.renderer.RenderTo(f.Template, f.Record, filepath.Join(p.OutDir, f.Name)); err != nil {
			return &BuildError{Stage: StageRender, Sweep: string(f.Sweep), Artifact: f.Name, Err: err}
		}
	}

	graphFile := enc.FileName()
	if err := writeFile(filepath.Join(p.OutDir, graphFile), func(w io.Writer) error {
		return enc.Encode(w, p.Workflow)
	}); err != nil {
		return &BuildError{Stage: StageWrite, Artifact: graphFile, Err: err}
	}

	if err := writeFile(filepath.Join(p.OutDir, CatalogFile), func(w io.Writer) error {
		_, err := p.Catalog.WriteTo(w)
		return err
	}); err != nil {
		return &BuildError{Stage: StageWrite, Artifact: CatalogFile, Err: err}
	}

	logger.Info("Workflow written.", "graph", graphFile, "files", len(p.Files)+2)
	return nil
}

// missingAncestor returns the topmost ancestor of dir, dir included, that
// does not exist yet, or "" when dir already exists.
func missingAncestor(dir string) string {
	top := ""
	for d := dir; ; {
		if _, err := os.Stat(d); !errors.Is(err, fs.ErrNotExist) {
			return top
		}
		top = d
		up := filepath.Dir(d)
		if up == d {
			return top
		}
		d = up
	}
}

func writeFile(path string, fill func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := fill(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
