package workflow

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSweepValue is returned when a sweep value cannot be read as a
	// decimal number.
	ErrInvalidSweepValue = errors.New("invalid sweep value")
	// ErrInvariant is returned when an assembled graph breaks one of its
	// structural rules.
	ErrInvariant = errors.New("workflow invariant violated")
	// ErrOutputDirectoryExists is returned by Commit when the output
	// directory is already present.
	ErrOutputDirectoryExists = errors.New("output directory already exists")
)

// Stage names the step of planning or committing that failed.
type Stage string

const (
	StageProfile  Stage = "profile"
	StageInputs   Stage = "inputs"
	StageRender   Stage = "render"
	StageCatalog  Stage = "catalog"
	StageAssemble Stage = "assemble"
	StageValidate Stage = "validate"
	StageWrite    Stage = "write"
)

// BuildError carries the context of a failed build: the stage, and where it
// applies the sweep value and artifact involved.
type BuildError struct {
	Stage    Stage
	Sweep    string
	Artifact string
	Err      error
}

func (e *BuildError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", e.Stage)
	if e.Sweep != "" {
		fmt.Fprintf(&b, " [sweep %s]", e.Sweep)
	}
	if e.Artifact != "" {
		fmt.Fprintf(&b, " [%s]", e.Artifact)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *BuildError) Unwrap() error { return e.Err }
