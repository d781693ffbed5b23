package workflow

import (
	"errors"
	"fmt"
	"slices"
)

// Validate checks the structural rules of an assembled graph:
//
//   - every consumed artifact has exactly one producing task, or is a
//     declared external input, never both;
//   - exactly one preparation task exists and it has no sweep identity;
//   - labels are non-empty and unique;
//   - every task is a graph node, edges reference existing tasks and
//     form no cycle.
//
// All violations are reported together.
func Validate(w *Workflow) error {
	var errs []error

	external := make(map[string]bool, len(w.external))
	for _, name := range w.external {
		external[name] = true
	}

	producers := make(map[string][]string)
	labels := make(map[string]bool, len(w.nodes))
	preparation := 0
	for _, n := range w.nodes {
		if n.Label == "" {
			errs = append(errs, fmt.Errorf("task %s has an empty label", n.ID))
		} else if labels[n.Label] {
			errs = append(errs, fmt.Errorf("duplicate task label %q", n.Label))
		}
		labels[n.Label] = true

		if !w.graph.HasNode(n.ID) {
			errs = append(errs, fmt.Errorf("task %s (%s) is missing from the dependency graph", n.ID, n.Label))
		}

		if n.Kind == KindUntar {
			preparation++
			if n.Sweep != "" {
				errs = append(errs, fmt.Errorf("preparation task %s carries sweep value %q", n.Label, n.Sweep))
			}
		}
		for _, name := range n.Outputs() {
			producers[name] = append(producers[name], n.Label)
		}
	}
	if preparation != 1 {
		errs = append(errs, fmt.Errorf("expected exactly one preparation task, found %d", preparation))
	}

	// Sorted so the joined error is stable.
	produced := make([]string, 0, len(producers))
	for name := range producers {
		produced = append(produced, name)
	}
	slices.Sort(produced)
	for _, name := range produced {
		if by := producers[name]; len(by) > 1 {
			errs = append(errs, fmt.Errorf("artifact %q produced by %d tasks: %v", name, len(by), by))
		}
		if external[name] {
			errs = append(errs, fmt.Errorf("artifact %q is both an external input and produced by %s", name, producers[name][0]))
		}
	}

	for _, n := range w.nodes {
		for _, name := range n.Inputs() {
			if !external[name] && len(producers[name]) == 0 {
				errs = append(errs, fmt.Errorf("task %s consumes %q, which is neither produced nor an external input", n.Label, name))
			}
		}
		if n.Stdin != "" && !slices.Contains(n.Inputs(), n.Stdin) {
			errs = append(errs, fmt.Errorf("task %s reads %q on stdin without declaring it as an input", n.Label, n.Stdin))
		}
	}

	for _, e := range w.graph.Edges() {
		if _, ok := w.byID[e.From]; !ok {
			errs = append(errs, fmt.Errorf("edge references unknown task %s", e.From))
		}
		if _, ok := w.byID[e.To]; !ok {
			errs = append(errs, fmt.Errorf("edge references unknown task %s", e.To))
		}
	}
	if err := w.graph.DetectCycles(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvariant, errors.Join(errs...))
	}
	return nil
}

// FindingKind classifies a lint finding.
type FindingKind string

const (
	// FindingUncoveredInput: a task consumes an artifact whose producer is
	// not among its transitive dependencies, so the fabric may start it
	// before the artifact exists.
	FindingUncoveredInput FindingKind = "uncovered-input"
	// FindingUnusedIntermediate: a non-transferred output nothing consumes.
	FindingUnusedIntermediate FindingKind = "unused-intermediate"
)

// Finding is a non-fatal observation about a graph.
type Finding struct {
	Kind     FindingKind
	Task     string
	Artifact string
	Message  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s (%s): %s", f.Kind, f.Task, f.Artifact, f.Message)
}

// Lint reports ordering gaps and dead intermediates. It expects a graph that
// passed Validate.
func Lint(w *Workflow) []Finding {
	var findings []Finding

	producer := make(map[string]TaskNode)
	consumed := make(map[string]bool)
	for _, n := range w.nodes {
		for _, name := range n.Outputs() {
			producer[name] = n
		}
		for _, name := range n.Inputs() {
			consumed[name] = true
		}
	}

	for _, n := range w.nodes {
		ancestors, err := w.graph.Ancestors(n.ID)
		if err != nil {
			continue
		}
		for _, name := range n.Inputs() {
			p, ok := producer[name]
			if !ok || ancestors[p.ID] {
				continue
			}
			findings = append(findings, Finding{
				Kind:     FindingUncoveredInput,
				Task:     n.Label,
				Artifact: name,
				Message:  fmt.Sprintf("produced by %s, which is not a dependency", p.Label),
			})
		}
	}

	for _, n := range w.nodes {
		for _, u := range n.Uses {
			if u.Link != LinkOutput || u.Transfer || consumed[u.Name] {
				continue
			}
			findings = append(findings, Finding{
				Kind:     FindingUnusedIntermediate,
				Task:     n.Label,
				Artifact: u.Name,
				Message:  "output is neither transferred nor consumed",
			})
		}
	}
	return findings
}
