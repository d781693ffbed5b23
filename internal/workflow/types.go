package workflow

import (
	"slices"

	"github.com/vk/refinery/internal/dag"
	"github.com/vk/refinery/internal/profile"
)

// SweepValue is one entry of the sweep list, exactly as written after
// trimming. It is embedded verbatim in artifact names and labels.
type SweepValue string

// TaskKind identifies the stage a task belongs to. It is also the key into
// the resource profile table.
type TaskKind string

const (
	KindUntar       TaskKind = "untar"
	KindEquilibrate TaskKind = "equilibrate"
	KindProduction  TaskKind = "production"
	KindPtraj       TaskKind = "ptraj"
	KindIncoherent  TaskKind = "incoherent"
	KindCoherent    TaskKind = "coherent"
)

// Kinds lists every task kind the engine creates.
var Kinds = []TaskKind{KindUntar, KindEquilibrate, KindProduction, KindPtraj, KindIncoherent, KindCoherent}

// Link is the direction of an artifact relative to a task.
type Link string

const (
	LinkInput  Link = "input"
	LinkOutput Link = "output"
)

// Usage declares that a task reads or writes an artifact. Transfer is only
// meaningful for outputs: it asks the fabric to stage the file out.
type Usage struct {
	Name     string
	Link     Link
	Transfer bool
}

// Arg is one positional argument: a literal token or a reference to a
// logical file.
type Arg struct {
	Literal string
	File    string
}

// IsFile reports whether the argument references a logical file.
func (a Arg) IsFile() bool { return a.File != "" }

// String returns the token as it would appear on a command line.
func (a Arg) String() string {
	if a.IsFile() {
		return a.File
	}
	return a.Literal
}

func lit(s string) Arg     { return Arg{Literal: s} }
func fileArg(n string) Arg { return Arg{File: n} }

// TaskNode is one unit of work. Nodes are created once and never mutated.
type TaskNode struct {
	// ID is the sequential job identifier, e.g. "ID0000001".
	ID         string
	Kind       TaskKind
	Namespace  string
	Executable string
	// Label is unique within the workflow.
	Label string
	// Sweep is the sweep value the task belongs to; empty for the shared
	// preparation task.
	Sweep   SweepValue
	Args    []Arg
	Stdin   string
	Uses    []Usage
	Profile profile.Profile
}

func (t TaskNode) clone() TaskNode {
	t.Args = slices.Clone(t.Args)
	t.Uses = slices.Clone(t.Uses)
	return t
}

// Inputs returns the names of artifacts the task consumes, in declaration order.
func (t TaskNode) Inputs() []string { return t.names(LinkInput) }

// Outputs returns the names of artifacts the task produces, in declaration order.
func (t TaskNode) Outputs() []string { return t.names(LinkOutput) }

func (t TaskNode) names(link Link) []string {
	var out []string
	for _, u := range t.Uses {
		if u.Link == link {
			out = append(out, u.Name)
		}
	}
	return out
}

// Edge is a dependency edge: Child must not start before Parent completes.
// Both ends are task IDs.
type Edge struct {
	Parent string
	Child  string
}

// Workflow is the finished, immutable task graph.
type Workflow struct {
	name     string
	nodes    []TaskNode
	byID     map[string]int
	byLabel  map[string]int
	graph    *dag.Graph
	external []string
}

// Name returns the workflow name.
func (w *Workflow) Name() string { return w.name }

// Len returns the number of task nodes.
func (w *Workflow) Len() int { return len(w.nodes) }

// Nodes returns copies of all task nodes in creation order.
func (w *Workflow) Nodes() []TaskNode {
	out := make([]TaskNode, len(w.nodes))
	for i, n := range w.nodes {
		out[i] = n.clone()
	}
	return out
}

// Node returns the task with the given ID.
func (w *Workflow) Node(id string) (TaskNode, bool) {
	i, ok := w.byID[id]
	if !ok {
		return TaskNode{}, false
	}
	return w.nodes[i].clone(), true
}

// NodeByLabel returns the task with the given label.
func (w *Workflow) NodeByLabel(label string) (TaskNode, bool) {
	i, ok := w.byLabel[label]
	if !ok {
		return TaskNode{}, false
	}
	return w.nodes[i].clone(), true
}

// Edges returns all dependency edges in creation order.
func (w *Workflow) Edges() []Edge {
	edges := w.graph.Edges()
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[i] = Edge{Parent: e.From, Child: e.To}
	}
	return out
}

// Parents returns the IDs of the tasks id directly depends on.
func (w *Workflow) Parents(id string) []string {
	deps, err := w.graph.Dependencies(id)
	if err != nil {
		return nil
	}
	return deps
}

// Children returns the IDs of the tasks that directly depend on id.
func (w *Workflow) Children(id string) []string {
	deps, err := w.graph.Dependents(id)
	if err != nil {
		return nil
	}
	return deps
}

// ExternalInputs returns the artifacts that exist before the run starts:
// the configured global inputs followed by the rendered configuration files.
func (w *Workflow) ExternalInputs() []string {
	return slices.Clone(w.external)
}

// TopologicalOrder returns task IDs with every task after its parents.
func (w *Workflow) TopologicalOrder() []string {
	order, err := w.graph.TopologicalOrder()
	if err != nil {
		// Validate rejects cyclic graphs before a Workflow is handed out.
		panic(err)
	}
	return order
}
