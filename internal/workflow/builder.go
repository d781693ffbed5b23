package workflow

import (
	"fmt"

	"github.com/vk/refinery/internal/dag"
)

// builder accumulates tasks and edges. It only ever appends; the Workflow it
// produces shares nothing mutable with it.
type builder struct {
	name     string
	nodes    []TaskNode
	byID     map[string]int
	byLabel  map[string]int
	graph    *dag.Graph
	external []string
	seen     map[string]bool
}

func newBuilder(name string) *builder {
	return &builder{
		name:    name,
		byID:    make(map[string]int),
		byLabel: make(map[string]int),
		graph:   dag.New(),
		seen:    make(map[string]bool),
	}
}

// declareInput records a pre-existing artifact. Repeated names collapse.
func (b *builder) declareInput(name string) {
	if b.seen[name] {
		return
	}
	b.seen[name] = true
	b.external = append(b.external, name)
}

// addTask assigns the next sequential ID and appends the task.
func (b *builder) addTask(t TaskNode) (string, error) {
	if t.Label == "" {
		return "", fmt.Errorf("%w: task of kind %s has no label", ErrInvariant, t.Kind)
	}
	if _, dup := b.byLabel[t.Label]; dup {
		return "", fmt.Errorf("%w: duplicate task label %q", ErrInvariant, t.Label)
	}
	t.ID = fmt.Sprintf("ID%07d", len(b.nodes)+1)
	if !b.graph.AddNode(t.ID) {
		return "", fmt.Errorf("%w: duplicate task id %s", ErrInvariant, t.ID)
	}
	b.byID[t.ID] = len(b.nodes)
	b.byLabel[t.Label] = len(b.nodes)
	b.nodes = append(b.nodes, t)
	return t.ID, nil
}

// depends adds the edge parent -> child.
func (b *builder) depends(child, parent string) error {
	return b.graph.AddEdge(parent, child)
}

// build hands the accumulated state over to an immutable Workflow. The
// builder must not be used afterwards.
func (b *builder) build() *Workflow {
	w := &Workflow{
		name:     b.name,
		nodes:    b.nodes,
		byID:     b.byID,
		byLabel:  b.byLabel,
		graph:    b.graph,
		external: b.external,
	}
	*b = builder{}
	return w
}
