package dag

import (
	"fmt"
	"slices"
)

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. It reports whether
// the node was added; an existing ID is left untouched.
func (g *Graph) AddNode(id string) bool {
	if _, ok := g.nodes[id]; ok {
		return false
	}
	g.nodes[id] = &node{id: id}
	g.order = append(g.order, id)
	return true
}

// HasNode reports whether id is in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. An error is returned
// if either node does not exist or if the edge would create a self-reference.
// Adding an existing edge again is a no-op.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	if slices.Contains(toNode.deps, fromID) {
		return nil
	}
	toNode.deps = append(toNode.deps, fromID)
	fromNode.dependents = append(fromNode.dependents, toID)
	g.edges = append(g.edges, Edge{From: fromID, To: toID})
	return nil
}

// Nodes returns all node IDs in insertion order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.order)
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// Dependencies returns the IDs the given node depends on, in insertion order.
func (g *Graph) Dependencies(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return slices.Clone(n.deps), nil
}

// Dependents returns the IDs that depend on the given node, in insertion order.
func (g *Graph) Dependents(id string) ([]string, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return slices.Clone(n.dependents), nil
}

// Ancestors returns the set of nodes id transitively depends on, i.e. every
// node guaranteed to have completed before id starts.
func (g *Graph) Ancestors(id string) (map[string]bool, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	seen := make(map[string]bool)
	stack := slices.Clone(g.nodes[id].deps)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, g.nodes[cur].deps...)
	}
	return seen, nil
}

// DetectCycles checks the graph for any cycles. It returns a non-nil error
// if a cycle is found, indicating the first node involved in the detected cycle.
func (g *Graph) DetectCycles() error {
	// Use classic depth-first search with three sets of nodes:
	// permanent: nodes that have been fully visited and are not part of a cycle.
	// temporary: nodes currently in the recursion stack for the current traversal.
	// unvisited: all other nodes.
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *node) error
	visit = func(n *node) error {
		if permanent[n.id] {
			return nil
		}
		if temporary[n.id] {
			return fmt.Errorf("cycle detected involving node '%s'", n.id)
		}

		temporary[n.id] = true
		for _, dep := range n.dependents {
			if err := visit(g.nodes[dep]); err != nil {
				return err
			}
		}
		delete(temporary, n.id)
		permanent[n.id] = true
		return nil
	}

	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return err
		}
	}
	return nil
}

// TopologicalOrder returns every node ID such that each node appears after
// all of its dependencies. Ties are broken by insertion order, so the result
// is stable for a given construction sequence.
func (g *Graph) TopologicalOrder() ([]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	for _, id := range g.order {
		indegree[id] = len(g.nodes[id].deps)
	}

	// Kahn's algorithm; the ready list is kept in insertion order.
	position := make(map[string]int, len(g.order))
	for i, id := range g.order {
		position[id] = i
	}
	var ready []string
	for _, id := range g.order {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	out := make([]string, 0, len(g.order))
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		out = append(out, cur)
		for _, next := range g.nodes[cur].dependents {
			indegree[next]--
			if indegree[next] == 0 {
				i, _ := slices.BinarySearchFunc(ready, next, func(a, b string) int {
					return position[a] - position[b]
				})
				ready = slices.Insert(ready, i, next)
			}
		}
	}

	if len(out) != len(g.order) {
		return nil, fmt.Errorf("graph contains a cycle; %d of %d nodes ordered", len(out), len(g.order))
	}
	return out, nil
}
