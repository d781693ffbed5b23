package dag

// Graph is a collection of nodes and their dependencies, representing a DAG.
// Nodes and edges keep their insertion order so every query result, and
// everything serialized from it, is deterministic. A Graph has a single
// writer and is not safe for concurrent mutation.
type Graph struct {
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order records node IDs in insertion order.
	order []string
	// edges records edges in insertion order.
	edges []Edge
}

// Edge is a directed edge: To must not start before From completes.
type Edge struct {
	From string
	To   string
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using string IDs),
// not by direct struct manipulation.
type node struct {
	id string
	// deps holds the IDs this node depends on (predecessors), in insertion order.
	deps []string
	// dependents holds the IDs that depend on this node (successors), in insertion order.
	dependents []string
}
