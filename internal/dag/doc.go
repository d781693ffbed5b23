// Package dag is a small, generic directed acyclic graph keyed by string IDs.
// The workflow engine uses it for the task dependency topology: edge
// bookkeeping, cycle detection, dependency closures and a stable
// topological order for serialization.
package dag
