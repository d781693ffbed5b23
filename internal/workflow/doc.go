/*
Package workflow assembles the parameter-swept task graph.

The graph has a fixed shape. One shared preparation task ("untar") unpacks the
spectral database. Each sweep value then gets a five-task pipeline:

	equilibrate -> production -> ptraj -> incoherent
	                          \-> coherent
	untar -> incoherent, untar -> coherent

Sweep pipelines are independent of each other, and the two spectral branches
of a pipeline are independent of each other; the only shared synchronization
point is the preparation task. The execution fabric derives its parallelism
from the explicit edges, so every edge is emitted even where artifact usage
already implies the ordering.

Planning is two-phase. Engine.Plan checks every configuration render against
its template, registers catalog entries, builds the immutable Workflow and
checks its invariants; nothing touches the output directory. Plan.Commit then
renders and writes all files, and removes the output directory again if any
write fails, so a half-written run never looks valid to the fabric.
*/
package workflow
