// Package emit serializes a workflow.Workflow for the execution fabric.
//
// Two formats are supported: the Pegasus DAX 3.4 XML document the fabric's
// planner has always consumed, and the Pegasus 5 YAML workflow layout. Both
// are deterministic: the same Workflow always produces the same bytes.
package emit
