// Package config defines the format-agnostic simulation configuration model
// and the Loader interface implemented by the concrete file formats.
//
// A Loader only has to turn a file into flat key/value Fields; Decode owns the
// shared rules (known keys, required keys, defaults, sweep-list parsing) so
// the HCL, YAML and INI front ends cannot drift apart. The resulting
// *Simulation is the single input of the workflow assembly engine.
package config
