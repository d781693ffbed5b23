// Package naming turns a sweep value and a stage into logical artifact names
// and task labels. The sweep value is embedded verbatim: names built while
// assembling the graph and names registered in the replica catalog must match
// byte for byte.
package naming

import "fmt"

// Restart file extensions written by the equilibration stage.
const (
	RestartCoord = "coord"
	RestartXSC   = "xsc"
	RestartVel   = "vel"
)

// RestartExtensions lists the equilibration restart outputs in graph order.
var RestartExtensions = []string{RestartCoord, RestartXSC, RestartVel}

// PreparationLabel labels the single shared task that unpacks the spectral database.
const PreparationLabel = "untar"

func Parameters(eps string) string { return fmt.Sprintf("par%s.prm", eps) }

func EquilibrateStem(eps string) string { return "equilibrate_" + eps }
func EquilibrateConf(eps string) string { return EquilibrateStem(eps) + ".conf" }

// EquilibrateRestart names one restart output; ext is one of RestartExtensions.
func EquilibrateRestart(eps, ext string) string {
	return fmt.Sprintf("%s.restart.%s", EquilibrateStem(eps), ext)
}

func ProductionStem(eps string) string       { return "production_" + eps }
func ProductionConf(eps string) string       { return ProductionStem(eps) + ".conf" }
func ProductionTrajectory(eps string) string { return ProductionStem(eps) + ".dcd" }

func PtrajConf(eps string) string       { return "ptraj_" + eps + ".conf" }
func PtrajTrajectory(eps string) string { return "ptraj_" + eps + ".dcd" }

func IncoherentConf(eps string) string   { return "sassenaInc_" + eps + ".xml" }
func IncoherentOutput(eps string) string { return "fqt_inc_" + eps + ".hd5" }

func CoherentConf(eps string) string   { return "sassenaCoh_" + eps + ".xml" }
func CoherentOutput(eps string) string { return "fqt_coh_" + eps + ".hd5" }

// Task labels.

func EquilibrateLabel(eps string) string { return "namd_eq_" + eps }
func ProductionLabel(eps string) string  { return "namd_prod_" + eps }
func PtrajLabel(eps string) string       { return "amber_ptraj_" + eps }
func IncoherentLabel(eps string) string  { return "sassena_inc_" + eps }
func CoherentLabel(eps string) string    { return "sassena_coh_" + eps }
