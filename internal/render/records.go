package render

// Template identifiers of the default set. The parameter file identifier can
// be replaced per facility through configuration.
const (
	ParametersTemplate  = "parameters.prm"
	EquilibrateTemplate = "equilibrate.conf"
	ProductionTemplate  = "production.conf"
	PtrajTemplate       = "rms2first.ptraj"
	IncoherentTemplate  = "sassenaInc.xml"
	CoherentTemplate    = "sassenaCoh.xml"
)

// ParameterFile fills the nonbonded parameter template.
type ParameterFile struct {
	// Epsilon is the derived well depth, already formatted.
	Epsilon string `cty:"epsilon"`
}

// EquilibrateConfig fills the equilibration stage configuration.
type EquilibrateConfig struct {
	Temperature    string `cty:"temperature"`
	Epsilon        string `cty:"epsilon"`
	Structure      string `cty:"structure"`
	Coordinates    string `cty:"coordinates"`
	Parameters     string `cty:"parameters"`
	FixedPDB       string `cty:"fixed_pdb"`
	OutputName     string `cty:"outputname"`
	ExtendedSystem string `cty:"extended_system"`
	BinCoordinates string `cty:"bin_coordinates"`
	BinVelocities  string `cty:"bin_velocities"`
	Timesteps      string `cty:"timesteps"`
}

// ProductionConfig fills the production stage configuration.
type ProductionConfig struct {
	Temperature string `cty:"temperature"`
	Epsilon     string `cty:"epsilon"`
	Structure   string `cty:"structure"`
	Coordinates string `cty:"coordinates"`
	Parameters  string `cty:"parameters"`
	FixedPDB    string `cty:"fixed_pdb"`
	InputName   string `cty:"inputname"`
	OutputName  string `cty:"outputname"`
	Timesteps   string `cty:"timesteps"`
}

// PtrajConfig fills the trajectory-processing script.
type PtrajConfig struct {
	TrajectoryInput  string `cty:"trajectory_input"`
	TrajectoryOutput string `cty:"trajectory_output"`
}

// SpectralConfig fills both the incoherent and coherent scattering configs.
type SpectralConfig struct {
	SassenaPDB string `cty:"sassena_pdb"`
	Trajectory string `cty:"trajectory"`
	Output     string `cty:"output"`
	Database   string `cty:"database"`
}
