package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNames(t *testing.T) {
	testCases := []struct {
		got  string
		want string
	}{
		{Parameters("5"), "par5.prm"},
		{EquilibrateConf("5"), "equilibrate_5.conf"},
		{EquilibrateRestart("5", RestartCoord), "equilibrate_5.restart.coord"},
		{EquilibrateRestart("5", RestartXSC), "equilibrate_5.restart.xsc"},
		{EquilibrateRestart("5", RestartVel), "equilibrate_5.restart.vel"},
		{ProductionConf("5"), "production_5.conf"},
		{ProductionTrajectory("5"), "production_5.dcd"},
		{PtrajConf("5"), "ptraj_5.conf"},
		{PtrajTrajectory("5"), "ptraj_5.dcd"},
		{IncoherentConf("5"), "sassenaInc_5.xml"},
		{IncoherentOutput("5"), "fqt_inc_5.hd5"},
		{CoherentConf("5"), "sassenaCoh_5.xml"},
		{CoherentOutput("5"), "fqt_coh_5.hd5"},
		{EquilibrateLabel("5"), "namd_eq_5"},
		{ProductionLabel("5"), "namd_prod_5"},
		{PtrajLabel("5"), "amber_ptraj_5"},
		{IncoherentLabel("5"), "sassena_inc_5"},
		{CoherentLabel("5"), "sassena_coh_5"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, tc.got)
	}
}

func TestNoNormalization(t *testing.T) {
	assert.Equal(t, "par5.0.prm", Parameters("5.0"))
	assert.Equal(t, "fqt_coh_1e1.hd5", CoherentOutput("1e1"))
	assert.NotEqual(t, Parameters("5"), Parameters("5.0"))
}

// perSweep lists every logical artifact name generated for one sweep value.
func perSweep(eps string) []string {
	names := []string{
		Parameters(eps),
		EquilibrateConf(eps),
	}
	for _, ext := range RestartExtensions {
		names = append(names, EquilibrateRestart(eps, ext))
	}
	return append(names,
		ProductionConf(eps),
		ProductionTrajectory(eps),
		PtrajConf(eps),
		PtrajTrajectory(eps),
		IncoherentConf(eps),
		IncoherentOutput(eps),
		CoherentConf(eps),
		CoherentOutput(eps),
	)
}

var sweepValue = rapid.StringMatching(`[0-9A-Za-z.+_-]{1,10}`)

func TestPerSweepEmbedsValue(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		eps := sweepValue.Draw(t, "eps")
		names := perSweep(eps)

		seen := make(map[string]bool, len(names))
		for _, n := range names {
			if !strings.Contains(n, eps) {
				t.Fatalf("%q does not embed sweep value %q", n, eps)
			}
			if seen[n] {
				t.Fatalf("duplicate name %q within one sweep value", n)
			}
			seen[n] = true
		}
	})
}

func TestPerSweepNoCollisions(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := sweepValue.Draw(t, "a")
		b := sweepValue.Filter(func(s string) bool { return s != a }).Draw(t, "b")

		owned := make(map[string]bool)
		for _, n := range perSweep(a) {
			owned[n] = true
		}
		for _, n := range perSweep(b) {
			if owned[n] {
				t.Fatalf("sweep values %q and %q both generate %q", a, b, n)
			}
		}
	})
}
