package deceleration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightperf/perfcore/internal/airspeed"
	"github.com/flightperf/perfcore/internal/atmosphere"
)

// TestSolveESFConstantCAS pins the closed form to worked values. Below the
// tropopause on a standard day the factor depends on Mach alone.
func TestSolveESFConstantCAS(t *testing.T) {
	tests := []struct {
		name          string
		mach          float64
		altitude      float64
		tempDeviation float64
		esf           float64
	}{
		{"slow troposphere", 0.30, 5000, 0, 0.952713702186},
		{"mid troposphere", 0.50, 5000, 0, 0.883756172200},
		{"fast troposphere", 0.78, 5000, 0, 0.775079199569},
		{"mid stratosphere", 0.50, 12000, 0, 0.858494471472},
		{"fast stratosphere", 0.78, 12000, 0, 0.729277587033},
		{"warm day", 0.50, 6000, 10, 0.878619188858},
		{"cold day", 0.78, 3000, -10, 0.783470186756},
		{"warm stratosphere", 0.50, 12000, 15, 0.850165156690},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := atmosphere.Properties(tt.altitude, tt.tempDeviation)
			require.NoError(t, err)
			esf, err := SolveESFConstantCAS(tt.mach, st)
			require.NoError(t, err)
			assert.InDelta(t, tt.esf, esf, 1e-9)
		})
	}
}

// TestESFAltitudeIndependenceBelowTropopause: on a standard day the gradient
// and compressibility terms are functions of Mach only, so the factor does
// not move with altitude inside the gradient layer.
func TestESFAltitudeIndependenceBelowTropopause(t *testing.T) {
	for _, alt := range []float64{1000, 5000, 9000} {
		st, err := atmosphere.Properties(alt, 0)
		require.NoError(t, err)
		esf, err := SolveESFConstantCAS(0.5, st)
		require.NoError(t, err)
		assert.InDelta(t, 0.883756172200, esf, 1e-9, "altitude %.0f", alt)
	}
}

// TestESFTropopauseBranch: the solver switches branches exactly where the
// atmosphere does. The factor jumps there because the gradient term
// vanishes, mirroring the derivative discontinuity of the atmosphere.
func TestESFTropopauseBranch(t *testing.T) {
	below, err := atmosphere.Properties(atmosphere.TropopauseAltitude-1e-3, 0)
	require.NoError(t, err)
	at, err := atmosphere.Properties(atmosphere.TropopauseAltitude, 0)
	require.NoError(t, err)

	esfBelow, err := SolveESFConstantCAS(0.6, below)
	require.NoError(t, err)
	esfAt, err := SolveESFConstantCAS(0.6, at)
	require.NoError(t, err)

	assert.InDelta(t, 0.844878982847084, esfBelow, 1e-9)
	assert.InDelta(t, 0.8119863708815347, esfAt, 1e-9)
}

// TestESFRange: across the subsonic envelope the factor stays finite and
// positive without any clamping in the solver.
func TestESFRange(t *testing.T) {
	for _, alt := range []float64{0, 5000, 11000, 15000} {
		st, err := atmosphere.Properties(alt, 0)
		require.NoError(t, err)
		for _, mach := range []float64{0.05, 0.3, 0.6, 0.9, 0.99} {
			esf, err := SolveESFConstantCAS(mach, st)
			require.NoError(t, err)
			assert.Greater(t, esf, 0.0)
			assert.LessOrEqual(t, esf, 1.0)
		}
	}
}

func TestSolveESFConstantCASErrors(t *testing.T) {
	st, err := atmosphere.Properties(5000, 0)
	require.NoError(t, err)

	_, err = SolveESFConstantCAS(-0.1, st)
	assert.ErrorIs(t, err, airspeed.ErrInvalidSpeed)
	_, err = SolveESFConstantCAS(1.0, st)
	assert.ErrorIs(t, err, airspeed.ErrCompressibilityLimit)
}

// TestESFRoundTrip: substituting the solved factor back through the forward
// energy-balance path yields a CAS rate at zero, far inside the 1e-6 band.
func TestESFRoundTrip(t *testing.T) {
	tests := []struct {
		mach          float64
		altitude      float64
		tempDeviation float64
		verticalRate  float64
	}{
		{0.46, 5000, 0, -5},
		{0.70, 9000, 0, -8},
		{0.78, 12000, 0, -10},
		{0.50, 6000, 10, 4},
		{0.60, 3000, -10, -6},
		{0.78, 12000, 15, -12},
	}

	for _, tt := range tests {
		st, err := atmosphere.Properties(tt.altitude, tt.tempDeviation)
		require.NoError(t, err)
		tas, err := airspeed.MachToTAS(tt.mach, st)
		require.NoError(t, err)
		esf, err := SolveESFConstantCAS(tt.mach, st)
		require.NoError(t, err)

		// Forward path: ESF and vertical rate fix the specific excess
		// thrust, which fixes the TAS rate.
		specificExcess := atmosphere.G0 * tt.verticalRate / (esf * tas)
		p := Point{
			TAS:          tas,
			VerticalRate: tt.verticalRate,
			TASRate:      specificExcess - atmosphere.G0*tt.verticalRate/tas,
			State:        st,
		}
		res, err := Analytic{}.CASRate(p)
		require.NoError(t, err)
		assert.InDelta(t, 0, res.CASRate, 1e-6,
			"M=%v alt=%.0f dev=%g", tt.mach, tt.altitude, tt.tempDeviation)
	}
}
