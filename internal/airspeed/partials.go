package airspeed

import (
	"fmt"
	"math"

	"github.com/flightperf/perfcore/internal/atmosphere"
)

// Partials holds the partial derivatives of calibrated airspeed with respect
// to true airspeed and to altitude, evaluated at one flight condition. They
// are the exact derivatives of TASToCAS through the atmosphere model, so a
// chain-rule rate built from them matches a finite difference through the
// same functions as the step shrinks.
type Partials struct {
	CAS      float64 // calibrated airspeed at the condition (m/s)
	DCASdTAS float64 // ∂CAS/∂TAS at constant altitude (dimensionless)
	DCASdAlt float64 // ∂CAS/∂h at constant TAS (1/s)
}

// CASPartials differentiates the compressible CAS relation at the given true
// airspeed and state. TAS must be strictly positive: at zero speed CAS is
// zero and the derivatives below are singular.
//
// In the low-Mach limit DCASdTAS tends to √σ and DCASdAlt to TAS·d√σ/dh,
// recovering the incompressible approximation CAS ≈ √σ·TAS.
func CASPartials(tas float64, st atmosphere.State) (Partials, error) {
	if tas <= 0 {
		return Partials{}, fmt.Errorf("%w: tas=%g m/s (partials need tas > 0)", ErrInvalidSpeed, tas)
	}
	cas, err := TASToCAS(tas, st)
	if err != nil {
		return Partials{}, err
	}

	mach := tas / st.SpeedOfSound
	// x = 1 + (κ−1)/2·M², the stagnation temperature ratio. The inner
	// compressible term of TASToCAS is x^(1/μ) − 1.
	x := 1 + (atmosphere.Kappa-1)/2*mach*mach
	innerExp := 1 / mu // κ/(κ−1)
	inner := math.Pow(x, innerExp) - 1
	outerBase := 1 + st.Delta*inner

	// CAS² = (2/μ)(p0/ρ0)(outerBase^μ − 1); differentiate through outerBase.
	prefactor := atmosphere.SeaLevelPressure / atmosphere.SeaLevelDensity *
		math.Pow(outerBase, mu-1) / cas

	// ∂x/∂TAS = 2(x−1)/TAS; dx/dh at constant TAS follows from T(h) since
	// x − 1 is proportional to 1/T.
	dInnerdX := innerExp * math.Pow(x, innerExp-1)
	dXdTAS := 2 * (x - 1) / tas
	dXdAlt := -(x - 1) / st.Temperature * st.TemperatureGradient()

	dOuterdTAS := st.Delta * dInnerdX * dXdTAS
	dOuterdAlt := st.PressureRatioGradient()*inner + st.Delta*dInnerdX*dXdAlt

	return Partials{
		CAS:      cas,
		DCASdTAS: prefactor * dOuterdTAS,
		DCASdAlt: prefactor * dOuterdAlt,
	}, nil
}
