package deceleration

import (
	"fmt"
	"math"

	"github.com/flightperf/perfcore/internal/airspeed"
	"github.com/flightperf/perfcore/internal/atmosphere"
)

// SolveESFConstantCAS returns the energy share factor that holds calibrated
// airspeed constant in climb or descent at the given Mach number and
// atmospheric state.
//
// Setting the Analytic CAS rate to zero under the energy balance
// (dh/dt = ESF·(T−D)·v/(m·g)) and eliminating the vertical rate gives the
// closed form
//
//	ESF = 1 / (1 + A + B·C)
//
// with A the temperature-gradient contribution to the density-ratio change
// (zero at and above the tropopause, where the model is isothermal), B·C the
// compressibility product of the stagnation ratio x = 1 + (κ−1)/2·M², and a
// T/T_ISA factor on C carrying the temperature offset. Every term is built
// from the same gradient and gas constants as the atmosphere package; the
// tropopause branch follows atmosphere.BelowTropopause for the state's
// altitude.
//
// The result is not clamped. Values outside (0, 1] are legitimate outputs
// for unusual conditions and are surfaced to the caller as-is.
func SolveESFConstantCAS(mach float64, st atmosphere.State) (float64, error) {
	if mach < 0 {
		return 0, fmt.Errorf("%w: mach=%g", airspeed.ErrInvalidSpeed, mach)
	}
	if mach >= 1 {
		return 0, fmt.Errorf("%w: mach=%.3f", airspeed.ErrCompressibilityLimit, mach)
	}

	var gradientTerm float64
	if atmosphere.BelowTropopause(st.Altitude) {
		gradientTerm = atmosphere.Kappa * atmosphere.GasConstant * atmosphere.LapseRate /
			(2 * atmosphere.G0) * mach * mach
	}

	x := 1 + (atmosphere.Kappa-1)/2*mach*mach
	compress := math.Pow(x, -1/(atmosphere.Kappa-1)) *
		(math.Pow(x, atmosphere.Kappa/(atmosphere.Kappa-1)) - 1) *
		(st.Temperature / st.ISATemperature())

	return 1 / (1 + gradientTerm + compress), nil
}
