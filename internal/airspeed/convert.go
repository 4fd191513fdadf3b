// Package airspeed converts between the airspeed references used in flight
// performance work: true airspeed (TAS), calibrated airspeed (CAS) and Mach
// number. The conversions use the full compressible (Saint-Venant) relations,
// so CAS and TAS coincide only at sea level under standard conditions.
//
// The package is subsonic-only. Any conversion that is handed, or would
// produce, Mach 1 or above fails with ErrCompressibilityLimit rather than
// extrapolating outside the model.
package airspeed

import (
	"errors"
	"fmt"
	"math"

	"github.com/flightperf/perfcore/internal/atmosphere"
)

var (
	// ErrInvalidSpeed reports a negative speed input.
	ErrInvalidSpeed = errors.New("airspeed: negative speed")

	// ErrCompressibilityLimit reports a Mach number at or above 1, which is
	// outside the subsonic conversion model.
	ErrCompressibilityLimit = errors.New("airspeed: Mach >= 1 exceeds subsonic model")
)

// mu is (κ−1)/κ, the exponent of the compressible airspeed relations.
const mu = (atmosphere.Kappa - 1) / atmosphere.Kappa

// TASToMach converts true airspeed to Mach number at the given state.
func TASToMach(tas float64, st atmosphere.State) (float64, error) {
	if tas < 0 {
		return 0, fmt.Errorf("%w: tas=%g m/s", ErrInvalidSpeed, tas)
	}
	m := tas / st.SpeedOfSound
	if m >= 1 {
		return 0, fmt.Errorf("%w: tas=%g m/s gives M=%.3f at %.0f m", ErrCompressibilityLimit, tas, m, st.Altitude)
	}
	return m, nil
}

// MachToTAS converts Mach number to true airspeed at the given state.
func MachToTAS(mach float64, st atmosphere.State) (float64, error) {
	if mach < 0 {
		return 0, fmt.Errorf("%w: mach=%g", ErrInvalidSpeed, mach)
	}
	if mach >= 1 {
		return 0, fmt.Errorf("%w: mach=%.3f", ErrCompressibilityLimit, mach)
	}
	return mach * st.SpeedOfSound, nil
}

// TASToCAS converts true airspeed to calibrated airspeed at the given state.
func TASToCAS(tas float64, st atmosphere.State) (float64, error) {
	if _, err := TASToMach(tas, st); err != nil {
		return 0, err
	}
	// Impact pressure from TAS at local density/pressure, then the same
	// relation inverted at sea-level reference values. ρ/p comes from the
	// σ/δ ratios, the same derivation CASToTAS uses: the published ISA
	// constants are over-determined (ρ0·R·T0 differs from p0 in the 8th
	// digit), so mixing the gas-law form here with the ratio form there
	// would leave the pair slightly off inverse.
	rhoOverP := st.Sigma * atmosphere.SeaLevelDensity / (st.Delta * atmosphere.SeaLevelPressure)
	inner := math.Pow(1+0.5*mu*rhoOverP*tas*tas, 1/mu) - 1
	outer := math.Pow(1+st.Delta*inner, mu) - 1
	return math.Sqrt(2 / mu * atmosphere.SeaLevelPressure / atmosphere.SeaLevelDensity * outer), nil
}

// CASToTAS converts calibrated airspeed to true airspeed at the given state.
// Fails with ErrCompressibilityLimit if the resulting TAS would be sonic.
func CASToTAS(cas float64, st atmosphere.State) (float64, error) {
	if cas < 0 {
		return 0, fmt.Errorf("%w: cas=%g m/s", ErrInvalidSpeed, cas)
	}
	p := st.Delta * atmosphere.SeaLevelPressure
	rho := st.Sigma * atmosphere.SeaLevelDensity
	refRhoOverP := atmosphere.SeaLevelDensity / atmosphere.SeaLevelPressure
	inner := math.Pow(1+0.5*mu*refRhoOverP*cas*cas, 1/mu) - 1
	outer := math.Pow(1+inner/st.Delta, mu) - 1
	tas := math.Sqrt(2 / mu * p / rho * outer)
	if _, err := TASToMach(tas, st); err != nil {
		return 0, err
	}
	return tas, nil
}

// CASToMach converts calibrated airspeed to Mach number at the given state.
func CASToMach(cas float64, st atmosphere.State) (float64, error) {
	tas, err := CASToTAS(cas, st)
	if err != nil {
		return 0, err
	}
	return TASToMach(tas, st)
}

// MachToCAS converts Mach number to calibrated airspeed at the given state.
func MachToCAS(mach float64, st atmosphere.State) (float64, error) {
	tas, err := MachToTAS(mach, st)
	if err != nil {
		return 0, err
	}
	return TASToCAS(tas, st)
}

// CrossoverAltitude returns the geopotential altitude (m) at which a given
// calibrated airspeed and a given Mach number describe the same true
// airspeed. Below it a CAS schedule is flown, above it the Mach schedule
// takes over. Standard-atmosphere relation; the temperature offset does not
// move the crossover because pressure altitude is offset-independent.
func CrossoverAltitude(cas, mach float64) (float64, error) {
	if cas < 0 || mach < 0 {
		return 0, fmt.Errorf("%w: cas=%g m/s, mach=%g", ErrInvalidSpeed, cas, mach)
	}
	if mach >= 1 {
		return 0, fmt.Errorf("%w: mach=%.3f", ErrCompressibilityLimit, mach)
	}
	a0 := math.Sqrt(atmosphere.Kappa * atmosphere.GasConstant * atmosphere.SeaLevelTemperature)
	casRatio := math.Pow(1+(atmosphere.Kappa-1)/2*(cas/a0)*(cas/a0), atmosphere.Kappa/(atmosphere.Kappa-1)) - 1
	machRatio := math.Pow(1+(atmosphere.Kappa-1)/2*mach*mach, atmosphere.Kappa/(atmosphere.Kappa-1)) - 1
	if machRatio == 0 {
		return 0, fmt.Errorf("%w: mach=0 has no crossover", ErrInvalidSpeed)
	}
	deltaTrans := casRatio / machRatio
	thetaTrans := math.Pow(deltaTrans, -atmosphere.LapseRate*atmosphere.GasConstant/atmosphere.G0)
	return -atmosphere.SeaLevelTemperature / atmosphere.LapseRate * (1 - thetaTrans), nil
}
