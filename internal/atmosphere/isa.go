// Package atmosphere implements the International Standard Atmosphere (ISA)
// with a constant temperature offset, as used by aircraft performance models.
//
// The model has two layers: a linear temperature gradient below the tropopause
// (11,000 m geopotential) and an isothermal layer at and above it. A non-zero
// temperature offset shifts temperature and density but leaves the pressure
// ratio untouched, so pressure altitude stays a function of geopotential
// altitude alone.
package atmosphere

import (
	"errors"
	"fmt"
	"math"
)

// ISA reference values. These must stay exactly at their published values:
// the airspeed conversions and the deceleration formulas are derived from the
// same constants, and any drift here breaks their mutual consistency.
const (
	// G0 is the standard gravitational acceleration in m/s².
	G0 = 9.80665

	// GasConstant is the specific gas constant for dry air in J/(kg·K).
	GasConstant = 287.05287

	// Kappa is the adiabatic index (ratio of specific heats) for air.
	Kappa = 1.4

	// LapseRate is the tropospheric temperature gradient dT/dh in K/m
	// (negative: temperature drops with altitude below the tropopause).
	LapseRate = -0.0065

	// SeaLevelTemperature is the ISA sea-level temperature in K.
	SeaLevelTemperature = 288.15

	// SeaLevelPressure is the ISA sea-level pressure in Pa.
	SeaLevelPressure = 101325.0

	// SeaLevelDensity is the ISA sea-level density in kg/m³.
	SeaLevelDensity = 1.225

	// TropopauseAltitude is the geopotential altitude of the tropopause in m.
	TropopauseAltitude = 11000.0

	// TropopauseTemperature is the ISA temperature at and above the
	// tropopause in K.
	TropopauseTemperature = 216.65
)

// Supported geopotential altitude band in meters. The two-layer model stops
// being a usable description of the real atmosphere well outside this band,
// and the pressure-ratio formula itself degenerates above ~44 km on the
// linear branch.
const (
	MinAltitude = -5000.0
	MaxAltitude = 47000.0
)

// pressureExponent is g0/(−βT·R), the exponent relating the ISA temperature
// ratio to the pressure ratio on the gradient branch.
const pressureExponent = -G0 / (LapseRate * GasConstant)

// ErrAtmosphereDomain reports an altitude (or a resulting thermodynamic
// state) outside the supported standard-atmosphere range.
var ErrAtmosphereDomain = errors.New("atmosphere: outside supported standard-atmosphere range")

// State is the immutable atmospheric state at one geopotential altitude.
// Theta, Delta and Sigma are the temperature, pressure and density ratios
// relative to the ISA sea-level reference, mutually consistent via
// Sigma = Delta/Theta.
type State struct {
	Altitude      float64 // geopotential altitude (m)
	TempDeviation float64 // offset from ISA temperature (K)
	Temperature   float64 // actual temperature (K)
	Theta         float64 // temperature ratio T/T0
	Delta         float64 // pressure ratio p/p0
	Sigma         float64 // density ratio ρ/ρ0
	SpeedOfSound  float64 // local speed of sound (m/s)
}

// BelowTropopause reports whether the given geopotential altitude sits on the
// linear-gradient branch of the model. The boundary itself belongs to the
// isothermal branch, matching the branch selection in Properties.
func BelowTropopause(altitude float64) bool {
	return altitude < TropopauseAltitude
}

// deltaAtTropopause is the pressure ratio at the tropopause, the anchor for
// the isothermal branch.
var deltaAtTropopause = math.Pow(TropopauseTemperature/SeaLevelTemperature, pressureExponent)

// Properties evaluates the ISA+offset model at a geopotential altitude.
// The returned ratios are continuous in value across the tropopause (their
// altitude derivatives are not).
func Properties(altitude, tempDeviation float64) (State, error) {
	if math.IsNaN(altitude) || math.IsInf(altitude, 0) ||
		math.IsNaN(tempDeviation) || math.IsInf(tempDeviation, 0) {
		return State{}, fmt.Errorf("%w: non-finite input (altitude=%v, tempDeviation=%v)",
			ErrAtmosphereDomain, altitude, tempDeviation)
	}
	if altitude < MinAltitude || altitude > MaxAltitude {
		return State{}, fmt.Errorf("%w: altitude %.1f m not in [%.0f, %.0f]",
			ErrAtmosphereDomain, altitude, MinAltitude, MaxAltitude)
	}

	var isaTemp, delta float64
	if BelowTropopause(altitude) {
		isaTemp = SeaLevelTemperature + LapseRate*altitude
		delta = math.Pow(isaTemp/SeaLevelTemperature, pressureExponent)
	} else {
		isaTemp = TropopauseTemperature
		delta = deltaAtTropopause *
			math.Exp(-G0/(GasConstant*TropopauseTemperature)*(altitude-TropopauseAltitude))
	}

	temp := isaTemp + tempDeviation
	theta := temp / SeaLevelTemperature
	sigma := delta / theta

	// A pathological offset can drive the state non-physical; surface it
	// instead of handing NaNs to the airspeed conversions.
	if temp <= 0 || delta <= 0 || sigma <= 0 {
		return State{}, fmt.Errorf("%w: non-physical state at %.1f m (T=%.2f K, delta=%g, sigma=%g)",
			ErrAtmosphereDomain, altitude, temp, delta, sigma)
	}

	return State{
		Altitude:      altitude,
		TempDeviation: tempDeviation,
		Temperature:   temp,
		Theta:         theta,
		Delta:         delta,
		Sigma:         sigma,
		SpeedOfSound:  math.Sqrt(Kappa * GasConstant * temp),
	}, nil
}

// ISATemperature returns the standard temperature at the state's altitude,
// i.e. the actual temperature with the offset removed.
func (s State) ISATemperature() float64 {
	return s.Temperature - s.TempDeviation
}

// TemperatureGradient returns dT/dh at the state's altitude: the lapse rate
// below the tropopause, zero at and above it.
func (s State) TemperatureGradient() float64 {
	if BelowTropopause(s.Altitude) {
		return LapseRate
	}
	return 0
}

// PressureRatioGradient returns dδ/dh. The pressure ratio is a function of
// geopotential altitude only, so the hydrostatic relation uses the ISA
// temperature, not the offset one.
func (s State) PressureRatioGradient() float64 {
	return -G0 * s.Delta / (GasConstant * s.ISATemperature())
}

// SqrtSigmaGradient returns d√σ/dh, the altitude derivative of the square
// root of the density ratio. It combines the pressure and temperature-ratio
// gradients of this same state, so it is the exact derivative of the model
// implemented by Properties; the deceleration formulas and the energy-share
// solver must use this value rather than re-deriving it.
func (s State) SqrtSigmaGradient() float64 {
	// dσ/σ = dδ/δ − dθ/θ, and d√σ/dh = ½·√σ·(dσ/σ)/dh.
	relative := s.PressureRatioGradient()/s.Delta - s.TemperatureGradient()/s.Temperature
	return 0.5 * math.Sqrt(s.Sigma) * relative
}
