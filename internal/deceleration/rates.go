// Package deceleration computes how an aircraft's speed changes along its
// longitudinal axis during climb and descent, in both the true-airspeed and
// calibrated-airspeed references, and solves the inverse problem of the
// energy share factor that holds CAS constant.
//
// Sign convention, used consistently across the package: the vertical rate
// dh/dt is positive in climb and negative in descent. All speeds are m/s,
// altitudes are geopotential meters, accelerations m/s².
package deceleration

import (
	"math"

	"github.com/flightperf/perfcore/internal/atmosphere"
)

// TASRate returns the true-airspeed acceleration dV/dt in m/s² from the
// longitudinal energy balance
//
//	m·v·dv/dt + m·g·dh/dt = (T−D)·v
//
// rearranged to dv/dt = (T−D)/m − g·(dh/dt)/v. Negative values are
// decelerations.
//
// When tas <= 0 the second term is suppressed and the result is exactly
// netThrust/mass. That is a guard against dividing by a non-positive speed,
// not a statement about stationary flight; callers feeding tas <= 0 get a
// number with no physical meaning for the gravity term.
//
// The result is shared by every CAS-rate strategy and by the consistency
// checks: compute it once per evaluation and pass it along, so all consumers
// see bit-identical input.
func TASRate(netThrust, mass, verticalRate, tas float64) float64 {
	rate := netThrust / mass
	if tas > 0 {
		rate -= atmosphere.G0 * verticalRate / tas
	}
	return rate
}

// ClimbDescentRate returns the vertical rate dh/dt in m/s from the forward
// energy balance
//
//	dh/dt = ESF·(T−D)·v / (m·g)
//
// the same relation TASRate is built on, with the energy share factor
// splitting excess thrust power between altitude and speed change. Negative
// net thrust with a positive ESF yields a descent.
func ClimbDescentRate(netThrust, mass, tas, esf float64) float64 {
	return esf * netThrust * tas / (mass * atmosphere.G0)
}

// FlightPathAngle returns the climb/descent angle asin(dh/dt / v) in
// radians, negative in descent. Zero when tas <= 0; the ratio is clamped to
// ±1 so a vertical rate exceeding the airspeed (a caller inconsistency)
// reports ±π/2 instead of NaN.
func FlightPathAngle(verticalRate, tas float64) float64 {
	if tas <= 0 {
		return 0
	}
	ratio := verticalRate / tas
	if ratio > 1 {
		ratio = 1
	} else if ratio < -1 {
		ratio = -1
	}
	return math.Asin(ratio)
}
