package deceleration

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/flightperf/perfcore/internal/airspeed"
	"github.com/flightperf/perfcore/internal/atmosphere"
	"github.com/flightperf/perfcore/internal/metrics"
)

// Report holds the cross-checked CAS rates for one point. MaxAbsDiff is the
// worst disagreement across the checks: Analytic against Numerical, and the
// ESF round trip against zero. The validator never judges the numbers
// itself; callers (normally tests, optionally a debug-mode caller) assert
// MaxAbsDiff against their own tolerance.
type Report struct {
	AnalyticCASRate     float64
	NumericalCASRate    float64
	ESF                 float64
	ESFRoundTripCASRate float64
	MaxAbsDiff          float64
}

// Validator cross-checks the CAS-rate strategies and the energy-share solver
// from identical inputs. Disagreements beyond the tolerance are always
// counted in the metrics; with a logger attached they are also logged. Either
// way the values are returned rather than swallowed.
type Validator struct {
	numerical Numerical
	tolerance float64
	logger    *slog.Logger
}

// NewValidator builds a validator using the given finite-difference step.
// tolerance is the disagreement level that triggers logging; it has no
// effect on the returned report. logger may be nil to disable the debug
// hook.
func NewValidator(step, tolerance float64, logger *slog.Logger) (*Validator, error) {
	numerical, err := NewNumerical(step)
	if err != nil {
		return nil, err
	}
	return &Validator{numerical: numerical, tolerance: tolerance, logger: logger}, nil
}

// Validate computes the CAS rate via the Analytic and Numerical strategies
// from the same Point, solves the constant-CAS ESF, and feeds that ESF back
// through the forward energy-balance path: it reconstructs the specific
// excess thrust (T−D)/m the ESF implies for the point's vertical rate,
// rebuilds the TAS rate from it, and evaluates the Analytic CAS rate again.
// A consistent solver closes that loop at zero.
func (v *Validator) Validate(p Point) (Report, error) {
	if p.TAS <= 0 {
		return Report{}, fmt.Errorf("%w: tas=%g m/s (validation needs tas > 0)", airspeed.ErrInvalidSpeed, p.TAS)
	}

	analytic, err := Analytic{}.CASRate(p)
	if err != nil {
		return Report{}, fmt.Errorf("analytic strategy: %w", err)
	}
	numerical, err := v.numerical.CASRate(p)
	if err != nil {
		return Report{}, fmt.Errorf("numerical strategy: %w", err)
	}

	mach, err := airspeed.TASToMach(p.TAS, p.State)
	if err != nil {
		return Report{}, err
	}
	esf, err := SolveESFConstantCAS(mach, p.State)
	if err != nil {
		return Report{}, fmt.Errorf("energy-share solver: %w", err)
	}

	// Forward path: the ESF and the point's vertical rate pin down the
	// specific excess thrust, which pins down the TAS rate.
	specificExcess := atmosphere.G0 * p.VerticalRate / (esf * p.TAS)
	roundTripPoint := p
	roundTripPoint.TASRate = specificExcess - atmosphere.G0*p.VerticalRate/p.TAS
	roundTrip, err := Analytic{}.CASRate(roundTripPoint)
	if err != nil {
		return Report{}, fmt.Errorf("esf round trip: %w", err)
	}

	maxDiff := math.Abs(analytic.CASRate - numerical.CASRate)
	if rt := math.Abs(roundTrip.CASRate); rt > maxDiff {
		maxDiff = rt
	}

	if maxDiff > v.tolerance {
		metrics.RecordValidationDiscrepancy()
	}
	if v.logger != nil && maxDiff > v.tolerance {
		v.logger.Warn("cas-rate strategies disagree",
			"max_abs_diff", maxDiff,
			"tolerance", v.tolerance,
			"analytic", analytic.CASRate,
			"numerical", numerical.CASRate,
			"esf_round_trip", roundTrip.CASRate,
			"altitude_m", p.State.Altitude,
			"tas_ms", p.TAS,
		)
	}

	return Report{
		AnalyticCASRate:     analytic.CASRate,
		NumericalCASRate:    numerical.CASRate,
		ESF:                 esf,
		ESFRoundTripCASRate: roundTrip.CASRate,
		MaxAbsDiff:          maxDiff,
	}, nil
}
