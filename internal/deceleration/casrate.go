package deceleration

import (
	"errors"
	"fmt"
	"math"

	"github.com/flightperf/perfcore/internal/airspeed"
	"github.com/flightperf/perfcore/internal/atmosphere"
)

// ErrInvalidStep reports a non-positive or non-finite finite-difference step.
var ErrInvalidStep = errors.New("deceleration: step must be positive and finite")

// DefaultStep is the default finite-difference time step in seconds. Smaller
// steps cut truncation error but run into floating-point cancellation in the
// CAS subtraction somewhere below ~1e-3 s.
const DefaultStep = 1.0

// Point bundles the longitudinal inputs every CAS-rate strategy consumes:
// one instant of flight, fully resolved by the caller.
type Point struct {
	TAS          float64          // true airspeed (m/s)
	VerticalRate float64          // dh/dt (m/s), positive in climb
	TASRate      float64          // dV/dt (m/s²), from TASRate
	State        atmosphere.State // atmosphere at the point's altitude
}

// Method identifies which strategy produced a CAS-rate result.
type Method string

const (
	MethodAnalytic  Method = "analytic"
	MethodLowMach   Method = "lowmach"
	MethodNumerical Method = "numerical"
)

// Result is a CAS-rate evaluation tagged with its producing method. Step is
// the finite-difference step in seconds and is zero for the closed forms.
type Result struct {
	TASRate float64
	CASRate float64
	Method  Method
	Step    float64
}

// Calculator computes the calibrated-airspeed rate dCAS/dt at a point.
// Implementations are stateless over their configuration and safe for
// concurrent use.
type Calculator interface {
	CASRate(p Point) (Result, error)
	Method() Method
}

// Analytic is the closed-form strategy: the chain rule
//
//	dCAS/dt = ∂CAS/∂TAS·(dV/dt) + ∂CAS/∂h·(dh/dt)
//
// with the exact partial derivatives of the compressible CAS conversion. It
// is the limit the Numerical strategy converges to as its step shrinks.
type Analytic struct{}

func (Analytic) Method() Method { return MethodAnalytic }

func (Analytic) CASRate(p Point) (Result, error) {
	partials, err := airspeed.CASPartials(p.TAS, p.State)
	if err != nil {
		return Result{}, err
	}
	return Result{
		TASRate: p.TASRate,
		CASRate: partials.DCASdTAS*p.TASRate + partials.DCASdAlt*p.VerticalRate,
		Method:  MethodAnalytic,
	}, nil
}

// LowMach is the incompressible closed form built on CAS ≈ √σ·TAS:
//
//	dCAS/dt = √σ·(dV/dt) + TAS·(d√σ/dh)·(dh/dt)
//
// It drifts from Analytic by a term of order M²·dCAS/dt (a few 1e-3 m/s² at
// typical descent Mach numbers), which is the cost of dropping the
// compressibility correction; prefer Analytic unless that error band is
// acceptable.
type LowMach struct{}

func (LowMach) Method() Method { return MethodLowMach }

func (LowMach) CASRate(p Point) (Result, error) {
	if p.TAS < 0 {
		return Result{}, fmt.Errorf("%w: tas=%g m/s", airspeed.ErrInvalidSpeed, p.TAS)
	}
	sqrtSigma := math.Sqrt(p.State.Sigma)
	rate := sqrtSigma*p.TASRate + p.TAS*p.State.SqrtSigmaGradient()*p.VerticalRate
	return Result{
		TASRate: p.TASRate,
		CASRate: rate,
		Method:  MethodLowMach,
	}, nil
}

// Numerical estimates dCAS/dt by one forward finite difference: it advances
// the point by the step in time (TAS by TASRate·step, altitude by
// VerticalRate·step), converts both points to CAS through the atmosphere and
// airspeed models, and divides the CAS change by the step.
type Numerical struct {
	step float64 // seconds
}

// NewNumerical builds a finite-difference strategy with the given time step
// in seconds. The step is a tunable accuracy/cost trade-off; steps <= 0 are
// a caller configuration error, rejected here rather than at evaluation.
func NewNumerical(step float64) (Numerical, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return Numerical{}, fmt.Errorf("%w: step=%g s", ErrInvalidStep, step)
	}
	return Numerical{step: step}, nil
}

// DefaultNumerical returns the strategy at DefaultStep.
func DefaultNumerical() Numerical {
	return Numerical{step: DefaultStep}
}

func (n Numerical) Method() Method { return MethodNumerical }

// Step returns the configured time step in seconds.
func (n Numerical) Step() float64 { return n.step }

// CASRate evaluates the finite difference. An atmosphere domain error at the
// perturbed altitude (the step walking out of the supported band) propagates
// to the caller unchanged in kind.
func (n Numerical) CASRate(p Point) (Result, error) {
	if n.step == 0 {
		return Result{}, fmt.Errorf("%w: zero value Numerical, use NewNumerical or DefaultNumerical", ErrInvalidStep)
	}
	current, err := airspeed.TASToCAS(p.TAS, p.State)
	if err != nil {
		return Result{}, err
	}

	nextState, err := atmosphere.Properties(
		p.State.Altitude+p.VerticalRate*n.step,
		p.State.TempDeviation,
	)
	if err != nil {
		return Result{}, fmt.Errorf("perturbed evaluation at step %g s: %w", n.step, err)
	}
	next, err := airspeed.TASToCAS(p.TAS+p.TASRate*n.step, nextState)
	if err != nil {
		return Result{}, fmt.Errorf("perturbed evaluation at step %g s: %w", n.step, err)
	}

	return Result{
		TASRate: p.TASRate,
		CASRate: (next - current) / n.step,
		Method:  MethodNumerical,
		Step:    n.step,
	}, nil
}
