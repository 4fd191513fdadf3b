// Package batch applies the performance evaluation across many independent
// trajectory points concurrently. Every point is a pure computation over its
// own inputs, so the pool needs no locking beyond the job/result channels.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/flightperf/perfcore/internal/airspeed"
	"github.com/flightperf/perfcore/internal/atmosphere"
	"github.com/flightperf/perfcore/internal/deceleration"
	"github.com/flightperf/perfcore/internal/metrics"
)

// PointInput is one trajectory point as supplied by an integrator or
// profile generator: atmosphere location, speed, vertical rate and the
// force state from the performance-table provider.
type PointInput struct {
	Altitude      float64 // geopotential altitude (m)
	TempDeviation float64 // ISA offset (K)
	TAS           float64 // true airspeed (m/s)
	VerticalRate  float64 // dh/dt (m/s), positive in climb
	NetThrust     float64 // thrust minus drag (N)
	Mass          float64 // aircraft mass (kg)
}

// PointResult is the evaluated performance state for one input point.
// Results carry the index of their input so batch output can be matched up
// after concurrent evaluation.
type PointResult struct {
	Index            int
	CAS              float64 // calibrated airspeed at the point (m/s)
	Mach             float64
	TASRate          float64 // dV/dt (m/s²)
	AnalyticCASRate  float64 // closed-form dCAS/dt (m/s²)
	NumericalCASRate float64 // finite-difference dCAS/dt (m/s²)
	ESF              float64 // constant-CAS energy share factor
}

// Config holds evaluator settings.
type Config struct {
	Workers int     // worker goroutines (default: runtime.NumCPU())
	Step    float64 // finite-difference time step in seconds (default: deceleration.DefaultStep)
}

// Evaluator runs the evaluation pipeline over batches of points with a fixed
// worker pool.
type Evaluator struct {
	workers   int
	numerical deceleration.Numerical
	logger    *slog.Logger
}

type job struct {
	index int
	point PointInput
}

type result struct {
	res PointResult
	err error
}

// NewEvaluator creates a batch evaluator. A non-positive worker count falls
// back to the CPU count; an invalid step is rejected.
func NewEvaluator(cfg Config, logger *slog.Logger) (*Evaluator, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	step := cfg.Step
	if step == 0 {
		step = deceleration.DefaultStep
	}
	numerical, err := deceleration.NewNumerical(step)
	if err != nil {
		return nil, err
	}
	return &Evaluator{workers: workers, numerical: numerical, logger: logger}, nil
}

// EvaluateBatch evaluates all points using the worker pool. Points that fail
// (atmosphere domain, supersonic speeds) are logged and skipped; the returned
// results are ordered by input index. The success and error counts always sum
// to len(points) unless the context is cancelled first.
func (e *Evaluator) EvaluateBatch(ctx context.Context, points []PointInput) ([]PointResult, int, int) {
	if len(points) == 0 {
		return nil, 0, 0
	}

	start := time.Now()
	jobs := make(chan job, e.workers*2)
	results := make(chan result, e.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				r := e.evaluateSingle(j)
				select {
				case results <- r:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, p := range points {
			select {
			case jobs <- job{index: i, point: p}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]PointResult, 0, len(points))
	var successCount, errorCount int
	for r := range results {
		if r.err != nil {
			errorCount++
			if e.logger != nil {
				e.logger.Warn("point evaluation failed", "index", r.res.Index, "error", r.err)
			}
			continue
		}
		successCount++
		out = append(out, r.res)
	}
	metrics.RecordBatch(time.Since(start), successCount, errorCount)

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, successCount, errorCount
}

// evaluateSingle runs the full pipeline for one point: atmosphere, CAS and
// Mach, TAS rate, both CAS-rate strategies, constant-CAS ESF.
func (e *Evaluator) evaluateSingle(j job) result {
	in := j.point
	res := PointResult{Index: j.index}

	state, err := atmosphere.Properties(in.Altitude, in.TempDeviation)
	if err != nil {
		return result{res: res, err: err}
	}
	cas, err := airspeed.TASToCAS(in.TAS, state)
	if err != nil {
		return result{res: res, err: err}
	}
	mach, err := airspeed.TASToMach(in.TAS, state)
	if err != nil {
		return result{res: res, err: err}
	}

	tasRate := deceleration.TASRate(in.NetThrust, in.Mass, in.VerticalRate, in.TAS)
	point := deceleration.Point{
		TAS:          in.TAS,
		VerticalRate: in.VerticalRate,
		TASRate:      tasRate,
		State:        state,
	}

	analytic, err := deceleration.Analytic{}.CASRate(point)
	if err != nil {
		return result{res: res, err: err}
	}
	numerical, err := e.numerical.CASRate(point)
	if err != nil {
		return result{res: res, err: err}
	}
	esf, err := deceleration.SolveESFConstantCAS(mach, state)
	if err != nil {
		return result{res: res, err: err}
	}

	res.CAS = cas
	res.Mach = mach
	res.TASRate = tasRate
	res.AnalyticCASRate = analytic.CASRate
	res.NumericalCASRate = numerical.CASRate
	res.ESF = esf
	return result{res: res}
}
