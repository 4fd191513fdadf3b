package deceleration

import (
	"bytes"
	"log/slog"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flightperf/perfcore/internal/airspeed"
	"github.com/flightperf/perfcore/internal/metrics"
)

// validationDiscrepancyCount scrapes the metrics endpoint for the current
// value of the validation-discrepancy counter.
func validationDiscrepancyCount(t *testing.T) float64 {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if strings.HasPrefix(line, "perfcore_validation_discrepancies_total ") {
			v, err := strconv.ParseFloat(strings.Fields(line)[1], 64)
			require.NoError(t, err)
			return v
		}
	}
	return 0
}

func TestValidatorAgreement(t *testing.T) {
	v, err := NewValidator(DefaultStep, 1e-3, nil)
	require.NoError(t, err)

	report, err := v.Validate(descentPoint(t))
	require.NoError(t, err)

	// The report mirrors the individual strategies.
	analytic, err := Analytic{}.CASRate(descentPoint(t))
	require.NoError(t, err)
	numerical, err := DefaultNumerical().CASRate(descentPoint(t))
	require.NoError(t, err)
	assert.Equal(t, analytic.CASRate, report.AnalyticCASRate)
	assert.Equal(t, numerical.CASRate, report.NumericalCASRate)

	assert.InDelta(t, 0.8958484954913701, report.ESF, 1e-9, "constant-CAS factor at M0.468")
	assert.InDelta(t, 0, report.ESFRoundTripCASRate, 1e-6)
	assert.Less(t, report.MaxAbsDiff, 1e-3)
	assert.GreaterOrEqual(t, report.MaxAbsDiff, 0.0)
}

// TestValidatorDebugHook: with a logger attached, a tolerance tighter than
// the methods' true agreement raises the warning; a loose one stays silent.
func TestValidatorDebugHook(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	strict, err := NewValidator(DefaultStep, 1e-12, logger)
	require.NoError(t, err)
	_, err = strict.Validate(descentPoint(t))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "cas-rate strategies disagree")

	buf.Reset()
	loose, err := NewValidator(DefaultStep, 1e-2, logger)
	require.NoError(t, err)
	_, err = loose.Validate(descentPoint(t))
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

// TestValidatorCountsDiscrepancyWithoutLogger: the discrepancy counter does
// not depend on the logging configuration. A nil-logger validator with a
// tolerance tighter than the methods' true agreement still increments it.
func TestValidatorCountsDiscrepancyWithoutLogger(t *testing.T) {
	v, err := NewValidator(DefaultStep, 1e-12, nil)
	require.NoError(t, err)

	before := validationDiscrepancyCount(t)
	_, err = v.Validate(descentPoint(t))
	require.NoError(t, err)
	assert.Equal(t, before+1, validationDiscrepancyCount(t))

	// Within tolerance nothing is counted.
	loose, err := NewValidator(DefaultStep, 1e-2, nil)
	require.NoError(t, err)
	after := validationDiscrepancyCount(t)
	_, err = loose.Validate(descentPoint(t))
	require.NoError(t, err)
	assert.Equal(t, after, validationDiscrepancyCount(t))
}

func TestValidatorErrors(t *testing.T) {
	_, err := NewValidator(0, 1e-3, nil)
	assert.ErrorIs(t, err, ErrInvalidStep)

	v, err := NewValidator(DefaultStep, 1e-3, nil)
	require.NoError(t, err)

	p := descentPoint(t)
	p.TAS = 0
	_, err = v.Validate(p)
	assert.ErrorIs(t, err, airspeed.ErrInvalidSpeed)
}
