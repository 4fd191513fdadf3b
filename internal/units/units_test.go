package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversions(t *testing.T) {
	assert.InDelta(t, 3352.8, FeetToMeters(11000), 1e-9)
	assert.InDelta(t, 11000, MetersToFeet(3352.8), 1e-9)
	assert.InDelta(t, 144.04432, KnotsToMS(280), 1e-9)
	assert.InDelta(t, 280, MSToKnots(144.04432), 1e-9)
	assert.InDelta(t, 3352.8, FlightLevelToMeters(110), 1e-9)
	assert.InDelta(t, -7.62, FPMToMS(-1500), 1e-9)
	assert.InDelta(t, -1500, MSToFPM(-7.62), 1e-9)
}

func TestRoundTrips(t *testing.T) {
	for _, v := range []float64{-3000, -1, 0, 0.5, 250, 35000} {
		assert.InDelta(t, v, MetersToFeet(FeetToMeters(v)), 1e-9)
		assert.InDelta(t, v, MSToKnots(KnotsToMS(v)), 1e-9)
		assert.InDelta(t, v, MSToFPM(FPMToMS(v)), 1e-9)
	}
}
