// Package units converts between the SI values the performance core computes
// in and the aviation units flight profiles are written in.
package units

const (
	metersPerFoot = 0.3048
	msPerKnot     = 0.514444 // 1852 m per NM / 3600 s, rounded per ICAO practice
)

// FeetToMeters converts feet to meters.
func FeetToMeters(ft float64) float64 { return ft * metersPerFoot }

// MetersToFeet converts meters to feet.
func MetersToFeet(m float64) float64 { return m / metersPerFoot }

// KnotsToMS converts knots to m/s.
func KnotsToMS(kt float64) float64 { return kt * msPerKnot }

// MSToKnots converts m/s to knots.
func MSToKnots(ms float64) float64 { return ms / msPerKnot }

// FlightLevelToMeters converts a flight level (hundreds of feet of pressure
// altitude) to meters.
func FlightLevelToMeters(fl float64) float64 { return FeetToMeters(fl * 100) }

// FPMToMS converts feet per minute to m/s.
func FPMToMS(fpm float64) float64 { return FeetToMeters(fpm) / 60 }

// MSToFPM converts m/s to feet per minute.
func MSToFPM(ms float64) float64 { return MetersToFeet(ms) * 60 }
