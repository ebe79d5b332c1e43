package service

import "math"

// RoundingPrecision is the multiplier for two-decimal rounding of values
// crossing the API boundary. Internal computation keeps full precision;
// only presentation-bound figures pass through round.
const RoundingPrecision = 100

// round rounds a value to two decimal places. Used at the output boundary
// for every monetary and percentage figure.
func round(value float64) float64 {
	return math.Round(value*RoundingPrecision) / RoundingPrecision
}
