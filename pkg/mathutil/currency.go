// Package mathutil holds the guarded arithmetic the calculator relies on.
package mathutil

import (
	"math"

	"github.com/iwvelando/rehash-tool/pkg/constants"
)

// Round rounds a value to cents.
func Round(val float64) float64 {
	return Finite(math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision)
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Clamp bounds val to [lo, hi]. NaN clamps to lo.
func Clamp(val, lo, hi float64) float64 {
	if math.IsNaN(val) || val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Finite maps NaN and ±Inf to zero and returns every other value unchanged.
func Finite(val float64) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0
	}
	return val
}

// SafeDivide returns numerator/denominator, or 0 when the denominator is zero
// or the quotient is not finite.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return Finite(numerator / denominator)
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	return SafeDivide(value, total) * constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return Finite(value * (percentage / constants.PercentageMultiplier))
}
