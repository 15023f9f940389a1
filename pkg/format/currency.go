// Package format renders amounts for human-facing output.
package format

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iwvelando/rehash-tool/pkg/mathutil"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	value := cents(amount)
	if value.IsNegative() {
		return "-$" + group(value.Abs().StringFixed(2))
	}
	return "$" + group(value.StringFixed(2))
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	value := cents(amount)
	if value.IsNegative() {
		return "-" + group(value.Abs().StringFixed(2))
	}
	return group(value.StringFixed(2))
}

// Percent renders a percentage with two decimals (e.g., "10.44%").
func Percent(value float64) string {
	return cents(value).StringFixed(2) + "%"
}

// Plain renders an amount with two decimals and no separators, for CSV.
func Plain(amount float64) string {
	return cents(amount).StringFixed(2)
}

// cents rounds half away from zero; non-finite values render as zero.
func cents(amount float64) decimal.Decimal {
	value := decimal.NewFromFloat(mathutil.Finite(amount)).Round(2)
	if value.IsZero() {
		return decimal.Zero
	}
	return value
}

func group(fixed string) string {
	intPart, decPart, _ := strings.Cut(fixed, ".")
	if len(intPart) <= 3 {
		return fixed
	}

	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteByte(',')
		}
		builder.WriteRune(digit)
	}
	return builder.String() + "." + decPart
}
