// Package validation reports advisory problems with deals.
package validation

import (
	"fmt"
	"sort"

	"github.com/iwvelando/rehash-tool/pkg/rehash"
)

// ValidateVariant checks that value names a calculation variant.
func ValidateVariant(value string) error {
	_, err := rehash.ParseVariant(value)
	return err
}

// ValidateTerm returns a warning when term is not on the variant's menu.
func ValidateTerm(label string, variant rehash.Variant, term int) string {
	if variant != rehash.Portfolio {
		variant = rehash.Dealer
	}
	if variant.AllowsTerm(term) {
		return ""
	}
	return fmt.Sprintf("%s term %d is not on the %s menu %v", label, term, variant, variant.Terms())
}

// ValidateDeal performs advisory validation of one set of inputs and returns
// warnings. The calculator accepts every input, so nothing here is fatal.
func ValidateDeal(label string, in rehash.Inputs) []string {
	var warnings []string

	variant, err := rehash.ParseVariant(string(in.Variant))
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("%s uses unknown variant %q and is computed as %s",
			label, in.Variant, rehash.Dealer))
	}

	if warning := ValidateTerm(label, variant, in.Term); warning != "" {
		warnings = append(warnings, warning)
	}

	if in.Income <= 0 {
		warnings = append(warnings, fmt.Sprintf("%s has no income; PTI and DTI will read 0", label))
	}

	if in.DownPayment > in.SalesPrice {
		warnings = append(warnings, fmt.Sprintf("%s down payment %.2f exceeds sales price %.2f",
			label, in.DownPayment, in.SalesPrice))
	}

	negatives := map[string]float64{
		"salesPrice":       in.SalesPrice,
		"bookValue":        in.BookValue,
		"tradeAllowance":   in.TradeAllowance,
		"tradePayoff":      in.TradePayoff,
		"downPayment":      in.DownPayment,
		"rate":             in.Rate,
		"docFee":           in.DocFee,
		"salesTaxRate":     in.SalesTaxRate,
		"ttl":              in.TTL,
		"frontend":         in.Frontend,
		"backend":          in.Backend,
		"otherMonthlyDebt": in.OtherMonthlyDebt,
	}
	var names []string
	for name, value := range negatives {
		if value < 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		warnings = append(warnings, fmt.Sprintf("%s has negative %s %.2f", label, name, negatives[name]))
	}
	for i, payment := range in.ExistingLoans {
		if payment < 0 {
			warnings = append(warnings, fmt.Sprintf("%s has negative existing loan payment %.2f at index %d",
				label, payment, i))
		}
	}

	switch variant {
	case rehash.Portfolio:
		if in.TradeAllowance != 0 || in.TradePayoff != 0 || in.DocFee != 0 || in.SalesTaxRate != 0 ||
			in.TTL != 0 || in.Frontend != 0 || in.Backend != 0 {
			warnings = append(warnings, fmt.Sprintf("%s sets trade or fee fields that the %s variant ignores",
				label, rehash.Portfolio))
		}
	default:
		if in.OtherMonthlyDebt != 0 || len(in.ExistingLoans) > 0 {
			warnings = append(warnings, fmt.Sprintf("%s sets debt fields that the %s variant ignores",
				label, rehash.Dealer))
		}
	}

	return warnings
}
