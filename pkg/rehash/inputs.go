// Package rehash implements the auto-loan rehash calculator: a pure mapping
// from deal inputs to payment, PTI, DTI and financeability metrics.
package rehash

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/rehash-tool/pkg/constants"
)

// Variant selects the calculation strategy.
type Variant string

const (
	// Dealer finances price, sales tax, fees and trade equity and grades the deal.
	Dealer Variant = constants.VariantDealer

	// Portfolio finances price less down payment and weighs existing debt.
	Portfolio Variant = constants.VariantPortfolio
)

// ParseVariant returns the Variant named by value. Empty selects Dealer.
func ParseVariant(value string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", constants.VariantDealer:
		return Dealer, nil
	case constants.VariantPortfolio:
		return Portfolio, nil
	default:
		return Dealer, fmt.Errorf("unknown variant %q: expected %s or %s",
			value, constants.VariantDealer, constants.VariantPortfolio)
	}
}

// Terms returns a copy of the loan term menu offered for the variant.
func (v Variant) Terms() []int {
	if v == Portfolio {
		return append([]int(nil), constants.PortfolioTerms...)
	}
	return append([]int(nil), constants.DealerTerms...)
}

// AllowsTerm reports whether term is on the variant's menu.
func (v Variant) AllowsTerm(term int) bool {
	for _, allowed := range v.Terms() {
		if allowed == term {
			return true
		}
	}
	return false
}

// Inputs holds every value the calculator reads. Fields that a variant does
// not use are ignored by it.
type Inputs struct {
	Variant Variant `json:"variant,omitempty" yaml:"variant,omitempty" mapstructure:"variant"`

	SalesPrice float64 `json:"salesPrice" yaml:"salesPrice" mapstructure:"salesPrice"`
	BookValue  float64 `json:"bookValue" yaml:"bookValue" mapstructure:"bookValue"`

	TradeAllowance float64 `json:"tradeAllowance,omitempty" yaml:"tradeAllowance,omitempty" mapstructure:"tradeAllowance"`
	TradePayoff    float64 `json:"tradePayoff,omitempty" yaml:"tradePayoff,omitempty" mapstructure:"tradePayoff"`

	Income      float64 `json:"income" yaml:"income" mapstructure:"income"`
	DownPayment float64 `json:"downPayment" yaml:"downPayment" mapstructure:"downPayment"`
	Rate        float64 `json:"rate" yaml:"rate" mapstructure:"rate"` // APR, percent
	Term        int     `json:"term" yaml:"term" mapstructure:"term"` // months

	DocFee       float64 `json:"docFee,omitempty" yaml:"docFee,omitempty" mapstructure:"docFee"`
	SalesTaxRate float64 `json:"salesTaxRate,omitempty" yaml:"salesTaxRate,omitempty" mapstructure:"salesTaxRate"` // percent
	TTL          float64 `json:"ttl,omitempty" yaml:"ttl,omitempty" mapstructure:"ttl"`
	Frontend     float64 `json:"frontend,omitempty" yaml:"frontend,omitempty" mapstructure:"frontend"`
	Backend      float64 `json:"backend,omitempty" yaml:"backend,omitempty" mapstructure:"backend"`

	OtherMonthlyDebt float64       `json:"otherMonthlyDebt,omitempty" yaml:"otherMonthlyDebt,omitempty" mapstructure:"otherMonthlyDebt"`
	ExistingLoans    ExistingLoans `json:"existingLoans,omitempty" yaml:"existingLoans,omitempty" mapstructure:"existingLoans"`
}

// Clone returns a copy of the inputs that shares no memory with the original.
func (in Inputs) Clone() Inputs {
	in.ExistingLoans = append(ExistingLoans(nil), in.ExistingLoans...)
	return in
}

// ExistingLoans is the ordered list of monthly payments on auto loans the
// customer already carries.
type ExistingLoans []float64

// Add appends a payment to the end of the list.
func (l *ExistingLoans) Add(payment float64) {
	*l = append(*l, payment)
}

// Remove deletes the payment at index, preserving the order of the rest.
func (l *ExistingLoans) Remove(index int) error {
	if index < 0 || index >= len(*l) {
		return fmt.Errorf("existing loan index %d out of range [0, %d)", index, len(*l))
	}
	*l = append((*l)[:index:index], (*l)[index+1:]...)
	return nil
}

// Update replaces the payment at index.
func (l *ExistingLoans) Update(index int, payment float64) error {
	if index < 0 || index >= len(*l) {
		return fmt.Errorf("existing loan index %d out of range [0, %d)", index, len(*l))
	}
	(*l)[index] = payment
	return nil
}

// Len returns the number of existing loans.
func (l ExistingLoans) Len() int {
	return len(l)
}

// Values returns a copy of the payments.
func (l ExistingLoans) Values() []float64 {
	return append([]float64(nil), l...)
}

// Total sums the payments. Non-finite entries count as zero.
func (l ExistingLoans) Total() float64 {
	total := 0.0
	for _, payment := range l {
		if math.IsNaN(payment) || math.IsInf(payment, 0) {
			continue
		}
		total += payment
	}
	return total
}
