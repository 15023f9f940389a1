// Package loans provides common loan processing utilities.
package loans

import (
	"fmt"
	"math"

	"github.com/iwvelando/rehash-tool/pkg/constants"
	"github.com/iwvelando/rehash-tool/pkg/mathutil"
	"go.uber.org/zap"
)

// Payment holds the values for a given payment.
type Payment struct {
	Number             int     `json:"number"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// ScheduleSummary totals an amortization schedule.
type ScheduleSummary struct {
	Payments      int     `json:"payments"`
	TotalPaid     float64 `json:"totalPaid"`
	TotalInterest float64 `json:"totalInterest"`
}

// TermOption describes the cost of financing a principal over one term.
type TermOption struct {
	Term          int     `json:"term"`
	Payment       float64 `json:"payment"`
	TotalPaid     float64 `json:"totalPaid"`
	TotalInterest float64 `json:"totalInterest"`
}

// MonthlyRate converts an APR in percent into the periodic monthly rate.
func MonthlyRate(annualInterestRate float64) float64 {
	return mathutil.Finite(annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear))
}

// CalculateMonthlyPayment calculates the monthly payment for a loan using the standard amortization formula.
// A non-positive term yields 0 and a zero rate degrades to straight-line repayment.
func CalculateMonthlyPayment(principal, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}

	periodicInterestRate := MonthlyRate(annualInterestRate)
	if periodicInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return mathutil.Finite(principal / float64(termMonths))
	}

	discountFactor := 1.00 - math.Pow(1.00+periodicInterestRate, -float64(termMonths))
	return mathutil.SafeDivide(principal*periodicInterestRate, discountFactor)
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return mathutil.Finite(remainingPrincipal * MonthlyRate(annualInterestRate))
}

// PrincipalForPayment returns the principal that the given monthly payment
// fully amortizes at the given APR over termMonths.
func PrincipalForPayment(payment, annualInterestRate float64, termMonths int) float64 {
	if termMonths <= 0 {
		return 0
	}

	periodicInterestRate := MonthlyRate(annualInterestRate)
	if periodicInterestRate == 0 {
		return mathutil.Finite(payment * float64(termMonths))
	}

	discountFactor := 1.00 - math.Pow(1.00+periodicInterestRate, -float64(termMonths))
	return mathutil.SafeDivide(payment*discountFactor, periodicInterestRate)
}

// CompareTerms prices the principal over each of the given terms.
func CompareTerms(principal, annualInterestRate float64, terms []int) []TermOption {
	options := make([]TermOption, 0, len(terms))
	for _, term := range terms {
		payment := CalculateMonthlyPayment(principal, annualInterestRate, term)
		totalPaid := mathutil.Finite(payment * float64(term))
		options = append(options, TermOption{
			Term:          term,
			Payment:       mathutil.Round(payment),
			TotalPaid:     mathutil.Round(totalPaid),
			TotalInterest: mathutil.Round(totalPaid - principal),
		})
	}
	return options
}

// Summarize totals the payments and interest of a schedule.
func Summarize(schedule []Payment) ScheduleSummary {
	var summary ScheduleSummary
	for _, payment := range schedule {
		summary.Payments++
		summary.TotalPaid += payment.Payment
		summary.TotalInterest += payment.Interest
	}
	summary.TotalPaid = mathutil.Round(summary.TotalPaid)
	summary.TotalInterest = mathutil.Round(summary.TotalInterest)
	return summary
}

// AmortizationScheduleGenerator provides utilities for generating loan amortization schedules
type AmortizationScheduleGenerator struct {
	logger *zap.Logger
}

// NewAmortizationScheduleGenerator creates a new generator instance
func NewAmortizationScheduleGenerator(logger *zap.Logger) *AmortizationScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmortizationScheduleGenerator{logger: logger}
}

// GenerateSchedule creates a complete amortization schedule for a loan
func (g *AmortizationScheduleGenerator) GenerateSchedule(principal, annualInterestRate float64, termMonths int) ([]Payment, error) {
	if termMonths <= 0 {
		return nil, fmt.Errorf("invalid term %d: must be a positive number of months", termMonths)
	}
	if termMonths > constants.MaxScheduleMonths {
		return nil, fmt.Errorf("invalid term %d: schedules are limited to %d months", termMonths, constants.MaxScheduleMonths)
	}
	if math.IsNaN(principal) || math.IsInf(principal, 0) {
		return nil, fmt.Errorf("invalid principal %v", principal)
	}
	if principal <= 0 {
		g.logger.Debug(fmt.Sprintf("nothing to amortize for principal %.2f", principal),
			zap.String("op", "loans.GenerateSchedule"),
		)
		return nil, nil
	}

	monthlyPayment := CalculateMonthlyPayment(principal, annualInterestRate, termMonths)
	schedule := make([]Payment, 0, termMonths)
	balance := principal

	for month := 1; month <= termMonths; month++ {
		current := Payment{Number: month}
		current.Interest = CalculateInterestPayment(balance, annualInterestRate)
		current.Principal = monthlyPayment - current.Interest
		current.Payment = monthlyPayment

		if month == termMonths || mathutil.Round(balance-current.Principal) <= 0 {
			// We will get machine error otherwise so just settle the balance.
			current.Principal = balance
			current.Payment = balance + current.Interest
			current.RemainingPrincipal = 0.00
			schedule = append(schedule, current)
			if month < termMonths {
				g.logger.Debug(fmt.Sprintf("loan settled early at payment %d of %d", month, termMonths),
					zap.String("op", "loans.GenerateSchedule"),
				)
			}
			break
		}

		balance -= current.Principal
		current.RemainingPrincipal = balance
		schedule = append(schedule, current)
	}

	return schedule, nil
}
