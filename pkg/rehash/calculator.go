package rehash

import (
	"math"

	"github.com/iwvelando/rehash-tool/pkg/constants"
	"github.com/iwvelando/rehash-tool/pkg/loans"
	"github.com/iwvelando/rehash-tool/pkg/mathutil"
)

// Outputs holds the derived metrics for one set of inputs. Every float is finite.
type Outputs struct {
	Variant Variant `json:"variant"`

	NetTrade      float64 `json:"netTrade"`
	TaxableAmount float64 `json:"taxableAmount"`
	SalesTax      float64 `json:"salesTax"`

	LoanAmount  float64 `json:"loanAmount"`
	MonthlyRate float64 `json:"monthlyRate"`
	NewPayment  float64 `json:"newPayment"`

	ExistingTotal     float64 `json:"existingTotal"`
	TotalAutoPayments float64 `json:"totalAutoPayments"`
	TotalMonthlyDebt  float64 `json:"totalMonthlyDebt"`
	PTI               float64 `json:"pti"`
	DTI               float64 `json:"dti"`

	PriceDifference float64 `json:"priceDifference"`
	EquityPercent   float64 `json:"equityPercent"`

	PTIScore    float64 `json:"ptiScore"`
	EquityScore float64 `json:"equityScore"`
	Score       float64 `json:"score"`
	Grade       string  `json:"grade,omitempty"`

	TargetPayment    float64 `json:"targetPayment,omitempty"`
	NeededLoanAmount float64 `json:"neededLoanAmount,omitempty"`
	SuggestedDown    float64 `json:"suggestedDown,omitempty"`

	PTIBand   string `json:"ptiBand"`
	PriceBand string `json:"priceBand"`
	ScoreBand string `json:"scoreBand"`
}

// strategy is one variant's way of turning inputs into outputs.
type strategy interface {
	variant() Variant
	calculate(in Inputs) Outputs
}

func strategyFor(v Variant) strategy {
	if parsed, _ := ParseVariant(string(v)); parsed == Portfolio {
		return portfolioStrategy{}
	}
	return dealerStrategy{}
}

// Calculate derives the outputs for in. It never panics and never returns
// NaN or Inf: undefined arithmetic maps to 0. Unknown variants are computed
// as Dealer.
func Calculate(in Inputs) Outputs {
	s := strategyFor(in.Variant)
	out := s.calculate(in)
	out.Variant = s.variant()

	out.PriceDifference = in.SalesPrice - in.BookValue
	out.EquityPercent = -out.PriceDifference / mathutil.Max(1, in.BookValue) * constants.PercentageMultiplier

	out.finalize()
	out.PTIBand = PTIBand(out.PTI)
	out.PriceBand = PriceBand(out.PriceDifference)
	out.ScoreBand = ScoreBand(out.Score)
	return out
}

// paymentToIncome returns payments as a percent of income, or 0 without income.
func paymentToIncome(payments, income float64) float64 {
	if income <= 0 {
		return 0
	}
	return mathutil.CalculatePercentage(payments, income)
}

type dealerStrategy struct{}

func (dealerStrategy) variant() Variant { return Dealer }

func (dealerStrategy) calculate(in Inputs) Outputs {
	var out Outputs

	out.NetTrade = in.TradeAllowance - in.TradePayoff
	out.TaxableAmount = mathutil.Max(0, in.SalesPrice-in.TradeAllowance)
	out.SalesTax = mathutil.ApplyPercentage(out.TaxableAmount, in.SalesTaxRate)
	out.LoanAmount = in.SalesPrice + out.SalesTax + in.DocFee + in.TTL + in.Frontend + in.Backend -
		in.DownPayment - out.NetTrade

	out.MonthlyRate = loans.MonthlyRate(in.Rate)
	out.NewPayment = loans.CalculateMonthlyPayment(out.LoanAmount, in.Rate, in.Term)
	out.TotalAutoPayments = out.NewPayment
	out.TotalMonthlyDebt = out.NewPayment
	out.PTI = paymentToIncome(out.NewPayment, in.Income)

	score := constants.MaxScore
	if out.PTI > constants.PTIComfortLimit {
		score -= (out.PTI - constants.PTIComfortLimit) * constants.PTIPenaltyPerPoint
	}
	if out.NetTrade < 0 {
		score -= math.Abs(out.NetTrade) / constants.NegativeEquityPenaltyDivisor
	}
	if in.Frontend+in.Backend > constants.ProductLoadLimit {
		score -= constants.ProductLoadPenalty
	}
	out.Score = mathutil.Clamp(score, 0, constants.MaxScore)
	out.Grade = Grade(out.Score)

	out.TargetPayment = mathutil.Max(0, in.Income*constants.TargetPTIShare)
	out.NeededLoanAmount = loans.PrincipalForPayment(out.TargetPayment, in.Rate, in.Term)
	out.SuggestedDown = mathutil.Max(0, out.LoanAmount-out.NeededLoanAmount)

	return out
}

type portfolioStrategy struct{}

func (portfolioStrategy) variant() Variant { return Portfolio }

func (portfolioStrategy) calculate(in Inputs) Outputs {
	var out Outputs

	out.ExistingTotal = in.ExistingLoans.Total()
	out.LoanAmount = mathutil.Max(0, in.SalesPrice-in.DownPayment)
	out.MonthlyRate = loans.MonthlyRate(in.Rate)
	out.NewPayment = loans.CalculateMonthlyPayment(out.LoanAmount, in.Rate, in.Term)

	out.TotalAutoPayments = out.ExistingTotal + out.NewPayment
	out.PTI = paymentToIncome(out.TotalAutoPayments, in.Income)
	out.TotalMonthlyDebt = in.OtherMonthlyDebt + out.TotalAutoPayments
	out.DTI = paymentToIncome(out.TotalMonthlyDebt, in.Income)

	if out.PTI >= constants.PTIScoreCutoff {
		out.PTIScore = 0
	} else {
		out.PTIScore = mathutil.Clamp(constants.MaxScore-out.PTI*constants.PTIScoreSlope, 0, constants.MaxScore)
	}

	diff := in.SalesPrice - in.BookValue
	if diff <= 0 {
		out.EquityScore = constants.MaxScore
	} else {
		overBook := diff / mathutil.Max(1, in.BookValue) * constants.PercentageMultiplier
		out.EquityScore = mathutil.Clamp(constants.MaxScore-overBook, 0, constants.MaxScore)
	}

	blended := out.PTIScore*constants.PTIScoreWeight + out.EquityScore*constants.EquityScoreWeight
	out.Score = mathutil.Clamp(math.Round(blended), 0, constants.MaxScore)

	return out
}

// finalize maps any non-finite value left by extreme inputs to zero.
func (o *Outputs) finalize() {
	for _, field := range []*float64{
		&o.NetTrade, &o.TaxableAmount, &o.SalesTax,
		&o.LoanAmount, &o.MonthlyRate, &o.NewPayment,
		&o.ExistingTotal, &o.TotalAutoPayments, &o.TotalMonthlyDebt, &o.PTI, &o.DTI,
		&o.PriceDifference, &o.EquityPercent,
		&o.PTIScore, &o.EquityScore, &o.Score,
		&o.TargetPayment, &o.NeededLoanAmount, &o.SuggestedDown,
	} {
		*field = mathutil.Finite(*field)
	}
}
