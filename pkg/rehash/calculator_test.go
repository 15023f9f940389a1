package rehash

import (
	"math"
	"reflect"
	"testing"
)

// dealerDefaults mirrors the dealer worksheet's starting form values.
func dealerDefaults() Inputs {
	return Inputs{
		Variant:      Dealer,
		SalesPrice:   25000,
		BookValue:    23000,
		Income:       5000,
		DownPayment:  2000,
		Rate:         7.5,
		Term:         60,
		DocFee:       799,
		SalesTaxRate: 7,
		TTL:          500,
	}
}

// portfolioDefaults mirrors the portfolio worksheet's starting form values.
func portfolioDefaults() Inputs {
	return Inputs{
		Variant:          Portfolio,
		SalesPrice:       25000,
		BookValue:        23000,
		Income:           5000,
		OtherMonthlyDebt: 400,
		ExistingLoans:    ExistingLoans{350},
		DownPayment:      2000,
		Rate:             7.5,
		Term:             60,
	}
}

func assertClose(t *testing.T, field string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 0.01 {
		t.Errorf("%s = %.4f, expected %.4f", field, got, want)
	}
}

func TestCalculateDealer(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(in *Inputs)
		loanAmount    float64
		salesTax      float64
		newPayment    float64
		pti           float64
		score         float64
		grade         string
		suggestedDown float64
	}{
		{
			name:       "Form defaults",
			mutate:     func(in *Inputs) {},
			loanAmount: 26049,
			salesTax:   1750,
			newPayment: 521.97,
			pti:        10.44,
			score:      100,
			grade:      "A",
		},
		{
			name: "Negative trade equity",
			mutate: func(in *Inputs) {
				in.TradeAllowance = 5000
				in.TradePayoff = 8000
			},
			loanAmount: 28699,
			salesTax:   1400,
			newPayment: 575.07,
			pti:        11.50,
			score:      70,
			grade:      "C",
		},
		{
			name: "High PTI with heavy products",
			mutate: func(in *Inputs) {
				in.Income = 2500
				in.Frontend = 1500
				in.Backend = 600
			},
			loanAmount:    28149,
			salesTax:      1750,
			newPayment:    564.05,
			pti:           22.56,
			score:         79.88,
			grade:         "C",
			suggestedDown: 28149 - 375.0/460.8728176993413*23000,
		},
		{
			name: "Score floors at zero",
			mutate: func(in *Inputs) {
				in.Income = 500
			},
			loanAmount:    26049,
			salesTax:      1750,
			newPayment:    521.97,
			pti:           104.39,
			score:         0,
			grade:         "F",
			suggestedDown: 26049 - 75.0/460.8728176993413*23000,
		},
		{
			name: "Trade allowance above price is not taxed",
			mutate: func(in *Inputs) {
				in.TradeAllowance = 30000
				in.TradePayoff = 30000
			},
			loanAmount: 24299,
			salesTax:   0,
			newPayment: 24299 / 23000.0 * 460.8728176993413,
			pti:        24299 / 23000.0 * 460.8728176993413 / 50,
			score:      100,
			grade:      "A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := dealerDefaults()
			tt.mutate(&in)
			out := Calculate(in)

			if out.Variant != Dealer {
				t.Errorf("Variant = %q, expected %q", out.Variant, Dealer)
			}
			assertClose(t, "LoanAmount", out.LoanAmount, tt.loanAmount)
			assertClose(t, "SalesTax", out.SalesTax, tt.salesTax)
			assertClose(t, "NewPayment", out.NewPayment, tt.newPayment)
			assertClose(t, "PTI", out.PTI, tt.pti)
			assertClose(t, "Score", out.Score, tt.score)
			assertClose(t, "SuggestedDown", out.SuggestedDown, tt.suggestedDown)
			if out.Grade != tt.grade {
				t.Errorf("Grade = %q, expected %q", out.Grade, tt.grade)
			}
			if out.DTI != 0 {
				t.Errorf("dealer DTI = %.2f, expected 0", out.DTI)
			}
		})
	}
}

func TestCalculatePortfolio(t *testing.T) {
	out := Calculate(portfolioDefaults())

	assertClose(t, "LoanAmount", out.LoanAmount, 23000)
	if out.MonthlyRate != 0.00625 {
		t.Errorf("MonthlyRate = %v, expected 0.00625", out.MonthlyRate)
	}
	assertClose(t, "NewPayment", out.NewPayment, 460.87)
	assertClose(t, "ExistingTotal", out.ExistingTotal, 350)
	assertClose(t, "TotalAutoPayments", out.TotalAutoPayments, 810.87)
	assertClose(t, "PTI", out.PTI, 16.22)
	assertClose(t, "TotalMonthlyDebt", out.TotalMonthlyDebt, 1210.87)
	assertClose(t, "DTI", out.DTI, 24.22)
	assertClose(t, "PTIScore", out.PTIScore, 35.13)
	assertClose(t, "EquityScore", out.EquityScore, 91.30)
	assertClose(t, "EquityPercent", out.EquityPercent, -8.70)
	if out.Score != 63 {
		t.Errorf("Score = %v, expected 63", out.Score)
	}
	if out.Grade != "" {
		t.Errorf("portfolio Grade = %q, expected none", out.Grade)
	}
	if out.ScoreBand != "caution" || out.PTIBand != "caution" || out.PriceBand != "risk" {
		t.Errorf("bands = %s/%s/%s, expected caution/caution/risk", out.ScoreBand, out.PTIBand, out.PriceBand)
	}
}

func TestCalculatePortfolioScoring(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *Inputs)
		score  float64
	}{
		{
			name:   "PTI at or above cutoff zeroes the PTI sub-score",
			mutate: func(in *Inputs) { in.Income = 2000 },
			score:  46,
		},
		{
			name: "Priced under book earns full equity score",
			mutate: func(in *Inputs) {
				in.BookValue = 26000
				in.ExistingLoans = nil
				in.Income = 100000
			},
			score: math.Round(0.5*(100-4*ptiForTest(23000, 100000)) + 50),
		},
		{
			name: "Price far above book floors the equity sub-score",
			mutate: func(in *Inputs) {
				in.BookValue = 5000
				in.ExistingLoans = nil
				in.Income = 100000
			},
			score: math.Round(0.5 * (100 - 4*ptiForTest(23000, 100000))),
		},
		{
			name: "Negative existing payments cannot lift the PTI sub-score above 100",
			mutate: func(in *Inputs) {
				in.ExistingLoans = ExistingLoans{-5000}
				in.BookValue = 25000
			},
			score: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := portfolioDefaults()
			tt.mutate(&in)
			out := Calculate(in)
			if out.Score != tt.score {
				t.Errorf("Score = %v, expected %v", out.Score, tt.score)
			}
			if out.PTIScore < 0 || out.PTIScore > 100 || out.EquityScore < 0 || out.EquityScore > 100 {
				t.Errorf("sub-scores out of range: pti %v equity %v", out.PTIScore, out.EquityScore)
			}
		})
	}
}

// ptiForTest returns the PTI of a 60 month 7.5% loan with no other payments.
func ptiForTest(loanAmount, income float64) float64 {
	r := 7.5 / 100 / 12
	payment := loanAmount * r / (1 - math.Pow(1+r, -60))
	return payment / income * 100
}

func TestCalculateLoanAmountNonNegative(t *testing.T) {
	for _, price := range []float64{0, 1, 9999, 25000, 80000} {
		for _, down := range []float64{0, price / 2, price} {
			in := portfolioDefaults()
			in.SalesPrice = price
			in.DownPayment = down
			if out := Calculate(in); out.LoanAmount < 0 {
				t.Errorf("price %.0f down %.0f: LoanAmount = %.2f", price, down, out.LoanAmount)
			}
		}
	}

	in := portfolioDefaults()
	in.DownPayment = 30000
	out := Calculate(in)
	if out.LoanAmount != 0 || out.NewPayment != 0 {
		t.Errorf("down above price: LoanAmount %.2f NewPayment %.2f, expected 0", out.LoanAmount, out.NewPayment)
	}
}

func TestCalculateZeroRateIsStraightLine(t *testing.T) {
	for _, in := range []Inputs{dealerDefaults(), portfolioDefaults()} {
		in.Rate = 0
		out := Calculate(in)
		if out.NewPayment != out.LoanAmount/float64(in.Term) {
			t.Errorf("%s: NewPayment = %v, expected %v", in.Variant, out.NewPayment, out.LoanAmount/float64(in.Term))
		}
		if out.MonthlyRate != 0 {
			t.Errorf("%s: MonthlyRate = %v, expected 0", in.Variant, out.MonthlyRate)
		}
	}
}

func TestCalculateZeroIncome(t *testing.T) {
	for _, income := range []float64{0, -1, -5000} {
		for _, in := range []Inputs{dealerDefaults(), portfolioDefaults()} {
			in.Income = income
			out := Calculate(in)
			if out.PTI != 0 || out.DTI != 0 {
				t.Errorf("%s income %.0f: PTI %v DTI %v, expected 0", in.Variant, income, out.PTI, out.DTI)
			}
			if out.TargetPayment != 0 {
				t.Errorf("%s income %.0f: TargetPayment %v, expected 0", in.Variant, income, out.TargetPayment)
			}
		}
	}
}

func TestCalculateZeroTerm(t *testing.T) {
	for _, term := range []int{0, -12} {
		for _, in := range []Inputs{dealerDefaults(), portfolioDefaults()} {
			in.Term = term
			out := Calculate(in)
			if out.NewPayment != 0 {
				t.Errorf("%s term %d: NewPayment %v, expected 0", in.Variant, term, out.NewPayment)
			}
		}
	}

	in := dealerDefaults()
	in.Term = 0
	out := Calculate(in)
	if out.SuggestedDown != out.LoanAmount {
		t.Errorf("SuggestedDown = %v, expected the full loan amount %v", out.SuggestedDown, out.LoanAmount)
	}
}

func TestCalculateRateMonotonic(t *testing.T) {
	for _, base := range []Inputs{dealerDefaults(), portfolioDefaults()} {
		previous := -1.0
		for rate := 0.0; rate <= 25; rate += 0.25 {
			in := base.Clone()
			in.Rate = rate
			out := Calculate(in)
			if out.NewPayment < previous {
				t.Fatalf("%s: payment fell from %.4f to %.4f at rate %.2f", base.Variant, previous, out.NewPayment, rate)
			}
			previous = out.NewPayment
		}
	}
}

func TestCalculateScoreAlwaysClamped(t *testing.T) {
	incomes := []float64{-100, 0, 1, 300, 2500, 5000, 1e9}
	payoffs := []float64{0, 5000, 1e7}
	for _, base := range []Inputs{dealerDefaults(), portfolioDefaults()} {
		for _, income := range incomes {
			for _, payoff := range payoffs {
				in := base.Clone()
				in.Income = income
				in.TradePayoff = payoff
				in.BookValue = payoff
				out := Calculate(in)
				if out.Score < 0 || out.Score > 100 {
					t.Errorf("%s income %v payoff %v: score %v out of [0,100]", base.Variant, income, payoff, out.Score)
				}
			}
		}
	}
}

func TestCalculateNeverReturnsNonFinite(t *testing.T) {
	extremes := []float64{math.NaN(), math.Inf(1), math.Inf(-1), math.MaxFloat64, -math.MaxFloat64}
	for _, variant := range []Variant{Dealer, Portfolio, Variant("unknown")} {
		for _, value := range extremes {
			in := Inputs{
				Variant:          variant,
				SalesPrice:       value,
				BookValue:        value,
				TradeAllowance:   value,
				TradePayoff:      25,
				Income:           value,
				DownPayment:      value,
				Rate:             value,
				Term:             60,
				DocFee:           value,
				SalesTaxRate:     value,
				TTL:              value,
				Frontend:         value,
				Backend:          value,
				OtherMonthlyDebt: value,
				ExistingLoans:    ExistingLoans{value, 100},
			}
			out := Calculate(in)

			v := reflect.ValueOf(out)
			for i := 0; i < v.NumField(); i++ {
				field := v.Field(i)
				if field.Kind() != reflect.Float64 {
					continue
				}
				if f := field.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
					t.Errorf("%s input %v: %s = %v", variant, value, v.Type().Field(i).Name, f)
				}
			}
		}
	}
}

func TestCalculateUnknownVariantFallsBackToDealer(t *testing.T) {
	in := dealerDefaults()
	in.Variant = "leasing"
	out := Calculate(in)
	want := Calculate(dealerDefaults())

	if out.Variant != Dealer {
		t.Errorf("Variant = %q, expected dealer", out.Variant)
	}
	if out.LoanAmount != want.LoanAmount || out.Score != want.Score {
		t.Errorf("unknown variant computed %+v, expected %+v", out, want)
	}
}

func TestCalculateDoesNotMutateInputs(t *testing.T) {
	in := portfolioDefaults()
	snapshot := in.Clone()
	_ = Calculate(in)
	if !reflect.DeepEqual(in, snapshot) {
		t.Errorf("inputs changed: %+v, expected %+v", in, snapshot)
	}
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		input     string
		expected  Variant
		expectErr bool
	}{
		{"", Dealer, false},
		{"dealer", Dealer, false},
		{" Portfolio ", Portfolio, false},
		{"lease", Dealer, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseVariant(tt.input)
			if (err != nil) != tt.expectErr {
				t.Fatalf("ParseVariant(%q) error = %v, expectErr %v", tt.input, err, tt.expectErr)
			}
			if v != tt.expected {
				t.Errorf("ParseVariant(%q) = %q, expected %q", tt.input, v, tt.expected)
			}
		})
	}
}

func TestVariantTerms(t *testing.T) {
	if !Dealer.AllowsTerm(75) || Portfolio.AllowsTerm(75) {
		t.Error("75 months should be offered by dealer only")
	}
	if !Portfolio.AllowsTerm(60) || Portfolio.AllowsTerm(0) {
		t.Error("portfolio menu should include 60 and exclude 0")
	}

	terms := Dealer.Terms()
	terms[0] = 1
	if Dealer.Terms()[0] != 36 {
		t.Error("Terms() must return a copy")
	}
}
