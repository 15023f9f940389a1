package validation

import (
	"strings"
	"testing"

	"github.com/iwvelando/rehash-tool/pkg/rehash"
)

func dealerDeal() rehash.Inputs {
	return rehash.Inputs{
		Variant:        rehash.Dealer,
		SalesPrice:     25000,
		BookValue:      24000,
		TradeAllowance: 6000,
		TradePayoff:    5000,
		Income:         5000,
		DownPayment:    2000,
		Rate:           7.5,
		Term:           60,
		DocFee:         799,
		SalesTaxRate:   7,
		TTL:            500,
	}
}

func portfolioDeal() rehash.Inputs {
	return rehash.Inputs{
		Variant:          rehash.Portfolio,
		SalesPrice:       25000,
		BookValue:        23000,
		Income:           5000,
		DownPayment:      2000,
		Rate:             7.5,
		Term:             60,
		OtherMonthlyDebt: 400,
		ExistingLoans:    rehash.ExistingLoans{350},
	}
}

func containsWarning(warnings []string, fragment string) bool {
	for _, w := range warnings {
		if strings.Contains(w, fragment) {
			return true
		}
	}
	return false
}

func TestValidateVariant(t *testing.T) {
	for _, value := range []string{"", "dealer", "portfolio", "Portfolio"} {
		if err := ValidateVariant(value); err != nil {
			t.Errorf("ValidateVariant(%q) unexpected error = %v", value, err)
		}
	}
	if err := ValidateVariant("lease"); err == nil {
		t.Error("ValidateVariant(lease) expected error")
	}
}

func TestValidateTerm(t *testing.T) {
	tests := []struct {
		name    string
		variant rehash.Variant
		term    int
		warn    bool
	}{
		{"dealer 75 on menu", rehash.Dealer, 75, false},
		{"dealer 84 on menu", rehash.Dealer, 84, false},
		{"dealer 30 off menu", rehash.Dealer, 30, true},
		{"portfolio 72 on menu", rehash.Portfolio, 72, false},
		{"portfolio 84 off menu", rehash.Portfolio, 84, true},
		{"portfolio 54 off menu", rehash.Portfolio, 54, true},
		{"unknown variant uses dealer menu", rehash.Variant("lease"), 66, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warning := ValidateTerm("deal", tt.variant, tt.term)
			if tt.warn && warning == "" {
				t.Errorf("ValidateTerm(%s, %d) expected warning", tt.variant, tt.term)
			}
			if !tt.warn && warning != "" {
				t.Errorf("ValidateTerm(%s, %d) unexpected warning %q", tt.variant, tt.term, warning)
			}
		})
	}
}

func TestValidateDealClean(t *testing.T) {
	if warnings := ValidateDeal("dealer", dealerDeal()); len(warnings) != 0 {
		t.Errorf("dealer defaults produced warnings: %v", warnings)
	}
	if warnings := ValidateDeal("portfolio", portfolioDeal()); len(warnings) != 0 {
		t.Errorf("portfolio defaults produced warnings: %v", warnings)
	}
}

func TestValidateDealWarnings(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*rehash.Inputs)
		base     func() rehash.Inputs
		fragment string
	}{
		{
			name:     "unknown variant",
			base:     dealerDeal,
			mutate:   func(in *rehash.Inputs) { in.Variant = "lease" },
			fragment: "unknown variant",
		},
		{
			name:     "term off menu",
			base:     portfolioDeal,
			mutate:   func(in *rehash.Inputs) { in.Term = 84 },
			fragment: "not on the portfolio menu",
		},
		{
			name:     "zero income",
			base:     dealerDeal,
			mutate:   func(in *rehash.Inputs) { in.Income = 0 },
			fragment: "no income",
		},
		{
			name:     "down payment above price",
			base:     dealerDeal,
			mutate:   func(in *rehash.Inputs) { in.DownPayment = 30000 },
			fragment: "exceeds sales price",
		},
		{
			name:     "negative rate",
			base:     dealerDeal,
			mutate:   func(in *rehash.Inputs) { in.Rate = -1 },
			fragment: "negative rate",
		},
		{
			name:     "negative existing loan",
			base:     portfolioDeal,
			mutate:   func(in *rehash.Inputs) { in.ExistingLoans = rehash.ExistingLoans{-10} },
			fragment: "negative existing loan payment",
		},
		{
			name:     "portfolio ignores fees",
			base:     portfolioDeal,
			mutate:   func(in *rehash.Inputs) { in.DocFee = 799 },
			fragment: "ignores",
		},
		{
			name:     "dealer ignores debt",
			base:     dealerDeal,
			mutate:   func(in *rehash.Inputs) { in.OtherMonthlyDebt = 400 },
			fragment: "ignores",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.base()
			tt.mutate(&in)
			warnings := ValidateDeal("scenario 'x'", in)
			if !containsWarning(warnings, tt.fragment) {
				t.Errorf("expected warning containing %q, got %v", tt.fragment, warnings)
			}
			if !containsWarning(warnings, "scenario 'x'") {
				t.Errorf("warnings should carry the label, got %v", warnings)
			}
		})
	}
}

func TestValidateDealNegativeFieldsSorted(t *testing.T) {
	in := dealerDeal()
	in.TTL = -1
	in.DocFee = -1

	warnings := ValidateDeal("deal", in)
	var negatives []string
	for _, w := range warnings {
		if strings.Contains(w, "negative") {
			negatives = append(negatives, w)
		}
	}
	if len(negatives) != 2 {
		t.Fatalf("expected 2 negative warnings, got %v", negatives)
	}
	if !strings.Contains(negatives[0], "docFee") || !strings.Contains(negatives[1], "ttl") {
		t.Errorf("negative warnings not sorted by field: %v", negatives)
	}
}
