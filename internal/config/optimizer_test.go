package config

import "testing"

func TestCanonicalOptimizerField(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty defaults to down payment", input: "", expected: OptimizerFieldDownPayment},
		{name: "down payment casing", input: "DownPayment", expected: OptimizerFieldDownPayment},
		{name: "down payment snake case", input: "down_payment", expected: OptimizerFieldDownPayment},
		{name: "term", input: "TERM", expected: OptimizerFieldTerm},
		{name: "months alias", input: "months", expected: OptimizerFieldTerm},
		{name: "unknown lowered", input: "Rate", expected: "rate"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := CanonicalOptimizerField(tc.input)
			if actual != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, actual)
			}
		})
	}
}

func TestOptimizerConfigNormalize(t *testing.T) {
	cfg := &OptimizerConfig{Field: "Down-Payment"}
	cfg.Normalize()

	if cfg.Field != OptimizerFieldDownPayment {
		t.Fatalf("expected field %q, got %q", OptimizerFieldDownPayment, cfg.Field)
	}
	if cfg.TargetPTI != 15 {
		t.Fatalf("expected default target PTI 15, got %.2f", cfg.TargetPTI)
	}
	if cfg.Tolerance != defaultToleranceAmount {
		t.Fatalf("expected tolerance %.2f, got %.2f", defaultToleranceAmount, cfg.Tolerance)
	}
	if cfg.MaxIterations != defaultMaxIterations {
		t.Fatalf("expected max iterations %d, got %d", defaultMaxIterations, cfg.MaxIterations)
	}

	var nilCfg *OptimizerConfig
	nilCfg.Normalize()
}

func TestOptimizerConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     *OptimizerConfig
		wantErr bool
	}{
		{name: "nil", cfg: nil, wantErr: true},
		{name: "down payment valid", cfg: &OptimizerConfig{Field: "downPayment", Min: floatPtr(0), Max: floatPtr(10000)}},
		{name: "down payment missing min", cfg: &OptimizerConfig{Field: "downPayment", Max: floatPtr(10000)}, wantErr: true},
		{name: "down payment missing max", cfg: &OptimizerConfig{Field: "downPayment", Min: floatPtr(0)}, wantErr: true},
		{name: "down payment inverted", cfg: &OptimizerConfig{Field: "downPayment", Min: floatPtr(5), Max: floatPtr(5)}, wantErr: true},
		{name: "down payment negative min", cfg: &OptimizerConfig{Field: "downPayment", Min: floatPtr(-1), Max: floatPtr(5)}, wantErr: true},
		{name: "term without bounds", cfg: &OptimizerConfig{Field: "term"}},
		{name: "term inverted", cfg: &OptimizerConfig{Field: "term", Min: floatPtr(72), Max: floatPtr(48)}, wantErr: true},
		{name: "target above 100", cfg: &OptimizerConfig{Field: "term", TargetPTI: 120}, wantErr: true},
		{name: "negative target", cfg: &OptimizerConfig{Field: "term", TargetPTI: -5}, wantErr: true},
		{name: "unsupported field", cfg: &OptimizerConfig{Field: "rate"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error but got none")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestOptimizerConfigTermBounds(t *testing.T) {
	cfg := &OptimizerConfig{Field: "term", Min: floatPtr(48), Max: floatPtr(72)}
	lo, hi := cfg.TermBounds()
	if lo != 48 || hi != 72 {
		t.Fatalf("TermBounds() = %d, %d, want 48, 72", lo, hi)
	}

	lo, hi = (&OptimizerConfig{}).TermBounds()
	if lo != 0 || hi < 84 {
		t.Fatalf("open TermBounds() = %d, %d", lo, hi)
	}
}

func floatPtr(value float64) *float64 {
	return &value
}
