package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/rehash-tool/pkg/constants"
)

const (
	OptimizerFieldDownPayment = "downPayment"
	OptimizerFieldTerm        = "term"

	defaultToleranceAmount = 0.01
	defaultMaxIterations   = 50
)

// OptimizerConfig defines a single-parameter optimization directive: find the
// smallest change to Field that brings PTI to TargetPTI or below.
type OptimizerConfig struct {
	Field         string   `yaml:"field,omitempty" mapstructure:"field"`
	TargetPTI     float64  `yaml:"targetPTI,omitempty" mapstructure:"targetPTI"`
	Min           *float64 `yaml:"min,omitempty" mapstructure:"min"`
	Max           *float64 `yaml:"max,omitempty" mapstructure:"max"`
	Tolerance     float64  `yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int      `yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// CanonicalOptimizerField returns the canonical identifier for an optimizer field.
func CanonicalOptimizerField(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return OptimizerFieldDownPayment
	}
	switch strings.ToLower(trimmed) {
	case "downpayment", "down_payment", "down-payment", "down":
		return OptimizerFieldDownPayment
	case "term", "months":
		return OptimizerFieldTerm
	default:
		return strings.ToLower(trimmed)
	}
}

// Normalize ensures defaults and canonical values are applied before validation.
func (o *OptimizerConfig) Normalize() {
	if o == nil {
		return
	}
	o.Field = CanonicalOptimizerField(o.Field)

	if o.TargetPTI == 0 {
		o.TargetPTI = constants.PTIComfortLimit
	}
	if o.Tolerance <= 0 {
		o.Tolerance = defaultToleranceAmount
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultMaxIterations
	}
}

// Validate returns an error when the optimizer configuration is unsupported.
func (o *OptimizerConfig) Validate() error {
	if o == nil {
		return fmt.Errorf("optimizer configuration cannot be nil")
	}

	o.Normalize()

	if o.TargetPTI <= 0 || o.TargetPTI > constants.PercentageMultiplier {
		return fmt.Errorf("optimizer targetPTI %.2f must be within (0, 100]", o.TargetPTI)
	}

	switch o.Field {
	case OptimizerFieldDownPayment:
		if o.Min == nil {
			return fmt.Errorf("optimizer requires a minimum bound")
		}
		if o.Max == nil {
			return fmt.Errorf("optimizer requires a maximum bound")
		}
		if *o.Min < 0 {
			return fmt.Errorf("optimizer minimum %.2f must not be negative", *o.Min)
		}
		if *o.Min >= *o.Max {
			return fmt.Errorf("optimizer minimum %.2f must be less than maximum %.2f", *o.Min, *o.Max)
		}
	case OptimizerFieldTerm:
		if o.Min != nil && o.Max != nil && *o.Min > *o.Max {
			return fmt.Errorf("optimizer term minimum %.0f must not exceed maximum %.0f", *o.Min, *o.Max)
		}
	default:
		return fmt.Errorf("optimizer field %q is not supported", o.Field)
	}

	return nil
}

// TermBounds returns the inclusive month range the term search may use.
func (o *OptimizerConfig) TermBounds() (int, int) {
	lo, hi := 0, int(^uint(0)>>1)
	if o == nil {
		return lo, hi
	}
	if o.Min != nil {
		lo = int(*o.Min)
	}
	if o.Max != nil {
		hi = int(*o.Max)
	}
	return lo, hi
}
