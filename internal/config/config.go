// Package config defines the data structures related to configuration and
// includes functions for loading the deal and resolving its scenarios.
package config

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/iwvelando/rehash-tool/pkg/constants"
	"github.com/iwvelando/rehash-tool/pkg/rehash"
	"github.com/iwvelando/rehash-tool/pkg/validation"
)

// EnvPrefix scopes environment overrides, e.g. REHASH_DEAL_INCOME.
const EnvPrefix = "REHASH"

// Configuration holds all configuration for rehash-tool.
type Configuration struct {
	Deal      rehash.Inputs `yaml:"deal" mapstructure:"deal"`
	Scenarios []Scenario    `yaml:"scenarios,omitempty" mapstructure:"scenarios"`
	Logging   LoggingConfig `yaml:"logging,omitempty" mapstructure:"logging"`
	Output    OutputConfig  `yaml:"output,omitempty" mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv
}

// Scenario is a named variation of the deal.
type Scenario struct {
	Name                string           `yaml:"name" mapstructure:"name"`
	Active              bool             `yaml:"active" mapstructure:"active"`
	Overrides           Overrides        `yaml:"overrides,omitempty" mapstructure:"overrides"`
	AddExistingLoans    []float64        `yaml:"addExistingLoans,omitempty" mapstructure:"addExistingLoans"`
	RemoveExistingLoans []int            `yaml:"removeExistingLoans,omitempty" mapstructure:"removeExistingLoans"`
	Optimizer           *OptimizerConfig `yaml:"optimizer,omitempty" mapstructure:"optimizer"`
}

// Overrides replaces individual deal fields; nil fields keep the deal value.
type Overrides struct {
	Variant          *rehash.Variant `yaml:"variant,omitempty" mapstructure:"variant"`
	SalesPrice       *float64        `yaml:"salesPrice,omitempty" mapstructure:"salesPrice"`
	BookValue        *float64        `yaml:"bookValue,omitempty" mapstructure:"bookValue"`
	TradeAllowance   *float64        `yaml:"tradeAllowance,omitempty" mapstructure:"tradeAllowance"`
	TradePayoff      *float64        `yaml:"tradePayoff,omitempty" mapstructure:"tradePayoff"`
	Income           *float64        `yaml:"income,omitempty" mapstructure:"income"`
	DownPayment      *float64        `yaml:"downPayment,omitempty" mapstructure:"downPayment"`
	Rate             *float64        `yaml:"rate,omitempty" mapstructure:"rate"`
	Term             *int            `yaml:"term,omitempty" mapstructure:"term"`
	DocFee           *float64        `yaml:"docFee,omitempty" mapstructure:"docFee"`
	SalesTaxRate     *float64        `yaml:"salesTaxRate,omitempty" mapstructure:"salesTaxRate"`
	TTL              *float64        `yaml:"ttl,omitempty" mapstructure:"ttl"`
	Frontend         *float64        `yaml:"frontend,omitempty" mapstructure:"frontend"`
	Backend          *float64        `yaml:"backend,omitempty" mapstructure:"backend"`
	OtherMonthlyDebt *float64        `yaml:"otherMonthlyDebt,omitempty" mapstructure:"otherMonthlyDebt"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Deal keys may be overridden as REHASH_DEAL_<KEY>.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	if err := bindDealEnv(v); err != nil {
		return nil, err
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r. The
// environment is not consulted, so the result depends only on r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	return v
}

// bindDealEnv binds every scalar deal key so that overrides apply even when
// the file omits the key.
func bindDealEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range DealEnvKeys() {
		if err := v.BindEnv("deal." + key); err != nil {
			return fmt.Errorf("failed to bind environment for deal.%s, %w", key, err)
		}
	}
	return nil
}

// DealEnvKeys lists the deal keys that accept environment overrides.
func DealEnvKeys() []string {
	t := reflect.TypeOf(rehash.Inputs{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Type.Kind() == reflect.Slice {
			continue
		}
		if key := field.Tag.Get("mapstructure"); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	configuration.ApplyDefaults()
	return &configuration, nil
}

// ApplyDefaults fills the output format and scenario names and adds the
// implicit base scenario when none are configured.
func (c *Configuration) ApplyDefaults() {
	if strings.TrimSpace(c.Output.Format) == "" {
		c.Output.Format = constants.OutputFormatPretty
	}

	if len(c.Scenarios) == 0 {
		c.Scenarios = []Scenario{{Name: constants.DefaultScenarioName, Active: true}}
		return
	}

	for i := range c.Scenarios {
		c.Scenarios[i].Name = strings.TrimSpace(c.Scenarios[i].Name)
		if c.Scenarios[i].Name == "" {
			c.Scenarios[i].Name = fmt.Sprintf("scenario %d", i+1)
		}
	}
}

// Resolve applies the scenario to a copy of deal: field overrides first,
// then existing loan removals by index, then additions.
func (s Scenario) Resolve(deal rehash.Inputs) rehash.Inputs {
	in := deal.Clone()
	s.Overrides.apply(&in)

	for _, index := range removalOrder(s.RemoveExistingLoans) {
		// Out of range indices are reported by ValidateConfiguration.
		_ = in.ExistingLoans.Remove(index)
	}
	for _, payment := range s.AddExistingLoans {
		in.ExistingLoans.Add(payment)
	}

	return in
}

// removalOrder returns unique indices in descending order so earlier
// removals do not shift later ones.
func removalOrder(indices []int) []int {
	seen := make(map[int]struct{}, len(indices))
	ordered := make([]int, 0, len(indices))
	for _, index := range indices {
		if _, ok := seen[index]; ok {
			continue
		}
		seen[index] = struct{}{}
		ordered = append(ordered, index)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ordered)))
	return ordered
}

func (o Overrides) apply(in *rehash.Inputs) {
	if o.Variant != nil {
		in.Variant = *o.Variant
	}
	setFloat(&in.SalesPrice, o.SalesPrice)
	setFloat(&in.BookValue, o.BookValue)
	setFloat(&in.TradeAllowance, o.TradeAllowance)
	setFloat(&in.TradePayoff, o.TradePayoff)
	setFloat(&in.Income, o.Income)
	setFloat(&in.DownPayment, o.DownPayment)
	setFloat(&in.Rate, o.Rate)
	if o.Term != nil {
		in.Term = *o.Term
	}
	setFloat(&in.DocFee, o.DocFee)
	setFloat(&in.SalesTaxRate, o.SalesTaxRate)
	setFloat(&in.TTL, o.TTL)
	setFloat(&in.Frontend, o.Frontend)
	setFloat(&in.Backend, o.Backend)
	setFloat(&in.OtherMonthlyDebt, o.OtherMonthlyDebt)
}

func setFloat(dst *float64, value *float64) {
	if value != nil {
		*dst = *value
	}
}

// ActiveScenarios returns the scenarios marked active, in configuration order.
func (c *Configuration) ActiveScenarios() []Scenario {
	var active []Scenario
	for _, scenario := range c.Scenarios {
		if scenario.Active {
			active = append(active, scenario)
		}
	}
	return active
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		warnings = append(warnings, err.Error())
	}

	seen := make(map[string]struct{}, len(c.Scenarios))
	activeCount := 0
	for _, scenario := range c.Scenarios {
		label := fmt.Sprintf("Scenario '%s'", scenario.Name)
		if _, dup := seen[scenario.Name]; dup {
			warnings = append(warnings, fmt.Sprintf("%s is defined more than once", label))
		}
		seen[scenario.Name] = struct{}{}

		if !scenario.Active {
			continue
		}
		activeCount++

		existing := c.Deal.ExistingLoans.Len()
		for _, index := range scenario.RemoveExistingLoans {
			if index < 0 || index >= existing {
				warnings = append(warnings, fmt.Sprintf("%s removes existing loan %d but the deal has %d",
					label, index, existing))
			}
		}

		warnings = append(warnings, validation.ValidateDeal(label, scenario.Resolve(c.Deal))...)
	}

	if activeCount == 0 {
		warnings = append(warnings, "No active scenarios are configured")
	}

	return warnings
}
