// Package worksheet defines the data structures related to a computed deal
// worksheet and includes functions for computing them from configuration.
package worksheet

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/iwvelando/rehash-tool/internal/config"
	"github.com/iwvelando/rehash-tool/pkg/loans"
	"github.com/iwvelando/rehash-tool/pkg/optimization"
	"github.com/iwvelando/rehash-tool/pkg/rehash"
)

// Worksheet holds all information related to one resolved scenario.
type Worksheet struct {
	Name          string                 `json:"name"`
	Inputs        rehash.Inputs          `json:"inputs"`
	Outputs       rehash.Outputs         `json:"outputs"`
	Series        rehash.Series          `json:"series"`
	Schedule      []loans.Payment        `json:"schedule,omitempty"`
	Summary       loans.ScheduleSummary  `json:"summary"`
	Terms         []loans.TermOption     `json:"terms"`
	Optimizations []optimization.Summary `json:"optimizations,omitempty"`
}

// GetWorksheets computes a Worksheet for every active scenario.
func GetWorksheets(logger *zap.Logger, conf config.Configuration) ([]Worksheet, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	generator := loans.NewAmortizationScheduleGenerator(logger)

	var results []Worksheet
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "worksheet.GetWorksheets"),
			)
			continue
		}

		results = append(results, Compute(logger, generator, scenario.Name, scenario.Resolve(conf.Deal)))
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("no active scenarios to compute")
	}

	return results, nil
}

// Compute builds a single worksheet from resolved inputs. A schedule that
// cannot be generated is left empty; the calculator outputs still stand.
func Compute(logger *zap.Logger, generator *loans.AmortizationScheduleGenerator, name string, in rehash.Inputs) Worksheet {
	if logger == nil {
		logger = zap.NewNop()
	}
	if generator == nil {
		generator = loans.NewAmortizationScheduleGenerator(logger)
	}

	out := rehash.Calculate(in)
	result := Worksheet{
		Name:    name,
		Inputs:  in,
		Outputs: out,
		Series:  rehash.BuildSeries(in, out),
		Terms:   loans.CompareTerms(out.LoanAmount, in.Rate, out.Variant.Terms()),
	}

	schedule, err := generator.GenerateSchedule(out.LoanAmount, in.Rate, in.Term)
	if err != nil {
		logger.Debug("amortization schedule unavailable",
			zap.String("op", "worksheet.Compute"),
			zap.String("scenario", name),
			zap.Error(err),
		)
		return result
	}

	result.Schedule = schedule
	result.Summary = loans.Summarize(schedule)
	return result
}
