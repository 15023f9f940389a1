// Package optimizer searches a single deal field for the smallest value that
// brings a scenario's payment-to-income ratio under a target.
package optimizer

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/iwvelando/rehash-tool/internal/config"
	"github.com/iwvelando/rehash-tool/internal/worksheet"
	"github.com/iwvelando/rehash-tool/pkg/format"
	"github.com/iwvelando/rehash-tool/pkg/optimization"
	"github.com/iwvelando/rehash-tool/pkg/rehash"
)

const ptiEpsilon = 1e-9

type Runner struct {
	logger *zap.Logger
	conf   *config.Configuration
}

type scenarioTarget struct {
	scenarioIndex int
	scenarioName  string
	cfg           *config.OptimizerConfig
	base          rehash.Inputs
}

type evaluation struct {
	value  float64
	pti    float64
	target float64
}

func (e evaluation) feasible() bool {
	return e.pti <= e.target+ptiEpsilon
}

func (e evaluation) headroom() float64 {
	return e.target - e.pti
}

// Result summarizes optimizer adjustments keyed by scenario name.
type Result struct {
	Summaries map[string][]optimization.Summary
}

// Empty indicates whether any optimizer adjustments were produced.
func (r Result) Empty() bool {
	return len(r.Summaries) == 0
}

// Apply attaches optimizer summaries to the provided worksheets.
func (r Result) Apply(worksheets []worksheet.Worksheet) {
	if len(r.Summaries) == 0 {
		return
	}
	for i := range worksheets {
		summaries, ok := r.Summaries[worksheets[i].Name]
		if !ok {
			continue
		}
		worksheets[i].Optimizations = append(worksheets[i].Optimizations, summaries...)
	}
}

// NewRunner constructs a Runner for the provided configuration.
func NewRunner(logger *zap.Logger, conf *config.Configuration) (*Runner, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger, conf: conf}, nil
}

// Run executes all optimizer directives and mutates the scenario overrides in
// place so that worksheets computed afterwards reflect the optimized values.
func (r *Runner) Run() (*Result, error) {
	targets, err := r.collectTargets()
	if err != nil {
		return nil, err
	}

	summaries := make(map[string][]optimization.Summary)
	for _, target := range targets {
		var summary optimization.Summary
		switch target.cfg.Field {
		case config.OptimizerFieldDownPayment:
			summary = r.optimizeDownPayment(target)
		case config.OptimizerFieldTerm:
			summary, err = r.optimizeTerm(target)
			if err != nil {
				return nil, fmt.Errorf("scenario %s: %w", target.scenarioName, err)
			}
		default:
			return nil, fmt.Errorf("scenario %s: optimizer field %q is not supported", target.scenarioName, target.cfg.Field)
		}

		r.setScenarioValue(target, summary.Value)
		summaries[target.scenarioName] = append(summaries[target.scenarioName], summary)

		r.logger.Info("optimizer adjusted deal field",
			zap.String("op", "optimizer.Run"),
			zap.String("scenario", target.scenarioName),
			zap.String("field", summary.Field),
			zap.Float64("originalNumeric", summary.Original),
			zap.String("originalDisplay", summary.OriginalDisplay),
			zap.Float64("optimizedNumeric", summary.Value),
			zap.String("optimizedDisplay", summary.ValueDisplay),
			zap.Float64("targetPTI", summary.TargetPTI),
			zap.Float64("resultPTI", summary.ResultPTI),
			zap.Int("iterations", summary.Iterations),
			zap.Bool("converged", summary.Converged),
		)
	}

	return &Result{Summaries: summaries}, nil
}

func (r *Runner) collectTargets() ([]scenarioTarget, error) {
	var targets []scenarioTarget

	for i := range r.conf.Scenarios {
		scenario := &r.conf.Scenarios[i]
		if !scenario.Active || scenario.Optimizer == nil {
			continue
		}
		if err := scenario.Optimizer.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		targets = append(targets, scenarioTarget{
			scenarioIndex: i,
			scenarioName:  scenario.Name,
			cfg:           scenario.Optimizer,
			base:          scenario.Resolve(r.conf.Deal),
		})
	}

	return targets, nil
}

// optimizeDownPayment bisects for the least down payment meeting the target.
// PTI never increases as the down payment grows.
func (r *Runner) optimizeDownPayment(target scenarioTarget) optimization.Summary {
	cfg := target.cfg
	minVal, maxVal := *cfg.Min, *cfg.Max

	original := r.evaluateDownPayment(target, target.base.DownPayment)
	lowerEval := r.evaluateDownPayment(target, minVal)
	upperEval := r.evaluateDownPayment(target, maxVal)

	summary := newSummary(target, config.OptimizerFieldDownPayment, original, format.Currency)

	if lowerEval.feasible() {
		finishSummary(&summary, lowerEval, 0, format.Currency)
		summary.Notes = []string{"minimum down payment already meets the target"}
		return summary
	}

	if !upperEval.feasible() {
		finishSummary(&summary, upperEval, 0, format.Currency)
		summary.Notes = []string{fmt.Sprintf(
			"unable to reach PTI %s within bounds %s to %s",
			format.Percent(cfg.TargetPTI), format.Currency(minVal), format.Currency(maxVal),
		)}
		return summary
	}

	iterations := 0
	lower, upper := minVal, maxVal
	for iterations < cfg.MaxIterations && upper-lower > cfg.Tolerance {
		mid := lower + (upper-lower)/2
		iterations++
		if r.evaluateDownPayment(target, mid).feasible() {
			upper = mid
		} else {
			lower = mid
		}
	}

	value := math.Min(math.Ceil(upper*100)/100, maxVal)
	finishSummary(&summary, r.evaluateDownPayment(target, value), iterations, format.Currency)
	return summary
}

// optimizeTerm walks the variant's term menu from shortest to longest and
// picks the first term meeting the target.
func (r *Runner) optimizeTerm(target scenarioTarget) (optimization.Summary, error) {
	cfg := target.cfg
	variant, _ := rehash.ParseVariant(string(target.base.Variant))
	lo, hi := cfg.TermBounds()

	var menu []int
	for _, term := range variant.Terms() {
		if term >= lo && term <= hi {
			menu = append(menu, term)
		}
	}
	if len(menu) == 0 {
		return optimization.Summary{}, fmt.Errorf("no %s menu terms within bounds %d to %d", variant, lo, hi)
	}

	original := r.evaluateTerm(target, target.base.Term)
	summary := newSummary(target, config.OptimizerFieldTerm, original, formatTerm)

	var best evaluation
	for i, term := range menu {
		eval := r.evaluateTerm(target, term)
		if eval.feasible() {
			finishSummary(&summary, eval, i+1, formatTerm)
			return summary, nil
		}
		if i == 0 || eval.pti < best.pti {
			best = eval
		}
	}

	finishSummary(&summary, best, len(menu), formatTerm)
	summary.Notes = []string{fmt.Sprintf(
		"unable to reach PTI %s with %s terms %d to %d months",
		format.Percent(cfg.TargetPTI), variant, menu[0], menu[len(menu)-1],
	)}
	return summary, nil
}

func (r *Runner) evaluateDownPayment(target scenarioTarget, value float64) evaluation {
	in := target.base.Clone()
	in.DownPayment = value
	return evaluate(in, value, target.cfg.TargetPTI)
}

func (r *Runner) evaluateTerm(target scenarioTarget, term int) evaluation {
	in := target.base.Clone()
	in.Term = term
	return evaluate(in, float64(term), target.cfg.TargetPTI)
}

func evaluate(in rehash.Inputs, value, targetPTI float64) evaluation {
	out := rehash.Calculate(in)
	return evaluation{value: value, pti: out.PTI, target: targetPTI}
}

func (r *Runner) setScenarioValue(target scenarioTarget, value float64) {
	overrides := &r.conf.Scenarios[target.scenarioIndex].Overrides
	switch target.cfg.Field {
	case config.OptimizerFieldDownPayment:
		v := value
		overrides.DownPayment = &v
	case config.OptimizerFieldTerm:
		term := int(value)
		overrides.Term = &term
	}
}

func newSummary(target scenarioTarget, field string, original evaluation, display func(float64) string) optimization.Summary {
	return optimization.Summary{
		Scope:           "scenario",
		TargetName:      target.scenarioName,
		Field:           field,
		Original:        original.value,
		OriginalDisplay: display(original.value),
		OriginalPTI:     original.pti,
		TargetPTI:       target.cfg.TargetPTI,
	}
}

func finishSummary(summary *optimization.Summary, final evaluation, iterations int, display func(float64) string) {
	summary.Value = final.value
	summary.ValueDisplay = display(final.value)
	summary.ResultPTI = final.pti
	summary.Headroom = final.headroom()
	summary.Iterations = iterations
	summary.Converged = final.feasible()
}

func formatTerm(months float64) string {
	return fmt.Sprintf("%d months", int(months))
}
