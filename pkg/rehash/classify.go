package rehash

import (
	"github.com/iwvelando/rehash-tool/pkg/constants"
	"github.com/iwvelando/rehash-tool/pkg/mathutil"
)

// Grade maps a financeability score to a letter grade.
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// PTIBand classifies a payment-to-income percent.
func PTIBand(pti float64) string {
	switch {
	case pti < constants.PTIComfortLimit:
		return constants.BandGood
	case pti < constants.PTICautionLimit:
		return constants.BandCaution
	default:
		return constants.BandRisk
	}
}

// PriceBand classifies how far the sales price sits above book value.
func PriceBand(difference float64) string {
	switch {
	case difference <= 0:
		return constants.BandGood
	case difference < constants.PriceCautionLimit:
		return constants.BandCaution
	default:
		return constants.BandRisk
	}
}

// ScoreBand classifies a financeability score.
func ScoreBand(score float64) string {
	switch {
	case score > constants.ScoreGoodLimit:
		return constants.BandGood
	case score > constants.ScoreCautionLimit:
		return constants.BandCaution
	default:
		return constants.BandRisk
	}
}

// Point is a single labelled chart value.
type Point struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Series holds the chart data a presentation layer draws for one calculation.
type Series struct {
	PTIGauge        []Point `json:"ptiGauge"`
	PriceComparison []Point `json:"priceComparison"`
	DownPayment     []Point `json:"downPayment,omitempty"`
}

// BuildSeries returns chart data for in and its calculated outputs.
func BuildSeries(in Inputs, out Outputs) Series {
	used := mathutil.Clamp(out.PTI, 0, constants.PercentageMultiplier)
	series := Series{
		PTIGauge: []Point{
			{Name: "Used", Value: used},
			{Name: "Remaining", Value: constants.PercentageMultiplier - used},
		},
		PriceComparison: []Point{
			{Name: "Sales Price", Value: mathutil.Finite(in.SalesPrice)},
			{Name: "Book Value", Value: mathutil.Finite(in.BookValue)},
		},
	}
	if out.Variant == Dealer {
		series.DownPayment = []Point{
			{Name: "Current Down", Value: mathutil.Finite(in.DownPayment)},
			{Name: "Suggested Down", Value: out.SuggestedDown},
		}
	}
	return series
}
