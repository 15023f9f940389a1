// Package constants provides shared constants for the rehash-tool application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Calculation variants
const (
	// VariantDealer finances price, tax, fees and trade-in equity and grades the deal.
	VariantDealer = "dealer"

	// VariantPortfolio finances price less down payment and weighs existing debt.
	VariantPortfolio = "portfolio"
)

// DealerTerms lists the loan terms (months) offered by the dealer worksheet.
var DealerTerms = []int{36, 48, 54, 60, 66, 72, 75, 84}

// PortfolioTerms lists the loan terms (months) offered by the portfolio worksheet.
var PortfolioTerms = []int{36, 48, 60, 72}

// MaxScheduleMonths caps the amortization schedule horizon (100 years).
const MaxScheduleMonths = 1200

// Scoring and classification thresholds
const (
	// MaxScore is the upper bound of the financeability score
	MaxScore = 100.0

	// PTIComfortLimit is the PTI percent above which the dealer score is penalized
	// and the PTI band leaves "good".
	PTIComfortLimit = 15.0

	// PTICautionLimit is the PTI percent at which the PTI band becomes "risk".
	PTICautionLimit = 20.0

	// PTIPenaltyPerPoint is subtracted from the dealer score per PTI point over the comfort limit.
	PTIPenaltyPerPoint = 2.0

	// NegativeEquityPenaltyDivisor converts negative trade equity dollars into score points.
	NegativeEquityPenaltyDivisor = 100.0

	// ProductLoadLimit is the frontend+backend total above which the dealer score is penalized.
	ProductLoadLimit = 2000.0

	// ProductLoadPenalty is the dealer score penalty for heavy product load.
	ProductLoadPenalty = 5.0

	// PriceCautionLimit is the price-over-book difference at which the price band becomes "risk".
	PriceCautionLimit = 2000.0

	// PTIScoreCutoff is the PTI percent at or above which the portfolio PTI sub-score is zero.
	PTIScoreCutoff = 30.0

	// PTIScoreSlope is the portfolio PTI sub-score points lost per PTI point.
	PTIScoreSlope = 4.0

	// PTIScoreWeight and EquityScoreWeight blend the portfolio sub-scores.
	PTIScoreWeight    = 0.5
	EquityScoreWeight = 0.5

	// ScoreGoodLimit and ScoreCautionLimit classify the portfolio score band (exclusive).
	ScoreGoodLimit    = 80.0
	ScoreCautionLimit = 60.0

	// TargetPTIShare is the share of income targeted when suggesting a down payment.
	TargetPTIShare = 0.15
)

// Bands classify a metric for color coding.
const (
	BandGood    = "good"
	BandCaution = "caution"
	BandRisk    = "risk"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultScenarioName names the implicit scenario used when none are configured
	DefaultScenarioName = "base"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
