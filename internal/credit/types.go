package credit

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FinancialSnapshot is the balance-sheet view of one company used for scoring.
// Monetary fields are in the reported currency; a missing figure is 0.
type FinancialSnapshot struct {
	Symbol       string  `json:"symbol"`
	CompanyName  string  `json:"company_name"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalDebt    float64 `json:"total_debt"`
	MarketCap    float64 `json:"market_cap"`
	Sector       string  `json:"sector"`
	Currency     string  `json:"currency"`
}

// NewFinancialSnapshot builds a snapshot, mapping non-finite or negative
// figures to 0 and filling the name, sector and currency fallbacks.
func NewFinancialSnapshot(symbol, companyName string, revenue, debt, marketCap float64, sector, currency string) FinancialSnapshot {
	s := FinancialSnapshot{
		Symbol:       symbol,
		CompanyName:  strings.TrimSpace(companyName),
		TotalRevenue: sanitize(revenue),
		TotalDebt:    sanitize(debt),
		MarketCap:    sanitize(marketCap),
		Sector:       strings.TrimSpace(sector),
		Currency:     strings.ToUpper(strings.TrimSpace(currency)),
	}
	if s.CompanyName == "" {
		s.CompanyName = symbol
	}
	if s.Sector == "" {
		s.Sector = "Unknown"
	}
	if s.Currency == "" {
		s.Currency = "INR"
	}
	return s
}

// Normalized reapplies the snapshot invariants, for values built as literals.
func (s FinancialSnapshot) Normalized() FinancialSnapshot {
	return NewFinancialSnapshot(s.Symbol, s.CompanyName, s.TotalRevenue, s.TotalDebt, s.MarketCap, s.Sector, s.Currency)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// SentimentLabel is the coarse reading of a headline batch.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNeutral  SentimentLabel = "Neutral"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNoData   SentimentLabel = "No Data"
)

// SentimentResult is the outcome of scoring a batch of headlines.
type SentimentResult struct {
	Adjustment    int            `json:"adjustment"`
	Label         SentimentLabel `json:"label"`
	HeadlineCount int            `json:"headline_count"`
	PositiveHits  float64        `json:"positive_hits"`
	NegativeHits  float64        `json:"negative_hits"`
}

// Rating is a letter grade derived from the final score.
type Rating string

const (
	RatingAAA Rating = "AAA"
	RatingAA  Rating = "AA"
	RatingA   Rating = "A"
	RatingBBB Rating = "BBB"
	RatingBB  Rating = "BB"
	RatingB   Rating = "B"
	RatingC   Rating = "C"
)

// Description returns the plain-language grade of the rating.
func (r Rating) Description() string {
	switch r {
	case RatingAAA:
		return "Excellent"
	case RatingAA:
		return "Very Good"
	case RatingA:
		return "Good"
	case RatingBBB:
		return "Fair"
	case RatingBB:
		return "Below Average"
	case RatingB:
		return "Poor"
	case RatingC:
		return "High Risk"
	default:
		return "Unknown"
	}
}

// Component names one additive part of the credit score.
type Component string

const (
	ComponentBase      Component = "base"
	ComponentDebtRatio Component = "debt_ratio"
	ComponentMarketCap Component = "market_cap"
	ComponentSentiment Component = "sentiment"
)

// Components lists the score components in display order.
var Components = []Component{ComponentBase, ComponentDebtRatio, ComponentMarketCap, ComponentSentiment}

// DebtRatio is a debt-to-revenue ratio that is undefined when revenue is 0.
type DebtRatio struct {
	value   float64
	defined bool
}

// RatioOf returns debt/revenue, or the undefined ratio when revenue is 0.
func RatioOf(debt, revenue float64) DebtRatio {
	if revenue <= 0 {
		return DebtRatio{}
	}
	return DebtRatio{value: debt / revenue, defined: true}
}

// DefinedRatio wraps a known ratio value.
func DefinedRatio(v float64) DebtRatio {
	return DebtRatio{value: v, defined: true}
}

// Value returns the ratio and whether it is defined.
func (r DebtRatio) Value() (float64, bool) {
	return r.value, r.defined
}

func (r DebtRatio) String() string {
	if !r.defined {
		return "N/A"
	}
	return strconv.FormatFloat(r.value, 'f', 2, 64)
}

func (r DebtRatio) MarshalJSON() ([]byte, error) {
	if !r.defined {
		return []byte("null"), nil
	}
	return json.Marshal(math.Round(r.value*1000) / 1000)
}

func (r *DebtRatio) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = DebtRatio{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = DefinedRatio(v)
	return nil
}

// CreditAssessment is the scored result for one snapshot. Breakdown holds
// each component before clamping; Score is RawScore clamped to [0, 100].
type CreditAssessment struct {
	Score                int               `json:"score"`
	Rating               Rating            `json:"rating"`
	RawScore             int               `json:"raw_score"`
	Breakdown            map[Component]int `json:"breakdown"`
	DebtToRevenueRatio   DebtRatio         `json:"debt_to_revenue_ratio"`
	MarketCapINRBillions float64           `json:"market_cap_inr_billions"`
}

// Contribution returns the points a component added to the raw score.
func (a CreditAssessment) Contribution(c Component) int {
	return a.Breakdown[c]
}
