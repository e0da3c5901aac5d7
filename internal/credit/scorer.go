package credit

import (
	"fmt"
	"math"
	"strings"
)

const (
	BaseScore = 50
	MinScore  = 0
	MaxScore  = 100

	maxDebtPoints = 25
	maxCapPoints  = 20
)

// DebtBand awards Points when the debt-to-revenue ratio is below UpTo.
type DebtBand struct {
	UpTo   float64 `yaml:"up_to" json:"up_to"`
	Points int     `yaml:"points" json:"points"`
}

// CapBand awards Points when market cap in INR billions is at least AtLeast.
type CapBand struct {
	AtLeast float64 `yaml:"at_least" json:"at_least"`
	Points  int     `yaml:"points" json:"points"`
}

// Bands is the scoring table for the balance-sheet components.
type Bands struct {
	// Debt bands in increasing UpTo order; ratios past the last band get DebtFloor.
	Debt      []DebtBand `yaml:"debt" json:"debt"`
	DebtFloor int        `yaml:"debt_floor" json:"debt_floor"`
	// Cap bands in decreasing AtLeast order; smaller caps get CapFloor.
	MarketCap []CapBand `yaml:"market_cap" json:"market_cap"`
	CapFloor  int       `yaml:"cap_floor" json:"cap_floor"`
	// FXToINR converts a reported currency to rupees; unknown codes count as INR.
	FXToINR map[string]float64 `yaml:"fx_to_inr" json:"fx_to_inr"`
}

// DefaultBands returns the standard scoring table.
func DefaultBands() Bands {
	return Bands{
		Debt: []DebtBand{
			{UpTo: 0.2, Points: 25},
			{UpTo: 0.4, Points: 15},
			{UpTo: 0.6, Points: 5},
			{UpTo: 0.8, Points: -5},
			{UpTo: 1.0, Points: -15},
		},
		DebtFloor: -25,
		MarketCap: []CapBand{
			{AtLeast: 500, Points: 20},
			{AtLeast: 100, Points: 15},
			{AtLeast: 50, Points: 10},
			{AtLeast: 10, Points: 5},
		},
		CapFloor: 0,
		FXToINR:  map[string]float64{"INR": 1, "USD": 83},
	}
}

// Validate checks the bands are ordered, monotone and within component bounds.
func (b Bands) Validate() error {
	if len(b.Debt) < 4 {
		return fmt.Errorf("need at least 4 debt bands, got %d", len(b.Debt))
	}
	for i, band := range b.Debt {
		if !(band.UpTo > 0) || math.IsInf(band.UpTo, 0) {
			return fmt.Errorf("debt band %d: up_to must be positive and finite", i)
		}
		if abs(band.Points) > maxDebtPoints {
			return fmt.Errorf("debt band %d: points %d outside ±%d", i, band.Points, maxDebtPoints)
		}
		if i > 0 {
			prev := b.Debt[i-1]
			if band.UpTo <= prev.UpTo {
				return fmt.Errorf("debt band %d: up_to must increase", i)
			}
			if band.Points > prev.Points {
				return fmt.Errorf("debt band %d: points must not increase with leverage", i)
			}
		}
	}
	if abs(b.DebtFloor) > maxDebtPoints || b.DebtFloor > b.Debt[len(b.Debt)-1].Points {
		return fmt.Errorf("debt floor %d must be within ±%d and not above the last band", b.DebtFloor, maxDebtPoints)
	}

	for i, band := range b.MarketCap {
		if band.AtLeast < 0 || math.IsNaN(band.AtLeast) || math.IsInf(band.AtLeast, 0) {
			return fmt.Errorf("market cap band %d: at_least must be a finite non-negative number", i)
		}
		if abs(band.Points) > maxCapPoints {
			return fmt.Errorf("market cap band %d: points %d outside ±%d", i, band.Points, maxCapPoints)
		}
		if i > 0 {
			prev := b.MarketCap[i-1]
			if band.AtLeast >= prev.AtLeast {
				return fmt.Errorf("market cap band %d: at_least must decrease", i)
			}
			if band.Points > prev.Points {
				return fmt.Errorf("market cap band %d: points must not increase for smaller caps", i)
			}
		}
	}
	if abs(b.CapFloor) > maxCapPoints {
		return fmt.Errorf("cap floor %d outside ±%d", b.CapFloor, maxCapPoints)
	}
	if n := len(b.MarketCap); n > 0 && b.CapFloor > b.MarketCap[n-1].Points {
		return fmt.Errorf("cap floor %d is above the smallest band", b.CapFloor)
	}

	seen := make(map[string]string, len(b.FXToINR))
	for code, rate := range b.FXToINR {
		if !(rate > 0) || math.IsInf(rate, 0) {
			return fmt.Errorf("fx rate for %s must be positive", code)
		}
		norm := currencyCode(code)
		if norm == "" {
			return fmt.Errorf("fx rate has an empty currency code")
		}
		if other, dup := seen[norm]; dup {
			return fmt.Errorf("fx rates %q and %q name the same currency", other, code)
		}
		seen[norm] = code
	}
	return nil
}

// Normalized returns a copy with upper-cased currency codes in FXToINR.
func (b Bands) Normalized() Bands {
	if b.FXToINR == nil {
		return b
	}
	fx := make(map[string]float64, len(b.FXToINR))
	for code, rate := range b.FXToINR {
		fx[currencyCode(code)] = rate
	}
	b.FXToINR = fx
	return b
}

func currencyCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// DebtPoints scores a debt-to-revenue ratio. An undefined ratio scores 0.
func (b Bands) DebtPoints(ratio DebtRatio) int {
	v, ok := ratio.Value()
	if !ok {
		return 0
	}
	for _, band := range b.Debt {
		if v < band.UpTo {
			return band.Points
		}
	}
	return b.DebtFloor
}

// CapPoints scores a market capitalisation expressed in INR billions.
func (b Bands) CapPoints(inrBillions float64) int {
	for _, band := range b.MarketCap {
		if inrBillions >= band.AtLeast && inrBillions > 0 {
			return band.Points
		}
	}
	return b.CapFloor
}

// ToINRBillions converts an amount in currency to INR billions.
func (b Bands) ToINRBillions(amount float64, currency string) float64 {
	rate, ok := b.FXToINR[currencyCode(currency)]
	if !ok {
		rate = 1
	}
	return amount * rate / 1e9
}

// RatingFor maps a clamped score to its letter rating.
func RatingFor(score int) Rating {
	switch {
	case score >= 85:
		return RatingAAA
	case score >= 75:
		return RatingAA
	case score >= 65:
		return RatingA
	case score >= 55:
		return RatingBBB
	case score >= 45:
		return RatingBB
	case score >= 35:
		return RatingB
	default:
		return RatingC
	}
}

// Scorer combines a snapshot and a sentiment result into a credit assessment.
type Scorer struct {
	bands Bands
}

// NewScorer returns a scorer for validated bands.
func NewScorer(bands Bands) (*Scorer, error) {
	if err := bands.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring bands: %w", err)
	}
	return &Scorer{bands: bands.Normalized()}, nil
}

var defaultScorer = &Scorer{bands: DefaultBands()}

// ComputeCreditAssessment scores with the default bands.
func ComputeCreditAssessment(snapshot FinancialSnapshot, sentiment SentimentResult) CreditAssessment {
	return defaultScorer.Compute(snapshot, sentiment)
}

// Bands returns the scorer's table.
func (s *Scorer) Bands() Bands {
	return s.bands
}

// Compute never fails: missing figures score 0 and the total is clamped.
func (s *Scorer) Compute(snapshot FinancialSnapshot, sentiment SentimentResult) CreditAssessment {
	snapshot = snapshot.Normalized()

	ratio := RatioOf(snapshot.TotalDebt, snapshot.TotalRevenue)
	capBillions := s.bands.ToINRBillions(snapshot.MarketCap, snapshot.Currency)

	breakdown := map[Component]int{
		ComponentBase:      BaseScore,
		ComponentDebtRatio: s.bands.DebtPoints(ratio),
		ComponentMarketCap: s.bands.CapPoints(capBillions),
		ComponentSentiment: clamp(sentiment.Adjustment, -MaxSentimentAdjustment, MaxSentimentAdjustment),
	}

	raw := 0
	for _, c := range Components {
		raw += breakdown[c]
	}
	score := clamp(raw, MinScore, MaxScore)

	return CreditAssessment{
		Score:                score,
		Rating:               RatingFor(score),
		RawScore:             raw,
		Breakdown:            breakdown,
		DebtToRevenueRatio:   ratio,
		MarketCapINRBillions: capBillions,
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
