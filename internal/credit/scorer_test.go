package credit

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(revenue, debt, mcap float64) FinancialSnapshot {
	return NewFinancialSnapshot("TEST.NS", "Test Co", revenue, debt, mcap, "", "INR")
}

func TestComputeCreditAssessment_ReferenceExample(t *testing.T) {
	a := ComputeCreditAssessment(snapshot(100000, 20000, 500000), SentimentResult{Adjustment: 10, Label: SentimentPositive, HeadlineCount: 3})

	ratio, ok := a.DebtToRevenueRatio.Value()
	require.True(t, ok)
	assert.InDelta(t, 0.2, ratio, 1e-9)
	assert.Equal(t, 15, a.Contribution(ComponentDebtRatio), "0.2 falls in the [0.2, 0.4) band")
	assert.Equal(t, 0, a.Contribution(ComponentMarketCap))
	assert.Equal(t, 10, a.Contribution(ComponentSentiment))
	assert.Equal(t, 75, a.Score)
	assert.Equal(t, RatingAA, a.Rating)
}

func TestComputeCreditAssessment_AllZero(t *testing.T) {
	a := ComputeCreditAssessment(snapshot(0, 0, 0), ScoreSentiment(nil))

	assert.Equal(t, 50, a.Score)
	assert.Equal(t, RatingBB, a.Rating)
	assert.Equal(t, 0, a.Contribution(ComponentDebtRatio))
	assert.Equal(t, 0, a.Contribution(ComponentMarketCap))
	_, ok := a.DebtToRevenueRatio.Value()
	assert.False(t, ok)
	assert.Equal(t, "N/A", a.DebtToRevenueRatio.String())
}

func TestComputeCreditAssessment_ZeroRevenueIgnoresDebt(t *testing.T) {
	a := ComputeCreditAssessment(snapshot(0, 1e12, 0), SentimentResult{})
	assert.Equal(t, 0, a.Contribution(ComponentDebtRatio))
	_, ok := a.DebtToRevenueRatio.Value()
	assert.False(t, ok)
}

func TestComputeCreditAssessment_ExtremeLeverage(t *testing.T) {
	a := ComputeCreditAssessment(snapshot(100, 1500, 0), SentimentResult{})
	assert.Equal(t, -25, a.Contribution(ComponentDebtRatio))
	assert.Equal(t, 25, a.Score)
	assert.Equal(t, RatingC, a.Rating)
}

func TestDebtPoints_Bands(t *testing.T) {
	b := DefaultBands()
	tests := []struct {
		ratio float64
		want  int
	}{
		{0, 25},
		{0.19, 25},
		{0.2, 15},
		{0.39, 15},
		{0.4, 5},
		{0.6, -5},
		{0.8, -15},
		{0.99, -15},
		{1.0, -25},
		{42, -25},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.DebtPoints(DefinedRatio(tt.ratio)), "ratio %v", tt.ratio)
	}
	assert.Equal(t, 0, b.DebtPoints(RatioOf(10, 0)))
}

func TestCapPoints_Bands(t *testing.T) {
	b := DefaultBands()
	tests := []struct {
		billions float64
		want     int
	}{
		{0, 0},
		{9.99, 0},
		{10, 5},
		{50, 10},
		{100, 15},
		{499, 15},
		{500, 20},
		{20000, 20},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.CapPoints(tt.billions), "cap %v", tt.billions)
	}
}

func TestCompute_ConvertsUSDMarketCap(t *testing.T) {
	s := NewFinancialSnapshot("X.NS", "X", 0, 0, 2e9, "", "usd")
	a := ComputeCreditAssessment(s, SentimentResult{})

	assert.InDelta(t, 166.0, a.MarketCapINRBillions, 1e-9)
	assert.Equal(t, 15, a.Contribution(ComponentMarketCap))
}

func TestCompute_ScoreIsClamped(t *testing.T) {
	s, err := NewScorer(DefaultBands())
	require.NoError(t, err)

	high := s.Compute(snapshot(1000, 0, 1e13), SentimentResult{Adjustment: 25})
	assert.Equal(t, 120, high.RawScore)
	assert.Equal(t, 100, high.Score)
	assert.Equal(t, RatingAAA, high.Rating)

	low := s.Compute(snapshot(1, 100, 0), SentimentResult{Adjustment: -40})
	assert.Equal(t, -25, low.Contribution(ComponentSentiment))
	assert.Equal(t, 0, low.RawScore)
	assert.Equal(t, 0, low.Score)
}

func TestCompute_SanitizesLiteralSnapshots(t *testing.T) {
	s := FinancialSnapshot{Symbol: "BAD.NS", TotalRevenue: math.NaN(), TotalDebt: math.Inf(1), MarketCap: -5}
	a := ComputeCreditAssessment(s, SentimentResult{})
	assert.Equal(t, 50, a.Score)
	_, ok := a.DebtToRevenueRatio.Value()
	assert.False(t, ok)
}

func TestCompute_Idempotent(t *testing.T) {
	s := snapshot(5e11, 2e11, 3e12)
	sent := SentimentResult{Adjustment: -5, Label: SentimentNegative, HeadlineCount: 5}
	assert.Equal(t, ComputeCreditAssessment(s, sent), ComputeCreditAssessment(s, sent))
}

func TestRatingFor_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  Rating
	}{
		{100, RatingAAA},
		{85, RatingAAA},
		{84, RatingAA},
		{75, RatingAA},
		{74, RatingA},
		{65, RatingA},
		{64, RatingBBB},
		{55, RatingBBB},
		{54, RatingBB},
		{45, RatingBB},
		{44, RatingB},
		{35, RatingB},
		{34, RatingC},
		{0, RatingC},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RatingFor(tt.score), "score %d", tt.score)
	}
}

func TestBandsValidate(t *testing.T) {
	require.NoError(t, DefaultBands().Validate())

	tests := []struct {
		name   string
		mutate func(*Bands)
	}{
		{"too few debt bands", func(b *Bands) { b.Debt = b.Debt[:3] }},
		{"unordered debt bands", func(b *Bands) { b.Debt[1].UpTo = 0.1 }},
		{"increasing debt points", func(b *Bands) { b.Debt[2].Points = 20 }},
		{"debt points out of range", func(b *Bands) { b.Debt[0].Points = 30 }},
		{"floor above last band", func(b *Bands) { b.DebtFloor = 0 }},
		{"unordered cap bands", func(b *Bands) { b.MarketCap[1].AtLeast = 600 }},
		{"cap points out of range", func(b *Bands) { b.MarketCap[0].Points = 21 }},
		{"bad fx rate", func(b *Bands) { b.FXToINR["USD"] = 0 }},
		{"duplicate fx code", func(b *Bands) { b.FXToINR["usd"] = 80 }},
		{"blank fx code", func(b *Bands) { b.FXToINR[" "] = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := DefaultBands()
			tt.mutate(&b)
			assert.Error(t, b.Validate())
			_, err := NewScorer(b)
			assert.Error(t, err)
		})
	}
}

func TestNewScorer_LowercaseFXCodes(t *testing.T) {
	b := DefaultBands()
	b.FXToINR = map[string]float64{"inr": 1, " usd ": 83}

	sc, err := NewScorer(b)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"INR": 1, "USD": 83}, sc.Bands().FXToINR)
	assert.Equal(t, map[string]float64{"inr": 1, " usd ": 83}, b.FXToINR, "caller's table untouched")

	// $2B is 166 INR billions: +15, where unconverted it would score 0.
	a := sc.Compute(NewFinancialSnapshot("X.NS", "X", 0, 0, 2e9, "", "USD"), SentimentResult{})
	assert.Equal(t, 15, a.Contribution(ComponentMarketCap))
}

func TestDebtRatioJSON(t *testing.T) {
	data, err := json.Marshal(CreditAssessment{DebtToRevenueRatio: RatioOf(1, 0)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"debt_to_revenue_ratio":null`)

	data, err = json.Marshal(DefinedRatio(0.25))
	require.NoError(t, err)
	assert.Equal(t, "0.25", string(data))

	var r DebtRatio
	require.NoError(t, json.Unmarshal([]byte("0.5"), &r))
	v, ok := r.Value()
	assert.True(t, ok)
	assert.Equal(t, 0.5, v)
}

func TestNewFinancialSnapshot_Fallbacks(t *testing.T) {
	s := NewFinancialSnapshot("ITC.NS", " ", -1, math.NaN(), 10, "", "")
	assert.Equal(t, "ITC.NS", s.CompanyName)
	assert.Equal(t, "Unknown", s.Sector)
	assert.Equal(t, "INR", s.Currency)
	assert.Zero(t, s.TotalRevenue)
	assert.Zero(t, s.TotalDebt)
	assert.Equal(t, 10.0, s.MarketCap)
}
