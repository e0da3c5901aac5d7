package credit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreSentiment_Empty(t *testing.T) {
	got := ScoreSentiment(nil)
	assert.Equal(t, SentimentResult{Adjustment: 0, Label: SentimentNoData, HeadlineCount: 0}, got)

	got = ScoreSentiment([]string{})
	assert.Equal(t, SentimentNoData, got.Label)
}

func TestScoreSentiment_Labels(t *testing.T) {
	tests := []struct {
		name      string
		headlines []string
		wantAdj   int
		wantLabel SentimentLabel
	}{
		{
			name:      "single positive hit",
			headlines: []string{"Reliance posts record quarter"},
			wantAdj:   5,
			wantLabel: SentimentPositive,
		},
		{
			name:      "single negative hit",
			headlines: []string{"Regulator opens investigation into lender"},
			wantAdj:   -5,
			wantLabel: SentimentNegative,
		},
		{
			name:      "balanced",
			headlines: []string{"Profit up but debt concern remains"},
			wantAdj:   0,
			wantLabel: SentimentNeutral,
		},
		{
			name:      "no keywords",
			headlines: []string{"Board meeting scheduled for Tuesday"},
			wantAdj:   0,
			wantLabel: SentimentNeutral,
		},
		{
			name:      "inflections count",
			headlines: []string{"Profits jump as margins rise", "Analysts upgraded the stock"},
			wantAdj:   15,
			wantLabel: SentimentPositive,
		},
		{
			name:      "saturates at the bound",
			headlines: []string{"Fraud scam crash lawsuit crisis scandal", "Losses and layoffs deepen the slump"},
			wantAdj:   -25,
			wantLabel: SentimentNegative,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreSentiment(tt.headlines)
			assert.Equal(t, tt.wantAdj, got.Adjustment)
			assert.Equal(t, tt.wantLabel, got.Label)
			assert.Equal(t, len(tt.headlines), got.HeadlineCount)
		})
	}
}

func TestScoreSentiment_RepeatedOccurrences(t *testing.T) {
	got := ScoreSentiment([]string{"growth, growth and more growth"})
	assert.Equal(t, 3.0, got.PositiveHits)
	assert.Equal(t, 15, got.Adjustment)
}

func TestScoreSentiment_MalformedHeadlines(t *testing.T) {
	got := ScoreSentiment([]string{"", "\xff\xfe", "   ", "strong"})
	assert.Equal(t, 4, got.HeadlineCount)
	assert.Equal(t, 5, got.Adjustment)
}

func TestScoreSentiment_MonotoneInPositiveHits(t *testing.T) {
	base := []string{"crash and lawsuit hit shares"}
	prev := ScoreSentiment(base).Adjustment
	headlines := append([]string{}, base...)
	for i := 0; i < 10; i++ {
		headlines = append(headlines, "strong growth")
		next := ScoreSentiment(headlines).Adjustment
		assert.GreaterOrEqual(t, next, prev)
		prev = next
	}
	assert.Equal(t, MaxSentimentAdjustment, prev)
}

func TestScoreSentiment_Deterministic(t *testing.T) {
	h := []string{"ICICI Bank profit surges on robust loan growth", "Concern over rising bad loans"}
	assert.Equal(t, ScoreSentiment(h), ScoreSentiment(h))
}

func TestSentimentScorer_CustomLexicon(t *testing.T) {
	lex := Lexicon{
		Positive:       map[string]float64{"order win": 2},
		Negative:       map[string]float64{"default": 3},
		Scale:          2,
		LabelThreshold: 3,
	}
	s, err := NewSentimentScorer(lex)
	require.NoError(t, err)

	got := s.Score([]string{"Company bags large order wins in Gujarat"})
	assert.Equal(t, 4, got.Adjustment)
	assert.Equal(t, SentimentPositive, got.Label)

	got = s.Score([]string{"Order book grew", "Subsidiary defaults on bond"})
	assert.Equal(t, -6, got.Adjustment)
	assert.Equal(t, SentimentNegative, got.Label)
}

func TestLexiconValidate(t *testing.T) {
	require.NoError(t, DefaultLexicon().Validate())

	bad := []Lexicon{
		{},
		{Positive: map[string]float64{"up": 1}, Scale: 0, LabelThreshold: 4},
		{Positive: map[string]float64{"up": 1}, Scale: 5, LabelThreshold: 0},
		{Positive: map[string]float64{"up": 1}, Scale: 5, LabelThreshold: 25},
		{Positive: map[string]float64{"up": -1}, Scale: 5, LabelThreshold: 4},
		{Negative: map[string]float64{"--": 1}, Scale: 5, LabelThreshold: 4},
	}
	for i, lex := range bad {
		assert.Error(t, lex.Validate(), "case %d", i)
	}
}
