package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fin-pulse-engine/internal/credit"
	"fin-pulse-engine/internal/market"
	"fin-pulse-engine/internal/resolver"
	"fin-pulse-engine/internal/types"
)

type fakeSnapshots struct {
	mu      sync.Mutex
	snap    credit.FinancialSnapshot
	err     error
	symbols []string
}

func (f *fakeSnapshots) FetchFinancialSnapshot(_ context.Context, symbol string) (credit.FinancialSnapshot, error) {
	f.mu.Lock()
	f.symbols = append(f.symbols, symbol)
	f.mu.Unlock()
	if f.err != nil {
		return credit.FinancialSnapshot{}, f.err
	}
	s := f.snap
	s.Symbol = symbol
	return s, nil
}

type fakeHeadlines struct {
	mu        sync.Mutex
	headlines []types.Headline
	companies []string
	keys      []string
}

func (f *fakeHeadlines) FetchHeadlines(_ context.Context, company, apiKey string) []types.Headline {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.companies = append(f.companies, company)
	f.keys = append(f.keys, apiKey)
	return f.headlines
}

func newTestAssembler(t *testing.T, snaps *fakeSnapshots, news *fakeHeadlines, cfg Config) *Assembler {
	t.Helper()
	scorer, err := credit.NewScorer(credit.DefaultBands())
	require.NoError(t, err)
	sentiment, err := credit.NewSentimentScorer(credit.DefaultLexicon())
	require.NoError(t, err)

	res := resolver.New(resolver.DefaultCompanies(), map[string]string{"TATA CONSULTANCY": "TCS.NS"}, resolver.DefaultSuffix)
	a := NewAssembler(res, snaps, news, sentiment, scorer, cfg)
	a.now = func() time.Time { return time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC) }
	return a
}

func TestAnalyze_ScoresResolvedCompany(t *testing.T) {
	snaps := &fakeSnapshots{snap: credit.NewFinancialSnapshot("", "Tata Consultancy Services Limited", 100000, 20000, 500000, "Technology", "INR")}
	news := &fakeHeadlines{headlines: []types.Headline{
		{Title: "TCS posts record profit and strong growth", Description: "Shares surge"},
		{Title: "Analysts upgrade TCS"},
	}}
	a := newTestAssembler(t, snaps, news, Config{})

	r, err := a.Analyze(context.Background(), Request{Ticker: " tata consultancy ", NewsAPIKey: "abc"})
	require.NoError(t, err)

	assert.Equal(t, []string{"TCS.NS"}, snaps.symbols)
	assert.Equal(t, []string{"Tata Consultancy Services"}, news.companies, "news query uses the resolver name")
	assert.Equal(t, []string{"abc"}, news.keys)

	assert.Equal(t, "tata consultancy", r.Input)
	assert.Equal(t, "TCS.NS", r.Symbol)
	assert.Equal(t, "Tata Consultancy Services Limited", r.CompanyName)
	assert.True(t, r.NewsKeyConfigured)
	assert.NotEqual(t, [16]byte{}, [16]byte(r.ID))
	assert.Equal(t, time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC), r.GeneratedAt)

	assert.Equal(t, credit.SentimentPositive, r.Sentiment.Label)
	assert.Equal(t, 2, r.Sentiment.HeadlineCount)
	assert.Equal(t, r.Sentiment.Adjustment, r.Assessment.Contribution(credit.ComponentSentiment))
	assert.Equal(t, 15, r.Assessment.Contribution(credit.ComponentDebtRatio))
	assert.Equal(t, credit.ScoreColor(r.Assessment.Score), r.Color)
	assert.Contains(t, r.Summary, "Tata Consultancy Services Limited")
}

func TestAnalyze_ReferenceExampleWithoutNews(t *testing.T) {
	snaps := &fakeSnapshots{snap: credit.NewFinancialSnapshot("", "", 100000, 20000, 500000, "", "INR")}
	a := newTestAssembler(t, snaps, &fakeHeadlines{}, Config{})

	r, err := a.Analyze(context.Background(), Request{Ticker: "INFY"})
	require.NoError(t, err)

	assert.Equal(t, "INFY.NS", r.Symbol)
	assert.Equal(t, "Infosys", r.CompanyName, "falls back to the resolver name")
	assert.NotNil(t, r.Headlines)
	assert.Empty(t, r.Headlines)
	assert.False(t, r.NewsKeyConfigured)
	assert.Equal(t, credit.SentimentNoData, r.Sentiment.Label)
	assert.Equal(t, 65, r.Assessment.Score)
	assert.Equal(t, credit.RatingA, r.Assessment.Rating)
}

func TestAnalyze_UnknownTickerPassesThrough(t *testing.T) {
	snaps := &fakeSnapshots{snap: credit.NewFinancialSnapshot("", "", 0, 0, 0, "", "")}
	news := &fakeHeadlines{}
	a := newTestAssembler(t, snaps, news, Config{})

	r, err := a.Analyze(context.Background(), Request{Ticker: "ZOMATO.NS"})
	require.NoError(t, err)

	assert.Equal(t, "ZOMATO.NS", r.Symbol)
	assert.Equal(t, []string{"ZOMATO"}, news.companies)
	assert.Equal(t, 50, r.Assessment.Score)
	assert.Equal(t, credit.RatingBB, r.Assessment.Rating)
}

func TestAnalyze_NoData(t *testing.T) {
	snaps := &fakeSnapshots{err: fmt.Errorf("XYZ.NS: %w", market.ErrDataUnavailable)}
	a := newTestAssembler(t, snaps, &fakeHeadlines{}, Config{})

	r, err := a.Analyze(context.Background(), Request{Ticker: "XYZ.NS"})
	assert.Nil(t, r)
	assert.ErrorIs(t, err, market.ErrDataUnavailable)
}

func TestAnalyze_EmptyTicker(t *testing.T) {
	a := newTestAssembler(t, &fakeSnapshots{}, &fakeHeadlines{}, Config{})

	_, err := a.Analyze(context.Background(), Request{Ticker: "   "})
	assert.ErrorIs(t, err, ErrEmptyTicker)
}

func TestAnalyze_SuffixEnforcement(t *testing.T) {
	cfg := Config{RequireSuffix: true, AllowedSuffixes: []string{".NS", ".BO"}}

	tests := []struct {
		ticker  string
		wantErr bool
	}{
		{"TCS", false},
		{"RELIANCE.BO", false},
		{"AAPL", true},
		{"VOD.L", true},
	}
	for _, tt := range tests {
		t.Run(tt.ticker, func(t *testing.T) {
			snaps := &fakeSnapshots{snap: credit.NewFinancialSnapshot("", "", 1, 0, 0, "", "")}
			a := newTestAssembler(t, snaps, &fakeHeadlines{}, cfg)

			_, err := a.Analyze(context.Background(), Request{Ticker: tt.ticker})
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnsupportedExchange))
				assert.Empty(t, snaps.symbols, "nothing fetched for rejected symbols")
				return
			}
			assert.NoError(t, err)
		})
	}
}
