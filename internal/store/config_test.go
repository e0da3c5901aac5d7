package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ".NS", cfg.ExchangeSuffix)
	assert.Len(t, cfg.Companies, 15)
	assert.Equal(t, []string{SourceYahoo, SourceScreener}, cfg.Market.Sources)
	assert.Equal(t, []string{ProviderNewsAPI}, cfg.News.Providers)
	assert.Equal(t, 5, cfg.News.MaxHeadlines)
	assert.Equal(t, 5*time.Minute, cfg.MarketCacheTTL())
	assert.Equal(t, 10*time.Minute, cfg.NewsCacheTTL())
	assert.Equal(t, 10*time.Second, cfg.NewsTimeout())
	assert.Equal(t, 83.0, cfg.Scoring.Bands.FXToINR["USD"])
	assert.Equal(t, 5.0, cfg.Scoring.Lexicon.Scale)
	assert.Equal(t, "NSE", cfg.Kite.Exchange)
}

func TestLoadConfig_Overrides(t *testing.T) {
	path := writeConfig(t, `
companies:
  WIPRO.NS: Wipro
aliases:
  wipro ltd: WIPRO.NS
market:
  sources: [SCREENER]
  cache_ttl_seconds: 60
news:
  providers: [NEWSAPI, RSS]
  max_headlines: 8
scoring:
  lexicon:
    positive: {order win: 2}
    negative: {default: 3}
    scale: 4
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"WIPRO.NS": "Wipro"}, cfg.Companies)
	assert.Equal(t, []string{SourceScreener}, cfg.Market.Sources)
	assert.Equal(t, time.Minute, cfg.MarketCacheTTL())
	assert.Equal(t, 8, cfg.News.MaxHeadlines)
	assert.Equal(t, 2.0, cfg.Scoring.Lexicon.Positive["order win"])
	assert.Equal(t, 4.0, cfg.Scoring.Lexicon.Scale)
	assert.Equal(t, 4, cfg.Scoring.Lexicon.LabelThreshold)
	assert.Len(t, cfg.Scoring.Bands.Debt, 5)
}

func TestLoadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown market source", "market:\n  sources: [BLOOMBERG]\n"},
		{"unknown news provider", "news:\n  providers: [TWITTER]\n"},
		{"bad suffix", "exchange_suffix: NS\n"},
		{"dangling alias", "aliases:\n  foo: NOPE.NS\n"},
		{"too many headlines", "news:\n  max_headlines: 500\n"},
		{"bad rss url", "news:\n  rss_feeds: [not-a-url]\n"},
		{"unordered debt bands", `
scoring:
  bands:
    debt:
      - {up_to: 0.5, points: 25}
      - {up_to: 0.2, points: 15}
      - {up_to: 0.8, points: 5}
      - {up_to: 1.0, points: -5}
    debt_floor: -25
`},
		{"duplicate fx code", "scoring:\n  bands:\n    fx_to_inr: {usd: 83, USD: 84}\n"},
		{"bad lexicon threshold", "scoring:\n  lexicon:\n    label_threshold: 30\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestLoadConfig_LowercaseFXCodes(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "scoring:\n  bands:\n    fx_to_inr: {inr: 1, usd: 83}\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"INR": 1, "USD": 83}, cfg.Scoring.Bands.FXToINR)
	assert.InDelta(t, 830.0, cfg.Scoring.Bands.ToINRBillions(10e9, "USD"), 1e-9)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "market: [unterminated"))
	assert.Error(t, err)
}

func TestNewsAPIKey(t *testing.T) {
	cfg := Default()
	cfg.News.APIKeyEnv = "FINPULSE_TEST_NEWS_KEY"
	t.Setenv("FINPULSE_TEST_NEWS_KEY", "  abc123  ")
	assert.Equal(t, "abc123", cfg.NewsAPIKey())
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}
