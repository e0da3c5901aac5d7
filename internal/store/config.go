package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"fin-pulse-engine/internal/credit"
	"fin-pulse-engine/internal/resolver"
)

const (
	SourceYahoo    = "YAHOO"
	SourceScreener = "SCREENER"

	ProviderNewsAPI = "NEWSAPI"
	ProviderRSS     = "RSS"
	ProviderGoogle  = "GOOGLE"
)

type Config struct {
	ExchangeSuffix string            `yaml:"exchange_suffix" validate:"required,startswith=."`
	Companies      map[string]string `yaml:"companies" validate:"required,min=1"`
	Aliases        map[string]string `yaml:"aliases"`
	Market         struct {
		Sources               []string `yaml:"sources" validate:"min=1,dive,oneof=YAHOO SCREENER"`
		YahooBaseURL          string   `yaml:"yahoo_base_url" validate:"required,url"`
		ScreenerBaseURL       string   `yaml:"screener_base_url" validate:"required,url"`
		CacheDir              string   `yaml:"cache_dir"`
		CacheTTLSeconds       int      `yaml:"cache_ttl_seconds" validate:"gte=0"`
		TimeoutSeconds        int      `yaml:"timeout_seconds" validate:"gt=0"`
		RequestsPerSecond     float64  `yaml:"requests_per_second" validate:"gt=0"`
		RequireExchangeSuffix bool     `yaml:"require_exchange_suffix"`
		AllowedSuffixes       []string `yaml:"allowed_suffixes" validate:"dive,startswith=."`
	} `yaml:"market"`
	News struct {
		Providers       []string `yaml:"providers" validate:"min=1,dive,oneof=NEWSAPI RSS GOOGLE"`
		NewsAPIBaseURL  string   `yaml:"newsapi_base_url" validate:"required,url"`
		APIKeyEnv       string   `yaml:"api_key_env" validate:"required"`
		MaxHeadlines    int      `yaml:"max_headlines" validate:"gt=0,lte=100"`
		Language        string   `yaml:"language" validate:"required,len=2"`
		CacheTTLSeconds int      `yaml:"cache_ttl_seconds" validate:"gte=0"`
		TimeoutSeconds  int      `yaml:"timeout_seconds" validate:"gt=0"`
		RSSFeeds        []string `yaml:"rss_feeds" validate:"dive,url"`
	} `yaml:"news"`
	Scoring struct {
		Bands   credit.Bands   `yaml:"bands"`
		Lexicon credit.Lexicon `yaml:"lexicon"`
	} `yaml:"scoring"`
	Kite struct {
		APIKeyEnv      string `yaml:"api_key_env"`
		AccessTokenEnv string `yaml:"access_token_env"`
		Exchange       string `yaml:"exchange"`
	} `yaml:"kite"`
}

// DefaultRSSFeeds are Indian market feeds used by the RSS headline provider.
var DefaultRSSFeeds = []string{
	"https://www.moneycontrol.com/rss/marketreports.xml",
	"https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms",
	"https://www.livemint.com/rss/markets",
	"https://www.business-standard.com/rss/markets-106.rss",
}

// Default returns a fully populated configuration.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.ExchangeSuffix == "" {
		c.ExchangeSuffix = resolver.DefaultSuffix
	}
	if len(c.Companies) == 0 {
		c.Companies = resolver.DefaultCompanies()
	}

	if len(c.Market.Sources) == 0 {
		c.Market.Sources = []string{SourceYahoo, SourceScreener}
	}
	if c.Market.YahooBaseURL == "" {
		c.Market.YahooBaseURL = "https://query1.finance.yahoo.com"
	}
	if c.Market.ScreenerBaseURL == "" {
		c.Market.ScreenerBaseURL = "https://www.screener.in"
	}
	if c.Market.CacheTTLSeconds == 0 {
		c.Market.CacheTTLSeconds = 300
	}
	if c.Market.TimeoutSeconds == 0 {
		c.Market.TimeoutSeconds = 10
	}
	if c.Market.RequestsPerSecond == 0 {
		c.Market.RequestsPerSecond = 2
	}
	if len(c.Market.AllowedSuffixes) == 0 {
		c.Market.AllowedSuffixes = []string{".NS", ".BO"}
	}

	if len(c.News.Providers) == 0 {
		c.News.Providers = []string{ProviderNewsAPI}
	}
	if c.News.NewsAPIBaseURL == "" {
		c.News.NewsAPIBaseURL = "https://newsapi.org"
	}
	if c.News.APIKeyEnv == "" {
		c.News.APIKeyEnv = "NEWSAPI_KEY"
	}
	if c.News.MaxHeadlines == 0 {
		c.News.MaxHeadlines = 5
	}
	if c.News.Language == "" {
		c.News.Language = "en"
	}
	if c.News.CacheTTLSeconds == 0 {
		c.News.CacheTTLSeconds = 600
	}
	if c.News.TimeoutSeconds == 0 {
		c.News.TimeoutSeconds = 10
	}
	if len(c.News.RSSFeeds) == 0 {
		c.News.RSSFeeds = append([]string(nil), DefaultRSSFeeds...)
	}

	defBands := credit.DefaultBands()
	if len(c.Scoring.Bands.Debt) == 0 {
		c.Scoring.Bands.Debt = defBands.Debt
		c.Scoring.Bands.DebtFloor = defBands.DebtFloor
	}
	if len(c.Scoring.Bands.MarketCap) == 0 {
		c.Scoring.Bands.MarketCap = defBands.MarketCap
		c.Scoring.Bands.CapFloor = defBands.CapFloor
	}
	if len(c.Scoring.Bands.FXToINR) == 0 {
		c.Scoring.Bands.FXToINR = defBands.FXToINR
	}

	defLex := credit.DefaultLexicon()
	if len(c.Scoring.Lexicon.Positive) == 0 && len(c.Scoring.Lexicon.Negative) == 0 {
		c.Scoring.Lexicon.Positive = defLex.Positive
		c.Scoring.Lexicon.Negative = defLex.Negative
	}
	if c.Scoring.Lexicon.Scale == 0 {
		c.Scoring.Lexicon.Scale = defLex.Scale
	}
	if c.Scoring.Lexicon.LabelThreshold == 0 {
		c.Scoring.Lexicon.LabelThreshold = defLex.LabelThreshold
	}

	if c.Kite.APIKeyEnv == "" {
		c.Kite.APIKeyEnv = "KITE_API_KEY"
	}
	if c.Kite.AccessTokenEnv == "" {
		c.Kite.AccessTokenEnv = "KITE_ACCESS_TOKEN"
	}
	if c.Kite.Exchange == "" {
		c.Kite.Exchange = "NSE"
	}
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	for symbol, name := range c.Companies {
		if strings.TrimSpace(symbol) == "" || strings.TrimSpace(name) == "" {
			return errors.New("companies entries need both a symbol and a name")
		}
	}
	for alias, symbol := range c.Aliases {
		if _, ok := c.Companies[symbol]; !ok {
			return fmt.Errorf("alias '%s' points to unknown symbol '%s'", alias, symbol)
		}
	}
	if err := c.Scoring.Bands.Validate(); err != nil {
		return fmt.Errorf("scoring.bands: %w", err)
	}
	if err := c.Scoring.Lexicon.Validate(); err != nil {
		return fmt.Errorf("scoring.lexicon: %w", err)
	}
	return nil
}

// LoadConfig reads a YAML config. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	var c Config

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	c.Scoring.Bands = c.Scoring.Bands.Normalized()

	return &c, nil
}

// NewsAPIKey reads the NewsAPI key from the configured environment variable.
func (c *Config) NewsAPIKey() string {
	return strings.TrimSpace(os.Getenv(c.News.APIKeyEnv))
}

func (c *Config) MarketTimeout() time.Duration {
	return time.Duration(c.Market.TimeoutSeconds) * time.Second
}

func (c *Config) MarketCacheTTL() time.Duration {
	return time.Duration(c.Market.CacheTTLSeconds) * time.Second
}

func (c *Config) NewsTimeout() time.Duration {
	return time.Duration(c.News.TimeoutSeconds) * time.Second
}

func (c *Config) NewsCacheTTL() time.Duration {
	return time.Duration(c.News.CacheTTLSeconds) * time.Second
}
