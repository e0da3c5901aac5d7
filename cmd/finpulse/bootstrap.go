package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"fin-pulse-engine/internal/credit"
	"fin-pulse-engine/internal/interfaces"
	"fin-pulse-engine/internal/logger"
	"fin-pulse-engine/internal/market"
	"fin-pulse-engine/internal/market/marketobs"
	"fin-pulse-engine/internal/news"
	"fin-pulse-engine/internal/news/newsobs"
	"fin-pulse-engine/internal/report"
	"fin-pulse-engine/internal/report/reportobs"
	"fin-pulse-engine/internal/resolver"
	"fin-pulse-engine/internal/store"
	"fin-pulse-engine/internal/trace"
)

// initializeSystem loads .env and starts logging and tracing
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func shutdownSystem() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = trace.Shutdown(ctx)
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

func initializeResolver(cfg *store.Config) *resolver.Resolver {
	return resolver.New(cfg.Companies, cfg.Aliases, cfg.ExchangeSuffix)
}

// initializeMarket builds the snapshot fetcher over the configured sources
func initializeMarket(ctx context.Context, cfg *store.Config) interfaces.SnapshotFetcher {
	limiter := market.NewMultiRateLimiter()
	var sources []market.Source
	for _, name := range cfg.Market.Sources {
		var src market.Source
		switch name {
		case store.SourceYahoo:
			src = market.NewYahooSource(cfg.Market.YahooBaseURL, cfg.MarketTimeout())
		case store.SourceScreener:
			src = market.NewScreenerSource(cfg.Market.ScreenerBaseURL, cfg.MarketTimeout())
		default:
			continue
		}
		limiter.AddLimiter(src.Name(), cfg.Market.RequestsPerSecond, 1)
		sources = append(sources, src)
	}

	cache, err := market.NewCache(cfg.Market.CacheDir, cfg.MarketCacheTTL())
	if err != nil {
		logger.Warn(ctx, "Snapshot cache disabled", "dir", cfg.Market.CacheDir, "error", err)
	}
	if err := cache.CleanupExpired(); err != nil {
		logger.Warn(ctx, "Failed to clean snapshot cache", "error", err)
	}

	fetcher := market.NewFetcher(sources, market.WithCache(cache), market.WithRateLimiter(limiter))
	return marketobs.Wrap(fetcher)
}

// initializeNews builds the headline service. The returned close func stops
// its cache janitor.
func initializeNews(cfg *store.Config) (interfaces.HeadlineFetcher, func()) {
	var providers []news.Provider
	for _, name := range cfg.News.Providers {
		switch name {
		case store.ProviderNewsAPI:
			providers = append(providers, news.NewNewsAPIProvider(cfg.News.NewsAPIBaseURL, cfg.NewsTimeout()))
		case store.ProviderRSS:
			providers = append(providers, news.NewRSSProvider(cfg.News.RSSFeeds, cfg.NewsTimeout(), cfg.Market.RequestsPerSecond))
		case store.ProviderGoogle:
			providers = append(providers, news.NewGoogleNewsProvider("", cfg.NewsTimeout()))
		}
	}

	svc := news.NewService(providers, &news.ServiceConfig{
		MaxHeadlines:  cfg.News.MaxHeadlines,
		CacheDuration: cfg.NewsCacheTTL(),
		Language:      cfg.News.Language,
	})
	return newsobs.Wrap(svc), svc.Close
}

// initializeAnalyzer wires resolver, fetchers and scorers with observability
func initializeAnalyzer(ctx context.Context, cfg *store.Config) (report.Analyzer, func(), error) {
	scorer, err := credit.NewScorer(cfg.Scoring.Bands)
	if err != nil {
		return nil, nil, err
	}
	sentiment, err := credit.NewSentimentScorer(cfg.Scoring.Lexicon)
	if err != nil {
		return nil, nil, err
	}

	headlines, closeNews := initializeNews(cfg)
	asm := report.NewAssembler(
		initializeResolver(cfg),
		initializeMarket(ctx, cfg),
		headlines,
		sentiment,
		scorer,
		report.Config{
			RequireSuffix:   cfg.Market.RequireExchangeSuffix,
			AllowedSuffixes: cfg.Market.AllowedSuffixes,
		},
	)
	return reportobs.Wrap(asm), closeNews, nil
}

// importKiteCompanies pulls the equity catalogue from Kite Connect
func importKiteCompanies(ctx context.Context, cfg *store.Config) ([]resolver.Company, error) {
	apiKey := os.Getenv(cfg.Kite.APIKeyEnv)
	token := os.Getenv(cfg.Kite.AccessTokenEnv)
	client, err := resolver.NewKiteClient(apiKey, token)
	if err != nil {
		return nil, err
	}

	op := logger.StartOperation(ctx, "kite.ImportInstruments", "exchange", cfg.Kite.Exchange)
	companies, err := resolver.ImportKiteInstruments(client, cfg.Kite.Exchange, cfg.ExchangeSuffix)
	if err != nil {
		op.EndWithError(err)
		return nil, err
	}
	op.End("count", len(companies))
	return companies, nil
}
