package market

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fin-pulse-engine/internal/credit"
	"fin-pulse-engine/internal/logger"
)

var (
	// ErrDataUnavailable means no source could produce a snapshot.
	ErrDataUnavailable = errors.New("financial data unavailable")
	// ErrSymbolNotFound means a source does not know the symbol.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// Source is one upstream that can produce a snapshot.
type Source interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (credit.FinancialSnapshot, error)
}

// Fetcher tries its sources in order, filling fields the first source left
// empty from later ones, and caches complete results.
type Fetcher struct {
	sources []Source
	cache   *Cache
	limiter *MultiRateLimiter
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithCache caches snapshots on disk
func WithCache(c *Cache) FetcherOption {
	return func(f *Fetcher) {
		f.cache = c
	}
}

// WithRateLimiter paces requests per source name
func WithRateLimiter(l *MultiRateLimiter) FetcherOption {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// NewFetcher creates a fetcher over sources in priority order.
func NewFetcher(sources []Source, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{sources: sources}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchFinancialSnapshot returns a snapshot for symbol, or an error wrapping
// ErrDataUnavailable when every source fails.
func (f *Fetcher) FetchFinancialSnapshot(ctx context.Context, symbol string) (credit.FinancialSnapshot, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return credit.FinancialSnapshot{}, fmt.Errorf("empty symbol: %w", ErrDataUnavailable)
	}

	key := MakeKey("snapshot", symbol)
	var cached credit.FinancialSnapshot
	if f.cache.GetJSON(key, &cached) {
		logger.Debug(ctx, "Snapshot served from cache", "symbol", symbol)
		return cached, nil
	}

	var (
		snap  credit.FinancialSnapshot
		found bool
		errs  []error
	)
	for _, src := range f.sources {
		if found && complete(snap) {
			break
		}
		if err := f.limiter.Wait(ctx, src.Name()); err != nil {
			errs = append(errs, err)
			break
		}

		got, err := src.Fetch(ctx, symbol)
		if err != nil {
			logger.Warn(ctx, "Snapshot source failed", "source", src.Name(), "symbol", symbol, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}

		if !found {
			snap, found = got, true
			continue
		}
		snap = merge(snap, got)
		logger.Debug(ctx, "Snapshot gaps filled", "source", src.Name(), "symbol", symbol)
	}

	if !found {
		return credit.FinancialSnapshot{}, fmt.Errorf("%s: %w", symbol, errors.Join(append([]error{ErrDataUnavailable}, errs...)...))
	}

	if err := f.cache.SetJSON(key, snap); err != nil {
		logger.Warn(ctx, "Failed to cache snapshot", "symbol", symbol, "error", err)
	}
	return snap, nil
}

// complete ignores debt: zero borrowings is a legitimate figure.
func complete(s credit.FinancialSnapshot) bool {
	return s.TotalRevenue > 0 && s.MarketCap > 0
}

// merge fills zero figures of base from extra. Market cap is only taken when
// both are in the same currency.
func merge(base, extra credit.FinancialSnapshot) credit.FinancialSnapshot {
	if base.TotalRevenue == 0 && base.TotalDebt == 0 {
		base.TotalRevenue = extra.TotalRevenue
		base.TotalDebt = extra.TotalDebt
	}
	if base.MarketCap == 0 && strings.EqualFold(base.Currency, extra.Currency) {
		base.MarketCap = extra.MarketCap
	}
	if base.CompanyName == base.Symbol && extra.CompanyName != extra.Symbol {
		base.CompanyName = extra.CompanyName
	}
	if base.Sector == "Unknown" {
		base.Sector = extra.Sector
	}
	return base
}
