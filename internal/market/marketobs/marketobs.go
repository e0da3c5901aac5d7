package marketobs

import (
	"context"
	"time"

	"fin-pulse-engine/internal/credit"
	"fin-pulse-engine/internal/interfaces"
	"fin-pulse-engine/internal/logger"
	"fin-pulse-engine/internal/trace"
)

type observableFetcher struct {
	inner interfaces.SnapshotFetcher
}

// Wrap wraps a SnapshotFetcher with logging and tracing
func Wrap(f interfaces.SnapshotFetcher) interfaces.SnapshotFetcher {
	return &observableFetcher{inner: f}
}

func (o *observableFetcher) FetchFinancialSnapshot(ctx context.Context, symbol string) (credit.FinancialSnapshot, error) {
	ctx, span := trace.StartSpan(ctx, "market.FetchFinancialSnapshot")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching financial snapshot", "symbol", symbol)
	start := time.Now()

	snap, err := o.inner.FetchFinancialSnapshot(ctx, symbol)
	duration := time.Since(start)
	if err != nil {
		trace.RecordError(ctx, err)
		logger.ErrorWithErrSkip(ctx, 1, "Financial snapshot unavailable", err,
			"symbol", symbol,
			"duration_ms", duration.Milliseconds())
		return snap, err
	}

	trace.AddEvent(ctx, "snapshot",
		trace.Attributes("revenue", snap.TotalRevenue, "debt", snap.TotalDebt, "market_cap", snap.MarketCap, "currency", snap.Currency)...)
	logger.DebugSkip(ctx, 1, "Financial snapshot fetched",
		"symbol", symbol,
		"company", snap.CompanyName,
		"currency", snap.Currency,
		"duration_ms", duration.Milliseconds())
	return snap, nil
}
