package newsobs

import (
	"context"
	"time"

	"fin-pulse-engine/internal/interfaces"
	"fin-pulse-engine/internal/logger"
	"fin-pulse-engine/internal/trace"
	"fin-pulse-engine/internal/types"
)

type observableFetcher struct {
	inner interfaces.HeadlineFetcher
}

// Wrap wraps a HeadlineFetcher with logging and tracing
func Wrap(f interfaces.HeadlineFetcher) interfaces.HeadlineFetcher {
	return &observableFetcher{inner: f}
}

func (o *observableFetcher) FetchHeadlines(ctx context.Context, companyName, apiKey string) []types.Headline {
	ctx, span := trace.StartSpan(ctx, "news.FetchHeadlines")
	defer span.End()

	start := time.Now()
	headlines := o.inner.FetchHeadlines(ctx, companyName, apiKey)

	trace.AddEvent(ctx, "headlines", trace.Attributes("company", companyName, "count", len(headlines))...)
	logger.DebugSkip(ctx, 1, "Headlines fetched",
		"company", companyName,
		"count", len(headlines),
		"duration_ms", time.Since(start).Milliseconds())
	return headlines
}
