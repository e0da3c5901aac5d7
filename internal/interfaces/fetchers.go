package interfaces

import (
	"context"

	"fin-pulse-engine/internal/credit"
	"fin-pulse-engine/internal/types"
)

// SnapshotFetcher produces the financial snapshot of a listed company.
type SnapshotFetcher interface {
	FetchFinancialSnapshot(ctx context.Context, symbol string) (credit.FinancialSnapshot, error)
}

// HeadlineFetcher returns recent headlines about a company. It never fails;
// an empty slice means no news.
type HeadlineFetcher interface {
	FetchHeadlines(ctx context.Context, companyName, apiKey string) []types.Headline
}
