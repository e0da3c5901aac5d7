package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fin-pulse-engine/internal/credit"
	"fin-pulse-engine/internal/interfaces"
	"fin-pulse-engine/internal/logger"
	"fin-pulse-engine/internal/news"
	"fin-pulse-engine/internal/resolver"
	"fin-pulse-engine/internal/types"
)

var (
	// ErrEmptyTicker is returned for blank input.
	ErrEmptyTicker = errors.New("ticker is empty")
	// ErrUnsupportedExchange is returned when suffix enforcement is on and the
	// resolved symbol is not listed on an allowed exchange.
	ErrUnsupportedExchange = errors.New("unsupported exchange suffix")
)

// Request is one analysis request.
type Request struct {
	Ticker     string
	NewsAPIKey string
}

// Report is everything the renderers show for one company.
type Report struct {
	ID                uuid.UUID                `json:"id"`
	Input             string                   `json:"input"`
	Symbol            string                   `json:"symbol"`
	CompanyName       string                   `json:"company_name"`
	GeneratedAt       time.Time                `json:"generated_at"`
	Snapshot          credit.FinancialSnapshot `json:"snapshot"`
	Headlines         []types.Headline         `json:"headlines"`
	NewsKeyConfigured bool                     `json:"news_key_configured"`
	Sentiment         credit.SentimentResult   `json:"sentiment"`
	Assessment        credit.CreditAssessment  `json:"assessment"`
	Summary           string                   `json:"summary"`
	Color             credit.Color             `json:"color"`
}

// Analyzer produces a report for a request.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Report, error)
}

// Config holds the exchange-suffix policy.
type Config struct {
	RequireSuffix   bool
	AllowedSuffixes []string
}

// Assembler wires resolver, fetchers and scorers into one analysis.
type Assembler struct {
	resolver  *resolver.Resolver
	snapshots interfaces.SnapshotFetcher
	headlines interfaces.HeadlineFetcher
	sentiment *credit.SentimentScorer
	scorer    *credit.Scorer
	cfg       Config
	now       func() time.Time
}

func NewAssembler(
	res *resolver.Resolver,
	snapshots interfaces.SnapshotFetcher,
	headlines interfaces.HeadlineFetcher,
	sentiment *credit.SentimentScorer,
	scorer *credit.Scorer,
	cfg Config,
) *Assembler {
	return &Assembler{
		resolver:  res,
		snapshots: snapshots,
		headlines: headlines,
		sentiment: sentiment,
		scorer:    scorer,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Analyze resolves the ticker, fetches the snapshot and headlines in
// parallel, and scores them. The only failure modes are bad input and a
// snapshot error, which wraps market.ErrDataUnavailable.
func (a *Assembler) Analyze(ctx context.Context, req Request) (*Report, error) {
	input := strings.TrimSpace(req.Ticker)
	if input == "" {
		return nil, ErrEmptyTicker
	}

	symbol := a.resolver.Resolve(input)
	if a.cfg.RequireSuffix && !resolver.HasSuffix(symbol, a.cfg.AllowedSuffixes) {
		return nil, fmt.Errorf("%s (allowed: %s): %w", symbol, strings.Join(a.cfg.AllowedSuffixes, ", "), ErrUnsupportedExchange)
	}
	company := a.resolver.CompanyName(symbol)

	var (
		snapshot  credit.FinancialSnapshot
		headlines []types.Headline
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshot, err = a.snapshots.FetchFinancialSnapshot(gctx, symbol)
		return err
	})
	g.Go(func() error {
		headlines = a.headlines.FetchHeadlines(gctx, company, req.NewsAPIKey)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if headlines == nil {
		headlines = []types.Headline{}
	}

	sentiment := a.sentiment.Score(types.Texts(headlines))
	assessment := a.scorer.Compute(snapshot, sentiment)

	name := snapshot.CompanyName
	if name == "" || name == snapshot.Symbol {
		name = company
	}

	logger.Assessment(ctx, symbol, assessment.Score, string(assessment.Rating),
		"raw_score", assessment.RawScore,
		"debt_ratio", assessment.DebtToRevenueRatio.String(),
		"headlines", len(headlines),
		"sentiment", string(sentiment.Label))

	return &Report{
		ID:                uuid.New(),
		Input:             input,
		Symbol:            symbol,
		CompanyName:       name,
		GeneratedAt:       a.now().UTC(),
		Snapshot:          snapshot,
		Headlines:         headlines,
		NewsKeyConfigured: news.KeyConfigured(req.NewsAPIKey),
		Sentiment:         sentiment,
		Assessment:        assessment,
		Summary:           credit.Summarize(name, assessment),
		Color:             credit.ScoreColor(assessment.Score),
	}, nil
}
