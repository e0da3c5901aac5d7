package reportobs

import (
	"context"
	"time"

	"fin-pulse-engine/internal/logger"
	"fin-pulse-engine/internal/report"
	"fin-pulse-engine/internal/trace"
)

// observableAnalyzer wraps report.Analyzer with logging and tracing
type observableAnalyzer struct {
	inner report.Analyzer
}

// Wrap wraps an Analyzer with observability middleware
func Wrap(a report.Analyzer) report.Analyzer {
	return &observableAnalyzer{inner: a}
}

func (o *observableAnalyzer) Analyze(ctx context.Context, req report.Request) (*report.Report, error) {
	ctx, span := trace.StartSpan(ctx, "report.Analyze")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Starting credit analysis", "ticker", req.Ticker)
	start := time.Now()

	r, err := o.inner.Analyze(ctx, req)
	duration := time.Since(start)
	if err != nil {
		trace.RecordError(ctx, err)
		logger.ErrorWithErrSkip(ctx, 1, "Credit analysis failed", err,
			"ticker", req.Ticker,
			"duration_ms", duration.Milliseconds())
		return nil, err
	}

	trace.AddEvent(ctx, "report",
		trace.Attributes("report_id", r.ID.String(), "symbol", r.Symbol, "score", r.Assessment.Score)...)
	logger.InfoSkip(ctx, 1, "Credit analysis completed",
		"report_id", r.ID.String(),
		"symbol", r.Symbol,
		"score", r.Assessment.Score,
		"rating", string(r.Assessment.Rating),
		"duration_ms", duration.Milliseconds())
	return r, nil
}
