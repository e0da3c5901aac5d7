package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"fin-pulse-engine/internal/credit"
)

// Format selects a renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat accepts the format names plus "md" for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

// Render writes r to w in the given format.
func Render(w io.Writer, r *Report, f Format) error {
	switch f {
	case FormatText:
		return renderText(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r))
		return err
	case FormatHTML:
		return renderHTML(w, r)
	}
	return fmt.Errorf("%q: %w", f, ErrUnknownFormat)
}

const noKeyHint = "No NewsAPI key configured; news sentiment was not assessed. Set NEWSAPI_KEY or pass --news-key."

var componentLabels = map[credit.Component]string{
	credit.ComponentBase:      "Base Score",
	credit.ComponentDebtRatio: "Debt-to-Revenue",
	credit.ComponentMarketCap: "Market Cap",
	credit.ComponentSentiment: "News Sentiment",
}

func renderText(w io.Writer, r *Report) error {
	a := r.Assessment
	var b strings.Builder

	fmt.Fprintf(&b, "Fin-Pulse Credit Report: %s (%s)\n", r.CompanyName, r.Symbol)
	fmt.Fprintf(&b, "Generated %s  id %s\n\n", r.GeneratedAt.Format(time.RFC3339), r.ID)
	fmt.Fprintf(&b, "Credit Score  %d/100 (%s from base)  [%s]\n", a.Score, signed(a.Score-credit.BaseScore), r.Color)
	fmt.Fprintf(&b, "Rating        %s (%s)\n", a.Rating, a.Rating.Description())
	fmt.Fprintf(&b, "Sector        %s\n\n", r.Snapshot.Sector)

	fmt.Fprintf(&b, "Market Cap    %s\n", formatAmount(r.Snapshot.MarketCap, r.Snapshot.Currency))
	fmt.Fprintf(&b, "Revenue       %s\n", formatAmount(r.Snapshot.TotalRevenue, r.Snapshot.Currency))
	fmt.Fprintf(&b, "Total Debt    %s\n", formatAmount(r.Snapshot.TotalDebt, r.Snapshot.Currency))
	fmt.Fprintf(&b, "Debt/Revenue  %s\n\n", a.DebtToRevenueRatio)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Component", "Points"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range breakdownRows(a) {
		table.Append(row)
	}
	table.SetFooter([]string{"Total", totalLabel(a)})
	table.Render()

	b.Reset()
	fmt.Fprintf(&b, "\nNews Sentiment  %s (%d headlines, %s positive / %s negative hits)\n",
		r.Sentiment.Label, r.Sentiment.HeadlineCount, hits(r.Sentiment.PositiveHits), hits(r.Sentiment.NegativeHits))
	for i, h := range r.Headlines {
		fmt.Fprintf(&b, "  %d. %s%s\n", i+1, h.Title, headlineMeta(h.Source, h.PublishedAt))
	}
	if !r.NewsKeyConfigured {
		fmt.Fprintf(&b, "  %s\n", noKeyHint)
	}
	fmt.Fprintf(&b, "\nSummary\n  %s\n", r.Summary)

	_, err := io.WriteString(w, b.String())
	return err
}

// Markdown renders the report as a markdown document.
func Markdown(r *Report) string {
	a := r.Assessment
	var b strings.Builder

	fmt.Fprintf(&b, "# Credit Report: %s (%s)\n\n", r.CompanyName, r.Symbol)
	fmt.Fprintf(&b, "_Generated %s, report `%s`_\n\n", r.GeneratedAt.Format(time.RFC3339), r.ID)
	fmt.Fprintf(&b, "**Credit Score:** %d/100 (%s from base)  \n", a.Score, signed(a.Score-credit.BaseScore))
	fmt.Fprintf(&b, "**Rating:** %s (%s)  \n", a.Rating, a.Rating.Description())
	fmt.Fprintf(&b, "**Sector:** %s\n\n", r.Snapshot.Sector)

	b.WriteString("## Financials\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Market Cap | %s |\n", formatAmount(r.Snapshot.MarketCap, r.Snapshot.Currency))
	fmt.Fprintf(&b, "| Revenue | %s |\n", formatAmount(r.Snapshot.TotalRevenue, r.Snapshot.Currency))
	fmt.Fprintf(&b, "| Total Debt | %s |\n", formatAmount(r.Snapshot.TotalDebt, r.Snapshot.Currency))
	fmt.Fprintf(&b, "| Debt/Revenue | %s |\n\n", a.DebtToRevenueRatio)

	b.WriteString("## Score Breakdown\n\n")
	b.WriteString("| Component | Points |\n|---|---:|\n")
	for _, row := range breakdownRows(a) {
		fmt.Fprintf(&b, "| %s | %s |\n", row[0], row[1])
	}
	fmt.Fprintf(&b, "| **Total** | **%s** |\n\n", totalLabel(a))

	b.WriteString("## News Sentiment\n\n")
	fmt.Fprintf(&b, "%s from %d headlines (%s positive / %s negative hits).\n\n",
		r.Sentiment.Label, r.Sentiment.HeadlineCount, hits(r.Sentiment.PositiveHits), hits(r.Sentiment.NegativeHits))
	for _, h := range r.Headlines {
		title := escapeMarkdown(h.Title)
		if h.URL != "" {
			title = fmt.Sprintf("[%s](%s)", title, h.URL)
		}
		fmt.Fprintf(&b, "- %s%s\n", title, escapeMarkdown(headlineMeta(h.Source, h.PublishedAt)))
	}
	if len(r.Headlines) > 0 {
		b.WriteString("\n")
	}
	if !r.NewsKeyConfigured {
		fmt.Fprintf(&b, "> %s\n\n", noKeyHint)
	}

	b.WriteString("## Summary\n\n")
	b.WriteString(r.Summary)
	b.WriteString("\n")
	return b.String()
}

func renderHTML(w io.Writer, r *Report) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table, extension.Linkify))

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(r)), &body); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}

	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>body{font-family:sans-serif;max-width:48rem;margin:2rem auto}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.3rem .6rem}.score{color:%s}</style>
</head>
<body>
<p class="score"><strong>%d</strong> %s</p>
%s</body>
</html>
`, html.EscapeString(r.CompanyName+" credit report"), r.Color, r.Assessment.Score, r.Assessment.Rating, body.String())
	return err
}

func breakdownRows(a credit.CreditAssessment) [][]string {
	rows := make([][]string, 0, len(credit.Components))
	for _, c := range credit.Components {
		points := a.Contribution(c)
		label := signed(points)
		if c == credit.ComponentBase {
			label = strconv.Itoa(points)
		}
		rows = append(rows, []string{componentLabels[c], label})
	}
	return rows
}

// totalLabel shows the raw sum when clamping changed it.
func totalLabel(a credit.CreditAssessment) string {
	if a.RawScore != a.Score {
		return fmt.Sprintf("%d (raw %d)", a.Score, a.RawScore)
	}
	return strconv.Itoa(a.Score)
}

func signed(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func hits(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatAmount shows rupees in crores and other currencies in millions.
func formatAmount(v float64, currency string) string {
	if v == 0 {
		return "N/A"
	}
	if currency == "" || strings.EqualFold(currency, "INR") {
		return "₹" + humanize.CommafWithDigits(v/1e7, 2) + " Cr"
	}
	return strings.ToUpper(currency) + " " + humanize.CommafWithDigits(v/1e6, 2) + "M"
}

func headlineMeta(source string, published time.Time) string {
	var parts []string
	if source != "" {
		parts = append(parts, source)
	}
	if !published.IsZero() {
		parts = append(parts, published.Format("2006-01-02"))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

var markdownEscaper = strings.NewReplacer("[", `\[`, "]", `\]`, "|", `\|`, "*", `\*`, "_", `\_`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
