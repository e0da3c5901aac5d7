package market

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"fin-pulse-engine/internal/api"
	"fin-pulse-engine/internal/credit"
)

// crore is Screener's reporting unit.
const crore = 1e7

// ScreenerSource scrapes company pages on screener.in. Figures there are in
// crores of rupees.
type ScreenerSource struct {
	client *api.Client
}

// NewScreenerSource creates a Screener.in source rooted at baseURL.
func NewScreenerSource(baseURL string, timeout time.Duration) *ScreenerSource {
	return &ScreenerSource{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(baseURL, "/")),
			api.WithTimeout(timeout),
			api.WithHeaders(api.BrowserHeaders()),
			api.WithLogging(true),
		),
	}
}

func (s *ScreenerSource) Name() string { return "screener" }

// Fetch prefers consolidated statements and falls back to standalone ones.
func (s *ScreenerSource) Fetch(ctx context.Context, symbol string) (credit.FinancialSnapshot, error) {
	code := screenerCode(symbol)
	if code == "" {
		return credit.FinancialSnapshot{}, fmt.Errorf("screener: empty symbol: %w", ErrSymbolNotFound)
	}

	var lastErr error
	for _, path := range []string{"/company/" + code + "/consolidated/", "/company/" + code + "/"} {
		resp, err := s.client.Do(api.NewRequest(http.MethodGet, path).WithContext(ctx))
		if err != nil {
			lastErr = err
			var httpErr *api.HTTPError
			if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
				continue
			}
			return credit.FinancialSnapshot{}, fmt.Errorf("screener %s: %w", code, err)
		}

		snap, err := parseScreenerPage(symbol, resp.Body)
		if err != nil {
			lastErr = err
			continue
		}
		return snap, nil
	}
	return credit.FinancialSnapshot{}, fmt.Errorf("screener %s: %v: %w", code, lastErr, ErrSymbolNotFound)
}

// screenerCode strips the exchange suffix: "TCS.NS" -> "TCS".
func screenerCode(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.LastIndex(s, "."); i > 0 {
		s = s[:i]
	}
	return s
}

func parseScreenerPage(symbol string, body []byte) (credit.FinancialSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return credit.FinancialSnapshot{}, fmt.Errorf("failed to parse screener page: %w", err)
	}

	name := cleanText(doc.Find("h1").First().Text())

	var marketCap float64
	doc.Find("#top-ratios li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		if strings.EqualFold(cleanText(li.Find(".name").Text()), "Market Cap") {
			marketCap = parseCrores(li.Find(".number").First().Text())
			return false
		}
		return true
	})

	revenue := latestRowValue(doc, "#profit-loss", "Sales", "Revenue")
	debt := latestRowValue(doc, "#balance-sheet", "Borrowings")

	sector := cleanText(doc.Find("#peers a[title='Sector']").First().Text())
	if sector == "" {
		sector = cleanText(doc.Find("#peers a[title='Broad Sector']").First().Text())
	}

	if name == "" && marketCap == 0 && revenue == 0 && debt == 0 {
		return credit.FinancialSnapshot{}, ErrSymbolNotFound
	}

	return credit.NewFinancialSnapshot(symbol, name, revenue, debt, marketCap, sector, "INR"), nil
}

// latestRowValue returns the right-most figure of the first table row in
// section whose label starts with one of labels.
func latestRowValue(doc *goquery.Document, section string, labels ...string) float64 {
	var value float64
	doc.Find(section + " table tbody tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return true
		}
		label := strings.TrimSpace(strings.TrimSuffix(cleanText(cells.First().Text()), "+"))
		if !hasAnyPrefix(label, labels) {
			return true
		}
		for i := cells.Length() - 1; i > 0; i-- {
			if v := parseCrores(cells.Eq(i).Text()); v != 0 {
				value = v
				break
			}
		}
		return false
	})
	return value
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(strings.ToLower(s), strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// parseCrores reads "₹ 12,61,512 Cr." as rupees. Unparseable text is 0.
func parseCrores(text string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, text)
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v * crore
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
