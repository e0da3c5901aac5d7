package market

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fin-pulse-engine/internal/api"
	"fin-pulse-engine/internal/credit"
)

const yahooModules = "price,financialData,assetProfile"

// yahooValue is Yahoo's {"raw": 1.0, "fmt": "1.00"} number wrapper.
type yahooValue struct {
	Raw *float64 `json:"raw"`
}

func (v yahooValue) value() float64 {
	if v.Raw == nil {
		return 0
	}
	return *v.Raw
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				LongName  string     `json:"longName"`
				ShortName string     `json:"shortName"`
				Currency  string     `json:"currency"`
				MarketCap yahooValue `json:"marketCap"`
			} `json:"price"`
			FinancialData *struct {
				TotalRevenue      yahooValue `json:"totalRevenue"`
				TotalDebt         yahooValue `json:"totalDebt"`
				FinancialCurrency string     `json:"financialCurrency"`
			} `json:"financialData"`
			AssetProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// YahooSource reads snapshots from the Yahoo Finance quoteSummary endpoint.
type YahooSource struct {
	client *api.Client
	retry  *api.RetryConfig
}

// NewYahooSource creates a Yahoo Finance source rooted at baseURL.
func NewYahooSource(baseURL string, timeout time.Duration) *YahooSource {
	return &YahooSource{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(baseURL, "/")),
			api.WithTimeout(timeout),
			api.WithHeaders(api.YahooFinanceHeaders()),
			api.WithLogging(true),
		),
		retry: api.DefaultRetryConfig(),
	}
}

func (y *YahooSource) Name() string { return "yahoo" }

func (y *YahooSource) Fetch(ctx context.Context, symbol string) (credit.FinancialSnapshot, error) {
	req := api.NewRequest(http.MethodGet, "/v10/finance/quoteSummary/"+url.PathEscape(symbol)).
		WithContext(ctx).
		WithQuery("modules", yahooModules)

	resp, err := y.client.DoWithRetry(req, y.retry)
	if err != nil {
		return credit.FinancialSnapshot{}, fmt.Errorf("yahoo quoteSummary %s: %w", symbol, err)
	}

	var payload quoteSummaryResponse
	if err := resp.ParseJSON(&payload); err != nil {
		return credit.FinancialSnapshot{}, err
	}
	return parseQuoteSummary(symbol, payload)
}

func parseQuoteSummary(symbol string, payload quoteSummaryResponse) (credit.FinancialSnapshot, error) {
	qs := payload.QuoteSummary
	if qs.Error != nil {
		return credit.FinancialSnapshot{}, fmt.Errorf("yahoo %s: %s: %w", symbol, qs.Error.Description, ErrSymbolNotFound)
	}
	if len(qs.Result) == 0 {
		return credit.FinancialSnapshot{}, fmt.Errorf("yahoo %s: empty result: %w", symbol, ErrSymbolNotFound)
	}

	r := qs.Result[0]
	if r.Price == nil && r.FinancialData == nil {
		return credit.FinancialSnapshot{}, fmt.Errorf("yahoo %s: no price or financial data: %w", symbol, ErrSymbolNotFound)
	}

	var name, currency, sector string
	var revenue, debt, marketCap float64
	if r.Price != nil {
		name = r.Price.LongName
		if name == "" {
			name = r.Price.ShortName
		}
		currency = r.Price.Currency
		marketCap = r.Price.MarketCap.value()
	}
	if r.FinancialData != nil {
		revenue = r.FinancialData.TotalRevenue.value()
		debt = r.FinancialData.TotalDebt.value()
		if currency == "" {
			currency = r.FinancialData.FinancialCurrency
		}
	}
	if r.AssetProfile != nil {
		sector = r.AssetProfile.Sector
	}

	return credit.NewFinancialSnapshot(symbol, name, revenue, debt, marketCap, sector, currency), nil
}
