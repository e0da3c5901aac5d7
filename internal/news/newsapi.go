package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fin-pulse-engine/internal/api"
	"fin-pulse-engine/internal/types"
)

const noTitle = "No title available"

// ErrNoAPIKey is returned when NewsAPI is queried without a usable key.
var ErrNoAPIKey = errors.New("newsapi key not configured")

type newsAPIResponse struct {
	Status   string `json:"status"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       *string `json:"title"`
		Description string  `json:"description"`
		URL         string  `json:"url"`
		PublishedAt string  `json:"publishedAt"`
	} `json:"articles"`
}

// NewsAPIProvider searches newsapi.org /v2/everything for the exact company
// name, newest first.
type NewsAPIProvider struct {
	client *api.Client
	retry  *api.RetryConfig
}

func NewNewsAPIProvider(baseURL string, timeout time.Duration) *NewsAPIProvider {
	return &NewsAPIProvider{
		client: api.NewClient(
			api.WithBaseURL(strings.TrimRight(baseURL, "/")),
			api.WithTimeout(timeout),
			api.WithLogging(true),
		),
		retry: &api.RetryConfig{MaxAttempts: 2, InitialWait: 500 * time.Millisecond, MaxWait: 2 * time.Second},
	}
}

func (p *NewsAPIProvider) Name() string { return "newsapi" }

func (p *NewsAPIProvider) Headlines(ctx context.Context, q Query) ([]types.Headline, error) {
	if !KeyConfigured(q.APIKey) {
		return nil, ErrNoAPIKey
	}

	req := api.NewRequest(http.MethodGet, "/v2/everything").
		WithContext(ctx).
		WithQuery("q", `"`+q.Company+`"`).
		WithQuery("sortBy", "publishedAt").
		WithQuery("pageSize", strconv.Itoa(q.Limit)).
		WithQuery("language", q.Language)
	for k, v := range api.NewsAPIHeaders(strings.TrimSpace(q.APIKey)) {
		req.WithHeader(k, v)
	}

	resp, err := p.client.DoWithRetry(req, p.retry)
	if err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}

	var payload newsAPIResponse
	if err := resp.ParseJSON(&payload); err != nil {
		return nil, err
	}
	return parseNewsAPI(payload, q.Limit)
}

func parseNewsAPI(payload newsAPIResponse, limit int) ([]types.Headline, error) {
	if payload.Status != "ok" {
		return nil, fmt.Errorf("newsapi status %q: %s %s", payload.Status, payload.Code, payload.Message)
	}

	out := make([]types.Headline, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		if limit > 0 && len(out) >= limit {
			break
		}
		h := types.Headline{
			Title:       noTitle,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
		}
		if a.Title != nil && strings.TrimSpace(*a.Title) != "" {
			h.Title = strings.TrimSpace(*a.Title)
		}
		if h.Source == "" {
			h.Source = "Unknown"
		}
		if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			h.PublishedAt = t
		}
		out = append(out, h)
	}
	return out, nil
}
