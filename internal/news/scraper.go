package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"fin-pulse-engine/internal/logger"
	"fin-pulse-engine/internal/types"
)

const (
	googleNewsURL = "https://news.google.com"
	userAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// GoogleNewsProvider scrapes the Google News search page. It needs no key of
// its own but the service only consults it once a NewsAPI key is configured.
type GoogleNewsProvider struct {
	baseURL string
	timeout time.Duration
}

func NewGoogleNewsProvider(baseURL string, timeout time.Duration) *GoogleNewsProvider {
	if baseURL == "" {
		baseURL = googleNewsURL
	}
	return &GoogleNewsProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

func (g *GoogleNewsProvider) Name() string { return "google" }

func (g *GoogleNewsProvider) Headlines(ctx context.Context, q Query) ([]types.Headline, error) {
	if strings.TrimSpace(q.Company) == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	headlines := []types.Headline{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(g.baseURL)),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(g.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
	})

	c.OnHTML("article", func(e *colly.HTMLElement) {
		if q.Limit > 0 && len(headlines) >= q.Limit {
			return
		}

		title := strings.TrimSpace(e.ChildText("h3, h4"))
		link := e.ChildAttr("a", "href")
		if title == "" || link == "" {
			return
		}
		if strings.HasPrefix(link, "./") {
			link = g.baseURL + link[1:]
		}

		h := types.Headline{
			Title:  title,
			URL:    link,
			Source: "Google News",
		}
		if ts := e.ChildAttr("time", "datetime"); ts != "" {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				h.PublishedAt = t
			}
		}
		headlines = append(headlines, h)
	})

	query := url.QueryEscape(`"` + q.Company + `"`)
	searchURL := fmt.Sprintf("%s/search?q=%s&hl=en-IN&gl=IN&ceid=IN:en", g.baseURL, query)

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to scrape Google News: %w", err)
	}
	c.Wait()

	logger.Debug(ctx, "Google News scraping completed", "company", q.Company, "headlines", len(headlines))
	return headlines, nil
}

func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
