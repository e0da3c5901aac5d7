package news

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"fin-pulse-engine/internal/logger"
	"fin-pulse-engine/internal/types"
)

// RSSProvider scans market RSS feeds for items that mention the company.
// It needs no API key.
type RSSProvider struct {
	feeds   []string
	parser  *gofeed.Parser
	limiter *rate.Limiter
}

func NewRSSProvider(feeds []string, timeout time.Duration, perSecond float64) *RSSProvider {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	if perSecond <= 0 {
		perSecond = 2
	}
	return &RSSProvider{
		feeds:   feeds,
		parser:  parser,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

func (p *RSSProvider) Name() string { return "rss" }

func (p *RSSProvider) Headlines(ctx context.Context, q Query) ([]types.Headline, error) {
	keywords := companyKeywords(q.Company)
	if len(keywords) == 0 {
		return nil, nil
	}

	var (
		out    []types.Headline
		failed int
	)
	for _, feedURL := range p.feeds {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		items, err := p.fetchFeed(ctx, feedURL)
		if err != nil {
			failed++
			logger.Warn(ctx, "RSS feed failed", "feed", feedURL, "error", err)
			continue
		}
		for _, h := range items {
			if mentions(h.Title, keywords) || mentions(h.Description, keywords) {
				out = append(out, h)
			}
		}
	}
	if failed > 0 && failed == len(p.feeds) {
		return nil, fmt.Errorf("all %d rss feeds failed", failed)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (p *RSSProvider) fetchFeed(ctx context.Context, feedURL string) ([]types.Headline, error) {
	feed, err := p.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse rss %s: %w", feedURL, err)
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = feedURL
	}

	items := make([]types.Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		h := types.Headline{
			Title:       title,
			Description: cleanHTML(item.Description),
			URL:         item.Link,
			Source:      source,
		}
		if item.PublishedParsed != nil {
			h.PublishedAt = *item.PublishedParsed
		}
		items = append(items, h)
	}
	return items, nil
}

// cleanHTML strips markup from feed descriptions.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
