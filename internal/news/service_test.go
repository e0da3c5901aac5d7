package news

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"fin-pulse-engine/internal/types"
)

type stubProvider struct {
	name      string
	headlines []types.Headline
	err       error
	calls     int32
	lastQuery Query
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Headlines(_ context.Context, q Query) ([]types.Headline, error) {
	atomic.AddInt32(&s.calls, 1)
	s.lastQuery = q
	return s.headlines, s.err
}

func headlines(titles ...string) []types.Headline {
	out := make([]types.Headline, 0, len(titles))
	for _, t := range titles {
		out = append(out, types.Headline{Title: t})
	}
	return out
}

func TestHeadlineCache(t *testing.T) {
	cache := newHeadlineCache(time.Minute)
	defer cache.close()

	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.set("infosys", headlines("Infosys wins deal"))

	got, found := cache.get("infosys")
	if !found {
		t.Fatal("Expected to find cached headlines")
	}
	if len(got) != 1 || got[0].Title != "Infosys wins deal" {
		t.Errorf("Unexpected cached headlines: %+v", got)
	}

	now = now.Add(2 * time.Minute)
	if _, found = cache.get("infosys"); found {
		t.Error("Expected cache entry to be expired")
	}
}

func TestCacheCleanup(t *testing.T) {
	cache := newHeadlineCache(time.Minute)
	defer cache.close()

	now := time.Now()
	cache.now = func() time.Time { return now }
	for _, k := range []string{"a", "b", "c"} {
		cache.set(k, headlines(k))
	}

	now = now.Add(time.Hour)
	cache.cleanup()

	cache.mu.RLock()
	count := len(cache.data)
	cache.mu.RUnlock()

	if count != 0 {
		t.Errorf("Expected 0 cache entries after cleanup, got %d", count)
	}
}

func TestServiceConfig(t *testing.T) {
	cfg := DefaultServiceConfig()

	if cfg.MaxHeadlines != 5 {
		t.Errorf("Expected MaxHeadlines to be 5, got %d", cfg.MaxHeadlines)
	}
	if cfg.CacheDuration != 10*time.Minute {
		t.Errorf("Expected CacheDuration to be 10 minutes, got %v", cfg.CacheDuration)
	}
	if cfg.Language != "en" {
		t.Errorf("Expected Language en, got %s", cfg.Language)
	}
}

func TestFetchHeadlines_FirstNonEmptyProviderWins(t *testing.T) {
	failing := &stubProvider{name: "newsapi", err: errors.New("boom")}
	empty := &stubProvider{name: "rss"}
	google := &stubProvider{name: "google", headlines: headlines("a", "b", "c", "d", "e", "f", "g")}
	unused := &stubProvider{name: "unused", headlines: headlines("z")}

	svc := NewService([]Provider{failing, empty, google, unused}, DefaultServiceConfig())
	defer svc.Close()

	got := svc.FetchHeadlines(context.Background(), "Infosys Limited", "real-key")

	if len(got) != 5 {
		t.Fatalf("Expected 5 headlines, got %d", len(got))
	}
	if got[0].Title != "a" {
		t.Errorf("Expected first headline from google provider, got %s", got[0].Title)
	}
	if unused.calls != 0 {
		t.Error("Expected providers after the first hit to be skipped")
	}
	if google.lastQuery.Limit != 5 || google.lastQuery.Language != "en" || google.lastQuery.APIKey != "real-key" {
		t.Errorf("Unexpected query: %+v", google.lastQuery)
	}
}

func TestFetchHeadlines_NeverFails(t *testing.T) {
	svc := NewService([]Provider{&stubProvider{name: "newsapi", err: ErrNoAPIKey}}, nil)
	defer svc.Close()

	got := svc.FetchHeadlines(context.Background(), "TCS", "")
	if got == nil {
		t.Fatal("Expected an empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("Expected no headlines, got %d", len(got))
	}

	if got := svc.FetchHeadlines(context.Background(), "   ", "key"); len(got) != 0 {
		t.Errorf("Expected no headlines for blank company, got %d", len(got))
	}
}

func TestFetchHeadlines_CachesNonEmptyResults(t *testing.T) {
	p := &stubProvider{name: "newsapi", headlines: headlines("Reliance profit rises")}
	svc := NewService([]Provider{p}, DefaultServiceConfig())
	defer svc.Close()

	ctx := context.Background()
	svc.FetchHeadlines(ctx, "Reliance Industries", "key")
	svc.FetchHeadlines(ctx, "reliance industries", "key")

	if p.calls != 1 {
		t.Errorf("Expected 1 provider call, got %d", p.calls)
	}

	if _, found := svc.cache.get("reliance industries"); !found {
		t.Error("Expected headlines cached under the lowercased company")
	}
}

func TestFetchHeadlines_NoKeySkipsEveryProvider(t *testing.T) {
	feed := &stubProvider{name: "rss", headlines: headlines("IT stocks rally", "Infosys Q4 profit jumps")}
	scrape := &stubProvider{name: "google", headlines: headlines("Infosys shares climb")}
	svc := NewService([]Provider{&stubProvider{name: "newsapi", err: ErrNoAPIKey}, feed, scrape}, DefaultServiceConfig())
	defer svc.Close()

	for _, key := range []string{"", "   ", "your_placeholder_key"} {
		got := svc.FetchHeadlines(context.Background(), "Infosys", key)
		if got == nil || len(got) != 0 {
			t.Errorf("Expected empty headlines for key %q, got %v", key, got)
		}
	}
	if feed.calls != 0 || scrape.calls != 0 {
		t.Errorf("Expected keyless providers to be skipped, got rss=%d google=%d calls", feed.calls, scrape.calls)
	}
}

func TestFetchHeadlines_EmptyResultsNotCached(t *testing.T) {
	p := &stubProvider{name: "newsapi"}
	svc := NewService([]Provider{p}, DefaultServiceConfig())
	defer svc.Close()

	ctx := context.Background()
	svc.FetchHeadlines(ctx, "Wipro", "key")
	svc.FetchHeadlines(ctx, "Wipro", "key")

	if p.calls != 2 {
		t.Errorf("Expected 2 provider calls, got %d", p.calls)
	}
}

func TestFetchHeadlines_CancelledContext(t *testing.T) {
	p := &stubProvider{name: "newsapi", headlines: headlines("x")}
	svc := NewService([]Provider{p}, DefaultServiceConfig())
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := svc.FetchHeadlines(ctx, "ITC", "key"); len(got) != 0 {
		t.Errorf("Expected no headlines, got %d", len(got))
	}
	if p.calls != 0 {
		t.Error("Expected no provider call after cancellation")
	}
}

func TestClose_Idempotent(t *testing.T) {
	svc := NewService(nil, DefaultServiceConfig())
	svc.Close()
	svc.Close()
}
