package news

import (
	"context"
	"strings"
	"sync"
	"time"

	"fin-pulse-engine/internal/logger"
	"fin-pulse-engine/internal/types"
)

// Service fetches headlines from its providers in order and caches the first
// non-empty result per company.
type Service struct {
	providers []Provider
	cache     *headlineCache
	cfg       *ServiceConfig
}

// ServiceConfig configures the headline service
type ServiceConfig struct {
	MaxHeadlines  int           // Headlines requested per company
	CacheDuration time.Duration // How long a result is reused
	Language      string        // Two-letter article language
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxHeadlines:  5,
		CacheDuration: 10 * time.Minute,
		Language:      "en",
	}
}

type headlineCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

type cacheEntry struct {
	headlines []types.Headline
	timestamp time.Time
}

func newHeadlineCache(ttl time.Duration) *headlineCache {
	cache := &headlineCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
		now:  time.Now,
		stop: make(chan struct{}),
	}
	if ttl > 0 {
		go cache.cleanupLoop(ttl)
	}
	return cache
}

func (c *headlineCache) get(key string) ([]types.Headline, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[key]
	if !exists || c.now().Sub(entry.timestamp) > c.ttl {
		return nil, false
	}
	return append([]types.Headline(nil), entry.headlines...), true
}

func (c *headlineCache) set(key string, headlines []types.Headline) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &cacheEntry{
		headlines: append([]types.Headline(nil), headlines...),
		timestamp: c.now(),
	}
}

func (c *headlineCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *headlineCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, key)
		}
	}
}

func (c *headlineCache) close() {
	c.once.Do(func() { close(c.stop) })
}

// NewService creates a headline service over providers in priority order.
func NewService(providers []Provider, cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	if cfg.MaxHeadlines <= 0 {
		cfg.MaxHeadlines = DefaultServiceConfig().MaxHeadlines
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &Service{
		providers: providers,
		cache:     newHeadlineCache(cfg.CacheDuration),
		cfg:       cfg,
	}
}

// FetchHeadlines returns up to MaxHeadlines recent headlines about company.
// Without a configured API key no provider is asked, keyless ones included.
// It never fails: provider errors are logged and an empty slice comes back.
func (s *Service) FetchHeadlines(ctx context.Context, company, apiKey string) []types.Headline {
	company = strings.TrimSpace(company)
	if company == "" {
		return []types.Headline{}
	}
	if !KeyConfigured(apiKey) {
		logger.Debug(ctx, "No news API key configured, skipping headlines", "company", company)
		return []types.Headline{}
	}

	key := strings.ToLower(company)
	if cached, ok := s.cache.get(key); ok {
		logger.Debug(ctx, "Using cached headlines", "company", company, "count", len(cached))
		return cached
	}

	q := Query{
		Company:  company,
		APIKey:   apiKey,
		Limit:    s.cfg.MaxHeadlines,
		Language: s.cfg.Language,
	}
	for _, p := range s.providers {
		if err := ctx.Err(); err != nil {
			logger.Warn(ctx, "Headline fetch cancelled", "company", company, "error", err)
			break
		}

		got, err := p.Headlines(ctx, q)
		if err != nil {
			logger.Warn(ctx, "Headline provider failed", "provider", p.Name(), "company", company, "error", err)
			continue
		}
		if len(got) == 0 {
			logger.Debug(ctx, "Headline provider returned nothing", "provider", p.Name(), "company", company)
			continue
		}
		if len(got) > s.cfg.MaxHeadlines {
			got = got[:s.cfg.MaxHeadlines]
		}

		logger.Info(ctx, "Fetched headlines", "provider", p.Name(), "company", company, "count", len(got))
		s.cache.set(key, got)
		return got
	}

	return []types.Headline{}
}

// Close stops the cache janitor.
func (s *Service) Close() {
	s.cache.close()
}
