package news

import (
	"context"
	"strings"

	"fin-pulse-engine/internal/types"
)

// Query is what a provider is asked for.
type Query struct {
	Company  string
	APIKey   string
	Limit    int
	Language string
}

// Provider is one upstream headline source.
type Provider interface {
	Name() string
	Headlines(ctx context.Context, q Query) ([]types.Headline, error)
}

// KeyConfigured reports whether apiKey looks like a real key. Blank keys and
// values containing "placeholder" are rejected.
func KeyConfigured(apiKey string) bool {
	k := strings.ToLower(strings.TrimSpace(apiKey))
	return k != "" && !strings.Contains(k, "placeholder")
}

// companyKeywords returns the lower-cased forms of a company name that count
// as a mention: the full name and the name without its corporate suffix.
func companyKeywords(company string) []string {
	name := strings.ToLower(strings.Join(strings.Fields(company), " "))
	if name == "" {
		return nil
	}
	keywords := []string{name}
	for _, suffix := range []string{" limited", " ltd.", " ltd"} {
		if trimmed := strings.TrimSuffix(name, suffix); trimmed != name && trimmed != "" {
			keywords = append(keywords, trimmed)
			break
		}
	}
	return keywords
}

func mentions(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
