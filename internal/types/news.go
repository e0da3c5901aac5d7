package types

import (
	"strings"
	"time"
)

// Headline is one news item about a company.
type Headline struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// Text is the title and description joined, the text sentiment is read from.
func (h Headline) Text() string {
	return strings.TrimSpace(h.Title + " " + h.Description)
}

// Texts returns the scoring text of each headline.
func Texts(headlines []Headline) []string {
	out := make([]string, 0, len(headlines))
	for _, h := range headlines {
		out = append(out, h.Text())
	}
	return out
}
