package credit

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
)

const (
	// MaxSentimentAdjustment bounds the sentiment component in both directions.
	MaxSentimentAdjustment = 25
)

// Lexicon is the weighted keyword vocabulary used to score headlines.
type Lexicon struct {
	Positive       map[string]float64 `yaml:"positive" json:"positive"`
	Negative       map[string]float64 `yaml:"negative" json:"negative"`
	Scale          float64            `yaml:"scale" json:"scale"`
	LabelThreshold int                `yaml:"label_threshold" json:"label_threshold"`
}

// DefaultLexicon returns the built-in market vocabulary, every keyword weighted 1.
func DefaultLexicon() Lexicon {
	positive := []string{
		"profit", "growth", "deal", "upgrade", "surge", "gain", "rise",
		"expansion", "acquisition", "partnership", "success", "record",
		"strong", "robust", "positive", "bullish", "optimistic",
	}
	negative := []string{
		"loss", "fraud", "scam", "downgrade", "slump", "decline", "fall",
		"crash", "lawsuit", "investigation", "layoffs", "crisis", "warning",
		"deficit", "trouble", "concern", "risk", "scandal",
	}
	return Lexicon{
		Positive:       weighted(positive),
		Negative:       weighted(negative),
		Scale:          5,
		LabelThreshold: 4,
	}
}

func weighted(words []string) map[string]float64 {
	m := make(map[string]float64, len(words))
	for _, w := range words {
		m[w] = 1
	}
	return m
}

// Validate checks that the lexicon can produce a bounded, monotone score.
func (l Lexicon) Validate() error {
	if len(l.Positive) == 0 && len(l.Negative) == 0 {
		return fmt.Errorf("lexicon has no keywords")
	}
	if !(l.Scale > 0) || math.IsInf(l.Scale, 0) {
		return fmt.Errorf("lexicon scale must be positive, got %v", l.Scale)
	}
	if l.LabelThreshold <= 0 || l.LabelThreshold >= MaxSentimentAdjustment {
		return fmt.Errorf("label threshold must be in (0, %d), got %d", MaxSentimentAdjustment, l.LabelThreshold)
	}
	for name, words := range map[string]map[string]float64{"positive": l.Positive, "negative": l.Negative} {
		for kw, w := range words {
			if len(tokenize(strings.ToLower(kw))) == 0 {
				return fmt.Errorf("%s keyword %q has no word characters", name, kw)
			}
			if !(w > 0) || math.IsInf(w, 0) {
				return fmt.Errorf("%s keyword %q must have a positive weight, got %v", name, kw, w)
			}
		}
	}
	return nil
}

type keyword struct {
	words  []string
	weight float64
}

// SentimentScorer turns headlines into a bounded score adjustment.
type SentimentScorer struct {
	positive  []keyword
	negative  []keyword
	scale     float64
	threshold int
}

// NewSentimentScorer compiles a validated lexicon.
func NewSentimentScorer(lex Lexicon) (*SentimentScorer, error) {
	if err := lex.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lexicon: %w", err)
	}
	return &SentimentScorer{
		positive:  compile(lex.Positive),
		negative:  compile(lex.Negative),
		scale:     lex.Scale,
		threshold: lex.LabelThreshold,
	}, nil
}

var defaultSentimentScorer = mustSentimentScorer(DefaultLexicon())

func mustSentimentScorer(lex Lexicon) *SentimentScorer {
	s, err := NewSentimentScorer(lex)
	if err != nil {
		panic(err)
	}
	return s
}

// ScoreSentiment scores headlines with the default lexicon.
func ScoreSentiment(headlines []string) SentimentResult {
	return defaultSentimentScorer.Score(headlines)
}

// compile sorts keywords so that float summation order is stable.
func compile(m map[string]float64) []keyword {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]keyword, 0, len(keys))
	for _, k := range keys {
		words := tokenize(strings.ToLower(k))
		if len(words) == 0 {
			continue
		}
		out = append(out, keyword{words: words, weight: m[k]})
	}
	return out
}

// Score returns the sentiment of a headline batch. An empty batch has no signal.
func (s *SentimentScorer) Score(headlines []string) SentimentResult {
	if len(headlines) == 0 {
		return SentimentResult{Label: SentimentNoData}
	}

	var pos, neg float64
	for _, h := range headlines {
		tokens := tokenize(strings.ToLower(h))
		if len(tokens) == 0 {
			continue
		}
		pos += hits(tokens, s.positive)
		neg += hits(tokens, s.negative)
	}

	raw := math.Round((pos - neg) * s.scale)
	raw = math.Max(-MaxSentimentAdjustment, math.Min(MaxSentimentAdjustment, raw))
	adj := int(raw)

	label := SentimentNeutral
	switch {
	case adj > s.threshold:
		label = SentimentPositive
	case adj < -s.threshold:
		label = SentimentNegative
	}

	return SentimentResult{
		Adjustment:    adj,
		Label:         label,
		HeadlineCount: len(headlines),
		PositiveHits:  pos,
		NegativeHits:  neg,
	}
}

// hits sums the weights of every keyword occurrence in tokens. The last word of
// a keyword matches as a prefix so inflections ("profits", "downgraded") count.
func hits(tokens []string, keywords []keyword) float64 {
	var total float64
	for _, kw := range keywords {
		n := len(kw.words)
		for i := 0; i+n <= len(tokens); i++ {
			if matchAt(tokens[i:i+n], kw.words) {
				total += kw.weight
			}
		}
	}
	return total
}

func matchAt(tokens, words []string) bool {
	last := len(words) - 1
	for j := 0; j < last; j++ {
		if tokens[j] != words[j] {
			return false
		}
	}
	return strings.HasPrefix(tokens[last], words[last])
}

// tokenize splits text into runs of letters and digits.
func tokenize(text string) []string {
	var words []string
	var currentWord strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			currentWord.WriteRune(r)
		} else if currentWord.Len() > 0 {
			words = append(words, currentWord.String())
			currentWord.Reset()
		}
	}

	if currentWord.Len() > 0 {
		words = append(words, currentWord.String())
	}

	return words
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
