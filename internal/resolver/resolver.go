package resolver

import (
	"sort"
	"strings"
)

// DefaultSuffix is the Yahoo-style suffix for NSE listings.
const DefaultSuffix = ".NS"

// Company is one entry of the resolver table.
type Company struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Name   string `yaml:"name" json:"name"`
}

// DefaultCompanies returns the built-in NSE large-cap table keyed by symbol.
func DefaultCompanies() map[string]string {
	return map[string]string{
		"RELIANCE.NS":   "Reliance Industries",
		"TCS.NS":        "Tata Consultancy Services",
		"HDFCBANK.NS":   "HDFC Bank",
		"INFY.NS":       "Infosys",
		"ICICIBANK.NS":  "ICICI Bank",
		"HINDUNILVR.NS": "Hindustan Unilever",
		"ITC.NS":        "ITC Limited",
		"SBIN.NS":       "State Bank of India",
		"BHARTIARTL.NS": "Bharti Airtel",
		"KOTAKBANK.NS":  "Kotak Mahindra Bank",
		"LT.NS":         "Larsen & Toubro",
		"HCLTECH.NS":    "HCL Technologies",
		"ASIANPAINT.NS": "Asian Paints",
		"MARUTI.NS":     "Maruti Suzuki",
		"TITAN.NS":      "Titan Company",
	}
}

// Resolver maps user input (symbol, bare ticker, company name or alias) to a
// canonical exchange symbol. It is read-only after construction.
type Resolver struct {
	suffix    string
	companies map[string]Company
	lookup    map[string]string
}

// New builds a resolver from a symbol→name table and alias→symbol overrides.
func New(companies map[string]string, aliases map[string]string, suffix string) *Resolver {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	r := &Resolver{
		suffix:    strings.ToUpper(suffix),
		companies: make(map[string]Company, len(companies)),
		lookup:    make(map[string]string, len(companies)*3),
	}

	symbols := make([]string, 0, len(companies))
	for symbol := range companies {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	// Symbols win over names when keys collide.
	for _, symbol := range symbols {
		canonical := strings.ToUpper(strings.TrimSpace(symbol))
		r.companies[canonical] = Company{Symbol: canonical, Name: strings.TrimSpace(companies[symbol])}
		r.add(canonical, canonical)
		r.add(r.bare(canonical), canonical)
	}
	for _, symbol := range symbols {
		canonical := strings.ToUpper(strings.TrimSpace(symbol))
		name := r.companies[canonical].Name
		r.add(name, canonical)
		r.add(trimCorporateSuffix(name), canonical)
	}

	aliasKeys := make([]string, 0, len(aliases))
	for alias := range aliases {
		aliasKeys = append(aliasKeys, alias)
	}
	sort.Strings(aliasKeys)
	for _, alias := range aliasKeys {
		target := strings.ToUpper(strings.TrimSpace(aliases[alias]))
		if _, ok := r.companies[target]; ok {
			r.lookup[normalize(alias)] = target
		}
	}
	return r
}

func (r *Resolver) add(key, symbol string) {
	k := normalize(key)
	if k == "" {
		return
	}
	if _, exists := r.lookup[k]; !exists {
		r.lookup[k] = symbol
	}
}

// Resolve returns the canonical symbol for input, or input unchanged when unknown.
func (r *Resolver) Resolve(input string) string {
	if symbol, ok := r.lookup[normalize(input)]; ok {
		return symbol
	}
	return input
}

// Known reports whether symbol is in the table.
func (r *Resolver) Known(symbol string) bool {
	_, ok := r.companies[strings.ToUpper(strings.TrimSpace(symbol))]
	return ok
}

// CompanyName returns the table name for symbol, or the symbol without its
// exchange suffix when the symbol is not in the table.
func (r *Resolver) CompanyName(symbol string) string {
	if c, ok := r.companies[strings.ToUpper(strings.TrimSpace(symbol))]; ok && c.Name != "" {
		return c.Name
	}
	return r.bare(strings.TrimSpace(symbol))
}

// Companies lists the table sorted by symbol.
func (r *Resolver) Companies() []Company {
	out := make([]Company, 0, len(r.companies))
	for _, c := range r.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Suffix returns the exchange suffix appended to bare tickers.
func (r *Resolver) Suffix() string {
	return r.suffix
}

func (r *Resolver) bare(symbol string) string {
	if i := strings.LastIndex(symbol, "."); i > 0 {
		return symbol[:i]
	}
	return symbol
}

// HasSuffix reports whether symbol ends in one of the allowed exchange suffixes.
func HasSuffix(symbol string, suffixes []string) bool {
	upper := strings.ToUpper(strings.TrimSpace(symbol))
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(upper, strings.ToUpper(s)) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

func trimCorporateSuffix(name string) string {
	n := strings.TrimSpace(name)
	for _, suffix := range []string{" Limited", " Ltd.", " Ltd"} {
		if len(n) > len(suffix) && strings.EqualFold(n[len(n)-len(suffix):], suffix) {
			return strings.TrimSpace(n[:len(n)-len(suffix)])
		}
	}
	return n
}
