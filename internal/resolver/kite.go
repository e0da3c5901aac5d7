package resolver

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// InstrumentLister is the slice of the Kite client used to build the table.
type InstrumentLister interface {
	GetInstrumentsByExchange(exchange string) (kiteconnect.Instruments, error)
}

// NewKiteClient returns an authenticated Kite Connect client.
func NewKiteClient(apiKey, accessToken string) (*kiteconnect.Client, error) {
	if apiKey == "" || accessToken == "" {
		return nil, errors.New("kite api key and access token are required")
	}
	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	return kc, nil
}

// ImportKiteInstruments converts the exchange's equity instruments into resolver
// table entries, suffixing each trading symbol.
func ImportKiteInstruments(lister InstrumentLister, exchange, suffix string) ([]Company, error) {
	instruments, err := lister.GetInstrumentsByExchange(exchange)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s instruments: %w", exchange, err)
	}
	if suffix == "" {
		suffix = DefaultSuffix
	}

	seen := make(map[string]bool, len(instruments))
	companies := make([]Company, 0, len(instruments))
	for _, inst := range instruments {
		if inst.InstrumentType != "EQ" || inst.Segment != exchange {
			continue
		}
		ts := strings.ToUpper(strings.TrimSpace(inst.Tradingsymbol))
		name := strings.TrimSpace(inst.Name)
		if ts == "" || name == "" || strings.Contains(ts, "-") {
			continue
		}
		symbol := ts + suffix
		if seen[symbol] {
			continue
		}
		seen[symbol] = true
		companies = append(companies, Company{Symbol: symbol, Name: name})
	}

	sort.Slice(companies, func(i, j int) bool { return companies[i].Symbol < companies[j].Symbol })
	return companies, nil
}

// ToTable converts imported companies into the config's symbol→name map.
func ToTable(companies []Company) map[string]string {
	table := make(map[string]string, len(companies))
	for _, c := range companies {
		table[c.Symbol] = c.Name
	}
	return table
}
