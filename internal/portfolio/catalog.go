package portfolio

import "slices"

// PopularTickers is the default catalog, in display order.
var PopularTickers = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "META", "NVDA", "TSLA",
	"NFLX", "AMD", "INTC", "CRM", "ORCL", "ADBE", "PYPL", "DIS",
}

// Catalog is the fixed, ordered list of tickers offered for selection.
type Catalog struct {
	tickers []string
}

// NewCatalog keeps the first occurrence of every non-empty ticker, preserving order.
// An empty input yields the default catalog.
func NewCatalog(tickers []string) Catalog {
	if len(tickers) == 0 {
		tickers = PopularTickers
	}

	seen := make(map[string]struct{}, len(tickers))
	res := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		res = append(res, t)
	}

	return Catalog{tickers: res}
}

func DefaultCatalog() Catalog {
	return NewCatalog(PopularTickers)
}

// Tickers returns a copy of the catalog in display order.
func (c Catalog) Tickers() []string {
	return slices.Clone(c.tickers)
}

func (c Catalog) Len() int {
	return len(c.tickers)
}

func (c Catalog) Contains(ticker string) bool {
	return slices.Contains(c.tickers, ticker)
}
