package model

import "github.com/KotFed0t/risk_analysis_bot/internal/portfolio"

type CatalogItem struct {
	Ticker   string
	Selected bool
}

// Dashboard is a read-only snapshot of a session prepared for rendering.
type Dashboard struct {
	State   State
	Screen  Screen
	Tickers []string // sorted
	Count   int
	Risk    RiskValue
	Catalog []CatalogItem
}

func NewDashboard(s Session, catalog portfolio.Catalog) Dashboard {
	tickers := catalog.Tickers()
	items := make([]CatalogItem, 0, len(tickers))
	for _, t := range tickers {
		items = append(items, CatalogItem{Ticker: t, Selected: s.Selection.Contains(t)})
	}

	selected := s.Selection.SortedList()

	return Dashboard{
		State:   s.State,
		Screen:  s.Screen,
		Tickers: selected,
		Count:   len(selected),
		Risk:    s.Risk,
		Catalog: items,
	}
}
