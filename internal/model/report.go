package model

import "time"

// PortfolioReport is what the export contains.
type PortfolioReport struct {
	PortfolioName string
	Tickers       []string
	Risk          RiskValue
	GeneratedAt   time.Time
}
