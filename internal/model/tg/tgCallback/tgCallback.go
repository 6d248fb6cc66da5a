package tgCallback

import "strings"

// Callback button uniques. Payload fields follow the unique separated by "|".
const (
	ToggleTicker   string = "toggle_ticker" // toggle_ticker|<screen>|<ticker>
	RemoveTicker   string = "remove_ticker" // remove_ticker|<ticker>
	RiskShift      string = "risk_shift"    // risk_shift|<delta>
	ShowHome       string = "show_home"
	ShowPortfolio  string = "show_portfolio"
	AskTicker      string = "ask_ticker"
	AskRisk        string = "ask_risk"
	ClearPortfolio string = "clear_portfolio"
	Export         string = "export"
)

// RiskSteps are the deltas offered by the risk stepper buttons.
var RiskSteps = []int{-10, -1, 1, 10}

const (
	// MaxDataLen is the Telegram limit on callback data, "\f<unique>|<payload>" included.
	MaxDataLen = 64
	// MaxTickerLen keeps the longest button, toggle_ticker|portfolio|<ticker>, within MaxDataLen.
	MaxTickerLen = 32

	separator = "|"
)

// ValidTicker reports whether ticker can travel as a single callback payload field.
func ValidTicker(ticker string) bool {
	return ticker != "" && len(ticker) <= MaxTickerLen && !strings.Contains(ticker, separator)
}
