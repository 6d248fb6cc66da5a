package telebotConverter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KotFed0t/risk_analysis_bot/internal/model"
	"github.com/KotFed0t/risk_analysis_bot/internal/model/tg/tgCallback"
	tele "gopkg.in/telebot.v4"
)

const (
	title           = "📈 Risk AI-nalysis"
	portfolioName   = "Portfolio 1"
	emptyPortfolio  = "No tickers added yet"
	tickersPerRow   = 3
	removeBtnPerRow = 3
	riskBarCells    = 10
)

// Screen renders the dashboard as the screen it points at.
func Screen(d model.Dashboard) (text string, markup *tele.ReplyMarkup) {
	if d.Screen == model.ScreenPortfolio {
		return PortfolioScreen(d)
	}
	return HomeScreen(d)
}

func HomeScreen(d model.Dashboard) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	sb.WriteString(title + "\n\n")
	sb.WriteString("💼 Set your Portfolio\n")
	writeTickers(&sb, d)

	sb.WriteString("\n⭐ Popular Tickers\n\n")

	sb.WriteString(fmt.Sprintf("🎯 Risk value: %d/100\n", d.Risk.Int()))
	sb.WriteString(RiskBar(d.Risk) + "\n\n")

	sb.WriteString("📊 Visualized Risk\n")
	sb.WriteString("[Placeholder graph]\n")

	rows := catalogRows(markup, d, model.ScreenHome)
	rows = append(rows,
		riskRow(markup),
		markup.Row(markup.Data("✏️ Set risk", tgCallback.AskRisk)),
		markup.Row(
			markup.Data("💼 Portfolio", tgCallback.ShowPortfolio),
			markup.Data("📄 Export", tgCallback.Export),
		),
	)
	markup.Inline(rows...)

	return sb.String(), markup
}

func PortfolioScreen(d model.Dashboard) (text string, markup *tele.ReplyMarkup) {
	markup = &tele.ReplyMarkup{}
	var sb strings.Builder

	sb.WriteString("💼 Set your Portfolio\n")
	writeTickers(&sb, d)
	if d.Count > 0 {
		sb.WriteString("\nTap ✖ to remove a ticker.\n")
	}
	sb.WriteString("\n⭐ Popular Tickers\n")

	rows := make([]tele.Row, 0)

	// tickers that do not fit in callback data are removed with /remove
	removeBtns := make([]tele.Btn, 0, len(d.Tickers))
	for _, ticker := range d.Tickers {
		if !tgCallback.ValidTicker(ticker) {
			continue
		}
		removeBtns = append(removeBtns, markup.Data("✖ "+ticker, tgCallback.RemoveTicker, ticker))
	}
	rows = append(rows, markup.Split(removeBtnPerRow, removeBtns)...)

	rows = append(rows, catalogRows(markup, d, model.ScreenPortfolio)...)

	navigation := []tele.Btn{markup.Data("⌨️ Add ticker", tgCallback.AskTicker)}
	if d.Count > 0 {
		navigation = append(navigation, markup.Data("🗑 Clear", tgCallback.ClearPortfolio))
	}
	rows = append(rows,
		markup.Row(navigation...),
		markup.Row(markup.Data("🏠 Home", tgCallback.ShowHome)),
	)
	markup.Inline(rows...)

	return sb.String(), markup
}

// RiskBar draws the risk value as ten cells, one per started tenth.
func RiskBar(risk model.RiskValue) string {
	filled := (risk.Int() + riskBarCells - 1) / riskBarCells
	return strings.Repeat("🟥", filled) + strings.Repeat("⬜", riskBarCells-filled)
}

func writeTickers(sb *strings.Builder, d model.Dashboard) {
	sb.WriteString(fmt.Sprintf("%s — %d %s\n", portfolioName, d.Count, plural(d.Count, "ticker", "tickers")))
	if d.Count == 0 {
		sb.WriteString(emptyPortfolio + "\n")
		return
	}
	for _, ticker := range d.Tickers {
		sb.WriteString("  ▸ " + ticker + "\n")
	}
}

func catalogRows(markup *tele.ReplyMarkup, d model.Dashboard, screen model.Screen) []tele.Row {
	btns := make([]tele.Btn, 0, len(d.Catalog))
	for _, item := range d.Catalog {
		if !tgCallback.ValidTicker(item.Ticker) {
			continue
		}
		label := "➕ " + item.Ticker
		if item.Selected {
			label = "➖ " + item.Ticker
		}
		btns = append(btns, markup.Data(label, tgCallback.ToggleTicker, string(screen), item.Ticker))
	}
	return markup.Split(tickersPerRow, btns)
}

func riskRow(markup *tele.ReplyMarkup) tele.Row {
	btns := make([]tele.Btn, 0, len(tgCallback.RiskSteps))
	for _, step := range tgCallback.RiskSteps {
		label := strconv.Itoa(step)
		if step > 0 {
			label = "+" + label
		}
		btns = append(btns, markup.Data(label, tgCallback.RiskShift, strconv.Itoa(step)))
	}
	return markup.Row(btns...)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
