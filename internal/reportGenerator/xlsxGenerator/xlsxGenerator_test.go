package xlsxGenerator

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/KotFed0t/risk_analysis_bot/internal/model"
	"github.com/xuri/excelize/v2"
)

func TestGenerate(t *testing.T) {
	report := model.PortfolioReport{
		PortfolioName: "Portfolio 1",
		Tickers:       []string{"AAPL", "MSFT", "NVDA"},
		Risk:          72,
		GeneratedAt:   time.Date(2025, time.March, 3, 10, 30, 0, 0, time.UTC),
	}

	data, ext, err := New().Generate(context.Background(), report)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if ext != ".xlsx" {
		t.Errorf("extension = %q, want .xlsx", ext)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Portfolio 1" {
		t.Fatalf("sheets = %v, want [Portfolio 1]", sheets)
	}

	cells := map[string]string{
		"A1": "Summary",
		"B2": "Portfolio 1",
		"B3": "3",
		"B4": "72",
		"B5": "2025-03-03T10:30:00Z",
		"D1": "Tickers",
		"E3": "AAPL",
		"E4": "MSFT",
		"E5": "NVDA",
		"D5": "3",
	}
	for cell, want := range cells {
		got, err := f.GetCellValue("Portfolio 1", cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) error = %v", cell, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
}

func TestGenerate_EmptyPortfolio(t *testing.T) {
	report := model.PortfolioReport{PortfolioName: "Portfolio 1", Risk: model.DefaultRisk}

	data, _, err := New().Generate(context.Background(), report)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	got, _ := f.GetCellValue("Portfolio 1", "B3")
	if got != "0" {
		t.Errorf("ticker count = %q, want 0", got)
	}
	got, _ = f.GetCellValue("Portfolio 1", "E3")
	if got != "" {
		t.Errorf("E3 = %q, want empty", got)
	}
}
