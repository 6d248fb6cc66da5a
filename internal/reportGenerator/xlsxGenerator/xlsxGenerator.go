package xlsxGenerator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/risk_analysis_bot/internal/model"
	"github.com/KotFed0t/risk_analysis_bot/utils"
	"github.com/xuri/excelize/v2"
)

const (
	summaryHeaderColor = "#cfe2f3"
	tickersHeaderColor = "#d9ead3"
)

type XLSXGenerator struct{}

func New() *XLSXGenerator {
	return &XLSXGenerator{}
}

// Generate renders the portfolio as a single-sheet workbook.
func (g *XLSXGenerator) Generate(ctx context.Context, report model.PortfolioReport) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("tickers", len(report.Tickers)))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err = g.fillSheet(f, report); err != nil {
		slog.Error("got error while filling sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	// drop the default "Sheet1"
	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XLSXGenerator) fillSheet(f *excelize.File, report model.PortfolioReport) error {
	sheet := report.PortfolioName

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	// summary
	if err = g.header(f, sheet, "A1", "B1", "Summary", summaryHeaderColor); err != nil {
		return err
	}

	_ = f.SetCellStr(sheet, "A2", "Portfolio")
	_ = f.SetCellStr(sheet, "B2", report.PortfolioName)
	_ = f.SetCellStr(sheet, "A3", "Tickers")
	_ = f.SetCellInt(sheet, "B3", int64(len(report.Tickers)))
	_ = f.SetCellStr(sheet, "A4", "Risk value")
	_ = f.SetCellInt(sheet, "B4", int64(report.Risk.Int()))
	_ = f.SetCellStr(sheet, "A5", "Generated at")
	_ = f.SetCellStr(sheet, "B5", report.GeneratedAt.UTC().Format(time.RFC3339))

	// tickers
	if err = g.header(f, sheet, "D1", "E1", "Tickers", tickersHeaderColor); err != nil {
		return err
	}

	_ = f.SetCellStr(sheet, "D2", "#")
	_ = f.SetCellStr(sheet, "E2", "ticker")

	for i, ticker := range report.Tickers {
		_ = f.SetCellInt(sheet, fmt.Sprintf("D%d", i+3), int64(i+1))
		_ = f.SetCellStr(sheet, fmt.Sprintf("E%d", i+3), ticker)
	}

	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "B", 24)

	return nil
}

func (g *XLSXGenerator) header(f *excelize.File, sheet, from, to, title, color string) error {
	if err := f.MergeCell(sheet, from, to); err != nil {
		return err
	}

	_ = f.SetCellStr(sheet, from, title)

	styleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheet, from, from, styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}

	return nil
}
