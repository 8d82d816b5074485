// Package export writes analysis results to Excel workbooks so rankings and
// run history can go straight into due diligence packages.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"dealdesk/internal/mcda"
	"dealdesk/internal/store"
)

var rankingHeaders = []string{
	"Rank", "Comparable", "Composite", "Net Rent", "TMI", "Clear Height (ft)",
	"Office %", "Distance (mi)", "Area Diff (sf)", "Year Built", "Class", "Parking/1000sf",
}

// RankingWorkbook writes ranked comparables to an xlsx workbook, one row per
// comparable, best first.
func RankingWorkbook(path, subject string, ranked []mcda.Ranked) error {
	if len(ranked) == 0 {
		return fmt.Errorf("no ranked comparables to export")
	}

	f := excelize.NewFile()
	sheetName := "Rankings"
	f.SetSheetName("Sheet1", sheetName)

	if err := writeHeaderRow(f, sheetName, rankingHeaders); err != nil {
		f.Close()
		return err
	}

	for rowIdx, r := range ranked {
		row := rowIdx + 2
		values := []any{
			r.Rank, r.Name, r.Composite, r.NetRent, r.TMI, r.ClearHeight,
			r.OfficePct, r.Distance, r.AreaDifference, r.YearBuilt, r.BuildingClass, r.ParkingRatio,
		}
		if err := writeRow(f, sheetName, row, values); err != nil {
			f.Close()
			return err
		}
	}

	if subject != "" {
		noteRow := len(ranked) + 3
		cell := fmt.Sprintf("A%d", noteRow)
		if err := f.SetCellValue(sheetName, cell, "Subject: "+subject); err != nil {
			f.Close()
			return fmt.Errorf("error writing subject note: %w", err)
		}
	}

	if err := fitColumns(f, sheetName, len(rankingHeaders)); err != nil {
		f.Close()
		return err
	}
	return saveAndClose(f, path)
}

var historyHeaders = []string{"ID", "Kind", "Source", "Summary", "Created"}

// HistoryWorkbook writes run history to an xlsx workbook, newest first as
// provided by the store listing.
func HistoryWorkbook(path string, runs []*store.Run) error {
	if len(runs) == 0 {
		return fmt.Errorf("no runs to export")
	}

	f := excelize.NewFile()
	sheetName := "Runs"
	f.SetSheetName("Sheet1", sheetName)

	if err := writeHeaderRow(f, sheetName, historyHeaders); err != nil {
		f.Close()
		return err
	}

	for rowIdx, r := range runs {
		row := rowIdx + 2
		values := []any{
			r.ID, string(r.Kind), r.Source, r.Summary,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writeRow(f, sheetName, row, values); err != nil {
			f.Close()
			return err
		}
	}

	if err := fitColumns(f, sheetName, len(historyHeaders)); err != nil {
		f.Close()
		return err
	}
	return saveAndClose(f, path)
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#DDEBF7"},
			Pattern: 1,
		},
	})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}

	for i, h := range headers {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("error converting column number to name: %w", err)
		}
		cell := colName + "1"
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("error writing header at cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("error applying style at cell %s: %w", cell, err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("error converting column number to name: %w", err)
		}
		cell := fmt.Sprintf("%s%d", colName, row)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("error writing value at cell %s: %w", cell, err)
		}
	}
	return nil
}

func fitColumns(f *excelize.File, sheet string, count int) error {
	for i := 0; i < count; i++ {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("error converting column number to name: %w", err)
		}
		if err := f.SetColWidth(sheet, colName, colName, 18); err != nil {
			return fmt.Errorf("error setting column width for %s: %w", colName, err)
		}
	}
	return nil
}

func saveAndClose(f *excelize.File, path string) error {
	if err := f.SaveAs(path); err != nil {
		f.Close()
		return fmt.Errorf("error saving workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing workbook: %w", err)
	}
	return nil
}
