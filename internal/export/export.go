// Package export writes rendered list rows to spreadsheet workbooks.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"

	"github.com/zjrosen/propdesk/internal/log"
	"github.com/zjrosen/propdesk/internal/render"
)

const maxSheetName = 31

// WriteFile writes the workbook to path, creating parent directories.
func WriteFile(path, sheet string, headers []string, rows []render.Row) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	f, err := os.Create(path) //nolint:gosec // path is built from the configured export dir
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := WriteXLSX(f, sheet, headers, rows); err != nil {
		return err
	}
	log.Info(log.CatExport, "Wrote workbook", "path", path, "rows", len(rows))
	return nil
}

// WriteXLSX writes a single-sheet workbook with a bold header row followed
// by one row per rendered row. Cells with a Detail (the full list behind a
// truncated reference cell) export the Detail; skeleton cells export empty.
func WriteXLSX(w io.Writer, sheet string, headers []string, rows []render.Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := sheetName(sheet)
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}

	for r, row := range rows {
		values := make([]any, len(row.Cells))
		for c, cell := range row.Cells {
			text := exportText(cell)
			values[c] = text
			if c < len(widths) {
				widths[c] = max(widths[c], runewidth.StringWidth(text))
			}
		}
		anchor, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, anchor, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", r+1, err)
		}
	}

	if err := styleHeader(f, name, len(headers)); err != nil {
		return err
	}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, col, col, float64(min(width+2, 60))); err != nil {
			return fmt.Errorf("sizing column %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		log.ErrorErr(log.CatExport, "Failed to write workbook", err, "sheet", name)
		return fmt.Errorf("writing workbook: %w", err)
	}
	log.Debug(log.CatExport, "Workbook written", "sheet", name, "rows", len(rows))
	return nil
}

func styleHeader(f *excelize.File, sheet string, columns int) error {
	if columns == 0 {
		return nil
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func exportText(cell render.Cell) string {
	switch {
	case cell.State == render.Skeleton:
		return ""
	case cell.Detail != "":
		return cell.Detail
	default:
		return cell.Text
	}
}

// sheetName trims name to the workbook limit and substitutes a default for
// an empty name.
func sheetName(name string) string {
	if name == "" {
		return "Sheet1"
	}
	runes := []rune(name)
	if len(runes) > maxSheetName {
		runes = runes[:maxSheetName]
	}
	return string(runes)
}
