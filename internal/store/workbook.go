package store

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// Workbook is a GridSet backed by a single .xlsx file, one sheet per
// table. It is the production persistence medium: the same spreadsheet a
// teacher can open, inspect, and hand-edit.
type Workbook struct {
	file *excelize.File
	path string
}

// OpenWorkbook opens the workbook at path, creating the file when it
// does not exist yet.
func OpenWorkbook(path string) (*Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f := excelize.NewFile()
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("failed to create workbook %s: %w", path, err)
		}
		return &Workbook{file: f, path: path}, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &Workbook{file: f, path: path}, nil
}

// EnsureTables creates any missing sheets with their header row. Safe to
// run on every startup.
func (w *Workbook) EnsureTables(tables []TableSchema) error {
	changed := false
	for _, t := range tables {
		idx, err := w.file.GetSheetIndex(t.Name)
		if err != nil {
			return fmt.Errorf("failed to inspect sheet %s: %w", t.Name, err)
		}
		if idx >= 0 {
			continue
		}
		if _, err := w.file.NewSheet(t.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", t.Name, err)
		}
		header := make([]interface{}, len(t.Header))
		for i, h := range t.Header {
			header[i] = h
		}
		if err := w.file.SetSheetRow(t.Name, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header of %s: %w", t.Name, err)
		}
		changed = true
	}
	// Drop excelize's default sheet once real tables exist.
	if idx, err := w.file.GetSheetIndex("Sheet1"); err == nil && idx >= 0 && len(w.file.GetSheetList()) > 1 {
		if err := w.file.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to delete default sheet: %w", err)
		}
		changed = true
	}
	if changed {
		return w.save()
	}
	return nil
}

// Close releases the underlying file handle.
func (w *Workbook) Close() error { return w.file.Close() }

func (w *Workbook) save() error {
	if err := w.file.Save(); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.path, err)
	}
	return nil
}

// Grid returns the grid over one sheet.
func (w *Workbook) Grid(table string) (Grid, error) {
	idx, err := w.file.GetSheetIndex(table)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect sheet %s: %w", table, err)
	}
	if idx < 0 {
		return nil, &ConfigError{Table: table, Reason: "no such sheet"}
	}
	return &sheetGrid{wb: w, sheet: table}, nil
}

// sheetGrid adapts one workbook sheet to the Grid interface. Every
// mutation saves the workbook; writes against the grid are rare enough
// that durability wins over write batching here.
type sheetGrid struct {
	wb    *Workbook
	sheet string
}

func (g *sheetGrid) Values() ([][]string, error) {
	rows, err := g.wb.file.GetRows(g.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", g.sheet, err)
	}
	return rows, nil
}

func (g *sheetGrid) setRow(index int, cells []string) error {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	cell := fmt.Sprintf("A%d", index+1)
	if err := g.wb.file.SetSheetRow(g.sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", index, g.sheet, err)
	}
	return nil
}

func (g *sheetGrid) SetRow(index int, cells []string) error {
	if err := g.setRow(index, cells); err != nil {
		return err
	}
	return g.wb.save()
}

func (g *sheetGrid) AppendRow(cells []string) error {
	rows, err := g.wb.file.GetRows(g.sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", g.sheet, err)
	}
	if err := g.setRow(len(rows), cells); err != nil {
		return err
	}
	return g.wb.save()
}

func (g *sheetGrid) InsertRowsAfter(index int, rows [][]string) error {
	// excelize inserts before a 1-based row number.
	if err := g.wb.file.InsertRows(g.sheet, index+2, len(rows)); err != nil {
		return fmt.Errorf("failed to insert rows into %s: %w", g.sheet, err)
	}
	for i, cells := range rows {
		if err := g.setRow(index+1+i, cells); err != nil {
			return err
		}
	}
	return g.wb.save()
}

func (g *sheetGrid) DeleteRow(index int) error {
	if err := g.wb.file.RemoveRow(g.sheet, index+1); err != nil {
		return fmt.Errorf("failed to delete row %d of %s: %w", index, g.sheet, err)
	}
	return g.wb.save()
}
