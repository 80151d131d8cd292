package store

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"nsicli/internal/index"
)

// sheetName is the workbook sheet holding the index table.
const sheetName = "Index"

func (s *FileStore) loadXLSX() (index.Series, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening index workbook %s: %w", s.path, err)
	}
	defer f.Close()

	records, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("index workbook %s: reading sheet %q: %w", s.path, sheetName, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	if err := checkHeader(records[0]); err != nil {
		return nil, fmt.Errorf("index workbook %s: %w", s.path, err)
	}

	rows := make(index.Series, 0, len(records)-1)
	for i, record := range records[1:] {
		// excelize drops trailing empty cells; pad back to full width
		for len(record) < len(columns) {
			record = append(record, "")
		}
		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("index workbook %s row %d: %w", s.path, i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func writeXLSX(path string, rows index.Series) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming index sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, name := range columns {
		header[i] = name
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("addressing row %d: %w", i+2, err)
		}
		fields := formatRow(row)
		values := make([]interface{}, len(fields))
		for j, field := range fields {
			values[j] = field
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("writing row %s: %w", row.Date.Format("2006-01-02"), err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving index workbook: %w", err)
	}
	return nil
}
