// Package workbook reads master schedules and writes reconciliation results
// as Excel workbooks.
package workbook

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/reconcile/internal/core"
)

// ErrEmptyMaster is returned for a master file without a header row.
var ErrEmptyMaster = errors.New("empty file: master schedule has no header row")

// MasterExtensions are the file types LoadMaster accepts.
var MasterExtensions = []string{".xlsx", ".xlsm", ".csv"}

// LoadMaster reads a master schedule, choosing the format from the file name.
// sheet selects a workbook sheet; empty means the first one.
func LoadMaster(name string, r io.Reader, sheet string) (*core.Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ReadMaster(r, sheet)
	case ".csv":
		return ReadMasterCSV(r)
	default:
		return nil, fmt.Errorf("unsupported master file %q: want one of %s",
			name, strings.Join(MasterExtensions, ", "))
	}
}

// ReadMaster reads the master table from an xlsx workbook.
//
// Cells are read raw, so date cells arrive as Excel serial numbers and
// identifiers keep their stored digits; the engine handles both.
func ReadMaster(r io.Reader, sheet string) (*core.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyMaster
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return tableFromRows(rows)
}

// ReadMasterCSV reads the master table from CSV.
func ReadMasterCSV(r io.Reader) (*core.Table, error) {
	cr := csv.NewReader(core.NewTextReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read master csv: %w", err)
	}
	return tableFromRows(rows)
}

// tableFromRows uses the first non-blank row as the header.
func tableFromRows(rows [][]string) (*core.Table, error) {
	for len(rows) > 0 && blank(rows[0]) {
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, ErrEmptyMaster
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		data = append(data, row)
	}
	return core.NewTable(header, data), nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
