// Package source reads tabular import batches from spreadsheet
// exports. Both CSV and XLSX are supported; rows come back keyed by
// their column headers.
package source

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"printbase/internal/clean"
)

func ReadTable(path string) ([]clean.Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx", ".xls":
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported batch format: %s", path)
	}
}

func readCSV(path string) ([]clean.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	header = cleanHeader(header)

	var rows []clean.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, toRow(header, record))
	}
	return rows, nil
}

// readXLSX reads the first sheet; the batches are single-sheet
// exports with the header on row one.
func readXLSX(path string) ([]clean.Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	header := cleanHeader(raw[0])
	rows := make([]clean.Row, 0, len(raw)-1)
	for _, record := range raw[1:] {
		rows = append(rows, toRow(header, record))
	}
	return rows, nil
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	}
	return out
}

func toRow(header, record []string) clean.Row {
	row := make(clean.Row, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		if i < len(record) {
			row[name] = record[i]
		} else {
			row[name] = ""
		}
	}
	return row
}

// HashFiles produces a stable digest over a set of source files, used
// to recognize repeated imports of identical batches.
func HashFiles(paths ...string) (string, error) {
	h := sha256.New()
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(h, f); err != nil {
			_ = f.Close()
			return "", err
		}
		_ = f.Close()
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
