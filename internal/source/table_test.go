package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeXLSX(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	path := filepath.Join(t.TempDir(), "batch.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeCSV(t, "Name,Commission,Notes\nKendalls,40%,\"note, with comma\"\nDirect,0%\n")

	rows, err := ReadTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d", len(rows))
	}
	if rows[0]["Name"] != "Kendalls" || rows[0]["Notes"] != "note, with comma" {
		t.Fatalf("row 0 = %v", rows[0])
	}
	// ragged row pads the missing trailing cell
	if v, ok := rows[1]["Notes"]; !ok || v != "" {
		t.Fatalf("row 1 = %v", rows[1])
	}
}

func TestReadCSVStripsBOMHeader(t *testing.T) {
	path := writeCSV(t, "\uFEFFName,Commission\nKendalls,40%\n")

	rows, err := ReadTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0]["Name"] != "Kendalls" {
		t.Fatalf("row 0 = %v", rows[0])
	}
}

func TestReadXLSX(t *testing.T) {
	path := writeXLSX(t, [][]any{
		{"Print - Edition", "Size", "Retail Price"},
		{"Quarr - 3", "Large", 150},
		{"Seagrove - 1", "small", "£85"},
	})

	rows, err := ReadTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d", len(rows))
	}
	if rows[0]["Print - Edition"] != "Quarr - 3" || rows[0]["Retail Price"] != "150" {
		t.Fatalf("row 0 = %v", rows[0])
	}
	if rows[1]["Size"] != "small" {
		t.Fatalf("row 1 = %v", rows[1])
	}
}

func TestReadTableUnsupportedFormat(t *testing.T) {
	if _, err := ReadTable("batch.json"); err == nil {
		t.Fatal("expected error")
	}
}

func TestHashFilesIsStable(t *testing.T) {
	a := writeCSV(t, "Name\nKendalls\n")
	b := writeCSV(t, "Name\nDirect\n")

	h1, err := HashFiles(a, b)
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashFiles(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if h1 != h2 {
		t.Fatal("hash not stable")
	}

	h3, err := HashFiles(b, a)
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h3 {
		t.Fatal("order should change the digest")
	}
}
