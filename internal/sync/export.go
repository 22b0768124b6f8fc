package sync

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"printbase/internal/storage"
)

// ExportInventoryXLSX writes the full inventory snapshot to a
// spreadsheet, one edition per row with print and distributor joined in.
func ExportInventoryXLSX(db *storage.DB, outputPath string) (int, error) {
	rows, err := db.ListEditionExport()
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"display_name", "print", "print_short", "edition_number", "total_editions",
		"distributor", "size", "frame_type", "variation",
		"printed", "sold", "settled", "stock_checked",
		"retail_price", "date_sold", "commission_pct", "date_in_gallery",
		"notes", "status_confidence",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.DisplayName)
		set(2, row.PrintName)
		set(3, row.PrintShortName)
		set(4, derefInt(row.EditionNumber))
		set(5, derefInt(row.TotalEditions))
		set(6, derefString(row.DistributorName))
		set(7, row.Size)
		set(8, row.FrameType)
		set(9, derefString(row.Variation))
		set(10, row.IsPrinted)
		set(11, row.IsSold)
		set(12, row.IsSettled)
		set(13, row.IsStockChecked)
		set(14, derefString(row.RetailPrice))
		set(15, derefString(row.DateSold))
		set(16, derefString(row.CommissionPct))
		set(17, derefString(row.DateInGallery))
		set(18, derefString(row.Notes))
		set(19, row.StatusConfidence)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return 0, err
	}
	if err := f.SaveAs(outputPath); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
