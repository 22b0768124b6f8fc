package storage

import "database/sql"

// EditionExportRow is one flattened inventory row with the print and
// distributor names joined in, shaped for spreadsheet export.
type EditionExportRow struct {
	DisplayName      string
	PrintName        string
	PrintShortName   string
	EditionNumber    *int
	TotalEditions    *int
	DistributorName  *string
	Size             string
	FrameType        string
	Variation        *string
	IsPrinted        bool
	IsSold           bool
	IsSettled        bool
	IsStockChecked   bool
	RetailPrice      *string
	DateSold         *string
	CommissionPct    *string
	DateInGallery    *string
	Notes            *string
	StatusConfidence string
}

func (d *DB) ListEditionExport() ([]EditionExportRow, error) {
	rows, err := d.conn.Query(`
SELECT e.display_name, p.name, p.short_name, e.edition_number, p.total_editions,
       dist.name,
       e.size, e.frame_type, e.variation,
       e.is_printed, e.is_sold, e.is_settled, e.is_stock_checked,
       e.retail_price, e.date_sold, e.commission_percentage, e.date_in_gallery,
       e.notes, e.status_confidence
FROM editions e
JOIN prints p ON p.id = e.print_id
LEFT JOIN distributors dist ON dist.id = e.distributor_id
ORDER BY p.name, e.edition_number
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EditionExportRow
	for rows.Next() {
		var r EditionExportRow
		var distName sql.NullString
		var printed, sold, settled, stockChecked int
		if err := rows.Scan(
			&r.DisplayName, &r.PrintName, &r.PrintShortName, &r.EditionNumber, &r.TotalEditions,
			&distName,
			&r.Size, &r.FrameType, &r.Variation,
			&printed, &sold, &settled, &stockChecked,
			&r.RetailPrice, &r.DateSold, &r.CommissionPct, &r.DateInGallery,
			&r.Notes, &r.StatusConfidence,
		); err != nil {
			return nil, err
		}
		if distName.Valid {
			r.DistributorName = &distName.String
		}
		r.IsPrinted = printed == 1
		r.IsSold = sold == 1
		r.IsSettled = settled == 1
		r.IsStockChecked = stockChecked == 1
		out = append(out, r)
	}
	return out, rows.Err()
}
