package clean

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"printbase/internal"
)

// reEditionSplit splits a combined "Name - Number" display cell. The
// number may be negative: negative edition numbers exist in the
// historical data and are carried through as-is, not rejected.
var reEditionSplit = regexp.MustCompile(`^(.+?)\s*-\s*(-?\d+)$`)

// RowCleaner turns raw header-keyed spreadsheet rows into typed
// records. Every visible transformation (name change, default applied,
// date correction) is pushed into the attached report; the normalizers
// themselves stay pure.
type RowCleaner struct {
	Report *Report
}

func NewRowCleaner(report *Report) *RowCleaner {
	return &RowCleaner{Report: report}
}

// Row is one raw spreadsheet row keyed by column header.
type Row map[string]string

// Get returns the first present non-empty value among the given
// column-name variants. Exports from different tools disagree about
// header casing.
func (r Row) Get(names ...string) string {
	for _, name := range names {
		if v, ok := r[name]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ExtractEditionInfo splits an edition display cell into its print
// name and edition number. When the trailing "-<integer>" pattern is
// absent the whole cell is treated as the print name.
func (c *RowCleaner) ExtractEditionInfo(displayName string) (printName string, editionNumber *int) {
	trimmed := strings.TrimSpace(displayName)
	if trimmed == "" {
		return "", nil
	}

	if m := reEditionSplit.FindStringSubmatch(trimmed); m != nil {
		name := c.cleanPrintName(m[1])
		num, err := strconv.Atoi(m[2])
		if err != nil {
			return name, nil
		}
		return name, &num
	}

	return c.cleanPrintName(trimmed), nil
}

func (c *RowCleaner) cleanPrintName(raw string) string {
	canonical, ok := CanonicalPrintName(raw)
	if !ok {
		return ""
	}
	c.Report.RecordPrintNameTransform(raw, canonical.Full)
	return canonical.Full
}

func (c *RowCleaner) cleanDistributorName(raw string) string {
	canonical, ok := CanonicalDistributorName(raw)
	if !ok {
		return ""
	}
	c.Report.RecordDistributorNameTransform(raw, canonical.Full)
	return canonical.Full
}

func (c *RowCleaner) cleanDate(raw, field string) *time.Time {
	parsed, corrected, ok := ParseDate(raw)
	if !ok {
		return nil
	}
	if corrected != "" {
		c.Report.RecordDateCorrection(strings.TrimSpace(raw), corrected, field)
	}
	return parsed
}

// CleanPrintRow cleans one row of the prints batch.
func (c *RowCleaner) CleanPrintRow(row Row) internal.PrintRecord {
	rawName := row.Get("Print Name", "Name")
	record := internal.PrintRecord{
		ExternalID:    strings.TrimSpace(row.Get("Record_id", "Record ID", "record_id")),
		Description:   CleanText(row.Get("Description")),
		TotalEditions: CleanInteger(row.Get("Total Editions")),
		WebLink:       CleanText(row.Get("Web link")),
		Notes:         CleanText(row.Get("Notes")),
		ImageURLs:     ParseImageURLs(row.Get("Image")),
		IsActive:      true,
	}
	if canonical, ok := CanonicalPrintName(rawName); ok {
		c.Report.RecordPrintNameTransform(rawName, canonical.Full)
		record.Name = canonical.Full
		record.ShortName = canonical.Short
	}
	return record
}

// CleanDistributorRow cleans one row of the distributors batch.
func (c *RowCleaner) CleanDistributorRow(row Row) internal.DistributorRecord {
	rawName := row.Get("Name")
	record := internal.DistributorRecord{
		ExternalID:     strings.TrimSpace(row.Get("Record_id", "Record ID", "record_id")),
		CommissionPct:  CleanPercentage(row.Get("Commission")),
		Notes:          CleanText(row.Get("Notes")),
		ContactNumber:  CleanText(row.Get("Contact Number")),
		WebAddress:     CleanText(row.Get("Web address")),
		LastUpdateDate: c.cleanDate(row.Get("Date"), "last_update_date"),
		IsActive:       true,
	}
	if canonical, ok := CanonicalDistributorName(rawName); ok {
		c.Report.RecordDistributorNameTransform(rawName, canonical.Full)
		record.Name = canonical.Full
		record.ShortName = canonical.Short
	}
	return record
}

// CleanEditionRow cleans one row of the editions batch. The print name
// comes from the combined display cell when it parses, otherwise from
// the separate Print column.
func (c *RowCleaner) CleanEditionRow(row Row) internal.EditionRecord {
	display := strings.TrimSpace(row.Get("Print - Edition"))

	printName, editionNumber := c.ExtractEditionInfo(display)
	if printName == "" {
		printName = c.cleanPrintName(row.Get("Print"))
	}
	if editionNumber == nil {
		editionNumber = CleanInteger(row.Get("Print Edition"))
	}

	rawSize := row.Get("Size")
	size, sizeDefaulted := NormalizeSize(rawSize)
	c.Report.RecordSizeNormalization(rawSize, string(size))
	if sizeDefaulted {
		c.Report.RecordDefaultApplied("size")
	}

	rawFrame := row.Get("Frame")
	frame, frameDefaulted := NormalizeFrameType(rawFrame)
	c.Report.RecordFrameNormalization(rawFrame, string(frame))
	if frameDefaulted {
		c.Report.RecordDefaultApplied("frame_type")
	}

	variation := CleanText(row.Get("Variation"))
	if variation != nil && len(*variation) > 20 {
		truncated := (*variation)[:20]
		variation = &truncated
	}

	return internal.EditionRecord{
		ExternalID:      strings.TrimSpace(row.Get("record_id", "Record_id", "Record ID")),
		DisplayName:     display,
		PrintName:       printName,
		DistributorName: c.cleanDistributorName(row.Get("Distributor")),
		EditionNumber:   editionNumber,

		Size:      size,
		FrameType: frame,
		Variation: variation,

		IsPrinted:      CleanBoolean(row.Get("Printed")),
		IsSold:         CleanBoolean(row.Get("Sold")),
		IsSettled:      CleanBoolean(row.Get("Settled")),
		IsStockChecked: CleanBoolean(row.Get("Stock Checked")),
		ToCheckDetail:  CleanBoolean(row.Get("To check in detail")),

		RetailPrice:   CleanCurrency(row.Get("Retail Price")),
		DateSold:      c.cleanDate(row.Get("Date Sold"), "date_sold"),
		CommissionPct: CleanPercentage(row.Get("Commission")),
		DateInGallery: c.cleanDate(row.Get("Date in Gallery"), "date_in_gallery"),

		Notes:       CleanText(row.Get("Notes")),
		PaymentNote: CleanText(row.Get("Payment")),

		StatusConfidence: internal.StatusVerified,
	}
}
