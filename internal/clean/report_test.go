package clean

import (
	"fmt"
	"strings"
	"testing"
)

func TestReportSummarize(t *testing.T) {
	r := NewReport()
	r.RecordPrintNameTransform("no mans fort", "No Man's Fort")
	r.RecordPrintNameTransform("no mans fort", "No Man's Fort") // dedup
	r.RecordDistributorNameTransform("kendall", "Kendalls")
	r.RecordSizeNormalization("", "Small")
	r.RecordSizeNormalization("XL", "Extra Large")
	r.RecordFrameNormalization("ikea", "Framed")
	r.RecordDateCorrection("5/12/1920", "5/12/2020", "date_sold")
	r.RecordDuplicateSkipped("Quarr - 3", "duplicate external id")
	r.RecordMissingPrint("Ghost - 1", "Ghost")
	r.RecordMissingDistributor("Quarr - 4")
	r.RecordDefaultApplied("size")
	r.RecordDuplicatePrintSkipped("Quarr")

	s := r.Summarize()
	if s.PrintNamesStandardized != 1 {
		t.Errorf("prints standardized = %d", s.PrintNamesStandardized)
	}
	if s.DistributorNamesStandardized != 1 {
		t.Errorf("distributors standardized = %d", s.DistributorNamesStandardized)
	}
	if s.SizesNormalized != 2 || s.FramesNormalized != 1 {
		t.Errorf("sizes = %d frames = %d", s.SizesNormalized, s.FramesNormalized)
	}
	if s.DatesCorrected != 1 || s.DuplicatesSkipped != 1 {
		t.Errorf("dates = %d dups = %d", s.DatesCorrected, s.DuplicatesSkipped)
	}
	if s.EditionsMissingPrint != 1 || s.EditionsMissingDistributor != 1 {
		t.Errorf("missing print = %d missing distributor = %d", s.EditionsMissingPrint, s.EditionsMissingDistributor)
	}
	if s.DuplicatePrintsSkipped != 1 {
		t.Errorf("duplicate prints = %d", s.DuplicatePrintsSkipped)
	}
}

func TestReportIgnoresIdentityTransforms(t *testing.T) {
	r := NewReport()
	r.RecordPrintNameTransform("Seagrove", "Seagrove")
	r.RecordPrintNameTransform("  ", "Anything")
	if len(r.PrintNameTransforms) != 0 {
		t.Fatalf("transforms = %v", r.PrintNameTransforms)
	}
}

func TestReportMarkdown(t *testing.T) {
	r := NewReport()
	r.RecordPrintNameTransform("st catherines", "St Catherine's")
	r.RecordDateCorrection("1/1/1920", "1/1/2020", "date_sold")
	r.RecordMissingPrint("Ghost - 1", "Ghost")
	r.RecordMissingDistributor("Quarr - 4")
	r.RecordDefaultApplied("frame_type")

	md := r.Markdown()
	for _, want := range []string{
		"Print Name Standardizations",
		"st catherines",
		"St Catherine's",
		"1/1/1920",
		"Ghost - 1",
		"frame_type",
		"Editions with unresolved distributor:** 1",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestReportMarkdownTruncatesLongLists(t *testing.T) {
	r := NewReport()
	for i := 0; i < 25; i++ {
		r.RecordMissingDistributor(fmt.Sprintf("Edition - %d", i))
	}

	md := r.Markdown()
	if !strings.Contains(md, "and 20 more") {
		t.Fatalf("markdown not truncated:\n%s", md)
	}
	if strings.Contains(md, "Edition - 6") {
		t.Fatal("markdown lists entries past the truncation point")
	}
}
