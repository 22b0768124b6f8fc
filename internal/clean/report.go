package clean

import (
	"fmt"
	"sort"
	"strings"
)

// Report accumulates every transformation performed during one sync
// run: what was actually done to the data, not what the code is
// configured to do. It lives for a single run and is rendered to a
// markdown document at the end, never persisted to the store.
type Report struct {
	PrintNameTransforms       map[string]string
	DistributorNameTransforms map[string]string

	SizeNormalizations  map[string]map[string]int
	FrameNormalizations map[string]map[string]int

	DateCorrections []DateCorrection

	DuplicatesSkipped      []string
	MissingPrint           []MissingPrint
	MissingDistributor     []string
	DuplicatePrintsSkipped []string

	DefaultsApplied map[string]int
}

type DateCorrection struct {
	Original  string
	Corrected string
	Field     string
}

type MissingPrint struct {
	Edition   string
	PrintName string
}

func NewReport() *Report {
	return &Report{
		PrintNameTransforms:       map[string]string{},
		DistributorNameTransforms: map[string]string{},
		SizeNormalizations:        map[string]map[string]int{},
		FrameNormalizations:       map[string]map[string]int{},
		DefaultsApplied:           map[string]int{},
	}
}

func (r *Report) RecordPrintNameTransform(original, standardized string) {
	key := strings.TrimSpace(original)
	if key == "" || standardized == "" || key == standardized {
		return
	}
	if _, seen := r.PrintNameTransforms[key]; !seen {
		r.PrintNameTransforms[key] = standardized
	}
}

func (r *Report) RecordDistributorNameTransform(original, standardized string) {
	key := strings.TrimSpace(original)
	if key == "" || standardized == "" || key == standardized {
		return
	}
	if _, seen := r.DistributorNameTransforms[key]; !seen {
		r.DistributorNameTransforms[key] = standardized
	}
}

func (r *Report) RecordSizeNormalization(original, normalized string) {
	recordCount(r.SizeNormalizations, original, normalized)
}

func (r *Report) RecordFrameNormalization(original, normalized string) {
	recordCount(r.FrameNormalizations, original, normalized)
}

func recordCount(m map[string]map[string]int, original, normalized string) {
	key := strings.TrimSpace(original)
	if key == "" {
		key = "(empty)"
	}
	if m[key] == nil {
		m[key] = map[string]int{}
	}
	m[key][normalized]++
}

func (r *Report) RecordDateCorrection(original, corrected, field string) {
	r.DateCorrections = append(r.DateCorrections, DateCorrection{Original: original, Corrected: corrected, Field: field})
}

func (r *Report) RecordDuplicateSkipped(edition, reason string) {
	r.DuplicatesSkipped = append(r.DuplicatesSkipped, fmt.Sprintf("%s: %s", edition, reason))
}

func (r *Report) RecordMissingPrint(edition, printName string) {
	r.MissingPrint = append(r.MissingPrint, MissingPrint{Edition: edition, PrintName: printName})
}

func (r *Report) RecordMissingDistributor(edition string) {
	r.MissingDistributor = append(r.MissingDistributor, edition)
}

func (r *Report) RecordDefaultApplied(field string) {
	r.DefaultsApplied[field]++
}

func (r *Report) RecordDuplicatePrintSkipped(printName string) {
	r.DuplicatePrintsSkipped = append(r.DuplicatePrintsSkipped, printName)
}

type Summary struct {
	PrintNamesStandardized       int
	DistributorNamesStandardized int
	SizesNormalized              int
	FramesNormalized             int
	DatesCorrected               int
	DuplicatesSkipped            int
	EditionsMissingPrint         int
	EditionsMissingDistributor   int
	DuplicatePrintsSkipped       int
}

func (r *Report) Summarize() Summary {
	return Summary{
		PrintNamesStandardized:       len(r.PrintNameTransforms),
		DistributorNamesStandardized: len(r.DistributorNameTransforms),
		SizesNormalized:              sumCounts(r.SizeNormalizations),
		FramesNormalized:             sumCounts(r.FrameNormalizations),
		DatesCorrected:               len(r.DateCorrections),
		DuplicatesSkipped:            len(r.DuplicatesSkipped),
		EditionsMissingPrint:         len(r.MissingPrint),
		EditionsMissingDistributor:   len(r.MissingDistributor),
		DuplicatePrintsSkipped:       len(r.DuplicatePrintsSkipped),
	}
}

func sumCounts(m map[string]map[string]int) int {
	total := 0
	for _, counts := range m {
		for _, n := range counts {
			total += n
		}
	}
	return total
}

// Markdown renders the full audit document for human review.
func (r *Report) Markdown() string {
	var b strings.Builder

	writeNameTable := func(title, intro string, transforms map[string]string) {
		if len(transforms) == 0 {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", title, intro)
		b.WriteString("| Original | Standardized |\n|----------|--------------|\n")
		for _, orig := range sortedKeys(transforms) {
			fmt.Fprintf(&b, "| `%s` | %s |\n", orig, transforms[orig])
		}
		b.WriteString("\n")
	}

	writeNameTable("Print Name Standardizations",
		"The following print names were standardized during import:", r.PrintNameTransforms)
	writeNameTable("Distributor Name Standardizations",
		"The following distributor names were standardized:", r.DistributorNameTransforms)

	writeCountTable := func(title, intro string, m map[string]map[string]int, trivial map[string]struct{}) {
		rows := make([]string, 0)
		keys := make([]string, 0, len(m))
		for k := range m {
			if _, skip := trivial[strings.ToLower(k)]; skip {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, orig := range keys {
			for _, normalized := range sortedIntKeys(m[orig]) {
				rows = append(rows, fmt.Sprintf("| `%s` | %s | %d |", orig, normalized, m[orig][normalized]))
			}
		}
		if len(rows) == 0 {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", title, intro)
		b.WriteString("| Original | Normalized To | Count |\n|----------|---------------|-------|\n")
		for _, row := range rows {
			b.WriteString(row + "\n")
		}
		b.WriteString("\n")
	}

	writeCountTable("Size Normalizations", "Size values were normalized to standard values:",
		r.SizeNormalizations, map[string]struct{}{"small": {}, "large": {}, "extra large": {}})
	writeCountTable("Frame Type Normalizations", "Frame types were normalized to standard values:",
		r.FrameNormalizations, map[string]struct{}{"framed": {}, "tube only": {}, "mounted": {}, "(empty)": {}})

	if len(r.DateCorrections) > 0 {
		fmt.Fprintf(&b, "## Date Corrections\n\n**%d dates were corrected** (e.g. 1920 -> 2020 typo fixes)\n\n", len(r.DateCorrections))
		writeTruncatedList(&b, len(r.DateCorrections), func(i int) string {
			c := r.DateCorrections[i]
			return fmt.Sprintf("- `%s` -> `%s` (%s)", c.Original, c.Corrected, c.Field)
		})
	}

	if len(r.DuplicatePrintsSkipped) > 0 {
		fmt.Fprintf(&b, "## Duplicate Prints Skipped\n\n**%d duplicate prints were skipped:**\n\n", len(r.DuplicatePrintsSkipped))
		for _, name := range r.DuplicatePrintsSkipped {
			fmt.Fprintf(&b, "- %s\n", name)
		}
		b.WriteString("\n")
	}

	if len(r.DuplicatesSkipped) > 0 {
		fmt.Fprintf(&b, "## Duplicate Editions Handled\n\n**%d duplicate editions were skipped** based on pre-computed decisions:\n\n", len(r.DuplicatesSkipped))
		writeTruncatedList(&b, len(r.DuplicatesSkipped), func(i int) string {
			return "- " + r.DuplicatesSkipped[i]
		})
	}

	if len(r.MissingPrint) > 0 {
		fmt.Fprintf(&b, "## Editions Skipped (Missing Print)\n\n**%d editions were skipped** because their print was not found:\n\n", len(r.MissingPrint))
		writeTruncatedList(&b, len(r.MissingPrint), func(i int) string {
			item := r.MissingPrint[i]
			return fmt.Sprintf("- %s (print: `%s`)", item.Edition, item.PrintName)
		})
	}

	if len(r.MissingDistributor) > 0 {
		fmt.Fprintf(&b, "## Editions With Unresolved Distributor\n\n**%d editions named a distributor that could not be matched** (reference left empty):\n\n", len(r.MissingDistributor))
		writeTruncatedList(&b, len(r.MissingDistributor), func(i int) string {
			return "- " + r.MissingDistributor[i]
		})
	}

	if len(r.DefaultsApplied) > 0 {
		b.WriteString("## Default Values Applied\n\nDefault values were applied for missing data:\n\n")
		b.WriteString("| Field | Default Value | Times Applied |\n|-------|---------------|---------------|\n")
		defaults := map[string]string{
			"size":              "Small",
			"frame_type":        "Framed",
			"status_confidence": "verified",
		}
		for _, field := range sortedIntKeys(r.DefaultsApplied) {
			value, ok := defaults[field]
			if !ok {
				value = "(configured default)"
			}
			fmt.Fprintf(&b, "| %s | %s | %d |\n", field, value, r.DefaultsApplied[field])
		}
		b.WriteString("\n")
	}

	s := r.Summarize()
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "- **Print names standardized:** %d\n", s.PrintNamesStandardized)
	fmt.Fprintf(&b, "- **Distributor names standardized:** %d\n", s.DistributorNamesStandardized)
	fmt.Fprintf(&b, "- **Sizes normalized:** %d\n", s.SizesNormalized)
	fmt.Fprintf(&b, "- **Frame types normalized:** %d\n", s.FramesNormalized)
	fmt.Fprintf(&b, "- **Dates corrected:** %d\n", s.DatesCorrected)
	fmt.Fprintf(&b, "- **Duplicate editions skipped:** %d\n", s.DuplicatesSkipped)
	fmt.Fprintf(&b, "- **Editions missing print (skipped):** %d\n", s.EditionsMissingPrint)
	fmt.Fprintf(&b, "- **Editions with unresolved distributor:** %d\n", s.EditionsMissingDistributor)
	fmt.Fprintf(&b, "- **Duplicate prints skipped:** %d\n", s.DuplicatePrintsSkipped)
	b.WriteString("\n")

	return b.String()
}

// Long lists collapse to the first five entries plus a remainder line.
func writeTruncatedList(b *strings.Builder, n int, line func(int) string) {
	limit := n
	if n > 10 {
		limit = 5
	}
	for i := 0; i < limit; i++ {
		b.WriteString(line(i) + "\n")
	}
	if limit < n {
		fmt.Fprintf(b, "- ... and %d more\n", n-limit)
	}
	b.WriteString("\n")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedIntKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
