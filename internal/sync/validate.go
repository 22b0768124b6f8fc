package sync

import (
	"fmt"

	"printbase/internal/clean"
	"printbase/internal/config"
	"printbase/internal/source"
	"printbase/internal/storage"
)

// Validate sweeps both the raw editions source and the imported
// database and prints every advisory finding. Nothing is modified and
// nothing is rejected; the return value is the total finding count.
func Validate(db *storage.DB, cfg config.Config) (int, error) {
	total := 0

	rows, err := source.ReadTable(cfg.EditionsPath)
	if err != nil {
		return 0, fmt.Errorf("read editions: %w", err)
	}

	cleaner := clean.NewRowCleaner(clean.NewReport())
	fmt.Printf("checking %d source rows\n", len(rows))
	for i, row := range rows {
		record := cleaner.CleanEditionRow(row)
		for _, issue := range clean.ValidateEdition(record) {
			fmt.Printf("  row %d (%s): %s\n", i+1, record.DisplayName, issue)
			total++
		}
	}

	issues, err := db.CheckConsistency()
	if err != nil {
		return total, err
	}
	fmt.Printf("checking imported database\n")
	for _, issue := range issues {
		fmt.Printf("  %s: %s\n", issue.Check, issue.Detail)
		total++
	}

	if total == 0 {
		fmt.Println("no issues found")
	} else {
		fmt.Printf("%d issues found (advisory only)\n", total)
	}
	return total, nil
}
