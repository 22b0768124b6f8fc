package sync

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"printbase/internal"
	"printbase/internal/clean"
	"printbase/internal/config"
	"printbase/internal/dedupe"
	"printbase/internal/source"
	"printbase/internal/storage"
)

// Importer replaces the database contents with the current source
// batch. Each sync wipes the derived tables, repopulates prints then
// distributors then editions, applies post-import policies, and writes
// a markdown report of every transformation it made.
type Importer struct {
	db  *storage.DB
	cfg config.Config
}

func NewImporter(db *storage.DB, cfg config.Config) *Importer {
	return &Importer{db: db, cfg: cfg}
}

type Result struct {
	SyncID       string
	Prints       internal.SyncCounts
	Distributors internal.SyncCounts
	Editions     internal.SyncCounts
	ReportPath   string
	SameSource   bool
}

func (imp *Importer) Run() (Result, error) {
	start := time.Now()

	sourceHash, err := source.HashFiles(imp.cfg.PrintsPath, imp.cfg.DistributorsPath, imp.cfg.EditionsPath)
	if err != nil {
		return Result{}, fmt.Errorf("hash source files: %w", err)
	}
	lastHash, err := imp.db.LastCompletedRunHash("full")
	if err != nil {
		return Result{}, err
	}
	sameSource := lastHash != "" && lastHash == sourceHash
	if sameSource {
		fmt.Println("warning: source files unchanged since last completed sync")
	}

	syncID, err := imp.db.StartSyncRun("full", sourceHash)
	if err != nil {
		return Result{}, err
	}

	result, err := imp.run(syncID)
	if err != nil {
		_ = imp.db.FailSyncRun(syncID, err)
		return Result{}, err
	}
	result.SyncID = syncID
	result.SameSource = sameSource

	counts := internal.RunCounts{
		Prints:       result.Prints,
		Distributors: result.Distributors,
		Editions:     result.Editions,
	}
	if err := imp.db.CompleteSyncRun(syncID, counts); err != nil {
		return Result{}, err
	}

	fmt.Printf("sync %s finished in %s\n", syncID, time.Since(start).Round(time.Millisecond))
	return result, nil
}

func (imp *Importer) run(syncID string) (Result, error) {
	report := clean.NewReport()
	cleaner := clean.NewRowCleaner(report)

	resolver, err := dedupe.Load(imp.cfg.DecisionsPath)
	if err != nil {
		return Result{}, fmt.Errorf("load duplicate decisions: %w", err)
	}
	if n := resolver.SkipCount(); n > 0 {
		fmt.Printf("loaded duplicate decisions: %d rows marked for skipping\n", n)
	}

	if err := imp.db.ClearAll(); err != nil {
		return Result{}, fmt.Errorf("clear tables: %w", err)
	}

	var result Result
	result.Prints, err = imp.importPrints(cleaner, report)
	if err != nil {
		return Result{}, err
	}
	fmt.Printf("prints: %d created, %d skipped, %d failed\n",
		result.Prints.Created, result.Prints.Skipped, result.Prints.Failed)

	result.Distributors, err = imp.importDistributors(cleaner)
	if err != nil {
		return Result{}, err
	}
	fmt.Printf("distributors: %d created, %d skipped, %d failed\n",
		result.Distributors.Created, result.Distributors.Skipped, result.Distributors.Failed)

	created, err := imp.db.EnsureDirectDistributor()
	if err != nil {
		return Result{}, err
	}
	if created {
		fmt.Printf("created sentinel distributor %q\n", internal.DirectDistributorName)
	}

	result.Editions, err = imp.importEditions(cleaner, report, resolver)
	if err != nil {
		return Result{}, err
	}
	fmt.Printf("editions: %d created, %d skipped, %d duplicates ignored, %d failed\n",
		result.Editions.Created, result.Editions.Skipped, result.Editions.DuplicatesIgnored, result.Editions.Failed)

	if err := imp.postProcess(); err != nil {
		return Result{}, err
	}

	result.ReportPath, err = imp.writeReport(report, syncID)
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func (imp *Importer) importPrints(cleaner *clean.RowCleaner, report *clean.Report) (internal.SyncCounts, error) {
	var counts internal.SyncCounts

	rows, err := source.ReadTable(imp.cfg.PrintsPath)
	if err != nil {
		return counts, fmt.Errorf("read prints: %w", err)
	}

	seen := map[string]bool{}
	for _, row := range rows {
		counts.Processed++
		record := cleaner.CleanPrintRow(row)
		if record.Name == "" || record.ExternalID == "" {
			counts.Skipped++
			continue
		}
		if seen[record.Name] {
			report.RecordDuplicatePrintSkipped(record.Name)
			counts.Skipped++
			continue
		}
		seen[record.Name] = true

		if _, err := imp.db.InsertPrint(record); err != nil {
			if storage.IsUniqueViolation(err) {
				report.RecordDuplicatePrintSkipped(record.Name)
				counts.Skipped++
				continue
			}
			fmt.Printf("print %q: insert failed: %v\n", record.Name, err)
			counts.Failed++
			continue
		}
		counts.Created++
	}
	return counts, nil
}

func (imp *Importer) importDistributors(cleaner *clean.RowCleaner) (internal.SyncCounts, error) {
	var counts internal.SyncCounts

	rows, err := source.ReadTable(imp.cfg.DistributorsPath)
	if err != nil {
		return counts, fmt.Errorf("read distributors: %w", err)
	}

	for _, row := range rows {
		counts.Processed++
		record := cleaner.CleanDistributorRow(row)
		if record.Name == "" || record.ExternalID == "" {
			counts.Skipped++
			continue
		}
		if _, err := imp.db.InsertDistributor(record); err != nil {
			if storage.IsUniqueViolation(err) {
				counts.Skipped++
				continue
			}
			fmt.Printf("distributor %q: insert failed: %v\n", record.Name, err)
			counts.Failed++
			continue
		}
		counts.Created++
	}
	return counts, nil
}

func (imp *Importer) importEditions(cleaner *clean.RowCleaner, report *clean.Report, resolver *dedupe.Resolver) (internal.SyncCounts, error) {
	var counts internal.SyncCounts

	rows, err := source.ReadTable(imp.cfg.EditionsPath)
	if err != nil {
		return counts, fmt.Errorf("read editions: %w", err)
	}

	printIDs, err := imp.db.PrintNameIDs()
	if err != nil {
		return counts, err
	}
	distributorIDs, err := imp.db.DistributorNameIDs()
	if err != nil {
		return counts, err
	}

	batch := make([]internal.EditionRecord, 0, imp.cfg.SyncBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		inserted, err := imp.db.BulkUpsertEditions(batch)
		if err != nil {
			return fmt.Errorf("insert edition batch: %w", err)
		}
		counts.Created += inserted
		counts.DuplicatesIgnored += len(batch) - inserted
		batch = batch[:0]
		return nil
	}

	for i, row := range rows {
		counts.Processed++

		if decision, skip := resolver.ShouldSkip(i); skip {
			report.RecordDuplicateSkipped(decision.Edition, decision.Reason)
			counts.Skipped++
			continue
		}

		record := cleaner.CleanEditionRow(row)
		// Placeholder rows with no real display value exist in the export.
		if strings.Trim(record.DisplayName, " -") == "" {
			counts.Skipped++
			continue
		}
		if record.ExternalID == "" {
			counts.Skipped++
			continue
		}

		printID, ok := printIDs[record.PrintName]
		if !ok {
			report.RecordMissingPrint(record.DisplayName, record.PrintName)
			counts.Skipped++
			continue
		}
		record.PrintID = &printID

		if record.DistributorName != "" {
			if distributorID, ok := distributorIDs[record.DistributorName]; ok {
				record.DistributorID = &distributorID
			} else {
				report.RecordMissingDistributor(record.DisplayName)
			}
		}

		batch = append(batch, record)
		if len(batch) >= imp.cfg.SyncBatchSize {
			if err := flush(); err != nil {
				return counts, err
			}
		}
	}
	if err := flush(); err != nil {
		return counts, err
	}
	return counts, nil
}

func (imp *Importer) postProcess() error {
	cutoff := time.Now().AddDate(0, 0, -imp.cfg.AutoSettleAfterDays)
	settled, err := imp.db.SettleStaleSales(cutoff)
	if err != nil {
		return fmt.Errorf("auto-settle stale sales: %w", err)
	}
	if settled > 0 {
		fmt.Printf("auto-settled %d sales older than %d days\n", settled, imp.cfg.AutoSettleAfterDays)
	}

	if imp.cfg.LegacyDistributorName != "" {
		marked, err := imp.db.MarkLegacyDistributor(imp.cfg.LegacyDistributorName)
		if err != nil {
			return fmt.Errorf("mark legacy distributor editions: %w", err)
		}
		if marked > 0 {
			fmt.Printf("marked %d editions under %q as legacy_unknown\n", marked, imp.cfg.LegacyDistributorName)
		}
	}
	return nil
}

func (imp *Importer) writeReport(report *clean.Report, syncID string) (string, error) {
	if err := os.MkdirAll(imp.cfg.ReportDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(imp.cfg.ReportDir, fmt.Sprintf("import_report_%s.md", time.Now().Format("20060102_150405")))
	body := fmt.Sprintf("# Import Report\n\nSync: %s\n\n", syncID) + report.Markdown()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", err
	}
	fmt.Printf("import report written to %s\n", path)
	return path, nil
}
