package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"printbase/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "printbase.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedPrint(t *testing.T, db *DB, externalID, name string) int {
	t.Helper()
	id, err := db.InsertPrint(internal.PrintRecord{ExternalID: externalID, Name: name, ShortName: name, IsActive: true})
	if err != nil {
		t.Fatal(err)
	}
	return int(id)
}

func seedDistributor(t *testing.T, db *DB, externalID, name string) int {
	t.Helper()
	pct := decimal.NewFromInt(40)
	id, err := db.InsertDistributor(internal.DistributorRecord{ExternalID: externalID, Name: name, ShortName: name, CommissionPct: &pct, IsActive: true})
	if err != nil {
		t.Fatal(err)
	}
	return int(id)
}

func TestInsertPrintUniqueViolation(t *testing.T) {
	db := openTestDB(t)
	seedPrint(t, db, "p-1", "Quarr")

	_, err := db.InsertPrint(internal.PrintRecord{ExternalID: "p-2", Name: "Quarr", IsActive: true})
	if !IsUniqueViolation(err) {
		t.Fatalf("err = %v", err)
	}
	_, err = db.InsertPrint(internal.PrintRecord{ExternalID: "p-1", Name: "Seagrove", IsActive: true})
	if !IsUniqueViolation(err) {
		t.Fatalf("err = %v", err)
	}
}

func TestEnsureDirectDistributor(t *testing.T) {
	db := openTestDB(t)

	created, err := db.EnsureDirectDistributor()
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("expected creation")
	}

	created, err = db.EnsureDirectDistributor()
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Fatal("second call recreated it")
	}

	ids, err := db.DistributorNameIDs()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ids[internal.DirectDistributorName]; !ok {
		t.Fatalf("ids = %v", ids)
	}
}

func edition(externalID string, printID int, number int) internal.EditionRecord {
	return internal.EditionRecord{
		ExternalID:       externalID,
		DisplayName:      "Quarr - 1",
		PrintID:          &printID,
		EditionNumber:    &number,
		Size:             internal.SizeSmall,
		FrameType:        internal.FrameFramed,
		StatusConfidence: internal.StatusVerified,
	}
}

func TestBulkUpsertEditionsIgnoresDuplicates(t *testing.T) {
	db := openTestDB(t)
	printID := seedPrint(t, db, "p-1", "Quarr")

	inserted, err := db.BulkUpsertEditions([]internal.EditionRecord{
		edition("e-1", printID, 1),
		edition("e-2", printID, 2),
	})
	if err != nil {
		t.Fatal(err)
	}
	if inserted != 2 {
		t.Fatalf("inserted = %d", inserted)
	}

	// same external id, and a fresh external id that collides on the
	// (print, edition number) pair; both are absorbed silently
	inserted, err = db.BulkUpsertEditions([]internal.EditionRecord{
		edition("e-1", printID, 3),
		edition("e-3", printID, 2),
		edition("e-4", printID, 4),
	})
	if err != nil {
		t.Fatal(err)
	}
	if inserted != 1 {
		t.Fatalf("inserted = %d", inserted)
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Editions != 3 {
		t.Fatalf("editions = %d", stats.Editions)
	}
}

func TestSettleStaleSales(t *testing.T) {
	db := openTestDB(t)
	printID := seedPrint(t, db, "p-1", "Quarr")

	old := time.Now().AddDate(0, 0, -365)
	recent := time.Now().AddDate(0, 0, -10)
	price := decimal.NewFromInt(100)

	stale := edition("e-1", printID, 1)
	stale.IsSold = true
	stale.DateSold = &old
	stale.RetailPrice = &price

	fresh := edition("e-2", printID, 2)
	fresh.IsSold = true
	fresh.DateSold = &recent
	fresh.RetailPrice = &price

	unsold := edition("e-3", printID, 3)

	if _, err := db.BulkUpsertEditions([]internal.EditionRecord{stale, fresh, unsold}); err != nil {
		t.Fatal(err)
	}

	settled, err := db.SettleStaleSales(time.Now().AddDate(0, 0, -180))
	if err != nil {
		t.Fatal(err)
	}
	if settled != 1 {
		t.Fatalf("settled = %d", settled)
	}

	// rerun is a no-op
	settled, err = db.SettleStaleSales(time.Now().AddDate(0, 0, -180))
	if err != nil {
		t.Fatal(err)
	}
	if settled != 0 {
		t.Fatalf("second settle = %d", settled)
	}
}

func TestMarkLegacyDistributor(t *testing.T) {
	db := openTestDB(t)
	printID := seedPrint(t, db, "p-1", "Quarr")
	legacyID := seedDistributor(t, db, "d-1", "Direct Old")
	currentID := seedDistributor(t, db, "d-2", "Kendalls")

	legacy := edition("e-1", printID, 1)
	legacy.DistributorID = &legacyID
	current := edition("e-2", printID, 2)
	current.DistributorID = &currentID

	if _, err := db.BulkUpsertEditions([]internal.EditionRecord{legacy, current}); err != nil {
		t.Fatal(err)
	}

	marked, err := db.MarkLegacyDistributor("direct old")
	if err != nil {
		t.Fatal(err)
	}
	if marked != 1 {
		t.Fatalf("marked = %d", marked)
	}

	rows, err := db.ListEditionExport()
	if err != nil {
		t.Fatal(err)
	}
	byNumber := map[int]string{}
	for _, r := range rows {
		byNumber[*r.EditionNumber] = r.StatusConfidence
	}
	if byNumber[1] != string(internal.StatusLegacyUnknown) {
		t.Fatalf("confidence = %v", byNumber)
	}
	if byNumber[2] != string(internal.StatusVerified) {
		t.Fatalf("confidence = %v", byNumber)
	}
}

func TestClearAllEmptiesDerivedTables(t *testing.T) {
	db := openTestDB(t)
	printID := seedPrint(t, db, "p-1", "Quarr")
	distID := seedDistributor(t, db, "d-1", "Kendalls")
	e := edition("e-1", printID, 1)
	e.DistributorID = &distID
	if _, err := db.BulkUpsertEditions([]internal.EditionRecord{e}); err != nil {
		t.Fatal(err)
	}

	if err := db.ClearAll(); err != nil {
		t.Fatal(err)
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Prints != 0 || stats.Distributors != 0 || stats.Editions != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestGetStatsRevenue(t *testing.T) {
	db := openTestDB(t)
	printID := seedPrint(t, db, "p-1", "Quarr")

	p1 := decimal.NewFromFloat(100.50)
	p2 := decimal.NewFromInt(50)

	sold1 := edition("e-1", printID, 1)
	sold1.IsSold = true
	sold1.RetailPrice = &p1
	sold2 := edition("e-2", printID, 2)
	sold2.IsSold = true
	sold2.RetailPrice = &p2
	unsold := edition("e-3", printID, 3)
	unsold.RetailPrice = &p1

	if _, err := db.BulkUpsertEditions([]internal.EditionRecord{sold1, sold2, unsold}); err != nil {
		t.Fatal(err)
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.EditionsSold != 2 || stats.EditionsUnsold != 1 {
		t.Fatalf("sold = %d unsold = %d", stats.EditionsSold, stats.EditionsUnsold)
	}
	if !stats.TotalRevenue.Equal(decimal.NewFromFloat(150.50)) {
		t.Fatalf("revenue = %s", stats.TotalRevenue)
	}
}
