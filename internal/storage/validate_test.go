package storage

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"printbase/internal"
)

func checksByName(issues []Issue) map[string]int {
	out := map[string]int{}
	for _, issue := range issues {
		out[issue.Check]++
	}
	return out
}

func TestCheckConsistencyCleanData(t *testing.T) {
	db := openTestDB(t)
	printID := seedPrint(t, db, "p-1", "Quarr")
	distID := seedDistributor(t, db, "d-1", "Kendalls")

	total := 50
	if _, err := db.conn.Exec(`UPDATE prints SET total_editions = ? WHERE id = ?`, total, printID); err != nil {
		t.Fatal(err)
	}

	price := decimal.NewFromInt(150)
	sold := time.Now().AddDate(0, 0, -30)
	gallery := time.Now().AddDate(0, 0, -90)
	e := edition("e-1", printID, 5)
	e.DistributorID = &distID
	e.IsSold = true
	e.IsSettled = true
	e.RetailPrice = &price
	e.DateSold = &sold
	e.DateInGallery = &gallery

	if _, err := db.BulkUpsertEditions([]internal.EditionRecord{e}); err != nil {
		t.Fatal(err)
	}

	issues, err := db.CheckConsistency()
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 0 {
		t.Fatalf("issues = %+v", issues)
	}
}

func TestCheckConsistencyFindsProblems(t *testing.T) {
	db := openTestDB(t)
	printID := seedPrint(t, db, "p-1", "Quarr")
	distID := seedDistributor(t, db, "d-1", "Kendalls")
	if _, err := db.conn.Exec(`UPDATE prints SET total_editions = 10 WHERE id = ?`, printID); err != nil {
		t.Fatal(err)
	}

	goodPrice := decimal.NewFromInt(95)
	negative := decimal.NewFromInt(-5)
	overCommission := decimal.NewFromInt(120)
	sold := time.Now().AddDate(0, 0, -10)
	gallery := time.Now().AddDate(0, 0, -5)
	future := time.Now().AddDate(0, 1, 0)

	outOfRange := edition("e-1", printID, 99)

	noPrice := edition("e-2", printID, 2)
	noPrice.DistributorID = &distID
	noPrice.IsSold = true

	badPrice := edition("e-3", printID, 3)
	badPrice.DistributorID = &distID
	badPrice.IsSold = true
	badPrice.RetailPrice = &negative

	backwards := edition("e-4", printID, 4)
	backwards.DateSold = &sold
	backwards.DateInGallery = &gallery

	futureSale := edition("e-5", printID, 5)
	futureSale.DateSold = &future

	badCommission := edition("e-6", printID, 6)
	badCommission.CommissionPct = &overCommission

	settledUnsold := edition("e-7", printID, 7)
	settledUnsold.IsSettled = true

	noDistributor := edition("e-8", printID, 8)
	noDistributor.IsSold = true
	noDistributor.RetailPrice = &goodPrice

	records := []internal.EditionRecord{outOfRange, noPrice, badPrice, backwards, futureSale, badCommission, settledUnsold, noDistributor}
	if _, err := db.BulkUpsertEditions(records); err != nil {
		t.Fatal(err)
	}

	issues, err := db.CheckConsistency()
	if err != nil {
		t.Fatal(err)
	}

	got := checksByName(issues)
	want := map[string]int{
		"edition number out of range":  1,
		"sold without price":           1,
		"sold with non-positive price": 1,
		"sold before entering gallery": 1,
		"sale dated in the future":     1,
		"commission out of range":      1,
		"settled but not sold":         1,
		"sold without distributor":     1,
	}
	for check, n := range want {
		if got[check] != n {
			t.Errorf("%s: got %d, want %d (all: %v)", check, got[check], n, got)
		}
	}
}
