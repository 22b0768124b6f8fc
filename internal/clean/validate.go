package clean

import (
	"fmt"

	"github.com/shopspring/decimal"

	"printbase/internal"
)

var (
	priceFloor   = decimal.NewFromInt(10)
	priceCeiling = decimal.NewFromInt(1000)
	pctHundred   = decimal.NewFromInt(100)
)

// ValidateEdition checks one cleaned edition record and returns
// human-readable issues. Advisory only: callers report, never reject.
func ValidateEdition(record internal.EditionRecord) []string {
	var issues []string

	if record.DisplayName == "" {
		issues = append(issues, "Missing edition display name")
	}
	if record.ExternalID == "" {
		issues = append(issues, "Missing external id")
	}
	if record.PrintName == "" {
		issues = append(issues, "Missing or unparseable print name")
	}

	if record.RetailPrice != nil {
		price := *record.RetailPrice
		switch {
		case price.IsNegative():
			issues = append(issues, fmt.Sprintf("Negative retail price: %s", price))
		case price.LessThan(priceFloor):
			issues = append(issues, fmt.Sprintf("Suspiciously low price: %s", price))
		case price.GreaterThan(priceCeiling):
			issues = append(issues, fmt.Sprintf("Suspiciously high price: %s", price))
		}
	}

	if record.DateSold != nil && record.DateInGallery != nil && record.DateInGallery.After(*record.DateSold) {
		issues = append(issues, "Date in gallery is after date sold")
	}

	if record.IsSold && record.RetailPrice == nil {
		issues = append(issues, "Marked as sold but no price")
	}

	if record.CommissionPct != nil {
		pct := *record.CommissionPct
		if pct.IsNegative() || pct.GreaterThan(pctHundred) {
			issues = append(issues, fmt.Sprintf("Invalid commission percentage: %s", pct))
		}
	}

	return issues
}
