package storage

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Issue is one advisory finding from a consistency sweep. Findings
// never block anything; they are printed for the operator to chase up.
type Issue struct {
	Check  string
	Detail string
}

// CheckConsistency runs the read-only sweeps over the imported data and
// returns everything that looks wrong.
func (d *DB) CheckConsistency() ([]Issue, error) {
	var issues []Issue
	for _, sweep := range []func() ([]Issue, error){
		d.orphanEditions,
		d.duplicateEditionNumbers,
		d.soldWithoutDistributor,
		d.editionsOutOfRange,
		d.soldWithoutPrice,
		d.soldBeforeGallery,
		d.futureDatedSales,
		d.commissionOutOfRange,
		d.settledButUnsold,
	} {
		found, err := sweep()
		if err != nil {
			return nil, err
		}
		issues = append(issues, found...)
	}
	return issues, nil
}

// orphanEditions and duplicateEditionNumbers cannot fire through this
// code path because the schema enforces both, but the database file is
// open to other tools that may not set the same pragmas.
func (d *DB) orphanEditions() ([]Issue, error) {
	return d.sweep("edition references missing print", `
SELECT e.display_name
FROM editions e LEFT JOIN prints p ON p.id = e.print_id
WHERE p.id IS NULL
`)
}

func (d *DB) duplicateEditionNumbers() ([]Issue, error) {
	return d.sweep("duplicate edition number", `
SELECT p.name || ' edition ' || e.edition_number || ' (' || COUNT(*) || ' rows)'
FROM editions e JOIN prints p ON p.id = e.print_id
WHERE e.edition_number IS NOT NULL
GROUP BY e.print_id, e.edition_number
HAVING COUNT(*) > 1
`)
}

func (d *DB) soldWithoutDistributor() ([]Issue, error) {
	return d.sweep("sold without distributor", `
SELECT display_name FROM editions WHERE is_sold = 1 AND distributor_id IS NULL
`)
}

func (d *DB) editionsOutOfRange() ([]Issue, error) {
	return d.sweep("edition number out of range", `
SELECT e.display_name || ' (edition ' || e.edition_number || ' of ' || p.total_editions || ')'
FROM editions e JOIN prints p ON p.id = e.print_id
WHERE p.total_editions IS NOT NULL
  AND (e.edition_number < 1 OR e.edition_number > p.total_editions)
`)
}

func (d *DB) soldWithoutPrice() ([]Issue, error) {
	rows, err := d.conn.Query(`
SELECT display_name, retail_price FROM editions
WHERE is_sold = 1 AND (retail_price IS NULL OR retail_price = '')
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []Issue
	for rows.Next() {
		var name string
		var price *string
		if err := rows.Scan(&name, &price); err != nil {
			return nil, err
		}
		issues = append(issues, Issue{Check: "sold without price", Detail: name})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Prices live as decimal text, so non-positive values need a Go-side pass.
	rows, err = d.conn.Query(`
SELECT display_name, retail_price FROM editions
WHERE is_sold = 1 AND retail_price IS NOT NULL AND retail_price != ''
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name, price string
		if err := rows.Scan(&name, &price); err != nil {
			return nil, err
		}
		v, perr := decimal.NewFromString(price)
		if perr != nil || !v.IsPositive() {
			issues = append(issues, Issue{
				Check:  "sold with non-positive price",
				Detail: fmt.Sprintf("%s (price %s)", name, price),
			})
		}
	}
	return issues, rows.Err()
}

func (d *DB) soldBeforeGallery() ([]Issue, error) {
	return d.sweep("sold before entering gallery", `
SELECT display_name || ' (sold ' || date_sold || ', in gallery ' || date_in_gallery || ')'
FROM editions
WHERE date_sold IS NOT NULL AND date_in_gallery IS NOT NULL AND date_sold < date_in_gallery
`)
}

func (d *DB) futureDatedSales() ([]Issue, error) {
	return d.sweep("sale dated in the future", `
SELECT display_name || ' (sold ' || date_sold || ')'
FROM editions
WHERE date_sold IS NOT NULL AND date_sold > date('now')
`)
}

func (d *DB) commissionOutOfRange() ([]Issue, error) {
	rows, err := d.conn.Query(`
SELECT display_name, commission_percentage FROM editions
WHERE commission_percentage IS NOT NULL AND commission_percentage != ''
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []Issue
	hundred := decimal.NewFromInt(100)
	for rows.Next() {
		var name, commission string
		if err := rows.Scan(&name, &commission); err != nil {
			return nil, err
		}
		v, perr := decimal.NewFromString(commission)
		if perr != nil || v.IsNegative() || v.GreaterThan(hundred) {
			issues = append(issues, Issue{
				Check:  "commission out of range",
				Detail: fmt.Sprintf("%s (commission %s)", name, commission),
			})
		}
	}
	return issues, rows.Err()
}

func (d *DB) settledButUnsold() ([]Issue, error) {
	return d.sweep("settled but not sold", `
SELECT display_name FROM editions WHERE is_settled = 1 AND is_sold = 0
`)
}

func (d *DB) sweep(check, query string) ([]Issue, error) {
	rows, err := d.conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []Issue
	for rows.Next() {
		var detail string
		if err := rows.Scan(&detail); err != nil {
			return nil, err
		}
		issues = append(issues, Issue{Check: check, Detail: detail})
	}
	return issues, rows.Err()
}
