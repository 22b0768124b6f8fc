package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"printbase/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL; PRAGMA foreign_keys = ON;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS prints (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  external_id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL UNIQUE,
  short_name TEXT,
  description TEXT,
  total_editions INTEGER,
  web_link TEXT,
  notes TEXT,
  image_urls TEXT NOT NULL DEFAULT '[]',
  primary_image_path TEXT,
  last_synced_at TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_prints_name ON prints(name);

CREATE TABLE IF NOT EXISTS distributors (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  external_id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL UNIQUE,
  short_name TEXT,
  commission_percentage TEXT,
  notes TEXT,
  contact_number TEXT,
  web_address TEXT,
  last_update_date TEXT,
  last_synced_at TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_distributors_name ON distributors(name);

CREATE TABLE IF NOT EXISTS editions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  external_id TEXT NOT NULL UNIQUE,
  print_id INTEGER NOT NULL REFERENCES prints(id),
  distributor_id INTEGER REFERENCES distributors(id),
  edition_number INTEGER,
  display_name TEXT NOT NULL,
  size TEXT CHECK (size IN ('Small', 'Large', 'Extra Large')),
  frame_type TEXT CHECK (frame_type IN ('Framed', 'Tube only', 'Mounted')),
  variation TEXT,
  is_printed INTEGER NOT NULL DEFAULT 0,
  is_sold INTEGER NOT NULL DEFAULT 0,
  is_settled INTEGER NOT NULL DEFAULT 0,
  is_stock_checked INTEGER NOT NULL DEFAULT 0,
  to_check_in_detail INTEGER NOT NULL DEFAULT 0,
  retail_price TEXT,
  date_sold TEXT,
  commission_percentage TEXT,
  date_in_gallery TEXT,
  notes TEXT,
  payment_note TEXT,
  status_confidence TEXT NOT NULL DEFAULT 'verified'
    CHECK (status_confidence IN ('verified', 'legacy_unknown')),
  last_synced_at TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(print_id, edition_number)
);
CREATE INDEX IF NOT EXISTS idx_editions_print ON editions(print_id);
CREATE INDEX IF NOT EXISTS idx_editions_distributor ON editions(distributor_id);
CREATE INDEX IF NOT EXISTS idx_editions_sold ON editions(is_sold, is_settled);

CREATE TABLE IF NOT EXISTS sync_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sync_id TEXT NOT NULL,
  sync_type TEXT NOT NULL,
  counts_json TEXT NOT NULL DEFAULT '{}',
  started_at TEXT NOT NULL,
  completed_at TEXT,
  status TEXT NOT NULL,
  error_message TEXT,
  source_hash TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS audit_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  table_name TEXT NOT NULL,
  record_id INTEGER NOT NULL,
  action TEXT NOT NULL CHECK (action IN ('INSERT', 'UPDATE', 'DELETE')),
  changed_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  old_values TEXT,
  new_values TEXT
);
CREATE INDEX IF NOT EXISTS idx_audit_table_record ON audit_log(table_name, record_id);
CREATE INDEX IF NOT EXISTS idx_audit_changed_at ON audit_log(changed_at DESC);
`

	if _, err := d.conn.Exec(schema); err != nil {
		return err
	}
	return d.initAuditTriggers()
}

// IsUniqueViolation reports whether an insert failed on a UNIQUE
// constraint rather than some other storage error.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ClearAll wipes the derived tables child-to-parent. Every sync is a
// full replace; failure here is fatal for the run.
func (d *DB) ClearAll() error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"editions", "distributors", "prints"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) InsertPrint(p internal.PrintRecord) (int64, error) {
	urls, _ := json.Marshal(p.ImageURLs)
	if p.ImageURLs == nil {
		urls = []byte(`[]`)
	}
	result, err := d.conn.Exec(`
INSERT INTO prints (external_id, name, short_name, description, total_editions, web_link, notes, image_urls, is_active, last_synced_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, p.ExternalID, p.Name, p.ShortName, p.Description, p.TotalEditions, p.WebLink, p.Notes, string(urls), boolInt(p.IsActive), nowText())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) InsertDistributor(rec internal.DistributorRecord) (int64, error) {
	result, err := d.conn.Exec(`
INSERT INTO distributors (external_id, name, short_name, commission_percentage, notes, contact_number, web_address, last_update_date, is_active, last_synced_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, rec.ExternalID, rec.Name, rec.ShortName, decimalText(rec.CommissionPct), rec.Notes, rec.ContactNumber, rec.WebAddress, dateText(rec.LastUpdateDate), boolInt(rec.IsActive), nowText())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// EnsureDirectDistributor lazily creates the sentinel "Direct"
// distributor (0% commission) when the source batch never mentioned
// it. Returns true when it had to be created.
func (d *DB) EnsureDirectDistributor() (bool, error) {
	var id int
	err := d.conn.QueryRow(`SELECT id FROM distributors WHERE name = ?`, internal.DirectDistributorName).Scan(&id)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	zero := decimal.Zero
	_, err = d.InsertDistributor(internal.DistributorRecord{
		ExternalID:    "direct-sentinel",
		Name:          internal.DirectDistributorName,
		ShortName:     internal.DirectDistributorName,
		CommissionPct: &zero,
		IsActive:      true,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *DB) PrintNameIDs() (map[string]int, error) {
	return d.nameIDs("prints")
}

func (d *DB) DistributorNameIDs() (map[string]int, error) {
	return d.nameIDs("distributors")
}

func (d *DB) nameIDs(table string) (map[string]int, error) {
	rows, err := d.conn.Query(`SELECT name, id FROM ` + table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var name string
		var id int
		if err := rows.Scan(&name, &id); err != nil {
			return nil, err
		}
		out[name] = id
	}
	return out, rows.Err()
}

// BulkUpsertEditions inserts one batch of editions with
// insert-or-ignore semantics: rows conflicting with any unique key
// (external id, or print/edition-number pair) are silently dropped.
// Returns the number actually inserted.
func (d *DB) BulkUpsertEditions(records []internal.EditionRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT OR IGNORE INTO editions (
  external_id, print_id, distributor_id, edition_number, display_name,
  size, frame_type, variation,
  is_printed, is_sold, is_settled, is_stock_checked, to_check_in_detail,
  retail_price, date_sold, commission_percentage, date_in_gallery,
  notes, payment_note, status_confidence, last_synced_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	now := nowText()
	for _, e := range records {
		result, err := stmt.Exec(
			e.ExternalID, e.PrintID, e.DistributorID, e.EditionNumber, e.DisplayName,
			string(e.Size), string(e.FrameType), e.Variation,
			boolInt(e.IsPrinted), boolInt(e.IsSold), boolInt(e.IsSettled), boolInt(e.IsStockChecked), boolInt(e.ToCheckDetail),
			decimalText(e.RetailPrice), dateText(e.DateSold), decimalText(e.CommissionPct), dateText(e.DateInGallery),
			e.Notes, e.PaymentNote, string(e.StatusConfidence), now,
		)
		if err != nil {
			return 0, err
		}
		if n, err := result.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// SettleStaleSales marks sold, unsettled editions with a sale date on
// or before the cutoff as settled. Stale unsettled sales are assumed
// resolved; the cutoff is a configured policy, not a constant.
func (d *DB) SettleStaleSales(cutoff time.Time) (int64, error) {
	result, err := d.conn.Exec(`
UPDATE editions
SET is_settled = 1, updated_at = CURRENT_TIMESTAMP
WHERE is_sold = 1 AND is_settled = 0
  AND date_sold IS NOT NULL AND date_sold <= ?
`, cutoff.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// MarkLegacyDistributor tags every edition held by the named
// distributor as legacy_unknown, flagging historically ambiguous
// inventory out of default active views.
func (d *DB) MarkLegacyDistributor(name string) (int64, error) {
	result, err := d.conn.Exec(`
UPDATE editions
SET status_confidence = ?, updated_at = CURRENT_TIMESTAMP
WHERE distributor_id IN (SELECT id FROM distributors WHERE lower(name) = lower(?))
`, string(internal.StatusLegacyUnknown), name)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (d *DB) UpdatePrintImagePath(printID int, path string) error {
	_, err := d.conn.Exec(`
UPDATE prints SET primary_image_path = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
`, path, printID)
	return err
}

type PrintSummary struct {
	ID        int
	Name      string
	ShortName string
	ImageURLs []string
	ImagePath *string
}

func (d *DB) ListPrints() ([]PrintSummary, error) {
	rows, err := d.conn.Query(`SELECT id, name, short_name, image_urls, primary_image_path FROM prints ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PrintSummary
	for rows.Next() {
		var p PrintSummary
		var urls string
		if err := rows.Scan(&p.ID, &p.Name, &p.ShortName, &urls, &p.ImagePath); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(urls), &p.ImageURLs)
		out = append(out, p)
	}
	return out, rows.Err()
}

type Stats struct {
	Prints         int
	Distributors   int
	Editions       int
	EditionsSold   int
	EditionsUnsold int
	TotalRevenue   decimal.Decimal
	LastSync       *internal.SyncRun
}

func (d *DB) GetStats() (Stats, error) {
	var s Stats
	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM prints`, &s.Prints},
		{`SELECT COUNT(*) FROM distributors`, &s.Distributors},
		{`SELECT COUNT(*) FROM editions`, &s.Editions},
		{`SELECT COUNT(*) FROM editions WHERE is_sold = 1`, &s.EditionsSold},
		{`SELECT COUNT(*) FROM editions WHERE is_sold = 0`, &s.EditionsUnsold},
	}
	for _, c := range counts {
		if err := d.conn.QueryRow(c.query).Scan(c.dest); err != nil {
			return s, err
		}
	}

	rows, err := d.conn.Query(`SELECT retail_price FROM editions WHERE is_sold = 1 AND retail_price IS NOT NULL`)
	if err != nil {
		return s, err
	}
	defer rows.Close()
	total := decimal.Zero
	for rows.Next() {
		var price string
		if err := rows.Scan(&price); err != nil {
			return s, err
		}
		if parsed, err := decimal.NewFromString(price); err == nil {
			total = total.Add(parsed)
		}
	}
	if err := rows.Err(); err != nil {
		return s, err
	}
	s.TotalRevenue = total

	last, err := d.latestSyncRun()
	if err != nil {
		return s, err
	}
	s.LastSync = last
	return s, nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func decimalText(v *decimal.Decimal) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}

func dateText(v *time.Time) *string {
	if v == nil {
		return nil
	}
	s := v.Format("2006-01-02")
	return &s
}

func nowText() string {
	return time.Now().UTC().Format(time.RFC3339)
}
