package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"printbase/internal"
)

// Change capture is done by sqlite triggers so that every write path -
// row inserts, bulk upserts, post-processing bulk updates - is logged
// without the Go code having to remember to. Old/new row images are
// stored as JSON; changed fields are derived at query time.

var auditColumns = map[string][]string{
	"prints": {
		"external_id", "name", "short_name", "description", "total_editions",
		"web_link", "notes", "primary_image_path", "is_active",
	},
	"distributors": {
		"external_id", "name", "short_name", "commission_percentage",
		"notes", "contact_number", "web_address", "is_active",
	},
	"editions": {
		"external_id", "print_id", "distributor_id", "edition_number", "display_name",
		"size", "frame_type", "variation",
		"is_printed", "is_sold", "is_settled", "is_stock_checked", "to_check_in_detail",
		"retail_price", "date_sold", "commission_percentage", "date_in_gallery",
		"status_confidence", "is_active",
	},
}

func (d *DB) initAuditTriggers() error {
	var b strings.Builder
	for _, table := range []string{"prints", "distributors", "editions"} {
		cols := auditColumns[table]
		fmt.Fprintf(&b, `
CREATE TRIGGER IF NOT EXISTS trg_%[1]s_audit_insert AFTER INSERT ON %[1]s BEGIN
  INSERT INTO audit_log (table_name, record_id, action, new_values)
  VALUES ('%[1]s', NEW.id, 'INSERT', %[2]s);
END;
CREATE TRIGGER IF NOT EXISTS trg_%[1]s_audit_update AFTER UPDATE ON %[1]s BEGIN
  INSERT INTO audit_log (table_name, record_id, action, old_values, new_values)
  VALUES ('%[1]s', NEW.id, 'UPDATE', %[3]s, %[2]s);
END;
CREATE TRIGGER IF NOT EXISTS trg_%[1]s_audit_delete AFTER DELETE ON %[1]s BEGIN
  INSERT INTO audit_log (table_name, record_id, action, old_values)
  VALUES ('%[1]s', OLD.id, 'DELETE', %[4]s);
END;
`, table, jsonObjectExpr("NEW", cols), jsonObjectExpr("OLD", cols), jsonObjectExpr("OLD", cols))
	}

	_, err := d.conn.Exec(b.String())
	return err
}

func jsonObjectExpr(prefix string, cols []string) string {
	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, fmt.Sprintf("'%s', %s.%s", col, prefix, col))
	}
	return "json_object(" + strings.Join(parts, ", ") + ")"
}

func (d *DB) RecentChanges(since time.Duration, limit int) ([]internal.AuditEntry, error) {
	cutoff := time.Now().UTC().Add(-since).Format("2006-01-02 15:04:05")
	return d.queryAudit(`
SELECT id, table_name, record_id, action, changed_at, old_values, new_values
FROM audit_log WHERE changed_at >= ?
ORDER BY changed_at DESC, id DESC LIMIT ?
`, cutoff, limit)
}

func (d *DB) RecordHistory(table string, recordID int) ([]internal.AuditEntry, error) {
	return d.queryAudit(`
SELECT id, table_name, record_id, action, changed_at, old_values, new_values
FROM audit_log WHERE table_name = ? AND record_id = ?
ORDER BY changed_at ASC, id ASC
`, table, recordID)
}

// FieldHistory lists changes where the named field differs between the
// old and new row images.
func (d *DB) FieldHistory(table, field string, limit int) ([]internal.AuditEntry, error) {
	entries, err := d.queryAudit(`
SELECT id, table_name, record_id, action, changed_at, old_values, new_values
FROM audit_log
WHERE table_name = ? AND action = 'UPDATE'
  AND json_extract(old_values, '$.' || ?) IS NOT json_extract(new_values, '$.' || ?)
ORDER BY changed_at DESC, id DESC LIMIT ?
`, table, field, field, limit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (d *DB) queryAudit(query string, args ...any) ([]internal.AuditEntry, error) {
	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.AuditEntry
	for rows.Next() {
		var e internal.AuditEntry
		var action, changedAt string
		var oldValues, newValues sql.NullString
		if err := rows.Scan(&e.ID, &e.TableName, &e.RecordID, &action, &changedAt, &oldValues, &newValues); err != nil {
			return nil, err
		}
		e.Action = internal.AuditAction(action)
		e.ChangedAt = parseTimestamp(changedAt)
		if oldValues.Valid {
			e.OldValues = &oldValues.String
		}
		if newValues.Valid {
			e.NewValues = &newValues.String
		}
		e.ChangedFields = diffFields(e.OldValues, e.NewValues)
		out = append(out, e)
	}
	return out, rows.Err()
}

func parseTimestamp(value string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func diffFields(oldJSON, newJSON *string) []string {
	if oldJSON == nil || newJSON == nil {
		return nil
	}
	var oldMap, newMap map[string]any
	if err := json.Unmarshal([]byte(*oldJSON), &oldMap); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(*newJSON), &newMap); err != nil {
		return nil
	}

	var fields []string
	for key, oldVal := range oldMap {
		if fmt.Sprint(oldVal) != fmt.Sprint(newMap[key]) {
			fields = append(fields, key)
		}
	}
	sort.Strings(fields)
	return fields
}
