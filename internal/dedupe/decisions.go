// Package dedupe resolves duplicate edition rows against a
// pre-computed decision table produced by a prior manual
// deduplication pass.
package dedupe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"printbase/internal"
)

// Resolver answers, per source row index, whether the row should be
// skipped. An empty resolver keeps everything: absence of the decision
// table defers duplicate handling to the storage layer's
// insert-or-ignore semantics.
type Resolver struct {
	skips map[int]internal.Decision
}

func NewResolver(decisions []internal.Decision) *Resolver {
	skips := make(map[int]internal.Decision)
	for _, d := range decisions {
		if d.Action == internal.DecisionSkip {
			skips[d.RowIndex] = d
		}
	}
	return &Resolver{skips: skips}
}

func (r *Resolver) ShouldSkip(rowIndex int) (internal.Decision, bool) {
	d, ok := r.skips[rowIndex]
	return d, ok
}

func (r *Resolver) SkipCount() int {
	return len(r.skips)
}

// Load reads the decision table from a CSV of
// index,edition,...,action,reason rows. A missing file is not an
// error; it yields a keep-everything resolver.
func Load(path string) (*Resolver, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewResolver(nil), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decisions, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse decisions %s: %w", path, err)
	}
	return NewResolver(decisions), nil
}

func parse(r io.Reader) ([]internal.Decision, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))] = i
	}
	idxCol, ok := col["index"]
	if !ok {
		return nil, fmt.Errorf("decision table missing 'index' column")
	}
	actionCol, ok := col["action"]
	if !ok {
		return nil, fmt.Errorf("decision table missing 'action' column")
	}

	var out []internal.Decision
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) <= idxCol || len(record) <= actionCol {
			continue
		}

		rowIndex, err := strconv.Atoi(strings.TrimSpace(record[idxCol]))
		if err != nil {
			continue
		}

		d := internal.Decision{
			RowIndex: rowIndex,
			Action:   internal.DecisionAction(strings.ToUpper(strings.TrimSpace(record[actionCol]))),
		}
		if i, ok := col["edition"]; ok && i < len(record) {
			d.Edition = strings.TrimSpace(record[i])
		}
		if i, ok := col["reason"]; ok && i < len(record) {
			d.Reason = strings.TrimSpace(record[i])
		}
		if d.Action != internal.DecisionKeep && d.Action != internal.DecisionSkip {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
