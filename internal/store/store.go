package store

import (
	"fmt"
	"strings"
	"time"
)

// Record is one table row as a field -> value mapping. A field that is
// present with an empty value clears the stored cell on upsert; a field
// that is absent leaves the stored cell untouched.
type Record map[string]string

// keySep joins key tuple values when indexing rows. It cannot appear in
// cell data, which keeps composite keys unambiguous.
const keySep = "\x01"

// lockWait bounds how long a mutating call waits for the store lock
// before giving up. Failing loudly beats a hung request.
const lockWait = 5 * time.Second

// ErrLockTimeout is returned when the store-wide write lock could not be
// acquired within lockWait. It signals infrastructure trouble, not a bad
// request.
var ErrLockTimeout = fmt.Errorf("store: lock wait timed out")

// ConfigError reports a misconfigured table: missing sheet, missing
// header row, or a key field the header does not contain.
type ConfigError struct {
	Table  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("store: table %s: %s", e.Table, e.Reason)
}

func errRowOutOfRange(index int) error {
	return fmt.Errorf("store: row index %d out of range", index)
}

// Store is a keyed row store over named header-first grids. All mutating
// operations serialize behind one store-wide lock with a bounded wait;
// reads are deliberately unlocked (single-writer, tolerant readers).
type Store struct {
	grids  GridSet
	schema map[string]TableSchema
	sem    chan struct{}
}

// New creates a Store over the given grids using the full table schema.
func New(grids GridSet) *Store {
	return &Store{
		grids:  grids,
		schema: schemaByName(Tables()),
		sem:    make(chan struct{}, 1),
	}
}

func (s *Store) acquire() error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-time.After(lockWait):
		return ErrLockTimeout
	}
}

func (s *Store) release() { <-s.sem }

// header returns the trimmed header row of a table, or a ConfigError
// when the table or its header row is missing.
func (s *Store) header(table string, values [][]string) ([]string, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, &ConfigError{Table: table, Reason: "no header row"}
	}
	header := make([]string, len(values[0]))
	empty := true
	for i, h := range values[0] {
		header[i] = strings.TrimSpace(h)
		if header[i] != "" {
			empty = false
		}
	}
	if empty {
		return nil, &ConfigError{Table: table, Reason: "no header row"}
	}
	return header, nil
}

// checkKeys verifies the key tuple is declared for the table and every
// key field exists in the header.
func (s *Store) checkKeys(table string, header, keys []string) error {
	schema, ok := s.schema[table]
	if !ok {
		return &ConfigError{Table: table, Reason: "unknown table"}
	}
	declared := false
	for _, tuple := range schema.Keys {
		if equalFields(tuple, keys) {
			declared = true
			break
		}
	}
	if !declared {
		return &ConfigError{Table: table, Reason: fmt.Sprintf("undeclared key tuple %v", keys)}
	}
	idx := indexOf(header)
	for _, k := range keys {
		if _, ok := idx[k]; !ok {
			return &ConfigError{Table: table, Reason: fmt.Sprintf("key field %q not in header", k)}
		}
	}
	return nil
}

func equalFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func indexOf(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	return idx
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func rowBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ReadAll returns every non-blank data row of a table as a Record.
// An empty table (no header or no data rows) yields an empty slice.
func (s *Store) ReadAll(table string) ([]Record, error) {
	grid, err := s.grids.Grid(table)
	if err != nil {
		return nil, err
	}
	values, err := grid.Values()
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	if len(values) == 0 {
		return []Record{}, nil
	}
	header, err := s.header(table, values)
	if err != nil {
		// Reading a table that simply has nothing in it is not an error.
		return []Record{}, nil
	}
	out := make([]Record, 0, len(values)-1)
	for _, row := range values[1:] {
		if rowBlank(row) {
			continue
		}
		rec := make(Record, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			rec[h] = cellAt(row, i)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Append writes one record as a new physical row. Header fields absent
// from the record become empty cells.
func (s *Store) Append(table string, rec Record) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()
	return s.appendLocked(table, rec)
}

func (s *Store) appendLocked(table string, rec Record) error {
	grid, err := s.grids.Grid(table)
	if err != nil {
		return err
	}
	values, err := grid.Values()
	if err != nil {
		return fmt.Errorf("failed to read table %s: %w", table, err)
	}
	header, err := s.header(table, values)
	if err != nil {
		return err
	}
	if err := grid.AppendRow(projectRow(header, rec, nil)); err != nil {
		return fmt.Errorf("failed to append to %s: %w", table, err)
	}
	return nil
}

// AppendMany inserts all records in one range write.
func (s *Store) AppendMany(table string, recs []Record) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	if err := s.acquire(); err != nil {
		return 0, err
	}
	defer s.release()

	grid, err := s.grids.Grid(table)
	if err != nil {
		return 0, err
	}
	values, err := grid.Values()
	if err != nil {
		return 0, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	header, err := s.header(table, values)
	if err != nil {
		return 0, err
	}
	rows := make([][]string, len(recs))
	for i, rec := range recs {
		rows[i] = projectRow(header, rec, nil)
	}
	last := len(values) - 1
	if err := grid.InsertRowsAfter(last, rows); err != nil {
		return 0, fmt.Errorf("failed to batch-append to %s: %w", table, err)
	}
	return len(rows), nil
}

// projectRow maps a record onto the header order. With a current row,
// fields absent from the record keep their current value; without one,
// absent fields become empty cells.
func projectRow(header []string, rec Record, current []string) []string {
	row := make([]string, len(header))
	for i, h := range header {
		if v, ok := rec[h]; ok {
			row[i] = v
		} else if current != nil {
			row[i] = cellAt(current, i)
		}
	}
	return row
}

func keyOfRecord(keys []string, rec Record) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = rec[k]
	}
	return strings.Join(parts, keySep)
}

func keyOfRow(keys []string, idx map[string]int, row []string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = cellAt(row, idx[k])
	}
	return strings.Join(parts, keySep)
}

// UpsertOne updates the first row whose key fields match the record, or
// appends a new row when none matches.
func (s *Store) UpsertOne(table string, keys []string, rec Record) error {
	_, err := s.UpsertMany(table, keys, []Record{rec})
	return err
}

// UpsertMany applies a batch of keyed upserts. Existing rows are indexed
// once by their key tuple, so cost is proportional to existing rows plus
// incoming records. Matched rows are rewritten in place; all unmatched
// records are inserted together. Returns the number of records applied.
func (s *Store) UpsertMany(table string, keys []string, recs []Record) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	if err := s.acquire(); err != nil {
		return 0, err
	}
	defer s.release()

	grid, err := s.grids.Grid(table)
	if err != nil {
		return 0, err
	}
	values, err := grid.Values()
	if err != nil {
		return 0, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	header, err := s.header(table, values)
	if err != nil {
		return 0, err
	}
	if err := s.checkKeys(table, header, keys); err != nil {
		return 0, err
	}
	idx := indexOf(header)

	type hit struct {
		rowIndex int
		current  []string
	}
	index := make(map[string]hit, len(values)-1)
	for i, row := range values[1:] {
		index[keyOfRow(keys, idx, row)] = hit{rowIndex: i + 1, current: row}
	}

	var inserts [][]string
	applied := 0
	for _, rec := range recs {
		if h, ok := index[keyOfRecord(keys, rec)]; ok {
			next := projectRow(header, rec, h.current)
			if err := grid.SetRow(h.rowIndex, next); err != nil {
				return applied, fmt.Errorf("failed to update row in %s: %w", table, err)
			}
			index[keyOfRecord(keys, rec)] = hit{rowIndex: h.rowIndex, current: next}
		} else {
			inserts = append(inserts, projectRow(header, rec, nil))
		}
		applied++
	}

	switch len(inserts) {
	case 0:
	case 1:
		if err := grid.AppendRow(inserts[0]); err != nil {
			return applied, fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	default:
		last := len(values) - 1
		if err := grid.InsertRowsAfter(last, inserts); err != nil {
			return applied, fmt.Errorf("failed to batch-insert into %s: %w", table, err)
		}
	}
	return applied, nil
}

// UpdateByID patches selected fields of the row with the given id.
// Returns false when no row matches.
func (s *Store) UpdateByID(table, id string, patch Record) (bool, error) {
	if err := s.acquire(); err != nil {
		return false, err
	}
	defer s.release()

	grid, err := s.grids.Grid(table)
	if err != nil {
		return false, err
	}
	values, err := grid.Values()
	if err != nil {
		return false, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	header, err := s.header(table, values)
	if err != nil {
		return false, err
	}
	idx := indexOf(header)
	idCol, ok := idx["id"]
	if !ok {
		return false, &ConfigError{Table: table, Reason: `no "id" column`}
	}
	for i, row := range values[1:] {
		if cellAt(row, idCol) != id {
			continue
		}
		next := projectRow(header, patch, row)
		next[idCol] = id // the id itself is never patched away
		if err := grid.SetRow(i+1, next); err != nil {
			return false, fmt.Errorf("failed to update row in %s: %w", table, err)
		}
		return true, nil
	}
	return false, nil
}

// DeleteByID removes the first row whose id field equals id. Deletes
// share the store lock with upserts; an unlocked delete racing a batch
// upsert would operate on stale row indices.
func (s *Store) DeleteByID(table, id string) (bool, error) {
	n, err := s.DeleteWhere(table, func(rec Record) bool {
		return rec["id"] == id
	})
	return n > 0, err
}

// DeleteWhere removes every row satisfying pred, scanning bottom-up so
// deletion does not shift rows that are still to be visited.
func (s *Store) DeleteWhere(table string, pred func(Record) bool) (int, error) {
	if err := s.acquire(); err != nil {
		return 0, err
	}
	defer s.release()

	grid, err := s.grids.Grid(table)
	if err != nil {
		return 0, err
	}
	values, err := grid.Values()
	if err != nil {
		return 0, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	if len(values) < 2 {
		return 0, nil
	}
	header, err := s.header(table, values)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for i := len(values) - 1; i >= 1; i-- {
		rec := make(Record, len(header))
		for j, h := range header {
			if h == "" {
				continue
			}
			rec[h] = cellAt(values[i], j)
		}
		if pred(rec) {
			if err := grid.DeleteRow(i); err != nil {
				return deleted, fmt.Errorf("failed to delete from %s: %w", table, err)
			}
			deleted++
		}
	}
	return deleted, nil
}
