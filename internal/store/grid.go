package store

// Grid is the minimal surface the row store needs from a tabular
// persistence medium: a rectangular grid of string cells where row 0 is
// the header. Row indices are zero-based and include the header row.
type Grid interface {
	// Values returns the full grid. The returned slice must not be
	// retained by the grid after the call.
	Values() ([][]string, error)

	// SetRow overwrites one existing row.
	SetRow(index int, cells []string) error

	// AppendRow adds a single row after the last one.
	AppendRow(cells []string) error

	// InsertRowsAfter inserts rows immediately after the given index.
	InsertRowsAfter(index int, rows [][]string) error

	// DeleteRow removes the row at index, shifting later rows up.
	DeleteRow(index int) error
}

// GridSet resolves a named table to its backing grid.
type GridSet interface {
	Grid(table string) (Grid, error)
}

// MemoryGrid is an in-memory Grid used in tests and as a scratch backend.
type MemoryGrid struct {
	rows [][]string
}

// NewMemoryGrid creates a memory grid seeded with the given rows
// (typically a header row first).
func NewMemoryGrid(rows ...[]string) *MemoryGrid {
	g := &MemoryGrid{}
	for _, r := range rows {
		g.rows = append(g.rows, append([]string(nil), r...))
	}
	return g
}

// Values returns a copy of the grid contents.
func (g *MemoryGrid) Values() ([][]string, error) {
	out := make([][]string, len(g.rows))
	for i, r := range g.rows {
		out[i] = append([]string(nil), r...)
	}
	return out, nil
}

// SetRow overwrites one row.
func (g *MemoryGrid) SetRow(index int, cells []string) error {
	if index < 0 || index >= len(g.rows) {
		return errRowOutOfRange(index)
	}
	g.rows[index] = append([]string(nil), cells...)
	return nil
}

// AppendRow adds a row at the end.
func (g *MemoryGrid) AppendRow(cells []string) error {
	g.rows = append(g.rows, append([]string(nil), cells...))
	return nil
}

// InsertRowsAfter inserts rows after index.
func (g *MemoryGrid) InsertRowsAfter(index int, rows [][]string) error {
	if index < 0 || index >= len(g.rows) {
		return errRowOutOfRange(index)
	}
	inserted := make([][]string, len(rows))
	for i, r := range rows {
		inserted[i] = append([]string(nil), r...)
	}
	tail := append([][]string(nil), g.rows[index+1:]...)
	g.rows = append(g.rows[:index+1], append(inserted, tail...)...)
	return nil
}

// DeleteRow removes the row at index.
func (g *MemoryGrid) DeleteRow(index int) error {
	if index < 0 || index >= len(g.rows) {
		return errRowOutOfRange(index)
	}
	g.rows = append(g.rows[:index], g.rows[index+1:]...)
	return nil
}

// MemoryGridSet is a GridSet over named MemoryGrids. Unknown tables are
// created on demand with the schema header when a schema is attached.
type MemoryGridSet struct {
	grids  map[string]*MemoryGrid
	schema map[string]TableSchema
}

// NewMemoryGridSet creates an empty grid set bootstrapped from schema:
// every known table starts with just its header row.
func NewMemoryGridSet(tables []TableSchema) *MemoryGridSet {
	s := &MemoryGridSet{
		grids:  make(map[string]*MemoryGrid),
		schema: make(map[string]TableSchema),
	}
	for _, t := range tables {
		s.schema[t.Name] = t
		s.grids[t.Name] = NewMemoryGrid(t.Header)
	}
	return s
}

// Grid returns the grid for a table.
func (s *MemoryGridSet) Grid(table string) (Grid, error) {
	g, ok := s.grids[table]
	if !ok {
		return nil, &ConfigError{Table: table, Reason: "no such table"}
	}
	return g, nil
}
