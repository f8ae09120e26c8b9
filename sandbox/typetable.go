package sandbox

import "github.com/fuel-indexer-go/indexer/catalog"

// TypeTable resolves a TypeID (the 8-byte header every on-wire object leads
// with) to the table and column shape a ff_get_object/ff_put_object host
// call should read or write. NewTypeTable returns it empty; the caller
// fills it with Register, one entry per compiled object, before the
// executor dispatches any batch.
type TypeTable struct {
	byID map[uint64]typeEntry
}

type typeEntry struct {
	table   string
	columns []catalog.Column
}

// NewTypeTable builds an empty TypeTable; entries are added with Register.
func NewTypeTable() *TypeTable {
	return &TypeTable{byID: make(map[uint64]typeEntry)}
}

// Register associates typeID with the table and column shape objects of
// that type are stored under.
func (t *TypeTable) Register(typeID uint64, table string, columns []catalog.Column) {
	t.byID[typeID] = typeEntry{table: table, columns: columns}
}

// Lookup returns the table name and the columns registered for typeID,
// exactly as passed to Register (hostPutObject skips a column named
// "object" if one is present).
func (t *TypeTable) Lookup(typeID uint64) (table string, columns []catalog.Column, ok bool) {
	e, found := t.byID[typeID]
	if !found {
		return "", nil, false
	}
	return e.table, e.columns, true
}
