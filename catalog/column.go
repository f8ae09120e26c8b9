package catalog

// Column describes one materialized field of an indexed type: its storage
// name, kind, nullability, uniqueness, and its position within the type's
// column list (used to preserve stable ordering across schema recompiles).
type Column struct {
	Name        string
	GraphQLType string
	Kind        Kind
	Nullable    bool
	Unique      bool
	Indexed     bool
	Position    int
}

// NewColumn returns a Column at the given position.
func NewColumn(name, graphQLType string, kind Kind, position int) Column {
	return Column{
		Name:        name,
		GraphQLType: graphQLType,
		Kind:        kind,
		Position:    position,
	}
}

// WithNullable returns a copy of c with Nullable set.
func (c Column) WithNullable(nullable bool) Column {
	c.Nullable = nullable
	return c
}

// WithUnique returns a copy of c with Unique set.
func (c Column) WithUnique(unique bool) Column {
	c.Unique = unique
	return c
}

// WithIndexed returns a copy of c with Indexed set. An indexed column gets
// a secondary btree index emitted alongside its table, for fields queried
// by value but not suited to a uniqueness constraint.
func (c Column) WithIndexed(indexed bool) Column {
	c.Indexed = indexed
	return c
}

// SQLFragment renders the column definition fragment used inside a
// CREATE TABLE statement, e.g. "owner VARCHAR(64) NOT NULL".
func (c Column) SQLFragment() (string, error) {
	sqlType, err := c.Kind.SQLType()
	if err != nil {
		return "", err
	}
	frag := c.Name + " " + sqlType
	if c.Kind != KindID {
		if !c.Nullable {
			frag += " NOT NULL"
		}
		if c.Unique {
			frag += " UNIQUE"
		}
	}
	return frag, nil
}
