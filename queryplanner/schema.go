package queryplanner

import (
	"context"
	"fmt"

	"github.com/fuel-indexer-go/indexer/registry"
)

// LoadedSchema is the subset of a committed schema version the planner
// needs to resolve a GraphQL query: its objects keyed by GraphQL name,
// and the synthetic root fields that expose them.
type LoadedSchema struct {
	Namespace  string
	Identifier string
	Version    string

	objects map[string]ObjectMeta
	roots   map[string]string // root field name -> object GraphQL name
}

// ObjectMeta is one compiled object's catalog metadata, as persisted by
// registry.Commit: its table name and ordered columns, including any
// foreign-key columns (ColumnRow.ReferenceField non-empty).
type ObjectMeta struct {
	TypeID  int64
	Table   string
	Columns []registry.ColumnRow
}

// ColumnByName looks up one of the object's columns.
func (o ObjectMeta) ColumnByName(name string) (registry.ColumnRow, bool) {
	for _, c := range o.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return registry.ColumnRow{}, false
}

// ObjectByName looks up a loaded object type by its GraphQL name.
func (s *LoadedSchema) ObjectByName(name string) (ObjectMeta, bool) {
	o, ok := s.objects[name]
	return o, ok
}

// RootObjectName returns the GraphQL object type a top-level query field
// resolves to.
func (s *LoadedSchema) RootObjectName(rootField string) (string, bool) {
	name, ok := s.roots[rootField]
	return name, ok
}

// LoadSchema reads every TypeIDRow, its ColumnRows, and the synthetic
// Query root's RootColumns for (namespace, identifier)'s latest committed
// schema version, assembling the metadata a Plan is built from.
func LoadSchema(ctx context.Context, c registry.Conn, namespace, identifier string) (*LoadedSchema, error) {
	name := registry.SchemaName(namespace, identifier)

	root, err := registry.LatestGraphRoot(ctx, c, name)
	if err != nil {
		return nil, fmt.Errorf("queryplanner: load graph root for %s: %w", name, err)
	}

	typeRows, err := registry.TypeIDsByNameVersion(ctx, c, name, root.Version)
	if err != nil {
		return nil, fmt.Errorf("queryplanner: load type ids for %s@%s: %w", name, root.Version, err)
	}

	rootColumns, err := registry.RootColumnsByRootID(ctx, c, root.ID)
	if err != nil {
		return nil, fmt.Errorf("queryplanner: load root columns for %s: %w", name, err)
	}

	loaded := &LoadedSchema{
		Namespace:  namespace,
		Identifier: identifier,
		Version:    root.Version,
		objects:    make(map[string]ObjectMeta, len(typeRows)),
		roots:      make(map[string]string, len(rootColumns)),
	}

	for _, t := range typeRows {
		cols, err := registry.ColumnsByTypeID(ctx, c, t.ID)
		if err != nil {
			return nil, fmt.Errorf("queryplanner: load columns for %s: %w", t.GraphQLName, err)
		}
		loaded.objects[t.GraphQLName] = ObjectMeta{TypeID: t.ID, Table: t.TableName, Columns: cols}
	}

	for _, rc := range rootColumns {
		loaded.roots[rc.ColumnName] = rc.GraphQLType
	}

	return loaded, nil
}
