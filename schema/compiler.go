package schema

import (
	"sort"

	"github.com/fuel-indexer-go/indexer/catalog"
	"github.com/vektah/gqlparser/v2/ast"
)

// ForeignKey describes a column that references a field of another
// compiled object: its id column unless @join(on: "...") names another.
type ForeignKey struct {
	Field          string
	TargetObject   string
	ReferenceField string
}

// CompiledObject is one GraphQL object type resolved to a storage table:
// its stable TypeID, table name, ordered column set, and the foreign keys
// among those columns.
type CompiledObject struct {
	Name        string
	TableName   string
	TypeID      uint64
	Columns     []catalog.Column
	ForeignKeys map[string]ForeignKey
}

// CompiledSchema is the output of compiling one GraphQL SDL document: the
// DDL statements needed to materialize it, and per-object metadata the
// storage gateway and query planner consult at runtime.
type CompiledSchema struct {
	Namespace  string
	Identifier string
	Version    string
	Objects    []CompiledObject
	Statements []string
}

// ObjectByName looks up a compiled object by its GraphQL name.
func (s *CompiledSchema) ObjectByName(name string) (CompiledObject, bool) {
	for _, o := range s.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return CompiledObject{}, false
}

// Compile parses source and resolves it into a CompiledSchema: every
// object type becomes a table, every field becomes a column, and fields
// whose declared type names another object become foreign keys pointing
// at that object's id column (or the field a @join(on: "...") directive
// names). Compilation is deterministic and
// idempotent: compiling the same source twice yields byte-identical
// Statements and TypeIDs.
func Compile(namespace, identifier string, isNative bool, source string) (*CompiledSchema, error) {
	parsed, err := Parse(namespace, identifier, isNative, source)
	if err != nil {
		return nil, err
	}

	out := &CompiledSchema{
		Namespace:  namespace,
		Identifier: identifier,
		Version:    Version(source),
		Statements: []string{CreateSchemaStatement(namespace)},
	}

	objects := append([]*ast.Definition(nil), parsed.Objects...)
	sort.SliceStable(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })

	for _, def := range objects {
		obj, err := compileObject(parsed, def)
		if err != nil {
			return nil, err
		}
		stmt, err := CreateTableStatement(namespace, obj.TableName, obj.Columns)
		if err != nil {
			return nil, err
		}
		out.Statements = append(out.Statements, stmt)
		for _, col := range obj.Columns {
			if col.Indexed {
				out.Statements = append(out.Statements, CreateIndexStatement(namespace, obj.TableName, col.Name))
			}
		}
		out.Objects = append(out.Objects, obj)
	}
	return out, nil
}

func compileObject(parsed *ParsedSchema, def *ast.Definition) (CompiledObject, error) {
	obj := CompiledObject{
		Name:        def.Name,
		TableName:   toLower(def.Name),
		TypeID:      TypeID(parsed.Namespace, def.Name),
		ForeignKeys: map[string]ForeignKey{},
	}

	seen := map[string]struct{}{}
	position := 0
	for _, f := range def.Fields {
		if f.Name == "__typename" {
			continue
		}
		typeName := normalizeFieldTypeName(f.Type)
		nullable := !f.Type.NonNull
		noRelation := hasDirective(f.Directives, "norelation")
		indexed := hasDirective(f.Directives, "indexed")
		unique := hasDirective(f.Directives, "unique")

		var col catalog.Column
		switch {
		case typeName == "ID":
			col = catalog.NewColumn(f.Name, typeName, catalog.KindID, position)
		case parsed.HasScalar(typeName) || isBuiltinScalar(typeName):
			kind, ok := catalog.ParseKind(typeName)
			if !ok {
				return CompiledObject{}, &UnsupportedTypeError{Object: def.Name, Field: f.Name, Type: typeName}
			}
			col = catalog.NewColumn(f.Name, typeName, kind, position)
		case parsed.IsEnumType(typeName):
			col = catalog.NewColumn(f.Name, typeName, catalog.KindCharfield, position)
		case !noRelation && parsed.IsPossibleForeignKey(typeName):
			joinField := joinDirectiveTarget(f.Directives)
			if _, ok := parsed.ObjectFields[typeName][joinField]; !ok {
				return CompiledObject{}, &UnresolvedJoinError{Object: def.Name, Field: f.Name, TargetOf: typeName, ReferenceField: joinField}
			}
			obj.ForeignKeys[f.Name] = ForeignKey{
				Field:          f.Name,
				TargetObject:   typeName,
				ReferenceField: joinField,
			}
			col = catalog.NewColumn(f.Name, typeName, catalog.KindID, position)
		default:
			return CompiledObject{}, &UnsupportedTypeError{Object: def.Name, Field: f.Name, Type: typeName}
		}

		col = col.WithNullable(nullable)
		if unique {
			col = col.WithUnique(true)
		}
		if indexed {
			col = col.WithIndexed(true)
		}

		if _, dup := seen[f.Name]; dup {
			return CompiledObject{}, &DuplicateFieldError{Object: def.Name, Field: f.Name}
		}
		seen[f.Name] = struct{}{}

		obj.Columns = append(obj.Columns, col)
		position++
	}

	if _, dup := seen["object"]; dup {
		return CompiledObject{}, &DuplicateFieldError{Object: def.Name, Field: "object"}
	}
	obj.Columns = append(obj.Columns, objectColumn(position))
	return obj, nil
}

func hasDirective(directives ast.DirectiveList, name string) bool {
	for _, d := range directives {
		if d.Name == name {
			return true
		}
	}
	return false
}

// joinDirectiveTarget returns the field named by a @join(on: ...) argument,
// defaulting to "id" when the directive is absent or carries no argument.
func joinDirectiveTarget(directives ast.DirectiveList) string {
	for _, d := range directives {
		if d.Name != "join" {
			continue
		}
		for _, arg := range d.Arguments {
			if arg.Name == "on" && arg.Value != nil {
				return arg.Value.Raw
			}
		}
	}
	return "id"
}

func isBuiltinScalar(name string) bool {
	switch name {
	case "String", "Int", "Float", "Boolean":
		return true
	default:
		return false
	}
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
