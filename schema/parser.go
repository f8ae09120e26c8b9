// Package schema compiles a GraphQL SDL document into the catalog types,
// column sets and DDL statements the storage gateway materializes. It is
// the Go analogue of a hand-rolled GraphQL-to-SQL schema builder: parsing
// is delegated to gqlparser, and everything downstream (type ID
// assignment, foreign-key resolution, DDL emission) is purpose-built.
package schema

import (
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// ParsedSchema wraps the boilerplate of walking a parsed GraphQL document:
// classifying every type name, tracking which types are indexable objects
// versus enums, unions or scalars, and recording each field's declared
// type name for later column resolution.
type ParsedSchema struct {
	Namespace  string
	Identifier string
	IsNative   bool

	// TypeNames holds every type name seen in the document, including
	// scalars, enums, unions and objects.
	TypeNames map[string]struct{}

	// EnumNames, UnionNames and ScalarNames partition TypeNames by kind.
	EnumNames   map[string]struct{}
	UnionNames  map[string]struct{}
	ScalarNames map[string]struct{}

	// NonIndexableTypeNames holds type names for which no table is
	// created (currently just enums).
	NonIndexableTypeNames map[string]struct{}

	// ParsedTypeNames holds the names of every object type and field
	// name encountered while walking object definitions.
	ParsedTypeNames map[string]struct{}

	// ObjectFields maps an object type name to its field name -> declared
	// GraphQL type name (unwrapped of List/NonNull wrappers).
	ObjectFields map[string]map[string]string

	// FieldTypeMappings maps "Object.field" (or "Enum.VALUE") to the
	// field's declared type name.
	FieldTypeMappings map[string]string

	// Objects holds the object type definitions in no particular order
	// (they are collected from a map); Compile sorts them by name before
	// emitting tables.
	Objects []*ast.Definition

	// AST is the parsed, built-in-merged schema document.
	AST *ast.Schema
}

// Parse parses the given GraphQL SDL source and classifies every type
// definition it contains. namespace and identifier scope the resulting
// tables; isNative marks whether the schema is being compiled for a
// natively-executed indexer (affects nothing here, but is threaded through
// for downstream components that care).
func Parse(namespace, identifier string, isNative bool, source string) (*ParsedSchema, error) {
	ast, err := gqlparser.LoadSchema(&ast.Source{Name: identifier + ".graphql", Input: source})
	if err != nil {
		return nil, &ParseError{Namespace: namespace, Identifier: identifier, Err: err}
	}

	p := &ParsedSchema{
		Namespace:             namespace,
		Identifier:            identifier,
		IsNative:              isNative,
		TypeNames:             map[string]struct{}{},
		EnumNames:             map[string]struct{}{},
		UnionNames:            map[string]struct{}{},
		ScalarNames:           map[string]struct{}{},
		NonIndexableTypeNames: map[string]struct{}{},
		ParsedTypeNames:       map[string]struct{}{},
		ObjectFields:          map[string]map[string]string{},
		FieldTypeMappings:     map[string]string{},
		AST:                   ast,
	}

	for name, def := range ast.Types {
		if def.BuiltIn {
			continue
		}
		p.TypeNames[name] = struct{}{}

		switch def.Kind {
		case "SCALAR":
			p.ScalarNames[name] = struct{}{}
		case "ENUM":
			p.EnumNames[name] = struct{}{}
			p.NonIndexableTypeNames[name] = struct{}{}
			for _, v := range def.EnumValues {
				p.FieldTypeMappings[name+"."+v.Name] = name
			}
		case "UNION":
			p.UnionNames[name] = struct{}{}
		case "OBJECT":
			if isQueryRoot(def.Name) {
				continue
			}
			p.Objects = append(p.Objects, def)
			p.ParsedTypeNames[name] = struct{}{}
			fields := map[string]string{}
			for _, f := range def.Fields {
				typeName := normalizeFieldTypeName(f.Type)
				p.ParsedTypeNames[f.Name] = struct{}{}
				fields[f.Name] = typeName
				p.FieldTypeMappings[name+"."+f.Name] = typeName
			}
			p.ObjectFields[name] = fields
		}
	}
	return p, nil
}

// isQueryRoot reports whether name is one of the three operation root
// type names, which describe the GraphQL API surface rather than an
// indexable entity.
func isQueryRoot(name string) bool {
	return name == "Query" || name == "Mutation" || name == "Subscription"
}

// normalizeFieldTypeName strips List and NonNull wrappers to expose the
// innermost named type.
func normalizeFieldTypeName(t *ast.Type) string {
	for t.Elem != nil {
		t = t.Elem
	}
	return strings.TrimSuffix(t.NamedType, "!")
}

// HasScalar reports whether name is a declared scalar type.
func (p *ParsedSchema) HasScalar(name string) bool {
	_, ok := p.ScalarNames[name]
	return ok
}

// IsEnumType reports whether name is a declared enum type.
func (p *ParsedSchema) IsEnumType(name string) bool {
	_, ok := p.EnumNames[name]
	return ok
}

// IsUnionType reports whether name is a declared union type.
func (p *ParsedSchema) IsUnionType(name string) bool {
	_, ok := p.UnionNames[name]
	return ok
}

// IsNonIndexableNonEnum reports whether name names a type with no backing
// table that is not itself an enum (currently always false, since enums
// are the only non-indexable kind, but mirrors the upstream predicate for
// when unions grow table-backed projections).
func (p *ParsedSchema) IsNonIndexableNonEnum(name string) bool {
	_, nonIndexable := p.NonIndexableTypeNames[name]
	return nonIndexable && !p.IsEnumType(name)
}

// IsPossibleForeignKey reports whether a field declared with type name
// refers to another indexable object rather than a scalar or enum value.
func (p *ParsedSchema) IsPossibleForeignKey(name string) bool {
	_, parsed := p.ParsedTypeNames[name]
	return parsed && !p.HasScalar(name) && !p.IsNonIndexableNonEnum(name)
}

// HasType reports whether name was declared anywhere in the schema.
func (p *ParsedSchema) HasType(name string) bool {
	_, ok := p.TypeNames[name]
	return ok
}
