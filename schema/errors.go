package schema

import "fmt"

// ParseError wraps a gqlparser failure with the indexer that produced it.
type ParseError struct {
	Namespace  string
	Identifier string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("schema: parsing %s.%s: %v", e.Namespace, e.Identifier, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnsupportedTypeError is returned when a field's declared type cannot be
// resolved to a catalog Kind, a known object or a known enum.
type UnsupportedTypeError struct {
	Object string
	Field  string
	Type   string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("schema: %s.%s has unsupported type %q", e.Object, e.Field, e.Type)
}

// UnresolvedJoinError is returned when a @join(on: "...") directive (or the
// implicit "id" default) names a field that the referenced object never
// declares.
type UnresolvedJoinError struct {
	Object         string
	Field          string
	TargetOf       string
	ReferenceField string
}

func (e *UnresolvedJoinError) Error() string {
	return fmt.Sprintf("schema: %s.%s joins on %s.%s, which is not a declared field", e.Object, e.Field, e.TargetOf, e.ReferenceField)
}

// DuplicateFieldError is returned when an object declares the same field
// name more than once after the implicit columns are added (e.g. a
// user-declared field named "object" colliding with the implicit
// packed-entity column).
type DuplicateFieldError struct {
	Object string
	Field  string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("schema: %s declares field %q more than once", e.Object, e.Field)
}
