// Package queryplanner translates a GraphQL query against a committed
// schema into SQL: it resolves selected fields against the catalog rows
// registry persisted for that schema version, walks foreign-key edges into
// joins, and lowers filter/order/limit arguments into a WHERE clause.
package queryplanner

import (
	"fmt"
	"strings"

	"github.com/fuel-indexer-go/indexer/catalog"
)

// CompareOp is one comparison a Filter expression can apply to a column.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNe
	OpGt
	OpGe
	OpLt
	OpLe
	OpIsNull
	OpIsNotNull
)

var opSymbol = map[CompareOp]string{
	OpEq: "=", OpNe: "<>", OpGt: ">", OpGe: ">=", OpLt: "<", OpLe: "<=",
}

// Expr is a node in a WHERE-clause tree: a leaf comparison or a boolean
// combination of two Exprs. The shape mirrors the
// Filter/and/or builder in the original plugin-side query DSL, adapted
// from compile-time phantom-typed Rust to a runtime tree a server-side
// planner can build from parsed GraphQL arguments.
type Expr interface {
	render() (string, error)
}

// Compare is a leaf `column <op> value` comparison.
type Compare struct {
	Column string
	Op     CompareOp
	Value  catalog.Value
}

func (c Compare) render() (string, error) {
	switch c.Op {
	case OpIsNull:
		return c.Column + " IS NULL", nil
	case OpIsNotNull:
		return c.Column + " IS NOT NULL", nil
	}
	lit, err := catalog.Literal(c.Value)
	if err != nil {
		return "", fmt.Errorf("queryplanner: render filter on %s: %w", c.Column, err)
	}
	sym, ok := opSymbol[c.Op]
	if !ok {
		return "", fmt.Errorf("queryplanner: unknown comparison operator on %s", c.Column)
	}
	return c.Column + " " + sym + " " + lit, nil
}

// And combines two Exprs with AND.
type And struct{ Left, Right Expr }

func (a And) render() (string, error) { return renderBinary(a.Left, "AND", a.Right) }

// Or combines two Exprs with OR.
type Or struct{ Left, Right Expr }

func (o Or) render() (string, error) { return renderBinary(o.Left, "OR", o.Right) }

func renderBinary(left Expr, op string, right Expr) (string, error) {
	l, err := left.render()
	if err != nil {
		return "", err
	}
	r, err := right.render()
	if err != nil {
		return "", err
	}
	return "(" + l + " " + op + " " + r + ")", nil
}

// OrderBy names the column and direction a ManyFilter or SingleFilter
// result set is sorted by. A zero-value OrderBy (empty Column) means
// unordered.
type OrderBy struct {
	Column string
	Desc   bool
}

func (o OrderBy) render() string {
	if o.Column == "" {
		return ""
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return "ORDER BY " + o.Column + " " + dir
}

// RenderWhere assembles a full `WHERE <expr> [ORDER BY ...] [LIMIT n]`
// clause. where may be nil (no filter argument supplied); limit of 0 means
// unbounded, matching ManyFilter's optional limit in the source DSL —
// SingleFilter's implicit "LIMIT 1" is the caller's responsibility to pass
// explicitly when resolving a singular (non-list) field.
func RenderWhere(where Expr, order OrderBy, limit int) (string, error) {
	var b strings.Builder
	if where != nil {
		clause, err := where.render()
		if err != nil {
			return "", err
		}
		b.WriteString("WHERE ")
		b.WriteString(clause)
	}
	if ob := order.render(); ob != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(ob)
	}
	if limit > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "LIMIT %d", limit)
	}
	return b.String(), nil
}
