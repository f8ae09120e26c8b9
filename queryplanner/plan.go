package queryplanner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/fuel-indexer-go/indexer/catalog"
)

// Plan is a fully resolved query, ready to render to SQL: the root
// object's schema-qualified table and alias, its projection expression
// (a json_build_object tree, possibly nesting further objects reached
// through foreign-key joins), the joins those nested objects required,
// and the WHERE/ORDER/LIMIT clause lowered from the field's arguments.
type Plan struct {
	Schema     string
	Table      string
	RootAlias  string
	Projection string
	Joins      []string
	Where      Expr
	Order      OrderBy
	Limit      int
}

// planCtx accumulates table aliases and join clauses while
// resolveObjectProjection walks a selection set depth-first, so siblings
// and nested objects never collide on alias names.
type planCtx struct {
	schema string
	nextID int
	joins  []string
}

func (p *planCtx) nextAlias() string {
	a := fmt.Sprintf("t%d", p.nextID)
	p.nextID++
	return a
}

// BuildPlan resolves field (one top-level selection of a parsed query
// document) against loaded, producing a Plan ready for Render. field's
// name must match a RootColumn name registered for the schema.
func BuildPlan(loaded *LoadedSchema, field *ast.Field) (*Plan, error) {
	objName, ok := loaded.RootObjectName(field.Name)
	if !ok {
		return nil, fmt.Errorf("queryplanner: unknown root field %q", field.Name)
	}
	obj, ok := loaded.ObjectByName(objName)
	if !ok {
		return nil, fmt.Errorf("queryplanner: root field %q resolves to unregistered object %q", field.Name, objName)
	}

	ctx := &planCtx{schema: loaded.Namespace}
	rootAlias := ctx.nextAlias()

	projection, err := resolveObjectProjection(ctx, loaded, objName, rootAlias, field.SelectionSet)
	if err != nil {
		return nil, err
	}

	where, order, limit, err := resolveArguments(obj, rootAlias, field.Arguments)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Schema:     loaded.Namespace,
		Table:      obj.Table,
		RootAlias:  rootAlias,
		Projection: projection,
		Joins:      ctx.joins,
		Where:      where,
		Order:      order,
		Limit:      limit,
	}, nil
}

// resolveObjectProjection renders one object's json_build_object(...)
// expression. A selected field whose column carries a ReferenceField (a
// foreign-key column) and itself has a sub-selection is resolved as a
// joined object: a fresh alias and INNER JOIN clause are recorded on ctx,
// topologically ordered (a join never precedes the object that
// references it, since joins are appended as each field is walked), and
// the nested object's own projection is embedded directly.
func resolveObjectProjection(ctx *planCtx, loaded *LoadedSchema, objName, alias string, sel ast.SelectionSet) (string, error) {
	obj, ok := loaded.ObjectByName(objName)
	if !ok {
		return "", fmt.Errorf("queryplanner: unknown object type %q", objName)
	}
	if len(sel) == 0 {
		return "", fmt.Errorf("queryplanner: %s selected with no fields", objName)
	}

	var pairs []string
	for _, s := range sel {
		f, ok := s.(*ast.Field)
		if !ok {
			// Fragment spreads/inline fragments aren't resolved by this
			// planner; the out-of-scope HTTP layer would reject them
			// before a query reaches here.
			continue
		}
		col, ok := obj.ColumnByName(f.Name)
		if !ok {
			return "", fmt.Errorf("queryplanner: %s has no field %q", objName, f.Name)
		}

		key := f.Name
		if f.Alias != "" && f.Alias != f.Name {
			key = f.Alias
		}
		quotedKey, err := quoteJSONKey(key)
		if err != nil {
			return "", err
		}

		if col.ReferenceField != "" && len(f.SelectionSet) > 0 {
			target, ok := loaded.ObjectByName(col.GraphQLType)
			if !ok {
				return "", fmt.Errorf("queryplanner: %s.%s references unregistered type %q", objName, f.Name, col.GraphQLType)
			}
			childAlias := ctx.nextAlias()
			ctx.joins = append(ctx.joins, fmt.Sprintf(
				"INNER JOIN %s.%s %s ON %s.%s = %s.%s",
				ctx.schema, target.Table, childAlias, alias, col.Name, childAlias, col.ReferenceField,
			))
			childProjection, err := resolveObjectProjection(ctx, loaded, col.GraphQLType, childAlias, f.SelectionSet)
			if err != nil {
				return "", err
			}
			pairs = append(pairs, quotedKey+", "+childProjection)
			continue
		}

		pairs = append(pairs, quotedKey+", "+alias+"."+col.Name)
	}
	return "json_build_object(" + strings.Join(pairs, ", ") + ")", nil
}

// resolveArguments lowers a field's GraphQL arguments into a WHERE
// expression, an ORDER BY, and a LIMIT, per the comparison operators
// find.rs's Field<T, F> exposes (eq/ne/gt/ge/lt/le), adapted to
// "<column>_<op>" argument names (e.g. "age_gt": 7) since this planner
// resolves filters against already-committed catalog columns rather than
// a generated per-type Rust struct. "<column>_is_null" takes a boolean.
// "order_by"/"order_desc"/"first" control sort and pagination.
func resolveArguments(obj ObjectMeta, alias string, args ast.ArgumentList) (Expr, OrderBy, int, error) {
	var where Expr
	var order OrderBy
	limit := 0

	for _, arg := range args {
		raw := ""
		if arg.Value != nil {
			raw = arg.Value.Raw
		}
		switch {
		case arg.Name == "first":
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, OrderBy{}, 0, fmt.Errorf("queryplanner: invalid first argument %q: %w", raw, err)
			}
			limit = n

		case arg.Name == "order_by":
			col, ok := obj.ColumnByName(raw)
			if !ok {
				return nil, OrderBy{}, 0, fmt.Errorf("queryplanner: order_by references unknown column %q", raw)
			}
			order.Column = alias + "." + col.Name

		case arg.Name == "order_desc":
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, OrderBy{}, 0, fmt.Errorf("queryplanner: invalid order_desc argument %q: %w", raw, err)
			}
			order.Desc = b

		case strings.HasSuffix(arg.Name, "_is_null"):
			colName := strings.TrimSuffix(arg.Name, "_is_null")
			col, ok := obj.ColumnByName(colName)
			if !ok {
				return nil, OrderBy{}, 0, fmt.Errorf("queryplanner: filter on unknown column %q", colName)
			}
			isNull, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, OrderBy{}, 0, fmt.Errorf("queryplanner: invalid %s argument %q: %w", arg.Name, raw, err)
			}
			op := OpIsNotNull
			if isNull {
				op = OpIsNull
			}
			where = and(where, Compare{Column: alias + "." + col.Name, Op: op})

		default:
			colName, op, ok := splitFilterArgName(arg.Name)
			if !ok {
				continue
			}
			col, ok := obj.ColumnByName(colName)
			if !ok {
				return nil, OrderBy{}, 0, fmt.Errorf("queryplanner: filter on unknown column %q", colName)
			}
			kind, ok := catalog.ParseKind(col.ColumnType)
			if !ok {
				return nil, OrderBy{}, 0, fmt.Errorf("queryplanner: column %q has unrecognized catalog kind %q", colName, col.ColumnType)
			}
			val, err := parseScalarValue(kind, raw)
			if err != nil {
				return nil, OrderBy{}, 0, fmt.Errorf("queryplanner: filter %s: %w", arg.Name, err)
			}
			where = and(where, Compare{Column: alias + "." + col.Name, Op: op, Value: val})
		}
	}

	return where, order, limit, nil
}

var filterSuffixes = map[string]CompareOp{
	"_eq": OpEq, "_ne": OpNe, "_gt": OpGt, "_ge": OpGe, "_lt": OpLt, "_le": OpLe,
}

func splitFilterArgName(name string) (column string, op CompareOp, ok bool) {
	for suffix, candidate := range filterSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix), candidate, true
		}
	}
	return "", 0, false
}

func and(left Expr, right Expr) Expr {
	if left == nil {
		return right
	}
	return And{Left: left, Right: right}
}

// parseScalarValue parses a raw argument string into a catalog.Value of
// the given Kind, the inverse of catalog.Literal for the argument side of
// a filter comparison.
func parseScalarValue(kind catalog.Kind, raw string) (catalog.Value, error) {
	switch kind {
	case catalog.KindID, catalog.KindUInt4, catalog.KindUInt8, catalog.KindTimestamp:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return catalog.Value{}, fmt.Errorf("expected unsigned integer, got %q", raw)
		}
		return catalog.Value{Kind: kind, Uint: n}, nil
	case catalog.KindInt4, catalog.KindInt8:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return catalog.Value{}, fmt.Errorf("expected integer, got %q", raw)
		}
		return catalog.Value{Kind: kind, Int: n}, nil
	case catalog.KindBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return catalog.Value{}, fmt.Errorf("expected boolean, got %q", raw)
		}
		return catalog.NewBoolean(b), nil
	case catalog.KindAddress, catalog.KindAssetID, catalog.KindContractID, catalog.KindBytes32,
		catalog.KindSalt, catalog.KindBytes4, catalog.KindBytes8, catalog.KindMessageID,
		catalog.KindIdentity, catalog.KindBlob:
		b, err := hexDecode(raw)
		if err != nil {
			return catalog.Value{}, fmt.Errorf("expected hex string, got %q", raw)
		}
		return catalog.Value{Kind: kind, Bytes: b}, nil
	case catalog.KindCharfield, catalog.KindJSON:
		return catalog.Value{Kind: kind, Str: raw}, nil
	default:
		return catalog.Value{}, fmt.Errorf("unsupported filter kind %s", kind)
	}
}
