package queryplanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/fuel-indexer-go/indexer/registry"
)

// newTestSchema builds a LoadedSchema by hand (bypassing LoadSchema's
// registry round trip) for two objects: Owner, and Loan which holds a
// foreign key to Owner.
func newTestSchema() *LoadedSchema {
	owner := ObjectMeta{
		TypeID: 1,
		Table:  "owner",
		Columns: []registry.ColumnRow{
			{Name: "id", ColumnType: "ID"},
			{Name: "email", ColumnType: "Charfield"},
		},
	}
	loan := ObjectMeta{
		TypeID: 2,
		Table:  "loan",
		Columns: []registry.ColumnRow{
			{Name: "id", ColumnType: "ID"},
			{Name: "amount", ColumnType: "UInt8"},
			{Name: "owner", ColumnType: "ID", GraphQLType: "Owner", ReferenceField: "id"},
		},
	}
	return &LoadedSchema{
		Namespace: "ns",
		objects:   map[string]ObjectMeta{"Owner": owner, "Loan": loan},
		roots:     map[string]string{"loans": "Loan"},
	}
}

func valueArg(name, raw string) *ast.Argument {
	return &ast.Argument{Name: name, Value: &ast.Value{Raw: raw}}
}

func TestBuildPlanProjectsScalarsAndJoinsForeignKey(t *testing.T) {
	loaded := newTestSchema()

	field := &ast.Field{
		Name: "loans",
		Arguments: ast.ArgumentList{
			valueArg("amount_gt", "1000"),
			valueArg("order_by", "amount"),
			valueArg("order_desc", "true"),
			valueArg("first", "10"),
		},
		SelectionSet: ast.SelectionSet{
			&ast.Field{Name: "id"},
			&ast.Field{Name: "amount"},
			&ast.Field{
				Name: "owner",
				SelectionSet: ast.SelectionSet{
					&ast.Field{Name: "id"},
					&ast.Field{Name: "email"},
				},
			},
		},
	}

	plan, err := BuildPlan(loaded, field)
	require.NoError(t, err)

	assert.Equal(t, "ns", plan.Schema)
	assert.Equal(t, "loan", plan.Table)
	assert.Equal(t, "t0", plan.RootAlias)
	assert.Equal(t,
		"json_build_object('id', t0.id, 'amount', t0.amount, 'owner', json_build_object('id', t1.id, 'email', t1.email))",
		plan.Projection,
	)
	require.Len(t, plan.Joins, 1)
	assert.Equal(t, "INNER JOIN ns.owner t1 ON t0.owner = t1.id", plan.Joins[0])
	assert.Equal(t, "t0.amount", plan.Order.Column)
	assert.True(t, plan.Order.Desc)
	assert.Equal(t, 10, plan.Limit)

	require.NotNil(t, plan.Where)
	cmp, ok := plan.Where.(Compare)
	require.True(t, ok)
	assert.Equal(t, "t0.amount", cmp.Column)
	assert.Equal(t, OpGt, cmp.Op)

	rendered, err := plan.Render()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT json_build_object('id', t0.id, 'amount', t0.amount, 'owner', json_build_object('id', t1.id, 'email', t1.email)) "+
			"FROM ns.loan t0 INNER JOIN ns.owner t1 ON t0.owner = t1.id "+
			"WHERE t0.amount > 1000 ORDER BY t0.amount DESC LIMIT 10",
		rendered,
	)
}

func TestBuildPlanRejectsUnknownRootField(t *testing.T) {
	loaded := newTestSchema()
	_, err := BuildPlan(loaded, &ast.Field{Name: "bogus"})
	assert.Error(t, err)
}

func TestBuildPlanRejectsUnknownColumn(t *testing.T) {
	loaded := newTestSchema()
	field := &ast.Field{
		Name:         "loans",
		SelectionSet: ast.SelectionSet{&ast.Field{Name: "nope"}},
	}
	_, err := BuildPlan(loaded, field)
	assert.Error(t, err)
}

func TestBuildPlanIsNullFilter(t *testing.T) {
	loaded := newTestSchema()
	field := &ast.Field{
		Name:         "loans",
		Arguments:    ast.ArgumentList{valueArg("owner_is_null", "true")},
		SelectionSet: ast.SelectionSet{&ast.Field{Name: "id"}},
	}
	plan, err := BuildPlan(loaded, field)
	require.NoError(t, err)

	cmp, ok := plan.Where.(Compare)
	require.True(t, ok)
	assert.Equal(t, OpIsNull, cmp.Op)
	assert.Equal(t, "t0.owner", cmp.Column)
}

func TestBuildPlanWithoutJoinSelectionLeavesScalarColumn(t *testing.T) {
	loaded := newTestSchema()
	field := &ast.Field{
		Name: "loans",
		SelectionSet: ast.SelectionSet{
			&ast.Field{Name: "id"},
			&ast.Field{Name: "owner"},
		},
	}
	plan, err := BuildPlan(loaded, field)
	require.NoError(t, err)
	assert.Empty(t, plan.Joins)
	assert.Equal(t, "json_build_object('id', t0.id, 'owner', t0.owner)", plan.Projection)
}
