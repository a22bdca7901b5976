package join

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mibar/jtq/internal/node"
)

func obj(pairs ...any) *node.Object {
	o := node.NewObject()
	for i := 0; i+1 < len(pairs); i += 2 {
		o.Set(pairs[i].(string), pairs[i+1])
	}
	return o
}

func TestParse(t *testing.T) {
	tests := []struct {
		name           string
		expr           string
		wantOp         Operator
		wantLeftDS     string
		wantLeftKeys   []string
		wantRightDS    string
		wantRightKeys  []string
		wantArrayField string
		wantErr        bool
	}{
		{
			name: "simple inner join", expr: `customers{id} >=< orders{customerId}`,
			wantOp: InnerOne, wantLeftDS: "customers", wantLeftKeys: []string{"id"},
			wantRightDS: "orders", wantRightKeys: []string{"customerId"},
		},
		{
			name: "longest operator matches first", expr: `customers{id} <=<< orders{customerId}`,
			wantOp: LeftMany, wantLeftDS: "customers", wantLeftKeys: []string{"id"},
			wantRightDS: "orders", wantRightKeys: []string{"customerId"}, wantArrayField: "orders",
		},
		{
			name: "explicit arrayField prefix", expr: `arrayField:recentOrders:customers{id} <=<< orders{customerId}`,
			wantOp: LeftMany, wantLeftDS: "customers", wantLeftKeys: []string{"id"},
			wantRightDS: "orders", wantRightKeys: []string{"customerId"}, wantArrayField: "recentOrders",
		},
		{
			name: "composite key list", expr: `customers{region,id} >=< orders{region,customerId}`,
			wantOp: InnerOne, wantLeftDS: "customers", wantLeftKeys: []string{"region", "id"},
			wantRightDS: "orders", wantRightKeys: []string{"region", "customerId"},
		},
		{
			name: "missing key on left operand", expr: `customers >=< orders{customerId}`,
			wantErr: true,
		},
		{
			name: "no operator present", expr: `customers{id} orders{customerId}`,
			wantErr: true,
		},
		{
			name: "key count mismatch", expr: `customers{region,id} >=< orders{customerId}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := Parse(tt.expr)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOp, spec.Op)
			assert.Equal(t, tt.wantLeftDS, spec.Left.Dataset)
			assert.Equal(t, tt.wantLeftKeys, spec.Left.Keys)
			assert.Equal(t, tt.wantRightDS, spec.Right.Dataset)
			assert.Equal(t, tt.wantRightKeys, spec.Right.Keys)
			assert.Equal(t, tt.wantArrayField, spec.ArrayField)
		})
	}
}

func TestResolveInnerOneDropsUnmatched(t *testing.T) {
	reg := node.NewRegistry()
	reg.Put("customers", []node.Node{
		obj("id", node.NewInt(1), "name", "alice"),
		obj("id", node.NewInt(2), "name", "bob"),
	})
	reg.Put("orders", []node.Node{
		obj("customerId", node.NewInt(1), "total", node.NewInt(10)),
	})
	spec, err := Parse(`customers{id} >=< orders{customerId}`)
	require.NoError(t, err)

	got, err := Resolve(spec, reg)
	require.NoError(t, err)

	arr := got.Value.([]node.Node)
	require.Len(t, arr, 1, "expected only the matching customer")

	merged := arr[0].(*node.Object)
	total, _ := merged.Get("total")
	assert.Equal(t, node.NewInt(10), total, "expected overlaid 'total' field")
}

func TestResolveInnerOneCompositeKeyRequiresAllColumnsToMatch(t *testing.T) {
	reg := node.NewRegistry()
	reg.Put("customers", []node.Node{
		obj("region", "eu", "id", node.NewInt(1), "name", "alice"),
		obj("region", "us", "id", node.NewInt(1), "name", "bob"),
	})
	reg.Put("orders", []node.Node{
		obj("region", "eu", "customerId", node.NewInt(1), "total", node.NewInt(10)),
	})
	spec, err := Parse(`customers{region,id} >=< orders{region,customerId}`)
	require.NoError(t, err)

	got, err := Resolve(spec, reg)
	require.NoError(t, err)

	arr := got.Value.([]node.Node)
	require.Len(t, arr, 1, "only the eu row shares both key columns")
	merged := arr[0].(*node.Object)
	name, _ := merged.Get("name")
	assert.Equal(t, "alice", name)
}

func TestResolveLeftOneKeepsUnmatched(t *testing.T) {
	reg := node.NewRegistry()
	reg.Put("customers", []node.Node{
		obj("id", node.NewInt(1), "name", "alice"),
		obj("id", node.NewInt(2), "name", "bob"),
	})
	reg.Put("orders", []node.Node{
		obj("customerId", node.NewInt(1), "total", node.NewInt(10)),
	})
	spec, err := Parse(`customers{id} <=< orders{customerId}`)
	require.NoError(t, err)

	got, err := Resolve(spec, reg)
	require.NoError(t, err)

	arr := got.Value.([]node.Node)
	assert.Len(t, arr, 2, "expected every left-side customer kept")
}

func TestResolveLeftManyNestsAllMatches(t *testing.T) {
	reg := node.NewRegistry()
	reg.Put("customers", []node.Node{obj("id", node.NewInt(1), "name", "alice")})
	reg.Put("orders", []node.Node{
		obj("customerId", node.NewInt(1), "total", node.NewInt(10)),
		obj("customerId", node.NewInt(1), "total", node.NewInt(20)),
	})
	spec, err := Parse(`customers{id} <=<< orders{customerId}`)
	require.NoError(t, err)

	got, err := Resolve(spec, reg)
	require.NoError(t, err)

	arr := got.Value.([]node.Node)
	merged := arr[0].(*node.Object)
	nested, ok := merged.Get("orders")
	require.True(t, ok)
	assert.Len(t, nested.([]node.Node), 2)
}

func TestResolveInnerOneWithObjectLeftCollapsesToASingleObject(t *testing.T) {
	reg := node.NewRegistry()
	reg.Put("customer", obj("id", node.NewInt(1), "name", "alice"))
	reg.Put("orders", []node.Node{
		obj("customerId", node.NewInt(1), "total", node.NewInt(10)),
		obj("customerId", node.NewInt(2), "total", node.NewInt(99)),
	})
	spec, err := Parse(`customer{id} >=< orders{customerId}`)
	require.NoError(t, err)

	got, err := Resolve(spec, reg)
	require.NoError(t, err)
	require.True(t, got.Present)

	merged, ok := got.Value.(*node.Object)
	require.True(t, ok, "a bare-object left operand should collapse the result to a single object, got %T", got.Value)
	total, _ := merged.Get("total")
	assert.Equal(t, node.NewInt(10), total)
}

func TestResolveInnerOneWithObjectLeftAndNoMatchIsNone(t *testing.T) {
	reg := node.NewRegistry()
	reg.Put("customer", obj("id", node.NewInt(404)))
	reg.Put("orders", []node.Node{obj("customerId", node.NewInt(1), "total", node.NewInt(10))})
	spec, err := Parse(`customer{id} >=< orders{customerId}`)
	require.NoError(t, err)

	got, err := Resolve(spec, reg)
	require.NoError(t, err)
	assert.False(t, got.Present)
}

func TestResolveRejectsValueOperand(t *testing.T) {
	reg := node.NewRegistry()
	reg.Put("customer", "not-a-container")
	reg.Put("orders", []node.Node{obj("customerId", node.NewInt(1))})
	spec, err := Parse(`customer{id} >=< orders{customerId}`)
	require.NoError(t, err)

	_, err = Resolve(spec, reg)
	assert.Error(t, err, "a scalar operand is undefined for a join")
}

func TestResolveUnresolvedSidePropagatesError(t *testing.T) {
	reg := node.NewRegistry()
	reg.Put("customers", []node.Node{})
	spec, err := Parse(`customers{id} >=< orders{customerId}`)
	require.NoError(t, err)

	_, err = Resolve(spec, reg)
	assert.Error(t, err, "expected an unresolved-dataset error for the missing 'orders' side")
}

func TestOverlayDoesNotMutateSourceObjects(t *testing.T) {
	base := obj("id", node.NewInt(1), "name", "alice")
	extra := obj("name", "overridden")
	merged := overlay(base, extra).(*node.Object)

	name, _ := merged.Get("name")
	assert.Equal(t, "overridden", name, "overlay should win on key conflict")

	origName, _ := base.Get("name")
	assert.Equal(t, "alice", origName, "overlay must not mutate the original base object")
}
