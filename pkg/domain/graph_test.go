package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// sampleGraph:
//
//	_root -> a -> a1 -> x
//	           -> a2
//	      -> p (portal) -> p1
//	                    -> x (clone)
//	      -> c -> ghost (missing)
//	orphan (no parent)
func sampleGraph() *Graph {
	return NewGraph(
		Node{ID: RootID, Type: TypeRoot, Edges: []string{"a", "p", "c"}},
		Node{ID: "a", Type: TypeQuestion, Edges: []string{"a1", "a2"}},
		Node{ID: "a1", Type: TypeAnswer, Edges: []string{"x"}},
		Node{ID: "a2", Type: TypeAnswer},
		Node{ID: "x", Type: TypeNotice},
		Node{ID: "p", Type: TypeInternalPortal, Edges: []string{"p1", "x"}},
		Node{ID: "p1", Type: TypeNotice},
		Node{ID: "c", Type: TypeNotice, Edges: []string{"ghost"}},
		Node{ID: "orphan", Type: TypeNotice},
	)
}

func TestGraph_Order(t *testing.T) {
	g := sampleGraph()
	assert.Equal(t, []string{RootID, "a", "a1", "x", "a2", "p", "p1", "c", "ghost"}, g.Order())

	assert.True(t, g.Reachable("p1"), "portal children are descended into")
	assert.False(t, g.Reachable("orphan"))
	assert.False(t, g.Reachable("ghost"), "missing nodes are never reachable")
}

func TestGraph_OrderWithoutRoot(t *testing.T) {
	g := NewGraph(Node{ID: "a", Type: TypeNotice})
	assert.Empty(t, g.Order())
	assert.Equal(t, []string{"a", "b"}, g.Sequence([]string{"b", "a"}), "without a root every id sorts lexically")
}

func TestGraph_Sequence(t *testing.T) {
	g := sampleGraph()

	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{name: "empty", ids: nil, want: []string{}},
		{name: "already ordered", ids: []string{"a", "x", "p1"}, want: []string{"a", "x", "p1"}},
		{name: "shuffled", ids: []string{"p1", "a", "x"}, want: []string{"a", "x", "p1"}},
		{name: "reversed", ids: []string{"c", "p1", "x", "a2", "a"}, want: []string{"a", "x", "a2", "p1", "c"}},
		{name: "duplicates", ids: []string{"p1", "a", "p1", "a"}, want: []string{"a", "p1"}},
		{name: "clone keeps its first position", ids: []string{"p", "x", "a2"}, want: []string{"x", "a2", "p"}},
		{name: "portal", ids: []string{"p1", "p", RootID}, want: []string{RootID, "p", "p1"}},
		{name: "referenced but missing", ids: []string{"ghost", "c", "a"}, want: []string{"a", "c", "ghost"}},
		{name: "unreachable appended lexically", ids: []string{"zz", "orphan", "c", "a"}, want: []string{"a", "c", "orphan", "zz"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Sequence(tt.ids))
		})
	}
}

func TestGraph_SequenceIsStable(t *testing.T) {
	g := sampleGraph()
	// b and zz are not part of the graph.
	want := []string{"a", "c", "b", "zz"}

	for _, ids := range [][]string{
		{"zz", "c", "b", "a"},
		{"b", "a", "zz", "c"},
		{"c", "zz", "a", "b"},
	} {
		assert.Equal(t, want, g.Sequence(ids), "input %v", ids)
	}
}

func TestGraph_Unreachable(t *testing.T) {
	g := sampleGraph()
	assert.Equal(t, []string{"orphan", "zz"}, g.Unreachable([]string{"zz", "a", "orphan", "x"}))
	assert.Empty(t, g.Unreachable([]string{"a", "p1"}))
}
