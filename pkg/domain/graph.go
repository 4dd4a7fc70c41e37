package domain

import (
	"slices"
	"sort"
	"sync"
)

// RootID is the distinguished node whose edges are the top level flow.
const RootID = "_root"

// Graph is an immutable flow graph snapshot. The engine never mutates it.
type Graph struct {
	nodes map[string]*Node

	once  sync.Once
	order []string
	rank  map[string]int
}

// NewGraph builds a graph from nodes. Later duplicates replace earlier ones.
func NewGraph(nodes ...Node) *Graph {
	g := &Graph{nodes: make(map[string]*Node, len(nodes))}
	for i := range nodes {
		n := nodes[i]
		n.Edges = slices.Clone(n.Edges)
		g.nodes[n.ID] = &n
	}
	return g
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	n, ok := g.nodes[id]
	return n, ok
}

// Has reports whether id resolves to a node.
func (g *Graph) Has(id string) bool {
	_, ok := g.Node(id)
	return ok
}

// TypeOf returns the type of id, or "" when id is missing.
func (g *Graph) TypeOf(id string) NodeType {
	if n, ok := g.Node(id); ok {
		return n.Type
	}
	return ""
}

// HasRoot reports whether the graph contains RootID.
func (g *Graph) HasRoot() bool {
	return g.Has(RootID)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

// IDs returns every node id in lexical order.
func (g *Graph) IDs() []string {
	if g == nil {
		return nil
	}
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Order returns every id reachable from the root in depth-first order,
// children visited left to right. A node reachable through several parents
// (a clone) appears only at its first position. Ids referenced by edges but
// missing from the graph are included so that callers can detect them.
func (g *Graph) Order() []string {
	if g == nil {
		return nil
	}
	g.once.Do(g.computeOrder)
	return g.order
}

func (g *Graph) computeOrder() {
	g.rank = make(map[string]int)
	if !g.HasRoot() {
		return
	}

	stack := []string{RootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := g.rank[id]; seen {
			continue
		}
		g.rank[id] = len(g.order)
		g.order = append(g.order, id)

		node, ok := g.nodes[id]
		if !ok {
			continue
		}
		// LIFO stack: push edges backwards so they pop left to right.
		for i := len(node.Edges) - 1; i >= 0; i-- {
			if _, seen := g.rank[node.Edges[i]]; !seen {
				stack = append(stack, node.Edges[i])
			}
		}
	}
}

// Reachable reports whether id is reachable from the root.
func (g *Graph) Reachable(id string) bool {
	if g == nil {
		return false
	}
	g.Order()
	_, ok := g.rank[id]
	return ok && g.Has(id)
}

// Sequence returns ids in canonical depth-first order. The result does not
// depend on the order of the input. Duplicates are removed. Ids that are not
// reachable from the root are appended after the reachable ones in lexical
// order, so that no caller data is silently dropped.
func (g *Graph) Sequence(ids []string) []string {
	if len(ids) == 0 {
		return []string{}
	}
	if g == nil {
		return slices.Clone(ids)
	}
	g.Order()

	seen := make(map[string]struct{}, len(ids))
	var reachable, unreachable []string
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := g.rank[id]; ok {
			reachable = append(reachable, id)
		} else {
			unreachable = append(unreachable, id)
		}
	}

	sort.Slice(reachable, func(i, j int) bool {
		return g.rank[reachable[i]] < g.rank[reachable[j]]
	})
	sort.Strings(unreachable)
	return append(reachable, unreachable...)
}

// Unreachable returns the subset of ids that have no path from the root.
func (g *Graph) Unreachable(ids []string) []string {
	if g == nil {
		return slices.Clone(ids)
	}
	g.Order()
	var out []string
	for _, id := range ids {
		if _, ok := g.rank[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// FilterByType returns the ids of every reachable node of type t in
// canonical order.
func (g *Graph) FilterByType(t NodeType) []string {
	var ids []string
	for _, id := range g.Order() {
		if g.TypeOf(id) == t {
			ids = append(ids, id)
		}
	}
	return ids
}
