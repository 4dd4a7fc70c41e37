package dsl

import (
	"errors"
	"fmt"
	"sort"

	"github.com/aretw0/planflow/pkg/adapters/memory"
	"github.com/aretw0/planflow/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	nodes map[string]*NodeBuilder
	order []string
}

// New creates a new graph builder with an empty root.
func New() *Builder {
	b := &Builder{nodes: make(map[string]*NodeBuilder)}
	b.Add(domain.RootID).set(domain.TypeRoot, &domain.ContentData{})
	return b
}

// Root appends ids to the edges of the root node.
func (b *Builder) Root(ids ...string) *Builder {
	b.Add(domain.RootID).Then(ids...)
	return b
}

// Add returns the builder of id, creating an untyped node when needed.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.Node{ID: id},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Graph compiles the nodes. Every node must have been given a type.
func (b *Builder) Graph() (*domain.Graph, error) {
	var errs []error
	nodes := make([]domain.Node, 0, len(b.nodes))
	for _, id := range b.order {
		n := b.nodes[id].node
		if !n.Type.Valid() {
			errs = append(errs, fmt.Errorf("node %s: missing or unknown type %q", id, n.Type))
			continue
		}
		nodes = append(nodes, n)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return domain.NewGraph(nodes...), nil
}

// Loader compiles the graph into a memory loader serving it as name.
func (b *Builder) Loader(name string) (*memory.Loader, error) {
	g, err := b.Graph()
	if err != nil {
		return nil, fmt.Errorf("failed to build flow %s: %w", name, err)
	}
	return memory.NewLoader(map[string]*domain.Graph{name: g}), nil
}

// Document compiles the graph into its serialised form.
func (b *Builder) Document(name string) (domain.Document, error) {
	g, err := b.Graph()
	if err != nil {
		return domain.Document{}, err
	}
	return g.Document(name)
}

// IDs returns the ids added so far in lexical order.
func (b *Builder) IDs() []string {
	ids := make([]string, 0, len(b.nodes))
	for id := range b.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
