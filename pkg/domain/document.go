package domain

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"
)

// RawNode is the serialised form of a node inside a flow document. Data is
// kept loosely typed until the node type is known.
type RawNode struct {
	Type  NodeType       `json:"type" yaml:"type"`
	Data  map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
	Edges []string       `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// Document is a flow as stored on disk or sent over the wire.
type Document struct {
	Name  string             `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes map[string]RawNode `json:"nodes" yaml:"nodes"`
}

// DecodeNode turns a raw node into a typed node. The root id is always
// decoded as TypeRoot.
func DecodeNode(id string, raw RawNode) (Node, error) {
	t := raw.Type
	if id == RootID && t == "" {
		t = TypeRoot
	}
	payload, err := NewPayload(t)
	if err != nil {
		return Node{}, fmt.Errorf("node %s: %w", id, err)
	}
	if len(raw.Data) > 0 {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           payload,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return Node{}, err
		}
		if err := dec.Decode(raw.Data); err != nil {
			return Node{}, fmt.Errorf("node %s: failed to decode data: %w", id, err)
		}
	}
	return Node{ID: id, Type: t, Data: payload, Edges: raw.Edges}, nil
}

// Graph decodes every node of the document.
func (d Document) Graph() (*Graph, error) {
	ids := make([]string, 0, len(d.Nodes))
	for id := range d.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		n, err := DecodeNode(id, d.Nodes[id])
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return NewGraph(nodes...), nil
}

// Document encodes the graph back into its serialised form.
func (g *Graph) Document(name string) (Document, error) {
	doc := Document{Name: name, Nodes: make(map[string]RawNode, g.Len())}
	for _, id := range g.IDs() {
		n, _ := g.Node(id)
		raw := RawNode{Type: n.Type, Edges: n.Edges}
		if n.Data != nil {
			var data map[string]any
			if err := mapstructure.Decode(n.Data, &data); err != nil {
				return Document{}, fmt.Errorf("node %s: failed to encode data: %w", id, err)
			}
			raw.Data = compact(data)
		}
		doc.Nodes[id] = raw
	}
	return doc, nil
}

// compact drops zero values so that encoded documents stay readable.
func compact(m map[string]any) map[string]any {
	for k, v := range m {
		switch val := v.(type) {
		case string:
			if val == "" {
				delete(m, k)
			}
		case bool:
			if !val {
				delete(m, k)
			}
		case []string:
			if len(val) == 0 {
				delete(m, k)
			}
		case SetValueOperation:
			if val == "" {
				delete(m, k)
			}
		case SectionLength:
			if val == "" {
				delete(m, k)
			}
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
