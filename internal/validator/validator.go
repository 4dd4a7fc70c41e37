package validator

import (
	"errors"
	"fmt"

	"github.com/aretw0/planflow/pkg/domain"
)

// ReferenceError reports an edge that points at a missing node.
type ReferenceError struct {
	NodeID string
	Ref    string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("node %q references missing node %q", e.NodeID, e.Ref)
}

// UnreachableError reports a node with no path from the root.
type UnreachableError struct {
	NodeID string
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("node %q is not reachable from %s", e.NodeID, domain.RootID)
}

// NodeError reports a node whose own definition is inconsistent.
type NodeError struct {
	NodeID string
	Reason string
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q: %s", e.NodeID, e.Reason)
}

// ValidateGraph checks g for a missing root, corrupted references,
// unreachable nodes and malformed node definitions. Every problem found is
// joined into the returned error, in canonical order where possible.
func ValidateGraph(g *domain.Graph) error {
	if !g.HasRoot() {
		return domain.ErrRootNotFound
	}

	var errs []error
	for _, id := range g.Order() {
		node, ok := g.Node(id)
		if !ok {
			continue
		}
		for _, ref := range node.Edges {
			if !g.Has(ref) {
				errs = append(errs, &ReferenceError{NodeID: id, Ref: ref})
			}
		}
		errs = append(errs, checkNode(g, node)...)
	}

	for _, id := range g.Unreachable(g.IDs()) {
		errs = append(errs, &UnreachableError{NodeID: id})
	}
	return errors.Join(errs...)
}

func checkNode(g *domain.Graph, node *domain.Node) []error {
	var errs []error
	if !node.Type.Valid() {
		errs = append(errs, &NodeError{NodeID: node.ID, Reason: fmt.Sprintf("unknown type %q", node.Type)})
	}

	switch {
	case node.Type.IsDecision() || node.Type == domain.TypeFilter:
		if len(node.Edges) == 0 {
			errs = append(errs, &NodeError{NodeID: node.ID, Reason: "has no options"})
		}
		for _, ref := range node.Edges {
			if t := g.TypeOf(ref); t != "" && t != domain.TypeAnswer {
				errs = append(errs, &NodeError{NodeID: node.ID, Reason: fmt.Sprintf("option %q is a %s, not an answer", ref, t)})
			}
		}
	case node.Type == domain.TypeSetValue:
		if node.Fn() == "" {
			errs = append(errs, &NodeError{NodeID: node.ID, Reason: "set value without fn"})
		}
	}
	return errs
}
