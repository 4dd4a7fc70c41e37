package dsl

import "github.com/aretw0/planflow/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

func (n *NodeBuilder) set(t domain.NodeType, data domain.Payload) *NodeBuilder {
	n.node.Type = t
	n.node.Data = data
	return n
}

// Question makes the node a single select decision reading fn.
func (n *NodeBuilder) Question(fn, text string) *NodeBuilder {
	return n.set(domain.TypeQuestion, &domain.DecisionData{Fn: fn, Text: text})
}

// Checklist makes the node a multi select decision reading fn.
func (n *NodeBuilder) Checklist(fn, text string) *NodeBuilder {
	return n.set(domain.TypeChecklist, &domain.DecisionData{Fn: fn, Text: text})
}

// NeverAutoAnswer forces a decision to be shown even when the passport
// implies its answer.
func (n *NodeBuilder) NeverAutoAnswer() *NodeBuilder {
	if d, ok := n.node.Data.(*domain.DecisionData); ok {
		d.NeverAutoAnswer = true
	}
	return n
}

// AlwaysAutoAnswerBlank answers a decision with its blank option when no
// option matches the passport.
func (n *NodeBuilder) AlwaysAutoAnswerBlank() *NodeBuilder {
	if d, ok := n.node.Data.(*domain.DecisionData); ok {
		d.AlwaysAutoAnswerBlank = true
	}
	return n
}

// Filter makes the node a flag filter over category ("" is the default).
func (n *NodeBuilder) Filter(fn, category string) *NodeBuilder {
	return n.set(domain.TypeFilter, &domain.FilterData{Fn: fn, Category: category})
}

// Option adds an Answer child with the given value and flags.
func (n *NodeBuilder) Option(id, val, text string, flags ...string) *NodeBuilder {
	n.builder.Add(id).Answer(val, text, flags...)
	return n.Then(id)
}

// Answer makes the node an option contributing val to its parent's fn.
func (n *NodeBuilder) Answer(val, text string, flags ...string) *NodeBuilder {
	return n.set(domain.TypeAnswer, &domain.AnswerData{Val: val, Text: text, Flags: flags})
}

// Input makes the node a plain input of type t storing under fn.
func (n *NodeBuilder) Input(t domain.NodeType, fn, title string) *NodeBuilder {
	return n.set(t, &domain.InputData{Fn: fn, Title: title})
}

// Property makes the node a site data lookup of type t.
func (n *NodeBuilder) Property(t domain.NodeType, fn, title string) *NodeBuilder {
	return n.set(t, &domain.PropertyData{Fn: fn, Title: title})
}

// SetValue makes the node write val to fn with op ("" means replace).
func (n *NodeBuilder) SetValue(fn, val string, op domain.SetValueOperation) *NodeBuilder {
	return n.set(domain.TypeSetValue, &domain.SetValueData{Fn: fn, Val: val, Operation: op})
}

// Section makes the node a section marker.
func (n *NodeBuilder) Section(title string, length domain.SectionLength) *NodeBuilder {
	return n.set(domain.TypeSection, &domain.SectionData{Title: title, Length: length})
}

// Content makes the node a presentational card of type t (Notice, Content,
// Result, Pay, Review, Confirmation or InternalPortal).
func (n *NodeBuilder) Content(t domain.NodeType, title, text string) *NodeBuilder {
	return n.set(t, &domain.ContentData{Title: title, Text: text})
}

// Then appends edges to ids.
func (n *NodeBuilder) Then(ids ...string) *NodeBuilder {
	n.node.Edges = append(n.node.Edges, ids...)
	return n
}

// Build returns a copy of the underlying domain.Node.
func (n *NodeBuilder) Build() domain.Node {
	out := n.node
	out.Edges = append([]string(nil), n.node.Edges...)
	return out
}
