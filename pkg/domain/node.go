package domain

import "fmt"

// NodeType identifies the behaviour of a node in the flow graph.
type NodeType string

const (
	TypeRoot                NodeType = "root"
	TypeQuestion            NodeType = "question"
	TypeChecklist           NodeType = "checklist"
	TypeAnswer              NodeType = "answer"
	TypeFilter              NodeType = "filter"
	TypeFindProperty        NodeType = "find_property"
	TypeDrawBoundary        NodeType = "draw_boundary"
	TypePlanningConstraints NodeType = "planning_constraints"
	TypePropertyInformation NodeType = "property_information"
	TypeMapAndLabel         NodeType = "map_and_label"
	TypeSetValue            NodeType = "set_value"
	TypeSection             NodeType = "section"
	TypePay                 NodeType = "pay"
	TypeReview              NodeType = "review"
	TypeInternalPortal      NodeType = "internal_portal"
	TypeNotice              NodeType = "notice"
	TypeContent             NodeType = "content"
	TypeResult              NodeType = "result"
	TypeConfirmation        NodeType = "confirmation"
	TypeTextInput           NodeType = "text_input"
	TypeNumberInput         NodeType = "number_input"
	TypeDateInput           NodeType = "date_input"
	TypeAddressInput        NodeType = "address_input"
	TypeContactInput        NodeType = "contact_input"
)

// PlanningConstraintsFn is the passport key written by planning constraint
// lookups. It keeps every level of granularity rather than the most specific.
const PlanningConstraintsFn = "property.constraints.planning"

// NotsKey holds values that were queried but confirmed absent, keyed by fn.
const NotsKey = "_nots"

// RequestedFilesKey is the passport key listing files requested from the user.
const RequestedFilesKey = "_requestedFiles"

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	switch t {
	case TypeRoot, TypeQuestion, TypeChecklist, TypeAnswer, TypeFilter,
		TypeFindProperty, TypeDrawBoundary, TypePlanningConstraints,
		TypePropertyInformation, TypeMapAndLabel, TypeSetValue, TypeSection,
		TypePay, TypeReview, TypeInternalPortal, TypeNotice, TypeContent,
		TypeResult, TypeConfirmation, TypeTextInput, TypeNumberInput,
		TypeDateInput, TypeAddressInput, TypeContactInput:
		return true
	}
	return false
}

// IsDecision reports whether the node asks the user to pick answers.
func (t NodeType) IsDecision() bool {
	return t == TypeQuestion || t == TypeChecklist
}

// IsAutoAnswerableInput reports whether a previous answer to a node of the
// same type and fn can be replayed for this node.
func (t NodeType) IsAutoAnswerableInput() bool {
	switch t {
	case TypeTextInput, TypeNumberInput, TypeDateInput, TypeAddressInput, TypeContactInput:
		return true
	}
	return false
}

// PopulatesPassport reports whether re-answering the node invalidates
// breadcrumbs of passport dependent nodes.
func (t NodeType) PopulatesPassport() bool {
	return t == TypeFindProperty || t == TypeDrawBoundary
}

// DependsOnPassport reports whether the node reads data produced by a
// passport populating node (the site address or boundary).
func (t NodeType) DependsOnPassport() bool {
	switch t {
	case TypeDrawBoundary, TypeMapAndLabel, TypePlanningConstraints, TypePropertyInformation:
		return true
	}
	return false
}

// Payload is the type specific data carried by a node.
type Payload interface {
	payload()
}

// DecisionData configures Question and Checklist nodes.
type DecisionData struct {
	Fn                    string `json:"fn,omitempty" yaml:"fn,omitempty" mapstructure:"fn"`
	Text                  string `json:"text,omitempty" yaml:"text,omitempty" mapstructure:"text"`
	NeverAutoAnswer       bool   `json:"neverAutoAnswer,omitempty" yaml:"neverAutoAnswer,omitempty" mapstructure:"neverAutoAnswer"`
	AlwaysAutoAnswerBlank bool   `json:"alwaysAutoAnswerBlank,omitempty" yaml:"alwaysAutoAnswerBlank,omitempty" mapstructure:"alwaysAutoAnswerBlank"`
}

// AnswerData configures an option of a decision or filter node.
type AnswerData struct {
	Val   string   `json:"val,omitempty" yaml:"val,omitempty" mapstructure:"val"`
	Text  string   `json:"text,omitempty" yaml:"text,omitempty" mapstructure:"text"`
	Flags []string `json:"flags,omitempty" yaml:"flags,omitempty" mapstructure:"flags"`
}

// FilterData configures a Filter node. An empty Category means the default.
type FilterData struct {
	Fn       string `json:"fn,omitempty" yaml:"fn,omitempty" mapstructure:"fn"`
	Category string `json:"category,omitempty" yaml:"category,omitempty" mapstructure:"category"`
}

// InputData configures plain input nodes (text, number, date, address, contact).
type InputData struct {
	Fn    string `json:"fn,omitempty" yaml:"fn,omitempty" mapstructure:"fn"`
	Title string `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
}

// PropertyData configures nodes that read or write site data
// (FindProperty, DrawBoundary, PlanningConstraints, PropertyInformation, MapAndLabel).
type PropertyData struct {
	Fn    string `json:"fn,omitempty" yaml:"fn,omitempty" mapstructure:"fn"`
	Title string `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
}

// SetValueOperation is the mutation a SetValue node applies to its key.
type SetValueOperation string

const (
	OpReplace   SetValueOperation = "replace"
	OpAppend    SetValueOperation = "append"
	OpRemoveOne SetValueOperation = "removeOne"
	OpRemoveAll SetValueOperation = "removeAll"
)

// SetValueData configures a SetValue node.
type SetValueData struct {
	Fn        string            `json:"fn" yaml:"fn" mapstructure:"fn"`
	Val       string            `json:"val,omitempty" yaml:"val,omitempty" mapstructure:"val"`
	Operation SetValueOperation `json:"operation,omitempty" yaml:"operation,omitempty" mapstructure:"operation"`
}

// SectionData configures a Section node.
type SectionData struct {
	Title  string        `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Length SectionLength `json:"length,omitempty" yaml:"length,omitempty" mapstructure:"length"`
}

// ContentData covers presentational nodes with no engine semantics
// (Notice, Content, Review, Pay, Result, Confirmation, InternalPortal, Root).
type ContentData struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Text  string `json:"text,omitempty" yaml:"text,omitempty" mapstructure:"text"`
}

func (DecisionData) payload() {}
func (AnswerData) payload()   {}
func (FilterData) payload()   {}
func (InputData) payload()    {}
func (PropertyData) payload() {}
func (SetValueData) payload() {}
func (SectionData) payload()  {}
func (ContentData) payload()  {}

// NewPayload returns a zero payload of the variant used by t.
func NewPayload(t NodeType) (Payload, error) {
	switch t {
	case TypeQuestion, TypeChecklist:
		return &DecisionData{}, nil
	case TypeAnswer:
		return &AnswerData{}, nil
	case TypeFilter:
		return &FilterData{}, nil
	case TypeTextInput, TypeNumberInput, TypeDateInput, TypeAddressInput, TypeContactInput:
		return &InputData{}, nil
	case TypeFindProperty, TypeDrawBoundary, TypePlanningConstraints, TypePropertyInformation, TypeMapAndLabel:
		return &PropertyData{}, nil
	case TypeSetValue:
		return &SetValueData{}, nil
	case TypeSection:
		return &SectionData{}, nil
	case TypeRoot, TypePay, TypeReview, TypeInternalPortal, TypeNotice, TypeContent, TypeResult, TypeConfirmation:
		return &ContentData{}, nil
	}
	return nil, fmt.Errorf("unknown node type %q", t)
}

// Node is a vertex of the flow graph.
type Node struct {
	ID    string   `json:"id"`
	Type  NodeType `json:"type"`
	Data  Payload  `json:"data,omitempty"`
	Edges []string `json:"edges,omitempty"`
}

// Fn returns the passport key the node reads or writes, if any.
func (n *Node) Fn() string {
	switch d := n.Data.(type) {
	case *DecisionData:
		return d.Fn
	case *FilterData:
		return d.Fn
	case *InputData:
		return d.Fn
	case *PropertyData:
		if d.Fn == "" && n.Type == TypePlanningConstraints {
			return PlanningConstraintsFn
		}
		return d.Fn
	case *SetValueData:
		return d.Fn
	}
	return ""
}

// Val returns the literal value contributed by an Answer or SetValue node.
func (n *Node) Val() string {
	switch d := n.Data.(type) {
	case *AnswerData:
		return d.Val
	case *SetValueData:
		return d.Val
	}
	return ""
}

// Flags returns the flag values attached to an Answer node.
func (n *Node) Flags() []string {
	if d, ok := n.Data.(*AnswerData); ok {
		return d.Flags
	}
	return nil
}

// Decision returns the decision payload, or a zero value for other types.
func (n *Node) Decision() DecisionData {
	if d, ok := n.Data.(*DecisionData); ok {
		return *d
	}
	return DecisionData{}
}

// Title returns a human readable label for the node.
func (n *Node) Title() string {
	switch d := n.Data.(type) {
	case *DecisionData:
		return d.Text
	case *AnswerData:
		return d.Text
	case *InputData:
		return d.Title
	case *PropertyData:
		return d.Title
	case *SectionData:
		return d.Title
	case *ContentData:
		if d.Title != "" {
			return d.Title
		}
		return d.Text
	}
	return ""
}
