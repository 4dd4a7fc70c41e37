package schema

import (
	"github.com/aretw0/planflow/internal/autoanswer"
	"github.com/aretw0/planflow/pkg/domain"
)

var contactFields = Schema{
	"name":  Optional(String()),
	"email": Optional(Email()),
	"phone": Optional(String()),
}

// ForNode returns the schema of the data recorded for node, or nil when the
// node type carries no typed data.
func ForNode(node *domain.Node) Schema {
	fn := node.Fn()
	if fn == "" {
		fn = node.ID
	}

	switch node.Type {
	case domain.TypeTextInput:
		return Schema{fn: String()}
	case domain.TypeNumberInput:
		return Schema{fn: Float()}
	case domain.TypeDateInput:
		return Schema{fn: Date()}
	case domain.TypeAddressInput:
		return Schema{fn: OneOf(String(), Map(nil))}
	case domain.TypeContactInput:
		return Schema{autoanswer.ContactKey(fn): Map(Schema{fn: Map(contactFields)})}
	case domain.TypeFindProperty:
		return Schema{"_address": Map(nil)}
	}
	return nil
}

// ValidateRecord checks the data submitted for node. Retreats (nil data) and
// nodes without a schema always pass.
func ValidateRecord(node *domain.Node, ud *domain.UserData) error {
	if ud == nil {
		return nil
	}
	s := ForNode(node)
	if s == nil {
		return nil
	}
	return Validate(s, ud.Data)
}
