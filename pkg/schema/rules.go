package schema

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type ruleType struct {
	tag string
}

func (t ruleType) Name() string { return t.tag }

func (t ruleType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string")
	}
	if err := validate.Var(s, t.tag); err != nil {
		return fmt.Errorf("expected %s", t.tag)
	}
	return nil
}

// Rule accepts strings passing the validator tag, e.g. "email" or "url".
func Rule(tag string) Type { return ruleType{tag: tag} }

// Email accepts email addresses.
func Email() Type { return Rule("email") }

type optionalType struct {
	Type
}

// Optional lets key be absent or null. A present value must still be of t.
func Optional(t Type) Type { return optionalType{Type: t} }

func isOptional(t Type) bool {
	_, ok := t.(optionalType)
	return ok
}
