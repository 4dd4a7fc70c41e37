package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Type defines the contract for field validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "date").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

type stringType struct{}

func (stringType) Name() string { return "string" }

func (stringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string")
	}
	return nil
}

type floatType struct{}

func (floatType) Name() string { return "number" }

func (floatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	}
	return fmt.Errorf("expected number")
}

type dateType struct{}

func (dateType) Name() string { return "date" }

func (dateType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected date string")
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("expected date as YYYY-MM-DD")
	}
	return nil
}

type mapType struct {
	fields Schema
}

func (t mapType) Name() string {
	if len(t.fields) == 0 {
		return "object"
	}
	return "{" + strings.Join(t.fields.keys(), ",") + "}"
}

func (t mapType) Validate(value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object")
	}
	if len(t.fields) == 0 {
		return nil
	}
	return Validate(t.fields, m)
}

type sliceType struct {
	elem Type
}

func (t sliceType) Name() string { return "[" + t.elem.Name() + "]" }

func (t sliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected list")
	}
	for i := range rv.Len() {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

type oneOfType struct {
	types []Type
}

func (t oneOfType) Name() string {
	names := make([]string, len(t.types))
	for i, typ := range t.types {
		names[i] = typ.Name()
	}
	return strings.Join(names, "|")
}

func (t oneOfType) Validate(value any) error {
	for _, typ := range t.types {
		if typ.Validate(value) == nil {
			return nil
		}
	}
	return fmt.Errorf("expected %s", t.Name())
}

type customType struct {
	name     string
	validate func(any) error
}

func (t customType) Name() string { return t.name }

func (t customType) Validate(value any) error { return t.validate(value) }

// String accepts strings.
func String() Type { return stringType{} }

// Float accepts any Go or JSON number.
func Float() Type { return floatType{} }

// Date accepts YYYY-MM-DD strings.
func Date() Type { return dateType{} }

// Map accepts objects. Fields, when given, are validated as a nested schema.
func Map(fields Schema) Type { return mapType{fields: fields} }

// Slice accepts lists whose elements are all of elem.
func Slice(elem Type) Type { return sliceType{elem: elem} }

// OneOf accepts a value matching any of types.
func OneOf(types ...Type) Type { return oneOfType{types: types} }

// Custom creates a type validated by fn.
func Custom(name string, fn func(any) error) Type {
	return customType{name: name, validate: fn}
}
