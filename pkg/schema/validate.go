package schema

import "sort"

// Schema is a map of data keys to their expected types.
type Schema map[string]Type

func (s Schema) keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks that every non-optional key of s is present in data with
// the expected type. Keys of data that s does not name are ignored. Failures are reported
// in key order.
func Validate(s Schema, data map[string]any) error {
	var errs []error
	for _, key := range s.keys() {
		value, ok := data[key]
		if !ok || value == nil {
			if isOptional(s[key]) {
				continue
			}
			errs = append(errs, &ValidationError{Key: key, Reason: "required"})
			continue
		}
		if err := s[key].Validate(value); err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: value})
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
