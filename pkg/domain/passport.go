package domain

import (
	"maps"
	"strings"
)

// Passport is the key-value store derived by replaying breadcrumbs.
// It is never mutated independently of the breadcrumbs that produce it.
type Passport struct {
	Data map[string]any `json:"data"`
}

// NewPassport returns an empty passport.
func NewPassport() Passport {
	return Passport{Data: make(map[string]any)}
}

// Clone returns a shallow copy of the passport.
func (p Passport) Clone() Passport {
	if p.Data == nil {
		return NewPassport()
	}
	return Passport{Data: maps.Clone(p.Data)}
}

// Has reports whether key is set.
func (p Passport) Has(key string) bool {
	_, ok := p.Data[key]
	return ok
}

// Strings returns the value under key as a list of strings. Values decoded
// from JSON ([]any) and single strings are accepted; anything else yields nil.
func (p Passport) Strings(key string) []string {
	return StringsOf(p.Data[key])
}

// Nots returns the values confirmed absent for fn.
func (p Passport) Nots(fn string) []string {
	switch nots := p.Data[NotsKey].(type) {
	case map[string]any:
		return StringsOf(nots[fn])
	case map[string][]string:
		return nots[fn]
	}
	return nil
}

// StringsOf converts loosely typed list values into a string slice.
func StringsOf(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case string:
		return []string{val}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Granularity counts the dot separated segments of a value, so
// "flood.zoneOne" is more specific than "flood".
func Granularity(val string) int {
	return len(strings.Split(val, "."))
}
