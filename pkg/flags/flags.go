// Package flags holds the ranked outcome flags that Answer nodes can attach
// and that Filter nodes and result pages rank against.
package flags

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultCategory is used by filters and result pages that name no category.
const DefaultCategory = "Planning permission"

//go:embed flags.yaml
var defaultDocument []byte

// Flag is one ranked outcome.
type Flag struct {
	Value    string `json:"value" yaml:"value"`
	Text     string `json:"text" yaml:"text"`
	Category string `json:"category" yaml:"-"`
}

type category struct {
	Name     string `yaml:"name"`
	NoResult string `yaml:"noResult"`
	Flags    []Flag `yaml:"flags"`
}

type document struct {
	Categories []category `yaml:"categories"`
}

// Registry is an immutable, priority ordered set of flags per category.
type Registry struct {
	categories []category
	rank       map[string]int
	byValue    map[string]Flag
}

// Parse builds a registry from a YAML document.
func Parse(raw []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse flag registry: %w", err)
	}

	r := &Registry{
		rank:    make(map[string]int),
		byValue: make(map[string]Flag),
	}
	for _, cat := range doc.Categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("flag category without a name")
		}
		for i := range cat.Flags {
			cat.Flags[i].Category = cat.Name
			f := cat.Flags[i]
			if _, dup := r.byValue[f.Value]; dup {
				return nil, fmt.Errorf("duplicate flag value %q", f.Value)
			}
			r.rank[f.Value] = i
			r.byValue[f.Value] = f
		}
		r.categories = append(r.categories, cat)
	}
	return r, nil
}

// Default returns the built-in registry.
func Default() *Registry {
	r, err := Parse(defaultDocument)
	if err != nil {
		panic(err)
	}
	return r
}

// Categories returns category names in declaration order.
func (r *Registry) Categories() []string {
	names := make([]string, 0, len(r.categories))
	for _, c := range r.categories {
		names = append(names, c.Name)
	}
	return names
}

// ByCategory returns the flags of a category from highest to lowest priority.
func (r *Registry) ByCategory(name string) []Flag {
	for _, c := range r.categories {
		if c.Name == name {
			return slices.Clone(c.Flags)
		}
	}
	return nil
}

// Lookup returns the flag with the given value.
func (r *Registry) Lookup(value string) (Flag, bool) {
	f, ok := r.byValue[value]
	return f, ok
}

// NoResult returns the synthetic flag reported when nothing was collected.
func (r *Registry) NoResult(name string) Flag {
	f := Flag{Text: "No result", Category: name}
	for _, c := range r.categories {
		if c.Name == name {
			f.Value = c.NoResult
		}
	}
	return f
}

// Rank orders values of one category by priority and removes duplicates
// and values that do not belong to the category.
func (r *Registry) Rank(name string, values []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range values {
		f, ok := r.byValue[v]
		if !ok || f.Category != name {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.SortStableFunc(out, func(a, b string) int {
		return r.rank[a] - r.rank[b]
	})
	return out
}
