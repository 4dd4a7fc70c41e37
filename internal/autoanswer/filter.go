package autoanswer

import (
	"github.com/aretw0/planflow/pkg/domain"
	"github.com/aretw0/planflow/pkg/flags"
)

// Category returns the flag category a Filter node ranks against.
func Category(node *domain.Node) string {
	if d, ok := node.Data.(*domain.FilterData); ok && d.Category != "" {
		return d.Category
	}
	return flags.DefaultCategory
}

// CollectedFlags returns the flag values of category carried by every
// selected answer, highest priority first.
func (r *Resolver) CollectedFlags(bc *domain.Breadcrumbs, category string) []string {
	var raw []string
	for _, id := range r.graph.Sequence(bc.IDs()) {
		crumb, _ := bc.Get(id)
		for _, ansID := range crumb.Answers {
			if ans, ok := r.graph.Node(ansID); ok {
				raw = append(raw, ans.Flags()...)
			}
		}
	}
	return r.flags.Rank(category, raw)
}

// Filter picks the option of a Filter node matching the highest priority
// collected flag, falling back to the option without a value.
func (r *Resolver) Filter(id string, bc *domain.Breadcrumbs) (string, bool) {
	node, ok := r.graph.Node(id)
	if !ok || node.Type != domain.TypeFilter {
		return "", false
	}
	opts := r.options(node)

	for _, flag := range r.CollectedFlags(bc, Category(node)) {
		for _, o := range opts {
			if o.val == flag {
				return o.id, true
			}
		}
	}
	for _, o := range opts {
		if o.val == "" {
			return o.id, true
		}
	}
	return "", false
}

// Registry exposes the flag registry in use.
func (r *Resolver) Registry() *flags.Registry {
	return r.flags
}
