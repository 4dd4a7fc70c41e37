// Package autoanswer decides whether an unanswered node can be skipped
// because the session already implies its answer.
package autoanswer

import (
	"log/slog"
	"slices"

	"github.com/aretw0/planflow/internal/passport"
	"github.com/aretw0/planflow/pkg/domain"
	"github.com/aretw0/planflow/pkg/flags"
)

// Resolver infers answers against one graph snapshot.
type Resolver struct {
	graph  *domain.Graph
	flags  *flags.Registry
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for corrupted references.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithFlags replaces the built-in flag registry.
func WithFlags(reg *flags.Registry) Option {
	return func(r *Resolver) {
		r.flags = reg
	}
}

// New returns a resolver for g.
func New(g *domain.Graph, opts ...Option) *Resolver {
	r := &Resolver{
		graph:  g,
		flags:  flags.Default(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// option is an Answer child of a decision or filter node.
type option struct {
	id  string
	val string
}

// options resolves the Answer children of node, skipping corrupted edges.
func (r *Resolver) options(node *domain.Node) []option {
	out := make([]option, 0, len(node.Edges))
	for _, id := range node.Edges {
		child, ok := r.graph.Node(id)
		if !ok {
			r.logger.Warn("skipping missing option", "node_id", node.ID, "ref", id)
			continue
		}
		if child.Type != domain.TypeAnswer {
			continue
		}
		out = append(out, option{id: id, val: child.Val()})
	}
	return out
}

// Options returns the option ids a Question or Checklist can be answered
// with, or nil when the node must be shown to the user. A Question yields
// at most one id.
func (r *Resolver) Options(id string, bc *domain.Breadcrumbs, p domain.Passport) []string {
	node, ok := r.graph.Node(id)
	if !ok || !node.Type.IsDecision() {
		return nil
	}
	fn := node.Fn()
	cfg := node.Decision()
	if fn == "" || len(node.Edges) == 0 || cfg.NeverAutoAnswer {
		return nil
	}

	values := p.Strings(fn)
	nots := p.Nots(fn)
	visited := r.visitedOptionValues(id, fn, bc)
	if visited == nil && len(values) == 0 && len(nots) == 0 && !p.Has(fn) && !cfg.AlwaysAutoAnswerBlank {
		return nil
	}

	opts := r.options(node)
	// Most specific literal first; this ordering breaks every tie below.
	slices.SortStableFunc(opts, func(a, b option) int {
		return domain.Granularity(b.val) - domain.Granularity(a.val)
	})

	var blank *option
	var literal []option
	for i := range opts {
		if opts[i].val == "" {
			if blank == nil {
				blank = &opts[i]
			}
			continue
		}
		literal = append(literal, opts[i])
	}
	seenEvery := everySeen(literal, visited)

	var result []option
	switch {
	case fn == domain.PlanningConstraintsFn && (len(values) > 0 || len(nots) > 0):
		result = exactMatches(literal, values)
		if len(result) == 0 && blank != nil {
			// Constraints that were never queried are put to the user once.
			if everySeen(literal, withValues(visited, nots)) || cfg.AlwaysAutoAnswerBlank {
				result = []option{*blank}
			}
		}
	case len(values) > 0:
		result = mostSpecific(exactMatches(literal, values))
		if len(result) == 0 {
			result = prefixMatches(literal, values)
		}
		if len(result) == 0 && blank != nil {
			// The key is known and no option describes it.
			result = []option{*blank}
		}
	default:
		if blank != nil && (seenEvery || cfg.AlwaysAutoAnswerBlank) {
			result = []option{*blank}
		}
	}

	if len(result) == 0 && blank != nil && cfg.AlwaysAutoAnswerBlank {
		result = []option{*blank}
	}
	if len(result) == 0 {
		return nil
	}
	if node.Type == domain.TypeQuestion {
		result = result[:1]
	}

	ids := make([]string, len(result))
	for i, o := range result {
		ids[i] = o.id
	}
	return ids
}

// visitedOptionValues returns the literal values offered by every other
// answered node reading fn, or nil when no such node was answered.
func (r *Resolver) visitedOptionValues(self, fn string, bc *domain.Breadcrumbs) map[string]struct{} {
	var seen map[string]struct{}
	for id := range bc.All() {
		if id == self {
			continue
		}
		node, ok := r.graph.Node(id)
		if !ok || node.Fn() != fn {
			continue
		}
		if seen == nil {
			seen = make(map[string]struct{})
		}
		for _, o := range r.options(node) {
			if o.val != "" {
				seen[o.val] = struct{}{}
			}
		}
	}
	return seen
}

func everySeen(opts []option, seen map[string]struct{}) bool {
	if seen == nil {
		return false
	}
	for _, o := range opts {
		if _, ok := seen[o.val]; !ok {
			return false
		}
	}
	return true
}

// withValues returns seen extended with vals, leaving seen untouched.
func withValues(seen map[string]struct{}, vals []string) map[string]struct{} {
	if seen == nil && len(vals) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(seen)+len(vals))
	for v := range seen {
		out[v] = struct{}{}
	}
	for _, v := range vals {
		out[v] = struct{}{}
	}
	return out
}

// exactMatches selects options whose literal is held verbatim.
func exactMatches(opts []option, values []string) []option {
	var out []option
	for _, o := range opts {
		if slices.Contains(values, o.val) {
			out = append(out, o)
		}
	}
	return out
}

// prefixMatches selects options that a held value refines. The direction is
// strict: a general passport value never selects a more specific option.
func prefixMatches(opts []option, values []string) []option {
	var out []option
	for _, o := range opts {
		if slices.ContainsFunc(values, func(v string) bool { return passport.Extends(v, o.val) }) {
			out = append(out, o)
		}
	}
	return mostSpecific(out)
}

// mostSpecific drops options refined by another option in the set.
func mostSpecific(opts []option) []option {
	return slices.DeleteFunc(slices.Clone(opts), func(o option) bool {
		return slices.ContainsFunc(opts, func(other option) bool {
			return passport.Extends(other.val, o.val)
		})
	})
}
