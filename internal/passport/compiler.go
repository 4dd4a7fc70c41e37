// Package passport derives the passport from a breadcrumb ledger.
package passport

import (
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/planflow/pkg/domain"
)

// Compile replays bc in canonical order against g and returns the passport.
// It is a pure function: the same graph and ledger always produce the same
// passport. Breadcrumbs for ids missing from g are ignored.
func Compile(g *domain.Graph, bc *domain.Breadcrumbs) domain.Passport {
	acc := domain.NewPassport()

	for _, id := range g.Sequence(bc.IDs()) {
		crumb, _ := bc.Get(id)
		node, ok := g.Node(id)
		if !ok {
			continue
		}

		if fn := node.Fn(); fn != "" && len(crumb.Answers) > 0 {
			if vals := answerValues(g, crumb.Answers); len(vals) > 0 {
				acc.Data[fn] = Merge(fn, vals, domain.StringsOf(acc.Data[fn]))
			}
		}

		maps.Copy(acc.Data, crumb.Data)

		if node.Type == domain.TypeSetValue {
			if sv, ok := node.Data.(*domain.SetValueData); ok {
				ApplySetValue(acc.Data, *sv)
			}
		}
	}
	return acc
}

func answerValues(g *domain.Graph, answers []string) []string {
	var vals []string
	for _, id := range answers {
		ans, ok := g.Node(id)
		if !ok {
			continue
		}
		if v := ans.Val(); v != "" {
			vals = append(vals, v)
		}
	}
	return vals
}

// Merge combines newly collected values with existing ones for fn, newest
// first. Unless fn keeps every granularity, a value is dropped when another
// retained value is a more specific extension of it.
func Merge(fn string, incoming, existing []string) []string {
	combined := slices.Concat(incoming, existing)
	if fn != domain.PlanningConstraintsFn {
		combined = Collapse(combined)
	}
	return uniq(combined)
}

// Collapse keeps only the most specific of hierarchically related values,
// preserving the order of what remains.
func Collapse(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		general := slices.ContainsFunc(vals, func(other string) bool {
			return other != v && Extends(other, v)
		})
		if !general {
			out = append(out, v)
		}
	}
	return out
}

// Extends reports whether val is a strict, dot segmented refinement of
// prefix, e.g. "flood.zoneOne" extends "flood" but "floodplain" does not.
func Extends(val, prefix string) bool {
	return prefix != "" && strings.HasPrefix(val, prefix+".")
}

func uniq(vals []string) []string {
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
