package ledger

import (
	"context"
	"maps"
	"slices"

	"github.com/aretw0/planflow/pkg/domain"
)

// Append records ud for id. A breadcrumb that matches the one cached or
// live for id keeps its original Seq and CreatedAt.
func (lg *Ledger) Append(ctx context.Context, id string, ud domain.UserData) error {
	node, err := lg.node(id)
	if err != nil {
		return err
	}

	crumb := domain.Breadcrumb{
		Auto:      ud.Auto,
		CreatedAt: lg.now(),
		Data:      withoutNil(ud.Data),
		Override:  withoutNil(ud.Override),
	}
	if len(ud.Answers) > 0 {
		crumb.Answers = slices.Clone(ud.Answers)
	}

	previous, hadPrevious := lg.live.Get(id)
	if !hadPrevious {
		previous, hadPrevious = lg.cache.Get(id)
	}
	restored := hadPrevious && previous.SameAnswer(crumb)
	if restored {
		crumb.Seq = previous.Seq
		crumb.CreatedAt = previous.CreatedAt
	} else {
		lg.seq++
		crumb.Seq = lg.seq
	}

	lg.pruneOrphans(ctx, node, crumb.Answers)
	if hadPrevious && !restored && node.Type.PopulatesPassport() {
		lg.invalidateDependents(ctx, id)
	}
	if !slices.ContainsFunc(lg.pending, func(p string) bool { return p != id && !lg.live.Has(p) }) {
		lg.pending = nil
	}

	lg.cache.Delete(id)
	if lg.restore {
		lg.live.Merge(lg.cache)
		lg.cache = &domain.Breadcrumbs{}
		lg.restore = false
	}
	lg.live.Set(id, crumb)
	if len(lg.pending) == 0 {
		lg.live = lg.live.Sorted(lg.graph)
	}

	for rid := range lg.live.All() {
		if lg.graph.TypeOf(rid) == domain.TypeReview {
			lg.changed = ""
			break
		}
	}

	ev := &domain.RecordEvent{
		EventBase: lg.base(domain.EventRecord),
		NodeID:    id,
		NodeType:  node.Type,
		Auto:      crumb.Auto,
		Restored:  restored,
	}
	if lg.hooks.OnRecord != nil {
		lg.hooks.OnRecord(ctx, ev)
	}
	if crumb.Auto && lg.hooks.OnAutoAnswer != nil {
		auto := *ev
		auto.Type = domain.EventAutoAnswer
		lg.hooks.OnAutoAnswer(ctx, &auto)
	}
	return nil
}

// withoutNil drops nil values and returns nil for an empty result.
func withoutNil(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := maps.Clone(m)
	maps.DeleteFunc(out, func(_ string, v any) bool { return v == nil })
	if len(out) == 0 {
		return nil
	}
	return out
}

// pruneOrphans removes every breadcrumb, live or cached, that descends from
// an edge of node which is not among answers. Descendants that are still
// reachable through a selected answer are kept.
func (lg *Ledger) pruneOrphans(ctx context.Context, node *domain.Node, answers []string) {
	var abandoned []string
	for _, edge := range node.Edges {
		if !slices.Contains(answers, edge) {
			abandoned = append(abandoned, edge)
		}
	}
	if len(abandoned) == 0 {
		return
	}

	kept := lg.crawl(ctx, node.ID, answers, nil)
	lg.crawl(ctx, node.ID, abandoned, func(id string) {
		if id == node.ID {
			return
		}
		if _, ok := kept[id]; ok {
			return
		}
		lg.live.Delete(id)
		lg.cache.Delete(id)
	})
}

// crawl walks every node reachable from roots once, calling visit for each
// id that resolves. Missing ids are reported and skipped when visiting.
func (lg *Ledger) crawl(ctx context.Context, origin string, roots []string, visit func(string)) map[string]struct{} {
	type ref struct{ parent, id string }

	seen := make(map[string]struct{})
	stack := make([]ref, 0, len(roots))
	for _, id := range roots {
		stack = append(stack, ref{parent: origin, id: id})
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[cur.id]; ok {
			continue
		}
		n, ok := lg.graph.Node(cur.id)
		if !ok {
			if visit != nil {
				lg.corrupted(ctx, cur.parent, cur.id)
			}
			continue
		}
		seen[cur.id] = struct{}{}
		if visit != nil {
			visit(cur.id)
		}
		for _, child := range n.Edges {
			if _, ok := seen[child]; !ok {
				stack = append(stack, ref{parent: cur.id, id: child})
			}
		}
	}
	return seen
}

// invalidateDependents drops every breadcrumb of a passport dependent node
// other than source, live or cached, and queues the removed ids for re-entry.
func (lg *Ledger) invalidateDependents(ctx context.Context, source string) {
	var removed []string
	for _, id := range lg.graph.IDs() {
		if id == source || !lg.graph.TypeOf(id).DependsOnPassport() {
			continue
		}
		inLive := lg.live.Delete(id)
		inCache := lg.cache.Delete(id)
		if inLive || inCache {
			removed = append(removed, id)
		}
	}
	if len(removed) == 0 {
		return
	}
	removed = lg.graph.Sequence(removed)
	lg.pending = removed

	lg.logger.Debug("invalidated passport dependents", "node_id", source, "removed", removed)
	if lg.hooks.OnInvalidate != nil {
		lg.hooks.OnInvalidate(ctx, &domain.InvalidateEvent{
			EventBase: lg.base(domain.EventInvalidate),
			SourceID:  source,
			Removed:   slices.Clone(removed),
		})
	}
}
