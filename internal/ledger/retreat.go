package ledger

import (
	"context"
	"slices"

	"github.com/aretw0/planflow/pkg/domain"
)

// Retreat moves id and every breadcrumb recorded after it into the cache.
// It is a no-op when id has no live breadcrumb.
func (lg *Ledger) Retreat(ctx context.Context, id string) error {
	node, err := lg.node(id)
	if err != nil {
		return err
	}

	ids := lg.live.IDs()
	idx := slices.Index(ids, id)
	if idx < 0 {
		return nil
	}

	for _, rid := range ids[idx:] {
		b, _ := lg.live.Get(rid)
		lg.live.Delete(rid)
		lg.cache.Set(rid, b)
	}

	if lg.hooks.OnRetreat != nil {
		lg.hooks.OnRetreat(ctx, &domain.RecordEvent{
			EventBase: lg.base(domain.EventRetreat),
			NodeID:    id,
			NodeType:  node.Type,
		})
	}
	return nil
}

// ChangeAnswer marks id as being changed and retreats to it. The next
// Append splices the remaining cached breadcrumbs back into the ledger.
func (lg *Ledger) ChangeAnswer(ctx context.Context, id string) error {
	if _, err := lg.node(id); err != nil {
		return err
	}
	lg.changed = id
	lg.restore = true
	return lg.Retreat(ctx, id)
}
