// Package ledger maintains the live and cached breadcrumbs of a session.
package ledger

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/planflow/pkg/domain"
)

// Ledger is the append, retreat and cache bookkeeping over answered nodes.
// It is not safe for concurrent use; callers serialise access per session.
type Ledger struct {
	graph  *domain.Graph
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	now    func() time.Time

	sessionID string
	live      *domain.Breadcrumbs
	cache     *domain.Breadcrumbs
	pending   []string
	changed   string
	restore   bool
	seq       int
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger used for corrupted references.
func WithLogger(l *slog.Logger) Option {
	return func(lg *Ledger) {
		lg.logger = l
	}
}

// WithLifecycleHooks registers observers for ledger events.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(lg *Ledger) {
		lg.hooks = h
	}
}

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(lg *Ledger) {
		lg.now = now
	}
}

// WithSessionID tags emitted events.
func WithSessionID(id string) Option {
	return func(lg *Ledger) {
		lg.sessionID = id
	}
}

// New returns an empty ledger over g.
func New(g *domain.Graph, opts ...Option) *Ledger {
	lg := &Ledger{
		graph:  g,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
		live:   &domain.Breadcrumbs{},
		cache:  &domain.Breadcrumbs{},
	}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// Breadcrumbs returns the live ledger. Callers must not mutate it.
func (lg *Ledger) Breadcrumbs() *domain.Breadcrumbs { return lg.live }

// Cached returns the cached breadcrumbs. Callers must not mutate it.
func (lg *Ledger) Cached() *domain.Breadcrumbs { return lg.cache }

// Pending returns the ids that must be re-answered before canonical order resumes.
func (lg *Ledger) Pending() []string { return slices.Clone(lg.pending) }

// ChangedNode returns the node currently being changed, if any.
func (lg *Ledger) ChangedNode() string { return lg.changed }

// Restoring reports whether the next append splices the cache back in.
func (lg *Ledger) Restoring() bool { return lg.restore }

// Load replaces the ledger state, typically from a persisted snapshot.
// Live breadcrumbs are re-sorted canonically unless an edit is pending.
func (lg *Ledger) Load(s *domain.Snapshot) {
	lg.live = s.Breadcrumbs.Clone()
	lg.cache = s.CachedBreadcrumbs.Clone()
	lg.pending = slices.Clone(s.PendingEdit)
	lg.changed = s.ChangedNode
	lg.restore = s.Restore
	if len(lg.pending) == 0 {
		lg.live = lg.live.Sorted(lg.graph)
	}
	// Keep the two stores disjoint even if the snapshot was not.
	for _, id := range lg.cache.IDs() {
		if lg.live.Has(id) {
			lg.cache.Delete(id)
		}
	}
	lg.seq = 0
	for _, store := range []*domain.Breadcrumbs{lg.live, lg.cache} {
		for _, b := range store.All() {
			lg.seq = max(lg.seq, b.Seq)
		}
	}
}

// Save writes the ledger state into s.
func (lg *Ledger) Save(s *domain.Snapshot) {
	s.Breadcrumbs = lg.live.Clone()
	s.CachedBreadcrumbs = lg.cache.Clone()
	s.PendingEdit = slices.Clone(lg.pending)
	s.ChangedNode = lg.changed
	s.Restore = lg.restore
}

func (lg *Ledger) node(id string) (*domain.Node, error) {
	n, ok := lg.graph.Node(id)
	if !ok {
		return nil, &domain.NodeNotFoundError{ID: id}
	}
	return n, nil
}

func (lg *Ledger) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: lg.now(), Type: t, SessionID: lg.sessionID}
}

func (lg *Ledger) corrupted(ctx context.Context, nodeID, ref string) {
	lg.logger.Warn("skipping corrupted graph reference", "node_id", nodeID, "ref", ref)
	if lg.hooks.OnCorruptedReference != nil {
		lg.hooks.OnCorruptedReference(ctx, &domain.ReferenceEvent{
			EventBase: lg.base(domain.EventCorruptedReference),
			NodeID:    nodeID,
			Ref:       ref,
		})
	}
}
