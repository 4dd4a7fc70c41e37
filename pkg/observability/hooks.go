package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/planflow/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level, and corrupted
// references at warn level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRecord: func(ctx context.Context, e *domain.RecordEvent) {
			logger.DebugContext(ctx, "breadcrumb recorded",
				"session_id", e.SessionID, "node_id", e.NodeID, "node_type", e.NodeType,
				"auto", e.Auto, "restored", e.Restored)
		},
		OnRetreat: func(ctx context.Context, e *domain.RecordEvent) {
			logger.DebugContext(ctx, "breadcrumb cached", "session_id", e.SessionID, "node_id", e.NodeID)
		},
		OnInvalidate: func(ctx context.Context, e *domain.InvalidateEvent) {
			logger.InfoContext(ctx, "dependent answers invalidated",
				"session_id", e.SessionID, "source_id", e.SourceID, "removed", e.Removed)
		},
		OnCorruptedReference: func(ctx context.Context, e *domain.ReferenceEvent) {
			logger.WarnContext(ctx, "corrupted graph reference",
				"session_id", e.SessionID, "node_id", e.NodeID, "ref", e.Ref)
		},
	}
}

// Combine fans every event out to each set of hooks in order.
func Combine(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range all {
		out.OnRecord = chain(out.OnRecord, h.OnRecord)
		out.OnRetreat = chain(out.OnRetreat, h.OnRetreat)
		out.OnAutoAnswer = chain(out.OnAutoAnswer, h.OnAutoAnswer)
		out.OnInvalidate = chain(out.OnInvalidate, h.OnInvalidate)
		out.OnCorruptedReference = chain(out.OnCorruptedReference, h.OnCorruptedReference)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
