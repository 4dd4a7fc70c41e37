package observability

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/planflow/pkg/domain"
)

// Namespace prefixes every metric name.
const Namespace = "planflow"

// Metrics holds the collectors fed by engine hooks.
type Metrics struct {
	Recorded      *prometheus.CounterVec
	Retreated     *prometheus.CounterVec
	AutoAnswered  *prometheus.CounterVec
	Invalidations prometheus.Counter
	Invalidated   prometheus.Histogram
	Corrupted     prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Recorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "breadcrumbs_recorded_total",
			Help:      "Breadcrumbs recorded, by node type and whether the answer was inferred.",
		}, []string{"node_type", "auto"}),
		Retreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "breadcrumbs_retreated_total",
			Help:      "Breadcrumbs moved to the cache by going back.",
		}, []string{"node_type"}),
		AutoAnswered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "auto_answers_total",
			Help:      "Cards skipped because their answer was inferred.",
		}, []string{"node_type"}),
		Invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "invalidations_total",
			Help:      "Location changes that invalidated dependent answers.",
		}),
		Invalidated: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "invalidated_breadcrumbs",
			Help:      "Breadcrumbs removed per invalidation.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16},
		}),
		Corrupted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "corrupted_references_total",
			Help:      "Edges or answers pointing at missing nodes.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.Recorded, m.Retreated, m.AutoAnswered, m.Invalidations, m.Invalidated, m.Corrupted,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that update m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRecord: func(_ context.Context, e *domain.RecordEvent) {
			m.Recorded.WithLabelValues(string(e.NodeType), strconv.FormatBool(e.Auto)).Inc()
		},
		OnRetreat: func(_ context.Context, e *domain.RecordEvent) {
			m.Retreated.WithLabelValues(string(e.NodeType)).Inc()
		},
		OnAutoAnswer: func(_ context.Context, e *domain.RecordEvent) {
			m.AutoAnswered.WithLabelValues(string(e.NodeType)).Inc()
		},
		OnInvalidate: func(_ context.Context, e *domain.InvalidateEvent) {
			m.Invalidations.Inc()
			m.Invalidated.Observe(float64(len(e.Removed)))
		},
		OnCorruptedReference: func(_ context.Context, _ *domain.ReferenceEvent) {
			m.Corrupted.Inc()
		},
	}
}
