package observability

import (
	"context"

	"github.com/aretw0/botflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	BlocksDisplayed   *prometheus.CounterVec
	Completions       *prometheus.CounterVec
	Continuations     *prometheus.CounterVec
	VariablesInjected prometheus.Counter
	SessionBlocks     prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		BlocksDisplayed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botflow_blocks_displayed_total",
				Help: "Blocks appended to session histories",
			},
			[]string{"flow_id"},
		),
		Completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botflow_sessions_completed_total",
				Help: "Sessions that reached the completed state",
			},
			[]string{"reason"},
		),
		Continuations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botflow_continuations_total",
				Help: "Queued continuations consumed",
			},
			[]string{"flow_id"},
		),
		VariablesInjected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "botflow_variables_injected_total",
			Help: "Predefined variables bound at session start",
		}),
		SessionBlocks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "botflow_session_blocks",
			Help:    "Blocks displayed per completed session",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}

	for _, c := range []prometheus.Collector{
		m.BlocksDisplayed, m.Completions, m.Continuations, m.VariablesInjected, m.SessionBlocks,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEdgeVisible: func(_ context.Context, e *domain.EdgeEvent) {
			m.BlocksDisplayed.WithLabelValues(e.GraphID).Inc()
		},
		OnCompleted: func(_ context.Context, e *domain.CompletionEvent) {
			m.Completions.WithLabelValues(e.Reason).Inc()
			m.SessionBlocks.Observe(float64(e.Displayed))
		},
		OnContinuation: func(_ context.Context, e *domain.ContinuationEvent) {
			m.Continuations.WithLabelValues(e.GraphID).Inc()
		},
		OnVariablesInjected: func(_ context.Context, e *domain.VariablesEvent) {
			m.VariablesInjected.Add(float64(len(e.Variables)))
		},
	}
}
