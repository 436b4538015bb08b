// Package metrics exposes session progress as Prometheus collectors fed by
// lifecycle hooks.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aretw0/hdt/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the session collectors on a private registry.
type Collector struct {
	registry *prometheus.Registry

	trials    *prometheus.CounterVec
	reversals *prometheus.CounterVec
	delay     *prometheus.GaugeVec
	threshold *prometheus.GaugeVec
	completed *prometheus.CounterVec
	phase     *prometheus.GaugeVec
}

// New creates and registers the collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		trials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hdt_trials_total",
				Help: "Total number of administered trials",
			},
			[]string{"block", "response_code"},
		),
		reversals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hdt_reversals_total",
				Help: "Total number of staircase reversals",
			},
			[]string{"staircase"},
		),
		delay: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hdt_current_delay_ms",
				Help: "Current staircase delay in milliseconds",
			},
			[]string{"staircase"},
		),
		threshold: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hdt_staircase_threshold_ms",
				Help: "Mean reversal value of a finished staircase",
			},
			[]string{"staircase"},
		),
		completed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hdt_staircases_completed_total",
				Help: "Number of finished staircases",
			},
			[]string{"staircase"},
		),
		phase: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hdt_session_phase",
				Help: "1 for the phase the session is in, 0 otherwise",
			},
			[]string{"phase"},
		),
	}
	c.registry.MustRegister(c.trials, c.reversals, c.delay, c.threshold, c.completed, c.phase)
	return c
}

// Registry returns the registry the collectors live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

var phases = []domain.Phase{
	domain.PhaseInstructions,
	domain.PhaseTraining,
	domain.PhaseStaircases,
	domain.PhaseQuestionnaire,
	domain.PhaseComplete,
	domain.PhaseCancelled,
}

// Hooks returns lifecycle hooks recording into the collectors.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhase: func(_ context.Context, e *domain.PhaseEvent) {
			for _, p := range phases {
				v := 0.0
				if p == e.Phase {
					v = 1
				}
				c.phase.WithLabelValues(string(p)).Set(v)
			}
		},
		OnTrial: func(_ context.Context, e *domain.TrialEvent) {
			code := domain.NotApplicable
			if e.Record.Code != nil {
				code = strconv.Itoa(int(*e.Record.Code))
			}
			c.trials.WithLabelValues(e.Record.Block, code).Inc()
			if e.Record.Block != domain.BlockTraining {
				c.delay.WithLabelValues(e.Record.Block).Set(e.Value)
			}
		},
		OnReversal: func(_ context.Context, e *domain.ReversalEvent) {
			c.reversals.WithLabelValues(e.Staircase).Inc()
		},
		OnStaircaseDone: func(_ context.Context, e *domain.StaircaseEvent) {
			c.completed.WithLabelValues(e.Staircase).Inc()
			if e.HasThreshold {
				c.threshold.WithLabelValues(e.Staircase).Set(e.Threshold)
			}
		},
	}
}
