// Package metrics records run statistics and writes them in the Prometheus
// text format, for collection through the node exporter textfile collector.
//
// Usage:
//
//	m := metrics.New()
//	result, err := routeconf.Run(ctx, cfg, m.Options()...)
//	_ = m.WriteTextfile("/var/lib/node_exporter/routeconf.prom")
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agentstation/routeconf"
	"github.com/agentstation/routeconf/pkg/apply"
	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/reconcile"
)

// Metrics holds the collectors for routeconf runs.
type Metrics struct {
	registry *prometheus.Registry

	// RunsTotal counts runs by outcome.
	// Labels: result (success|error)
	RunsTotal *prometheus.CounterVec

	// ErrorsTotal counts failed runs by kind.
	// Labels: kind (validation|store_io|store_parse|program_not_found|program_failed|other)
	ErrorsTotal *prometheus.CounterVec

	// RoutersExisting is the number of routers in the store before the last run.
	RoutersExisting prometheus.Gauge

	// RoutersRequested is the number of routers in the last request.
	RoutersRequested prometheus.Gauge

	// RoutersAddedTotal counts routers appended to the store.
	RoutersAddedTotal prometheus.Counter

	// ProgramRunsTotal counts program executions.
	// Labels: status (success|error)
	ProgramRunsTotal *prometheus.CounterVec

	// ProgramDuration measures program run time in seconds.
	ProgramDuration prometheus.Histogram

	// LastRunTimestamp is the unix time of the last run.
	LastRunTimestamp prometheus.Gauge

	// LastSuccessTimestamp is the unix time of the last successful run.
	LastSuccessTimestamp prometheus.Gauge
}

// New creates metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "routeconf_runs_total",
			Help: "Number of routeconf runs by result.",
		}, []string{"result"}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "routeconf_errors_total",
			Help: "Number of failed routeconf runs by error kind.",
		}, []string{"kind"}),
		RoutersExisting: factory.NewGauge(prometheus.GaugeOpts{
			Name: "routeconf_routers_existing",
			Help: "Routers present in the store before the last run.",
		}),
		RoutersRequested: factory.NewGauge(prometheus.GaugeOpts{
			Name: "routeconf_routers_requested",
			Help: "Routers requested in the last run.",
		}),
		RoutersAddedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "routeconf_routers_added_total",
			Help: "Routers appended to the store.",
		}),
		ProgramRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "routeconf_program_runs_total",
			Help: "External program executions by status.",
		}, []string{"status"}),
		ProgramDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "routeconf_program_duration_seconds",
			Help:    "External program run time in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 300},
		}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "routeconf_last_run_timestamp_seconds",
			Help: "Unix time of the last run.",
		}),
		LastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "routeconf_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run.",
		}),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Options returns run options that feed these metrics.
func (m *Metrics) Options() []routeconf.Option {
	return []routeconf.Option{
		routeconf.OnReconciled(m.ObserveReconcile),
		routeconf.OnApplied(m.ObserveApply),
		routeconf.OnFailed(m.ObserveFailure),
	}
}

// ObserveReconcile records the counts of a reconciliation.
func (m *Metrics) ObserveReconcile(r *reconcile.Result) {
	m.LastRunTimestamp.Set(float64(time.Now().Unix()))
	if r == nil {
		return
	}
	m.RoutersExisting.Set(float64(r.ExistingCount))
	m.RoutersRequested.Set(float64(r.RequestedCount))
	if !r.DryRun {
		m.RoutersAddedTotal.Add(float64(r.AddedCount))
	}
}

// ObserveApply records a program execution.
func (m *Metrics) ObserveApply(o *apply.Outcome, err error) {
	if o == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.ProgramRunsTotal.WithLabelValues(status).Inc()
	m.ProgramDuration.Observe(o.Duration.Seconds())
}

// ObserveFailure records a failed run.
func (m *Metrics) ObserveFailure(err error) {
	m.LastRunTimestamp.Set(float64(time.Now().Unix()))
	m.RunsTotal.WithLabelValues("error").Inc()
	m.ErrorsTotal.WithLabelValues(Kind(err)).Inc()
}

// ObserveSuccess records a successful run.
func (m *Metrics) ObserveSuccess() {
	m.RunsTotal.WithLabelValues("success").Inc()
	m.LastSuccessTimestamp.Set(float64(time.Now().Unix()))
}

// WriteTextfile writes all metrics to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Kind classifies an error for the errors_total label.
func Kind(err error) string {
	switch {
	case errors.IsProgramNotFound(err):
		return "program_not_found"
	case errors.IsProgramFailed(err):
		return "program_failed"
	case errors.IsParse(err):
		return "store_parse"
	case errors.IsIO(err):
		return "store_io"
	case errors.IsValidationError(err):
		return "validation"
	default:
		return "other"
	}
}
