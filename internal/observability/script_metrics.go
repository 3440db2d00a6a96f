package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ScriptCollector exposes script-runner-specific Prometheus metrics.
type ScriptCollector struct {
	gatherer prometheus.Gatherer

	CommandDuration prometheus.Histogram
	CommandsTotal   *prometheus.CounterVec
	CommandErrors   prometheus.Counter
	ScriptsActive   prometheus.Gauge
}

// NewScriptCollector registers script metrics against the provided registerer.
func NewScriptCollector(reg prometheus.Registerer) (*ScriptCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	durations := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "script_command_duration_seconds",
		Help:    "Duration of individual script command executions.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	durations, err := registerHistogram(reg, durations, "script_command_duration_seconds")
	if err != nil {
		return nil, err
	}

	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "script_commands_total",
		Help: "Total number of script commands executed, labeled by command verb.",
	}, []string{"command"})
	commands, err = registerCounterVec(reg, commands, "script_commands_total")
	if err != nil {
		return nil, err
	}

	errors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "script_command_errors_total",
		Help: "Cumulative number of script commands that failed to parse or execute.",
	})
	errors, err = registerCounter(reg, errors, "script_command_errors_total")
	if err != nil {
		return nil, err
	}

	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "script_runs_active",
		Help: "Number of scripts currently executing.",
	})
	active, err = registerGauge(reg, active, "script_runs_active")
	if err != nil {
		return nil, err
	}

	return &ScriptCollector{
		gatherer:        gatherer,
		CommandDuration: durations,
		CommandsTotal:   commands,
		CommandErrors:   errors,
		ScriptsActive:   active,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *ScriptCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveCommand records one executed command and how long it took.
func (c *ScriptCollector) ObserveCommand(verb string, d time.Duration) {
	if c == nil {
		return
	}
	if c.CommandsTotal != nil {
		c.CommandsTotal.WithLabelValues(verb).Inc()
	}
	if c.CommandDuration != nil {
		c.CommandDuration.Observe(d.Seconds())
	}
}

// IncCommandErrors increments the command error counter.
func (c *ScriptCollector) IncCommandErrors() {
	if c == nil || c.CommandErrors == nil {
		return
	}
	c.CommandErrors.Inc()
}

// SetActiveScripts updates the active script gauge.
func (c *ScriptCollector) SetActiveScripts(count int) {
	if c == nil || c.ScriptsActive == nil {
		return
	}
	c.ScriptsActive.Set(float64(count))
}
