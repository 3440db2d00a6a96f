package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimCollector bundles Prometheus metrics for the simulation loop and
// provides a ready-made /metrics handler. It satisfies the simulation's
// tick recorder interface so the loop can drive it directly.
type SimCollector struct {
	gatherer prometheus.Gatherer

	Ticks         prometheus.Counter
	TickDurations prometheus.Histogram
	Travels       *prometheus.CounterVec

	Observers prometheus.Gauge
	Views     prometheus.Gauge
	TimeRate  prometheus.Gauge
}

// NewSimCollector registers simulation Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when
// nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_ticks_total",
		Help: "Total number of simulation ticks processed.",
	}), "sim_ticks_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_interval_seconds",
		Help:    "Wall-clock interval between simulation ticks in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.016, 0.033, 0.05, 0.1, 0.25, 0.5, 1},
	})
	durations, err = registerHistogram(reg, durations, "sim_tick_interval_seconds")
	if err != nil {
		return nil, err
	}

	travels := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_travels_total",
		Help: "Total number of observer travel transitions started, labeled by operation.",
	}, []string{"op"})
	travels, err = registerCounterVec(reg, travels, "sim_travels_total")
	if err != nil {
		return nil, err
	}

	observers, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_observers",
		Help: "Current number of registered observers.",
	}), "sim_observers")
	if err != nil {
		return nil, err
	}
	views, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_views",
		Help: "Current number of view leaves on screen.",
	}), "sim_views")
	if err != nil {
		return nil, err
	}
	timeRate, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_time_rate",
		Help: "Effective simulated-seconds-per-wall-second rate, 0 while paused.",
	}), "sim_time_rate")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:      gatherer,
		Ticks:         ticks,
		TickDurations: durations,
		Travels:       travels,
		Observers:     observers,
		Views:         views,
		TimeRate:      timeRate,
	}, nil
}

// RecordTick counts one simulation tick and its wall-clock interval.
func (c *SimCollector) RecordTick(dt float64, observers int) {
	if c == nil {
		return
	}
	if c.Ticks != nil {
		c.Ticks.Inc()
	}
	if c.TickDurations != nil {
		c.TickDurations.Observe(dt)
	}
	if c.Observers != nil {
		c.Observers.Set(float64(observers))
	}
}

// RecordTravelStart counts an observer travel transition.
func (c *SimCollector) RecordTravelStart(op string) {
	if c == nil || c.Travels == nil {
		return
	}
	c.Travels.WithLabelValues(op).Inc()
}

// SetViewCount records the number of view leaves currently on screen.
func (c *SimCollector) SetViewCount(n int) {
	if c == nil || c.Views == nil {
		return
	}
	c.Views.Set(float64(n))
}

// SetTimeRate records the effective simulated time rate.
func (c *SimCollector) SetTimeRate(rate float64) {
	if c == nil || c.TimeRate == nil {
		return
	}
	c.TimeRate.Set(rate)
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
