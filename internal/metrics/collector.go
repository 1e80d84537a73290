package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "meal_planner"

// Collector exposes planner activity as Prometheus metrics on its own registry.
type Collector struct {
	registry *prometheus.Registry

	plansGenerated  prometheus.Counter
	emptySlots      prometheus.Histogram
	planDuration    prometheus.Histogram
	recipesIngested prometheus.Counter
}

// NewCollector builds a Collector. When dataPath is set, the size of that
// directory is exported as a gauge.
func NewCollector(dataPath string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	c := &Collector{
		registry: reg,
		plansGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_generated_total",
			Help:      "Total number of weekly meal plans generated",
		}),
		emptySlots: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_empty_slots",
			Help:      "Meal slots left empty per generated plan",
			Buckets:   []float64{0, 1, 3, 7, 14, 21},
		}),
		planDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_duration_seconds",
			Help:      "Time spent generating a weekly plan",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		recipesIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recipes_ingested_total",
			Help:      "Total number of recipes added or updated in the catalog",
		}),
	}

	reg.MustRegister(collectors.NewGoCollector())
	if dataPath != "" {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "data_dir_bytes",
			Help:      "Size of the data directory in bytes",
		}, func() float64 { return float64(DataDirSize(dataPath)) })
	}
	return c
}

// ObservePlan records one generated plan.
func (c *Collector) ObservePlan(emptySlots int, duration time.Duration) {
	c.plansGenerated.Inc()
	c.emptySlots.Observe(float64(emptySlots))
	c.planDuration.Observe(duration.Seconds())
}

// AddRecipesIngested counts recipes written to the catalog.
func (c *Collector) AddRecipesIngested(n int) {
	if n > 0 {
		c.recipesIngested.Add(float64(n))
	}
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
