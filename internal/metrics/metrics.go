// Package metrics exports simulation and search counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elektrokombinacija/dmapf/internal/algo"
	"github.com/elektrokombinacija/dmapf/internal/core"
	"github.com/elektrokombinacija/dmapf/internal/sim"
)

const namespace = "dmapf"

// Collector holds the registered collectors. It implements sim.Observer.
type Collector struct {
	Ticks    prometheus.Counter
	Moves    prometheus.Counter
	Halts    prometheus.Counter
	Agents   prometheus.Gauge
	Arrived  prometheus.Gauge
	Searches *prometheus.CounterVec // kind, result
	Expanded *prometheus.CounterVec // kind
	Pruned   *prometheus.CounterVec // kind, reason
}

// NewCollector registers all collectors with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		Ticks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Ticks executed.",
		}),
		Moves: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Single-cell agent moves applied by ticks.",
		}),
		Halts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "halts_total",
			Help:      "Ticks in which no agent moved.",
		}),
		Agents: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "agents",
			Help:      "Agents in the simulation after the last tick.",
		}),
		Arrived: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "agents_arrived",
			Help:      "Agents standing on their goal after the last tick.",
		}),
		Searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Completed searches by kind and result.",
		}, []string{"kind", "result"}),
		Expanded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expanded_nodes_total",
			Help:      "Nodes finalized by searches.",
		}, []string{"kind"}),
		Pruned: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pruned_successors_total",
			Help:      "Successors refused by the timed search.",
		}, []string{"kind", "reason"}),
	}
}

// ObserveTick records one tick result.
func (c *Collector) ObserveTick(res sim.TickResult) {
	c.Ticks.Inc()
	c.Moves.Add(float64(res.Moved))
	if !res.MovedAny {
		c.Halts.Inc()
	}
	c.Agents.Set(float64(res.Agents))
	c.Arrived.Set(float64(res.Arrived))
}

// SearchTracer returns a tracer counting events under the given kind label.
func (c *Collector) SearchTracer(kind string) algo.Tracer {
	return &searchTracer{
		c:        c,
		kind:     kind,
		expanded: c.Expanded.WithLabelValues(kind),
	}
}

type searchTracer struct {
	c        *Collector
	kind     string
	expanded prometheus.Counter
}

func (t *searchTracer) OnExpand(core.TimedCell, int, int) { t.expanded.Inc() }

func (t *searchTracer) OnPrune(_, _ core.TimedCell, reason algo.PruneReason) {
	t.c.Pruned.WithLabelValues(t.kind, reason.String()).Inc()
}

func (t *searchTracer) OnDone(found bool, _ int) {
	result := "no_path"
	if found {
		result = "found"
	}
	t.c.Searches.WithLabelValues(t.kind, result).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
