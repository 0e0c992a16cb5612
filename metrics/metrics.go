/*
Package metrics exposes pipeline counters to Prometheus.

METRICS:
  daybook_days_collected_total{result}  ok | failed | skipped
  daybook_import_runs_total{result}     ok | failed | skipped
  daybook_bookings_total{result}        ok | failed
  daybook_open_days                     last value seen by ListOpenDays

Prometheus implements daybook.Recorder. Handler serves the registry.
*/
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus records pipeline events into its own registry.
type Prometheus struct {
	registry      *prometheus.Registry
	daysCollected *prometheus.CounterVec
	importRuns    *prometheus.CounterVec
	bookings      *prometheus.CounterVec
	openDays      prometheus.Gauge
}

// New creates the collectors and registers them, plus Go and process
// collectors, in a fresh registry.
func New() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		daysCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "daybook",
			Name:      "days_collected_total",
			Help:      "Day collections by result.",
		}, []string{"result"}),
		importRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "daybook",
			Name:      "import_runs_total",
			Help:      "Year import runs by result.",
		}, []string{"result"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "daybook",
			Name:      "bookings_total",
			Help:      "Bookkeeping postings by result.",
		}, []string{"result"}),
		openDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "daybook",
			Name:      "open_days",
			Help:      "Stored days not yet sent to bookkeeping.",
		}),
	}
	p.registry.MustRegister(
		p.daysCollected,
		p.importRuns,
		p.bookings,
		p.openDays,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return p
}

func (p *Prometheus) DayCollected(result string) { p.daysCollected.WithLabelValues(result).Inc() }
func (p *Prometheus) ImportRun(result string)    { p.importRuns.WithLabelValues(result).Inc() }
func (p *Prometheus) Booking(result string)      { p.bookings.WithLabelValues(result).Inc() }
func (p *Prometheus) OpenDays(n int)             { p.openDays.Set(float64(n)) }

// Registry returns the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
