// Package metrics exposes the latest refresh as Prometheus metrics.
// Only the current snapshot is reported; nothing is retained between
// refreshes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Guliveer/powerbar/internal/models"
)

// Metrics holds the refresh metrics and the registry they belong to.
type Metrics struct {
	registry *prometheus.Registry

	refreshes      *prometheus.CounterVec
	refreshErrors  prometheus.Counter
	matchedDevices prometheus.Gauge
	percentage     *prometheus.GaugeVec
}

// New creates the metrics and registers them, together with the standard Go
// runtime and process collectors, on a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "powerbar_refreshes_total",
				Help: "Total number of refresh cycles by what triggered them.",
			},
			[]string{"trigger"},
		),
		refreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "powerbar_refresh_errors_total",
			Help: "Total number of refresh cycles that failed.",
		}),
		matchedDevices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "powerbar_matched_devices",
			Help: "Number of devices matched by the kind filter in the last refresh.",
		}),
		percentage: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "powerbar_device_percentage",
				Help: "Battery percentage of each matched device in the last refresh.",
			},
			[]string{"path", "kind", "model"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.refreshes,
		m.refreshErrors,
		m.matchedDevices,
		m.percentage,
	)
	return m
}

// ObserveRefresh records a successful refresh. Devices from earlier
// refreshes that are no longer present are dropped.
func (m *Metrics) ObserveRefresh(trigger string, snapshots []models.DeviceSnapshot) {
	m.refreshes.WithLabelValues(trigger).Inc()
	m.matchedDevices.Set(float64(len(snapshots)))
	m.percentage.Reset()
	for _, s := range snapshots {
		m.percentage.WithLabelValues(s.Path, s.Kind.String(), s.Model).Set(s.Percentage)
	}
}

// ObserveError records a failed refresh.
func (m *Metrics) ObserveError(trigger string) {
	m.refreshes.WithLabelValues(trigger).Inc()
	m.refreshErrors.Inc()
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
