package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

// Metrics exports ingestion and store health gauges. It implements airquality.Observer.
type Metrics struct {
	registry *prometheus.Registry

	readingsStored  *prometheus.CounterVec
	realtimeUpdates prometheus.Counter
	latestPPM       prometheus.Gauge
	realtimePPM     prometheus.Gauge
	storeUp         prometheus.Gauge
	storeReadings   prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		readingsStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "airquality_readings_stored_total",
			Help: "Total readings persisted, by air quality label.",
		}, []string{"air_quality"}),
		realtimeUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "airquality_realtime_updates_total",
			Help: "Total realtime snapshot overwrites.",
		}),
		latestPPM: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airquality_latest_ppm",
			Help: "Concentration of the most recently persisted reading.",
		}),
		realtimePPM: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airquality_realtime_ppm",
			Help: "Concentration of the current realtime snapshot.",
		}),
		storeUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airquality_store_up",
			Help: "1 if the last store probe succeeded, 0 otherwise.",
		}),
		storeReadings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airquality_store_readings",
			Help: "Number of readings in the store at the last probe.",
		}),
	}

	m.registry.MustRegister(
		m.readingsStored,
		m.realtimeUpdates,
		m.latestPPM,
		m.realtimePPM,
		m.storeUp,
		m.storeReadings,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ReadingStored(r airquality.Reading) {
	if m == nil {
		return
	}
	m.readingsStored.WithLabelValues(string(r.AirQuality)).Inc()
	m.latestPPM.Set(r.PPM)
}

func (m *Metrics) SnapshotUpdated(s airquality.Snapshot) {
	if m == nil {
		return
	}
	m.realtimeUpdates.Inc()
	if s.PPM != nil {
		m.realtimePPM.Set(*s.PPM)
	}
}

func (m *Metrics) StoreProbed(status airquality.StoreStatus) {
	if m == nil {
		return
	}
	if status.OK {
		m.storeUp.Set(1)
		m.storeReadings.Set(float64(status.ReadingsCount))
		return
	}
	m.storeUp.Set(0)
}
