package metrics

import (
	"PatientPulse/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	forecastValue  prometheus.Gauge
	forecastsTotal *prometheus.CounterVec
	alertLevel     prometheus.Gauge
	lastPatients   prometheus.Gauge
	observations   prometheus.Counter
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
}

// New registers the collectors on reg (the default registry when nil).
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		forecastValue: f.NewGauge(prometheus.GaugeOpts{
			Name: "patientpulse_forecast_patients",
			Help: "Most recent next-hour patient forecast",
		}),
		forecastsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "patientpulse_forecasts_total",
			Help: "Forecasts computed, by alert level",
		}, []string{"level"}),
		alertLevel: f.NewGauge(prometheus.GaugeOpts{
			Name: "patientpulse_forecast_alert_level",
			Help: "Alert level of the latest forecast (0 normal, 1 medium, 2 high)",
		}),
		lastPatients: f.NewGauge(prometheus.GaugeOpts{
			Name: "patientpulse_observed_patients",
			Help: "Most recently ingested hourly patient count",
		}),
		observations: f.NewCounter(prometheus.CounterOpts{
			Name: "patientpulse_observations_ingested_total",
			Help: "Observations appended to the series",
		}),
		errorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "patientpulse_errors_total",
			Help: "Errors encountered, by kind",
		}, []string{"type"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "patientpulse_operation_duration_seconds",
			Help:    "Duration of operations in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// RecordForecast sets the forecast gauge and counts the tier.
func (r *Recorder) RecordForecast(value int, level models.AlertLevel) {
	r.forecastValue.Set(float64(value))
	r.forecastsTotal.WithLabelValues(string(level)).Inc()
	r.alertLevel.Set(float64(level.Rank()))
}

// RecordObservation records an ingested count.
func (r *Recorder) RecordObservation(patients int) {
	r.lastPatients.Set(float64(patients))
	r.observations.Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
