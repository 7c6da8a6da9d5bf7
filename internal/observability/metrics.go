package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "farmdiary"

// Metrics holds the Prometheus collectors shared by the services.
type Metrics struct {
	RecordsCreated *prometheus.CounterVec // labels: collection
	RecordsDeleted *prometheus.CounterVec // labels: collection
	AuthAttempts   *prometheus.CounterVec // labels: realm, action={register,login}, outcome={success,failure}

	WeatherSearches    *prometheus.CounterVec // labels: outcome={success,error,blank}
	WeatherAPIDuration prometheus.Histogram
	StaleResponses     prometheus.Counter

	NotificationsSent *prometheus.CounterVec // labels: channel, outcome
}

// NewMetrics creates and registers all metrics with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsCreated,
		m.RecordsDeleted,
		m.AuthAttempts,
		m.WeatherSearches,
		m.WeatherAPIDuration,
		m.StaleResponses,
		m.NotificationsSent,
	)
	return m
}

// NewMetricsForTesting creates unregistered metrics so tests can build as
// many instances as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// Nop returns unregistered metrics for components built without a registry.
func Nop() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_created_total",
			Help:      "Records appended to a farm collection.",
		}, []string{"collection"}),
		RecordsDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_deleted_total",
			Help:      "Records removed from a farm collection.",
		}, []string{"collection"}),
		AuthAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Register and login attempts by realm and outcome.",
		}, []string{"realm", "action", "outcome"}),
		WeatherSearches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_searches_total",
			Help:      "Weather Pro searches by outcome.",
		}, []string{"outcome"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "weather_api_duration_seconds",
			Help:      "Latency of the remote weather API.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StaleResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_stale_responses_total",
			Help:      "Weather responses discarded because a newer search was issued.",
		}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Outbound notifications by channel and outcome.",
		}, []string{"channel", "outcome"}),
	}
}
