package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	ConversionsTotal     *prometheus.CounterVec
	FlightsParsed        prometheus.Counter
	PassengersParsed     prometheus.Counter
	ConversionTime       prometheus.Histogram
	SuspiciousCount      prometheus.Counter
	EmailsProcessed      *prometheus.CounterVec
	AlertsSent           prometheus.Counter
	ErrorsCount          *prometheus.CounterVec
	ReferenceRecordsSeen *prometheus.GaugeVec
}

// NewMetrics creates the service metrics on the default registry
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith creates the service metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not panic.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ConversionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "The total number of PNR conversions by source",
		}, []string{"source"}),
		FlightsParsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flights_parsed_total",
			Help:      "The total number of flight segments produced",
		}),
		PassengersParsed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passengers_parsed_total",
			Help:      "The total number of passengers produced",
		}),
		ConversionTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_time_seconds",
			Help:      "Time taken to convert a PNR",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		SuspiciousCount: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suspicious_conversions_total",
			Help:      "Conversions with no flights or placeholder reference data",
		}),
		EmailsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_processed_total",
			Help:      "The total number of processed emails by final status",
		}, []string{"status"}),
		AlertsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_sent_total",
			Help:      "The total number of alerts delivered",
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
		ReferenceRecordsSeen: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reference_records",
			Help:      "Number of reference records loaded by table",
		}, []string{"table"}),
	}
}
