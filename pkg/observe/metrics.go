package observe

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_archive"

// Metrics holds the Prometheus collectors for ingestion and queries.
type Metrics struct {
	UploadsTotal     *prometheus.CounterVec // labels: outcome={ok,failed}
	FilesTotal       *prometheus.CounterVec // labels: outcome={parsed,malformed}
	RecordsParsed    prometheus.Counter
	RecordsPersisted prometheus.Counter
	StorageErrors    prometheus.Counter
	IngestDuration   prometheus.Histogram
	QueriesTotal     *prometheus.CounterVec // labels: outcome={ok,error}
	QueryDuration    prometheus.Histogram
}

func newMetrics() *Metrics {
	return &Metrics{
		UploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Ingestion calls by outcome.",
		}, []string{"outcome"}),
		FilesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Uploaded workbooks by outcome.",
		}, []string{"outcome"}),
		RecordsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_parsed_total",
			Help:      "Weather records parsed from uploaded workbooks.",
		}),
		RecordsPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_persisted_total",
			Help:      "Weather records written to storage.",
		}),
		StorageErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Failed storage writes during ingestion.",
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a complete ingestion call.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Year/month queries by outcome.",
		}, []string{"outcome"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Duration of year/month queries.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.UploadsTotal,
		m.FilesTotal,
		m.RecordsParsed,
		m.RecordsPersisted,
		m.StorageErrors,
		m.IngestDuration,
		m.QueriesTotal,
		m.QueryDuration,
	)
	return m
}

// NewUnregisteredMetrics creates collectors that are not attached to any
// registry. Processes without a metrics endpoint and tests use it.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}
