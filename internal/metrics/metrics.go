package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "journal_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "route"},
	)

	RecordsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_records_inserted_total",
			Help: "Total number of journal records written",
		},
		[]string{"kind"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_store_errors_total",
			Help: "Total number of failed store operations",
		},
		[]string{"op", "kind"},
	)

	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "journal_exports_total",
			Help: "Total number of exports produced",
		},
		[]string{"format"},
	)
)
