package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// Marketplace
	TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transactions_total",
			Help: "Transaction lifecycle events",
		},
		[]string{"event"}, // created|confirmed|delivered|cancelled
	)
	TransactionsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "transactions_failed_total",
			Help: "Purchases rejected or rolled back",
		},
	)
	ListingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listings_total",
			Help: "Listing write events",
		},
		[]string{"event"}, // created|updated|deleted
	)
	MessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Messages sent",
		},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Stats cache lookups",
		},
		[]string{"result"}, // hit|miss|error
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

// Handler serves /metrics.
var Handler = promhttp.Handler

var once sync.Once

func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestDuration,
			TransactionsTotal,
			TransactionsFailed,
			ListingsTotal,
			MessagesTotal,
			CacheLookups,
			WorkerQueueDepth,
		)
	})
}
