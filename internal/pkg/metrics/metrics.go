package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Aggregator metrics
var (
	PortfolioRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_requests_total",
		Help: "The total number of portfolio requests by network and outcome",
	}, []string{"network", "outcome"})

	PortfolioDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portfolio_request_duration_seconds",
		Help:    "Time spent aggregating a portfolio",
		Buckets: prometheus.DefBuckets,
	}, []string{"network"})

	PortfolioTokens = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "portfolio_tokens_returned",
		Help:    "The number of non-zero tokens returned per portfolio",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})
)

// Upstream metrics
var (
	UpstreamFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_failures_total",
		Help: "The total number of failed upstream calls by provider and operation",
	}, []string{"provider", "operation"})

	MetadataBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metadata_batches_total",
		Help: "The total number of metadata JSON-RPC batches sent",
	})

	MetadataDegraded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metadata_degraded_tokens_total",
		Help: "The number of tokens returned with empty metadata after a failed lookup",
	})

	PriceDegraded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "price_degraded_requests_total",
		Help: "The number of portfolios returned with zero prices after a failed quote call",
	})
)

// HTTP metrics
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)
