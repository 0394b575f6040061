package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodgram_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// ToggleOperations counts favourite, subscription and purchase changes.
	ToggleOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_toggle_operations_total",
			Help: "Total number of toggle add/remove operations",
		},
		[]string{"kind", "action", "result"},
	)

	PurchaseListDownloads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_purchase_list_downloads_total",
			Help: "Total number of shopping list downloads",
		},
	)

	PurchaseListItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foodgram_purchase_list_items",
			Help:    "Number of distinct ingredients per downloaded shopping list",
			Buckets: prometheus.LinearBuckets(0, 10, 10),
		},
	)

	RecipeWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_writes_total",
			Help: "Total number of recipe create/update/delete operations",
		},
		[]string{"operation"},
	)
)

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		APIActiveRequests.Inc()
		defer APIActiveRequests.Dec()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		APIRequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		APIRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus exposition format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
