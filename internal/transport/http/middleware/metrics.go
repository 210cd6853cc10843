package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "domain_sales"
	metricsSubsystem = "http"
	unmatchedRoute   = "unmatched"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "requests_total",
		Help:      "Requests served, by route template and status code.",
	}, []string{"route", "method", "code"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "request_duration_seconds",
		Help:      "Time to serve a request, by route template.",
		// catalogue reads are cache hits; admin writes wait on the rate API
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "requests_in_flight",
		Help:      "Requests currently being served.",
	})
)

// Metrics labels by route template. Unmatched paths share one label so
// scanners cannot blow up the series count.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInFlight.Inc()
		start := time.Now()
		defer func() {
			httpInFlight.Dec()
			route := c.FullPath()
			if route == "" {
				route = unmatchedRoute
			}
			method := c.Request.Method
			httpRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
			httpLatency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
		}()
		c.Next()
	}
}
