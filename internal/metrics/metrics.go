package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	Requests        *prometheus.CounterVec
	LatencyMS       *prometheus.HistogramVec
	OrdersCreated   prometheus.Counter
	PaymentOutcomes *prometheus.CounterVec
	WebhookRejected prometheus.Counter
}

// New registers and returns the service collectors.
func New() *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pawmart",
		Subsystem: "orders",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "method", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pawmart",
		Subsystem: "orders",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pawmart",
		Subsystem: "orders",
		Name:      "orders_created_total",
		Help:      "Total number of orders created.",
	})
	paymentOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pawmart",
		Subsystem: "orders",
		Name:      "payment_outcomes_total",
		Help:      "Payment verification outcomes by status.",
	}, []string{"status"})
	webhookRejected := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pawmart",
		Subsystem: "orders",
		Name:      "webhook_rejected_total",
		Help:      "Webhook deliveries rejected for bad signatures.",
	})

	prometheus.MustRegister(requests, latency, ordersCreated, paymentOutcomes, webhookRejected)
	return &Metrics{
		Requests:        requests,
		LatencyMS:       latency,
		OrdersCreated:   ordersCreated,
		PaymentOutcomes: paymentOutcomes,
		WebhookRejected: webhookRejected,
	}
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}

		m.Requests.WithLabelValues(handler, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	}
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
