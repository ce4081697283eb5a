package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	RequestDuration  *prometheus.HistogramVec
	BookingsCreated  prometheus.Counter
	PaymentsVerified prometheus.Counter
	PaymentFailures  prometheus.Counter
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
		BookingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of bookings created",
		}),
		PaymentsVerified: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_verified_total",
			Help:      "The total number of successfully verified payments",
		}),
		PaymentFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_failures_total",
			Help:      "The total number of failed payment verifications",
		}),
	}
}

// Handler returns gin middleware observing request durations.
func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.RequestDuration.
			WithLabelValues(c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) BookingCreated() {
	if m != nil {
		m.BookingsCreated.Inc()
	}
}

func (m *Metrics) PaymentVerified() {
	if m != nil {
		m.PaymentsVerified.Inc()
	}
}

func (m *Metrics) PaymentFailed() {
	if m != nil {
		m.PaymentFailures.Inc()
	}
}
