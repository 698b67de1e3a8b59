package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "message_http_requests_total",
			Help: "Total number of HTTP requests processed by the messaging service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "message_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	messagesDeliveredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "message_delivered_total",
			Help: "Total number of message copies stored, by send kind.",
		},
		[]string{"kind"},
	)
	sendsBlockedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "message_sends_blocked_total",
			Help: "Total number of direct sends rejected by a block list.",
		},
	)
	groupFanoutSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "message_group_fanout_size",
			Help:    "Number of copies written per group send.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		},
	)
	wsActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "message_ws_active_connections",
			Help: "Number of active websocket feed connections.",
		},
		[]string{"kind"},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "message_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"kind", "event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "message_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		messagesDeliveredTotal,
		sendsBlockedTotal,
		groupFanoutSize,
		wsActiveConnections,
		wsEventsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func AddMessagesDelivered(kind string, count int) {
	messagesDeliveredTotal.WithLabelValues(kind).Add(float64(count))
}

func IncSendBlocked() {
	sendsBlockedTotal.Inc()
}

func ObserveGroupFanout(size int) {
	groupFanoutSize.Observe(float64(size))
}

func IncWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Inc()
}

func DecWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Dec()
}

func IncWSEvent(kind, event string) {
	wsEventsTotal.WithLabelValues(kind, event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
