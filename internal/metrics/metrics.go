// Package metrics provides Prometheus metrics collection and exposition.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics interface used by services, the dispatcher and the HTTP layer.
type Recorder interface {
	RecordTransition(action string)
	RecordSchedulingFailure(op string)
	RecordPersistFailure(key string)
	SetLive(status string, n int)
	RecordDispatched(n int)
	RecordNotificationAction(action string)
	RecordHTTPStatus(statusCode int)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	transitions       *prometheus.CounterVec
	schedulingFailure *prometheus.CounterVec
	persistFailure    *prometheus.CounterVec
	live              *prometheus.GaugeVec
	dispatched        prometheus.Counter
	actions           *prometheus.CounterVec
	httpStatus        *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worrybox_transitions_total",
			Help: "Worry lifecycle operations applied, by action.",
		}, []string{"action"}),
		schedulingFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worrybox_scheduling_failures_total",
			Help: "Notification port failures, by operation.",
		}, []string{"op"}),
		persistFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worrybox_persist_failures_total",
			Help: "Persistence port write failures, by key.",
		}, []string{"key"}),
		live: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worrybox_worries",
			Help: "Worries currently held, by view.",
		}, []string{"status"}),
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "worrybox_notifications_dispatched_total",
			Help: "Due notifications delivered to the alert sink.",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worrybox_notification_actions_total",
			Help: "Inbound notification actions, by action id.",
		}, []string{"action"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worrybox_http_status_total",
			Help: "HTTP responses, by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.transitions,
		c.schedulingFailure,
		c.persistFailure,
		c.live,
		c.dispatched,
		c.actions,
		c.httpStatus,
	)

	return c
}

// RecordTransition counts an applied lifecycle operation.
func (c *Collector) RecordTransition(action string) {
	c.transitions.WithLabelValues(action).Inc()
}

// RecordSchedulingFailure counts a failed schedule or cancel call.
func (c *Collector) RecordSchedulingFailure(op string) {
	c.schedulingFailure.WithLabelValues(op).Inc()
}

// RecordPersistFailure counts a failed document write.
func (c *Collector) RecordPersistFailure(key string) {
	c.persistFailure.WithLabelValues(key).Inc()
}

// SetLive sets the gauge for one view.
func (c *Collector) SetLive(status string, n int) {
	c.live.WithLabelValues(status).Set(float64(n))
}

// RecordDispatched counts delivered notifications.
func (c *Collector) RecordDispatched(n int) {
	c.dispatched.Add(float64(n))
}

// RecordNotificationAction counts an inbound notification action.
func (c *Collector) RecordNotificationAction(action string) {
	c.actions.WithLabelValues(action).Inc()
}

// RecordHTTPStatus counts an HTTP response by status code.
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop is a Recorder that discards everything.
type Nop struct{}

func (Nop) RecordTransition(string)         {}
func (Nop) RecordSchedulingFailure(string)  {}
func (Nop) RecordPersistFailure(string)     {}
func (Nop) SetLive(string, int)             {}
func (Nop) RecordDispatched(int)            {}
func (Nop) RecordNotificationAction(string) {}
func (Nop) RecordHTTPStatus(int)            {}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
