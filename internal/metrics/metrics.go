package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the business and transport counters. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	estimatesCreated prometheus.Counter
	invoicesCreated  *prometheus.CounterVec
	punches          *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
}

const (
	InvoiceSourceDirect   = "direct"
	InvoiceSourceEstimate = "estimate"
)

// New registers the counters against registerer, falling back to the default
// Prometheus registerer when it is nil.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		estimatesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "painting_estimates_created_total",
			Help: "Estimates created.",
		}),
		invoicesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "painting_invoices_created_total",
			Help: "Invoices created, partitioned by whether they came from an estimate.",
		}, []string{"source"}),
		punches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "painting_punches_total",
			Help: "Clock punches recorded, partitioned by action.",
		}, []string{"action"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "painting_http_requests_total",
			Help: "HTTP requests served, partitioned by method and status code.",
		}, []string{"method", "status"}),
	}
	registerer.MustRegister(m.estimatesCreated, m.invoicesCreated, m.punches, m.httpRequests)
	return m
}

func (m *Metrics) EstimateCreated() {
	if m == nil {
		return
	}
	m.estimatesCreated.Inc()
}

func (m *Metrics) InvoiceCreated(source string) {
	if m == nil {
		return
	}
	m.invoicesCreated.WithLabelValues(source).Inc()
}

func (m *Metrics) Punch(action string) {
	if m == nil {
		return
	}
	m.punches.WithLabelValues(action).Inc()
}

func (m *Metrics) HTTPRequest(method string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
