package iiko

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors updated by a Client.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	authentications *prometheus.CounterVec
	permitWait      prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iiko_requests_total",
				Help: "Total number of requests sent to the iiko server",
			},
			[]string{"method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "iiko_request_duration_seconds",
				Help:    "Duration of requests sent to the iiko server",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		authentications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "iiko_authentications_total",
				Help: "Total number of authentication exchanges",
			},
			[]string{"result"},
		),
		permitWait: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "iiko_permit_wait_seconds",
				Help:    "Time spent waiting for the request permit",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	for _, c := range []prometheus.Collector{m.requests, m.requestDuration, m.authentications, m.permitWait} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) observeRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, label).Inc()
	m.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) observeAuthentication(ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.authentications.WithLabelValues(result).Inc()
}

func (m *Metrics) observePermitWait(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.permitWait.Observe(elapsed.Seconds())
}
