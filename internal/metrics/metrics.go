// Package metrics defines the Prometheus collectors exported by the API.
// Collectors are registered on a caller-supplied registry so tests can use a
// fresh one; all methods are safe to call on a nil *Metrics.
package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pkordes/subway-lines/internal/domain"
)

// Section operations recorded by ObserveSectionChange.
const (
	OpAdd    = "add"
	OpRemove = "remove"
)

// Metrics groups the collectors for one server instance.
type Metrics struct {
	sectionChanges *prometheus.CounterVec
	lineCache      *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
// It panics if a collector with the same name is already registered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sectionChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subway_section_changes_total",
			Help: "Section add/remove requests by operation and result.",
		}, []string{"op", "result"}),
		lineCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "subway_line_cache_requests_total",
			Help: "Line view cache lookups by result (hit or miss).",
		}, []string{"result"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "subway_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route pattern and status.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.sectionChanges, m.lineCache, m.httpDuration)
	return m
}

// ObserveSectionChange counts one section add or remove. The result label is
// derived from err: "ok", one of the section error kinds, or "error".
func (m *Metrics) ObserveSectionChange(op string, err error) {
	if m == nil {
		return
	}
	m.sectionChanges.WithLabelValues(op, SectionResult(err)).Inc()
}

// ObserveLineCache counts one cache lookup.
func (m *Metrics) ObserveLineCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lineCache.WithLabelValues(result).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// SectionResult maps a section operation error to a metric label.
func SectionResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidSection):
		return "invalid_section"
	case errors.Is(err, domain.ErrInvalidDistance):
		return "invalid_distance"
	case errors.Is(err, domain.ErrInvalidRemoval):
		return "invalid_removal"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
