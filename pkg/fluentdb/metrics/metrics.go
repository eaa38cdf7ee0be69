// Package metrics keeps the prometheus histograms fluentdb records statement timings in.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"

	"github.com/sllt/fluentdb/pkg/fluentdb/logging"
)

var (
	errDuplicate     = errors.New("metric already registered")
	errNotRegistered = errors.New("metric not registered")
	errOddLabels     = errors.New("labels must be key value pairs")
)

// Manager owns a prometheus registry and the histograms registered on it.
type Manager struct {
	registry   *prometheus.Registry
	logger     logging.Logger
	mu         sync.RWMutex
	histograms map[string]*prometheus.HistogramVec
}

func NewManager(logger logging.Logger) *Manager {
	return &Manager{
		registry:   prometheus.NewRegistry(),
		logger:     logger,
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// NewHistogram registers a histogram with the given label names. Without buckets the
// prometheus defaults are used.
func (m *Manager) NewHistogram(name, desc string, labels []string, buckets ...float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.histograms[name]; ok {
		return fmt.Errorf("%w: %s", errDuplicate, name)
	}

	opts := prometheus.HistogramOpts{Name: name, Help: desc}
	if len(buckets) > 0 {
		opts.Buckets = buckets
	}

	h := prometheus.NewHistogramVec(opts, labels)
	if err := m.registry.Register(h); err != nil {
		return err
	}

	m.histograms[name] = h

	return nil
}

// RecordHistogram observes value on the histogram name. labels alternate label names and
// values. Failures are logged, never returned.
func (m *Manager) RecordHistogram(_ context.Context, name string, value float64, labels ...string) {
	m.mu.RLock()
	h, ok := m.histograms[name]
	m.mu.RUnlock()

	if !ok {
		m.logError("%v: %s", errNotRegistered, name)
		return
	}

	l, err := pairs(labels)
	if err != nil {
		m.logError("histogram %s: %v", name, err)
		return
	}

	o, err := h.GetMetricWith(l)
	if err != nil {
		m.logError("histogram %s: %v", name, err)
		return
	}

	o.Observe(value)
}

func pairs(labels []string) (prometheus.Labels, error) {
	if len(labels)%2 != 0 {
		return nil, fmt.Errorf("%w: %v", errOddLabels, labels)
	}

	l := make(prometheus.Labels, len(labels)/2)
	for i := 0; i < len(labels); i += 2 {
		l[labels[i]] = labels[i+1]
	}

	return l, nil
}

func (m *Manager) logError(format string, args ...any) {
	if m.logger != nil {
		m.logger.Errorf(format, args...)
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteText writes every gathered metric family to w in the text exposition format.
func (m *Manager) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}

	return nil
}
