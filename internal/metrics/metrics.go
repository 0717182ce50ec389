// Package metrics holds the Prometheus collectors for harvest runs and the
// read API.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "harvester"

// Harvest collects per-run metrics. Each instance owns its registry.
type Harvest struct {
	registry       *prometheus.Registry
	records        *prometheus.GaugeVec
	sourceFailures *prometheus.CounterVec
	unresolved     *prometheus.GaugeVec
	eventOutcomes  *prometheus.CounterVec
	fetchAttempts  *prometheus.CounterVec
	sourceDuration *prometheus.GaugeVec
	lastSuccess    prometheus.Gauge
}

// NewHarvest creates and registers the harvest collectors.
func NewHarvest() *Harvest {
	h := &Harvest{registry: prometheus.NewRegistry()}

	h.records = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "records",
		Help:      "Records in the written snapshot by source",
	}, []string{"source"})
	h.sourceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_failures_total",
		Help:      "Source adapter failures",
	}, []string{"source"})
	h.unresolved = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "unresolved_committees",
		Help:      "Records of the last fetch whose committee could not be resolved",
	}, []string{"source"})
	h.eventOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_outcomes_total",
		Help:      "Crawled events by resolution outcome",
	}, []string{"outcome"})
	h.fetchAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_attempts_total",
		Help:      "HTTP fetch attempts by result",
	}, []string{"result"})
	h.sourceDuration = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_duration_seconds",
		Help:      "Wall time of the last fetch by source",
	}, []string{"source"})
	h.lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful snapshot write",
	})

	h.registry.MustRegister(
		h.records, h.sourceFailures, h.unresolved,
		h.eventOutcomes, h.fetchAttempts, h.sourceDuration, h.lastSuccess,
	)

	return h
}

// Registry returns the registry backing these collectors.
func (h *Harvest) Registry() *prometheus.Registry {
	return h.registry
}

// ObserveSource records the result of one adapter fetch.
func (h *Harvest) ObserveSource(source string, unresolved int, d time.Duration, err error) {
	h.sourceDuration.WithLabelValues(source).Set(d.Seconds())

	if err != nil {
		h.sourceFailures.WithLabelValues(source).Inc()

		return
	}

	h.unresolved.WithLabelValues(source).Set(float64(unresolved))
}

// ObserveRecords sets the snapshot record count per source.
func (h *Harvest) ObserveRecords(counts map[string]int) {
	for source, n := range counts {
		h.records.WithLabelValues(source).Set(float64(n))
	}
}

// ObserveOutcomes adds crawled event outcome counts.
func (h *Harvest) ObserveOutcomes(counts map[string]int) {
	for outcome, n := range counts {
		h.eventOutcomes.WithLabelValues(outcome).Add(float64(n))
	}
}

// ObserveAttempts adds fetch attempt counts.
func (h *Harvest) ObserveAttempts(success, failed int) {
	h.fetchAttempts.WithLabelValues("success").Add(float64(success))
	h.fetchAttempts.WithLabelValues("failure").Add(float64(failed))
}

// MarkSuccess records a successful snapshot write.
func (h *Harvest) MarkSuccess(t time.Time) {
	h.lastSuccess.Set(float64(t.Unix()))
}

// WriteTextfile writes all metrics in the node_exporter textfile format.
func (h *Harvest) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}

	if err := prometheus.WriteToTextfile(path, h.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	return nil
}

// API collects read API metrics.
type API struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	reloads  *prometheus.CounterVec
	records  prometheus.Gauge
}

// NewAPI creates and registers the read API collectors.
func NewAPI() *API {
	a := &API{registry: prometheus.NewRegistry()}

	a.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "API requests by route and status code",
	}, []string{"route", "code"})
	a.reloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "snapshot_reloads_total",
		Help:      "Snapshot reloads by result",
	}, []string{"result"})
	a.records = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "snapshot_records",
		Help:      "Records in the served snapshot",
	})

	a.registry.MustRegister(a.requests, a.reloads, a.records)

	return a
}

// Registry returns the registry backing these collectors.
func (a *API) Registry() *prometheus.Registry {
	return a.registry
}

// ObserveRequest counts one served request.
func (a *API) ObserveRequest(route string, code int) {
	a.requests.WithLabelValues(route, fmt.Sprint(code)).Inc()
}

// ObserveReload records a snapshot reload.
func (a *API) ObserveReload(records int, err error) {
	if err != nil {
		a.reloads.WithLabelValues("error").Inc()

		return
	}

	a.reloads.WithLabelValues("ok").Inc()
	a.records.Set(float64(records))
}
