// Package metrics exposes Prometheus collectors for tree synchronization and
// subsystem lifecycle.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/klauern/pdparty/internal/logging"
	"github.com/klauern/pdparty/internal/registry"
	"github.com/klauern/pdparty/internal/treesync"
)

const namespace = "pdparty"

var allStates = []registry.State{
	registry.StateUninitialized,
	registry.StateActive,
	registry.StateSuspended,
	registry.StateTornDown,
	registry.StateFailed,
}

// Metrics holds all Prometheus metrics. It implements treesync.Observer and
// registry.StateObserver.
type Metrics struct {
	// Sync metrics
	SyncRuns     *prometheus.CounterVec
	SyncEntries  *prometheus.CounterVec
	SyncBytes    *prometheus.CounterVec
	SyncDuration *prometheus.HistogramVec

	// Subsystem metrics
	SubsystemState       *prometheus.GaugeVec
	SubsystemTransitions *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the collectors on a private registry that also carries the
// Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SyncRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Total number of synchronize calls by outcome",
			},
			[]string{"tree", "result"},
		),
		SyncEntries: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_entries_total",
				Help:      "Total number of synchronized entries by action",
			},
			[]string{"tree", "action"},
		),
		SyncBytes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_bytes_written_total",
				Help:      "Total bytes copied into user trees",
			},
			[]string{"tree"},
		),
		SyncDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sync_duration_seconds",
				Help:      "Synchronize call duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"tree"},
		),

		SubsystemState: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "subsystem_state",
				Help:      "Current lifecycle state of each subsystem (1 for the current state)",
			},
			[]string{"subsystem", "state"},
		),
		SubsystemTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subsystem_transitions_total",
				Help:      "Total number of subsystem state transitions",
			},
			[]string{"subsystem", "to"},
		),
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// SyncStarted is part of treesync.Observer.
func (m *Metrics) SyncStarted(string, int) {}

// EntryFinished is part of treesync.Observer. Entries are counted from the
// final report so dry runs can be excluded.
func (m *Metrics) EntryFinished(string, treesync.Item) {}

// SyncFinished records the outcome of a synchronize call. Dry runs are
// ignored.
func (m *Metrics) SyncFinished(r *treesync.Report) {
	if r.DryRun {
		return
	}

	result := "complete"
	switch {
	case r.Incomplete:
		result = "incomplete"
	case !r.Success():
		result = "partial"
	}
	m.SyncRuns.WithLabelValues(r.Tree, result).Inc()

	for _, item := range r.Items {
		m.SyncEntries.WithLabelValues(r.Tree, string(item.Action)).Inc()
	}
	m.SyncBytes.WithLabelValues(r.Tree).Add(float64(r.TotalBytes()))
	m.SyncDuration.WithLabelValues(r.Tree).Observe(r.Elapsed().Seconds())
}

// StateChanged is part of registry.StateObserver.
func (m *Metrics) StateChanged(v registry.Variant, _, to registry.State) {
	for _, s := range allStates {
		val := 0.0
		if s == to {
			val = 1
		}
		m.SubsystemState.WithLabelValues(string(v), s.String()).Set(val)
	}
	m.SubsystemTransitions.WithLabelValues(string(v), to.String()).Inc()
}

// Handler returns an HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("serving metrics", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
