// Package metrics exposes Prometheus counters for scoring and alerting.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HendryAvila/planbarometro/internal/alerts"
	"github.com/HendryAvila/planbarometro/internal/scoring"
)

const namespace = "planbarometro"

// Recorder owns a private registry. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	scored        *prometheus.CounterVec
	alerts        *prometheus.CounterVec
	overall       *prometheus.HistogramVec
	notifications *prometheus.CounterVec
}

// New creates a Recorder with Go runtime and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		scored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_scored_total",
			Help:      "Number of times an evaluation was scored.",
		}, []string{"model"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_generated_total",
			Help:      "Number of strategic alerts produced, by rule and severity.",
		}, []string{"rule", "severity"}),
		overall: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overall_score",
			Help:      "Overall capability percentage of scored evaluations.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}, []string{"model"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Alert notifications sent, by result.",
		}, []string{"result"}),
	}
	r.registry.MustRegister(
		r.scored, r.alerts, r.overall, r.notifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveScores records one scoring pass.
func (r *Recorder) ObserveScores(modelID string, s scoring.Scores) {
	if r == nil {
		return
	}
	r.scored.WithLabelValues(modelID).Inc()
	r.overall.WithLabelValues(modelID).Observe(float64(s.Overall))
}

// RecordAlerts counts each alert under its rule id and severity.
func (r *Recorder) RecordAlerts(list []alerts.Alert) {
	if r == nil {
		return
	}
	for _, a := range list {
		r.alerts.WithLabelValues(a.ID, string(a.Severity)).Inc()
	}
}

// RecordNotification counts a notification attempt.
func (r *Recorder) RecordNotification(err error) {
	if r == nil {
		return
	}
	result := "sent"
	if err != nil {
		result = "failed"
	}
	r.notifications.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (r *Recorder) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics endpoint listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
