// Package metrics provides Prometheus metrics for zipexplorer.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Parse outcomes.
const (
	OutcomeOpened          = "opened"
	OutcomeEncrypted       = "encrypted"
	OutcomeInvalidPassword = "invalid_password"
	OutcomeFailed          = "failed"
	OutcomeSuperseded      = "superseded"
)

var (
	parsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zipexplorer_parse_total",
			Help: "Archive parse calls by outcome",
		},
		[]string{"outcome"},
	)

	passwordAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zipexplorer_password_attempts_total",
			Help: "Passwords submitted to the host",
		},
	)

	recentPersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zipexplorer_recent_persist_failures_total",
			Help: "Failed writes of the recent archives list",
		},
	)

	parseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "zipexplorer_parse_duration_seconds",
			Help:    "Duration of archive parse calls",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordParse counts a completed parse call.
func RecordParse(outcome string, duration time.Duration) {
	parsesTotal.WithLabelValues(outcome).Inc()
	if duration > 0 {
		parseDuration.Observe(duration.Seconds())
	}
}

// RecordPasswordAttempt counts a password sent to the host.
func RecordPasswordAttempt() {
	passwordAttemptsTotal.Inc()
}

// RecordPersistFailure counts a swallowed storage write failure.
func RecordPersistFailure() {
	recentPersistFailures.Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
