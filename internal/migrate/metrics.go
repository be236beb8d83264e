package migrate

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/systmms/vaultmig/internal/logging"
)

var (
	secretsPlannedTotal  prometheus.Counter
	secretsMigratedTotal prometheus.Counter
	secretsFailedTotal   prometheus.Counter

	// Registration guard
	metricsOnce       sync.Once
	metricsRegistered bool
)

// Metrics records migration progress counters. The zero-value pointer
// is usable: a nil *Metrics makes every Record call a no-op, so the
// engine works unchanged when metrics are disabled.
type Metrics struct{}

// InitMetrics registers the Prometheus counters and returns a recorder.
// Call once at startup when metrics are enabled.
func InitMetrics() *Metrics {
	metricsOnce.Do(func() {
		secretsPlannedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaultmig_secrets_planned_total",
			Help: "Total number of secrets added to migration plans",
		})
		secretsMigratedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaultmig_secrets_migrated_total",
			Help: "Total number of secrets written to their destination and destroyed at the source",
		})
		secretsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaultmig_secrets_failed_total",
			Help: "Total number of secrets whose migration failed",
		})
		metricsRegistered = true
	})
	return &Metrics{}
}

// RecordPlanned adds n planned secrets.
func (m *Metrics) RecordPlanned(n int) {
	if m == nil || !metricsRegistered {
		return
	}
	secretsPlannedTotal.Add(float64(n))
}

// RecordMigrated counts one completed migration.
func (m *Metrics) RecordMigrated() {
	if m == nil || !metricsRegistered {
		return
	}
	secretsMigratedTotal.Inc()
}

// RecordFailed counts one failed migration.
func (m *Metrics) RecordFailed() {
	if m == nil || !metricsRegistered {
		return
	}
	secretsFailedTotal.Inc()
}

// StartMetricsServer exposes /metrics on addr for the duration of a
// migration run. The returned shutdown func stops the listener.
func StartMetricsServer(addr string, logger *logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics server on %s stopped: %v", addr, err)
		}
	}()
	logger.Debug("serving metrics on %s", addr)

	return func() { _ = srv.Close() }
}
