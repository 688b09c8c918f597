// Package metrics exposes Prometheus instrumentation for facade sessions.
// Counters are fed by the lifecycle hooks returned from Hooks.
package metrics

import (
	"context"
	"net/http"

	"github.com/aretw0/facet/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SessionEvents counts lifecycle transitions, labeled by event type:
	// "open", "close", "destroy" or "misuse".
	SessionEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "facet_session_events_total",
		Help: "Total number of session lifecycle events",
	}, []string{"event"})

	// MisuseByOperation counts programmer errors by the operation that was misused.
	MisuseByOperation = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "facet_session_misuse_total",
		Help: "Total number of session operations attempted in the wrong state",
	}, []string{"operation"})

	// BackendFailures counts close and destroy transitions whose write-back
	// or delete failed. The session is closed either way.
	BackendFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "facet_session_backend_failures_total",
		Help: "Total number of session close or destroy operations that failed in the backend",
	}, []string{"event"})

	// OpenSessions tracks sessions currently held open by a request.
	OpenSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "facet_sessions_open",
		Help: "Current number of open sessions",
	})
)

func init() {
	prometheus.MustRegister(
		SessionEvents,
		MisuseByOperation,
		BackendFailures,
		OpenSessions,
	)
}

// Hooks returns lifecycle hooks that record session events.
func Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnOpen: func(_ context.Context, e *domain.SessionEvent) {
			SessionEvents.WithLabelValues(string(e.Type)).Inc()
			OpenSessions.Inc()
		},
		OnClose:   closed,
		OnDestroy: closed,
		OnMisuse: func(_ context.Context, e *domain.SessionEvent) {
			SessionEvents.WithLabelValues(string(e.Type)).Inc()
			MisuseByOperation.WithLabelValues(e.Operation).Inc()
		},
	}
}

// closed records the end of an open session, failed or not, so the gauge
// always returns to its level before OnOpen.
func closed(_ context.Context, e *domain.SessionEvent) {
	SessionEvents.WithLabelValues(string(e.Type)).Inc()
	if e.Err != nil {
		BackendFailures.WithLabelValues(string(e.Type)).Inc()
	}
	OpenSessions.Dec()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
