// Package metrics defines and registers all custom Prometheus metrics for the
// standmarket API. It is the single source of truth for metric names, labels,
// and help strings. Collectors register with the default registry on import.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

const namespace = "standmarket"

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionResolutionsTotal counts session resolutions.
// Labels:
//   - source: "remote", "local_cache" or "none" for anonymous results
//   - role:   the resolved role
var SessionResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_resolutions_total",
		Help:      "Total number of session resolutions, by source and role.",
	},
	[]string{"source", "role"},
)

// RouteDecisionsTotal counts route guard decisions.
// Labels:
//   - access:  the access level of the matched rule
//   - outcome: "allowed" or "denied"
var RouteDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "route_decisions_total",
		Help:      "Total number of route authorization decisions.",
	},
	[]string{"access", "outcome"},
)

// LoginsTotal counts login attempts.
// Labels:
//   - method:  "password" or "bypass"
//   - outcome: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts.",
	},
	[]string{"method", "outcome"},
)

// AuthEventsPublishedTotal counts auth events published to the event bus.
var AuthEventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_published_total",
		Help:      "Total number of auth events published, by type.",
	},
	[]string{"type"},
)

// ── Marketplace metrics ──────────────────────────────────────────────────────

// ListingsCreatedTotal counts newly created listings, by fuel type.
var ListingsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_created_total",
		Help:      "Total number of listings created, by fuel type.",
	},
	[]string{"fuel"},
)

// LeadsTotal counts lead submissions.
// Label:
//   - result: "stored" or "duplicate"
var LeadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leads_total",
		Help:      "Total number of lead submissions, by result.",
	},
	[]string{"result"},
)

// ── Notification metrics ─────────────────────────────────────────────────────

// NotificationsTotal counts notification outcomes.
// Labels:
//   - kind:   notification kind
//   - result: "delivered", "failed" or "dropped"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notifications handled by the dispatcher.",
	},
	[]string{"kind", "result"},
)

// NotificationQueueDepth tracks notifications waiting for a worker.
var NotificationQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in the dispatcher.",
	},
)

// DispatchObserver feeds NotificationsTotal from the dispatcher.
type DispatchObserver struct{}

func (DispatchObserver) Delivered(kind domain.NotificationKind, err error) {
	result := "delivered"
	if err != nil {
		result = "failed"
	}
	NotificationsTotal.WithLabelValues(string(kind), result).Inc()
}

func (DispatchObserver) Dropped(kind domain.NotificationKind) {
	NotificationsTotal.WithLabelValues(string(kind), "dropped").Inc()
}

// SampleQueueDepth copies pending() into NotificationQueueDepth every
// interval until ctx is done.
func SampleQueueDepth(ctx context.Context, pending func() int, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		NotificationQueueDepth.Set(float64(pending()))
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// ObserveResolution records a resolved session state.
func ObserveResolution(state domain.SessionState) {
	source := "none"
	if state.Session != nil {
		source = string(state.Session.Source)
	}
	SessionResolutionsTotal.WithLabelValues(source, state.EffectiveRole().String()).Inc()
}

// InstrumentedBus counts published auth events.
type InstrumentedBus struct {
	ports.AuthEventBus
}

func (b InstrumentedBus) Publish(ctx context.Context, ev domain.AuthEvent) error {
	if err := b.AuthEventBus.Publish(ctx, ev); err != nil {
		return err
	}
	AuthEventsPublishedTotal.WithLabelValues(string(ev.Type)).Inc()
	return nil
}
