package sessions

import (
	clienterrors "github.com/jrsteele09/community-client/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "community_session"

// Result label values.
const (
	resultSuccess   = "success"
	resultFailure   = "failure"
	resultNoToken   = "no_refresh_token"
	resultDiscarded = "discarded"
)

type metrics struct {
	refreshes       *prometheus.CounterVec // result
	preloads        *prometheus.CounterVec // collection, result
	persistFailures *prometheus.CounterVec // key
}

// newMetrics builds the session counters and registers them with reg when it
// is non-nil. Registering twice against the same registry reuses the existing
// collectors, so several managers can share one registry.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "refresh_total",
			Help:      "Session refresh attempts by result.",
		}, []string{"result"}),
		preloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "preload_total",
			Help:      "Dependent collection fetches by collection and result.",
		}, []string{"collection", "result"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "persist_failures_total",
			Help:      "Storage writes and deletes that failed, by key.",
		}, []string{"key"}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.refreshes, err = registerCounterVec(reg, m.refreshes); err != nil {
		return nil, err
	}
	if m.preloads, err = registerCounterVec(reg, m.preloads); err != nil {
		return nil, err
	}
	if m.persistFailures, err = registerCounterVec(reg, m.persistFailures); err != nil {
		return nil, err
	}
	return m, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if clienterrors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, clienterrors.Wrapf(err, "registering session metrics")
	}
	return c, nil
}
