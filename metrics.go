package authcore

import "sync/atomic"

// MetricID names one engine counter.
type MetricID uint16

const (
	// MetricRegisterSuccess counts completed registrations.
	MetricRegisterSuccess MetricID = iota
	// MetricLoginSuccess counts successful password logins.
	MetricLoginSuccess
	// MetricLoginFailure counts rejected password logins.
	MetricLoginFailure
	// MetricLoginRateLimited counts logins blocked by the attempt budget.
	MetricLoginRateLimited
	// MetricRefreshSuccess counts completed refresh rotations.
	MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refresh tokens.
	MetricRefreshFailure
	// MetricSessionCreated counts session rows inserted.
	MetricSessionCreated
	// MetricSessionExpired counts sessions removed on lazy expiry detection.
	MetricSessionExpired
	// MetricSessionAutoRefreshed counts transparent rotations by GetCurrentSession.
	MetricSessionAutoRefreshed
	// MetricLogout counts explicit logouts.
	MetricLogout
	// MetricResetRequested counts reset tickets issued.
	MetricResetRequested
	// MetricResetConfirmed counts completed password resets.
	MetricResetConfirmed
	// MetricResetRejected counts rejected reset consumptions.
	MetricResetRejected
	// MetricBiometricLoginSuccess counts successful biometric logins.
	MetricBiometricLoginSuccess
	// MetricBiometricLoginFailure counts rejected biometric logins.
	MetricBiometricLoginFailure
	// MetricSocialLoginSuccess counts successful federated logins.
	MetricSocialLoginSuccess
	// MetricSocialLoginFailure counts rejected federated logins.
	MetricSocialLoginFailure
	// MetricMailFailure counts fire-and-forget mail dispatches that errored.
	MetricMailFailure

	metricCount
)

// Metrics is a fixed set of atomic counters. All methods are safe for
// concurrent use.
type Metrics struct {
	counters [metricCount]atomic.Uint64
}

func newMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	return &Metrics{}
}

// Inc adds one to the counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricCount))}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
