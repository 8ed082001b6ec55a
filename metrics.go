package portalAuth

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one store counter.
type MetricID uint16

const (
	// MetricLoginSuccess counts logins that stored a token.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected or failed login calls.
	MetricLoginFailure
	// MetricRegisterSuccess counts registrations that stored a token.
	MetricRegisterSuccess
	// MetricRegisterFailure counts failed registration calls.
	MetricRegisterFailure
	// MetricRefreshSuccess counts bootstrap refreshes that stored a token.
	MetricRefreshSuccess
	// MetricRefreshFailure counts bootstrap refreshes that ended the session.
	MetricRefreshFailure
	// MetricSilentRefreshSuccess counts background refreshes that stored a token.
	MetricSilentRefreshSuccess
	// MetricSilentRefreshFailure counts background refreshes that ended the session.
	MetricSilentRefreshFailure
	// MetricProfileSuccess counts profile fetches that stored a user.
	MetricProfileSuccess
	// MetricProfileFailure counts failed profile fetches.
	MetricProfileFailure
	// MetricProfilePending counts compound operations that stopped at PhaseTokenAcquired.
	MetricProfilePending
	// MetricLogoutSuccess counts logouts that cleared the session.
	MetricLogoutSuccess
	// MetricLogoutFailure counts failed logout calls.
	MetricLogoutFailure
	// MetricStaleResponse counts responses discarded because a newer call applied first.
	MetricStaleResponse
	// MetricSessionCleared counts transitions to an empty session.
	MetricSessionCleared
	// MetricPersistFailure counts snapshot writes that failed.
	MetricPersistFailure
	// MetricRestoreSuccess counts snapshots applied by Restore.
	MetricRestoreSuccess
	// MetricRestoreFailure counts snapshot reads that failed.
	MetricRestoreFailure
	// MetricOperationLatency is the only histogram; it observes every network-backed operation.
	MetricOperationLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a lock-free counter set. A nil *Metrics is valid and records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics builds a counter set from cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters record.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the latency histogram records.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to counter id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in histogram id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id != MetricOperationLatency {
		return
	}
	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns counter id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters and, when enabled, the latency histogram.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricOperationLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricOperationLatency].buckets[i])
		}
		s.Histograms[MetricOperationLatency] = buckets
	}

	return s
}

// Bucket upper bounds: 10ms, 25ms, 50ms, 100ms, 250ms, 500ms, 1s, +Inf.
func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 10:
		return 0
	case ms <= 25:
		return 1
	case ms <= 50:
		return 2
	case ms <= 100:
		return 3
	case ms <= 250:
		return 4
	case ms <= 500:
		return 5
	case ms <= 1000:
		return 6
	default:
		return 7
	}
}
