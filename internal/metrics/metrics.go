package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID indexes one counter or histogram slot.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts failed credential checks.
	MetricLoginFailure
	// MetricLoginBlocked counts logins rejected at the block-list gate.
	MetricLoginBlocked
	// MetricLoginSuspicious counts anomaly-flagged logins.
	MetricLoginSuspicious
	// MetricRegistrationSuccess counts created accounts.
	MetricRegistrationSuccess
	// MetricRegistrationDuplicate counts registrations losing the uniqueness race.
	MetricRegistrationDuplicate
	// MetricAddressBlocked counts addresses added to the block list.
	MetricAddressBlocked
	// MetricRefreshSuccess counts successful token rotations.
	MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refresh attempts.
	MetricRefreshFailure
	// MetricRefreshReuseDetected counts rotations lost to a concurrent winner.
	MetricRefreshReuseDetected
	// MetricSessionCreated counts sessions created by login and registration.
	MetricSessionCreated
	// MetricSessionInvalidated counts sessions flipped inactive.
	MetricSessionInvalidated
	// MetricSessionExpired counts sessions reaped by lazy expiry.
	MetricSessionExpired
	// MetricLogout counts logout calls.
	MetricLogout
	// MetricVerificationRequest counts issued verification codes.
	MetricVerificationRequest
	// MetricVerificationSuccess counts verified accounts.
	MetricVerificationSuccess
	// MetricVerificationFailure counts rejected verification attempts.
	MetricVerificationFailure
	// MetricResetRequest counts issued reset tokens.
	MetricResetRequest
	// MetricResetSuccess counts completed password resets.
	MetricResetSuccess
	// MetricResetFailure counts rejected reset confirmations.
	MetricResetFailure
	// MetricWalletCredit counts wallet credits.
	MetricWalletCredit
	// MetricWalletDebit counts wallet debits.
	MetricWalletDebit
	// MetricWalletRejected counts debits rejected by the non-negative invariant.
	MetricWalletRejected
	// MetricNotifyFailure counts non-fatal notifier delivery failures.
	MetricNotifyFailure
	// MetricValidateLatency is the access-token validation latency histogram.
	MetricValidateLatency

	// MetricIDCount is one past the last valid MetricID.
	MetricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

// Config controls metric collection.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

type histogram struct {
	buckets [histBucketCount]uint64
}

// Metrics holds the counter and histogram slots. The zero value is disabled.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [MetricIDCount]paddedCounter
	histograms    [MetricIDCount]histogram
}

// Snapshot is a point-in-time deep copy of all metric values.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// New creates a Metrics instance. When cfg.Enabled is false every operation is a
// no-op.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatency,
	}
}

// Enabled reports whether collection is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether histogram observation is active.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc atomically increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a latency sample. Only the validate histogram is populated.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id != MetricValidateLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and populated histogram.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := Snapshot{
		Counters:   make(map[MetricID]uint64, int(MetricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricValidateLatency].buckets[i])
		}
		s.Histograms[MetricValidateLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
