package observability

import (
	"sync"
	"sync/atomic"
)

// Metrics counts chat pipeline events. All counters are monotonic since
// process start; Snapshot exposes them for the metrics endpoint.
type Metrics struct {
	requestTotal        atomic.Int64
	escalationOffered   atomic.Int64
	escalationConfirmed atomic.Int64
	providerFailure     atomic.Int64
	providerExhausted   atomic.Int64
	dispatchFailure     atomic.Int64

	mu               sync.Mutex
	providerFailures map[string]int64
}

// NewMetrics creates a metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		providerFailures: make(map[string]int64),
	}
}

// RecordRequest counts one inbound chat turn.
func (m *Metrics) RecordRequest() {
	m.requestTotal.Add(1)
}

// RecordEscalationOffered counts one handoff offer shown to a user.
func (m *Metrics) RecordEscalationOffered() {
	m.escalationOffered.Add(1)
}

// RecordEscalationConfirmed counts one completed handoff.
func (m *Metrics) RecordEscalationConfirmed() {
	m.escalationConfirmed.Add(1)
}

// RecordProviderFailure counts one failed provider attempt.
func (m *Metrics) RecordProviderFailure(provider string) {
	m.providerFailure.Add(1)
	m.mu.Lock()
	m.providerFailures[provider]++
	m.mu.Unlock()
}

// RecordProviderExhausted counts one turn where every provider failed.
func (m *Metrics) RecordProviderExhausted() {
	m.providerExhausted.Add(1)
}

// RecordDispatchFailure counts one failed operator notification.
func (m *Metrics) RecordDispatchFailure() {
	m.dispatchFailure.Add(1)
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() map[string]any {
	m.mu.Lock()
	perProvider := make(map[string]int64, len(m.providerFailures))
	for name, n := range m.providerFailures {
		perProvider[name] = n
	}
	m.mu.Unlock()

	return map[string]any{
		"request_total":        m.requestTotal.Load(),
		"escalation_offered":   m.escalationOffered.Load(),
		"escalation_confirmed": m.escalationConfirmed.Load(),
		"provider_failure":     m.providerFailure.Load(),
		"provider_exhausted":   m.providerExhausted.Load(),
		"dispatch_failure":     m.dispatchFailure.Load(),
		"provider_failures":    perProvider,
	}
}
