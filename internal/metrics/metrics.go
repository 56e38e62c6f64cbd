// Package metrics defines what the ledger reports about itself. Exporters live
// in subpackages.
package metrics

import "time"

// Load outcomes.
const (
	LoadOK      = "ok"
	LoadMissing = "missing"
	LoadCorrupt = "corrupt"
	LoadError   = "error"
)

// Collector receives measurements from the store and report layers.
type Collector interface {
	// Store mutations, by operation name.
	RecordMutation(op string, success bool)

	// Persistence, per collection key.
	RecordLoad(key, outcome string)
	RecordPersist(key string, success bool, duration time.Duration)
	RecordCircuitState(state CircuitState)

	// Dashboard cache.
	RecordReportCache(hit bool)
}

// CircuitState mirrors the persistence breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// NoOpCollector discards everything. It is the default.
type NoOpCollector struct{}

func (NoOpCollector) RecordMutation(op string, success bool) {}
func (NoOpCollector) RecordLoad(key, outcome string) {}
func (NoOpCollector) RecordPersist(key string, success bool, duration time.Duration) {}
func (NoOpCollector) RecordCircuitState(state CircuitState) {}
func (NoOpCollector) RecordReportCache(hit bool) {}
