// Package metrics provides metrics recording for conversation turn processing.
package metrics

import "time"

// Recorder defines the interface for recording context engine metrics.
type Recorder interface {
	// ObserveTurn records a processed conversation turn.
	ObserveTurn(mode string, duration time.Duration)

	// ObserveContextWindow records the assembled window size and whether
	// history compression ran for this turn.
	ObserveContextWindow(messageTokens, summaryTokens int, compressed bool)

	// ObserveAllocation records module budget usage for a turn.
	ObserveAllocation(usedTokens, availableTokens, includedModules int)

	// IncDegraded increments the degraded-dependency counter.
	IncDegraded(dependency string)
}

// NoopRecorder implements Recorder with no-op behavior for when metrics are disabled.
type NoopRecorder struct{}

// Nop returns a no-op metrics recorder that discards all metrics.
func Nop() Recorder {
	return &NoopRecorder{}
}

// ObserveTurn does nothing in the no-op recorder.
func (n *NoopRecorder) ObserveTurn(_ string, _ time.Duration) {}

// ObserveContextWindow does nothing in the no-op recorder.
func (n *NoopRecorder) ObserveContextWindow(_, _ int, _ bool) {}

// ObserveAllocation does nothing in the no-op recorder.
func (n *NoopRecorder) ObserveAllocation(_, _, _ int) {}

// IncDegraded does nothing in the no-op recorder.
func (n *NoopRecorder) IncDegraded(_ string) {}
