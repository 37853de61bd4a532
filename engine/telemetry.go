package engine

import (
	contentengine "github.com/wippyai/content-engine"
)

// Telemetry receives engine state transitions. Implementations must be
// fast and non-blocking; they run inside the drain cycle.
type Telemetry interface {
	// ObjectStatusChanged fires when an object's published status moves,
	// including None->Loading on first request and X->None on release.
	ObjectStatusChanged(id contentengine.ObjectID, from, to contentengine.LoadStatus)

	// LeakedOnCleanup fires once per Cleanup that found entries still
	// referenced at teardown.
	LeakedOnCleanup(count int)
}

// NopTelemetry discards all events. It is the default.
type NopTelemetry struct{}

func (NopTelemetry) ObjectStatusChanged(contentengine.ObjectID, contentengine.LoadStatus, contentengine.LoadStatus) {
}
func (NopTelemetry) LeakedOnCleanup(int) {}
