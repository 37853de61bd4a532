// Package engine provides the high-level content engine: the request
// queues, the lock-free status cache, and the per-tick drain cycle that
// drives the registries.
//
// # Scheduling Model
//
// The engine is cooperative. Arbitrary goroutines act as producers,
// enqueueing load and release requests with LoadObjectAsync and
// ReleaseObjectAsync, and as lock-free readers of the status cache
// through GetObjectStatus and ObjectValue. One designated goroutine
// calls ProcessQueuedCommands once per tick; only that call mutates the
// registries.
//
// Within one tick, all load requests queued before the tick began are
// fully processed before that tick's release requests, so a
// load-then-immediate-release pair can never reorder into a
// double-remove. Across ticks no ordering is guaranteed between
// producers; refcount idempotence makes the final state correct.
//
// # Status Cache
//
// The cache is an immutable snapshot republished atomically at the end
// of each drain cycle. Readers never take a lock; a reader observing a
// stale Loading status for one extra cycle is the accepted trade-off.
//
// # Blocking
//
// No operation blocks except WaitForObjectCompletion, an explicit
// caller-opted-in blocking point with a timeout. It can stall the
// calling goroutine and should be used sparingly.
//
// # Lifecycle
//
// Initialize creates the registries and bumps the generation counter;
// requests tagged with a stale generation are dropped by the drain.
// Cleanup force-releases anything still referenced, reports the leak
// count, and leaves the engine ready for a fresh Initialize.
package engine
