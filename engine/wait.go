package engine

import (
	"time"

	contentengine "github.com/wippyai/content-engine"
)

// WaitForObjectCompletion blocks until the object's load settles, up to
// timeout (0 blocks indefinitely). The queues are drained first so a
// just-issued request is not missed. Returns false on timeout, on an
// unknown id, or when the load failed.
//
// This is the engine's only blocking operation. It can stall the calling
// goroutine for the full timeout and should be used sparingly.
func (e *Engine) WaitForObjectCompletion(id contentengine.ObjectID, timeout time.Duration) bool {
	e.mu.Lock()
	if !e.initialized.Load() {
		e.mu.Unlock()
		return false
	}
	e.drainLocked()

	owner, ok := e.reg.Objects.Owner(id)
	if !ok {
		// No pending load and no registry entry: return without blocking.
		e.mu.Unlock()
		return false
	}
	if !owner.IsValid() {
		// Externally resolved objects complete at acquire time.
		e.mu.Unlock()
		return true
	}

	fh, ok := e.reg.Files.Handle(owner)
	if !ok {
		e.mu.Unlock()
		return false
	}
	done := fh.Done()
	e.mu.Unlock()

	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
			return false
		}
	} else {
		<-done
	}

	if fh.Err() != nil {
		return false
	}

	// Republish promptly so the completion is observable without
	// waiting for the next scheduled tick.
	e.mu.Lock()
	if e.initialized.Load() {
		e.drainLocked()
	}
	e.mu.Unlock()

	return e.GetObjectStatus(id) == contentengine.StatusCompleted
}
