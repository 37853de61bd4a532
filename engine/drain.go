package engine

import (
	stderrors "errors"

	"go.uber.org/zap"

	contentengine "github.com/wippyai/content-engine"
	"github.com/wippyai/content-engine/errors"
	"github.com/wippyai/content-engine/resource"
)

// drainLocked runs one drain cycle. Caller holds e.mu.
func (e *Engine) drainLocked() {
	gen := e.generation.Load()
	dirty := false

	// Phase 1: loads queued before this tick began.
	for _, r := range e.loadQ.Drain() {
		e.pending.Delete(r.id)
		if r.gen != gen {
			continue
		}

		first, err := e.reg.Objects.Acquire(e.ctx, r.id)
		if err != nil {
			// InvalidLocation: the request fails and no entry exists.
			e.log.Warn("object load request failed",
				zap.Uint64("object", uint64(r.id)), zap.Error(err))
			continue
		}
		if first {
			e.statuses[r.id] = StatusEntry{Status: contentengine.StatusLoading, Generation: gen}
			e.inProgress[r.id] = struct{}{}
			e.tel.ObjectStatusChanged(r.id, contentengine.StatusNone, contentengine.StatusLoading)
			dirty = true
		}
	}

	// Phase 2: releases, strictly after this tick's loads so a
	// load-then-release pair for the same id nets out by refcount.
	for _, r := range e.releaseQ.Drain() {
		if r.gen != gen {
			continue
		}

		removed, err := e.reg.Objects.Release(r.id)
		if err != nil {
			var cerr *errors.Error
			if stderrors.As(err, &cerr) && cerr.Kind == errors.KindNotFound {
				e.log.Warn("release of object with no entry",
					zap.Uint64("object", uint64(r.id)))
			} else {
				e.log.Error("object release failed",
					zap.Uint64("object", uint64(r.id)), zap.Error(err))
			}
		}
		if removed {
			if entry, ok := e.statuses[r.id]; ok {
				if entry.Handle != 0 {
					e.handles.Remove(entry.Handle)
				}
				delete(e.statuses, r.id)
				e.tel.ObjectStatusChanged(r.id, entry.Status, contentengine.StatusNone)
				dirty = true
			}
			delete(e.inProgress, r.id)
		}
	}

	// Phase 3: re-poll only the in-progress set, not the whole
	// registry, so per-cycle cost tracks the active working set.
	for id := range e.inProgress {
		v, st := e.reg.Objects.Resolve(id)
		switch st {
		case contentengine.StatusLoading:
			continue
		case contentengine.StatusCompleted:
			h := e.handles.Insert(resource.TypeObject, v)
			e.statuses[id] = StatusEntry{Status: contentengine.StatusCompleted, Handle: h, Generation: gen}
			e.tel.ObjectStatusChanged(id, contentengine.StatusLoading, contentengine.StatusCompleted)
		case contentengine.StatusError:
			e.statuses[id] = StatusEntry{Status: contentengine.StatusError, Generation: gen}
			e.tel.ObjectStatusChanged(id, contentengine.StatusLoading, contentengine.StatusError)
		case contentengine.StatusNone:
			// Released mid-flight; the result is discarded.
		}
		delete(e.inProgress, id)
		dirty = true
	}

	// Phase 4: scene unloads deferred from earlier releases.
	if err := e.reg.Scenes.FlushDeferred(); err != nil {
		e.log.Error("deferred scene unload failed", zap.Error(err))
	}

	if dirty {
		e.publishLocked()
	}
}

// publishLocked republishes the status cache snapshot. Caller holds e.mu.
func (e *Engine) publishLocked() {
	snap := make(map[contentengine.ObjectID]StatusEntry, len(e.statuses))
	for id, entry := range e.statuses {
		snap[id] = entry
	}
	e.snapshot.Store(&snap)
}
