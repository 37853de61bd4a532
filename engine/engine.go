package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	contentengine "github.com/wippyai/content-engine"
	"github.com/wippyai/content-engine/catalog"
	"github.com/wippyai/content-engine/errors"
	"github.com/wippyai/content-engine/registry"
	"github.com/wippyai/content-engine/resource"
)

// Options wires the collaborators an Engine consumes.
type Options struct {
	Catalog catalog.Catalog
	Mounter contentengine.Mounter
	Files   contentengine.FileLoader
	Scenes  contentengine.SceneLoader

	// External is the optional fallback for objects the catalog cannot
	// resolve.
	External registry.ExternalResolver

	// Logger overrides the package logger for this engine.
	Logger *zap.Logger

	// Telemetry receives state transitions. Defaults to NopTelemetry.
	Telemetry Telemetry

	// BaseContext parents the context handed to async loads. Defaults
	// to context.Background. Cleanup cancels the derived context, so
	// in-flight loads of a dead generation can abort.
	BaseContext context.Context
}

// StatusEntry is one published status cache record.
type StatusEntry struct {
	Status     contentengine.LoadStatus
	Handle     resource.Handle
	Generation uint32
}

// Engine is the content engine context object. One instance per host
// process; construct at startup and pass by reference to all callers.
//
// Producers call LoadObjectAsync/ReleaseObjectAsync and read statuses
// from any goroutine. ProcessQueuedCommands, LoadScene, ReleaseScene
// and Cleanup mutate the registries and belong on the designated tick
// goroutine; an internal mutex makes occasional cross-thread use safe
// rather than corrupting, but it is not the intended model.
type Engine struct {
	opts Options
	log  *zap.Logger
	tel  Telemetry

	// mu serializes registry mutation: the drain cycle, scene
	// operations and lifecycle transitions.
	mu          sync.Mutex
	initialized atomic.Bool
	generation  atomic.Uint32
	ctx         context.Context
	cancel      context.CancelFunc

	reg        *registry.Set
	handles    *resource.Table
	loadQ      *requestQueue
	releaseQ   *requestQueue
	inProgress map[contentengine.ObjectID]struct{}
	statuses   map[contentengine.ObjectID]StatusEntry

	// pending marks ids queued for load but not yet drained, so a
	// freshly requested id reads as Loading before the next tick.
	pending sync.Map

	// snapshot is the immutable status cache readers observe lock-free.
	snapshot atomic.Pointer[map[contentengine.ObjectID]StatusEntry]
}

// New creates an engine. Initialize must be called before use.
func New(opts Options) (*Engine, error) {
	if opts.Catalog == nil {
		return nil, errors.InvalidInput(errors.PhaseDrain, "Options.Catalog is required")
	}
	if opts.Mounter == nil {
		return nil, errors.InvalidInput(errors.PhaseDrain, "Options.Mounter is required")
	}
	if opts.Files == nil {
		return nil, errors.InvalidInput(errors.PhaseDrain, "Options.Files is required")
	}
	if opts.Scenes == nil {
		return nil, errors.InvalidInput(errors.PhaseDrain, "Options.Scenes is required")
	}

	log := opts.Logger
	if log == nil {
		log = Logger()
	}
	tel := opts.Telemetry
	if tel == nil {
		tel = NopTelemetry{}
	}

	e := &Engine{
		opts:     opts,
		log:      log,
		tel:      tel,
		handles:  resource.NewTable(),
		loadQ:    newRequestQueue(),
		releaseQ: newRequestQueue(),
	}
	empty := make(map[contentengine.ObjectID]StatusEntry)
	e.snapshot.Store(&empty)
	return e, nil
}

// Generation returns the current initialization generation.
func (e *Engine) Generation() uint32 {
	return e.generation.Load()
}

// Handles exposes the native-handle table for collaborators that resolve
// published handles themselves.
func (e *Engine) Handles() *resource.Table {
	return e.handles
}

// Initialize creates empty registries and bumps the generation counter.
// Calling Initialize while already initialized is a logic error: the
// engine warns and forces a Cleanup first.
func (e *Engine) Initialize() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized.Load() {
		e.log.Warn("initialize without prior cleanup, forcing cleanup",
			zap.Uint32("generation", e.generation.Load()))
		e.cleanupLocked()
	}

	gen := e.generation.Add(1)

	base := e.opts.BaseContext
	if base == nil {
		base = context.Background()
	}
	e.ctx, e.cancel = context.WithCancel(base)

	e.reg = registry.NewSet(registry.Config{
		Catalog:  e.opts.Catalog,
		Mounter:  e.opts.Mounter,
		Files:    e.opts.Files,
		Scenes:   e.opts.Scenes,
		External: e.opts.External,
	})
	e.inProgress = make(map[contentengine.ObjectID]struct{})
	e.statuses = make(map[contentengine.ObjectID]StatusEntry)
	e.publishLocked()
	e.initialized.Store(true)

	e.log.Info("content engine initialized", zap.Uint32("generation", gen))
}

// Cleanup tears the engine down and returns the number of objects and
// scenes that were still referenced ("leaked" entries). Leaked entries
// are force-released, not silently dropped.
func (e *Engine) Cleanup() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized.Load() {
		e.log.Warn("cleanup called while not initialized")
		return 0
	}
	return e.cleanupLocked()
}

func (e *Engine) cleanupLocked() int {
	// Settle queued work first so paired load/release requests cancel
	// out instead of counting as leaks.
	e.drainLocked()

	leaked := 0

	var objs []contentengine.ObjectID
	e.reg.Objects.Each(func(id contentengine.ObjectID, refCount int) bool {
		objs = append(objs, id)
		return true
	})
	leaked += len(objs)
	for _, id := range objs {
		for e.reg.Objects.RefCount(id) > 0 {
			removed, err := e.reg.Objects.Release(id)
			if err != nil {
				e.log.Error("forced object release failed",
					zap.Uint64("object", uint64(id)), zap.Error(err))
			}
			if removed {
				break
			}
		}
	}

	var scenes []contentengine.SceneID
	e.reg.Scenes.Each(func(id contentengine.SceneID, refCount int) bool {
		if refCount > 0 {
			scenes = append(scenes, id)
		}
		return true
	})
	leaked += len(scenes)
	for _, id := range scenes {
		for e.reg.Scenes.RefCount(id) > 0 {
			if err := e.reg.Scenes.Release(id); err != nil {
				e.log.Error("forced scene release failed",
					zap.Uint64("scene", uint64(id)), zap.Error(err))
				break
			}
		}
	}
	if err := e.reg.Scenes.FlushDeferred(); err != nil {
		e.log.Error("deferred scene unload failed during cleanup", zap.Error(err))
	}

	if leaked > 0 {
		e.log.Warn("entries leaked on cleanup",
			zap.Int("count", leaked),
			zap.Error(errors.Leaked("object/scene", leaked)))
		e.tel.LeakedOnCleanup(leaked)
	}

	// The cascade should have emptied everything below the roots.
	if n := e.reg.Files.Len(); n != 0 {
		e.log.Error("file registry not empty after cleanup", zap.Int("entries", n))
	}
	if n := e.reg.Archives.Len(); n != 0 {
		e.log.Error("archive registry not empty after cleanup", zap.Int("entries", n))
	}

	e.handles.Clear()
	e.loadQ.Drain()
	e.releaseQ.Drain()
	e.pending.Range(func(k, v any) bool {
		e.pending.Delete(k)
		return true
	})
	e.inProgress = nil
	e.statuses = nil
	empty := make(map[contentengine.ObjectID]StatusEntry)
	e.snapshot.Store(&empty)

	e.cancel()
	e.reg = nil
	e.initialized.Store(false)

	e.log.Info("content engine cleaned up", zap.Int("unreleased", leaked))
	return leaked
}

// LoadObjectAsync enqueues a load request for an object. Safe from any
// goroutine; never blocks on I/O. Requests for an already-loaded object
// only add a reference. Failures surface through GetObjectStatus after
// the next drain cycle.
func (e *Engine) LoadObjectAsync(id contentengine.ObjectID) {
	if !id.IsValid() {
		e.log.Warn("load request for invalid object id")
		return
	}
	if !e.initialized.Load() {
		e.log.Warn("load request before initialize", zap.Uint64("object", uint64(id)))
		return
	}
	e.pending.Store(id, struct{}{})
	e.loadQ.Push(request{id: id, gen: e.generation.Load()})
}

// ReleaseObjectAsync enqueues a release request for an object. Safe from
// any goroutine; never blocks on I/O. Releasing an id with no entry is a
// logged no-op, not fatal.
func (e *Engine) ReleaseObjectAsync(id contentengine.ObjectID) {
	if !id.IsValid() {
		e.log.Warn("release request for invalid object id")
		return
	}
	if !e.initialized.Load() {
		e.log.Warn("release request before initialize", zap.Uint64("object", uint64(id)))
		return
	}
	e.releaseQ.Push(request{id: id, gen: e.generation.Load()})
}

// GetObjectStatus reports the published status of an object. Lock-free;
// safe from any goroutine. Unknown ids read StatusNone; a freshly
// queued id reads StatusLoading until the next drain observes it.
func (e *Engine) GetObjectStatus(id contentengine.ObjectID) contentengine.LoadStatus {
	snap := e.snapshot.Load()
	if entry, ok := (*snap)[id]; ok {
		return entry.Status
	}
	if _, ok := e.pending.Load(id); ok {
		return contentengine.StatusLoading
	}
	return contentengine.StatusNone
}

// GetStatusEntry returns the full status cache record for an object.
func (e *Engine) GetStatusEntry(id contentengine.ObjectID) (StatusEntry, bool) {
	snap := e.snapshot.Load()
	entry, ok := (*snap)[id]
	return entry, ok
}

// ObjectValue resolves a completed object's value through the handle
// table. Returns false while the object is loading, failed, unknown, or
// of a different type. Lock-free on the snapshot; the handle table uses
// a read lock.
func ObjectValue[T any](e *Engine, id contentengine.ObjectID) (T, bool) {
	var zero T

	snap := e.snapshot.Load()
	entry, ok := (*snap)[id]
	if !ok || entry.Status != contentengine.StatusCompleted || entry.Handle == 0 {
		return zero, false
	}

	v, ok := e.handles.GetTyped(entry.Handle, resource.TypeObject)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// LoadScene loads a scene and returns its handle directly. The handle
// may be invalid until the underlying file and archive complete. Scene
// operations mutate the registries and belong on the drain goroutine.
func (e *Engine) LoadScene(id contentengine.SceneID, params contentengine.SceneParams) (contentengine.SceneHandle, error) {
	if !id.IsValid() {
		return nil, errors.InvalidInput(errors.PhaseLoad, "invalid scene id")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized.Load() {
		return nil, errors.NotInitialized("content engine")
	}
	return e.reg.Scenes.Acquire(e.ctx, id, params)
}

// ReleaseScene drops one scene reference. The actual unload is deferred
// to the end of the next drain cycle because consumers may be mid-use.
func (e *Engine) ReleaseScene(id contentengine.SceneID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized.Load() {
		return errors.NotInitialized("content engine")
	}

	err := e.reg.Scenes.Release(id)
	if err != nil {
		e.log.Warn("scene release without matching load",
			zap.Uint64("scene", uint64(id)), zap.Error(err))
	}
	return err
}

// ProcessQueuedCommands runs one drain cycle: queued loads, then queued
// releases, then a re-poll of in-progress loads, then deferred scene
// unloads, then the status cache republish. Call once per tick from the
// designated goroutine.
func (e *Engine) ProcessQueuedCommands() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized.Load() {
		return
	}
	e.drainLocked()
}
