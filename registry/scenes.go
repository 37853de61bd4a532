package registry

import (
	"context"

	"go.uber.org/zap"

	contentengine "github.com/wippyai/content-engine"
	"github.com/wippyai/content-engine/catalog"
	"github.com/wippyai/content-engine/errors"
)

// Scenes is the reference-counted table of loaded scenes. A scene pins
// its archive and dependency set directly and hands its handle straight
// to the caller; unload is deferred to end-of-cycle because consumers
// may be mid-use and are not safe to interrupt synchronously.
type Scenes struct {
	catalog  catalog.Catalog
	archives *Archives
	depsets  *DependencySets
	loader   contentengine.SceneLoader
	entries  map[contentengine.SceneID]*activeScene
	deferred []contentengine.SceneID
}

type activeScene struct {
	handle        contentengine.SceneHandle
	file          contentengine.FileID
	archive       contentengine.ArchiveID
	group         int
	refCount      int
	pendingUnload bool
}

func newScenes(cat catalog.Catalog, archives *Archives, depsets *DependencySets, loader contentengine.SceneLoader) *Scenes {
	return &Scenes{
		catalog:  cat,
		archives: archives,
		depsets:  depsets,
		loader:   loader,
		entries:  make(map[contentengine.SceneID]*activeScene),
	}
}

// Acquire takes a reference on a scene, beginning an asynchronous load
// on the first reference and returning the scene handle immediately. The
// handle may be invalid until its underlying file and archive complete.
// Re-acquiring a scene that is pending unload cancels the unload.
func (s *Scenes) Acquire(ctx context.Context, id contentengine.SceneID, params contentengine.SceneParams) (contentengine.SceneHandle, error) {
	if e, ok := s.entries[id]; ok {
		e.pendingUnload = false
		e.refCount++
		return e.handle, nil
	}

	sloc, ok := s.catalog.ResolveScene(id)
	if !ok {
		return nil, errors.InvalidLocation(errors.PhaseResolve, "scene", uint64(id))
	}
	floc, ok := s.catalog.ResolveFile(sloc.File)
	if !ok {
		return nil, errors.InvalidLocation(errors.PhaseLoad, "file", uint64(sloc.File))
	}

	deps, err := s.depsets.Acquire(ctx, floc.DependencyGroup, floc.Dependencies)
	if err != nil {
		return nil, err
	}

	var mount contentengine.Mount
	if floc.Archive.IsValid() {
		mount, err = s.archives.Acquire(ctx, floc.Archive)
		if err != nil {
			if rerr := s.depsets.Release(floc.DependencyGroup); rerr != nil {
				Logger().Error("dependency set unwind failed",
					zap.Int("group", floc.DependencyGroup), zap.Error(rerr))
			}
			return nil, err
		}
	}

	handle := s.loader.LoadScene(ctx, sloc.Name, floc.Path, mount, deps, params)
	s.entries[id] = &activeScene{
		handle:   handle,
		file:     sloc.File,
		archive:  floc.Archive,
		group:    floc.DependencyGroup,
		refCount: 1,
	}
	Logger().Debug("scene load started",
		zap.Uint64("scene", uint64(id)),
		zap.String("name", sloc.Name))
	return handle, nil
}

// Release drops one reference. The last reference marks the scene for
// unload at the end of the current drain cycle; the entry stays in the
// table with refcount 0 until FlushDeferred runs.
func (s *Scenes) Release(id contentengine.SceneID) error {
	e, ok := s.entries[id]
	if !ok || e.refCount == 0 {
		return errors.NotFound(errors.PhaseRelease, "scene", uint64(id))
	}

	e.refCount--
	if e.refCount == 0 {
		e.pendingUnload = true
		s.deferred = append(s.deferred, id)
	}
	return nil
}

// FlushDeferred unloads every scene marked for unload, releasing the
// archive and dependency set each held. Called once per drain cycle,
// after all queued requests are processed.
func (s *Scenes) FlushDeferred() error {
	if len(s.deferred) == 0 {
		return nil
	}

	var firstErr error
	for _, id := range s.deferred {
		e, ok := s.entries[id]
		if !ok || !e.pendingUnload || e.refCount > 0 {
			continue // re-acquired before the flush
		}

		delete(s.entries, id)
		e.handle.Unload()
		if e.archive.IsValid() {
			if err := s.archives.Release(e.archive); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if err := s.depsets.Release(e.group); err != nil && firstErr == nil {
			firstErr = err
		}
		Logger().Debug("scene unloaded", zap.Uint64("scene", uint64(id)))
	}
	s.deferred = s.deferred[:0]
	return firstErr
}

// RefCount returns the current reference count, 0 if absent or pending
// unload.
func (s *Scenes) RefCount(id contentengine.SceneID) int {
	if e, ok := s.entries[id]; ok {
		return e.refCount
	}
	return 0
}

// Len returns the number of scene entries, including those pending
// unload.
func (s *Scenes) Len() int { return len(s.entries) }

// Each iterates over scene entries and their refcounts.
func (s *Scenes) Each(fn func(contentengine.SceneID, int) bool) {
	for id, e := range s.entries {
		if !fn(id, e.refCount) {
			return
		}
	}
}
