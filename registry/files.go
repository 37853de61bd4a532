package registry

import (
	"context"

	"go.uber.org/zap"

	contentengine "github.com/wippyai/content-engine"
	"github.com/wippyai/content-engine/catalog"
	"github.com/wippyai/content-engine/errors"
)

// Files is the reference-counted table of loaded files. Each file load
// pulls in its archive and a shared dependency set, and hands both to
// the loader so the async load can wait on them.
type Files struct {
	catalog  catalog.Catalog
	loader   contentengine.FileLoader
	archives *Archives
	depsets  *DependencySets
	entries  map[contentengine.FileID]*activeFile
}

type activeFile struct {
	handle   contentengine.FileHandle
	archive  contentengine.ArchiveID
	group    int
	refCount int
}

func newFiles(cat catalog.Catalog, loader contentengine.FileLoader, archives *Archives) *Files {
	return &Files{
		catalog:  cat,
		loader:   loader,
		archives: archives,
		entries:  make(map[contentengine.FileID]*activeFile),
	}
}

// Acquire takes a reference on a file, beginning an asynchronous load on
// the first reference. The dependency group index is cached on the entry
// so release never depends on a catalog re-lookup.
func (f *Files) Acquire(ctx context.Context, id contentengine.FileID) (contentengine.FileHandle, error) {
	if e, ok := f.entries[id]; ok {
		e.refCount++
		return e.handle, nil
	}

	loc, ok := f.catalog.ResolveFile(id)
	if !ok {
		return nil, errors.InvalidLocation(errors.PhaseLoad, "file", uint64(id))
	}

	deps, err := f.depsets.Acquire(ctx, loc.DependencyGroup, loc.Dependencies)
	if err != nil {
		return nil, err
	}

	var mount contentengine.Mount
	if loc.Archive.IsValid() {
		mount, err = f.archives.Acquire(ctx, loc.Archive)
		if err != nil {
			if rerr := f.depsets.Release(loc.DependencyGroup); rerr != nil {
				Logger().Error("dependency set unwind failed",
					zap.Int("group", loc.DependencyGroup), zap.Error(rerr))
			}
			return nil, err
		}
	}

	handle := f.loader.LoadFile(ctx, loc.Path, mount, deps)
	f.entries[id] = &activeFile{
		handle:   handle,
		archive:  loc.Archive,
		group:    loc.DependencyGroup,
		refCount: 1,
	}
	Logger().Debug("file load started",
		zap.Uint64("file", uint64(id)),
		zap.String("path", loc.Path),
		zap.Int("group", loc.DependencyGroup))
	return handle, nil
}

// Release drops one reference. The last reference begins an asynchronous
// unload and releases the archive and dependency set the file held.
//
// The cached group index is checked against a catalog re-resolution; a
// location that became unresolvable or diverged since load indicates
// corrupted state. Teardown still proceeds on the cached values so the
// graph does not leak, and the fatal error is reported to the caller.
func (f *Files) Release(id contentengine.FileID) error {
	e, ok := f.entries[id]
	if !ok {
		return errors.NotFound(errors.PhaseRelease, "file", uint64(id))
	}

	e.refCount--
	if e.refCount > 0 {
		return nil
	}

	var fatal error
	if loc, ok := f.catalog.ResolveFile(id); !ok {
		fatal = errors.CorruptState(errors.PhaseRelease,
			"file %d location became unresolvable between load and release", uint64(id))
	} else if loc.DependencyGroup != e.group {
		fatal = errors.CorruptState(errors.PhaseRelease,
			"file %d dependency group diverged: loaded %d, catalog now %d",
			uint64(id), e.group, loc.DependencyGroup)
	}

	delete(f.entries, id)
	e.handle.Close()

	if e.archive.IsValid() {
		if err := f.archives.Release(e.archive); err != nil && fatal == nil {
			fatal = err
		}
	}
	if err := f.depsets.Release(e.group); err != nil && fatal == nil {
		fatal = err
	}

	Logger().Debug("file unload started", zap.Uint64("file", uint64(id)))
	return fatal
}

// Handle returns the live handle for a loaded file.
func (f *Files) Handle(id contentengine.FileID) (contentengine.FileHandle, bool) {
	if e, ok := f.entries[id]; ok {
		return e.handle, true
	}
	return nil, false
}

// RefCount returns the current reference count, 0 if absent.
func (f *Files) RefCount(id contentengine.FileID) int {
	if e, ok := f.entries[id]; ok {
		return e.refCount
	}
	return 0
}

// Len returns the number of loaded files.
func (f *Files) Len() int { return len(f.entries) }
