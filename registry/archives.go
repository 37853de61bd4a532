package registry

import (
	"context"

	"go.uber.org/zap"

	contentengine "github.com/wippyai/content-engine"
	"github.com/wippyai/content-engine/catalog"
	"github.com/wippyai/content-engine/errors"
)

// Archives is the reference-counted table of mounted archives.
type Archives struct {
	catalog catalog.Catalog
	mounter contentengine.Mounter
	entries map[contentengine.ArchiveID]*activeArchive
}

type activeArchive struct {
	mount    contentengine.Mount
	refCount int
}

func newArchives(cat catalog.Catalog, mounter contentengine.Mounter) *Archives {
	return &Archives{
		catalog: cat,
		mounter: mounter,
		entries: make(map[contentengine.ArchiveID]*activeArchive),
	}
}

// Acquire takes a reference on an archive, beginning an asynchronous
// mount on the first reference.
func (a *Archives) Acquire(ctx context.Context, id contentengine.ArchiveID) (contentengine.Mount, error) {
	if e, ok := a.entries[id]; ok {
		e.refCount++
		return e.mount, nil
	}

	path, ok := a.catalog.ResolveArchive(id)
	if !ok {
		return nil, errors.InvalidLocation(errors.PhaseMount, "archive", uint64(id))
	}

	mount := a.mounter.MountArchive(ctx, path)
	a.entries[id] = &activeArchive{mount: mount, refCount: 1}
	Logger().Debug("archive mount started",
		zap.Uint64("archive", uint64(id)),
		zap.String("path", path))
	return mount, nil
}

// Release drops one reference. The last reference unmounts the archive
// and removes the entry. Releasing an absent id is a programmer error:
// every release must pair with a prior acquire.
func (a *Archives) Release(id contentengine.ArchiveID) error {
	e, ok := a.entries[id]
	if !ok {
		return errors.NotFound(errors.PhaseRelease, "archive", uint64(id))
	}

	e.refCount--
	if e.refCount > 0 {
		return nil
	}

	delete(a.entries, id)
	e.mount.Unmount()
	Logger().Debug("archive unmounted", zap.Uint64("archive", uint64(id)))
	return nil
}

// RefCount returns the current reference count, 0 if absent.
func (a *Archives) RefCount(id contentengine.ArchiveID) int {
	if e, ok := a.entries[id]; ok {
		return e.refCount
	}
	return 0
}

// Len returns the number of mounted archives.
func (a *Archives) Len() int { return len(a.entries) }
