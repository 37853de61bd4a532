package registry

import (
	"context"

	"go.uber.org/zap"

	contentengine "github.com/wippyai/content-engine"
	"github.com/wippyai/content-engine/errors"
)

// DependencySets owns the reusable, reference-counted dependency lists
// shared by files and scenes with the same dependency group. A group is
// resolved at most once while referenced; re-entrant acquires reuse the
// existing handle list without touching the file registry.
type DependencySets struct {
	files  *Files
	groups []depSet
}

type depSet struct {
	handles  []contentengine.FileHandle
	acquired []contentengine.FileID
	refCount int
}

func newDependencySets(groupCount int) *DependencySets {
	return &DependencySets{groups: make([]depSet, groupCount)}
}

// Acquire takes a reference on a dependency group, resolving the ordered
// handle list on the first reference. Invalid dependency ids are skipped
// and replaced with GlobalTablePlaceholder so the list stays
// index-aligned. A negative group means no dependencies.
func (d *DependencySets) Acquire(ctx context.Context, group int, depIDs []contentengine.FileID) ([]contentengine.FileHandle, error) {
	if group < 0 {
		return nil, nil
	}
	d.grow(group)

	s := &d.groups[group]
	if s.refCount > 0 {
		s.refCount++
		return s.handles, nil
	}

	handles := make([]contentengine.FileHandle, 0, len(depIDs))
	acquired := make([]contentengine.FileID, 0, len(depIDs))
	for _, fid := range depIDs {
		if !fid.IsValid() {
			handles = append(handles, GlobalTablePlaceholder)
			continue
		}
		h, err := d.files.Acquire(ctx, fid)
		if err != nil {
			for _, rid := range acquired {
				if rerr := d.files.Release(rid); rerr != nil {
					Logger().Error("dependency unwind failed",
						zap.Uint64("file", uint64(rid)), zap.Error(rerr))
				}
			}
			return nil, err
		}
		handles = append(handles, h)
		acquired = append(acquired, fid)
	}

	s.refCount = 1
	s.handles = handles
	s.acquired = acquired
	Logger().Debug("dependency set resolved",
		zap.Int("group", group),
		zap.Int("files", len(acquired)))
	return handles, nil
}

// Release drops one reference. The last reference releases every
// dependent file and discards the list.
func (d *DependencySets) Release(group int) error {
	if group < 0 {
		return nil
	}
	if group >= len(d.groups) || d.groups[group].refCount == 0 {
		return errors.NotFound(errors.PhaseRelease, "dependency group", group)
	}

	s := &d.groups[group]
	s.refCount--
	if s.refCount > 0 {
		return nil
	}

	var firstErr error
	for _, fid := range s.acquired {
		if err := d.files.Release(fid); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.handles = nil
	s.acquired = nil
	Logger().Debug("dependency set released", zap.Int("group", group))
	return firstErr
}

// RefCount returns the current reference count of a group, 0 if unused.
func (d *DependencySets) RefCount(group int) int {
	if group < 0 || group >= len(d.groups) {
		return 0
	}
	return d.groups[group].refCount
}

// Len returns the number of groups currently referenced.
func (d *DependencySets) Len() int {
	n := 0
	for i := range d.groups {
		if d.groups[i].refCount > 0 {
			n++
		}
	}
	return n
}

// grow extends the group space when the catalog reports more groups than
// the registry was created with.
func (d *DependencySets) grow(group int) {
	for group >= len(d.groups) {
		d.groups = append(d.groups, depSet{})
	}
}
