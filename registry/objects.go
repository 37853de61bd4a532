package registry

import (
	"context"

	"go.uber.org/zap"

	contentengine "github.com/wippyai/content-engine"
	"github.com/wippyai/content-engine/catalog"
	"github.com/wippyai/content-engine/errors"
)

// ExternalResolver is an environment-specific fallback for objects the
// catalog cannot resolve. A claiming resolver produces the value
// directly; such objects carry an invalid file id and bypass file
// refcount bookkeeping.
type ExternalResolver interface {
	Claim(id contentengine.ObjectID) (any, bool)
}

// Objects is the reference-counted table of individually loaded objects.
type Objects struct {
	catalog  catalog.Catalog
	files    *Files
	external ExternalResolver
	entries  map[contentengine.ObjectID]*activeObject
}

type activeObject struct {
	external any
	file     contentengine.FileID
	localID  uint64
	refCount int
}

func newObjects(cat catalog.Catalog, files *Files, external ExternalResolver) *Objects {
	return &Objects{
		catalog:  cat,
		files:    files,
		external: external,
		entries:  make(map[contentengine.ObjectID]*activeObject),
	}
}

// Acquire takes a reference on an object. The first reference resolves
// the object through the catalog and pins its owning file; later
// references only bump the count. Returns whether this was the first
// reference.
func (o *Objects) Acquire(ctx context.Context, id contentengine.ObjectID) (bool, error) {
	if e, ok := o.entries[id]; ok {
		e.refCount++
		return false, nil
	}

	if loc, ok := o.catalog.ResolveObject(id); ok {
		if _, err := o.files.Acquire(ctx, loc.File); err != nil {
			return false, err
		}
		o.entries[id] = &activeObject{
			file:     loc.File,
			localID:  loc.LocalID,
			refCount: 1,
		}
		Logger().Debug("object load started",
			zap.Uint64("object", uint64(id)),
			zap.Uint64("file", uint64(loc.File)))
		return true, nil
	}

	if o.external != nil {
		if v, claimed := o.external.Claim(id); claimed {
			o.entries[id] = &activeObject{external: v, refCount: 1}
			Logger().Debug("object claimed by external resolver",
				zap.Uint64("object", uint64(id)))
			return true, nil
		}
	}

	return false, errors.InvalidLocation(errors.PhaseResolve, "object", uint64(id))
}

// Resolve derives the object's status from its owning file and, once the
// file completed, extracts the object value. An extraction failure or a
// failed file load reads as StatusError.
func (o *Objects) Resolve(id contentengine.ObjectID) (any, contentengine.LoadStatus) {
	e, ok := o.entries[id]
	if !ok {
		return nil, contentengine.StatusNone
	}
	if !e.file.IsValid() {
		return e.external, contentengine.StatusCompleted
	}

	h, ok := o.files.Handle(e.file)
	if !ok {
		return nil, contentengine.StatusError
	}
	switch h.Status() {
	case contentengine.StatusCompleted:
		v, err := h.Object(e.localID)
		if err != nil {
			Logger().Warn("object extraction failed",
				zap.Uint64("object", uint64(id)), zap.Error(err))
			return nil, contentengine.StatusError
		}
		return v, contentengine.StatusCompleted
	case contentengine.StatusError:
		return nil, contentengine.StatusError
	default:
		return nil, contentengine.StatusLoading
	}
}

// Release drops one reference. The last reference removes the entry and
// releases the owning file, cascading through archive and dependency-set
// release. Returns whether the entry was removed.
func (o *Objects) Release(id contentengine.ObjectID) (bool, error) {
	e, ok := o.entries[id]
	if !ok {
		return false, errors.NotFound(errors.PhaseRelease, "object", uint64(id))
	}

	e.refCount--
	if e.refCount > 0 {
		return false, nil
	}

	delete(o.entries, id)
	var err error
	if e.file.IsValid() {
		err = o.files.Release(e.file)
	}
	Logger().Debug("object released", zap.Uint64("object", uint64(id)))
	return true, err
}

// Owner returns the owning file of an object. The file id is invalid for
// externally resolved objects.
func (o *Objects) Owner(id contentengine.ObjectID) (contentengine.FileID, bool) {
	if e, ok := o.entries[id]; ok {
		return e.file, true
	}
	return 0, false
}

// RefCount returns the current reference count, 0 if absent.
func (o *Objects) RefCount(id contentengine.ObjectID) int {
	if e, ok := o.entries[id]; ok {
		return e.refCount
	}
	return 0
}

// Len returns the number of active objects.
func (o *Objects) Len() int { return len(o.entries) }

// Each iterates over active objects and their refcounts.
func (o *Objects) Each(fn func(contentengine.ObjectID, int) bool) {
	for id, e := range o.entries {
		if !fn(id, e.refCount) {
			return
		}
	}
}
