package contentengine

import "context"

// ArchiveID identifies a mountable archive in the content catalog.
// The zero value is invalid.
type ArchiveID uint64

// FileID identifies a loadable content file. The zero value is invalid.
type FileID uint64

// ObjectID identifies an individually addressable object inside a
// loaded content file. The zero value is invalid.
type ObjectID uint64

// SceneID identifies a loadable scene. The zero value is invalid.
type SceneID uint64

// IsValid reports whether the id can participate in a registry.
func (id ArchiveID) IsValid() bool { return id != 0 }

// IsValid reports whether the id can participate in a registry.
func (id FileID) IsValid() bool { return id != 0 }

// IsValid reports whether the id can participate in a registry.
func (id ObjectID) IsValid() bool { return id != 0 }

// IsValid reports whether the id can participate in a registry.
func (id SceneID) IsValid() bool { return id != 0 }

// LoadStatus describes the observable state of an asynchronous load.
type LoadStatus uint8

const (
	// StatusNone means the id has no registry entry and no pending request.
	StatusNone LoadStatus = iota
	// StatusLoading means a load is in flight.
	StatusLoading
	// StatusCompleted means the load finished and a value is available.
	StatusCompleted
	// StatusError means the load failed. The status is permanent until
	// the entry is released and requested again.
	StatusError
)

func (s LoadStatus) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusLoading:
		return "loading"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// SceneParams carries caller options for a scene load.
type SceneParams struct {
	// ActivateOnLoad makes the scene usable as soon as its file and
	// archive complete. When false the consumer activates it manually.
	ActivateOnLoad bool
	// Priority orders competing scene loads in the loader. Higher runs first.
	Priority int
}

// Mount is an in-flight or completed archive mount produced by a Mounter.
//
// Status and Err may be called from any goroutine. Done is closed exactly
// once, when the mount reaches StatusCompleted or StatusError.
type Mount interface {
	Status() LoadStatus
	Done() <-chan struct{}
	Err() error

	// Unmount releases the mount synchronously. Called at most once,
	// after the last reference to the archive is dropped.
	Unmount()
}

// FileHandle is an in-flight or completed file load produced by a FileLoader.
type FileHandle interface {
	Status() LoadStatus
	Done() <-chan struct{}
	Err() error

	// Object extracts the sub-object with the given local id from the
	// loaded file. Valid only after Status returns StatusCompleted.
	Object(localID uint64) (any, error)

	// Close begins an asynchronous unload. Called at most once.
	Close()
}

// SceneHandle is an in-flight or completed scene load produced by a
// SceneLoader. Unlike file objects, the handle itself is handed to the
// caller and may be observed before the load completes.
type SceneHandle interface {
	Status() LoadStatus
	Done() <-chan struct{}
	Err() error

	// Value returns the loaded scene context. Valid only after Status
	// returns StatusCompleted.
	Value() any

	// Unload tears the scene down. Called at most once, at end of a
	// drain cycle rather than at release time.
	Unload()
}

// Mounter mounts archives asynchronously. MountArchive never blocks; all
// waiting happens behind the returned Mount.
type Mounter interface {
	MountArchive(ctx context.Context, path string) Mount
}

// FileLoader loads content files asynchronously. The loader receives the
// owning archive's mount (nil when the file lives outside any archive)
// and the already-acquired dependency handles, so it can wait on them
// without an explicit join primitive.
type FileLoader interface {
	LoadFile(ctx context.Context, path string, archive Mount, deps []FileHandle) FileHandle
}

// SceneLoader loads scenes asynchronously, following the same waiting
// contract as FileLoader.
type SceneLoader interface {
	LoadScene(ctx context.Context, name, path string, archive Mount, deps []FileHandle, params SceneParams) SceneHandle
}
