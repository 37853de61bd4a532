package catalog

import (
	contentengine "github.com/wippyai/content-engine"
)

// ObjectLocation is where an object lives: its owning file and the local
// id addressing it inside that file.
type ObjectLocation struct {
	File    contentengine.FileID
	LocalID uint64
}

// SceneLocation is where a scene lives: its owning file and the scene
// name inside it.
type SceneLocation struct {
	File contentengine.FileID
	Name string
}

// FileLocation is everything the engine needs to load a file: its path,
// the files it depends on, the archive that contains it (invalid when the
// file lives outside any archive), and the dependency group the file's
// dependency list belongs to (-1 when the file has no dependencies).
type FileLocation struct {
	Path            string
	Dependencies    []contentengine.FileID
	Archive         contentengine.ArchiveID
	DependencyGroup int
}

// Catalog maps opaque content ids to locations. Implementations must be
// safe for concurrent readers; the engine resolves ids only from the
// drain goroutine but collaborators may consult the catalog elsewhere.
type Catalog interface {
	// ResolveObject returns the location of an object, or false if the
	// catalog does not know the id.
	ResolveObject(id contentengine.ObjectID) (ObjectLocation, bool)

	// ResolveScene returns the location of a scene.
	ResolveScene(id contentengine.SceneID) (SceneLocation, bool)

	// ResolveFile returns the location of a file.
	ResolveFile(id contentengine.FileID) (FileLocation, bool)

	// ResolveArchive returns the mount path of an archive.
	ResolveArchive(id contentengine.ArchiveID) (string, bool)

	// DependencyGroupCount returns the number of dependency groups the
	// catalog defines. Group indices are in [0, DependencyGroupCount).
	DependencyGroupCount() int
}
