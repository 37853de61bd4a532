package catalog

import (
	"sync"

	contentengine "github.com/wippyai/content-engine"
)

// Memory is an in-memory Catalog built programmatically. It backs tests
// and the contentrun testbed; production catalogs are expected to come
// from elsewhere and only satisfy the Catalog interface.
type Memory struct {
	mu       sync.RWMutex
	objects  map[contentengine.ObjectID]ObjectLocation
	scenes   map[contentengine.SceneID]SceneLocation
	files    map[contentengine.FileID]FileLocation
	archives map[contentengine.ArchiveID]string
	groups   int
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{
		objects:  make(map[contentengine.ObjectID]ObjectLocation),
		scenes:   make(map[contentengine.SceneID]SceneLocation),
		files:    make(map[contentengine.FileID]FileLocation),
		archives: make(map[contentengine.ArchiveID]string),
	}
}

// AddArchive registers an archive mount path.
func (m *Memory) AddArchive(id contentengine.ArchiveID, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archives[id] = path
}

// AddFile registers a file location. A negative group means the file has
// no dependency group; otherwise the group index space grows to fit.
func (m *Memory) AddFile(id contentengine.FileID, loc FileLocation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[id] = loc
	if loc.DependencyGroup >= m.groups {
		m.groups = loc.DependencyGroup + 1
	}
}

// AddObject registers an object location.
func (m *Memory) AddObject(id contentengine.ObjectID, file contentengine.FileID, localID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[id] = ObjectLocation{File: file, LocalID: localID}
}

// AddScene registers a scene location.
func (m *Memory) AddScene(id contentengine.SceneID, file contentengine.FileID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenes[id] = SceneLocation{File: file, Name: name}
}

func (m *Memory) ResolveObject(id contentengine.ObjectID) (ObjectLocation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.objects[id]
	return loc, ok
}

func (m *Memory) ResolveScene(id contentengine.SceneID) (SceneLocation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.scenes[id]
	return loc, ok
}

func (m *Memory) ResolveFile(id contentengine.FileID) (FileLocation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.files[id]
	return loc, ok
}

func (m *Memory) ResolveArchive(id contentengine.ArchiveID) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path, ok := m.archives[id]
	return path, ok
}

func (m *Memory) DependencyGroupCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.groups
}
