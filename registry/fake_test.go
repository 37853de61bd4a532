package registry

import (
	"context"
	"fmt"
	"sync"

	contentengine "github.com/wippyai/content-engine"
)

// Fake async collaborators with manually completable handles. Completion
// is thread-safe so tests can flip state from helper goroutines.

type fakeMount struct {
	done      chan struct{}
	err       error
	mu        sync.Mutex
	completed bool
	unmounted bool
}

func newFakeMount() *fakeMount {
	return &fakeMount{done: make(chan struct{})}
}

func (m *fakeMount) complete(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.completed {
		return
	}
	m.completed = true
	m.err = err
	close(m.done)
}

func (m *fakeMount) Status() contentengine.LoadStatus {
	select {
	case <-m.done:
		if m.Err() != nil {
			return contentengine.StatusError
		}
		return contentengine.StatusCompleted
	default:
		return contentengine.StatusLoading
	}
}

func (m *fakeMount) Done() <-chan struct{} { return m.done }

func (m *fakeMount) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *fakeMount) Unmount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unmounted = true
}

func (m *fakeMount) isUnmounted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unmounted
}

type fakeMounter struct {
	mu     sync.Mutex
	mounts map[string]*fakeMount
	calls  int
	auto   bool // complete mounts immediately
}

func newFakeMounter(auto bool) *fakeMounter {
	return &fakeMounter{mounts: make(map[string]*fakeMount), auto: auto}
}

func (f *fakeMounter) MountArchive(ctx context.Context, path string) contentengine.Mount {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	m := newFakeMount()
	if f.auto {
		m.complete(nil)
	}
	f.mounts[path] = m
	return m
}

type fakeFile struct {
	done    chan struct{}
	objects map[uint64]any
	archive contentengine.Mount
	deps    []contentengine.FileHandle
	path    string
	err     error
	mu      sync.Mutex
	flags   struct {
		completed bool
		closed    bool
	}
}

func newFakeFile(path string, archive contentengine.Mount, deps []contentengine.FileHandle) *fakeFile {
	return &fakeFile{
		done:    make(chan struct{}),
		objects: make(map[uint64]any),
		archive: archive,
		deps:    deps,
		path:    path,
	}
}

func (f *fakeFile) complete(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.flags.completed {
		return
	}
	f.flags.completed = true
	f.err = err
	close(f.done)
}

func (f *fakeFile) Status() contentengine.LoadStatus {
	select {
	case <-f.done:
		if f.Err() != nil {
			return contentengine.StatusError
		}
		return contentengine.StatusCompleted
	default:
		return contentengine.StatusLoading
	}
}

func (f *fakeFile) Done() <-chan struct{} { return f.done }

func (f *fakeFile) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeFile) Object(localID uint64) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.objects[localID]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("no object %d in %s", localID, f.path)
}

func (f *fakeFile) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flags.closed = true
}

func (f *fakeFile) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flags.closed
}

type fakeLoader struct {
	mu    sync.Mutex
	files map[string]*fakeFile
	calls int
	auto  bool
}

func newFakeLoader(auto bool) *fakeLoader {
	return &fakeLoader{files: make(map[string]*fakeFile), auto: auto}
}

func (f *fakeLoader) LoadFile(ctx context.Context, path string, archive contentengine.Mount, deps []contentengine.FileHandle) contentengine.FileHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	fh := newFakeFile(path, archive, deps)
	fh.objects[0] = "payload:" + path
	if f.auto {
		fh.complete(nil)
	}
	f.files[path] = fh
	return fh
}

func (f *fakeLoader) file(path string) *fakeFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[path]
}

func (f *fakeLoader) loadCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeScene struct {
	done     chan struct{}
	name     string
	err      error
	mu       sync.Mutex
	unloaded bool
	complete bool
}

func (s *fakeScene) finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.complete {
		return
	}
	s.complete = true
	s.err = err
	close(s.done)
}

func (s *fakeScene) Status() contentengine.LoadStatus {
	select {
	case <-s.done:
		if s.Err() != nil {
			return contentengine.StatusError
		}
		return contentengine.StatusCompleted
	default:
		return contentengine.StatusLoading
	}
}

func (s *fakeScene) Done() <-chan struct{} { return s.done }

func (s *fakeScene) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *fakeScene) Value() any { return "scene:" + s.name }

func (s *fakeScene) Unload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unloaded = true
}

func (s *fakeScene) isUnloaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unloaded
}

type fakeSceneLoader struct {
	mu     sync.Mutex
	scenes map[string]*fakeScene
	auto   bool
}

func newFakeSceneLoader(auto bool) *fakeSceneLoader {
	return &fakeSceneLoader{scenes: make(map[string]*fakeScene), auto: auto}
}

func (f *fakeSceneLoader) LoadScene(ctx context.Context, name, path string, archive contentengine.Mount, deps []contentengine.FileHandle, params contentengine.SceneParams) contentengine.SceneHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &fakeScene{done: make(chan struct{}), name: name}
	if f.auto {
		s.finish(nil)
	}
	f.scenes[name] = s
	return s
}

func (f *fakeSceneLoader) scene(name string) *fakeScene {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scenes[name]
}

type fakeExternal struct {
	values map[contentengine.ObjectID]any
}

func (f *fakeExternal) Claim(id contentengine.ObjectID) (any, bool) {
	v, ok := f.values[id]
	return v, ok
}
