package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	contentengine "github.com/wippyai/content-engine"
	"github.com/wippyai/content-engine/catalog"
)

var errDiskOffline = errors.New("disk offline")

// asyncState is the shared completion machinery for fake handles.
type asyncState struct {
	done chan struct{}
	mu   sync.Mutex
	err  error
	over bool
}

func newAsyncState() *asyncState {
	return &asyncState{done: make(chan struct{})}
}

func (a *asyncState) finish(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.over {
		return
	}
	a.over = true
	a.err = err
	close(a.done)
}

func (a *asyncState) Status() contentengine.LoadStatus {
	select {
	case <-a.done:
		if a.Err() != nil {
			return contentengine.StatusError
		}
		return contentengine.StatusCompleted
	default:
		return contentengine.StatusLoading
	}
}

func (a *asyncState) Done() <-chan struct{} { return a.done }

func (a *asyncState) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

type stubMount struct{ *asyncState }

func (m *stubMount) Unmount() {}

type stubFile struct {
	*asyncState
	path    string
	objects map[uint64]any
}

func (f *stubFile) Object(localID uint64) (any, error) {
	if v, ok := f.objects[localID]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("no object %d in %s", localID, f.path)
}

func (f *stubFile) Close() {}

type stubScene struct {
	*asyncState
	name     string
	unloaded bool
}

func (s *stubScene) Value() any { return "scene:" + s.name }
func (s *stubScene) Unload()    { s.unloaded = true }

// stubLoaders implements Mounter, FileLoader and SceneLoader. With auto
// set, every handle completes at creation; otherwise tests complete
// handles by path through finishFile.
type stubLoaders struct {
	mu     sync.Mutex
	files  map[string]*stubFile
	scenes map[string]*stubScene
	auto   bool
}

func newStubLoaders(auto bool) *stubLoaders {
	return &stubLoaders{
		files:  make(map[string]*stubFile),
		scenes: make(map[string]*stubScene),
		auto:   auto,
	}
}

func (l *stubLoaders) MountArchive(ctx context.Context, path string) contentengine.Mount {
	m := &stubMount{newAsyncState()}
	m.finish(nil) // archive mounts are instant in these tests
	return m
}

func (l *stubLoaders) LoadFile(ctx context.Context, path string, archive contentengine.Mount, deps []contentengine.FileHandle) contentengine.FileHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	f := &stubFile{
		asyncState: newAsyncState(),
		path:       path,
		objects:    map[uint64]any{0: "payload:" + path},
	}
	if l.auto {
		f.finish(nil)
	}
	l.files[path] = f
	return f
}

func (l *stubLoaders) LoadScene(ctx context.Context, name, path string, archive contentengine.Mount, deps []contentengine.FileHandle, params contentengine.SceneParams) contentengine.SceneHandle {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := &stubScene{asyncState: newAsyncState(), name: name}
	if l.auto {
		s.finish(nil)
	}
	l.scenes[name] = s
	return s
}

func (l *stubLoaders) finishFile(path string, err error) {
	l.mu.Lock()
	f := l.files[path]
	l.mu.Unlock()
	if f != nil {
		f.finish(err)
	}
}

// testCatalog mirrors the layout used across the registry tests: two
// objects in file 10, one in file 11, both files in archive 1 sharing
// dependency group 0.
func testCatalog() *catalog.Memory {
	cat := catalog.NewMemory()
	cat.AddArchive(1, "/content/main.zip")
	cat.AddFile(20, catalog.FileLocation{Path: "dep-a", Archive: 1, DependencyGroup: -1})
	cat.AddFile(10, catalog.FileLocation{
		Path:            "main-a",
		Archive:         1,
		Dependencies:    []contentengine.FileID{20},
		DependencyGroup: 0,
	})
	cat.AddFile(11, catalog.FileLocation{
		Path:            "main-b",
		Archive:         1,
		Dependencies:    []contentengine.FileID{20},
		DependencyGroup: 0,
	})
	cat.AddObject(100, 10, 0)
	cat.AddObject(101, 10, 0)
	cat.AddObject(102, 11, 0)
	cat.AddScene(200, 10, "intro")
	return cat
}

func newTestEngine(auto bool) (*Engine, *stubLoaders) {
	loaders := newStubLoaders(auto)
	e, err := New(Options{
		Catalog: testCatalog(),
		Mounter: loaders,
		Files:   loaders,
		Scenes:  loaders,
	})
	if err != nil {
		panic(err)
	}
	e.Initialize()
	return e, loaders
}

type recordingTelemetry struct {
	mu          sync.Mutex
	transitions []string
	leaks       []int
}

func (r *recordingTelemetry) ObjectStatusChanged(id contentengine.ObjectID, from, to contentengine.LoadStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, fmt.Sprintf("%d:%s->%s", id, from, to))
}

func (r *recordingTelemetry) LeakedOnCleanup(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaks = append(r.leaks, count)
}
