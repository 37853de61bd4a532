package loader

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	contentengine "github.com/wippyai/content-engine"
	"github.com/wippyai/content-engine/errors"
)

// state is the settle-once core shared by all handle types.
type state struct {
	done chan struct{}

	mu      sync.Mutex
	err     error
	settled bool
}

func newState() *state {
	return &state{done: make(chan struct{})}
}

// settle records the terminal result and closes Done. Later calls are
// ignored so a racing cancel and completion cannot double-close.
func (s *state) settle(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settled {
		return
	}
	s.settled = true
	s.err = err
	close(s.done)
}

func (s *state) Status() contentengine.LoadStatus {
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

func (s *state) Done() <-chan struct{} { return s.done }

func (s *state) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// archiveMount is a mounted zip file or content directory.
type archiveMount struct {
	*state
	path string

	openMu sync.Mutex
	zr     *zip.ReadCloser
	dir    string
}

// open returns a reader for a member of the archive. Valid only after
// the mount completed.
func (m *archiveMount) open(name string) (io.ReadCloser, error) {
	m.openMu.Lock()
	defer m.openMu.Unlock()

	if m.zr != nil {
		f, err := m.zr.Open(filepath.ToSlash(name))
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	if m.dir != "" {
		return os.Open(filepath.Join(m.dir, name))
	}
	return nil, fs.ErrNotExist
}

func (m *archiveMount) Unmount() {
	m.openMu.Lock()
	defer m.openMu.Unlock()
	if m.zr != nil {
		if err := m.zr.Close(); err != nil {
			Logger().Warn("archive close failed",
				zap.String("path", m.path), zap.Error(err))
		}
		m.zr = nil
	}
	m.dir = ""
}

// fileHandle is an in-flight or completed file load.
type fileHandle struct {
	*state
	path string

	resMu   sync.Mutex
	objects map[uint64]any
	closer  func()
}

func (f *fileHandle) Object(localID uint64) (any, error) {
	f.resMu.Lock()
	defer f.resMu.Unlock()

	if f.objects == nil {
		return nil, errors.NotFound(errors.PhaseLoad, "file", f.path)
	}
	v, ok := f.objects[localID]
	if !ok {
		return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
			Entity("file", f.path).
			Detail("no object with local id %d", localID).
			Build()
	}
	return v, nil
}

func (f *fileHandle) Close() {
	f.resMu.Lock()
	closer := f.closer
	f.objects = nil
	f.closer = nil
	f.resMu.Unlock()
	if closer != nil {
		closer()
	}
}

// sceneHandle is an in-flight or completed scene load.
type sceneHandle struct {
	*state
	name string

	resMu  sync.Mutex
	value  any
	closer func()
}

func (s *sceneHandle) Value() any {
	s.resMu.Lock()
	defer s.resMu.Unlock()
	return s.value
}

func (s *sceneHandle) Unload() {
	s.resMu.Lock()
	closer := s.closer
	s.value = nil
	s.closer = nil
	s.resMu.Unlock()
	if closer != nil {
		closer()
	}
}
