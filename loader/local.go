package loader

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	contentengine "github.com/wippyai/content-engine"
	"github.com/wippyai/content-engine/errors"
)

// Extractor turns raw file bytes into addressable objects keyed by local
// id. The returned closer, if any, runs when the file handle closes.
type Extractor func(path string, data []byte) (objects map[uint64]any, closer func(), err error)

// RawExtractor exposes the whole payload as object 0.
func RawExtractor(path string, data []byte) (map[uint64]any, func(), error) {
	return map[uint64]any{0: data}, nil, nil
}

const defaultConcurrency = 4

// Local loads content from a directory tree. Archive paths name either a
// subdirectory or a zip file under the root; files without an archive
// are read relative to the root.
type Local struct {
	root    string
	extract Extractor
	sem     *semaphore.Weighted
	log     *zap.Logger
}

// LocalOption configures a Local backend.
type LocalOption func(*Local)

// WithExtractor replaces the default raw-bytes extractor.
func WithExtractor(fn Extractor) LocalOption {
	return func(l *Local) { l.extract = fn }
}

// WithConcurrency bounds the number of loads touching the disk at once.
func WithConcurrency(n int64) LocalOption {
	return func(l *Local) { l.sem = semaphore.NewWeighted(n) }
}

// WithLogger overrides the package logger for this backend.
func WithLogger(log *zap.Logger) LocalOption {
	return func(l *Local) { l.log = log }
}

// NewLocal creates a filesystem-backed loader rooted at dir.
func NewLocal(dir string, opts ...LocalOption) *Local {
	l := &Local{
		root:    dir,
		extract: RawExtractor,
		sem:     semaphore.NewWeighted(defaultConcurrency),
		log:     Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MountArchive opens a zip file or directory asynchronously.
func (l *Local) MountArchive(ctx context.Context, path string) contentengine.Mount {
	m := &archiveMount{state: newState(), path: path}
	go l.runMount(ctx, m, path)
	return m
}

func (l *Local) runMount(ctx context.Context, m *archiveMount, path string) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		m.settle(errors.Wrap(errors.PhaseMount, errors.KindLoadFailed, err, "mount canceled"))
		return
	}
	defer l.sem.Release(1)

	full := filepath.Join(l.root, path)
	info, err := os.Stat(full)
	if err != nil {
		l.log.Warn("archive not accessible", zap.String("path", path), zap.Error(err))
		m.settle(errors.LoadFailed("archive", path, err))
		return
	}

	if info.IsDir() {
		m.openMu.Lock()
		m.dir = full
		m.openMu.Unlock()
		m.settle(nil)
		return
	}

	zr, err := zip.OpenReader(full)
	if err != nil {
		l.log.Warn("archive open failed", zap.String("path", path), zap.Error(err))
		m.settle(errors.LoadFailed("archive", path, err))
		return
	}
	m.openMu.Lock()
	m.zr = zr
	m.openMu.Unlock()
	m.settle(nil)
	l.log.Debug("archive mounted", zap.String("path", path))
}

// LoadFile reads and extracts a file asynchronously. The load waits for
// the archive mount and every dependency handle before touching the disk.
func (l *Local) LoadFile(ctx context.Context, path string, archive contentengine.Mount, deps []contentengine.FileHandle) contentengine.FileHandle {
	f := &fileHandle{state: newState(), path: path}
	go l.runFile(ctx, f, path, archive, deps)
	return f
}

func (l *Local) runFile(ctx context.Context, f *fileHandle, path string, archive contentengine.Mount, deps []contentengine.FileHandle) {
	if err := l.await(ctx, path, archive, deps); err != nil {
		f.settle(err)
		return
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		f.settle(errors.Wrap(errors.PhaseLoad, errors.KindLoadFailed, err, "load canceled"))
		return
	}
	defer l.sem.Release(1)

	data, err := l.read(path, archive)
	if err != nil {
		l.log.Warn("file read failed", zap.String("path", path), zap.Error(err))
		f.settle(errors.LoadFailed("file", path, err))
		return
	}

	objects, closer, err := l.extract(path, data)
	if err != nil {
		l.log.Warn("file extraction failed", zap.String("path", path), zap.Error(err))
		f.settle(errors.LoadFailed("file", path, err))
		return
	}

	f.resMu.Lock()
	f.objects = objects
	f.closer = closer
	f.resMu.Unlock()
	f.settle(nil)
	l.log.Debug("file loaded",
		zap.String("path", path), zap.Int("objects", len(objects)))
}

// LoadScene reads and extracts a scene asynchronously. High-priority
// scenes skip the disk semaphore so they are not queued behind bulk
// file loads.
func (l *Local) LoadScene(ctx context.Context, name, path string, archive contentengine.Mount, deps []contentengine.FileHandle, params contentengine.SceneParams) contentengine.SceneHandle {
	s := &sceneHandle{state: newState(), name: name}
	go l.runScene(ctx, s, name, path, archive, deps, params)
	return s
}

func (l *Local) runScene(ctx context.Context, s *sceneHandle, name, path string, archive contentengine.Mount, deps []contentengine.FileHandle, params contentengine.SceneParams) {
	if err := l.await(ctx, path, archive, deps); err != nil {
		s.settle(err)
		return
	}

	if params.Priority <= 0 {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			s.settle(errors.Wrap(errors.PhaseLoad, errors.KindLoadFailed, err, "load canceled"))
			return
		}
		defer l.sem.Release(1)
	}

	data, err := l.read(path, archive)
	if err != nil {
		l.log.Warn("scene read failed",
			zap.String("scene", name), zap.String("path", path), zap.Error(err))
		s.settle(errors.LoadFailed("scene", name, err))
		return
	}

	objects, closer, err := l.extract(path, data)
	if err != nil {
		s.settle(errors.LoadFailed("scene", name, err))
		return
	}

	s.resMu.Lock()
	s.value = objects
	s.closer = closer
	s.resMu.Unlock()
	s.settle(nil)
	l.log.Debug("scene loaded",
		zap.String("scene", name), zap.Bool("activate", params.ActivateOnLoad))
}

// await blocks until the archive mount and every dependency settled,
// propagating the first failure.
func (l *Local) await(ctx context.Context, path string, archive contentengine.Mount, deps []contentengine.FileHandle) error {
	if archive != nil {
		select {
		case <-archive.Done():
		case <-ctx.Done():
			return errors.Wrap(errors.PhaseLoad, errors.KindLoadFailed, ctx.Err(), "load canceled")
		}
		if err := archive.Err(); err != nil {
			return errors.Wrap(errors.PhaseLoad, errors.KindLoadFailed, err, "archive mount failed")
		}
	}
	for _, dep := range deps {
		select {
		case <-dep.Done():
		case <-ctx.Done():
			return errors.Wrap(errors.PhaseLoad, errors.KindLoadFailed, ctx.Err(), "load canceled")
		}
		if err := dep.Err(); err != nil {
			l.log.Warn("dependency failed", zap.String("path", path), zap.Error(err))
			return errors.Wrap(errors.PhaseLoad, errors.KindLoadFailed, err, "dependency load failed")
		}
	}
	return nil
}

func (l *Local) read(path string, archive contentengine.Mount) ([]byte, error) {
	if am, ok := archive.(*archiveMount); ok && am != nil {
		rc, err := am.open(path)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	// No archive, or one mounted by a different backend: read relative
	// to the root.
	clean := filepath.Clean(strings.TrimPrefix(path, "/"))
	return os.ReadFile(filepath.Join(l.root, clean))
}
