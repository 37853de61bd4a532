package loader

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/content-engine/errors"
)

// WASMExtractor compiles .wasm payloads and exposes them as objects:
// local id 0 is the instantiated module, ids 1..n are its exported
// functions in name order. Non-wasm payloads fall through to a fallback
// extractor.
//
// All files extracted by one WASMExtractor share a wazero runtime, so
// compilation caches are shared too. Close the extractor only after
// every file that used it has been released.
type WASMExtractor struct {
	runtime  wazero.Runtime
	fallback Extractor
	log      *zap.Logger
	seq      atomic.Uint64
}

// WASMOption configures a WASMExtractor.
type WASMOption func(*WASMExtractor)

// WithFallback sets the extractor used for non-wasm payloads.
func WithFallback(fn Extractor) WASMOption {
	return func(w *WASMExtractor) { w.fallback = fn }
}

// NewWASMExtractor creates an extractor backed by a fresh wazero runtime.
func NewWASMExtractor(ctx context.Context, opts ...WASMOption) *WASMExtractor {
	w := &WASMExtractor{
		runtime:  wazero.NewRuntime(ctx),
		fallback: RawExtractor,
		log:      Logger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Close releases the shared runtime and every module it instantiated.
func (w *WASMExtractor) Close(ctx context.Context) error {
	return w.runtime.Close(ctx)
}

// Extract implements Extractor.
func (w *WASMExtractor) Extract(path string, data []byte) (map[uint64]any, func(), error) {
	if !strings.HasSuffix(path, ".wasm") {
		return w.fallback(path, data)
	}

	ctx := context.Background()
	compiled, err := w.runtime.CompileModule(ctx, data)
	if err != nil {
		return nil, nil, errors.LoadFailed("file", path, err)
	}

	name := fmt.Sprintf("%s#%d", path, w.seq.Add(1))
	mod, err := w.runtime.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName(name))
	if err != nil {
		compiled.Close(ctx)
		return nil, nil, errors.LoadFailed("file", path, err)
	}

	exports := make([]string, 0, len(mod.ExportedFunctionDefinitions()))
	for fname := range mod.ExportedFunctionDefinitions() {
		exports = append(exports, fname)
	}
	sort.Strings(exports)

	objects := make(map[uint64]any, len(exports)+1)
	objects[0] = mod
	for i, fname := range exports {
		objects[uint64(i+1)] = mod.ExportedFunction(fname)
	}

	closer := func() {
		if err := mod.Close(context.Background()); err != nil {
			w.log.Warn("wasm module close failed",
				zap.String("path", path), zap.Error(err))
		}
		compiled.Close(context.Background())
	}

	w.log.Debug("wasm module extracted",
		zap.String("path", path), zap.Int("exports", len(exports)))
	return objects, closer, nil
}
