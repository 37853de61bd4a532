// Package loader provides the default asynchronous content backends:
// mounting archives, loading files and loading scenes from the local
// filesystem.
//
// # Local Loading
//
// Local serves content rooted at a base directory. An archive path names
// either a subdirectory or a zip file; files inside a mounted archive are
// read from it, files with no archive are read relative to the root. All
// I/O runs on background goroutines bounded by a weighted semaphore, so
// the registries never block on disk.
//
// # Extraction
//
// Raw file bytes turn into addressable objects through an Extractor. The
// default extractor exposes the whole payload as object 0. WASMExtractor
// compiles .wasm payloads with wazero and exposes the module and its
// exported functions as objects.
//
// # Waiting Contract
//
// Every handle returned by this package settles exactly once: Done is
// closed after Status stops reporting loading. File loads wait for their
// archive mount and dependency handles before touching the disk, and
// propagate the first failure they observe.
package loader
