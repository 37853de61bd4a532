// Package contentengine provides a reference-counted content loading and
// dependency-resolution engine.
//
// The engine tracks which archives, files, objects and scenes are in use,
// mounts and loads them on demand through asynchronous collaborators,
// shares dependency sets between consumers, and releases the whole
// dependency graph deterministically when the last reference is dropped.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct
// responsibilities:
//
//	contentengine/       Root package with id types and loader contracts
//	├── engine/          High-level API: request queues, status cache, drain cycle
//	├── registry/        Refcounted archive/file/dependency-set/object/scene tables
//	├── catalog/         Lookup contract mapping ids to paths and dependency lists
//	├── loader/          Async mount/load collaborator implementations
//	├── resource/        Cross-thread native-handle lookup table
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Construct an engine with a catalog and loaders, tick it once per frame:
//
//	eng, err := engine.New(engine.Options{
//	    Catalog: cat,
//	    Mounter: local,
//	    Files:   local,
//	    Scenes:  local,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	eng.Initialize()
//	defer eng.Cleanup()
//
//	eng.LoadObjectAsync(id)          // any goroutine
//	eng.ProcessQueuedCommands()      // designated tick goroutine
//	st := eng.GetObjectStatus(id)    // any goroutine, lock-free
//
// # Ownership Model
//
// Every loaded file pulls in its archive and a shared dependency set;
// every object pins its owning file; every scene pins an archive and a
// dependency set directly. Reference counts cascade strictly bottom-up:
// releasing the last object reference releases the file, and releasing
// the file releases the archive and dependency set it held.
//
// # Thread Safety
//
// Producers may enqueue load and release requests from any goroutine and
// read the status cache without taking a lock. Registry mutation happens
// only inside ProcessQueuedCommands, which is intended to run on one
// designated goroutine once per tick.
package contentengine
