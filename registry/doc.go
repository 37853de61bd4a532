// Package registry implements the reference-counted tables tracking
// which archives, files, dependency sets, objects and scenes are in use.
//
// # Ownership Graph
//
// Entries own each other strictly bottom-up:
//
//	object  -> file
//	file    -> archive, dependency set
//	scene   -> archive, dependency set
//	depset  -> N dependency files (recursively)
//
// Acquiring an entry that already exists only increments its refcount;
// the underlying load happens at most once per entry. Releasing the last
// reference removes the entry and cascades release to everything it
// owned. Dependency graphs are assumed acyclic; a cyclic catalog would
// recurse without bound.
//
// # Threading
//
// Registries are not internally synchronized. All mutation belongs to
// the engine's drain goroutine; the engine serializes access.
package registry
