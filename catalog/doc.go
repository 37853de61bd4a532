// Package catalog defines the lookup contract the engine uses to turn
// opaque content ids into file paths, archive paths and dependency lists.
//
// The engine consumes the Catalog interface and never parses catalog
// data itself. The Memory implementation exists for tests and tooling;
// hosts typically bring their own catalog built from whatever format
// their pipeline produces.
package catalog
