// Package resource provides the engine-managed native-handle table.
//
// Loaded values never cross goroutine boundaries directly. When a load
// completes, the drain cycle inserts the value here and publishes the
// integer handle through the status cache; any goroutine that observed
// the handle resolves it back to the value through the table.
//
// # Handle Table
//
//	table := resource.NewTable()
//
//	// Insert a value, get a handle
//	handle := table.Insert(resource.TypeObject, myValue)
//
//	// Retrieve value by handle, from any goroutine
//	value, ok := table.Get(handle)
//
//	// Remove when the last reference is released
//	value, ok := table.Remove(handle)
//
// # Type Safety
//
// Handles are typed per entity kind:
//
//	value, ok := table.GetTyped(h, resource.TypeObject) // ok
//	value, ok := table.GetTyped(h, resource.TypeScene)  // !ok
//
// # Cleanup
//
// Values that implement Dropper are dropped when removed. Handles are
// not garbage collected; the engine removes them when the owning entry's
// refcount reaches zero, and Close drops everything left at teardown.
package resource
