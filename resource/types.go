package resource

// Handle is an opaque reference to a native value in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Type ids for the entity kinds the engine publishes handles for.
const (
	TypeObject uint32 = iota + 1
	TypeScene
	TypeFile
	TypeArchive
)

// Event types for handle lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

// Event represents a handle lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	TypeID uint32
	Type   EventType
}

// Observer receives notifications about handle lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}

// Dropper is optionally implemented by values that need cleanup when
// their handle is removed from the table.
type Dropper interface {
	Drop()
}
