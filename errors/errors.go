package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the content lifecycle the error occurred
type Phase string

const (
	PhaseResolve Phase = "resolve" // catalog lookup
	PhaseMount   Phase = "mount"   // archive mounting
	PhaseLoad    Phase = "load"    // file/object/scene loading
	PhaseRelease Phase = "release" // reference release
	PhaseDrain   Phase = "drain"   // queued command processing
	PhaseCleanup Phase = "cleanup" // engine teardown
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidLocation    Kind = "invalid_location"
	KindNotFound           Kind = "not_found"
	KindLoadFailed         Kind = "load_failed"
	KindLeaked             Kind = "leaked"
	KindCorruptState       Kind = "corrupt_state"
	KindNotInitialized     Kind = "not_initialized"
	KindAlreadyInitialized Kind = "already_initialized"
	KindInvalidInput       Kind = "invalid_input"
)

// Error is the structured error type used throughout the engine
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Entity string // archive/file/object/scene/group
	ID     string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Entity != "" {
		b.WriteString(": ")
		b.WriteString(e.Entity)
		if e.ID != "" {
			b.WriteByte(' ')
			b.WriteString(e.ID)
		}
	}

	if e.Detail != "" {
		if e.Entity != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Fatal reports whether the error indicates corrupted internal state
// that must not be retried.
func (e *Error) Fatal() bool {
	return e.Kind == KindCorruptState
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Entity sets the entity kind and id the error refers to
func (b *Builder) Entity(entity string, id any) *Builder {
	b.err.Entity = entity
	b.err.ID = fmt.Sprintf("%v", id)
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// InvalidLocation creates an error for an id the catalog cannot resolve
func InvalidLocation(phase Phase, entity string, id any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidLocation,
		Entity: entity,
		ID:     fmt.Sprintf("%v", id),
		Detail: "catalog cannot resolve id",
	}
}

// NotFound creates an error for a release or query on an absent entry
func NotFound(phase Phase, entity string, id any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Entity: entity,
		ID:     fmt.Sprintf("%v", id),
		Detail: "no active entry",
	}
}

// LoadFailed creates an error for an async load that reported failure
func LoadFailed(entity string, id any, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindLoadFailed,
		Entity: entity,
		ID:     fmt.Sprintf("%v", id),
		Cause:  cause,
	}
}

// Leaked creates an error reporting entries still referenced at teardown
func Leaked(entity string, count int) *Error {
	return &Error{
		Phase:  PhaseCleanup,
		Kind:   KindLeaked,
		Entity: entity,
		Detail: fmt.Sprintf("%d entries still referenced at teardown", count),
	}
}

// CorruptState creates a fatal error for a provably-corrupted invariant
func CorruptState(phase Phase, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCorruptState,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// NotInitialized creates an error for use of the engine before Initialize
func NotInitialized(component string) *Error {
	return &Error{
		Phase:  PhaseDrain,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// AlreadyInitialized creates an error for Initialize without a prior Cleanup
func AlreadyInitialized(component string) *Error {
	return &Error{
		Phase:  PhaseDrain,
		Kind:   KindAlreadyInitialized,
		Detail: fmt.Sprintf("%s already initialized", component),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
