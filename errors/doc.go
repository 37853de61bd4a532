// Package errors provides structured error types for the content engine.
//
// Errors carry a Phase (where in the lifecycle the failure happened) and
// a Kind (what category of failure it is), plus the entity and id they
// refer to. Two errors match under errors.Is when phase and kind agree,
// so callers can test for categories without string comparison:
//
//	if errors.Is(err, &cerrors.Error{Phase: cerrors.PhaseResolve, Kind: cerrors.KindInvalidLocation}) {
//	    // catalog could not resolve the id
//	}
//
// Recoverable failures (unresolvable ids, double releases, failed loads)
// resolve to status values or booleans at the engine surface; only
// KindCorruptState errors are fatal, reported by Fatal().
package errors
