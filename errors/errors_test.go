package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseResolve,
				Kind:   KindInvalidLocation,
				Entity: "file",
				ID:     "42",
				Detail: "catalog cannot resolve id",
			},
			contains: []string{"[resolve]", "invalid_location", "file 42", "catalog cannot resolve id"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseRelease,
				Kind:  KindNotFound,
			},
			contains: []string{"[release]", "not_found"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindLoadFailed,
				Detail: "file load reported failure",
				Cause:  errors.New("disk offline"),
			},
			contains: []string{"[load]", "load_failed", "file load reported failure", "caused by", "disk offline"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := LoadFailed("object", 7, cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestError_Is(t *testing.T) {
	a := InvalidLocation(PhaseResolve, "archive", 1)
	b := InvalidLocation(PhaseResolve, "archive", 99)
	c := NotFound(PhaseRelease, "archive", 1)

	if !errors.Is(a, b) {
		t.Error("same phase+kind should match regardless of id")
	}
	if errors.Is(a, c) {
		t.Error("different phase+kind should not match")
	}
}

func TestError_Fatal(t *testing.T) {
	if !CorruptState(PhaseRelease, "group index diverged").Fatal() {
		t.Error("corrupt state should be fatal")
	}
	if NotFound(PhaseRelease, "object", 1).Fatal() {
		t.Error("not found should not be fatal")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("mount failed")
	err := New(PhaseMount, KindLoadFailed).
		Entity("archive", 3).
		Detail("mount %s", "refused").
		Cause(cause).
		Build()

	if err.Phase != PhaseMount || err.Kind != KindLoadFailed {
		t.Errorf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
	if err.Entity != "archive" || err.ID != "3" {
		t.Errorf("unexpected entity/id: %s/%s", err.Entity, err.ID)
	}
	if err.Detail != "mount refused" {
		t.Errorf("unexpected detail: %q", err.Detail)
	}
	if err.Cause != cause {
		t.Error("cause not propagated")
	}
}

func TestLeaked(t *testing.T) {
	err := Leaked("object", 3)
	if !strings.Contains(err.Error(), "3 entries") {
		t.Errorf("leak count missing from %q", err.Error())
	}
	if err.Kind != KindLeaked || err.Phase != PhaseCleanup {
		t.Errorf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
}
