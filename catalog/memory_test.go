package catalog

import (
	"testing"

	contentengine "github.com/wippyai/content-engine"
)

func TestMemory_Resolve(t *testing.T) {
	m := NewMemory()
	m.AddArchive(1, "/content/base.zip")
	m.AddFile(10, FileLocation{
		Path:            "base/props.bin",
		Dependencies:    []contentengine.FileID{11, 12},
		Archive:         1,
		DependencyGroup: 0,
	})
	m.AddObject(100, 10, 7)
	m.AddScene(200, 10, "intro")

	path, ok := m.ResolveArchive(1)
	if !ok || path != "/content/base.zip" {
		t.Fatalf("ResolveArchive = %q, %v", path, ok)
	}

	floc, ok := m.ResolveFile(10)
	if !ok {
		t.Fatal("ResolveFile failed")
	}
	if floc.Archive != 1 || len(floc.Dependencies) != 2 || floc.DependencyGroup != 0 {
		t.Fatalf("unexpected file location: %+v", floc)
	}

	oloc, ok := m.ResolveObject(100)
	if !ok || oloc.File != 10 || oloc.LocalID != 7 {
		t.Fatalf("ResolveObject = %+v, %v", oloc, ok)
	}

	sloc, ok := m.ResolveScene(200)
	if !ok || sloc.File != 10 || sloc.Name != "intro" {
		t.Fatalf("ResolveScene = %+v, %v", sloc, ok)
	}
}

func TestMemory_Misses(t *testing.T) {
	m := NewMemory()

	if _, ok := m.ResolveObject(1); ok {
		t.Fatal("unknown object should not resolve")
	}
	if _, ok := m.ResolveScene(1); ok {
		t.Fatal("unknown scene should not resolve")
	}
	if _, ok := m.ResolveFile(1); ok {
		t.Fatal("unknown file should not resolve")
	}
	if _, ok := m.ResolveArchive(1); ok {
		t.Fatal("unknown archive should not resolve")
	}
}

func TestMemory_DependencyGroupCount(t *testing.T) {
	m := NewMemory()
	if m.DependencyGroupCount() != 0 {
		t.Fatal("empty catalog should have no groups")
	}

	m.AddFile(1, FileLocation{Path: "a", DependencyGroup: -1})
	if m.DependencyGroupCount() != 0 {
		t.Fatal("group -1 should not grow the group space")
	}

	m.AddFile(2, FileLocation{Path: "b", DependencyGroup: 3})
	if m.DependencyGroupCount() != 4 {
		t.Fatalf("expected 4 groups, got %d", m.DependencyGroupCount())
	}
}
