package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleManifest = `{
	"archives": [{"id": 1, "path": "pack.zip"}],
	"files": [
		{"id": 20, "path": "shared/dep.bin", "archive": 1},
		{"id": 10, "path": "main.bin", "archive": 1, "dependencies": [20], "group": 0}
	],
	"objects": [{"id": 100, "file": 10, "local_id": 0}],
	"scenes": [{"id": 200, "file": 10, "name": "intro"}]
}`

func TestParseManifest(t *testing.T) {
	cat, err := ParseManifest([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}

	if path, ok := cat.ResolveArchive(1); !ok || path != "pack.zip" {
		t.Fatalf("archive = %q, %v", path, ok)
	}

	loc, ok := cat.ResolveFile(10)
	if !ok || loc.Path != "main.bin" || loc.DependencyGroup != 0 {
		t.Fatalf("file = %+v, %v", loc, ok)
	}
	if len(loc.Dependencies) != 1 || loc.Dependencies[0] != 20 {
		t.Fatalf("dependencies = %v", loc.Dependencies)
	}

	dep, _ := cat.ResolveFile(20)
	if dep.DependencyGroup != -1 {
		t.Fatalf("omitted group should be -1, got %d", dep.DependencyGroup)
	}

	if obj, ok := cat.ResolveObject(100); !ok || obj.File != 10 {
		t.Fatalf("object = %+v, %v", obj, ok)
	}
	if sc, ok := cat.ResolveScene(200); !ok || sc.Name != "intro" {
		t.Fatalf("scene = %+v, %v", sc, ok)
	}
	if cat.DependencyGroupCount() != 1 {
		t.Fatalf("group count = %d", cat.DependencyGroupCount())
	}
}

func TestParseManifest_Rejections(t *testing.T) {
	cases := map[string]string{
		"bad json":       `{`,
		"zero archive":   `{"archives": [{"id": 0, "path": "p"}]}`,
		"pathless file":  `{"files": [{"id": 1}]}`,
		"orphan object":  `{"objects": [{"id": 1, "file": 99}]}`,
		"orphan scene":   `{"files": [{"id": 1, "path": "p"}], "scenes": [{"id": 2, "file": 99, "name": "x"}]}`,
		"nameless scene": `{"files": [{"id": 1, "path": "p"}], "scenes": [{"id": 2, "file": 1}]}`,
	}
	for name, src := range cases {
		if _, err := ParseManifest([]byte(src)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, []byte(sampleManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadManifest(path); err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if _, err := LoadManifest(filepath.Join(dir, "absent.json")); err == nil {
		t.Fatal("missing manifest should fail")
	}
}
