package catalog

import (
	"encoding/json"
	"os"

	contentengine "github.com/wippyai/content-engine"
	"github.com/wippyai/content-engine/errors"
)

// Manifest is the JSON description of a content catalog consumed by the
// contentrun testbed.
type Manifest struct {
	Archives []ManifestArchive `json:"archives"`
	Files    []ManifestFile    `json:"files"`
	Objects  []ManifestObject  `json:"objects"`
	Scenes   []ManifestScene   `json:"scenes"`
}

type ManifestArchive struct {
	ID   uint64 `json:"id"`
	Path string `json:"path"`
}

type ManifestFile struct {
	ID           uint64   `json:"id"`
	Path         string   `json:"path"`
	Archive      uint64   `json:"archive,omitempty"`
	Dependencies []uint64 `json:"dependencies,omitempty"`

	// Group is the dependency group index. Omitted or negative means the
	// file has no dependency group.
	Group *int `json:"group,omitempty"`
}

type ManifestObject struct {
	ID      uint64 `json:"id"`
	File    uint64 `json:"file"`
	LocalID uint64 `json:"local_id"`
}

type ManifestScene struct {
	ID   uint64 `json:"id"`
	File uint64 `json:"file"`
	Name string `json:"name"`
}

// ParseManifest builds an in-memory catalog from manifest JSON. Entries
// referring to files the manifest does not declare are rejected.
func ParseManifest(data []byte) (*Memory, error) {
	var man Manifest
	if err := json.Unmarshal(data, &man); err != nil {
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindInvalidInput, err, "manifest parse failed")
	}

	cat := NewMemory()
	files := make(map[uint64]bool, len(man.Files))

	for _, a := range man.Archives {
		if a.ID == 0 || a.Path == "" {
			return nil, errors.InvalidInput(errors.PhaseResolve, "archive needs a non-zero id and a path")
		}
		cat.AddArchive(contentengine.ArchiveID(a.ID), a.Path)
	}

	for _, f := range man.Files {
		if f.ID == 0 || f.Path == "" {
			return nil, errors.InvalidInput(errors.PhaseResolve, "file needs a non-zero id and a path")
		}
		group := -1
		if f.Group != nil && *f.Group >= 0 {
			group = *f.Group
		}
		deps := make([]contentengine.FileID, len(f.Dependencies))
		for i, dep := range f.Dependencies {
			deps[i] = contentengine.FileID(dep)
		}
		cat.AddFile(contentengine.FileID(f.ID), FileLocation{
			Path:            f.Path,
			Archive:         contentengine.ArchiveID(f.Archive),
			Dependencies:    deps,
			DependencyGroup: group,
		})
		files[f.ID] = true
	}

	for _, o := range man.Objects {
		if o.ID == 0 {
			return nil, errors.InvalidInput(errors.PhaseResolve, "object needs a non-zero id")
		}
		if !files[o.File] {
			return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
				Entity("object", o.ID).
				Detail("references undeclared file %d", o.File).
				Build()
		}
		cat.AddObject(contentengine.ObjectID(o.ID), contentengine.FileID(o.File), o.LocalID)
	}

	for _, s := range man.Scenes {
		if s.ID == 0 || s.Name == "" {
			return nil, errors.InvalidInput(errors.PhaseResolve, "scene needs a non-zero id and a name")
		}
		if !files[s.File] {
			return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
				Entity("scene", s.ID).
				Detail("references undeclared file %d", s.File).
				Build()
		}
		cat.AddScene(contentengine.SceneID(s.ID), contentengine.FileID(s.File), s.Name)
	}

	return cat, nil
}

// LoadManifest reads and parses a manifest file.
func LoadManifest(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindNotFound, err, "manifest not readable")
	}
	return ParseManifest(data)
}
