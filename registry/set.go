package registry

import (
	contentengine "github.com/wippyai/content-engine"
	"github.com/wippyai/content-engine/catalog"
)

// Config wires the collaborators the registries consume.
type Config struct {
	Catalog  catalog.Catalog
	Mounter  contentengine.Mounter
	Files    contentengine.FileLoader
	Scenes   contentengine.SceneLoader
	External ExternalResolver // optional
}

// Set bundles the five registries with their cross-references resolved.
// A Set is owned by a single goroutine.
type Set struct {
	Archives       *Archives
	DependencySets *DependencySets
	Files          *Files
	Objects        *Objects
	Scenes         *Scenes
}

// NewSet creates empty registries wired to the given collaborators.
func NewSet(cfg Config) *Set {
	archives := newArchives(cfg.Catalog, cfg.Mounter)
	depsets := newDependencySets(cfg.Catalog.DependencyGroupCount())
	files := newFiles(cfg.Catalog, cfg.Files, archives)

	// Files and dependency sets acquire each other recursively.
	files.depsets = depsets
	depsets.files = files

	return &Set{
		Archives:       archives,
		DependencySets: depsets,
		Files:          files,
		Objects:        newObjects(cfg.Catalog, files, cfg.External),
		Scenes:         newScenes(cfg.Catalog, archives, depsets, cfg.Scenes),
	}
}
