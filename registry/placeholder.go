package registry

import (
	contentengine "github.com/wippyai/content-engine"
	"github.com/wippyai/content-engine/errors"
)

// GlobalTablePlaceholder stands in for invalid file ids inside a
// dependency list. It keeps dependency handle slices index-aligned with
// the catalog's dependency lists without loading anything: loaders that
// wait on it see an already-completed handle.
var GlobalTablePlaceholder contentengine.FileHandle = newPlaceholderFile()

type placeholderFile struct {
	done chan struct{}
}

func newPlaceholderFile() *placeholderFile {
	p := &placeholderFile{done: make(chan struct{})}
	close(p.done)
	return p
}

func (p *placeholderFile) Status() contentengine.LoadStatus { return contentengine.StatusCompleted }
func (p *placeholderFile) Done() <-chan struct{}            { return p.done }
func (p *placeholderFile) Err() error                       { return nil }
func (p *placeholderFile) Close()                           {}

func (p *placeholderFile) Object(localID uint64) (any, error) {
	return nil, errors.NotFound(errors.PhaseLoad, "placeholder object", localID)
}
