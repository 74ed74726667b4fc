package capture

import (
	"sync"

	"github.com/desertthunder/nicofix/internal/fixtures"
	"github.com/desertthunder/nicofix/internal/nicovideo"
)

// TypeMappingCollector records the response type of every fixture written during a run.
type TypeMappingCollector struct {
	mu      sync.Mutex
	mapping fixtures.Mapping
}

// NewTypeMappingCollector creates an empty collector.
func NewTypeMappingCollector() *TypeMappingCollector {
	return &TypeMappingCollector{mapping: fixtures.Mapping{}}
}

// Record stores the type of resp under the target's fixture key.
//
// List results record their item type, so an empty list still maps to a concrete type.
func (c *TypeMappingCollector) Record(t Target, resp nicovideo.Response) nicovideo.TypeRef {
	ref := nicovideo.TypeRefOf(resp)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.mapping[t.Key()] = ref
	return ref
}

// Mapping returns a copy of the recorded entries.
func (c *TypeMappingCollector) Mapping() fixtures.Mapping {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(fixtures.Mapping, len(c.mapping))
	out.Merge(c.mapping)
	return out
}
