package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mmrzaf/tsgen/internal/builders"
	"github.com/mmrzaf/tsgen/internal/domain"
)

type FactorRegistry struct {
	mu       sync.RWMutex
	builders map[string]builders.Builder
}

func NewFactorRegistry() *FactorRegistry {
	return &FactorRegistry{
		builders: make(map[string]builders.Builder),
	}
}

func (r *FactorRegistry) Register(factorType string, b builders.Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[factorType] = b
}

func (r *FactorRegistry) Get(factorType string) (builders.Builder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builders[factorType]
	if !ok {
		return nil, fmt.Errorf("factor type not found: %s", factorType)
	}
	return b, nil
}

// List returns the registered factor types in sorted order.
func (r *FactorRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func DefaultFactorRegistry() *FactorRegistry {
	r := NewFactorRegistry()
	r.Register(domain.FactorTypeRandomComposite, &builders.RandomCompositeBuilder{})
	r.Register(domain.FactorTypeRandomPromotions, &builders.RandomPromotionsBuilder{})
	r.Register(domain.FactorTypeExternalAggregated, &builders.ExternalAggregatedBuilder{})
	r.Register(domain.FactorTypeInvert, &builders.InvertBuilder{})
	r.Register(domain.FactorTypeScale, &builders.ScaleBuilder{})
	return r
}
