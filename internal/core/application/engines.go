package application

import (
	"fmt"
	"sort"

	"github.com/tdex-network/tdex-privateswap/internal/core/ports"
)

type engineRegistry map[string]ports.TradingEngine

// NewEngineRegistry returns a registry of the given engines indexed by name.
func NewEngineRegistry(engines ...ports.TradingEngine) (ports.EngineRegistry, error) {
	registry := make(engineRegistry)
	for _, e := range engines {
		if e == nil {
			return nil, fmt.Errorf("missing trading engine")
		}
		if _, ok := registry[e.Name()]; ok {
			return nil, fmt.Errorf("duplicated trading engine %s", e.Name())
		}
		registry[e.Name()] = e
	}
	return registry, nil
}

func (r engineRegistry) Get(name string) (ports.TradingEngine, error) {
	engine, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEngineNotFound, name)
	}
	return engine, nil
}

func (r engineRegistry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
