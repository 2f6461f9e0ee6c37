package store

import "github.com/kilianp07/crewsched/core/factory"

var storeRegistry = factory.NewRegistry[RunStore]()

// RegisterRunStore adds a run store factory identified by name.
func RegisterRunStore(name string, f factory.Factory[RunStore]) error {
	return storeRegistry.Register(name, f)
}

// NewRunStore creates the run store described by cfg. An empty type
// disables persistence.
func NewRunStore(cfg factory.ModuleConfig) (RunStore, error) {
	if cfg.Type == "" {
		return NopStore{}, nil
	}
	return storeRegistry.Create(cfg)
}
