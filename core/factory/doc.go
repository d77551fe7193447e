// Package factory provides a small generic registry used to instantiate
// pluggable modules from configuration. Modules are defined by a type string
// and a map of raw settings. Factories decode the settings into typed structs
// and return the concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[model.Behavior]()
//	reg.Register("greedy_distance", func(conf map[string]any) (model.Behavior, error) {
//	    var c struct{ MaxDistance float64 `json:"max_distance"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return behavior.NewGreedyDistance(c.MaxDistance)
//	})
//	b, err := reg.Create(factory.ModuleConfig{Type: "greedy_distance", Conf: map[string]any{"max_distance": 7.5}})
package factory
