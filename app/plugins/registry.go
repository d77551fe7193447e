// Package plugins holds the registries the service builds its strategy
// modules from. Built-in implementations register themselves in init; extra
// modules can register before the service is constructed.
package plugins

import (
	"github.com/fleetlab/dispatchsim/core/factory"
	"github.com/fleetlab/dispatchsim/core/model"
	"github.com/fleetlab/dispatchsim/core/mutation"
	"github.com/fleetlab/dispatchsim/core/policy"
)

var (
	policies  = factory.NewRegistry[policy.DispatchPolicy]()
	behaviors = factory.NewRegistry[model.Behavior]()
	mutations = factory.NewRegistry[mutation.Rule]()
)

// RegisterPolicy makes a dispatch policy available under name.
func RegisterPolicy(name string, f factory.Factory[policy.DispatchPolicy]) error {
	return policies.Register(name, f)
}

// RegisterBehavior makes a driver behavior available under name.
func RegisterBehavior(name string, f factory.Factory[model.Behavior]) error {
	return behaviors.Register(name, f)
}

// RegisterMutation makes a mutation rule available under name.
func RegisterMutation(name string, f factory.Factory[mutation.Rule]) error {
	return mutations.Register(name, f)
}

// NewPolicy builds the dispatch policy described by cfg.
func NewPolicy(cfg factory.ModuleConfig) (policy.DispatchPolicy, error) {
	return policies.Create(cfg)
}

// NewBehavior builds the driver behavior described by cfg.
func NewBehavior(cfg factory.ModuleConfig) (model.Behavior, error) {
	return behaviors.Create(cfg)
}

// NewMutation builds the mutation rule described by cfg.
func NewMutation(cfg factory.ModuleConfig) (mutation.Rule, error) {
	return mutations.Create(cfg)
}

// PolicyNames lists the registered dispatch policies.
func PolicyNames() []string { return policies.Names() }

// BehaviorNames lists the registered driver behaviors.
func BehaviorNames() []string { return behaviors.Names() }

// MutationNames lists the registered mutation rules.
func MutationNames() []string { return mutations.Names() }
