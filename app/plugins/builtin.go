package plugins

import (
	"github.com/fleetlab/dispatchsim/core/behavior"
	"github.com/fleetlab/dispatchsim/core/factory"
	"github.com/fleetlab/dispatchsim/core/model"
	"github.com/fleetlab/dispatchsim/core/mutation"
	"github.com/fleetlab/dispatchsim/core/policy"
	// Sink factories register on import.
	_ "github.com/fleetlab/dispatchsim/infra/metrics"
)

func mustPolicy(name string, f factory.Factory[policy.DispatchPolicy]) {
	if err := RegisterPolicy(name, f); err != nil {
		panic(err)
	}
}

func mustBehavior(name string, f factory.Factory[model.Behavior]) {
	if err := RegisterBehavior(name, f); err != nil {
		panic(err)
	}
}

func mustMutation(name string, f factory.Factory[mutation.Rule]) {
	if err := RegisterMutation(name, f); err != nil {
		panic(err)
	}
}

func init() {
	mustPolicy("nearest_neighbor", func(_ map[string]any) (policy.DispatchPolicy, error) {
		return policy.NearestNeighbor{}, nil
	})
	mustPolicy("global_greedy", func(_ map[string]any) (policy.DispatchPolicy, error) {
		return policy.GlobalGreedy{}, nil
	})
	mustPolicy("load_adaptive", func(_ map[string]any) (policy.DispatchPolicy, error) {
		return policy.NewLoadAdaptive(), nil
	})

	mustBehavior("greedy_distance", func(conf map[string]any) (model.Behavior, error) {
		c := struct {
			MaxDistance float64 `json:"max_distance"`
		}{MaxDistance: 15}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return behavior.NewGreedyDistance(c.MaxDistance)
	})
	mustBehavior("earnings_max", func(conf map[string]any) (model.Behavior, error) {
		c := struct {
			MinRewardPerTick float64 `json:"min_reward_per_tick"`
		}{MinRewardPerTick: 0.8}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return behavior.NewEarningsMax(c.MinRewardPerTick)
	})
	mustBehavior("lazy", func(conf map[string]any) (model.Behavior, error) {
		c := struct {
			MinIdleTicks      int64   `json:"min_idle_ticks"`
			MaxPickupDistance float64 `json:"max_pickup_distance"`
		}{MinIdleTicks: 5, MaxPickupDistance: 8}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return behavior.NewLazy(c.MinIdleTicks, c.MaxPickupDistance)
	})

	mustMutation("noop", func(_ map[string]any) (mutation.Rule, error) {
		return mutation.Noop{}, nil
	})
	mustMutation("hybrid", func(conf map[string]any) (mutation.Rule, error) {
		var c mutation.Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		c.SetDefaults()
		return mutation.NewHybrid(c)
	})
}
