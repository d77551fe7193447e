package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fleetlab/dispatchsim/core/factory"
	"github.com/fleetlab/dispatchsim/core/model"
)

type DriverDef struct {
	ID       int64                `yaml:"id"`
	X        float64              `yaml:"x"`
	Y        float64              `yaml:"y"`
	Speed    float64              `yaml:"speed"`
	Behavior factory.ModuleConfig `yaml:"behavior"`
}

func (d DriverDef) ToModel(b model.Behavior) (*model.Driver, error) {
	return model.NewDriver(d.ID, model.Point{X: d.X, Y: d.Y}, d.Speed, b, 0)
}

type RequestDef struct {
	ID       int64   `yaml:"id"`
	At       int64   `yaml:"at"`
	PickupX  float64 `yaml:"pickup_x"`
	PickupY  float64 `yaml:"pickup_y"`
	DropoffX float64 `yaml:"dropoff_x"`
	DropoffY float64 `yaml:"dropoff_y"`
}

func (r RequestDef) ToModel() (*model.Request, error) {
	pickup := model.Point{X: r.PickupX, Y: r.PickupY}
	dropoff := model.Point{X: r.DropoffX, Y: r.DropoffY}
	return model.NewRequest(r.ID, pickup, dropoff, r.At)
}

type RewardDef struct {
	Base        float64 `yaml:"base"`
	PerDistance float64 `yaml:"per_distance"`
	WaitPenalty float64 `yaml:"wait_penalty"`
}

func (rw RewardDef) ToModel() model.RewardParams {
	return model.RewardParams{Base: rw.Base, PerDistance: rw.PerDistance, WaitPenalty: rw.WaitPenalty}
}

type Expected struct {
	Served         int64           `yaml:"served"`
	Expired        int64           `yaml:"expired"`
	AvgWait        float64         `yaml:"avg_wait"`
	OffersRejected int             `yaml:"offers_rejected"`
	Assignments    map[int64]int64 `yaml:"assignments,omitempty"`
}

type Scenario struct {
	Name         string               `yaml:"name"`
	Description  string               `yaml:"description,omitempty"`
	Ticks        int64                `yaml:"ticks"`
	TimeoutTicks int64                `yaml:"timeout_ticks,omitempty"`
	Policy       factory.ModuleConfig `yaml:"policy"`
	Reward       *RewardDef           `yaml:"reward,omitempty"`
	Drivers      []DriverDef          `yaml:"drivers"`
	Requests     []RequestDef         `yaml:"requests"`
	Expected     Expected             `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
