// Package fleet loads, saves and generates the initial population of a run.
// Fleet files are plain YAML or JSON so they can be written by hand, emitted
// by the generator command or produced by external tooling.
package fleet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fleetlab/dispatchsim/core/factory"
	"github.com/fleetlab/dispatchsim/core/model"
)

// DriverSpec describes one driver in a fleet file.
type DriverSpec struct {
	ID       int64                `json:"id" yaml:"id"`
	X        float64              `json:"x" yaml:"x"`
	Y        float64              `json:"y" yaml:"y"`
	Speed    float64              `json:"speed" yaml:"speed"`
	Behavior factory.ModuleConfig `json:"behavior" yaml:"behavior"`
}

// RequestSpec describes one pre-staged request in a fleet file.
type RequestSpec struct {
	ID       int64   `json:"id" yaml:"id"`
	PickupX  float64 `json:"pickup_x" yaml:"pickup_x"`
	PickupY  float64 `json:"pickup_y" yaml:"pickup_y"`
	DropoffX float64 `json:"dropoff_x" yaml:"dropoff_x"`
	DropoffY float64 `json:"dropoff_y" yaml:"dropoff_y"`
}

// File is the on-disk fleet description.
type File struct {
	Drivers  []DriverSpec  `json:"drivers" yaml:"drivers"`
	Requests []RequestSpec `json:"requests,omitempty" yaml:"requests,omitempty"`
}

// Load reads a fleet description from a JSON or YAML file.
func Load(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var f File
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &f)
	case ".json":
		err = json.Unmarshal(b, &f)
	default:
		return File{}, fmt.Errorf("unsupported fleet format: %s", ext)
	}
	return f, err
}

// Save writes a fleet description in the format matching the extension.
func Save(path string, f File) error {
	ext := strings.ToLower(filepath.Ext(path))
	var (
		b   []byte
		err error
	)
	switch ext {
	case ".yaml", ".yml":
		b, err = yaml.Marshal(f)
	case ".json":
		b, err = json.MarshalIndent(f, "", "  ")
	default:
		return fmt.Errorf("unsupported fleet format: %s", ext)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// BehaviorFactory instantiates a driver behavior from its plugin description.
type BehaviorFactory func(cfg factory.ModuleConfig) (model.Behavior, error)

// Build materializes a fleet description into simulation entities. Drivers
// start idle at their configured position, pre-staged requests start waiting
// at tick zero.
func Build(f File, newBehavior BehaviorFactory) ([]*model.Driver, []*model.Request, error) {
	if len(f.Drivers) == 0 {
		return nil, nil, fmt.Errorf("%w: fleet has no drivers", model.ErrInvalidInput)
	}
	if newBehavior == nil {
		return nil, nil, fmt.Errorf("%w: nil behavior factory", model.ErrInvalidInput)
	}
	drivers := make([]*model.Driver, 0, len(f.Drivers))
	for _, ds := range f.Drivers {
		b, err := newBehavior(ds.Behavior)
		if err != nil {
			return nil, nil, fmt.Errorf("driver %d behavior: %w", ds.ID, err)
		}
		d, err := model.NewDriver(ds.ID, model.Point{X: ds.X, Y: ds.Y}, ds.Speed, b, 0)
		if err != nil {
			return nil, nil, err
		}
		drivers = append(drivers, d)
	}
	requests := make([]*model.Request, 0, len(f.Requests))
	for _, rs := range f.Requests {
		r, err := model.NewRequest(rs.ID,
			model.Point{X: rs.PickupX, Y: rs.PickupY},
			model.Point{X: rs.DropoffX, Y: rs.DropoffY}, 0)
		if err != nil {
			return nil, nil, err
		}
		requests = append(requests, r)
	}
	return drivers, requests, nil
}

// MaxRequestID returns the highest pre-staged request ID, or -1 when the
// file stages none. Generators number new requests above it.
func MaxRequestID(f File) int64 {
	max := int64(-1)
	for _, r := range f.Requests {
		if r.ID > max {
			max = r.ID
		}
	}
	return max
}
