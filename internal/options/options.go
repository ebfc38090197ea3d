// Package options implements the nested configuration schema (spec.md
// §6.2, C7): world/stepper/contacts/joints/telemetry option groups,
// yaml-marshaled, with mandatory-range validation. Ported from the
// teacher's internal/config/config.go, restructured from that package's
// flat scenario config into the nested groups spec.md's options table
// requires.
package options

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigidsim/internal/contacts"
	"github.com/san-kum/rigidsim/internal/joints"
	"github.com/san-kum/rigidsim/internal/telemetry"
)

// World holds the world.* group (spec.md §6.2).
type World struct {
	// Gravity is a 6-vector [gx,gy,gz,0,0,0] pushed into the rigid-body
	// model on setOptions.
	Gravity [6]float64 `yaml:"gravity"`
}

// DefaultWorld matches the original engine's stock gravity.
func DefaultWorld() World {
	return World{Gravity: [6]float64{0, 0, -9.81, 0, 0, 0}}
}

// Stepper holds the stepper.* group (spec.md §6.2).
type Stepper struct {
	TolAbs                 float64 `yaml:"tolAbs"`
	TolRel                 float64 `yaml:"tolRel"`
	SensorsUpdatePeriod    float64 `yaml:"sensorsUpdatePeriod"`
	ControllerUpdatePeriod float64 `yaml:"controllerUpdatePeriod"`
	RandomSeed             int64   `yaml:"randomSeed"`
}

// DefaultStepper matches the original engine's stock tolerances (continuous
// mode: both update periods 0).
func DefaultStepper() Stepper {
	return Stepper{TolAbs: 1e-8, TolRel: 1e-6}
}

// Options is the full nested schema (spec.md §3 "a nested configuration
// dictionary with the recognised keys").
type Options struct {
	World     World             `yaml:"world"`
	Stepper   Stepper           `yaml:"stepper"`
	Contacts  contacts.Options  `yaml:"contacts"`
	Joints    joints.Options    `yaml:"joints"`
	Telemetry telemetry.Options `yaml:"telemetry"`
}

// Default returns the recognised defaults for every group.
func Default() Options {
	return Options{
		World:     DefaultWorld(),
		Stepper:   DefaultStepper(),
		Contacts:  contacts.DefaultOptions(),
		Joints:    joints.DefaultOptions(),
		Telemetry: telemetry.DefaultOptions(),
	}
}

// Load reads and unmarshals a yaml options file over the recognised
// defaults, so a partial file only overrides the keys it sets.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, err
	}
	opts := Default()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Save marshals opts to a yaml file.
func Save(path string, opts Options) error {
	data, err := yaml.Marshal(opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate enforces the mandatory ranges spec.md §6.2/§4.7 requires:
// non-negative update periods, positive tolerances, and each group's own
// Validate.
func (o Options) Validate() error {
	if o.Stepper.TolAbs <= 0 || o.Stepper.TolRel <= 0 {
		return errBadTolerance
	}
	if o.Stepper.SensorsUpdatePeriod < 0 || o.Stepper.ControllerUpdatePeriod < 0 {
		return errNegativePeriod
	}
	if err := o.Contacts.Validate(); err != nil {
		return err
	}
	if err := o.Joints.Validate(); err != nil {
		return err
	}
	return nil
}
