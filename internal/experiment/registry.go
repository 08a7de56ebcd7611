package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/overshoot/internal/config"
	"github.com/san-kum/overshoot/internal/dynamo"
	"github.com/san-kum/overshoot/internal/physics"
	"github.com/san-kum/overshoot/internal/sim"
)

// Instance is a registered oscillator together with the action that sets
// it in motion.
type Instance struct {
	Name       string
	Kind       string
	Oscillator dynamo.Oscillator
	Kick       func() error
}

// Factory builds and registers one oscillator on engine.
type Factory func(engine *sim.Engine, spec config.OscillatorSpec, opts ...physics.Option) (*Instance, error)

type Registry struct {
	kinds map[string]Factory
}

func NewRegistry() *Registry {
	r := &Registry{kinds: make(map[string]Factory)}
	r.Register(config.KindOvershoot, newOvershoot)
	r.Register(config.KindSpring, newSpring)
	return r
}

func (r *Registry) Register(kind string, f Factory) {
	r.kinds[kind] = f
}

func (r *Registry) Build(engine *sim.Engine, spec config.OscillatorSpec, opts ...physics.Option) (*Instance, error) {
	fn, ok := r.kinds[spec.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown oscillator kind: %s", spec.Kind)
	}
	inst, err := fn(engine, spec, opts...)
	if err != nil {
		return nil, err
	}
	if err := engine.Create(inst.Oscillator); err != nil {
		return nil, err
	}
	if inst.Name == "" {
		inst.Name = inst.Oscillator.ID()
	}
	inst.Kind = spec.Kind
	return inst, nil
}

func (r *Registry) ListKinds() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newOvershoot(engine *sim.Engine, spec config.OscillatorSpec, opts ...physics.Option) (*Instance, error) {
	o, err := physics.NewOvershoot(engine, opts...)
	if err != nil {
		return nil, err
	}
	cfg := physics.NewOvershootConfig(spec.Velocity, spec.Amplitude, spec.Frequency, spec.Decay)
	if err := o.SetConfig(cfg); err != nil {
		return nil, err
	}
	velocity := spec.Velocity
	return &Instance{
		Name:       spec.Name,
		Oscillator: o,
		Kick: func() error {
			o.Reset()
			return o.SetVelocityAndActivate(velocity)
		},
	}, nil
}

func newSpring(engine *sim.Engine, spec config.OscillatorSpec, opts ...physics.Option) (*Instance, error) {
	s, err := physics.NewSpring(engine, physics.SpringConfig{
		FPS:              spec.FPS,
		AngularFrequency: spec.AngularFrequency,
		Damping:          spec.Damping,
	}, opts...)
	if err != nil {
		return nil, err
	}
	target := spec.Target
	return &Instance{
		Name:       spec.Name,
		Oscillator: s,
		Kick: func() error {
			s.SetPosition(0)
			return s.SetTarget(target)
		},
	}, nil
}
