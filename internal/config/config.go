package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFrameRate   = 60
	DefaultFrameMillis = 16.0
	DefaultMaxFrames   = 3600
	DefaultMaxDelta    = 0.064
	DefaultRestEpsilon = 1e-5

	DefaultVelocity  = 1.0
	DefaultAmplitude = 1.0
	DefaultFrequency = 2.0
	DefaultDecay     = 3.0

	KindOvershoot = "overshoot"
	KindSpring    = "spring"

	IDSequence = "sequence"
	IDUUID     = "uuid"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config describes one headless or live run.
type Config struct {
	FrameRate   int              `yaml:"frame_rate"`
	FrameMillis float64          `yaml:"frame_millis"`
	MaxFrames   int              `yaml:"max_frames"`
	MaxDelta    float64          `yaml:"max_delta"`
	RestEpsilon float64          `yaml:"rest_epsilon"`
	IDScheme    string           `yaml:"id_scheme"`
	Oscillators []OscillatorSpec `yaml:"oscillators"`
}

// OscillatorSpec configures one oscillator. Overshoot kinds read Velocity
// through Decay; spring kinds read FPS through Target.
type OscillatorSpec struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name,omitempty"`

	Velocity  float64 `yaml:"velocity,omitempty"`
	Amplitude float64 `yaml:"amplitude,omitempty"`
	Frequency float64 `yaml:"frequency,omitempty"`
	Decay     float64 `yaml:"decay,omitempty"`

	FPS              int     `yaml:"fps,omitempty"`
	AngularFrequency float64 `yaml:"angular_frequency,omitempty"`
	Damping          float64 `yaml:"damping,omitempty"`
	Target           float64 `yaml:"target,omitempty"`
}

func DefaultOscillator() OscillatorSpec {
	return OscillatorSpec{
		Kind:      KindOvershoot,
		Velocity:  DefaultVelocity,
		Amplitude: DefaultAmplitude,
		Frequency: DefaultFrequency,
		Decay:     DefaultDecay,
	}
}

func DefaultConfig() *Config {
	return &Config{
		FrameRate:   DefaultFrameRate,
		FrameMillis: DefaultFrameMillis,
		MaxFrames:   DefaultMaxFrames,
		MaxDelta:    DefaultMaxDelta,
		RestEpsilon: DefaultRestEpsilon,
		IDScheme:    IDSequence,
		Oscillators: []OscillatorSpec{DefaultOscillator()},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Oscillators = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Oscillators) == 0 {
		cfg.Oscillators = []OscillatorSpec{DefaultOscillator()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks run-level settings. Oscillator parameters are taken as
// given, including zero and negative values.
func (c *Config) Validate() error {
	switch {
	case c.FrameRate <= 0:
		return fmt.Errorf("%w: frame_rate must be positive, got %d", ErrInvalidConfig, c.FrameRate)
	case c.FrameMillis <= 0:
		return fmt.Errorf("%w: frame_millis must be positive, got %v", ErrInvalidConfig, c.FrameMillis)
	case c.MaxFrames <= 0:
		return fmt.Errorf("%w: max_frames must be positive, got %d", ErrInvalidConfig, c.MaxFrames)
	case c.MaxDelta <= 0:
		return fmt.Errorf("%w: max_delta must be positive, got %v", ErrInvalidConfig, c.MaxDelta)
	case c.RestEpsilon <= 0:
		return fmt.Errorf("%w: rest_epsilon must be positive, got %v", ErrInvalidConfig, c.RestEpsilon)
	}
	if c.IDScheme != IDSequence && c.IDScheme != IDUUID {
		return fmt.Errorf("%w: unknown id_scheme %q", ErrInvalidConfig, c.IDScheme)
	}
	for i, o := range c.Oscillators {
		switch o.Kind {
		case KindOvershoot:
		case KindSpring:
			if o.FPS <= 0 {
				return fmt.Errorf("%w: oscillator %d: spring fps must be positive", ErrInvalidConfig, i)
			}
		default:
			return fmt.Errorf("%w: oscillator %d: unknown kind %q", ErrInvalidConfig, i, o.Kind)
		}
	}
	return nil
}
