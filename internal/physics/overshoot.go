package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/overshoot/internal/dynamo"
)

const (
	// RestingValue marks an overshoot oscillator as at rest. The comparison
	// against it is exact.
	RestingValue = 1000.0

	// DefaultRestEpsilon is the magnitude below which a moving oscillator is
	// dropped from the active set.
	DefaultRestEpsilon = 1e-5

	// DefaultMaxDeltaSeconds caps the time simulated per tick (4 frames at 60 FPS).
	DefaultMaxDeltaSeconds = 0.064

	overshootPrefix = "over"
)

// OvershootConfig holds the parameters of the damped sinusoid. Fields are
// read on every tick, so changes take effect on the next Advance.
type OvershootConfig struct {
	Velocity  float64 `yaml:"velocity" json:"velocity"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
	Frequency float64 `yaml:"frequency" json:"frequency"`
	Decay     float64 `yaml:"decay" json:"decay"`
}

func NewOvershootConfig(velocity, amplitude, frequency, decay float64) *OvershootConfig {
	return &OvershootConfig{
		Velocity:  velocity,
		Amplitude: amplitude,
		Frequency: frequency,
		Decay:     decay,
	}
}

// Overshoot evaluates velocity*amplitude*sin(2*pi*frequency*T)/exp(decay*T)
// once per tick, where T is the clamped time accumulated since the last
// Reset.
type Overshoot struct {
	host      dynamo.Host
	id        string
	cfg       *OvershootConfig
	elapsed   float64
	value     float64
	previous  float64
	listeners dynamo.Set[dynamo.Listener]
	tuning
}

// NewOvershoot creates an oscillator at rest with a zero config. It still
// has to be registered with the host's Create before it can be activated.
func NewOvershoot(host dynamo.Host, opts ...Option) (*Overshoot, error) {
	if host == nil {
		return nil, fmt.Errorf("%w: overshoot requires a host engine", dynamo.ErrInvalidArgument)
	}
	o := &Overshoot{
		host:   host,
		id:     host.NextID(overshootPrefix),
		cfg:    &OvershootConfig{},
		value:  RestingValue,
		tuning: newTuning(opts),
	}
	return o, nil
}

func (o *Overshoot) ID() string { return o.id }

func (o *Overshoot) Config() *OvershootConfig { return o.cfg }

func (o *Overshoot) SetConfig(cfg *OvershootConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: overshoot config is required", dynamo.ErrInvalidArgument)
	}
	o.cfg = cfg
	return nil
}

// SetVelocityAndActivate stores v in the config, asks the host to activate
// this oscillator and notifies listeners of an update straight away, before
// any tick has recomputed the value.
func (o *Overshoot) SetVelocityAndActivate(v float64) error {
	o.cfg.Velocity = v
	if err := o.host.Activate(o.id); err != nil {
		return &dynamo.OscillatorError{ID: o.id, Op: "activate", Wrapped: err}
	}
	for _, l := range o.listeners.Snapshot() {
		l.OnUpdate(o)
	}
	return nil
}

// Reset rewinds the time accumulator and puts the oscillator back at rest.
// Registration and listeners are untouched.
func (o *Overshoot) Reset() {
	o.elapsed = 0
	o.value = RestingValue
}

func (o *Overshoot) Value() float64 { return o.value }

func (o *Overshoot) PreviousValue() float64 { return o.previous }

// Elapsed returns the accumulated simulated time in seconds.
func (o *Overshoot) Elapsed() float64 { return o.elapsed }

func (o *Overshoot) IsAtRest() bool {
	return o.value == RestingValue
}

// SystemShouldAdvance keeps a resting oscillator eligible so its rest
// notification fires on the next tick.
func (o *Overshoot) SystemShouldAdvance() bool {
	if o.IsAtRest() {
		return true
	}
	return math.Abs(o.value) > o.restEpsilon
}

func (o *Overshoot) Advance(deltaSeconds float64) {
	wasAtRest := o.IsAtRest()
	if wasAtRest {
		o.value = 0
	}

	o.elapsed += o.clamp(deltaSeconds)

	cfg := o.cfg
	t := o.elapsed
	next := cfg.Velocity * cfg.Amplitude * math.Sin(cfg.Frequency*2*t*math.Pi) / math.Exp(cfg.Decay*t)

	o.previous = o.value
	o.value = next

	// Activation is reported by the engine's bookkeeping, never by a tick.
	notifyActivate := false
	for _, l := range o.listeners.Snapshot() {
		if notifyActivate {
			l.OnActivate(o)
		}
		l.OnUpdate(o)
		if wasAtRest {
			l.OnAtRest(o)
		}
	}
}

func (o *Overshoot) AddListener(l dynamo.Listener) error {
	if l == nil {
		return fmt.Errorf("%w: listener is required", dynamo.ErrInvalidArgument)
	}
	o.listeners.Add(l)
	return nil
}

func (o *Overshoot) RemoveListener(l dynamo.Listener) error {
	if l == nil {
		return fmt.Errorf("%w: listener to remove is required", dynamo.ErrInvalidArgument)
	}
	o.listeners.Remove(l)
	return nil
}

func (o *Overshoot) RemoveAllListeners() {
	o.listeners.Clear()
}

// Destroy clears listeners and deregisters the oscillator. It must not be
// used afterwards.
func (o *Overshoot) Destroy() error {
	o.listeners.Clear()
	return o.host.Deregister(o)
}
