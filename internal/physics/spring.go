package physics

import (
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/san-kum/overshoot/internal/dynamo"
)

const (
	DefaultSpringFPS       = 60
	DefaultSpringFrequency = 6.0
	DefaultSpringDamping   = 0.5

	springPrefix = "spring"
)

type SpringConfig struct {
	FPS              int     `yaml:"fps" json:"fps"`
	AngularFrequency float64 `yaml:"angular_frequency" json:"angular_frequency"`
	Damping          float64 `yaml:"damping" json:"damping"`
}

func DefaultSpringConfig() SpringConfig {
	return SpringConfig{
		FPS:              DefaultSpringFPS,
		AngularFrequency: DefaultSpringFrequency,
		Damping:          DefaultSpringDamping,
	}
}

// Spring chases a target position with a damped harmonic spring stepped at
// a fixed rate. Leftover time below one step carries into the next tick.
type Spring struct {
	host      dynamo.Host
	id        string
	cfg       SpringConfig
	spring    harmonica.Spring
	step      float64
	carry     float64
	pos       float64
	vel       float64
	target    float64
	resting   bool
	waking    bool
	listeners dynamo.Set[dynamo.Listener]
	tuning
}

func NewSpring(host dynamo.Host, cfg SpringConfig, opts ...Option) (*Spring, error) {
	if host == nil {
		return nil, fmt.Errorf("%w: spring requires a host engine", dynamo.ErrInvalidArgument)
	}
	if cfg.FPS <= 0 {
		return nil, fmt.Errorf("%w: spring fps must be positive, got %d", dynamo.ErrInvalidArgument, cfg.FPS)
	}
	step := harmonica.FPS(cfg.FPS)
	return &Spring{
		host:    host,
		id:      host.NextID(springPrefix),
		cfg:     cfg,
		spring:  harmonica.NewSpring(step, cfg.AngularFrequency, cfg.Damping),
		step:    step,
		resting: true,
		tuning:  newTuning(opts),
	}, nil
}

func (s *Spring) ID() string { return s.id }

func (s *Spring) Config() SpringConfig { return s.cfg }

func (s *Spring) Value() float64 { return s.pos }

func (s *Spring) Velocity() float64 { return s.vel }

func (s *Spring) Target() float64 { return s.target }

func (s *Spring) IsAtRest() bool { return s.resting }

// SetPosition jumps to p and settles there.
func (s *Spring) SetPosition(p float64) {
	s.pos = p
	s.target = p
	s.vel = 0
	s.carry = 0
	s.resting = true
	for _, l := range s.listeners.Snapshot() {
		l.OnUpdate(s)
	}
}

// SetTarget moves the equilibrium point and activates the spring. Setting
// the current target again is a no-op. The spring is left untouched when
// the host refuses activation.
func (s *Spring) SetTarget(target float64) error {
	if target == s.target {
		return nil
	}
	if err := s.host.Activate(s.id); err != nil {
		return &dynamo.OscillatorError{ID: s.id, Op: "activate", Wrapped: err}
	}
	s.target = target
	if s.resting {
		s.resting = false
		s.waking = true
	}
	for _, l := range s.listeners.Snapshot() {
		l.OnEndStateChange(s)
	}
	return nil
}

func (s *Spring) SystemShouldAdvance() bool {
	return !s.resting
}

func (s *Spring) Advance(deltaSeconds float64) {
	s.carry += s.clamp(deltaSeconds)
	for s.carry >= s.step {
		s.pos, s.vel = s.spring.Update(s.pos, s.vel, s.target)
		s.carry -= s.step
	}

	settled := math.Abs(s.vel) <= s.restEpsilon && math.Abs(s.target-s.pos) <= s.restEpsilon
	if settled {
		s.pos = s.target
		s.vel = 0
		s.carry = 0
	}

	waking := s.waking
	s.waking = false
	s.resting = settled
	for _, l := range s.listeners.Snapshot() {
		if waking {
			l.OnActivate(s)
		}
		l.OnUpdate(s)
		if settled {
			l.OnAtRest(s)
		}
	}
}

func (s *Spring) AddListener(l dynamo.Listener) error {
	if l == nil {
		return fmt.Errorf("%w: listener is required", dynamo.ErrInvalidArgument)
	}
	s.listeners.Add(l)
	return nil
}

func (s *Spring) RemoveListener(l dynamo.Listener) error {
	if l == nil {
		return fmt.Errorf("%w: listener to remove is required", dynamo.ErrInvalidArgument)
	}
	s.listeners.Remove(l)
	return nil
}

func (s *Spring) RemoveAllListeners() {
	s.listeners.Clear()
}

func (s *Spring) Destroy() error {
	s.listeners.Clear()
	return s.host.Deregister(s)
}
