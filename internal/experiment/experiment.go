package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/overshoot/internal/config"
	"github.com/san-kum/overshoot/internal/dynamo"
	"github.com/san-kum/overshoot/internal/looper"
	"github.com/san-kum/overshoot/internal/metrics"
	"github.com/san-kum/overshoot/internal/physics"
	"github.com/san-kum/overshoot/internal/sim"
)

// DefaultSettleBand is the displacement below which a run counts as
// settled for the settle_time metric.
const DefaultSettleBand = 0.01

// Experiment wires a config into an engine, its oscillators and a
// recorder.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	logger    *slog.Logger
	source    dynamo.FrameSource
	metrics   []dynamo.Metric
	engine    *sim.Engine
	recorder  *sim.Recorder
	instances []*Instance
}

type Option func(*Experiment)

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

// WithSource replaces the default manual frame source. Run only works with
// a *looper.Manual; other sources drive the engine themselves.
func WithSource(src dynamo.FrameSource) Option {
	return func(e *Experiment) { e.source = src }
}

func WithMetrics(m ...dynamo.Metric) Option {
	return func(e *Experiment) { e.metrics = m }
}

func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   slog.Default(),
		source:   looper.NewManual(),
		metrics:  metrics.Defaults(DefaultSettleBand),
	}
	for _, opt := range opts {
		opt(e)
	}

	var ids dynamo.IDGenerator = dynamo.NewSequenceGenerator()
	if cfg.IDScheme == config.IDUUID {
		ids = dynamo.UUIDGenerator{}
	}
	engine, err := sim.New(e.source, sim.WithIDGenerator(ids), sim.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	e.engine = engine
	e.recorder = sim.NewRecorder(e.metrics...)
	if err := engine.AddListener(e.recorder); err != nil {
		return nil, err
	}

	physOpts := []physics.Option{
		physics.WithMaxDelta(cfg.MaxDelta),
		physics.WithRestEpsilon(cfg.RestEpsilon),
	}
	for i, spec := range cfg.Oscillators {
		inst, err := e.registry.Build(engine, spec, physOpts...)
		if err != nil {
			return nil, fmt.Errorf("oscillator %d: %w", i, err)
		}
		e.instances = append(e.instances, inst)
	}
	return e, nil
}

func (e *Experiment) Engine() *sim.Engine { return e.engine }

func (e *Experiment) Recorder() *sim.Recorder { return e.recorder }

func (e *Experiment) Instances() []*Instance { return e.instances }

func (e *Experiment) Config() *config.Config { return e.cfg }

// Kick resets the recording and sets every oscillator in motion.
func (e *Experiment) Kick() error {
	e.recorder.Reset()
	for _, inst := range e.instances {
		if err := inst.Kick(); err != nil {
			return err
		}
	}
	return nil
}

// Run kicks every oscillator and steps the manual source with the
// configured frame delta until the engine idles, MaxFrames is reached or
// ctx is done.
func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	manual, ok := e.source.(*looper.Manual)
	if !ok {
		return nil, fmt.Errorf("experiment: Run needs a manual frame source, have %T", e.source)
	}
	if err := e.Kick(); err != nil {
		return nil, err
	}

	frames := 0
	for frames < e.cfg.MaxFrames {
		if err := ctx.Err(); err != nil {
			return e.recorder.Result(), err
		}
		if !manual.Step(e.cfg.FrameMillis) {
			break
		}
		frames++
	}

	res := e.recorder.Result()
	e.logger.Info("run finished",
		"oscillators", len(e.instances),
		"frames", res.Frames,
		"idle", e.engine.IsIdle(),
	)
	return res, nil
}
