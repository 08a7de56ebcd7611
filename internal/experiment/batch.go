package experiment

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/overshoot/internal/config"
	"github.com/san-kum/overshoot/internal/dynamo"
)

// RunBatch runs every config headlessly, each on its own engine, at most
// workers at a time. Results keep the order of cfgs. The first error in
// cfgs order is returned. Runs still waiting for a worker when ctx is done
// are skipped and report ctx.Err(). Every run builds its own metrics, so opts must
// not carry WithMetrics.
func RunBatch(ctx context.Context, cfgs []*config.Config, workers int, opts ...Option) ([]*dynamo.Result, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]*dynamo.Result, len(cfgs))
	errs := make([]error, len(cfgs))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, cfg := range cfgs {
		wg.Add(1)
		go func(idx int, cfg *config.Config) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			}
			defer func() { <-sem }()
			// Both cases may be ready at once; a cancelled ctx wins.
			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}

			exp, err := New(cfg, opts...)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = exp.Run(ctx)
		}(i, cfg)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
	}
	return results, nil
}

// SweepPoint is one parameter value and the metrics it produced.
type SweepPoint struct {
	Param   float64
	Metrics map[string]float64
}

// Sweep sets param on every overshoot oscillator of base to each value in
// turn and runs the variants as a batch. param is one of velocity,
// amplitude, frequency or decay.
func Sweep(ctx context.Context, base *config.Config, param string, values []float64, workers int, opts ...Option) ([]SweepPoint, error) {
	cfgs := make([]*config.Config, len(values))
	for i, v := range values {
		cfg := *base
		cfg.Oscillators = append([]config.OscillatorSpec(nil), base.Oscillators...)
		for j := range cfg.Oscillators {
			if cfg.Oscillators[j].Kind != config.KindOvershoot {
				continue
			}
			if err := setParam(&cfg.Oscillators[j], param, v); err != nil {
				return nil, err
			}
		}
		cfgs[i] = &cfg
	}

	results, err := RunBatch(ctx, cfgs, workers, opts...)
	if err != nil {
		return nil, err
	}
	points := make([]SweepPoint, len(values))
	for i, res := range results {
		points[i] = SweepPoint{Param: values[i], Metrics: res.Metrics}
	}
	return points, nil
}

func setParam(spec *config.OscillatorSpec, param string, v float64) error {
	switch param {
	case "velocity":
		spec.Velocity = v
	case "amplitude":
		spec.Amplitude = v
	case "frequency":
		spec.Frequency = v
	case "decay":
		spec.Decay = v
	default:
		return fmt.Errorf("unknown sweep parameter: %s", param)
	}
	return nil
}
