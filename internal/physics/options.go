package physics

// tuning holds the knobs shared by every oscillator variant.
type tuning struct {
	maxDelta    float64
	restEpsilon float64
}

// Option tunes an oscillator at construction.
type Option func(*tuning)

// WithMaxDelta overrides DefaultMaxDeltaSeconds.
func WithMaxDelta(seconds float64) Option {
	return func(t *tuning) { t.maxDelta = seconds }
}

// WithRestEpsilon overrides DefaultRestEpsilon.
func WithRestEpsilon(eps float64) Option {
	return func(t *tuning) { t.restEpsilon = eps }
}

func newTuning(opts []Option) tuning {
	t := tuning{
		maxDelta:    DefaultMaxDeltaSeconds,
		restEpsilon: DefaultRestEpsilon,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func (t tuning) clamp(deltaSeconds float64) float64 {
	if deltaSeconds > t.maxDelta {
		return t.maxDelta
	}
	return deltaSeconds
}
