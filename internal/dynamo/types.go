package dynamo

// Oscillator is a numeric value animated frame by frame. The engine only
// needs this capability set; concrete variants live in package physics.
type Oscillator interface {
	ID() string
	Value() float64
	// SystemShouldAdvance reports whether the engine should keep the
	// oscillator in its active set for the next tick.
	SystemShouldAdvance() bool
	// Advance moves the oscillator forward by deltaSeconds of wall time.
	Advance(deltaSeconds float64)
	AddListener(l Listener) error
	RemoveListener(l Listener) error
}

// Host is the non-owning handle an oscillator keeps to the engine that
// registered it.
type Host interface {
	Activate(id string) error
	Deregister(o Oscillator) error
	NextID(prefix string) string
}

// Listener receives per-oscillator notifications. Callbacks run on the
// frame source goroutine, or on the caller's goroutine for notifications
// triggered by setters.
type Listener interface {
	OnUpdate(o Oscillator)
	OnAtRest(o Oscillator)
	OnActivate(o Oscillator)
	OnEndStateChange(o Oscillator)
}

// ListenerAdapter implements Listener with no-ops. Embed it to override
// only the callbacks you need.
type ListenerAdapter struct{}

func (ListenerAdapter) OnUpdate(Oscillator)         {}
func (ListenerAdapter) OnAtRest(Oscillator)         {}
func (ListenerAdapter) OnActivate(Oscillator)       {}
func (ListenerAdapter) OnEndStateChange(Oscillator) {}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
// Register it by pointer so it can be removed again.
type ListenerFuncs struct {
	Update         func(Oscillator)
	AtRest         func(Oscillator)
	Activate       func(Oscillator)
	EndStateChange func(Oscillator)
}

func (f *ListenerFuncs) OnUpdate(o Oscillator) {
	if f.Update != nil {
		f.Update(o)
	}
}

func (f *ListenerFuncs) OnAtRest(o Oscillator) {
	if f.AtRest != nil {
		f.AtRest(o)
	}
}

func (f *ListenerFuncs) OnActivate(o Oscillator) {
	if f.Activate != nil {
		f.Activate(o)
	}
}

func (f *ListenerFuncs) OnEndStateChange(o Oscillator) {
	if f.EndStateChange != nil {
		f.EndStateChange(o)
	}
}

// Looper is the per-frame entry point a frame source drives.
type Looper interface {
	Loop(elapsedMillis float64)
}

// FrameSource delivers Loop callbacks at some cadence while started.
// Start and Stop must be idempotent, and Stop must be safe to call from
// inside a Loop callback.
type FrameSource interface {
	Attach(l Looper)
	Start()
	Stop()
}

// Metric accumulates a scalar over the samples of a run.
type Metric interface {
	Name() string
	Observe(id string, value float64, t float64)
	Value() float64
	Reset()
}

// Result is a recorded run: one row of values per frame, one column per
// oscillator id.
type Result struct {
	IDs     []string
	Times   []float64
	Values  [][]float64
	Frames  int
	Metrics map[string]float64
}

// Column returns the recorded values for one oscillator, or nil.
func (r *Result) Column(id string) []float64 {
	idx := -1
	for i, v := range r.IDs {
		if v == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	col := make([]float64, len(r.Values))
	for i, row := range r.Values {
		col[i] = row[idx]
	}
	return col
}
