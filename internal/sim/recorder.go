package sim

import (
	"sync"

	"github.com/san-kum/overshoot/internal/dynamo"
)

// Recorder is a SystemListener that samples every registered oscillator
// after each integrate step. Oscillators registered mid-run get a new
// column; earlier rows hold zero for it. Sample times count from the last
// Reset, not from the engine's first frame.
type Recorder struct {
	mu      sync.Mutex
	clock   float64
	ids     []string
	index   map[string]int
	times   []float64
	values  [][]float64
	metrics []dynamo.Metric
}

func NewRecorder(metrics ...dynamo.Metric) *Recorder {
	r := &Recorder{index: make(map[string]int)}
	r.metrics = append(r.metrics, metrics...)
	return r
}

func (r *Recorder) OnBeforeIntegrate(*Engine) {}

func (r *Recorder) OnAfterIntegrate(e *Engine) {
	delta := e.LastFrameMillis()
	all := e.All()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.clock += delta
	t := r.clock / 1000.0

	for _, o := range all {
		if _, ok := r.index[o.ID()]; !ok {
			r.index[o.ID()] = len(r.ids)
			r.ids = append(r.ids, o.ID())
			for i := range r.values {
				r.values[i] = append(r.values[i], 0)
			}
		}
	}

	row := make([]float64, len(r.ids))
	for _, o := range all {
		v := o.Value()
		row[r.index[o.ID()]] = v
		for _, m := range r.metrics {
			m.Observe(o.ID(), v, t)
		}
	}
	r.times = append(r.times, t)
	r.values = append(r.values, row)
}

// Result copies what has been recorded so far.
func (r *Recorder) Result() *dynamo.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := &dynamo.Result{
		IDs:     append([]string(nil), r.ids...),
		Times:   append([]float64(nil), r.times...),
		Values:  make([][]float64, len(r.values)),
		Frames:  len(r.times),
		Metrics: make(map[string]float64, len(r.metrics)),
	}
	for i, row := range r.values {
		res.Values[i] = append([]float64(nil), row...)
	}
	for _, m := range r.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res
}

// Reset drops recorded samples, restarts the sample clock at zero and resets
// every metric.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clock = 0
	r.ids = nil
	r.index = make(map[string]int)
	r.times = nil
	r.values = nil
	for _, m := range r.metrics {
		m.Reset()
	}
}
