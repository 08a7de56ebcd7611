package looper

import (
	"sync"

	"github.com/san-kum/overshoot/internal/dynamo"
)

// Manual is a frame source driven by explicit Step calls. It counts every
// Start and Stop call it receives.
type Manual struct {
	mu      sync.Mutex
	looper  dynamo.Looper
	running bool
	starts  int
	stops   int
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Attach(l dynamo.Looper) {
	m.mu.Lock()
	m.looper = l
	m.mu.Unlock()
}

func (m *Manual) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts++
	m.running = true
}

func (m *Manual) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	m.running = false
}

func (m *Manual) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Starts returns how many times Start has been called.
func (m *Manual) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

// Stops returns how many times Stop has been called.
func (m *Manual) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// Step delivers one frame of elapsedMillis if the source is running and
// reports whether it did.
func (m *Manual) Step(elapsedMillis float64) bool {
	m.mu.Lock()
	l, running := m.looper, m.running
	m.mu.Unlock()
	if !running || l == nil {
		return false
	}
	l.Loop(elapsedMillis)
	return true
}

// RunUntilStopped steps with a fixed delta until the source stops or
// maxFrames frames have been delivered. It returns the frame count.
func (m *Manual) RunUntilStopped(frameMillis float64, maxFrames int) int {
	n := 0
	for n < maxFrames && m.Step(frameMillis) {
		n++
	}
	return n
}
