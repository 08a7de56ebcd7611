package sim

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/san-kum/overshoot/internal/dynamo"
)

// Engine owns a registry of oscillators, advances the active ones on every
// frame and starts or stops its frame source as activity comes and goes.
//
// Thread-safety model:
//   - Loop: called only by the frame source, serially
//   - Activate, Create, Deregister, listener mutation: safe from any goroutine
//   - the active set and listener sets are copy-on-write; a change made
//     while Loop iterates may or may not be seen by that pass
type Engine struct {
	mu       sync.RWMutex
	registry map[string]dynamo.Oscillator
	order    []string

	active    dynamo.Set[dynamo.Oscillator]
	listeners dynamo.Set[SystemListener]

	source dynamo.FrameSource
	ids    dynamo.IDGenerator
	logger *slog.Logger

	// stateMu serialises idle transitions against the frame source.
	stateMu sync.Mutex
	idle    bool
	frames  int64
	elapsed float64
	last    float64
}

type Option func(*Engine)

// WithIDGenerator replaces the default per-engine sequence generator.
func WithIDGenerator(g dynamo.IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an idle engine and attaches it to source, which the engine
// owns from then on.
func New(source dynamo.FrameSource, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: frame source is required", dynamo.ErrInvalidArgument)
	}
	e := &Engine{
		registry: make(map[string]dynamo.Oscillator),
		source:   source,
		ids:      dynamo.NewSequenceGenerator(),
		logger:   slog.Default(),
		idle:     true,
	}
	for _, opt := range opts {
		opt(e)
	}
	source.Attach(e)
	return e, nil
}

func (e *Engine) IsIdle() bool {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.idle
}

// Frames returns the number of Loop calls so far.
func (e *Engine) Frames() int64 {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.frames
}

// ElapsedMillis returns the sum of all deltas passed to Loop.
func (e *Engine) ElapsedMillis() float64 {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.elapsed
}

// LastFrameMillis returns the delta passed to the most recent Loop call.
func (e *Engine) LastFrameMillis() float64 {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.last
}

func (e *Engine) ActiveCount() int {
	return e.active.Len()
}

// NextID allocates an oscillator id from the engine's generator.
func (e *Engine) NextID(prefix string) string {
	return e.ids.Generate(prefix)
}

// Create registers an oscillator built against this engine.
func (e *Engine) Create(o dynamo.Oscillator) error {
	if o == nil {
		return fmt.Errorf("%w: oscillator is required", dynamo.ErrInvalidArgument)
	}
	id := o.ID()

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.registry[id]; ok {
		return fmt.Errorf("%w: %s", dynamo.ErrDuplicateID, id)
	}
	e.registry[id] = o
	e.order = append(e.order, id)
	return nil
}

// GetByID returns the registered oscillator or ErrUnknownID.
func (e *Engine) GetByID(id string) (dynamo.Oscillator, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", dynamo.ErrInvalidArgument)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	o, ok := e.registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownID, id)
	}
	return o, nil
}

// All returns a snapshot of every registered oscillator in registration
// order.
func (e *Engine) All() []dynamo.Oscillator {
	e.mu.RLock()
	defer e.mu.RUnlock()
	all := make([]dynamo.Oscillator, 0, len(e.order))
	for _, id := range e.order {
		all = append(all, e.registry[id])
	}
	return all
}

// Deregister drops an oscillator from the registry and the active set.
func (e *Engine) Deregister(o dynamo.Oscillator) error {
	if o == nil {
		return fmt.Errorf("%w: oscillator is required", dynamo.ErrInvalidArgument)
	}
	e.active.Remove(o)

	id := o.ID()
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.registry[id]; !ok {
		return nil
	}
	delete(e.registry, id)
	if i := slices.Index(e.order, id); i >= 0 {
		e.order = slices.Delete(e.order, i, i+1)
	}
	return nil
}

// Activate adds a registered oscillator to the active set and starts the
// frame source if the engine was idle.
func (e *Engine) Activate(id string) error {
	e.mu.RLock()
	o, ok := e.registry[id]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownID, id)
	}

	e.active.Add(o)

	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	if e.idle {
		e.idle = false
		e.logger.Debug("engine running", "trigger", id)
		e.source.Start()
	}
	return nil
}

// Loop advances every active oscillator by elapsedMillis and stops the
// frame source once nothing is left to advance.
func (e *Engine) Loop(elapsedMillis float64) {
	e.stateMu.Lock()
	e.frames++
	e.elapsed += elapsedMillis
	e.last = elapsedMillis
	e.stateMu.Unlock()

	for _, l := range e.listeners.Snapshot() {
		l.OnBeforeIntegrate(e)
	}

	e.advance(elapsedMillis)

	e.stateMu.Lock()
	if e.active.Len() == 0 {
		e.idle = true
	}
	e.stateMu.Unlock()

	for _, l := range e.listeners.Snapshot() {
		l.OnAfterIntegrate(e)
	}

	// An Activate from a listener or another goroutine may have cleared
	// idle again since the check above.
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	if e.idle {
		e.logger.Debug("engine idle", "frames", e.frames, "elapsed_ms", e.elapsed)
		e.source.Stop()
	}
}

func (e *Engine) advance(elapsedMillis float64) {
	for _, o := range e.active.Snapshot() {
		if o.SystemShouldAdvance() {
			o.Advance(elapsedMillis / 1000.0)
		} else {
			e.active.Remove(o)
		}
	}
}

func (e *Engine) AddListener(l SystemListener) error {
	if l == nil {
		return fmt.Errorf("%w: listener is required", dynamo.ErrInvalidArgument)
	}
	e.listeners.Add(l)
	return nil
}

func (e *Engine) RemoveListener(l SystemListener) error {
	if l == nil {
		return fmt.Errorf("%w: listener to remove is required", dynamo.ErrInvalidArgument)
	}
	e.listeners.Remove(l)
	return nil
}

func (e *Engine) RemoveAllListeners() {
	e.listeners.Clear()
}
