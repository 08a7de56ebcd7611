package looper

import (
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/overshoot/internal/dynamo"
)

// Ticker delivers frames from its own goroutine at a fixed interval. Each
// delta is the wall-clock time since the previous callback, not the
// nominal interval.
type Ticker struct {
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu      sync.Mutex
	looper  dynamo.Looper
	running bool
	stop    chan struct{}

	// loopMu keeps a goroutine from an earlier Start from overlapping with
	// the current one.
	loopMu sync.Mutex
}

type TickerOption func(*Ticker)

// WithClock replaces time.Now for delta measurement.
func WithClock(now func() time.Time) TickerOption {
	return func(t *Ticker) { t.now = now }
}

func WithTickerLogger(l *slog.Logger) TickerOption {
	return func(t *Ticker) { t.logger = l }
}

// NewTicker creates a ticker firing fps times per second. Non-positive fps
// falls back to 60.
func NewTicker(fps int, opts ...TickerOption) *Ticker {
	if fps <= 0 {
		fps = 60
	}
	t := &Ticker{
		interval: time.Second / time.Duration(fps),
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Ticker) Interval() time.Duration { return t.interval }

func (t *Ticker) Attach(l dynamo.Looper) {
	t.mu.Lock()
	t.looper = l
	t.mu.Unlock()
}

func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.stop = make(chan struct{})
	t.logger.Debug("ticker started", "interval", t.interval)
	go t.run(t.stop, t.looper, t.now())
}

// Stop returns immediately; it does not wait for an in-flight Loop, so it
// may be called from inside one.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	t.running = false
	close(t.stop)
	t.logger.Debug("ticker stopped")
}

func (t *Ticker) run(stop <-chan struct{}, l dynamo.Looper, last time.Time) {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	for {
		select {
		case <-stop:
			return
		case <-tk.C:
		}

		t.loopMu.Lock()
		select {
		case <-stop:
			t.loopMu.Unlock()
			return
		default:
		}
		cur := t.now()
		elapsed := float64(cur.Sub(last)) / float64(time.Millisecond)
		last = cur
		if l != nil {
			l.Loop(elapsed)
		}
		t.loopMu.Unlock()
	}
}
