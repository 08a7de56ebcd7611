package looper

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/overshoot/internal/dynamo"
)

// FrameMsg is the bubbletea message carrying one frame.
type FrameMsg struct {
	At  time.Time
	gen int
}

// Tea paces frames through a bubbletea program. Start only arms the
// source; the model must return Pending from its Update so the next tick
// is scheduled, and hand every FrameMsg back to Handle.
type Tea struct {
	interval time.Duration

	mu        sync.Mutex
	looper    dynamo.Looper
	running   bool
	scheduled bool
	gen       int
	last      time.Time
}

func NewTea(fps int) *Tea {
	if fps <= 0 {
		fps = 60
	}
	return &Tea{interval: time.Second / time.Duration(fps)}
}

func (t *Tea) Attach(l dynamo.Looper) {
	t.mu.Lock()
	t.looper = l
	t.mu.Unlock()
}

func (t *Tea) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.running = true
	t.gen++
	t.scheduled = false
	t.last = time.Now()
}

func (t *Tea) Stop() {
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
}

func (t *Tea) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Pending returns a tick command if the source is running and no tick is
// in flight, otherwise nil.
func (t *Tea) Pending() tea.Cmd {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pendingLocked()
}

func (t *Tea) pendingLocked() tea.Cmd {
	if !t.running || t.scheduled {
		return nil
	}
	t.scheduled = true
	gen := t.gen
	return tea.Tick(t.interval, func(at time.Time) tea.Msg {
		return FrameMsg{At: at, gen: gen}
	})
}

// Handle delivers the frame to the engine and schedules the next one.
// Frames left over from an earlier Start are dropped.
func (t *Tea) Handle(msg FrameMsg) tea.Cmd {
	t.mu.Lock()
	if msg.gen != t.gen {
		t.mu.Unlock()
		return nil
	}
	t.scheduled = false
	if !t.running {
		t.mu.Unlock()
		return nil
	}
	elapsed := float64(msg.At.Sub(t.last)) / float64(time.Millisecond)
	t.last = msg.At
	l := t.looper
	t.mu.Unlock()

	if l != nil {
		l.Loop(elapsed)
	}
	return t.Pending()
}
