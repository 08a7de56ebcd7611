package physics

import (
	"github.com/san-kum/overshoot/internal/dynamo"
)

// stubHost records activation requests without running an engine.
type stubHost struct {
	ids          *dynamo.SequenceGenerator
	known        map[string]bool
	activated    []string
	deregistered []string
}

func newStubHost() *stubHost {
	return &stubHost{ids: dynamo.NewSequenceGenerator(), known: make(map[string]bool)}
}

func (h *stubHost) NextID(prefix string) string {
	id := h.ids.Generate(prefix)
	h.known[id] = true
	return id
}

func (h *stubHost) Activate(id string) error {
	if !h.known[id] {
		return dynamo.ErrUnknownID
	}
	h.activated = append(h.activated, id)
	return nil
}

func (h *stubHost) Deregister(o dynamo.Oscillator) error {
	delete(h.known, o.ID())
	h.deregistered = append(h.deregistered, o.ID())
	return nil
}

// eventLog captures listener callbacks in order.
type eventLog struct {
	name   string
	events *[]string
}

func (l *eventLog) OnUpdate(dynamo.Oscillator)         { *l.events = append(*l.events, l.name+":update") }
func (l *eventLog) OnAtRest(dynamo.Oscillator)         { *l.events = append(*l.events, l.name+":rest") }
func (l *eventLog) OnActivate(dynamo.Oscillator)       { *l.events = append(*l.events, l.name+":activate") }
func (l *eventLog) OnEndStateChange(dynamo.Oscillator) { *l.events = append(*l.events, l.name+":end") }
