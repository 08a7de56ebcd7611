package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/overshoot/internal/dynamo"
)

func newTestOvershoot(t *testing.T, cfg *OvershootConfig, opts ...Option) (*Overshoot, *stubHost) {
	t.Helper()
	host := newStubHost()
	o, err := NewOvershoot(host, opts...)
	if err != nil {
		t.Fatalf("NewOvershoot: %v", err)
	}
	if cfg != nil {
		if err := o.SetConfig(cfg); err != nil {
			t.Fatalf("SetConfig: %v", err)
		}
	}
	return o, host
}

func closedForm(v, amp, freq, decay, t float64) float64 {
	return v * amp * math.Sin(freq*2*t*math.Pi) / math.Exp(decay*t)
}

func TestNewOvershoot_RequiresHost(t *testing.T) {
	_, err := NewOvershoot(nil)
	if !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("NewOvershoot(nil) error = %v, want ErrInvalidArgument", err)
	}
}

func TestNewOvershoot_StartsAtRest(t *testing.T) {
	o, _ := newTestOvershoot(t, nil)

	if !o.IsAtRest() {
		t.Error("new oscillator should be at rest")
	}
	if o.Value() != RestingValue {
		t.Errorf("Value() = %v, want %v", o.Value(), RestingValue)
	}
	if o.ID() != "over:0" {
		t.Errorf("ID() = %q, want over:0", o.ID())
	}
}

func TestOvershoot_ClosedForm(t *testing.T) {
	tests := []struct {
		name                string
		v, amp, freq, decay float64
		deltas              []float64
	}{
		{"unit", 1, 1, 1, 1, []float64{0.01}},
		{"several ticks", 2, 0.5, 1.5, 3, []float64{0.016, 0.016, 0.017, 0.015}},
		{"negative velocity", -4, 1, 2, 0.5, []float64{0.03, 0.03}},
		{"no decay", 1, 3, 0.25, 0, []float64{0.05, 0.05, 0.05}},
		{"zero amplitude", 1, 0, 1, 1, []float64{0.02}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, _ := newTestOvershoot(t, NewOvershootConfig(tt.v, tt.amp, tt.freq, tt.decay))

			elapsed := 0.0
			for _, d := range tt.deltas {
				o.Advance(d)
				elapsed += d
			}

			want := closedForm(tt.v, tt.amp, tt.freq, tt.decay, elapsed)
			if math.Abs(o.Value()-want) > 1e-12 {
				t.Errorf("Value() = %.15f, want %.15f", o.Value(), want)
			}
			if math.Abs(o.Elapsed()-elapsed) > 1e-12 {
				t.Errorf("Elapsed() = %v, want %v", o.Elapsed(), elapsed)
			}
		})
	}
}

func TestOvershoot_SingleTickScenario(t *testing.T) {
	o, _ := newTestOvershoot(t, NewOvershootConfig(1, 1, 1, 1))

	o.Advance(0.01)

	want := math.Sin(2*0.01*math.Pi) / math.Exp(0.01)
	if math.Abs(o.Value()-want) > 1e-12 {
		t.Errorf("Value() = %v, want %v", o.Value(), want)
	}
	if math.Abs(o.Value()-0.0624) > 1e-3 {
		t.Errorf("Value() = %v, want ~0.0624", o.Value())
	}
	// Waking from rest zeroes the value before it is recorded as previous.
	if o.PreviousValue() != 0 {
		t.Errorf("PreviousValue() = %v, want 0", o.PreviousValue())
	}

	before := o.Value()
	o.Advance(0.01)
	if o.PreviousValue() != before {
		t.Errorf("PreviousValue() = %v, want %v", o.PreviousValue(), before)
	}
}

func TestOvershoot_DeltaClamp(t *testing.T) {
	big, _ := newTestOvershoot(t, NewOvershootConfig(1, 1, 1, 1))
	exact, _ := newTestOvershoot(t, NewOvershootConfig(1, 1, 1, 1))

	big.Advance(1.0)
	exact.Advance(DefaultMaxDeltaSeconds)

	if big.Elapsed() != exact.Elapsed() {
		t.Errorf("Elapsed() after 1s = %v, want %v", big.Elapsed(), exact.Elapsed())
	}
	if big.Value() != exact.Value() {
		t.Errorf("Value() after 1s = %v, want %v", big.Value(), exact.Value())
	}
}

func TestOvershoot_CustomMaxDelta(t *testing.T) {
	o, _ := newTestOvershoot(t, NewOvershootConfig(1, 1, 1, 1), WithMaxDelta(0.1))

	o.Advance(0.5)
	if o.Elapsed() != 0.1 {
		t.Errorf("Elapsed() = %v, want 0.1", o.Elapsed())
	}
}

func TestOvershoot_Reset(t *testing.T) {
	o, _ := newTestOvershoot(t, NewOvershootConfig(1, 1, 1, 1))
	o.Advance(0.02)
	o.Advance(0.02)

	o.Reset()

	if !o.IsAtRest() {
		t.Error("IsAtRest() = false after Reset")
	}
	if o.Value() != RestingValue {
		t.Errorf("Value() = %v, want %v", o.Value(), RestingValue)
	}
	if o.Elapsed() != 0 {
		t.Errorf("Elapsed() = %v, want 0", o.Elapsed())
	}
}

func TestOvershoot_IsAtRestIsExact(t *testing.T) {
	o, _ := newTestOvershoot(t, nil)

	tests := []struct {
		value float64
		rest  bool
	}{
		{RestingValue, true},
		{math.Nextafter(RestingValue, 0), false},
		{math.Nextafter(RestingValue, 2000), false},
		{0, false},
	}
	for _, tt := range tests {
		o.value = tt.value
		if got := o.IsAtRest(); got != tt.rest {
			t.Errorf("IsAtRest() with value %v = %v, want %v", tt.value, got, tt.rest)
		}
	}
}

func TestOvershoot_SystemShouldAdvance(t *testing.T) {
	o, _ := newTestOvershoot(t, nil)

	tests := []struct {
		name  string
		value float64
		want  bool
	}{
		{"at rest", RestingValue, true},
		{"zero", 0, false},
		{"tiny positive", 9e-6, false},
		{"tiny negative", -9e-6, false},
		{"epsilon itself", DefaultRestEpsilon, false},
		{"above epsilon", 2e-5, true},
		{"below -epsilon", -2e-5, true},
		{"large", 3.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o.value = tt.value
			if got := o.SystemShouldAdvance(); got != tt.want {
				t.Errorf("SystemShouldAdvance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOvershoot_CustomRestEpsilon(t *testing.T) {
	o, _ := newTestOvershoot(t, nil, WithRestEpsilon(0.1))
	o.value = 0.05
	if o.SystemShouldAdvance() {
		t.Error("value inside custom epsilon should not advance")
	}
}

func TestOvershoot_ListenerOrder(t *testing.T) {
	o, _ := newTestOvershoot(t, NewOvershootConfig(1, 1, 1, 1))
	var events []string
	a := &eventLog{name: "a", events: &events}
	b := &eventLog{name: "b", events: &events}
	if err := o.AddListener(a); err != nil {
		t.Fatal(err)
	}
	if err := o.AddListener(b); err != nil {
		t.Fatal(err)
	}

	o.Advance(0.016)
	o.Advance(0.016)

	want := []string{
		"a:update", "a:rest", "b:update", "b:rest",
		"a:update", "b:update",
	}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, events[i], want[i])
		}
	}
}

func TestOvershoot_DuplicateListenerNotifiedOnce(t *testing.T) {
	o, _ := newTestOvershoot(t, NewOvershootConfig(1, 1, 1, 1))
	var events []string
	a := &eventLog{name: "a", events: &events}
	_ = o.AddListener(a)
	_ = o.AddListener(a)

	o.value = 0.5
	o.Advance(0.01)

	if len(events) != 1 {
		t.Errorf("events = %v, want a single update", events)
	}
}

func TestOvershoot_RemoveListener(t *testing.T) {
	o, _ := newTestOvershoot(t, NewOvershootConfig(1, 1, 1, 1))
	var events []string
	a := &eventLog{name: "a", events: &events}
	b := &eventLog{name: "b", events: &events}
	_ = o.AddListener(a)
	_ = o.AddListener(b)

	if err := o.RemoveListener(a); err != nil {
		t.Fatal(err)
	}
	o.Advance(0.01)
	for _, e := range events {
		if e[0] == 'a' {
			t.Errorf("removed listener got %q", e)
		}
	}

	events = events[:0]
	o.RemoveAllListeners()
	o.Advance(0.01)
	if len(events) != 0 {
		t.Errorf("events after RemoveAllListeners = %v", events)
	}
}

func TestOvershoot_NilArguments(t *testing.T) {
	o, _ := newTestOvershoot(t, nil)

	if err := o.SetConfig(nil); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("SetConfig(nil) = %v, want ErrInvalidArgument", err)
	}
	if err := o.AddListener(nil); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("AddListener(nil) = %v, want ErrInvalidArgument", err)
	}
	if err := o.RemoveListener(nil); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("RemoveListener(nil) = %v, want ErrInvalidArgument", err)
	}
}

func TestOvershoot_SetVelocityAndActivate(t *testing.T) {
	cfg := NewOvershootConfig(0, 1, 1, 1)
	o, host := newTestOvershoot(t, cfg)
	var events []string
	_ = o.AddListener(&eventLog{name: "a", events: &events})

	if err := o.SetVelocityAndActivate(2.5); err != nil {
		t.Fatalf("SetVelocityAndActivate: %v", err)
	}

	if cfg.Velocity != 2.5 {
		t.Errorf("config velocity = %v, want 2.5", cfg.Velocity)
	}
	if len(host.activated) != 1 || host.activated[0] != o.ID() {
		t.Errorf("activated = %v, want [%s]", host.activated, o.ID())
	}
	if len(events) != 1 || events[0] != "a:update" {
		t.Errorf("events = %v, want [a:update]", events)
	}
	if !o.IsAtRest() {
		t.Error("value should not be recomputed until the next tick")
	}
}

func TestOvershoot_SetVelocityAndActivate_Unregistered(t *testing.T) {
	o, host := newTestOvershoot(t, NewOvershootConfig(0, 1, 1, 1))
	delete(host.known, o.ID())
	var events []string
	_ = o.AddListener(&eventLog{name: "a", events: &events})

	err := o.SetVelocityAndActivate(1)
	if !errors.Is(err, dynamo.ErrUnknownID) {
		t.Errorf("error = %v, want ErrUnknownID", err)
	}
	var oerr *dynamo.OscillatorError
	if !errors.As(err, &oerr) || oerr.ID != o.ID() {
		t.Errorf("error = %v, want OscillatorError for %s", err, o.ID())
	}
	if len(events) != 0 {
		t.Errorf("listeners notified despite failed activation: %v", events)
	}
}

func TestOvershoot_Destroy(t *testing.T) {
	o, host := newTestOvershoot(t, NewOvershootConfig(1, 1, 1, 1))
	var events []string
	_ = o.AddListener(&eventLog{name: "a", events: &events})

	if err := o.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if len(host.deregistered) != 1 || host.deregistered[0] != o.ID() {
		t.Errorf("deregistered = %v", host.deregistered)
	}
	if o.listeners.Len() != 0 {
		t.Errorf("listeners left after Destroy: %d", o.listeners.Len())
	}
}

func TestOvershoot_DecaysBelowEpsilon(t *testing.T) {
	o, _ := newTestOvershoot(t, NewOvershootConfig(1, 1, 2, 6))

	ticks := 0
	for o.SystemShouldAdvance() && ticks < 10000 {
		o.Advance(0.016)
		ticks++
	}
	if o.SystemShouldAdvance() {
		t.Fatal("oscillator never dropped below the rest epsilon")
	}
	if math.Abs(o.Value()) > DefaultRestEpsilon {
		t.Errorf("final |value| = %v, want <= %v", math.Abs(o.Value()), DefaultRestEpsilon)
	}
	if o.IsAtRest() {
		t.Error("a decayed oscillator is not at the resting sentinel")
	}
}
