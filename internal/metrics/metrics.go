package metrics

import (
	"math"

	"github.com/san-kum/overshoot/internal/physics"
)

// resting reports whether v is the overshoot rest marker rather than a
// real displacement.
func resting(v float64) bool {
	return v == physics.RestingValue
}

// Peak tracks the largest displacement magnitude seen across all
// oscillators.
type Peak struct {
	name string
	peak float64
}

func NewPeak() *Peak {
	return &Peak{name: "peak"}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(id string, value, t float64) {
	if resting(value) {
		return
	}
	p.peak = math.Max(p.peak, math.Abs(value))
}

func (p *Peak) Value() float64 { return p.peak }

func (p *Peak) Reset() { p.peak = 0 }

// SettleTime is the last time any oscillator was outside +/-band.
type SettleTime struct {
	name    string
	band    float64
	settled float64
}

func NewSettleTime(band float64) *SettleTime {
	return &SettleTime{name: "settle_time", band: band}
}

func (s *SettleTime) Name() string { return s.name }

func (s *SettleTime) Observe(id string, value, t float64) {
	if resting(value) {
		return
	}
	if math.Abs(value) > s.band && t > s.settled {
		s.settled = t
	}
}

func (s *SettleTime) Value() float64 { return s.settled }

func (s *SettleTime) Reset() { s.settled = 0 }

// ZeroCrossings counts sign changes per oscillator and reports the total.
// Exact zeros do not change the remembered sign.
type ZeroCrossings struct {
	name  string
	signs map[string]float64
	count int
}

func NewZeroCrossings() *ZeroCrossings {
	return &ZeroCrossings{name: "zero_crossings", signs: make(map[string]float64)}
}

func (z *ZeroCrossings) Name() string { return z.name }

func (z *ZeroCrossings) Observe(id string, value, t float64) {
	if resting(value) || value == 0 {
		return
	}
	sign := math.Copysign(1, value)
	if prev, ok := z.signs[id]; ok && prev != sign {
		z.count++
	}
	z.signs[id] = sign
}

func (z *ZeroCrossings) Value() float64 { return float64(z.count) }

func (z *ZeroCrossings) Reset() {
	z.count = 0
	z.signs = make(map[string]float64)
}

// Defaults returns the metrics recorded by a standard run.
func Defaults(settleBand float64) []Metric {
	return []Metric{NewPeak(), NewSettleTime(settleBand), NewZeroCrossings()}
}
