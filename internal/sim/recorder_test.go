package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/overshoot/internal/looper"
	"github.com/san-kum/overshoot/internal/sim"
)

type countingMetric struct {
	observed int
	last     float64
}

func (m *countingMetric) Name() string { return "count" }

func (m *countingMetric) Observe(_ string, value, _ float64) {
	m.observed++
	m.last = value
}

func (m *countingMetric) Value() float64 { return float64(m.observed) }

func (m *countingMetric) Reset() { m.observed = 0 }

var _ = Describe("Recorder", func() {
	var (
		src    *looper.Manual
		engine *sim.Engine
		rec    *sim.Recorder
		metric *countingMetric
	)

	BeforeEach(func() {
		src = looper.NewManual()
		engine, _ = sim.New(src)
		metric = &countingMetric{}
		rec = sim.NewRecorder(metric)
		Expect(engine.AddListener(rec)).To(Succeed())
	})

	It("samples every oscillator after each frame", func() {
		a := newOvershoot(engine, 1)
		Expect(a.SetVelocityAndActivate(1)).To(Succeed())

		src.Step(16)
		src.Step(16)
		res := rec.Result()

		Expect(res.IDs).To(Equal([]string{a.ID()}))
		Expect(res.Frames).To(Equal(2))
		Expect(res.Times).To(HaveLen(2))
		Expect(res.Times[0]).To(BeNumerically("~", 0.016, 1e-12))
		Expect(res.Times[1]).To(BeNumerically("~", 0.032, 1e-12))
		Expect(res.Column(a.ID())[1]).To(Equal(a.Value()))
		Expect(res.Metrics).To(HaveKeyWithValue("count", 2.0))
	})

	It("back-fills columns for oscillators created mid-run", func() {
		a := newOvershoot(engine, 1)
		Expect(a.SetVelocityAndActivate(1)).To(Succeed())
		src.Step(16)

		b := newOvershoot(engine, 1)
		Expect(b.SetVelocityAndActivate(1)).To(Succeed())
		src.Step(16)

		res := rec.Result()
		Expect(res.IDs).To(Equal([]string{a.ID(), b.ID()}))
		Expect(res.Values[0]).To(HaveLen(2))
		Expect(res.Values[0][1]).To(BeZero())
		Expect(res.Column(b.ID())[1]).To(Equal(b.Value()))
	})

	It("hands out copies that later frames do not touch", func() {
		a := newOvershoot(engine, 1)
		Expect(a.SetVelocityAndActivate(1)).To(Succeed())
		src.Step(16)

		res := rec.Result()
		src.Step(16)

		Expect(res.Frames).To(Equal(1))
		Expect(rec.Result().Frames).To(Equal(2))
	})

	It("clears samples and metrics on Reset", func() {
		a := newOvershoot(engine, 1)
		Expect(a.SetVelocityAndActivate(1)).To(Succeed())
		src.Step(16)

		rec.Reset()

		res := rec.Result()
		Expect(res.IDs).To(BeEmpty())
		Expect(res.Frames).To(BeZero())
		Expect(metric.observed).To(BeZero())
	})

	It("restarts sample times after Reset", func() {
		a := newOvershoot(engine, 1)
		Expect(a.SetVelocityAndActivate(1)).To(Succeed())
		src.Step(16)
		src.Step(16)

		rec.Reset()
		src.Step(16)

		res := rec.Result()
		Expect(res.Times).To(HaveLen(1))
		Expect(res.Times[0]).To(BeNumerically("~", 0.016, 1e-12))
		Expect(engine.ElapsedMillis()).To(BeNumerically("~", 48, 1e-9))
	})
})
