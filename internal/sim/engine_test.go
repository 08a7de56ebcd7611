package sim_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/overshoot/internal/dynamo"
	"github.com/san-kum/overshoot/internal/looper"
	"github.com/san-kum/overshoot/internal/physics"
	"github.com/san-kum/overshoot/internal/sim"
)

func newOvershoot(e *sim.Engine, velocity float64) *physics.Overshoot {
	o, err := physics.NewOvershoot(e)
	Expect(err).NotTo(HaveOccurred())
	Expect(o.SetConfig(physics.NewOvershootConfig(velocity, 1, 2, 5))).To(Succeed())
	Expect(e.Create(o)).To(Succeed())
	return o
}

var _ = Describe("Engine", func() {
	var (
		src    *looper.Manual
		engine *sim.Engine
	)

	BeforeEach(func() {
		src = looper.NewManual()
		var err error
		engine, err = sim.New(src)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects a nil frame source", func() {
		_, err := sim.New(nil)
		Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
	})

	It("starts idle with the source stopped", func() {
		Expect(engine.IsIdle()).To(BeTrue())
		Expect(src.Running()).To(BeFalse())
		Expect(src.Starts()).To(Equal(0))
	})

	Describe("activation", func() {
		It("leaves idle and starts the source once", func() {
			a := newOvershoot(engine, 1)
			b := newOvershoot(engine, 1)

			Expect(a.SetVelocityAndActivate(1)).To(Succeed())
			Expect(b.SetVelocityAndActivate(1)).To(Succeed())

			Expect(engine.IsIdle()).To(BeFalse())
			Expect(engine.ActiveCount()).To(Equal(2))
			Expect(src.Starts()).To(Equal(1))
		})

		It("fails for an unknown id and leaves the active set alone", func() {
			a := newOvershoot(engine, 1)
			Expect(engine.Activate(a.ID())).To(Succeed())

			err := engine.Activate("over:missing")

			Expect(err).To(MatchError(dynamo.ErrUnknownID))
			Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
			Expect(engine.ActiveCount()).To(Equal(1))
		})

		It("counts an oscillator once however often it is activated", func() {
			a := newOvershoot(engine, 1)
			for range 3 {
				Expect(engine.Activate(a.ID())).To(Succeed())
			}
			Expect(engine.ActiveCount()).To(Equal(1))
		})

		It("starts the source exactly once under concurrent activation", func() {
			var oscs []*physics.Overshoot
			for range 16 {
				oscs = append(oscs, newOvershoot(engine, 1))
			}

			var wg sync.WaitGroup
			for _, o := range oscs {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer GinkgoRecover()
					Expect(engine.Activate(o.ID())).To(Succeed())
				}()
			}
			wg.Wait()

			Expect(src.Starts()).To(Equal(1))
			Expect(engine.ActiveCount()).To(Equal(16))
		})
	})

	Describe("looping", func() {
		It("advances active oscillators and returns to idle once they settle", func() {
			a := newOvershoot(engine, 1)
			Expect(a.SetVelocityAndActivate(1)).To(Succeed())

			frames := src.RunUntilStopped(16, 10000)

			Expect(frames).To(BeNumerically(">", 1))
			Expect(frames).To(BeNumerically("<", 10000))
			Expect(engine.IsIdle()).To(BeTrue())
			Expect(engine.ActiveCount()).To(BeZero())
			Expect(src.Stops()).To(Equal(1))
			Expect(engine.Frames()).To(Equal(int64(frames)))
			Expect(engine.ElapsedMillis()).To(BeNumerically("~", 16*float64(frames), 1e-9))
			Expect(a.IsAtRest()).To(BeFalse())
		})

		It("goes idle on the next frame when the active set empties", func() {
			a := newOvershoot(engine, 1)
			Expect(engine.Activate(a.ID())).To(Succeed())
			Expect(a.Destroy()).To(Succeed())

			Expect(src.Step(16)).To(BeTrue())

			Expect(engine.IsIdle()).To(BeTrue())
			Expect(src.Running()).To(BeFalse())
			Expect(src.Stops()).To(Equal(1))
		})

		It("wakes again when activated after going idle", func() {
			a := newOvershoot(engine, 1)
			Expect(a.SetVelocityAndActivate(1)).To(Succeed())
			src.RunUntilStopped(16, 10000)

			a.Reset()
			Expect(a.SetVelocityAndActivate(1)).To(Succeed())

			Expect(engine.IsIdle()).To(BeFalse())
			Expect(src.Starts()).To(Equal(2))
		})

		It("keeps running when a listener re-activates during the idle frame", func() {
			a := newOvershoot(engine, 1)
			b := newOvershoot(engine, 1)
			Expect(engine.Activate(a.ID())).To(Succeed())
			Expect(a.Destroy()).To(Succeed())

			Expect(engine.AddListener(&sim.SystemListenerFuncs{
				AfterIntegrate: func(e *sim.Engine) {
					if e.Frames() == 1 {
						Expect(e.Activate(b.ID())).To(Succeed())
					}
				},
			})).To(Succeed())

			Expect(src.Step(16)).To(BeTrue())

			Expect(engine.IsIdle()).To(BeFalse())
			Expect(src.Running()).To(BeTrue())
			Expect(src.Stops()).To(BeZero())
		})

		It("finishes the frame when a listener destroys a peer mid-pass", func() {
			a := newOvershoot(engine, 1)
			b := newOvershoot(engine, 1)
			destroyed := false
			Expect(a.AddListener(&dynamo.ListenerFuncs{
				Update: func(dynamo.Oscillator) {
					if !destroyed {
						destroyed = true
						Expect(b.Destroy()).To(Succeed())
					}
				},
			})).To(Succeed())
			Expect(a.SetVelocityAndActivate(1)).To(Succeed())
			Expect(b.SetVelocityAndActivate(1)).To(Succeed())

			Expect(src.Step(16)).To(BeTrue())

			Expect(destroyed).To(BeTrue())
			Expect(engine.Frames()).To(Equal(int64(1)))
			Expect(engine.All()).To(Equal([]dynamo.Oscillator{a}))
			Expect(engine.ActiveCount()).To(Equal(1))
			bElapsed := b.Elapsed()

			Expect(src.Step(16)).To(BeTrue())
			Expect(b.Elapsed()).To(Equal(bElapsed))
			Expect(a.Elapsed()).To(BeNumerically("~", 0.032, 1e-12))

			src.RunUntilStopped(16, 10000)
			Expect(engine.IsIdle()).To(BeTrue())
			Expect(src.Stops()).To(Equal(1))
			Expect(b.Elapsed()).To(Equal(bElapsed))
		})

		It("picks up a peer activated by a listener on the next frame", func() {
			a := newOvershoot(engine, 1)
			b := newOvershoot(engine, 1)
			kicked := false
			Expect(a.AddListener(&dynamo.ListenerFuncs{
				Update: func(dynamo.Oscillator) {
					if !kicked {
						kicked = true
						Expect(b.SetVelocityAndActivate(1)).To(Succeed())
					}
				},
			})).To(Succeed())
			Expect(engine.Activate(a.ID())).To(Succeed())

			Expect(src.Step(16)).To(BeTrue())

			Expect(kicked).To(BeTrue())
			Expect(engine.ActiveCount()).To(Equal(2))
			Expect(b.IsAtRest()).To(BeTrue())
			Expect(src.Starts()).To(Equal(1))

			Expect(src.Step(16)).To(BeTrue())
			Expect(b.IsAtRest()).To(BeFalse())
			Expect(b.Elapsed()).To(BeNumerically("~", 0.016, 1e-12))

			src.RunUntilStopped(16, 10000)
			Expect(engine.IsIdle()).To(BeTrue())
			Expect(engine.ActiveCount()).To(BeZero())
			Expect(src.Stops()).To(Equal(1))
		})

		It("calls system listeners around the integrate step", func() {
			var events []string
			a := newOvershoot(engine, 1)
			Expect(a.AddListener(&dynamo.ListenerFuncs{
				Update: func(dynamo.Oscillator) { events = append(events, "update") },
			})).To(Succeed())
			Expect(engine.AddListener(&sim.SystemListenerFuncs{
				BeforeIntegrate: func(*sim.Engine) { events = append(events, "before") },
				AfterIntegrate:  func(*sim.Engine) { events = append(events, "after") },
			})).To(Succeed())
			Expect(engine.Activate(a.ID())).To(Succeed())

			src.Step(16)

			Expect(events).To(Equal([]string{"before", "update", "after"}))
		})

		It("stops calling removed system listeners", func() {
			calls := 0
			l := &sim.SystemListenerFuncs{AfterIntegrate: func(*sim.Engine) { calls++ }}
			Expect(engine.AddListener(l)).To(Succeed())
			a := newOvershoot(engine, 1)
			Expect(engine.Activate(a.ID())).To(Succeed())

			src.Step(16)
			Expect(engine.RemoveListener(l)).To(Succeed())
			src.Step(16)

			Expect(calls).To(Equal(1))
			Expect(engine.AddListener(nil)).To(MatchError(dynamo.ErrInvalidArgument))
		})
	})

	Describe("registry", func() {
		It("keeps only the first oscillator for a duplicate id", func() {
			engine, err := sim.New(looper.NewManual(), sim.WithIDGenerator(dynamo.NewFixedGenerator("dup", "dup")))
			Expect(err).NotTo(HaveOccurred())

			first, _ := physics.NewOvershoot(engine)
			second, _ := physics.NewOvershoot(engine)
			Expect(engine.Create(first)).To(Succeed())
			Expect(engine.Create(second)).To(MatchError(dynamo.ErrDuplicateID))

			got, err := engine.GetByID("dup")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeIdenticalTo(first))
			Expect(engine.All()).To(HaveLen(1))
		})

		It("lists oscillators in registration order", func() {
			a := newOvershoot(engine, 1)
			b := newOvershoot(engine, 1)
			c := newOvershoot(engine, 1)

			Expect(engine.All()).To(Equal([]dynamo.Oscillator{a, b, c}))
			Expect([]string{a.ID(), b.ID(), c.ID()}).To(Equal([]string{"over:0", "over:1", "over:2"}))
		})

		It("reports unknown and empty ids", func() {
			_, err := engine.GetByID("over:42")
			Expect(err).To(MatchError(dynamo.ErrUnknownID))

			_, err = engine.GetByID("")
			Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
		})

		It("forgets a destroyed oscillator", func() {
			a := newOvershoot(engine, 1)
			b := newOvershoot(engine, 1)
			Expect(engine.Activate(a.ID())).To(Succeed())

			Expect(a.Destroy()).To(Succeed())

			Expect(engine.All()).To(Equal([]dynamo.Oscillator{b}))
			_, err := engine.GetByID(a.ID())
			Expect(err).To(MatchError(dynamo.ErrUnknownID))
			Expect(engine.ActiveCount()).To(BeZero())
			Expect(a.SetVelocityAndActivate(1)).To(MatchError(dynamo.ErrUnknownID))
		})

		It("treats deregistering an unknown oscillator as a no-op", func() {
			other, _ := sim.New(looper.NewManual())
			stray, _ := physics.NewOvershoot(other)
			Expect(engine.Deregister(stray)).To(Succeed())
			Expect(engine.Deregister(nil)).To(MatchError(dynamo.ErrInvalidArgument))
		})
	})
})
