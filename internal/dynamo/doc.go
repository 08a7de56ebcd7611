// Package dynamo provides the core contracts shared by oscillators, the
// engine that drives them and the frame sources that clock the engine.
//
// The package defines the fundamental interfaces and types:
//
//   - [Oscillator]: a per-frame animated value that advances in simulated time
//   - [Host]: the narrow handle an oscillator keeps back to its engine
//   - [Listener]: per-oscillator update, rest and activation callbacks
//   - [FrameSource] and [Looper]: the frame callback contract
//   - [Set]: copy-on-write set used for listeners and the active set
//   - [IDGenerator]: oscillator id allocation
//
// # Example
//
//	eng, _ := sim.New(looper.NewManual())
//	osc, _ := physics.NewOvershoot(eng)
//	_ = eng.Create(osc)
//	_ = osc.SetVelocityAndActivate(1.0)
//
// # Thread Safety
//
// Frame sources deliver Loop callbacks serially. [Set] may be mutated from
// any goroutine while another goroutine iterates a snapshot of it.
package dynamo
