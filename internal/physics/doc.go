// Package physics provides the oscillator variants driven by the engine.
//
// Each variant implements [dynamo.Oscillator]:
//
//   - [Overshoot]: closed-form decaying sinusoid sampled once per tick
//   - [Spring]: damped harmonic spring chasing a target, stepped at a fixed rate
//
// # Rest semantics
//
// An [Overshoot] is at rest only while its value equals [RestingValue]
// exactly. A resting overshoot stays eligible for one more tick, so the
// tick that wakes it zeroes the value first and reports OnAtRest. Once a
// kicked overshoot decays inside [DefaultRestEpsilon] the engine drops it;
// call Reset before kicking it again or the accumulated time keeps the
// amplitude near zero.
//
//	osc, _ := physics.NewOvershoot(eng)
//	_ = eng.Create(osc)
//	_ = osc.SetConfig(physics.NewOvershootConfig(0, 1, 2, 3))
//	osc.Reset()
//	_ = osc.SetVelocityAndActivate(1)
package physics
