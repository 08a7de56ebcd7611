// Package analysis inspects recorded oscillator traces.
//
//   - [PowerSpectrum], [DominantFrequency]: spectral content via go-dsp
//   - [EstimateDecay]: exponential envelope fitted over the trace extrema
//   - [NewPhasePortrait]: displacement against velocity, with an ASCII view
//
// A trace recorded at 60 frames per second gives a 30 Hz Nyquist limit:
//
//	f := analysis.DominantFrequency(res.Column(id), 60)
package analysis
