// Package viz renders oscillators live in the terminal with Bubble Tea.
//
//   - [Model]: live view of an experiment, fed by a looper.Tea frame source
//   - [Picker]: preset chooser shown before the live view
//   - [Canvas]: braille dot canvas used for the trace overlay
//
// # Key Bindings
//
//	Space  - Kick every oscillator
//	Enter  - Kick the selected oscillator
//	Tab/↓  - Select next, ↑ selects previous
//	+/-    - Scale the selected overshoot's decay
//	O      - Toggle the braille overlay of all traces
//	T      - Cycle color themes
//	?      - Full help
package viz
