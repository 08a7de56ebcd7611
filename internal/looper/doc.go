// Package looper provides frame sources for the engine.
//
//   - [Manual]: frames are delivered only when the caller steps it; used by
//     headless runs and tests
//   - [Ticker]: a goroutine delivering wall-clock deltas at a fixed rate
//   - [Tea]: frames arrive as bubbletea messages, paced by the program
package looper
