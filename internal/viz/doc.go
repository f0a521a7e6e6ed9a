// Package viz renders trackers in the terminal.
//
// [PlotTrace] draws a finished run with asciigraph. [Model] is a Bubble Tea
// view that steps a tracker every frame on a Braille [Canvas], and
// [RunInteractive] wraps it in a preset picker.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset state and tuning
//	Tab   - Select f, z or r
//	↑/↓   - Tune the selected parameter
//	←/→   - Move the target in steer mode
//	[ ]   - Replay recent frames
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
