// Package viz is the terminal front end for a running [sim.Engine].
//
// [Model] is a Bubble Tea model that steps the engine once per frame and
// draws bodies on a braille [Canvas], one colour per character cell.
//
// # Key Bindings
//
//	Space - Start/Pause
//	A / D - Slower / faster (speed steps of 0.1, minimum 0.1)
//	W / S - Multiply / divide G by 1.1
//	N     - Add a random body on a circular orbit
//	+ / - - Zoom in / out
//	T     - Cycle color themes
//	C     - Clear trails
//	R     - Retry after an integration failure
//	Esc   - Quit
package viz
