// Package viz is a terminal viewer for soft-body worlds.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: steps a scene once per frame and draws it
//   - [NewMenu]: scene picker with a few editable world settings
//   - [Canvas]: braille raster with per-cell colour
//   - [Camera]: orthographic orbit camera built on quaternions
//
// The viewer only reads the world, except for the editing keys which go
// through the world's selection operations.
//
// # Key Bindings
//
//	Space  - Pause/Resume simulation
//	R      - Rebuild the scene
//	Arrows - Orbit camera
//	C      - Select around the view centre
//	G      - Toggle GIF recording
//	?      - Show help overlay
//
// # Recording
//
// G starts and stops a GIF recording of the canvas, written to
// softbody.gif unless [Model.SetGIFPath] says otherwise.
package viz
