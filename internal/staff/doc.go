// Package staff classifies hand-drawn marks on a five-line music staff.
//
// A Detector maps the vertical extent of a stroke onto the nearest staff line
// and decides whether the mark sits on that line or in the space just above or
// below it. The resulting staff step is then named with a letter (A-G) and an
// octave according to a Convention.
//
// # Coordinate System
//
// Coordinates follow the canvas convention used throughout this module:
//   - Y increases downward
//   - Line 0 is the topmost staff line, line 4 the bottom one
//   - Lines beyond 0..4 are ledger lines (line 5 is the first ledger line below)
//
// # Staff Steps
//
// Every line and every space has a step number, counting downward from the
// first line:
//
//	step = 2*line          (on a line)
//	step = 2*line + 1      (space below a line)
//	step = 2*line - 1      (space above a line)
//
// With the default treble convention step 0 is F5 and step 10 is middle C
// (C4). The home octave 0 runs from C4 up to B4.
//
// # Undetectable Marks
//
// Detect never panics once a Detector is built. Marks it cannot classify are
// reported with sentinel errors:
//   - ErrMissingInk: the stroke has no extent (nothing was drawn)
//   - ErrLineOutOfRange: the nearest line lies outside the convention's range
//
// Both are expected conditions; IsUndetectable reports either of them.
//
// # Thread Safety
//
// Geometry, Convention and Detector are immutable values and safe for
// concurrent use. InkTracker accumulates one stroke and must not be shared
// between goroutines.
package staff
