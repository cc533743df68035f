// Package detection finds the printed staff in a canvas snapshot.
//
// A drawing client usually knows where it drew its staff, but when only a
// picture is available DetectStaff recovers the geometry from the picture
// itself, so that strokes scanned from the same image can be classified.
//
// # Algorithm Overview
//
//  1. Projection: convert to grayscale (BT.601) and count dark pixels per row
//  2. Banding: rows whose dark fraction reaches the coverage threshold are
//     grouped into line bands
//  3. Geometry: band centres give the line coordinates; the first centre is
//     the distance to the first line and the mean gap is the spacing
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// # Limitations
//
// Lines must be horizontal and span most of the image width. Rotated or
// curved staves, as in photographs of paper, are not recognised.
package detection
