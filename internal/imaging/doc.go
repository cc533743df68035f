// Package imaging turns canvas snapshots into ink extents and draws notes back
// onto a staff.
//
// A drawing client can send the detector a picture of its canvas instead of
// tracking stroke coordinates itself. ScanInk finds the pixels that belong to
// the stroke and reduces them to a staff.InkExtent; RenderNote goes the other
// way and draws a detected note on a staff with the same geometry.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel), matching staff coordinates
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// Extents produced from a cropped region are translated back to canvas
// coordinates so they can be fed to a staff.Detector directly.
//
// # Ink
//
// By default a pixel is ink when it is opaque and its gray level falls below
// the threshold. When an ink colour is given, only pixels within a CIE-Lab
// distance of that colour count, which separates a coloured stroke from a
// printed black staff. Fully transparent pixels are never ink.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Every other function is
// stateless.
package imaging
