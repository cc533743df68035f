package staff

import (
	"fmt"
	"math"
)

// Geometry describes where the staff lines sit in canvas coordinates.
type Geometry struct {
	// DistanceToFirstLine is the offset from the top of the canvas to line 0.
	DistanceToFirstLine float64 `json:"distance_to_first_line"`

	// DistanceBetweenLines is the uniform spacing between adjacent lines.
	// It must be positive.
	DistanceBetweenLines float64 `json:"distance_between_lines"`
}

// NewGeometry returns a validated Geometry.
func NewGeometry(toFirstLine, betweenLines float64) (Geometry, error) {
	g := Geometry{
		DistanceToFirstLine:  toFirstLine,
		DistanceBetweenLines: betweenLines,
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// GeometryFromCanvasHeight splits a canvas into eight equal bands and puts
// the first line at the top of the third band, which is how the drawing
// canvas lays out its background staff.
func GeometryFromCanvasHeight(height float64) (Geometry, error) {
	return NewGeometry(height/8*2, height/8)
}

// Validate checks that the spacing is positive and both values are finite.
func (g Geometry) Validate() error {
	if math.IsNaN(g.DistanceToFirstLine) || math.IsInf(g.DistanceToFirstLine, 0) {
		return fmt.Errorf("%w: distance to first line must be finite, got %v", ErrInvalidGeometry, g.DistanceToFirstLine)
	}
	if math.IsNaN(g.DistanceBetweenLines) || math.IsInf(g.DistanceBetweenLines, 0) || g.DistanceBetweenLines <= 0 {
		return fmt.Errorf("%w: distance between lines must be positive, got %v", ErrInvalidGeometry, g.DistanceBetweenLines)
	}
	return nil
}

// LineY returns the y-coordinate of the line with the given index.
func (g Geometry) LineY(line int) float64 {
	return g.DistanceToFirstLine + float64(line)*g.DistanceBetweenLines
}

// StepY returns the y-coordinate of the centre of a staff step.
func (g Geometry) StepY(step int) float64 {
	return g.DistanceToFirstLine + float64(step)*g.DistanceBetweenLines/2
}

// LinePrediction is the line nearest to a coordinate together with the signed
// distance to it, as a fraction of the line spacing.
//
// Offset lies in (-0.5, 0.5]. Positive values are below the line.
type LinePrediction struct {
	Line   int     `json:"line"`
	Offset float64 `json:"offset"`
}

// NearestLine finds the line closest to y.
//
// A coordinate exactly halfway between two lines resolves to the upper line
// (the smaller index) with an offset of +0.5.
func (g Geometry) NearestLine(y float64) LinePrediction {
	line, offset := g.position(y)
	return LinePrediction{Line: int(line), Offset: offset}
}

// position is NearestLine with the line index left as a float so that callers
// can range-check it before converting.
func (g Geometry) position(y float64) (float64, float64) {
	pos := (y - g.DistanceToFirstLine) / g.DistanceBetweenLines
	line := math.Floor(pos)
	offset := pos - line

	if offset > 0.5 {
		line++
		offset = -(1 - offset)
	}

	return line, offset
}
