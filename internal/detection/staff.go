package detection

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/staff-notes-mcp/internal/staff"
)

// ErrNoStaff is returned when fewer than two staff lines are found.
var ErrNoStaff = errors.New("no staff found")

const (
	// DefaultLineCoverage is the fraction of a row that must be dark for the
	// row to belong to a staff line.
	DefaultLineCoverage = 0.5

	darkLevel = 128
)

// StaffLine is one horizontal line found in the image.
type StaffLine struct {
	// Y is the centre of the line band.
	Y float64 `json:"y"`

	// Top and Bottom are the first and last rows of the band, inclusive.
	Top    int `json:"top"`
	Bottom int `json:"bottom"`

	// Thickness is Bottom - Top + 1.
	Thickness int `json:"thickness"`

	// Coverage is the largest dark fraction of any row in the band.
	Coverage float64 `json:"coverage"`
}

// StaffResult describes the staff found in an image.
type StaffResult struct {
	// Lines are ordered top to bottom.
	Lines []StaffLine `json:"lines"`

	// Count is the number of lines found.
	Count int `json:"count"`

	// Geometry places line 0 on the first line found and uses the mean
	// spacing between lines.
	Geometry staff.Geometry `json:"geometry"`

	// SpacingStdDev is the standard deviation of the gaps between adjacent
	// lines. A large value relative to the spacing means the lines are not
	// evenly spaced and the geometry is only approximate.
	SpacingStdDev float64 `json:"spacing_stddev"`

	// LineRows lists every row covered by a line, suitable for
	// imaging.InkOptions.IgnoreRows.
	LineRows []int `json:"line_rows"`
}

// DetectStaff finds the staff lines printed on a canvas background and derives
// the staff geometry from them.
//
// Parameters:
//   - img: Canvas snapshot showing the staff.
//   - minCoverage: Fraction (0.0 to 1.0) of a row's width that must be dark
//     for the row to count as part of a line. Zero or less selects
//     DefaultLineCoverage. A short stroke crossing a row never reaches a high
//     coverage, so drawn notes do not disturb detection.
//
// # Algorithm
//
//  1. Horizontal projection: count opaque pixels darker than mid-gray per row
//  2. Banding: group consecutive rows at or above minCoverage
//  3. Geometry: band centres become line coordinates, the first one is the
//     distance to the first line and the mean gap is the spacing
//
// Returns ErrNoStaff when fewer than two lines are found.
func DetectStaff(img image.Image, minCoverage float64) (*StaffResult, error) {
	if minCoverage <= 0 {
		minCoverage = DefaultLineCoverage
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	if width == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrNoStaff)
	}

	var (
		lines    []StaffLine
		lineRows []int
		current  *StaffLine
	)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		coverage := float64(darkPixelsInRow(img, y)) / float64(width)
		if coverage < minCoverage {
			if current != nil {
				lines = append(lines, *current)
				current = nil
			}
			continue
		}

		lineRows = append(lineRows, y)
		if current == nil {
			current = &StaffLine{Top: y}
		}
		current.Bottom = y
		current.Coverage = math.Max(current.Coverage, coverage)
	}
	if current != nil {
		lines = append(lines, *current)
	}

	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: found %d line(s), need at least 2", ErrNoStaff, len(lines))
	}

	for i := range lines {
		lines[i].Thickness = lines[i].Bottom - lines[i].Top + 1
		lines[i].Y = float64(lines[i].Top+lines[i].Bottom) / 2
	}

	gaps := make([]float64, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		gaps[i-1] = lines[i].Y - lines[i-1].Y
	}
	mean := (lines[len(lines)-1].Y - lines[0].Y) / float64(len(gaps))

	var variance float64
	for _, g := range gaps {
		variance += (g - mean) * (g - mean)
	}
	variance /= float64(len(gaps))

	geometry, err := staff.NewGeometry(lines[0].Y, mean)
	if err != nil {
		return nil, fmt.Errorf("failed to derive staff geometry: %w", err)
	}

	return &StaffResult{
		Lines:         lines,
		Count:         len(lines),
		Geometry:      geometry,
		SpacingStdDev: math.Sqrt(variance),
		LineRows:      lineRows,
	}, nil
}

func darkPixelsInRow(img image.Image, y int) int {
	bounds := img.Bounds()
	dark := 0
	for x := bounds.Min.X; x < bounds.Max.X; x++ {
		if _, _, _, a := img.At(x, y).RGBA(); a == 0 {
			continue
		}
		if grayValue(img, x, y) < darkLevel {
			dark++
		}
	}
	return dark
}

// grayValue converts a pixel to grayscale using ITU-R BT.601 luminance weights.
// Formula: Y = 0.299*R + 0.587*G + 0.114*B
func grayValue(img image.Image, x, y int) uint8 {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8((float64(r>>8)*0.299 + float64(g>>8)*0.587 + float64(b>>8)*0.114))
}
