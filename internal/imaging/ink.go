package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/segment"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/staff-notes-mcp/internal/staff"
)

const (
	// DefaultInkThreshold is the gray level below which a pixel counts as ink.
	DefaultInkThreshold uint8 = 128

	// DefaultColorTolerance is the CIE-Lab distance within which a pixel
	// matches an explicit ink colour.
	DefaultColorTolerance = 0.15
)

// InkOptions controls how ink pixels are told apart from the background.
type InkOptions struct {
	// Threshold is the gray level below which an opaque pixel is ink.
	// Zero selects DefaultInkThreshold.
	Threshold uint8

	// InkColor, when set, switches to colour matching: only pixels close to
	// this "#RRGGBB" colour count, which lets a coloured stroke be picked out
	// of a snapshot that also shows the printed black staff.
	InkColor string

	// ColorTolerance is the Lab distance used with InkColor. Zero selects
	// DefaultColorTolerance.
	ColorTolerance float64

	// Region limits the scan to part of the image.
	Region *Region

	// IgnoreRows lists image rows whose pixels never count as ink, typically
	// the rows occupied by printed staff lines.
	IgnoreRows []int
}

// InkScan is the outcome of scanning an image for ink.
type InkScan struct {
	// InkPixels is the number of pixels classified as ink.
	InkPixels int `json:"ink_pixels"`

	// Bounds is the bounding box of the ink, nil when there is none.
	Bounds *Region `json:"bounds,omitempty"`

	extent staff.InkExtent
}

// Extent returns the vertical extent of the ink in image coordinates. It is
// undefined when no ink pixel was found.
func (s *InkScan) Extent() staff.InkExtent {
	return s.extent
}

// ScanInk finds every ink pixel in img and records the extent they cover.
//
// Fully transparent pixels are background whatever their colour. Upper and
// Lower of the extent are the rows of the topmost and bottommost ink pixels.
func ScanInk(img image.Image, opts InkOptions) (*InkScan, error) {
	src := img
	origin := img.Bounds().Min
	if opts.Region != nil {
		cropped, err := CropRegion(img, *opts.Region)
		if err != nil {
			return nil, err
		}
		src = cropped
		origin = image.Pt(opts.Region.X1, opts.Region.Y1)
	}

	isInk, err := inkClassifier(src, opts)
	if err != nil {
		return nil, err
	}

	ignored := make(map[int]bool, len(opts.IgnoreRows))
	for _, row := range opts.IgnoreRows {
		ignored[row] = true
	}

	var (
		tracker staff.InkTracker
		box     image.Rectangle
	)
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		canvasY := y - b.Min.Y + origin.Y
		if ignored[canvasY] {
			continue
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			if !isInk(x, y) {
				continue
			}
			canvasX := x - b.Min.X + origin.X
			tracker.Add(staff.Point{X: float64(canvasX), Y: float64(canvasY)})
			box = box.Union(image.Rect(canvasX, canvasY, canvasX+1, canvasY+1))
		}
	}

	scan := &InkScan{
		InkPixels: tracker.Count(),
		extent:    tracker.Extent(),
	}
	if scan.InkPixels > 0 {
		r := regionOf(box)
		scan.Bounds = &r
	}
	return scan, nil
}

func inkClassifier(src image.Image, opts InkOptions) (func(x, y int) bool, error) {
	b := src.Bounds()
	opaque := func(x, y int) bool {
		_, _, _, a := src.At(x, y).RGBA()
		return a != 0
	}

	if opts.InkColor != "" {
		target, err := colorful.Hex(opts.InkColor)
		if err != nil {
			return nil, fmt.Errorf("invalid ink color %q: %w", opts.InkColor, err)
		}
		tolerance := opts.ColorTolerance
		if tolerance <= 0 {
			tolerance = DefaultColorTolerance
		}
		return func(x, y int) bool {
			c, ok := colorful.MakeColor(src.At(x, y))
			if !ok {
				return false
			}
			return c.DistanceLab(target) <= tolerance
		}, nil
	}

	threshold := opts.Threshold
	if threshold == 0 {
		threshold = DefaultInkThreshold
	}
	bw := segment.Threshold(src, threshold)
	return func(x, y int) bool {
		// index Pix directly; bw has src's size but not necessarily its origin
		return opaque(x, y) && bw.Pix[(y-b.Min.Y)*bw.Stride+(x-b.Min.X)] == 0
	}, nil
}
