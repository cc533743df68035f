package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/staff-notes-mcp/internal/staff"
)

// RenderOptions controls RenderNote. Zero values select the defaults.
type RenderOptions struct {
	// Width of the output in pixels. Default 200.
	Width int

	// Height of the output in pixels. Default: tall enough for the staff and
	// the note plus one spacing of margin.
	Height int

	// Colours as "#RRGGBB" or "#RRGGBBAA".
	Background string // default white
	LineColor  string // default black
	NoteColor  string // default black
}

// RenderResult contains the rendered staff.
type RenderResult struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	ImageBase64 string  `json:"image_base64"`
	MimeType    string  `json:"mime_type"`
	Step        int     `json:"step"`
	CenterY     float64 `json:"center_y"`
}

const defaultRenderWidth = 200

// RenderNote draws the five staff lines of g with a note head at the note's
// step. Ledger lines are added for steps outside the staff.
func RenderNote(g staff.Geometry, note staff.Note, opts RenderOptions) (*RenderResult, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	bg := colorOrDefault(opts.Background, color.RGBA{255, 255, 255, 255})
	lineColor := colorOrDefault(opts.LineColor, color.RGBA{0, 0, 0, 255})
	noteColor := colorOrDefault(opts.NoteColor, color.RGBA{0, 0, 0, 255})

	spacing := g.DistanceBetweenLines
	centerY := g.StepY(note.Step)

	width := opts.Width
	if width <= 0 {
		width = defaultRenderWidth
	}
	height := opts.Height
	if height <= 0 {
		bottom := math.Max(g.LineY(4), centerY) + spacing
		height = int(math.Ceil(bottom))
	}
	if height <= 0 {
		return nil, fmt.Errorf("staff does not fit a canvas: computed height %d", height)
	}

	canvas := imaging.New(width, height, bg)
	centerX := float64(width) / 2

	for line := 0; line <= 4; line++ {
		drawHLine(canvas, 0, width, g.LineY(line), lineColor)
	}

	halfLedger := spacing * 1.2
	for _, line := range ledgerLines(note.Step) {
		x1 := int(math.Round(centerX - halfLedger))
		x2 := int(math.Round(centerX + halfLedger))
		drawHLine(canvas, x1, x2, g.LineY(line), lineColor)
	}

	fillEllipse(canvas, centerX, centerY, spacing*0.65, spacing*0.45, noteColor)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &RenderResult{
		Width:       width,
		Height:      height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Step:        note.Step,
		CenterY:     centerY,
	}, nil
}

// ledgerLines lists the lines outside the five-line staff that a note at step
// needs, ordered away from the staff.
func ledgerLines(step int) []int {
	var lines []int
	for line := 5; 2*line <= step; line++ {
		lines = append(lines, line)
	}
	for line := -1; 2*line >= step; line-- {
		lines = append(lines, line)
	}
	return lines
}

func drawHLine(img *image.NRGBA, x1, x2 int, y float64, c color.Color) {
	row := int(math.Round(y))
	b := img.Bounds()
	if row < b.Min.Y || row >= b.Max.Y {
		return
	}
	for x := max(x1, b.Min.X); x < min(x2, b.Max.X); x++ {
		img.Set(x, row, c)
	}
}

func fillEllipse(img *image.NRGBA, cx, cy, rx, ry float64, c color.Color) {
	b := img.Bounds()
	y1 := max(int(math.Floor(cy-ry)), b.Min.Y)
	y2 := min(int(math.Ceil(cy+ry)), b.Max.Y-1)
	x1 := max(int(math.Floor(cx-rx)), b.Min.X)
	x2 := min(int(math.Ceil(cx+rx)), b.Max.X-1)

	for y := y1; y <= y2; y++ {
		dy := (float64(y) - cy) / ry
		for x := x1; x <= x2; x++ {
			dx := (float64(x) - cx) / rx
			if dx*dx+dy*dy <= 1 {
				img.Set(x, y, c)
			}
		}
	}
}

func colorOrDefault(hex string, def color.RGBA) color.RGBA {
	if hex == "" {
		return def
	}
	c, err := parseHexColor(hex)
	if err != nil {
		return def
	}
	return c
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}
