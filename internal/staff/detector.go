package staff

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrMissingInk means the stroke has no extent yet.
	ErrMissingInk = errors.New("no ink extent")

	// ErrLineOutOfRange means the mark is too far from the staff.
	ErrLineOutOfRange = errors.New("nearest staff line out of range")

	// ErrInvalidGeometry is returned when building a Detector from bad geometry.
	ErrInvalidGeometry = errors.New("invalid staff geometry")

	// ErrUnknownConvention is returned by LookupConvention.
	ErrUnknownConvention = errors.New("unknown staff convention")
)

// IsUndetectable reports whether err means "no note" rather than a failure.
func IsUndetectable(err error) bool {
	return errors.Is(err, ErrMissingInk) || errors.Is(err, ErrLineOutOfRange)
}

// lineTolerance is the fraction of a line spacing within which a mark still
// counts as touching the line.
const lineTolerance = 0.33

// Placement says where a mark sits relative to its nearest line.
type Placement int

const (
	OnLine Placement = iota
	SpaceBelow
	SpaceAbove
)

func (p Placement) String() string {
	switch p {
	case OnLine:
		return "on-line"
	case SpaceBelow:
		return "space-below"
	case SpaceAbove:
		return "space-above"
	default:
		return fmt.Sprintf("placement(%d)", int(p))
	}
}

func (p Placement) stepOffset() int {
	switch p {
	case SpaceBelow:
		return 1
	case SpaceAbove:
		return -1
	default:
		return 0
	}
}

// Note is a detected pitch.
type Note struct {
	Letter string
	Octave int

	// Step is the staff position the note was read from.
	Step      int
	Placement Placement
}

func (n Note) String() string {
	return fmt.Sprintf("%s%d", n.Letter, n.Octave)
}

// Detector classifies strokes drawn on one staff.
type Detector struct {
	geometry   Geometry
	convention Convention
}

// NewDetector validates geometry and convention and returns a Detector bound
// to them for its whole lifetime.
func NewDetector(geometry Geometry, convention Convention) (*Detector, error) {
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	if err := convention.Validate(); err != nil {
		return nil, err
	}
	return &Detector{geometry: geometry, convention: convention}, nil
}

// Detect is a one-shot NewDetector followed by Detect.
func Detect(geometry Geometry, convention Convention, ink InkExtent) (Note, error) {
	d, err := NewDetector(geometry, convention)
	if err != nil {
		return Note{}, err
	}
	return d.Detect(ink)
}

// Geometry returns the staff geometry the detector was built with.
func (d *Detector) Geometry() Geometry {
	return d.geometry
}

// Convention returns the naming convention the detector was built with.
func (d *Detector) Convention() Convention {
	return d.convention
}

// Detect names the note a stroke represents.
//
// The stroke's midpoint picks the nearest line. The mark is on that line when
// the midpoint is within a third of a spacing and the stroke's top reaches
// above the line. Otherwise it is in the space below, unless its top sits more
// than a third of a spacing above the line, in which case it is in the space
// above.
func (d *Detector) Detect(ink InkExtent) (Note, error) {
	if !ink.Defined() {
		return Note{}, ErrMissingInk
	}

	lineF, offset := d.geometry.position(ink.Middle())
	if math.IsNaN(lineF) || lineF < float64(d.convention.MinLine) || lineF > float64(d.convention.MaxLine) {
		return Note{}, fmt.Errorf("%w: line %v not in %d..%d",
			ErrLineOutOfRange, lineF, d.convention.MinLine, d.convention.MaxLine)
	}
	line := int(lineF)

	placement := d.classify(ink.Upper, line, offset)
	return d.convention.Note(2*line+placement.stepOffset(), placement), nil
}

func (d *Detector) classify(upper float64, line int, offset float64) Placement {
	lineY := d.geometry.LineY(line)

	if math.Abs(offset) < lineTolerance && upper < lineY {
		return OnLine
	}
	if upper-lineY > -lineTolerance*d.geometry.DistanceBetweenLines {
		return SpaceBelow
	}
	return SpaceAbove
}
