package staff

import (
	"fmt"
	"sort"
	"strings"
)

// LetterTable names the pitch at a staff step.
type LetterTable interface {
	Letter(step int) string
}

// CyclicLetters is a letter sequence indexed by staff step that repeats in
// both directions, so step -1 reads the last entry.
type CyclicLetters []string

// Letter returns the letter for step.
func (c CyclicLetters) Letter(step int) string {
	return c[wrapIndex(step, len(c))]
}

func (c CyclicLetters) validate() error {
	if len(c) == 0 {
		return fmt.Errorf("letter table is empty")
	}
	return nil
}

// SplitLetters keeps one table for notes on lines and another for notes in
// spaces. OnLines is indexed by line; InSpaces by the line directly above the
// space. Each table wraps independently.
type SplitLetters struct {
	OnLines  []string
	InSpaces []string
}

// Letter returns the letter for step.
func (s SplitLetters) Letter(step int) string {
	if step%2 == 0 {
		return s.OnLines[wrapIndex(step/2, len(s.OnLines))]
	}
	return s.InSpaces[wrapIndex(floorDiv(step-1, 2), len(s.InSpaces))]
}

func (s SplitLetters) validate() error {
	if len(s.OnLines) == 0 || len(s.InSpaces) == 0 {
		return fmt.Errorf("line and space letter tables must both be non-empty")
	}
	return nil
}

// OctaveScheme turns a staff step into an octave number.
//
//	octave = floor((Reference - step) / 7) + Bias
//
// Reference is the lowest step (largest step number) that still belongs to
// octave Bias. When Clamp is set the result is limited to [Min, Max].
type OctaveScheme struct {
	Name      string `json:"name"`
	Reference int    `json:"reference"`
	Bias      int    `json:"bias"`
	Clamp     bool   `json:"clamp"`
	Min       int    `json:"min"`
	Max       int    `json:"max"`
}

// Octave returns the octave of step.
func (o OctaveScheme) Octave(step int) int {
	octave := floorDiv(o.Reference-step, 7) + o.Bias
	if o.Clamp {
		if octave < o.Min {
			octave = o.Min
		}
		if octave > o.Max {
			octave = o.Max
		}
	}
	return octave
}

// OctaveBoundaryAtLine returns a scheme in which every step strictly above
// the given line belongs to octave 1 and the line itself starts octave 0.
func OctaveBoundaryAtLine(line int) OctaveScheme {
	return OctaveScheme{
		Name:      fmt.Sprintf("boundary-line-%d", line),
		Reference: 2*line - 1,
		Bias:      1,
	}
}

var (
	// OctaveBoundaryLine2 starts the upper octave above the middle line, so
	// the octave changes between B and C on a treble staff.
	OctaveBoundaryLine2 = OctaveBoundaryAtLine(2)

	// OctaveBoundaryLine3 starts the upper octave above the fourth line.
	OctaveBoundaryLine3 = OctaveBoundaryAtLine(3)
)

// Convention bundles everything needed to name a detected step.
type Convention struct {
	Name    string
	Letters LetterTable
	Octaves OctaveScheme

	// MinLine and MaxLine bound the nearest-line index a mark may resolve to.
	MinLine int
	MaxLine int
}

// Validate reports whether the convention can be used by a Detector.
func (c Convention) Validate() error {
	if c.Letters == nil {
		return fmt.Errorf("convention %q has no letter table", c.Name)
	}
	if v, ok := c.Letters.(interface{ validate() error }); ok {
		if err := v.validate(); err != nil {
			return fmt.Errorf("convention %q: %w", c.Name, err)
		}
	}
	if c.MinLine > c.MaxLine {
		return fmt.Errorf("convention %q: min line %d above max line %d", c.Name, c.MinLine, c.MaxLine)
	}
	return nil
}

// Note names step and records how it was reached.
func (c Convention) Note(step int, placement Placement) Note {
	return Note{
		Letter:    c.Letters.Letter(step),
		Octave:    c.Octaves.Octave(step),
		Step:      step,
		Placement: placement,
	}
}

// StepFor finds the step within the convention's range that carries the given
// letter and octave.
func (c Convention) StepFor(letter string, octave int) (int, bool) {
	letter = strings.ToUpper(letter)
	for step := 2*c.MinLine - 1; step <= 2*c.MaxLine+1; step++ {
		if c.Letters.Letter(step) == letter && c.Octaves.Octave(step) == octave {
			return step, true
		}
	}
	return 0, false
}

var trebleLetters = CyclicLetters{"F", "E", "D", "C", "B", "A", "G"}

// Built-in conventions. Treble is the default.
var (
	Treble = Convention{
		Name:    "treble",
		Letters: trebleLetters,
		Octaves: OctaveBoundaryLine2,
		MinLine: 0,
		MaxLine: 5,
	}

	// TrebleLegacy reproduces the bounded staff of the earliest drawing
	// clients: separate line/space tables and octaves clamped to 0..1.
	TrebleLegacy = Convention{
		Name: "treble-legacy",
		Letters: SplitLetters{
			OnLines:  []string{"F", "D", "B", "G", "E", "C"},
			InSpaces: []string{"E", "C", "A", "F", "D"},
		},
		Octaves: OctaveScheme{
			Name:      "boundary-line-2-clamped",
			Reference: OctaveBoundaryLine2.Reference,
			Bias:      1,
			Clamp:     true,
			Min:       0,
			Max:       1,
		},
		MinLine: 0,
		MaxLine: 5,
	}

	TrebleLine3 = Convention{
		Name:    "treble-line3",
		Letters: trebleLetters,
		Octaves: OctaveBoundaryLine3,
		MinLine: 0,
		MaxLine: 5,
	}

	// TrebleExtended allows three ledger lines on either side of the staff.
	TrebleExtended = Convention{
		Name:    "treble-extended",
		Letters: trebleLetters,
		Octaves: OctaveBoundaryLine2,
		MinLine: -3,
		MaxLine: 7,
	}
)

var conventions = map[string]Convention{
	Treble.Name:         Treble,
	TrebleLegacy.Name:   TrebleLegacy,
	TrebleLine3.Name:    TrebleLine3,
	TrebleExtended.Name: TrebleExtended,
}

// LookupConvention returns a built-in convention by name. The empty name
// selects Treble.
func LookupConvention(name string) (Convention, error) {
	if name == "" {
		return Treble, nil
	}
	c, ok := conventions[strings.ToLower(name)]
	if !ok {
		return Convention{}, fmt.Errorf("%w: %s", ErrUnknownConvention, name)
	}
	return c, nil
}

// ConventionNames lists the built-in conventions in alphabetical order.
func ConventionNames() []string {
	names := make([]string, 0, len(conventions))
	for name := range conventions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// wrapIndex maps any index onto [0, n) as if the table repeated forever.
func wrapIndex(i, n int) int {
	m := i % n
	if m < 0 {
		m += n
	}
	return m
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
