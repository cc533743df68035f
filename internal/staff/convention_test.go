package staff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapIndex(t *testing.T) {
	tests := []struct {
		i, n, want int
	}{
		{0, 7, 0},
		{6, 7, 6},
		{7, 7, 0},
		{-1, 7, 6},
		{-7, 7, 0},
		{-8, 7, 6},
		{15, 7, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, wrapIndex(tt.i, tt.n), "wrapIndex(%d, %d)", tt.i, tt.n)
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{7, 7, 1},
		{6, 7, 0},
		{0, 7, 0},
		{-1, 7, -1},
		{-7, 7, -1},
		{-8, 7, -2},
		{13, 7, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, floorDiv(tt.a, tt.b), "floorDiv(%d, %d)", tt.a, tt.b)
	}
}

func TestCyclicLetters(t *testing.T) {
	assert.Equal(t, "F", trebleLetters.Letter(0))
	assert.Equal(t, "G", trebleLetters.Letter(6))
	assert.Equal(t, "F", trebleLetters.Letter(7))
	assert.Equal(t, "G", trebleLetters.Letter(-1), "index -1 reads the last entry")
	assert.Equal(t, "A", trebleLetters.Letter(-2))
	assert.Equal(t, "B", trebleLetters.Letter(11))
}

func TestSplitLetters(t *testing.T) {
	split := TrebleLegacy.Letters

	// inside the staff the legacy tables agree with the cyclic table
	for step := 0; step <= 10; step++ {
		assert.Equal(t, trebleLetters.Letter(step), split.Letter(step), "step %d", step)
	}

	// past the ends they wrap on their own period
	assert.Equal(t, "E", split.Letter(11))
	assert.Equal(t, "D", split.Letter(-1))
	assert.Equal(t, "F", split.Letter(12))
}

func TestOctaveScheme(t *testing.T) {
	s := OctaveBoundaryLine2
	require.Equal(t, 3, s.Reference)

	tests := []struct {
		step, want int
	}{
		{-4, 2},
		{-1, 1},
		{0, 1},
		{3, 1},
		{4, 0},
		{10, 0},
		{11, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Octave(tt.step), "step %d", tt.step)
	}
}

func TestOctaveScheme_Clamp(t *testing.T) {
	s := OctaveScheme{Reference: 3, Bias: 1, Clamp: true, Min: 0, Max: 1}
	assert.Equal(t, 1, s.Octave(-10))
	assert.Equal(t, 0, s.Octave(40))
}

func TestOctaveBoundaryLine3(t *testing.T) {
	s := OctaveBoundaryLine3
	assert.Equal(t, 5, s.Reference)
	assert.Equal(t, 1, s.Octave(5))
	assert.Equal(t, 0, s.Octave(6))

	// steps 4 and 5 are where the two boundaries disagree
	assert.Equal(t, 0, OctaveBoundaryLine2.Octave(4))
	assert.Equal(t, 1, s.Octave(4))
}

// legacyOctave is the rule of the earliest drawing clients: marks on or below lines 0 and 1
// are in the upper octave, and so are marks above lines 0 to 2.
func legacyOctave(line int, p Placement) int {
	if p == SpaceAbove {
		if line < 3 {
			return 1
		}
		return 0
	}
	if line < 2 {
		return 1
	}
	return 0
}

func TestLegacyOctaveRuleMatchesLine2Boundary(t *testing.T) {
	for line := 0; line <= 5; line++ {
		for _, p := range []Placement{OnLine, SpaceBelow, SpaceAbove} {
			step := 2*line + p.stepOffset()
			assert.Equal(t, legacyOctave(line, p), TrebleLegacy.Octaves.Octave(step),
				"line %d %s", line, p)
		}
	}
}

func TestConvention_Validate(t *testing.T) {
	for _, name := range ConventionNames() {
		c, err := LookupConvention(name)
		require.NoError(t, err)
		assert.NoError(t, c.Validate(), name)
	}

	bad := Convention{Name: "split", Letters: SplitLetters{OnLines: []string{"F"}}}
	assert.Error(t, bad.Validate())
}

func TestConvention_StepFor(t *testing.T) {
	tests := []struct {
		letter   string
		octave   int
		wantStep int
		wantOK   bool
	}{
		{"F", 1, 0, true},
		{"c", 1, 3, true},
		{"B", 0, 4, true},
		{"C", 0, 10, true},
		{"G", 1, -1, true},
		{"B", -1, 11, true},
		{"C", 3, 0, false},
		{"H", 0, 0, false},
	}
	for _, tt := range tests {
		step, ok := Treble.StepFor(tt.letter, tt.octave)
		assert.Equal(t, tt.wantOK, ok, "%s%d", tt.letter, tt.octave)
		if tt.wantOK {
			assert.Equal(t, tt.wantStep, step, "%s%d", tt.letter, tt.octave)
		}
	}
}

func TestConvention_StepForRoundTrip(t *testing.T) {
	for step := -1; step <= 11; step++ {
		n := Treble.Note(step, OnLine)
		got, ok := Treble.StepFor(n.Letter, n.Octave)
		require.True(t, ok, "step %d", step)
		assert.Equal(t, step, got)
	}
}

func TestLookupConvention(t *testing.T) {
	c, err := LookupConvention("")
	require.NoError(t, err)
	assert.Equal(t, Treble.Name, c.Name)

	c, err = LookupConvention("Treble-Legacy")
	require.NoError(t, err)
	assert.Equal(t, TrebleLegacy.Name, c.Name)

	_, err = LookupConvention("bass")
	assert.ErrorIs(t, err, ErrUnknownConvention)
}

func TestConventionNames(t *testing.T) {
	assert.Equal(t, []string{"treble", "treble-extended", "treble-legacy", "treble-line3"}, ConventionNames())
}
