package playback

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/ironsheep/staff-notes-mcp/internal/staff"
)

// MiddleC is the MIDI key of C in octave 0 of the default convention.
const MiddleC = 60

// ErrNoMIDIKey means a note cannot be expressed as a MIDI key.
var ErrNoMIDIKey = errors.New("note has no MIDI key")

var semitones = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

// MIDIKey returns the MIDI key number of n. Octave 0 starts at middle C, so
// the bottom line of the treble staff (E0) is key 64.
func MIDIKey(n staff.Note) (uint8, error) {
	s, ok := semitones[strings.ToUpper(n.Letter)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown letter %q", ErrNoMIDIKey, n.Letter)
	}
	key := MiddleC + 12*n.Octave + s
	if key < 0 || key > 127 {
		return 0, fmt.Errorf("%w: %s is key %d", ErrNoMIDIKey, n, key)
	}
	return uint8(key), nil
}

// SMFOptions controls WriteSMF. Zero values select the defaults.
type SMFOptions struct {
	// TicksPerQuarter is the file resolution. Default 480.
	TicksPerQuarter uint16

	// BPM is the tempo. Default 120.
	BPM float64

	// Channel is the MIDI channel, 0-15.
	Channel uint8

	// Velocity of every note. Default 100.
	Velocity uint8

	// TrackName is written as the sequence name when set.
	TrackName string
}

func (o SMFOptions) withDefaults() SMFOptions {
	if o.TicksPerQuarter == 0 {
		o.TicksPerQuarter = 480
	}
	if o.BPM <= 0 {
		o.BPM = 120
	}
	if o.Velocity == 0 {
		o.Velocity = 100
	}
	return o
}

// BuildSMF turns notes into a single-track Standard MIDI File in which every
// note lasts one quarter.
func BuildSMF(notes []staff.Note, opts SMFOptions) (*smf.SMF, error) {
	opts = opts.withDefaults()
	if opts.Channel > 15 {
		return nil, fmt.Errorf("invalid MIDI channel %d", opts.Channel)
	}

	keys := make([]uint8, len(notes))
	for i, n := range notes {
		key, err := MIDIKey(n)
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}

	ticks := smf.MetricTicks(opts.TicksPerQuarter)
	quarter := ticks.Ticks4th()

	var tr smf.Track
	if opts.TrackName != "" {
		tr.Add(0, smf.MetaTrackSequenceName(opts.TrackName))
	}
	tr.Add(0, smf.MetaTempo(opts.BPM))
	for _, key := range keys {
		tr.Add(0, midi.NoteOn(opts.Channel, key, opts.Velocity))
		tr.Add(quarter, midi.NoteOff(opts.Channel, key))
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = ticks
	if err := s.Add(tr); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}
	return s, nil
}

// WriteSMF writes notes to w as a Standard MIDI File.
func WriteSMF(w io.Writer, notes []staff.Note, opts SMFOptions) (int64, error) {
	s, err := BuildSMF(notes, opts)
	if err != nil {
		return 0, err
	}
	n, err := s.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("failed to write midi file: %w", err)
	}
	return n, nil
}
