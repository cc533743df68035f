package playback

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/ironsheep/staff-notes-mcp/internal/staff"
)

func note(letter string, octave int) staff.Note {
	return staff.Note{Letter: letter, Octave: octave}
}

func TestMIDIKey(t *testing.T) {
	tests := []struct {
		note staff.Note
		want uint8
	}{
		{note("C", 0), 60},
		{note("E", 0), 64},
		{note("B", 0), 71},
		{note("F", 1), 77},
		{note("G", 1), 79},
		{note("B", -1), 59},
		{note("a", 0), 69},
	}
	for _, tt := range tests {
		got, err := MIDIKey(tt.note)
		require.NoError(t, err, tt.note.String())
		assert.Equal(t, tt.want, got, tt.note.String())
	}
}

func TestMIDIKey_TrebleStaff(t *testing.T) {
	// walking down the staff lowers the key on every step
	prev := 128
	for step := -1; step <= 11; step++ {
		key, err := MIDIKey(staff.Treble.Note(step, staff.OnLine))
		require.NoError(t, err)
		assert.Less(t, int(key), prev, "step %d", step)
		prev = int(key)
	}
}

func TestMIDIKey_Errors(t *testing.T) {
	_, err := MIDIKey(note("H", 0))
	assert.ErrorIs(t, err, ErrNoMIDIKey)

	_, err = MIDIKey(note("C", 6))
	assert.ErrorIs(t, err, ErrNoMIDIKey)

	_, err = MIDIKey(note("C", -6))
	assert.ErrorIs(t, err, ErrNoMIDIKey)
}

func TestSoundKeyAndPath(t *testing.T) {
	assert.Equal(t, "ga", SoundKey(note("A", 0)))
	assert.Equal(t, "gf", SoundKey(note("F", 1)))
	assert.Equal(t, filepath.Join("sound", "gc.aif"), SoundPath("sound", note("C", 1), "aif"))
	assert.Equal(t, filepath.Join("s", "gd.wav"), SoundPath("s", note("D", 0), ".wav"))
}

func TestSoundBank_Resolve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gb.aif"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "gc.aif"), 0o755))

	bank := NewSoundBank(dir, "")
	assert.Equal(t, DefaultSoundExt, bank.Ext)

	path, err := bank.Resolve(note("B", 0))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "gb.aif"), path)

	_, err = bank.Resolve(note("A", 0))
	assert.ErrorIs(t, err, ErrSoundNotFound)

	_, err = bank.Resolve(note("C", 0))
	assert.ErrorIs(t, err, ErrSoundNotFound)
}

func TestNewSoundBank_Defaults(t *testing.T) {
	bank := NewSoundBank("", "")
	assert.Equal(t, DefaultSoundDir, bank.Dir)
	assert.Equal(t, DefaultSoundExt, bank.Ext)
}

func TestWriteSMF(t *testing.T) {
	notes := []staff.Note{note("E", 0), note("C", 1), note("G", 0)}

	var buf bytes.Buffer
	n, err := WriteSMF(&buf, notes, SMFOptions{TicksPerQuarter: 96, TrackName: "strokes"})
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, s.Tracks, 1)

	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	require.True(t, ok)
	assert.Equal(t, smf.MetricTicks(96), ticks)

	var keys []uint8
	for _, ev := range s.Tracks[0] {
		var ch, key, vel uint8
		if ev.Message.GetNoteOn(&ch, &key, &vel) {
			keys = append(keys, key)
			assert.Equal(t, uint8(100), vel)
		}
	}
	assert.Equal(t, []uint8{64, 72, 67}, keys)
}

func TestWriteSMF_Errors(t *testing.T) {
	var buf bytes.Buffer

	_, err := WriteSMF(&buf, []staff.Note{note("X", 0)}, SMFOptions{})
	assert.ErrorIs(t, err, ErrNoMIDIKey)

	_, err = WriteSMF(&buf, nil, SMFOptions{Channel: 16})
	assert.Error(t, err)

	assert.Zero(t, buf.Len())
}
