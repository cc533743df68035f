package playback

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/staff-notes-mcp/internal/staff"
)

const (
	// DefaultSoundDir and DefaultSoundExt match the layout of the bundled
	// sample set: sound/ga.aif, sound/gb.aif and so on.
	DefaultSoundDir = "sound"
	DefaultSoundExt = "aif"
)

// ErrSoundNotFound means no sample file exists for a note.
var ErrSoundNotFound = errors.New("sound file not found")

// SoundKey returns the sample name for a note: "g" followed by the lower-case
// letter. Samples exist for one octave only, so the octave is ignored.
func SoundKey(n staff.Note) string {
	return "g" + strings.ToLower(n.Letter)
}

// SoundPath joins dir, the note's sample name and ext.
func SoundPath(dir string, n staff.Note, ext string) string {
	return filepath.Join(dir, SoundKey(n)+"."+strings.TrimPrefix(ext, "."))
}

// SoundBank resolves notes to sample files under a directory.
type SoundBank struct {
	Dir string
	Ext string
}

// NewSoundBank returns a bank rooted at dir. Empty arguments select the
// defaults.
func NewSoundBank(dir, ext string) *SoundBank {
	if dir == "" {
		dir = DefaultSoundDir
	}
	if ext == "" {
		ext = DefaultSoundExt
	}
	return &SoundBank{Dir: dir, Ext: ext}
}

// Resolve returns the sample path for n, or ErrSoundNotFound when the file
// does not exist.
func (b *SoundBank) Resolve(n staff.Note) (string, error) {
	path := SoundPath(b.Dir, n, b.Ext)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSoundNotFound, path)
		}
		return "", fmt.Errorf("failed to stat sound file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrSoundNotFound, path)
	}
	return path, nil
}
