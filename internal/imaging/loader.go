package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ImageCache keeps decoded canvas snapshots keyed by file path so that a client
// polling the same snapshot does not pay for decoding it again.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Freshness
//
// Each entry remembers the modification time and size the file had when it
// was decoded. Load stats the file on every call and decodes it again when
// either has changed, so a client that keeps overwriting one snapshot file
// always gets its latest stroke. Evict forces a reload for writers whose
// filesystem timestamps are too coarse to tell two writes apart.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cachedImage
}

type cachedImage struct {
	img     image.Image
	modTime time.Time
	size    int64
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cachedImage),
	}
}

// Load returns the image at path, decoding it on first use and whenever the
// file has changed since. PNG, JPEG and GIF are supported.
func (c *ImageCache) Load(path string) (image.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	c.mu.RLock()
	entry, ok := c.images[path]
	c.mu.RUnlock()
	if ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		return entry.img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = cachedImage{img: img, modTime: info.ModTime(), size: info.Size()}
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear drops every cached image.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cachedImage)
	c.mu.Unlock()
}

// Evict drops the image cached under path. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Decode reads a PNG, JPEG or GIF image from r.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// DecodeBase64 decodes an image sent inline by a client. A data URL prefix
// such as "data:image/png;base64," is accepted and stripped.
func DecodeBase64(s string) (image.Image, error) {
	if i := strings.Index(s, ","); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	return Decode(bytes.NewReader(raw))
}

// CanvasInfo describes a canvas snapshot.
type CanvasInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// HasAlpha reports whether the image carries transparency, which is how
	// untouched canvas pixels usually arrive.
	HasAlpha bool `json:"has_alpha"`
}

// DescribeCanvas returns the size of img and whether it has an alpha channel.
func DescribeCanvas(img image.Image) CanvasInfo {
	bounds := img.Bounds()

	hasAlpha := false
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64, *image.Alpha, *image.Alpha16:
		hasAlpha = true
	}

	return CanvasInfo{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		HasAlpha: hasAlpha,
	}
}
