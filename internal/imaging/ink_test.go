package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/staff-notes-mcp/internal/staff"
)

// createStrokeImage draws a filled black box from (x1,y1) to (x2,y2) inclusive
// on a transparent canvas.
func createStrokeImage(width, height, x1, y1, x2, y2 int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			img.Set(x, y, color.NRGBA{0, 0, 0, 255})
		}
	}
	return img
}

func TestScanInk_Threshold(t *testing.T) {
	img := createStrokeImage(60, 100, 20, 30, 24, 49)

	scan, err := ScanInk(img, InkOptions{})
	if err != nil {
		t.Fatalf("ScanInk failed: %v", err)
	}

	if scan.InkPixels != 5*20 {
		t.Errorf("InkPixels: got %d, want 100", scan.InkPixels)
	}
	ext := scan.Extent()
	if !ext.Defined() {
		t.Fatal("extent should be defined")
	}
	if ext.Upper != 30 || ext.Lower != 49 {
		t.Errorf("extent: got %v..%v, want 30..49", ext.Upper, ext.Lower)
	}
	want := Region{X1: 20, Y1: 30, X2: 25, Y2: 50}
	if scan.Bounds == nil || *scan.Bounds != want {
		t.Errorf("bounds: got %+v, want %+v", scan.Bounds, want)
	}
}

func TestScanInk_TransparentCanvasHasNoInk(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))

	scan, err := ScanInk(img, InkOptions{})
	if err != nil {
		t.Fatalf("ScanInk failed: %v", err)
	}
	if scan.InkPixels != 0 || scan.Bounds != nil {
		t.Errorf("expected no ink, got %d pixels", scan.InkPixels)
	}
	if scan.Extent().Defined() {
		t.Error("extent should be undefined")
	}
}

func TestScanInk_WhiteBackground(t *testing.T) {
	img := createInMemoryImage(50, 50, color.White)
	img.Set(10, 12, color.RGBA{100, 100, 100, 255})
	img.Set(11, 40, color.RGBA{200, 200, 200, 255})

	scan, err := ScanInk(img, InkOptions{Threshold: 150})
	if err != nil {
		t.Fatalf("ScanInk failed: %v", err)
	}
	if scan.InkPixels != 1 {
		t.Errorf("InkPixels: got %d, want 1", scan.InkPixels)
	}
	if ext := scan.Extent(); ext.Upper != 12 || ext.Lower != 12 {
		t.Errorf("extent: got %v..%v, want 12..12", ext.Upper, ext.Lower)
	}
}

func TestScanInk_IgnoreRows(t *testing.T) {
	img := createInMemoryImage(50, 50, color.White)
	// a printed staff line at row 10 and a stroke below it
	for x := 0; x < 50; x++ {
		img.Set(x, 10, color.Black)
	}
	for y := 20; y <= 30; y++ {
		img.Set(25, y, color.Black)
	}

	scan, err := ScanInk(img, InkOptions{IgnoreRows: []int{10}})
	if err != nil {
		t.Fatalf("ScanInk failed: %v", err)
	}
	if ext := scan.Extent(); ext.Upper != 20 || ext.Lower != 30 {
		t.Errorf("extent: got %v..%v, want 20..30", ext.Upper, ext.Lower)
	}
}

func TestScanInk_Region(t *testing.T) {
	img := createStrokeImage(100, 100, 5, 5, 8, 8)
	for y := 60; y <= 70; y++ {
		img.Set(50, y, color.NRGBA{0, 0, 0, 255})
	}

	scan, err := ScanInk(img, InkOptions{Region: &Region{X1: 40, Y1: 40, X2: 100, Y2: 100}})
	if err != nil {
		t.Fatalf("ScanInk failed: %v", err)
	}
	if ext := scan.Extent(); ext.Upper != 60 || ext.Lower != 70 {
		t.Errorf("extent should be in canvas coordinates, got %v..%v", ext.Upper, ext.Lower)
	}
	want := Region{X1: 50, Y1: 60, X2: 51, Y2: 71}
	if scan.Bounds == nil || *scan.Bounds != want {
		t.Errorf("bounds: got %+v, want %+v", scan.Bounds, want)
	}

	if _, err := ScanInk(img, InkOptions{Region: &Region{X1: 0, Y1: 0, X2: 200, Y2: 10}}); err == nil {
		t.Error("expected error for region outside the image")
	}
}

func TestScanInk_InkColor(t *testing.T) {
	img := createInMemoryImage(40, 40, color.White)
	for x := 0; x < 40; x++ {
		img.Set(x, 5, color.Black) // printed line, not the ink colour
	}
	for y := 15; y <= 22; y++ {
		img.Set(20, y, color.RGBA{0, 0, 255, 255})
	}
	img.Set(21, 30, color.RGBA{0, 0, 250, 255}) // close enough to blue

	scan, err := ScanInk(img, InkOptions{InkColor: "#0000ff"})
	if err != nil {
		t.Fatalf("ScanInk failed: %v", err)
	}
	if ext := scan.Extent(); ext.Upper != 15 || ext.Lower != 30 {
		t.Errorf("extent: got %v..%v, want 15..30", ext.Upper, ext.Lower)
	}
	if scan.InkPixels != 9 {
		t.Errorf("InkPixels: got %d, want 9", scan.InkPixels)
	}

	if _, err := ScanInk(img, InkOptions{InkColor: "blue"}); err == nil {
		t.Error("expected error for invalid ink colour")
	}
}

func TestScanInk_DetectsNote(t *testing.T) {
	g, err := staff.NewGeometry(40, 20)
	if err != nil {
		t.Fatal(err)
	}
	// a blob centred on line 2 (y = 80)
	img := createStrokeImage(80, 200, 30, 72, 40, 88)

	scan, err := ScanInk(img, InkOptions{})
	if err != nil {
		t.Fatalf("ScanInk failed: %v", err)
	}

	note, err := staff.Detect(g, staff.Treble, scan.Extent())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if note.Letter != "B" || note.Placement != staff.OnLine {
		t.Errorf("got %s %s, want B on-line", note, note.Placement)
	}
}
