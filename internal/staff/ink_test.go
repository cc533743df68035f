package staff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInkExtent(t *testing.T) {
	e := NewInkExtent(40, 10)
	assert.True(t, e.Defined())
	assert.Equal(t, 10.0, e.Upper)
	assert.Equal(t, 40.0, e.Lower)
	assert.Equal(t, 25.0, e.Middle())
	assert.Equal(t, 30.0, e.Height())

	assert.False(t, NewInkExtent(math.NaN(), 10).Defined())
	assert.False(t, NewInkExtent(0, math.Inf(1)).Defined())
	assert.False(t, InkExtent{}.Defined())
}

func TestInkTracker(t *testing.T) {
	var tr InkTracker
	assert.False(t, tr.Extent().Defined())

	tr.AddPoints([]Point{{X: 5, Y: 30}, {X: 6, Y: 12}, {X: 7, Y: 44}, {X: 8, Y: 20}})
	assert.Equal(t, 4, tr.Count())

	e := tr.Extent()
	assert.True(t, e.Defined())
	assert.Equal(t, 12.0, e.Upper)
	assert.Equal(t, 44.0, e.Lower)

	tr.Reset()
	assert.Equal(t, 0, tr.Count())
	assert.False(t, tr.Extent().Defined())
}

func TestInkTracker_SinglePoint(t *testing.T) {
	var tr InkTracker
	tr.Add(Point{X: 1, Y: -3})

	e := tr.Extent()
	assert.Equal(t, -3.0, e.Upper)
	assert.Equal(t, -3.0, e.Lower)
}

func TestInkTracker_IgnoresNonFinite(t *testing.T) {
	var tr InkTracker
	tr.Add(Point{Y: math.NaN()})
	tr.Add(Point{Y: math.Inf(-1)})
	assert.Equal(t, 0, tr.Count())

	tr.Add(Point{Y: 9})
	assert.Equal(t, NewInkExtent(9, 9), tr.Extent())
}
