package staff

import "math"

// InkExtent is the vertical range covered by a single stroke.
//
// The zero value is the undefined extent: no point has been drawn yet.
type InkExtent struct {
	// Upper is the smallest y touched by the stroke (its visual top).
	Upper float64

	// Lower is the largest y touched by the stroke (its visual bottom).
	Lower float64

	defined bool
}

// NewInkExtent builds an extent from two y-coordinates in either order.
// Non-finite input yields the undefined extent.
func NewInkExtent(upper, lower float64) InkExtent {
	if !finite(upper) || !finite(lower) {
		return InkExtent{}
	}
	if upper > lower {
		upper, lower = lower, upper
	}
	return InkExtent{Upper: upper, Lower: lower, defined: true}
}

// Defined reports whether the extent was produced from at least one point.
func (e InkExtent) Defined() bool {
	return e.defined
}

// Middle returns the vertical midpoint of the stroke.
func (e InkExtent) Middle() float64 {
	return e.Upper + (e.Lower-e.Upper)/2
}

// Height returns Lower - Upper.
func (e InkExtent) Height() float64 {
	return e.Lower - e.Upper
}

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InkTracker keeps the running minimum and maximum y of a stroke as points
// arrive. Use one tracker per gesture.
type InkTracker struct {
	upper float64
	lower float64
	count int
}

// Add records a point. Points with non-finite coordinates are ignored.
func (t *InkTracker) Add(p Point) {
	if !finite(p.Y) {
		return
	}
	if t.count == 0 || p.Y < t.upper {
		t.upper = p.Y
	}
	if t.count == 0 || p.Y > t.lower {
		t.lower = p.Y
	}
	t.count++
}

// AddPoints records every point in order.
func (t *InkTracker) AddPoints(points []Point) {
	for _, p := range points {
		t.Add(p)
	}
}

// Count returns how many points have been recorded.
func (t *InkTracker) Count() int {
	return t.count
}

// Reset forgets all recorded points.
func (t *InkTracker) Reset() {
	*t = InkTracker{}
}

// Extent returns the stroke's extent, undefined when no point was recorded.
func (t *InkTracker) Extent() InkExtent {
	if t.count == 0 {
		return InkExtent{}
	}
	return InkExtent{Upper: t.upper, Lower: t.lower, defined: true}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
