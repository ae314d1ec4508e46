package model

import "math"

// Fragment is one positioned run of text on a page.
//
// X and Y locate the start of the baseline in PDF user space. Height is the
// rendered glyph height after the page and text transforms are applied.
type Fragment struct {
	Text     string
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Font     string  // Font reference as reported by the source decoder
	Rotation float64 // Degrees counter-clockwise, 0 for upright text
}

// BBox returns the fragment's bounding box. For rotated text it is the box
// around the Width × Height run turned about its baseline origin.
func (f Fragment) BBox() BBox {
	if f.Rotation == 0 {
		return NewBBox(f.X, f.Y, f.Width, f.Height)
	}
	rad := f.Rotation * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range [4]Point{{0, 0}, {f.Width, 0}, {0, f.Height}, {f.Width, f.Height}} {
		x := Round(c.X*cos-c.Y*sin, 6)
		y := Round(c.X*sin+c.Y*cos, 6)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return NewBBox(f.X+minX, f.Y+minY, maxX-minX, maxY-minY)
}

// Upright reports whether the fragment is (nearly) horizontal text
func (f Fragment) Upright() bool {
	return f.Rotation > -5 && f.Rotation < 5
}

// Inverted reports whether the fragment is (nearly) upside-down horizontal
// text, read right to left on the page
func (f Fragment) Inverted() bool {
	return math.Abs(f.Rotation) > 175
}
