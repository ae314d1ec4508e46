package model

import (
	"strings"

	"github.com/tsawler/pagemark/font"
)

// ListKind classifies a list line
type ListKind int

const (
	ListNone ListKind = iota
	ListUnordered
	ListOrdered
)

// String returns a string representation of the list kind
func (k ListKind) String() string {
	switch k {
	case ListUnordered:
		return "unordered"
	case ListOrdered:
		return "ordered"
	default:
		return "none"
	}
}

// Segment is a run of line text sharing one style
type Segment struct {
	Text   string
	Bold   bool
	Italic bool
}

// Line is a group of fragments sharing a baseline, ordered in reading order
type Line struct {
	Fragments []Fragment
	Text      string
	Segments  []Segment

	// BBox is exactly the union of the fragment boxes
	BBox     BBox
	Baseline float64
	Size     float64 // Dominant glyph height
	Font     string  // Dominant font reference
	Style    font.Style
	Vertical bool    // Assembled from rotated fragments
	Rotation float64 // Rotation shared by the fragments, in degrees
	Indent   float64 // Left edge relative to the body margin

	Heading  int // 1..6, 0 when not a heading
	List     ListKind
	Marker   string // Bullet or number stripped from Text
	TOC      bool
	TOCLabel string
	TOCPage  string

	// Removed marks the line for deletion by the stage finalizer
	Removed bool
	// Annotation is stage bookkeeping, cleared on finalize
	Annotation string
}

// NewLine builds a line from fragments already in reading order. Text and
// segments are plain concatenations; the caller may overwrite them.
func NewLine(frags []Fragment) Line {
	l := Line{Fragments: frags}
	var sb strings.Builder
	boxes := make([]BBox, len(frags))
	for i, f := range frags {
		boxes[i] = f.BBox()
		sb.WriteString(f.Text)
	}
	l.BBox = UnionAll(boxes...)
	l.Text = sb.String()
	if len(frags) > 0 {
		l.Baseline = frags[0].Y
		l.Rotation = frags[0].Rotation
	}
	l.Size, l.Font = dominant(frags)
	return l
}

// dominant returns the height and font carrying the most characters.
// Ties go to the first seen.
func dominant(frags []Fragment) (float64, string) {
	sizes := make(map[float64]int)
	fonts := make(map[string]int)
	var size float64
	var fnt string
	for _, f := range frags {
		n := len([]rune(f.Text))
		sizes[f.Height] += n
		fonts[f.Font] += n
	}
	best := -1
	for _, f := range frags {
		if c := sizes[f.Height]; c > best {
			best, size = c, f.Height
		}
	}
	best = -1
	for _, f := range frags {
		if c := fonts[f.Font]; c > best {
			best, fnt = c, f.Font
		}
	}
	return size, fnt
}

// Plain reports whether the line carries no classification
func (l *Line) Plain() bool {
	return l.Heading == 0 && l.List == ListNone && !l.TOC
}

// Left returns the left edge of the line
func (l *Line) Left() float64 {
	return l.BBox.Left()
}
