package model

import (
	"math"
	"testing"

	"github.com/tsawler/pagemark/font"
)

// ============================================================================
// Geometry Tests
// ============================================================================

func TestBBoxEdges(t *testing.T) {
	bbox := NewBBox(10, 20, 100, 50)

	if bbox.Left() != 10 || bbox.Right() != 110 {
		t.Errorf("Left/Right = %v/%v, want 10/110", bbox.Left(), bbox.Right())
	}
	if bbox.Bottom() != 20 || bbox.Top() != 70 {
		t.Errorf("Bottom/Top = %v/%v, want 20/70", bbox.Bottom(), bbox.Top())
	}
}

func TestBBoxIntersects(t *testing.T) {
	bbox := NewBBox(0, 0, 100, 100)

	tests := []struct {
		name     string
		other    BBox
		expected bool
	}{
		{"overlapping", NewBBox(50, 50, 100, 100), true},
		{"contained", NewBBox(10, 10, 10, 10), true},
		{"touching", NewBBox(100, 0, 10, 10), true},
		{"disjoint", NewBBox(200, 200, 10, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bbox.Intersects(tt.other); got != tt.expected {
				t.Errorf("Intersects(%+v) = %v, want %v", tt.other, got, tt.expected)
			}
		})
	}
}

func TestUnionAll(t *testing.T) {
	got := UnionAll(NewBBox(0, 0, 50, 50), NewBBox(25, 25, 75, 75), NewBBox(-10, 5, 5, 5))
	want := BBox{X: -10, Y: 0, Width: 110, Height: 100}
	if got != want {
		t.Errorf("UnionAll() = %+v, want %+v", got, want)
	}
	if UnionAll() != (BBox{}) {
		t.Error("UnionAll() of nothing should be the zero box")
	}
}

func TestFragmentBBoxRotated(t *testing.T) {
	tests := []struct {
		name     string
		rotation float64
		want     BBox
	}{
		{"upright", 0, NewBBox(100, 200, 40, 10)},
		{"counter-clockwise", 90, NewBBox(90, 200, 10, 40)},
		{"clockwise", -90, NewBBox(100, 160, 10, 40)},
		{"upside down", 180, NewBBox(60, 190, 40, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Fragment{X: 100, Y: 200, Width: 40, Height: 10, Rotation: tt.rotation}
			if got := f.BBox(); got != tt.want {
				t.Errorf("BBox() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMatrixMultiply(t *testing.T) {
	// translate first, then scale
	combined := Translate(10, 20).Multiply(Matrix{2, 0, 0, 2, 0, 0})
	got := combined.Transform(Point{5, 5})
	if want := (Point{30, 50}); got != want {
		t.Errorf("Transform() = %v, want %v", got, want)
	}
}

func TestMatrixScales(t *testing.T) {
	m := Matrix{0, 12, -12, 0, 100, 200}
	if got := m.VerticalScale(); math.Abs(got-12) > 1e-9 {
		t.Errorf("VerticalScale() = %v, want 12", got)
	}
	if got := m.HorizontalScale(); math.Abs(got-12) > 1e-9 {
		t.Errorf("HorizontalScale() = %v, want 12", got)
	}
}

func TestMatrixRotationDegrees(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		want float64
	}{
		{"identity", Identity(), 0},
		{"scaled", Matrix{10, 0, 0, 10, 0, 0}, 0},
		{"quarter turn", Matrix{0, 1, -1, 0, 0, 0}, 90},
		{"negative quarter", Matrix{0, -1, 1, 0, 0, 0}, -90},
		{"half turn", Matrix{-1, 0, 0, -1, 0, 0}, 180},
		{"degenerate", Matrix{0, 0, 0, 0, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.RotationDegrees(); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("RotationDegrees() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRound(t *testing.T) {
	if got := Round(12.345678, 2); got != 12.35 {
		t.Errorf("Round() = %v, want 12.35", got)
	}
}

// ============================================================================
// Line / Block Tests
// ============================================================================

func TestNewLineBBoxIsUnion(t *testing.T) {
	frags := []Fragment{
		{Text: "Hel", X: 10, Y: 100, Width: 15, Height: 10, Font: "f1_0"},
		{Text: "lo", X: 25, Y: 99, Width: 10, Height: 12, Font: "f2_0"},
	}
	l := NewLine(frags)

	if l.Text != "Hello" {
		t.Errorf("Text = %q, want Hello", l.Text)
	}
	want := frags[0].BBox().Union(frags[1].BBox())
	if l.BBox != want {
		t.Errorf("BBox = %+v, want %+v", l.BBox, want)
	}
	if l.Size != 10 || l.Font != "f1_0" {
		t.Errorf("dominant size/font = %v/%s, want 10/f1_0", l.Size, l.Font)
	}
}

func TestBlockAdd(t *testing.T) {
	a := NewLine([]Fragment{{Text: "a", X: 0, Y: 100, Width: 10, Height: 10}})
	a.Indent = 4
	b := NewLine([]Fragment{{Text: "b", X: 5, Y: 80, Width: 20, Height: 10}})

	blk := NewBlock(BlockParagraph, a, b)
	if len(blk.Lines) != 2 || blk.Indent != 4 {
		t.Fatalf("block = %+v", blk)
	}
	if blk.BBox != a.BBox.Union(b.BBox) {
		t.Errorf("BBox = %+v", blk.BBox)
	}
	if blk.Last().Text != "b" {
		t.Errorf("Last() = %q, want b", blk.Last().Text)
	}
}

func TestBlockTypeString(t *testing.T) {
	tests := map[BlockType]string{
		BlockParagraph: "paragraph",
		BlockHeading:   "heading",
		BlockListItem:  "list-item",
		BlockCode:      "code",
		BlockQuote:     "quote",
		BlockTOC:       "toc",
		BlockType(99):  "unknown",
	}
	for bt, want := range tests {
		if got := bt.String(); got != want {
			t.Errorf("BlockType(%d).String() = %q, want %q", bt, got, want)
		}
	}
}

func TestUnitText(t *testing.T) {
	u := Unit{Lines: [][]Segment{{{Text: "a"}, {Text: "b", Bold: true}}, {{Text: "c"}}}}
	if got := u.Text(" "); got != "ab c" {
		t.Errorf("Text() = %q, want %q", got, "ab c")
	}
}

// ============================================================================
// Document Tests
// ============================================================================

func TestDocumentCloneIsDeep(t *testing.T) {
	doc := NewDocument("a.pdf")
	doc.Fonts["f1_0"] = font.Descriptor{BaseFont: "Helvetica"}
	doc.Globals.Styles = map[string]font.Style{"f1_0": {}}
	line := NewLine([]Fragment{{Text: "x", Height: 10}})
	doc.Pages = []Page{{
		Fragments: []Fragment{{Text: "x", Height: 10}},
		Lines:     []Line{line},
		Blocks:    []Block{NewBlock(BlockParagraph, line)},
		Units:     []Unit{{Lines: [][]Segment{{{Text: "x"}}}}},
	}}

	c := doc.Clone()
	c.Pages[0].Fragments[0].Text = "changed"
	c.Pages[0].Lines[0].Fragments[0].Text = "changed"
	c.Pages[0].Blocks[0].Lines[0].Text = "changed"
	c.Pages[0].Units[0].Lines[0][0].Text = "changed"
	c.Fonts["f2_0"] = font.Descriptor{}
	c.Globals.Styles["f2_0"] = font.Style{}
	c.Annotate("note")

	p := doc.Pages[0]
	if p.Fragments[0].Text != "x" || p.Lines[0].Fragments[0].Text != "x" ||
		p.Blocks[0].Lines[0].Text != "x" || p.Units[0].Lines[0][0].Text != "x" {
		t.Error("Clone() shares page storage with the original")
	}
	if len(doc.Fonts) != 1 || len(doc.Globals.Styles) != 1 || len(doc.Messages) != 0 {
		t.Error("Clone() shares document storage with the original")
	}
}

func TestDocumentStyle(t *testing.T) {
	doc := NewDocument("a.pdf")
	doc.Fonts["f1_0"] = font.Descriptor{BaseFont: "Courier"}
	if !doc.Style("f1_0").Monospace {
		t.Error("expected style from font map")
	}
	doc.Globals.Styles = map[string]font.Style{"f1_0": {Bold: true}}
	if s := doc.Style("f1_0"); !s.Bold || s.Monospace {
		t.Errorf("Style() = %+v, want globals entry", s)
	}
}

func TestPageText(t *testing.T) {
	p := Page{Lines: []Line{{Text: "header", Removed: true}, {Text: "one"}, {Text: "two"}}}
	if got := p.Text(); got != "one\ntwo" {
		t.Errorf("Text() = %q, want %q", got, "one\ntwo")
	}
}
