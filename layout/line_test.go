package layout

import (
	"slices"
	"testing"

	"github.com/tsawler/pagemark/model"
)

func TestLineAssembler_MergesKerningSplits(t *testing.T) {
	doc := makeDoc([]model.Fragment{
		frag(101, 700, 30, 12, "world"),
		frag(72, 700.3, 15, 12, "Hel"),
		frag(87, 700, 10, 12, "lo"),
		bodyLine(72, 686, "next line"),
	})
	out := run(t, doc, throughLines)

	lines := out.Pages[0].Lines
	if got := texts(lines); !slices.Equal(got, []string{"Hello world", "next line"}) {
		t.Fatalf("lines = %q", got)
	}
	first := lines[0]
	if len(first.Fragments) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(first.Fragments))
	}
	boxes := make([]model.BBox, len(first.Fragments))
	for i, f := range first.Fragments {
		boxes[i] = f.BBox()
	}
	if first.BBox != model.UnionAll(boxes...) {
		t.Errorf("BBox = %+v, want union of fragments", first.BBox)
	}
	if first.Fragments[0].Text != "Hel" {
		t.Errorf("fragments not ordered left to right: %q", first.Fragments[0].Text)
	}
}

func TestLineAssembler_SpaceThreshold(t *testing.T) {
	tests := []struct {
		name string
		gap  float64
		want string
	}{
		{"touching", 0, "abcd"},
		{"kerned", 1, "abcd"},
		{"word gap", 3, "ab cd"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := makeDoc([]model.Fragment{
				frag(72, 700, 12, 12, "ab"),
				frag(84+tc.gap, 700, 12, 12, "cd"),
			})
			out := run(t, doc, throughLines)
			if got := out.Pages[0].Lines[0].Text; got != tc.want {
				t.Errorf("text = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLineAssembler_StyleSegments(t *testing.T) {
	doc := makeDoc([]model.Fragment{
		styled(72, 700, 30, 12, "Bold", "Helvetica-Bold"),
		frag(106, 700, 30, 12, "plain"),
		styled(140, 700, 30, 12, "slanted", "Helvetica-Oblique"),
	})
	out := run(t, doc, throughLines)

	l := out.Pages[0].Lines[0]
	if l.Text != "Bold plain slanted" {
		t.Fatalf("text = %q", l.Text)
	}
	want := []model.Segment{
		{Text: "Bold ", Bold: true},
		{Text: "plain "},
		{Text: "slanted", Italic: true},
	}
	if !slices.Equal(l.Segments, want) {
		t.Errorf("segments = %+v, want %+v", l.Segments, want)
	}
}

func TestLineAssembler_OrdersTopToBottom(t *testing.T) {
	doc := makeDoc([]model.Fragment{
		bodyLine(72, 500, "third"),
		bodyLine(72, 700, "first"),
		bodyLine(72, 600, "second"),
	})
	out := run(t, doc, throughLines)
	if got := texts(out.Pages[0].Lines); !slices.Equal(got, []string{"first", "second", "third"}) {
		t.Errorf("lines = %q", got)
	}
}

func TestLineAssembler_RotatedFragments(t *testing.T) {
	up := func(y float64, text string) model.Fragment {
		f := frag(50, y, 30, 12, text)
		f.Rotation = 90
		return f
	}
	doc := makeDoc([]model.Fragment{
		bodyLine(72, 700, "body"),
		up(100, "Hello"),
		up(135, "World"),
	})
	out := run(t, doc, throughLines)

	var vertical []model.Line
	for _, l := range out.Pages[0].Lines {
		if l.Vertical {
			vertical = append(vertical, l)
		}
	}
	if len(vertical) != 1 {
		t.Fatalf("expected 1 vertical line, got %d", len(vertical))
	}
	if vertical[0].Rotation != 90 || len(vertical[0].Fragments) != 2 {
		t.Errorf("unexpected vertical line %+v", vertical[0])
	}
}

func TestLineAssembler_InvertedFragments(t *testing.T) {
	down := func(x float64, text string) model.Fragment {
		f := frag(x, 400, 30, 12, text)
		f.Rotation = 180
		return f
	}
	doc := makeDoc([]model.Fragment{
		down(260, "World"),
		down(300, "Hello"),
	})
	out := run(t, doc, throughLines)

	lines := out.Pages[0].Lines
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %q", texts(lines))
	}
	l := lines[0]
	if l.Vertical {
		t.Error("upside-down text should not be a vertical line")
	}
	if l.Text != "Hello World" {
		t.Errorf("text = %q, want %q", l.Text, "Hello World")
	}
	if l.BBox.Left() != 230 || l.BBox.Right() != 300 {
		t.Errorf("bbox = %+v, want x from 230 to 300", l.BBox)
	}
}

func TestTrimSegments(t *testing.T) {
	text, segs := trimSegments("  ab cd  ", []model.Segment{
		{Text: "  ab", Bold: true},
		{Text: " cd  "},
	})
	if text != "ab cd" {
		t.Errorf("text = %q", text)
	}
	want := []model.Segment{{Text: "ab", Bold: true}, {Text: " cd"}}
	if !slices.Equal(segs, want) {
		t.Errorf("segments = %+v, want %+v", segs, want)
	}
}
